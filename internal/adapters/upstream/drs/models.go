package drs

// Wire shapes for the GA4GH DRS v1 API surface we consume

// Checksum is one digest entry on an object
type Checksum struct {
	Checksum string `json:"checksum"`
	Type     string `json:"type"`
}

// AccessURL is a fetchable location, possibly with required headers
type AccessURL struct {
	URL     string   `json:"url"`
	Headers []string `json:"headers,omitempty"`
}

// AccessMethod is one way the provider exposes object bytes
type AccessMethod struct {
	Type      string     `json:"type"`
	AccessID  string     `json:"access_id,omitempty"`
	AccessURL *AccessURL `json:"access_url,omitempty"`
	Region    string     `json:"region,omitempty"`
}

// Object is a DRS object-info document
type Object struct {
	ID            string         `json:"id"`
	Name          string         `json:"name,omitempty"`
	SelfURI       string         `json:"self_uri,omitempty"`
	Size          int64          `json:"size,omitempty"`
	CreatedTime   string         `json:"created_time,omitempty"`
	UpdatedTime   string         `json:"updated_time,omitempty"`
	MimeType      string         `json:"mime_type,omitempty"`
	Checksums     []Checksum     `json:"checksums,omitempty"`
	Aliases       []string       `json:"aliases,omitempty"`
	AccessMethods []AccessMethod `json:"access_methods,omitempty"`
}

// Authorization kinds a provider may declare during discovery
const (
	WireAuthNone     = "None"
	WireAuthBasic    = "BasicAuth"
	WireAuthBearer   = "BearerAuth"
	WireAuthPassport = "PassportAuth"
)

// authorizations is the OPTIONS discovery response body
type authorizations struct {
	SupportedTypes []string `json:"supported_types"`
}

// passportBody is the POST body for passport-authorized calls
type passportBody struct {
	Passports []string `json:"passports"`
}
