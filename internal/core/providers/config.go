// Package providers holds the provider catalog: which DRS hosts map to which
// repository, what authorization each accepts, and the compact-id table.
//
// The catalog loads from a YAML file when DRSGATE_PROVIDERS_FILE is set and
// falls back to the built-in defaults otherwise. It is read-only after load
package providers

import (
	"os"

	"drsgate/internal/platform/config"
	perr "drsgate/internal/platform/errors"
	"drsgate/internal/platform/net/http/bind"

	"gopkg.in/yaml.v3"
)

// AuthKind names a way of authorizing a provider call
type AuthKind string

// Authorization kinds an access method may declare
const (
	AuthNone           AuthKind = "none"
	AuthFenceToken     AuthKind = "fence_token"
	AuthCurrentRequest AuthKind = "current_request"
	AuthPassport       AuthKind = "passport"
)

// AccessMethodType is the closed set of storage kinds providers expose
type AccessMethodType string

// Access method types
const (
	TypeGS    AccessMethodType = "gs"
	TypeS3    AccessMethodType = "s3"
	TypeAzure AccessMethodType = "azure"
	TypeHTTPS AccessMethodType = "https"
)

// ToleratesNoAccessURL reports whether exhausting every authorization
// candidate without a URL is acceptable for this method type. Only bucket
// ("gs") metadata carries a usable alternative access path, so only it
// tolerates absence; every other type treats exhaustion as fatal
func (t AccessMethodType) ToleratesNoAccessURL() bool { return t == TypeGS }

// AccessMethod is one configured way to reach object bytes
type AccessMethod struct {
	Type AccessMethodType `yaml:"type" validate:"required,oneof=gs s3 azure https"`

	// Auth is tried first; Fallback, when set, is tried after it
	Auth     AuthKind `yaml:"auth" validate:"required,oneof=none fence_token current_request passport"`
	Fallback AuthKind `yaml:"fallback,omitempty" validate:"omitempty,oneof=none fence_token current_request passport"`

	FetchAccessURL bool `yaml:"fetchAccessUrl"`
}

// Provider is one configured repository
type Provider struct {
	Name string `yaml:"name" validate:"required"`

	// HostPattern is an anchored regex matched against the normalized host.
	// Catalog order is significant: the first match wins, so more specific
	// patterns must precede catch-alls
	HostPattern string `yaml:"hostPattern" validate:"required"`

	// MetadataAuth attaches the caller's own bearer token to object-info
	// calls. Access-URL authorization is negotiated separately
	MetadataAuth bool `yaml:"metadataAuth"`

	// IdentityBroker selects the key under which fence credentials are
	// linked for this provider ("" when the provider never uses fence)
	IdentityBroker string `yaml:"identityBroker,omitempty"`

	// UseAliasesForLocalizationPath surfaces the first metadata alias as the
	// localization path in responses
	UseAliasesForLocalizationPath bool `yaml:"useAliasesForLocalizationPath"`

	AccessMethods []AccessMethod `yaml:"accessMethods" validate:"omitempty,dive"`
}

// Method returns the first access method of the given type, nil when the
// provider declares none
func (p *Provider) Method(t AccessMethodType) *AccessMethod {
	for i := range p.AccessMethods {
		if p.AccessMethods[i].Type == t {
			return &p.AccessMethods[i]
		}
	}
	return nil
}

// File is the on-disk catalog shape
type File struct {
	RetiredDomains []string          `yaml:"retiredDomains"`
	CompactIDs     map[string]string `yaml:"compactIds"`
	Providers      []Provider        `yaml:"providers" validate:"required,min=1,dive"`
}

// Defaults returns the built-in catalog
func Defaults() File {
	return File{
		RetiredDomains: []string{"dataguids.org"},
		CompactIDs: map[string]string{
			"dg.4503":   "gen3.biodatacatalyst.nhlbi.nih.gov",
			"dg.anv0":   "data.theanvil.io",
			"dg.4dfc":   "nci-crdc.datacommons.io",
			"dg.f82a1a": "data.kidsfirstdrc.org",
		},
		Providers: []Provider{
			{
				Name:           "anvil",
				HostPattern:    `.*\.theanvil\.io`,
				IdentityBroker: "anvil",
				AccessMethods: []AccessMethod{
					{Type: TypeGS, Auth: AuthFenceToken, FetchAccessURL: true},
				},
			},
			{
				Name:           "biodatacatalyst",
				HostPattern:    `(staging\.)?gen3\.biodatacatalyst\.nhlbi\.nih\.gov`,
				IdentityBroker: "fence",
				AccessMethods: []AccessMethod{
					{Type: TypeGS, Auth: AuthPassport, Fallback: AuthFenceToken, FetchAccessURL: true},
				},
			},
			{
				Name:           "crdc",
				HostPattern:    `nci-crdc\.datacommons\.io|.*data\.cancer\.gov`,
				IdentityBroker: "dcf_fence",
				AccessMethods: []AccessMethod{
					{Type: TypeGS, Auth: AuthFenceToken, FetchAccessURL: true},
					{Type: TypeS3, Auth: AuthFenceToken, FetchAccessURL: true},
				},
			},
			{
				Name:           "kidsfirst",
				HostPattern:    `data\.kidsfirstdrc\.org`,
				IdentityBroker: "kids_first",
				AccessMethods: []AccessMethod{
					{Type: TypeS3, Auth: AuthFenceToken, FetchAccessURL: true},
				},
			},
			{
				Name:                          "terra_data_repo",
				HostPattern:                   `jade.*\.datarepo-.*\.broadinstitute\.org|data\.terra\.bio`,
				MetadataAuth:                  true,
				UseAliasesForLocalizationPath: true,
				AccessMethods: []AccessMethod{
					{Type: TypeGS, Auth: AuthCurrentRequest, FetchAccessURL: true},
					{Type: TypeAzure, Auth: AuthCurrentRequest, FetchAccessURL: true},
				},
			},
			{
				Name:        "passport_test",
				HostPattern: `ctds-test-env\.planx-pla\.net`,
				AccessMethods: []AccessMethod{
					{Type: TypeGS, Auth: AuthPassport, Fallback: AuthNone, FetchAccessURL: true},
				},
			},
		},
	}
}

// Load builds a Registry from DRSGATE_PROVIDERS_FILE, or from the built-in
// defaults when the variable is unset
func Load(cfg config.Conf) (*Registry, error) {
	path := cfg.MayString("PROVIDERS_FILE", "")
	if path == "" {
		return New(Defaults())
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeUnknown, "read provider catalog %s", path)
	}
	var f File
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeUnknown, "parse provider catalog %s", path)
	}
	return New(f)
}

func validateFile(f File) error {
	if err := bind.Get().Validator.Struct(f); err != nil {
		_, msg := bind.ValidationFieldAndMessage(err)
		return perr.Validationf("provider catalog: %s", msg)
	}
	return nil
}
