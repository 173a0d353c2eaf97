// Package domain holds DTOs and contracts for DRS resolution
package domain

import "encoding/json"

// ResolveInput is the resolution request payload
type ResolveInput struct {
	URL string `json:"url" validate:"required,min=1" example:"drs://dg.anv0:v1_abc_def"`

	// Fields limits the response projection; empty means every known field
	Fields []string `json:"fields,omitempty" validate:"omitempty,dive,min=1" example:"accessUrl"`

	// ForceAccessURL requests access-URL resolution even when the field
	// projection alone would not require it
	ForceAccessURL bool `json:"forceAccessUrl,omitempty"`

	// CloudPlatformHint picks the access method type to resolve when the
	// provider declares several
	CloudPlatformHint string `json:"cloudPlatformHint,omitempty" validate:"omitempty,oneof=gs s3 azure https" example:"gs"`

	// ServiceName identifies the calling service in audit records
	ServiceName string `json:"serviceName,omitempty" validate:"omitempty,max=100" example:"terra-workspace"`
}

// AccessURL is a resolved, possibly signed, object location
type AccessURL struct {
	URL     string   `json:"url"`
	Headers []string `json:"headers,omitempty"`
}

// ResolveOutput is the field-projected resolution response. Every field is
// optional; only requested and resolvable fields are serialized, the rest
// are omitted entirely rather than emitted as null
type ResolveOutput struct {
	FileName             *string           `json:"fileName,omitempty"`
	LocalizationPath     *string           `json:"localizationPath,omitempty"`
	AccessURL            *AccessURL        `json:"accessUrl,omitempty"`
	GoogleServiceAccount json.RawMessage   `json:"googleServiceAccount,omitempty"`
	TimeCreated          *string           `json:"timeCreated,omitempty"`
	TimeUpdated          *string           `json:"timeUpdated,omitempty"`
	Hashes               map[string]string `json:"hashes,omitempty"`
	Size                 *int64            `json:"size,omitempty"`
	ContentType          *string           `json:"contentType,omitempty"`
	GsURI                *string           `json:"gsUri,omitempty"`
	Bucket               *string           `json:"bucket,omitempty"`
	Name                 *string           `json:"name,omitempty"`
	BondProvider         *string           `json:"bondProvider,omitempty"`
}
