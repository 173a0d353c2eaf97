// Package fields defines the closed set of response fields a caller may
// request and the projection rules tied to them
package fields

import (
	"sort"
	"strings"

	perr "drsgate/internal/platform/errors"
)

// Field names callers may request
const (
	FileName             = "fileName"
	LocalizationPath     = "localizationPath"
	AccessURL            = "accessUrl"
	GoogleServiceAccount = "googleServiceAccount"
	TimeCreated          = "timeCreated"
	TimeUpdated          = "timeUpdated"
	Hashes               = "hashes"
	Size                 = "size"
	ContentType          = "contentType"
	GsURI                = "gsUri"
	Bucket               = "bucket"
	Name                 = "name"
	BondProvider         = "bondProvider"
)

// All is the closed set of known fields
var All = []string{
	FileName,
	LocalizationPath,
	AccessURL,
	GoogleServiceAccount,
	TimeCreated,
	TimeUpdated,
	Hashes,
	Size,
	ContentType,
	GsURI,
	Bucket,
	Name,
	BondProvider,
}

var known = func() map[string]struct{} {
	m := make(map[string]struct{}, len(All))
	for _, f := range All {
		m[f] = struct{}{}
	}
	return m
}()

// fields answerable from provider config and broker state alone,
// without calling the provider's object endpoint
var noRoundTrip = map[string]struct{}{
	GoogleServiceAccount: {},
	BondProvider:         {},
}

// Set is a requested-field set with membership helpers
type Set map[string]struct{}

// Normalize validates requested and returns the effective set. An empty or
// absent request means every known field
func Normalize(requested []string) (Set, error) {
	if len(requested) == 0 {
		s := make(Set, len(All))
		for _, f := range All {
			s[f] = struct{}{}
		}
		return s, nil
	}
	s := make(Set, len(requested))
	var bad []string
	for _, f := range requested {
		if _, ok := known[f]; !ok {
			bad = append(bad, f)
			continue
		}
		s[f] = struct{}{}
	}
	if len(bad) > 0 {
		sort.Strings(bad)
		return nil, perr.InvalidArgf("unknown requested fields: %s", strings.Join(bad, ", "))
	}
	return s, nil
}

// Has reports membership
func (s Set) Has(field string) bool {
	_, ok := s[field]
	return ok
}

// NeedsObjectInfo reports whether any requested field requires a provider
// object round trip. A set of purely broker-derived fields can skip the
// provider entirely
func (s Set) NeedsObjectInfo() bool {
	for f := range s {
		if _, ok := noRoundTrip[f]; !ok {
			return true
		}
	}
	return false
}

// NeedsAccessURL reports whether the access-URL resolution step is required
func (s Set) NeedsAccessURL() bool { return s.Has(AccessURL) }
