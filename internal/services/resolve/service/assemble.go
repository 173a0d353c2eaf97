package service

import (
	"context"
	"net/url"
	"path"
	"regexp"
	"time"

	"drsgate/internal/adapters/upstream/drs"
	"drsgate/internal/core/fields"
	"drsgate/internal/core/providers"
	pstr "drsgate/internal/platform/strings"
	ptime "drsgate/internal/platform/time"
	"drsgate/internal/services/resolve/domain"
)

var gsURLRe = regexp.MustCompile(`^gs://([^/]+)/(.+)$`)

// assembleLocal answers projections that need no provider round trip:
// broker-derived and catalog-derived fields only
func (s *Service) assembleLocal(
	ctx context.Context,
	set fields.Set,
	provider *providers.Provider,
	callerToken string,
) (*domain.ResolveOutput, error) {
	out := &domain.ResolveOutput{}
	if set.Has(fields.BondProvider) && provider.IdentityBroker != "" {
		out.BondProvider = pstr.Ptr(provider.IdentityBroker)
	}
	if set.Has(fields.GoogleServiceAccount) && provider.IdentityBroker != "" && callerToken != "" {
		key, err := s.serviceAccountKey(ctx, callerToken, provider.IdentityBroker)
		if err != nil {
			return nil, err
		}
		out.GoogleServiceAccount = key
	}
	return out, nil
}

// assemble projects metadata, the resolved access URL and catalog facts into
// exactly the fields the caller asked for
func (s *Service) assemble(
	ctx context.Context,
	set fields.Set,
	provider *providers.Provider,
	obj *drs.Object,
	accessURL *domain.AccessURL,
	callerToken string,
) (*domain.ResolveOutput, error) {
	out, err := s.assembleLocal(ctx, set, provider, callerToken)
	if err != nil {
		return nil, err
	}
	if accessURL != nil && set.Has(fields.AccessURL) {
		out.AccessURL = accessURL
	}
	if obj == nil {
		return out, nil
	}

	if set.Has(fields.FileName) {
		if name := fileNameOf(obj); name != "" {
			out.FileName = pstr.Ptr(name)
		}
	}
	if set.Has(fields.LocalizationPath) && provider.UseAliasesForLocalizationPath && len(obj.Aliases) > 0 {
		out.LocalizationPath = pstr.Ptr(obj.Aliases[0])
	}
	if set.Has(fields.TimeCreated) && obj.CreatedTime != "" {
		out.TimeCreated = pstr.Ptr(isoTime(obj.CreatedTime))
	}
	if set.Has(fields.TimeUpdated) && obj.UpdatedTime != "" {
		out.TimeUpdated = pstr.Ptr(isoTime(obj.UpdatedTime))
	}
	if set.Has(fields.Hashes) && len(obj.Checksums) > 0 {
		hashes := make(map[string]string, len(obj.Checksums))
		for _, c := range obj.Checksums {
			hashes[c.Type] = c.Checksum
		}
		out.Hashes = hashes
	}
	if set.Has(fields.Size) {
		out.Size = &obj.Size
	}
	if set.Has(fields.ContentType) && obj.MimeType != "" {
		out.ContentType = pstr.Ptr(obj.MimeType)
	}

	if gsURI := gsURIOf(obj); gsURI != "" {
		if set.Has(fields.GsURI) {
			out.GsURI = pstr.Ptr(gsURI)
		}
		if m := gsURLRe.FindStringSubmatch(gsURI); m != nil {
			if set.Has(fields.Bucket) {
				out.Bucket = pstr.Ptr(m[1])
			}
			if set.Has(fields.Name) {
				out.Name = pstr.Ptr(m[2])
			}
		}
	}
	return out, nil
}

// fileNameOf prefers the metadata name, falling back to the basename of the
// first access method's URL path
func fileNameOf(obj *drs.Object) string {
	if obj.Name != "" {
		return obj.Name
	}
	for _, m := range obj.AccessMethods {
		if m.AccessURL == nil || m.AccessURL.URL == "" {
			continue
		}
		u, err := url.Parse(m.AccessURL.URL)
		if err != nil || u.Path == "" {
			continue
		}
		if base := path.Base(u.Path); base != "." && base != "/" {
			return base
		}
	}
	return ""
}

// gsURIOf extracts a gs://bucket/name URL from the object's access methods
func gsURIOf(obj *drs.Object) string {
	for _, m := range obj.AccessMethods {
		if m.AccessURL != nil && gsURLRe.MatchString(m.AccessURL.URL) {
			return m.AccessURL.URL
		}
	}
	return ""
}

// isoTime normalizes provider timestamps to RFC3339 UTC, passing malformed
// values through untouched
func isoTime(raw string) string {
	if ts, err := time.Parse(time.RFC3339, raw); err == nil {
		return ptime.ISO(ts)
	}
	return raw
}
