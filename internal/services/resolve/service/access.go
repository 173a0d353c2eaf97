package service

import (
	"context"

	"drsgate/internal/adapters/upstream/drs"
	"drsgate/internal/core/drsuri"
	"drsgate/internal/core/providers"
	perr "drsgate/internal/platform/errors"
	"drsgate/internal/services/resolve/domain"
)

// resolveAccessURL probes candidates in order against the provider's access
// endpoint. The first non-nil URL wins. Returns the URL (nil when tolerated
// absent), the auth type that produced it, and a terminal error otherwise
func (s *Service) resolveAccessURL(
	ctx context.Context,
	provider *providers.Provider,
	parsed drsuri.Parsed,
	obj *drs.Object,
	t providers.AccessMethodType,
	candidates []domain.Candidate,
) (*domain.AccessURL, string, error) {
	method := provider.Method(t)
	wire := matchWireMethod(obj, t)

	// nothing to fetch: surface the metadata-embedded URL when the catalog
	// says not to call the access endpoint for this method
	if method != nil && !method.FetchAccessURL {
		if wire != nil && wire.AccessURL != nil {
			return &domain.AccessURL{URL: wire.AccessURL.URL, Headers: wire.AccessURL.Headers}, "", nil
		}
		return s.exhausted(provider, parsed, t)
	}

	if wire == nil || wire.AccessID == "" {
		return s.exhausted(provider, parsed, t)
	}

	for _, c := range candidates {
		switch c.Kind {
		case domain.KindNone:
			u, err := s.drs.GetAccessURL(ctx, parsed.Host, parsed.ObjectID, wire.AccessID, "")
			if err != nil {
				return nil, c.AuthType, err
			}
			if u != nil {
				return &domain.AccessURL{URL: u.URL, Headers: u.Headers}, c.AuthType, nil
			}

		case domain.KindBearer:
			cred, err := c.Resolve(ctx, t)
			if err != nil {
				return nil, c.AuthType, err
			}
			if cred == nil {
				// an unobtainable bearer credential is terminal: the caller's
				// account simply is not linked for this provider
				return nil, c.AuthType, perr.MissingCredf(
					"no linked credential for provider %s; link your account and retry", provider.Name,
				)
			}
			u, err := s.drs.GetAccessURL(ctx, parsed.Host, parsed.ObjectID, wire.AccessID, cred.Bearer)
			if err != nil {
				return nil, c.AuthType, err
			}
			if u != nil {
				return &domain.AccessURL{URL: u.URL, Headers: u.Headers}, c.AuthType, nil
			}

		case domain.KindPassport:
			cred, err := c.Resolve(ctx, t)
			if err != nil || cred == nil || len(cred.Passports) == 0 {
				// passport absence is expected, move on
				continue
			}
			u, err := s.drs.PostAccessURL(ctx, parsed.Host, parsed.ObjectID, wire.AccessID, cred.Passports)
			if err != nil {
				// a failing passport endpoint falls through to the next candidate
				s.log.Warn().Err(err).Str("provider", provider.Name).Msg("passport access request failed, trying next candidate")
				continue
			}
			if u != nil {
				return &domain.AccessURL{URL: u.URL, Headers: u.Headers}, c.AuthType, nil
			}
		}
	}

	return s.exhausted(provider, parsed, t)
}

// exhausted applies the per-type fail-fast policy: bucket metadata usually
// carries an alternative access path, so gs tolerates a missing URL; every
// other type propagates
func (s *Service) exhausted(
	provider *providers.Provider,
	parsed drsuri.Parsed,
	t providers.AccessMethodType,
) (*domain.AccessURL, string, error) {
	if t.ToleratesNoAccessURL() {
		s.log.Info().Str("provider", provider.Name).Str("url", parsed.Raw).Msg("no access url, tolerated for bucket method")
		return nil, "", nil
	}
	return nil, "", perr.Upstreamf(
		"no authorization candidate yielded a %s access url from provider %s", t, provider.Name,
	)
}

// matchWireMethod finds the metadata access method of the requested type
func matchWireMethod(obj *drs.Object, t providers.AccessMethodType) *drs.AccessMethod {
	if obj == nil {
		return nil
	}
	for i := range obj.AccessMethods {
		if obj.AccessMethods[i].Type == string(t) {
			return &obj.AccessMethods[i]
		}
	}
	return nil
}
