package service

import (
	"context"

	"drsgate/internal/adapters/upstream/drs"
	"drsgate/internal/core/drsuri"
	"drsgate/internal/core/providers"
	perr "drsgate/internal/platform/errors"
	"drsgate/internal/services/resolve/domain"
)

// buildAuthorizations produces the ordered candidate list the access-URL
// resolver probes. Provider-declared discovery wins outright when it
// answers; static configuration is the fallback, never merged with it
func (s *Service) buildAuthorizations(
	ctx context.Context,
	provider *providers.Provider,
	parsed drsuri.Parsed,
	callerToken string,
) ([]domain.Candidate, error) {
	kinds, err := s.drs.DiscoverAuthorizations(ctx, parsed.Host, parsed.ObjectID)
	if err != nil || len(kinds) == 0 {
		// discovery unavailability is expected, never an error
		if err != nil {
			s.log.Debug().Err(err).Str("host", parsed.Host).Msg("authorization discovery unavailable")
		}
		return s.candidatesFromConfig(provider, callerToken), nil
	}
	return s.candidatesFromDiscovery(kinds, provider, callerToken)
}

func (s *Service) candidatesFromDiscovery(
	kinds []string,
	provider *providers.Provider,
	callerToken string,
) ([]domain.Candidate, error) {
	out := make([]domain.Candidate, 0, len(kinds))
	for _, k := range kinds {
		switch k {
		case drs.WireAuthNone:
			out = append(out, noneCandidate())
		case drs.WireAuthBasic:
			return nil, perr.InvalidArgf("provider %s requires basic authorization, which is not supported", provider.Name)
		case drs.WireAuthBearer:
			out = append(out, s.bearerCandidate(provider, callerToken))
		case drs.WireAuthPassport:
			out = append(out, s.passportCandidate(callerToken))
		default:
			s.log.Warn().Str("kind", k).Str("provider", provider.Name).Msg("ignoring unknown authorization kind")
		}
	}
	return out, nil
}

// candidatesFromConfig expands each access method into its primary and
// fallback candidates, preserving per-method order across methods
func (s *Service) candidatesFromConfig(provider *providers.Provider, callerToken string) []domain.Candidate {
	var out []domain.Candidate
	for _, m := range provider.AccessMethods {
		out = append(out, s.candidateFor(m.Auth, provider, callerToken))
		if m.Fallback != "" {
			out = append(out, s.candidateFor(m.Fallback, provider, callerToken))
		}
	}
	return out
}

func (s *Service) candidateFor(auth providers.AuthKind, provider *providers.Provider, callerToken string) domain.Candidate {
	switch auth {
	case providers.AuthFenceToken:
		return domain.Candidate{
			Kind:     domain.KindBearer,
			AuthType: string(providers.AuthFenceToken),
			Resolve: func(ctx context.Context, _ providers.AccessMethodType) (*domain.Credential, error) {
				return s.resolveFence(ctx, provider, callerToken)
			},
		}
	case providers.AuthCurrentRequest:
		return domain.Candidate{
			Kind:     domain.KindBearer,
			AuthType: string(providers.AuthCurrentRequest),
			Resolve: func(_ context.Context, _ providers.AccessMethodType) (*domain.Credential, error) {
				return bearerOrNil(callerToken), nil
			},
		}
	case providers.AuthPassport:
		return s.passportCandidate(callerToken)
	default:
		return noneCandidate()
	}
}

// bearerCandidate defers the primary-auth decision to the access method
// matching the requested type at probe time
func (s *Service) bearerCandidate(provider *providers.Provider, callerToken string) domain.Candidate {
	return domain.Candidate{
		Kind:     domain.KindBearer,
		AuthType: string(domain.KindBearer),
		Resolve: func(ctx context.Context, t providers.AccessMethodType) (*domain.Credential, error) {
			m := provider.Method(t)
			if m == nil {
				return nil, nil
			}
			switch m.Auth {
			case providers.AuthFenceToken:
				return s.resolveFence(ctx, provider, callerToken)
			case providers.AuthCurrentRequest:
				return bearerOrNil(callerToken), nil
			case providers.AuthPassport:
				// a passport method reached through a bearer candidate is a
				// configuration anomaly; the fallback decides, when present
				switch m.Fallback {
				case providers.AuthFenceToken:
					return s.resolveFence(ctx, provider, callerToken)
				case providers.AuthCurrentRequest:
					return bearerOrNil(callerToken), nil
				}
				return nil, perr.InvalidArgf(
					"provider %s declares bearer authorization but method %s is configured for passports only",
					provider.Name, t,
				)
			default:
				return &domain.Credential{}, nil
			}
		},
	}
}

func (s *Service) passportCandidate(callerToken string) domain.Candidate {
	return domain.Candidate{
		Kind:     domain.KindPassport,
		AuthType: string(providers.AuthPassport),
		Resolve: func(ctx context.Context, _ providers.AccessMethodType) (*domain.Credential, error) {
			if callerToken == "" {
				return nil, nil
			}
			pp, err := s.passport(ctx, callerToken)
			if err != nil || pp == "" {
				// a missing or unfetchable passport skips the candidate
				if err != nil {
					s.log.Debug().Err(err).Msg("passport fetch failed, skipping candidate")
				}
				return nil, nil
			}
			return &domain.Credential{Passports: []string{pp}}, nil
		},
	}
}

func (s *Service) resolveFence(ctx context.Context, provider *providers.Provider, callerToken string) (*domain.Credential, error) {
	if callerToken == "" || provider.IdentityBroker == "" {
		return nil, nil
	}
	tok, err := s.fenceToken(ctx, callerToken, provider.IdentityBroker)
	if err != nil {
		return nil, err
	}
	return bearerOrNil(tok), nil
}

func noneCandidate() domain.Candidate {
	return domain.Candidate{
		Kind:     domain.KindNone,
		AuthType: string(domain.KindNone),
		Resolve: func(context.Context, providers.AccessMethodType) (*domain.Credential, error) {
			return &domain.Credential{}, nil
		},
	}
}

func bearerOrNil(tok string) *domain.Credential {
	if tok == "" {
		return nil
	}
	return &domain.Credential{Bearer: tok}
}
