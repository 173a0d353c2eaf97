// Package service implements the DRS resolution pipeline: parse, provider
// match, authorization negotiation, metadata fetch, access-URL probing and
// field projection
package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"drsgate/internal/core/drsuri"
	"drsgate/internal/core/fields"
	"drsgate/internal/core/providers"
	"drsgate/internal/platform/cache"
	perr "drsgate/internal/platform/errors"
	"drsgate/internal/platform/logger"
	"drsgate/internal/platform/metrics"
	pnet "drsgate/internal/platform/net"
	"drsgate/internal/services/audit"
	"drsgate/internal/services/resolve/domain"
)

const (
	defaultTimeout = 45 * time.Second
	credentialTTL  = 60 * time.Second
)

// Config tunes the resolution pipeline
type Config struct {
	// Timeout is the caller-visible deadline for one resolution
	Timeout time.Duration

	// CredentialTTL applies to all three credential caches
	CredentialTTL time.Duration
}

// Service resolves DRS URIs end to end
type Service struct {
	reg     *providers.Registry
	uris    *drsuri.Resolver
	drs     domain.ProviderClient
	broker  domain.Broker
	sink    audit.Sink
	metrics *metrics.Metrics
	log     logger.Logger
	timeout time.Duration

	// the three credential caches are the only shared mutable state
	passports   *cache.Cache[string, string]
	fenceTokens *cache.Cache[string, string]
	saKeys      *cache.Cache[string, json.RawMessage]
}

// New wires a Service
func New(
	reg *providers.Registry,
	client domain.ProviderClient,
	broker domain.Broker,
	sink audit.Sink,
	m *metrics.Metrics,
	cfg Config,
) *Service {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.CredentialTTL <= 0 {
		cfg.CredentialTTL = credentialTTL
	}
	return &Service{
		reg:         reg,
		uris:        drsuri.New(reg.CompactHosts()),
		drs:         client,
		broker:      broker,
		sink:        sink,
		metrics:     m,
		log:         *logger.Named("resolve"),
		timeout:     cfg.Timeout,
		passports:   cache.New[string, string](cfg.CredentialTTL),
		fenceTokens: cache.New[string, string](cfg.CredentialTTL),
		saKeys:      cache.New[string, json.RawMessage](cfg.CredentialTTL),
	}
}

// ClearCredentialCaches empties all three caches. Test and ops hook
func (s *Service) ClearCredentialCaches() {
	s.passports.Clear()
	s.fenceTokens.Clear()
	s.saKeys.Clear()
}

// Resolve runs one resolution under the service deadline. The caller's
// bearer token and client ip ride on ctx
func (s *Service) Resolve(ctx context.Context, in domain.ResolveInput) (*domain.ResolveOutput, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	out, err := s.resolve(ctx, in)
	if err != nil && (errors.Is(err, context.DeadlineExceeded) || ctx.Err() == context.DeadlineExceeded) {
		return nil, perr.Unavailablef("resolution of %s exceeded the service deadline", in.URL)
	}
	return out, err
}

func (s *Service) resolve(ctx context.Context, in domain.ResolveInput) (*domain.ResolveOutput, error) {
	set, err := fields.Normalize(in.Fields)
	if err != nil {
		return nil, err
	}

	parsed, err := s.uris.Parse(in.URL)
	if err != nil {
		return nil, err
	}

	provider, err := s.reg.Determine(parsed.Host)
	if err != nil {
		return nil, err
	}

	callerToken := pnet.CallerToken(ctx)

	// fields answerable without a provider round trip short-circuit the
	// whole upstream conversation
	if !set.NeedsObjectInfo() && !in.ForceAccessURL {
		out, err := s.assembleLocal(ctx, set, provider, callerToken)
		if err != nil {
			s.audit(ctx, provider, in, "", audit.OutcomeResolutionFailed)
			return nil, err
		}
		s.audit(ctx, provider, in, "", audit.OutcomeResolutionSucceeded)
		return out, nil
	}

	candidates, err := s.buildAuthorizations(ctx, provider, parsed, callerToken)
	if err != nil {
		s.audit(ctx, provider, in, "", audit.OutcomeResolutionFailed)
		return nil, err
	}

	// metadata authorization only ever uses the caller's own token
	bearer := ""
	if provider.MetadataAuth {
		bearer = callerToken
	}
	obj, err := s.drs.GetObject(ctx, parsed.Host, parsed.ObjectID, bearer)
	if err != nil {
		s.audit(ctx, provider, in, "", audit.OutcomeResolutionFailed)
		s.metrics.CountResolution(provider.Name, string(audit.OutcomeResolutionFailed))
		return nil, err
	}

	methodType := s.pickMethodType(provider, in.CloudPlatformHint)

	var accessURL *domain.AccessURL
	authType := ""
	urlFetched := false
	if set.NeedsAccessURL() || in.ForceAccessURL {
		accessURL, authType, err = s.resolveAccessURL(ctx, provider, parsed, obj, methodType, candidates)
		if err != nil {
			s.audit(ctx, provider, in, authType, audit.OutcomeResolutionFailed)
			s.metrics.CountResolution(provider.Name, string(audit.OutcomeResolutionFailed))
			return nil, err
		}
		urlFetched = accessURL != nil
	}

	out, err := s.assemble(ctx, set, provider, obj, accessURL, callerToken)
	if err != nil {
		s.audit(ctx, provider, in, authType, audit.OutcomeResolutionFailed)
		return nil, err
	}

	outcome := audit.OutcomeResolutionSucceeded
	if urlFetched {
		outcome = audit.OutcomeSignedURLIssued
	}
	s.audit(ctx, provider, in, authType, outcome)
	s.metrics.CountResolution(provider.Name, string(outcome))
	return out, nil
}

// pickMethodType selects which access method type to resolve: the caller's
// hint when given, else the first configured method that fetches URLs, else
// the first configured method
func (s *Service) pickMethodType(p *providers.Provider, hint string) providers.AccessMethodType {
	if hint != "" {
		return providers.AccessMethodType(hint)
	}
	for _, m := range p.AccessMethods {
		if m.FetchAccessURL {
			return m.Type
		}
	}
	if len(p.AccessMethods) > 0 {
		return p.AccessMethods[0].Type
	}
	return providers.TypeGS
}

func (s *Service) audit(ctx context.Context, p *providers.Provider, in domain.ResolveInput, authType string, outcome audit.Outcome) {
	s.sink.Record(audit.Event{
		Provider:    p.Name,
		DrsURL:      in.URL,
		ClientIP:    pnet.ClientIP(ctx),
		AuthType:    authType,
		Outcome:     outcome,
		ServiceName: in.ServiceName,
	})
}

// cached credential fetchers. Each counts hits and misses and shares
// in-flight upstream calls per key

func (s *Service) fenceToken(ctx context.Context, callerToken, broker string) (string, error) {
	key := callerToken + "\x00" + broker
	if v, ok := s.fenceTokens.Get(key); ok {
		s.metrics.CountCache("fence_token", "hit")
		return v, nil
	}
	s.metrics.CountCache("fence_token", "miss")
	return s.fenceTokens.GetOrCompute(ctx, key, func(ctx context.Context) (string, error) {
		return s.broker.AccessToken(ctx, callerToken, broker)
	})
}

func (s *Service) passport(ctx context.Context, callerToken string) (string, error) {
	if v, ok := s.passports.Get(callerToken); ok {
		s.metrics.CountCache("passport", "hit")
		return v, nil
	}
	s.metrics.CountCache("passport", "miss")
	return s.passports.GetOrCompute(ctx, callerToken, func(ctx context.Context) (string, error) {
		return s.broker.Passport(ctx, callerToken)
	})
}

func (s *Service) serviceAccountKey(ctx context.Context, callerToken, broker string) (json.RawMessage, error) {
	key := callerToken + "\x00" + broker
	if v, ok := s.saKeys.Get(key); ok {
		s.metrics.CountCache("sa_key", "hit")
		return v, nil
	}
	s.metrics.CountCache("sa_key", "miss")
	return s.saKeys.GetOrCompute(ctx, key, func(ctx context.Context) (json.RawMessage, error) {
		return s.broker.ServiceAccountKey(ctx, callerToken, broker)
	})
}
