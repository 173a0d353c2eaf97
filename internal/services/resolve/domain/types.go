package domain

import (
	"context"

	"drsgate/internal/core/providers"
)

// CandidateKind tags an authorization candidate
type CandidateKind string

// Candidate kinds
const (
	KindNone     CandidateKind = "none"
	KindBearer   CandidateKind = "bearer"
	KindPassport CandidateKind = "passport"
)

// Credential is a concrete authorization produced by a candidate
type Credential struct {
	Bearer    string
	Passports []string
}

// Candidate is one authorization option in probe order. Resolve is lazy and
// may perform a cached identity-broker call; a nil credential means the
// candidate cannot produce one (unlinked account, no passport).
// AuthType labels the candidate for audit records
type Candidate struct {
	Kind     CandidateKind
	AuthType string
	Resolve  func(ctx context.Context, t providers.AccessMethodType) (*Credential, error)
}
