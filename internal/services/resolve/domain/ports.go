package domain

import (
	"context"
	"encoding/json"

	"drsgate/internal/adapters/upstream/drs"
)

// ProviderClient is the DRS provider surface the resolver consumes
type ProviderClient interface {
	DiscoverAuthorizations(ctx context.Context, host, objectID string) ([]string, error)
	GetObject(ctx context.Context, host, objectID, bearer string) (*drs.Object, error)
	PostObject(ctx context.Context, host, objectID string, passports []string) (*drs.Object, error)
	GetAccessURL(ctx context.Context, host, objectID, accessID, bearer string) (*drs.AccessURL, error)
	PostAccessURL(ctx context.Context, host, objectID, accessID string, passports []string) (*drs.AccessURL, error)
}

// Broker is the identity-broker surface the resolver consumes. Empty results
// mean the caller has no linked credential of that class
type Broker interface {
	AccessToken(ctx context.Context, callerToken, broker string) (string, error)
	ServiceAccountKey(ctx context.Context, callerToken, broker string) (json.RawMessage, error)
	Passport(ctx context.Context, callerToken string) (string, error)
}
