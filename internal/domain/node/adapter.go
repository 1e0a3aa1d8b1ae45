package node

import "context"

// CreateAccountInput carries everything a backend may need to create an
// account. Minimal-capability backends ignore quota and expiry; the
// reconciliation loop enforces both for them instead.
type CreateAccountInput struct {
	Username       string
	QuotaBytes     int64 // 0 = unlimited
	ExpiryEpoch    int64 // unix seconds, 0 = unlimited
	ProtocolConfig map[string]interface{}
}

// AccountUsage is the normalized view of a remote account's consumption.
type AccountUsage struct {
	UsedBytes int64
	Raw       map[string]interface{}
}

// ProviderAdapter normalizes one panel type's API into a uniform capability
// contract. All operations report network/HTTP failures as upstream errors
// and credential-exchange failures as upstream auth errors
// (shared/errors).
type ProviderAdapter interface {
	// CreateAccount creates the account and returns the identity the
	// backend knows it by. Unsupported fields are dropped, never rejected.
	CreateAccount(ctx context.Context, in CreateAccountInput) (remoteID string, err error)

	// FetchAccount reads the account's current usage.
	FetchAccount(ctx context.Context, remoteID string) (*AccountUsage, error)

	// ModifyAccount updates quota and expiry where the backend supports them.
	ModifyAccount(ctx context.Context, remoteID string, quotaBytes, expiryEpoch int64) error

	// DeleteAccount removes the account. Idempotent: deleting an already
	// absent account is not an error.
	DeleteAccount(ctx context.Context, remoteID string) error

	// SuspendAccount disables the account without deleting it.
	SuspendAccount(ctx context.Context, remoteID string) error

	// SubscriptionURI returns the URI serving this account's subscription
	// payload. Minimal-capability backends return a direct configuration
	// file URI; an empty string means no URI is available.
	SubscriptionURI(ctx context.Context, remoteID string) (string, error)

	// TestConnectivity verifies the node is reachable with its stored
	// credentials. Used only at node registration time.
	TestConnectivity(ctx context.Context) error
}

// AdapterRegistry resolves a node's declared panel type to its adapter.
// An unrecognized panel type is a hard error, never a silent default.
type AdapterRegistry interface {
	Resolve(n *Node) (ProviderAdapter, error)
}
