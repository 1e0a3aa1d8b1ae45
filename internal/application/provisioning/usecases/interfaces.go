// Package usecases implements the provisioning workflows: creating a VPN
// user across panels with compensation on partial failure, and tearing one
// down with a refund.
package usecases

import "context"

// TransactionManager runs a function inside a database transaction. The
// transaction is carried on the context so repositories join it.
type TransactionManager interface {
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// PayloadInvalidator drops a cached subscription payload so clients stop
// receiving configs for a user that no longer exists or was disabled.
type PayloadInvalidator interface {
	Invalidate(ctx context.Context, token string) error
}
