// Package usecases implements reseller management: authentication,
// sub-reseller creation, wallet adjustments, and ledger history.
package usecases

import "context"

// TransactionManager runs a function inside a database transaction.
type TransactionManager interface {
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// PasswordHasher hashes and verifies reseller passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) error
}

// TokenIssuer signs access tokens for authenticated resellers.
type TokenIssuer interface {
	Generate(resellerID uint, isRoot bool) (string, error)
	ExpiresIn() int64
}
