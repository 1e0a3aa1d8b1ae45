package usecases

import (
	"context"
	"fmt"

	"github.com/guardino-io/guardino/internal/domain/reseller"
	"github.com/guardino-io/guardino/internal/shared/errors"
	"github.com/guardino-io/guardino/internal/shared/logger"
)

type AuthenticateCommand struct {
	Username string
	Password string
}

type AuthenticateResult struct {
	Reseller    *reseller.Reseller
	AccessToken string
	ExpiresIn   int64
}

// AuthenticateUseCase verifies reseller credentials and issues an access
// token. Suspended resellers are rejected here; locked resellers may still
// log in to inspect their account.
type AuthenticateUseCase struct {
	resellerRepo reseller.Repository
	hasher       PasswordHasher
	tokens       TokenIssuer
	logger       logger.Interface
}

func NewAuthenticateUseCase(
	resellerRepo reseller.Repository,
	hasher PasswordHasher,
	tokens TokenIssuer,
	logger logger.Interface,
) *AuthenticateUseCase {
	return &AuthenticateUseCase{
		resellerRepo: resellerRepo,
		hasher:       hasher,
		tokens:       tokens,
		logger:       logger,
	}
}

func (uc *AuthenticateUseCase) Execute(ctx context.Context, cmd AuthenticateCommand) (*AuthenticateResult, error) {
	if cmd.Username == "" || cmd.Password == "" {
		return nil, errors.NewValidationError("username and password are required")
	}

	r, err := uc.resellerRepo.GetByUsername(ctx, cmd.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to load reseller: %w", err)
	}
	if r == nil {
		return nil, errors.NewUnauthorizedError("invalid credentials")
	}
	if err := uc.hasher.Verify(cmd.Password, r.PasswordHash()); err != nil {
		uc.logger.Warnw("failed login attempt", "username", cmd.Username)
		return nil, errors.NewUnauthorizedError("invalid credentials")
	}
	if r.Status() == reseller.StatusSuspended {
		return nil, errors.NewForbiddenError("account is suspended")
	}

	token, err := uc.tokens.Generate(r.ID(), r.IsRoot())
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	uc.logger.Infow("reseller logged in", "reseller_id", r.ID(), "username", r.Username())
	return &AuthenticateResult{
		Reseller:    r,
		AccessToken: token,
		ExpiresIn:   uc.tokens.ExpiresIn(),
	}, nil
}
