package usecases

import (
	"context"
	"fmt"

	"github.com/guardino-io/guardino/internal/domain/reseller"
	"github.com/guardino-io/guardino/internal/shared/errors"
	"github.com/guardino-io/guardino/internal/shared/logger"
)

type CreateResellerCommand struct {
	ActorID        uint
	Username       string
	Password       string
	PricePerGB     int64
	PriceMasterSub int64
	DailyFee       int64
	CanCreateSub   bool
}

type CreateResellerResult struct {
	Reseller *reseller.Reseller
}

// CreateResellerUseCase creates a sub-reseller under the acting reseller.
// The actor must be root or carry the can_create_sub permission, and the
// child's prices are clamped so they never undercut the actor's own.
type CreateResellerUseCase struct {
	resellerRepo reseller.Repository
	hasher       PasswordHasher
	logger       logger.Interface
}

func NewCreateResellerUseCase(
	resellerRepo reseller.Repository,
	hasher PasswordHasher,
	logger logger.Interface,
) *CreateResellerUseCase {
	return &CreateResellerUseCase{
		resellerRepo: resellerRepo,
		hasher:       hasher,
		logger:       logger,
	}
}

func (uc *CreateResellerUseCase) Execute(ctx context.Context, cmd CreateResellerCommand) (*CreateResellerResult, error) {
	if cmd.Username == "" || cmd.Password == "" {
		return nil, errors.NewValidationError("username and password are required")
	}
	if cmd.PricePerGB < 0 || cmd.PriceMasterSub < 0 || cmd.DailyFee < 0 {
		return nil, errors.NewValidationError("prices and fees cannot be negative")
	}

	actor, err := uc.resellerRepo.GetByID(ctx, cmd.ActorID)
	if err != nil {
		return nil, fmt.Errorf("failed to load acting reseller: %w", err)
	}
	if actor == nil {
		return nil, errors.NewNotFoundError("reseller not found")
	}
	if !actor.MayCreateSubReseller() {
		return nil, errors.NewForbiddenError("not allowed to create sub-resellers")
	}

	existing, err := uc.resellerRepo.GetByUsername(ctx, cmd.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}
	if existing != nil {
		return nil, errors.NewConflictError("username already exists")
	}

	hash, err := uc.hasher.Hash(cmd.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	perGB, masterSub := actor.ClampChildPrices(cmd.PricePerGB, cmd.PriceMasterSub)

	child, err := reseller.NewReseller(
		cmd.Username,
		hash,
		reseller.SubOf(actor.ID()),
		perGB,
		masterSub,
		cmd.DailyFee,
		cmd.CanCreateSub,
	)
	if err != nil {
		return nil, errors.NewValidationError(err.Error())
	}

	if err := uc.resellerRepo.Create(ctx, child); err != nil {
		if errors.IsDuplicateError(err) {
			return nil, errors.NewConflictError("username already exists")
		}
		return nil, fmt.Errorf("failed to create reseller: %w", err)
	}

	uc.logger.Infow("sub-reseller created",
		"id", child.ID(), "username", child.Username(), "parent_id", actor.ID(),
		"price_per_gb", perGB, "price_master_sub", masterSub)
	return &CreateResellerResult{Reseller: child}, nil
}
