package usecases

import (
	"context"
	"fmt"

	"github.com/guardino-io/guardino/internal/domain/reseller"
	"github.com/guardino-io/guardino/internal/shared/errors"
	"github.com/guardino-io/guardino/internal/shared/logger"
)

type LedgerHistoryCommand struct {
	ActorID  uint
	IsRoot   bool
	TargetID uint // 0 means the actor's own history
	Limit    int
}

type LedgerHistoryResult struct {
	Entries []*reseller.LedgerEntry
	Balance int64
}

// LedgerHistoryUseCase returns the ledger entries of a reseller. A reseller
// may read its own history and its children's; root may read anyone's.
type LedgerHistoryUseCase struct {
	resellerRepo reseller.Repository
	ledgerRepo   reseller.LedgerRepository
	logger       logger.Interface
}

func NewLedgerHistoryUseCase(
	resellerRepo reseller.Repository,
	ledgerRepo reseller.LedgerRepository,
	logger logger.Interface,
) *LedgerHistoryUseCase {
	return &LedgerHistoryUseCase{
		resellerRepo: resellerRepo,
		ledgerRepo:   ledgerRepo,
		logger:       logger,
	}
}

func (uc *LedgerHistoryUseCase) Execute(ctx context.Context, cmd LedgerHistoryCommand) (*LedgerHistoryResult, error) {
	targetID := cmd.TargetID
	if targetID == 0 {
		targetID = cmd.ActorID
	}

	target, err := uc.resellerRepo.GetByID(ctx, targetID)
	if err != nil {
		return nil, fmt.Errorf("failed to load reseller: %w", err)
	}
	if target == nil {
		return nil, errors.NewNotFoundError("reseller not found")
	}

	if targetID != cmd.ActorID && !cmd.IsRoot {
		parentID, hasParent := target.Parentage().ParentID()
		if !hasParent || parentID != cmd.ActorID {
			return nil, errors.NewForbiddenError("not allowed to read this ledger")
		}
	}

	entries, err := uc.ledgerRepo.ListByReseller(ctx, targetID, cmd.Limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list ledger entries: %w", err)
	}

	return &LedgerHistoryResult{
		Entries: entries,
		Balance: target.Balance(),
	}, nil
}
