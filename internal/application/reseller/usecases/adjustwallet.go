package usecases

import (
	"context"
	"fmt"

	"github.com/guardino-io/guardino/internal/domain/reseller"
	"github.com/guardino-io/guardino/internal/shared/errors"
	"github.com/guardino-io/guardino/internal/shared/logger"
)

type AdjustWalletCommand struct {
	ActorID     uint
	IsRoot      bool
	TargetID    uint
	Amount      int64 // positive charges, negative deducts
	Description string
}

type AdjustWalletResult struct {
	Balance int64
}

// AdjustWalletUseCase charges or deducts a child reseller's wallet. Only
// the parent (or root) may adjust a wallet; the change is applied under the
// row lock and recorded as a wallet_adjustment ledger entry.
type AdjustWalletUseCase struct {
	resellerRepo reseller.Repository
	ledgerRepo   reseller.LedgerRepository
	txManager    TransactionManager
	logger       logger.Interface
}

func NewAdjustWalletUseCase(
	resellerRepo reseller.Repository,
	ledgerRepo reseller.LedgerRepository,
	txManager TransactionManager,
	logger logger.Interface,
) *AdjustWalletUseCase {
	return &AdjustWalletUseCase{
		resellerRepo: resellerRepo,
		ledgerRepo:   ledgerRepo,
		txManager:    txManager,
		logger:       logger,
	}
}

func (uc *AdjustWalletUseCase) Execute(ctx context.Context, cmd AdjustWalletCommand) (*AdjustWalletResult, error) {
	if cmd.Amount == 0 {
		return nil, errors.NewValidationError("amount must not be zero")
	}

	var result *AdjustWalletResult
	err := uc.txManager.RunInTransaction(ctx, func(txCtx context.Context) error {
		target, err := uc.resellerRepo.GetByIDForUpdate(txCtx, cmd.TargetID)
		if err != nil {
			return fmt.Errorf("failed to lock reseller: %w", err)
		}
		if target == nil {
			return errors.NewNotFoundError("reseller not found")
		}

		parentID, hasParent := target.Parentage().ParentID()
		if !cmd.IsRoot && (!hasParent || parentID != cmd.ActorID) {
			return errors.NewForbiddenError("only the parent reseller may adjust this wallet")
		}

		target.AdjustWallet(cmd.Amount)
		if err := uc.resellerRepo.Update(txCtx, target); err != nil {
			return fmt.Errorf("failed to persist wallet adjustment: %w", err)
		}

		description := cmd.Description
		if description == "" {
			description = "wallet adjustment"
		}
		entry, err := reseller.NewLedgerEntry(target.ID(), cmd.Amount,
			reseller.EntryKindWalletAdjustment, description)
		if err != nil {
			return fmt.Errorf("failed to build ledger entry: %w", err)
		}
		if err := uc.ledgerRepo.Append(txCtx, entry); err != nil {
			return fmt.Errorf("failed to append ledger entry: %w", err)
		}

		result = &AdjustWalletResult{Balance: target.Balance()}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Infow("wallet adjusted",
		"target_id", cmd.TargetID, "actor_id", cmd.ActorID,
		"amount", cmd.Amount, "balance", result.Balance)
	return result, nil
}
