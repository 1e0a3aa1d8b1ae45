package usecases

import (
	"context"
	"fmt"

	"github.com/guardino-io/guardino/internal/domain/reseller"
	"github.com/guardino-io/guardino/internal/shared/logger"
)

// TransactionManager runs a function inside a database transaction.
type TransactionManager interface {
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type DeductDailyFeesResult struct {
	ResellersCharged int
	ResellersLocked  int
}

// DeductDailyFeesUseCase debits the daily fee of every reseller that has
// one. The debit is unconditional and may push the balance negative; an
// active reseller going negative is locked. Each reseller is processed in
// its own transaction under the row lock, so a failure on one never blocks
// the rest and never double-charges.
type DeductDailyFeesUseCase struct {
	resellerRepo reseller.Repository
	ledgerRepo   reseller.LedgerRepository
	txManager    TransactionManager
	logger       logger.Interface
}

func NewDeductDailyFeesUseCase(
	resellerRepo reseller.Repository,
	ledgerRepo reseller.LedgerRepository,
	txManager TransactionManager,
	logger logger.Interface,
) *DeductDailyFeesUseCase {
	return &DeductDailyFeesUseCase{
		resellerRepo: resellerRepo,
		ledgerRepo:   ledgerRepo,
		txManager:    txManager,
		logger:       logger,
	}
}

func (uc *DeductDailyFeesUseCase) Execute(ctx context.Context) (*DeductDailyFeesResult, error) {
	resellers, err := uc.resellerRepo.ListWithDailyFee(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list resellers with daily fee: %w", err)
	}

	result := &DeductDailyFeesResult{}
	for _, r := range resellers {
		if err := uc.chargeOne(ctx, r.ID(), result); err != nil {
			uc.logger.Errorw("failed to charge daily fee",
				"reseller_id", r.ID(), "error", err)
		}
	}

	uc.logger.Infow("daily fee run finished",
		"charged", result.ResellersCharged, "locked", result.ResellersLocked)
	return result, nil
}

func (uc *DeductDailyFeesUseCase) chargeOne(ctx context.Context, resellerID uint, result *DeductDailyFeesResult) error {
	return uc.txManager.RunInTransaction(ctx, func(txCtx context.Context) error {
		r, err := uc.resellerRepo.GetByIDForUpdate(txCtx, resellerID)
		if err != nil {
			return fmt.Errorf("failed to lock reseller: %w", err)
		}
		if r == nil || r.DailyFee() <= 0 {
			return nil
		}

		fee := r.DailyFee()
		r.DebitFee(fee)

		locked := false
		if r.Balance() < 0 && r.IsActive() {
			r.Lock()
			locked = true
		}

		if err := uc.resellerRepo.Update(txCtx, r); err != nil {
			return fmt.Errorf("failed to persist fee debit: %w", err)
		}

		entry, err := reseller.NewLedgerEntry(r.ID(), -fee, reseller.EntryKindDailyFee, "daily fee")
		if err != nil {
			return fmt.Errorf("failed to build ledger entry: %w", err)
		}
		if err := uc.ledgerRepo.Append(txCtx, entry); err != nil {
			return fmt.Errorf("failed to append ledger entry: %w", err)
		}

		result.ResellersCharged++
		if locked {
			result.ResellersLocked++
			uc.logger.Warnw("reseller locked after fee pushed balance negative",
				"reseller_id", r.ID(), "balance", r.Balance())
		}
		return nil
	})
}
