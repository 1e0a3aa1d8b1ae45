package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/guardino-io/guardino/internal/domain/reseller"
	"github.com/guardino-io/guardino/internal/infrastructure/persistence/mappers"
	"github.com/guardino-io/guardino/internal/infrastructure/persistence/models"
	"github.com/guardino-io/guardino/internal/shared/db"
	"github.com/guardino-io/guardino/internal/shared/logger"
)

// LedgerRepository implements the append-only ledger repository.
type LedgerRepository struct {
	db     *gorm.DB
	mapper mappers.LedgerEntryMapper
	logger logger.Interface
}

// NewLedgerRepository creates a new ledger repository
func NewLedgerRepository(gdb *gorm.DB, log logger.Interface) reseller.LedgerRepository {
	return &LedgerRepository{
		db:     gdb,
		mapper: mappers.NewLedgerEntryMapper(),
		logger: log,
	}
}

func (r *LedgerRepository) Append(ctx context.Context, entry *reseller.LedgerEntry) error {
	model, err := r.mapper.ToModel(entry)
	if err != nil {
		return fmt.Errorf("failed to map ledger entry: %w", err)
	}

	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		r.logger.Errorw("failed to append ledger entry",
			"reseller_id", model.ResellerID, "kind", model.Kind, "error", err)
		return fmt.Errorf("failed to append ledger entry: %w", err)
	}

	if err := entry.SetID(model.ID); err != nil {
		return fmt.Errorf("failed to set ledger entry ID: %w", err)
	}
	return nil
}

func (r *LedgerRepository) ListByReseller(ctx context.Context, resellerID uint, limit int) ([]*reseller.LedgerEntry, error) {
	query := db.GetTxFromContext(ctx, r.db).
		Where("reseller_id = ?", resellerID).
		Order("id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var ms []*models.LedgerEntryModel
	if err := query.Find(&ms).Error; err != nil {
		return nil, fmt.Errorf("failed to list ledger entries: %w", err)
	}
	return r.mapper.ToEntities(ms)
}

func (r *LedgerRepository) SumByReseller(ctx context.Context, resellerID uint) (int64, error) {
	var sum int64
	err := db.GetTxFromContext(ctx, r.db).
		Model(&models.LedgerEntryModel{}).
		Where("reseller_id = ?", resellerID).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&sum).Error
	if err != nil {
		return 0, fmt.Errorf("failed to sum ledger entries: %w", err)
	}
	return sum, nil
}
