// Package repository provides GORM-backed implementations of the domain
// repository interfaces.
package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/guardino-io/guardino/internal/domain/reseller"
	"github.com/guardino-io/guardino/internal/infrastructure/persistence/mappers"
	"github.com/guardino-io/guardino/internal/infrastructure/persistence/models"
	"github.com/guardino-io/guardino/internal/shared/db"
	"github.com/guardino-io/guardino/internal/shared/logger"
)

// ResellerRepository implements the reseller repository interface.
type ResellerRepository struct {
	db     *gorm.DB
	mapper mappers.ResellerMapper
	logger logger.Interface
}

// NewResellerRepository creates a new reseller repository
func NewResellerRepository(gdb *gorm.DB, log logger.Interface) reseller.Repository {
	return &ResellerRepository{
		db:     gdb,
		mapper: mappers.NewResellerMapper(),
		logger: log,
	}
}

func (r *ResellerRepository) Create(ctx context.Context, entity *reseller.Reseller) error {
	model, err := r.mapper.ToModel(entity)
	if err != nil {
		return fmt.Errorf("failed to map reseller entity: %w", err)
	}

	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		r.logger.Errorw("failed to create reseller", "username", model.Username, "error", err)
		return fmt.Errorf("failed to create reseller: %w", err)
	}

	if err := entity.SetID(model.ID); err != nil {
		return fmt.Errorf("failed to set reseller ID: %w", err)
	}

	r.logger.Infow("reseller created", "id", model.ID, "username", model.Username)
	return nil
}

func (r *ResellerRepository) GetByID(ctx context.Context, id uint) (*reseller.Reseller, error) {
	var model models.ResellerModel
	if err := db.GetTxFromContext(ctx, r.db).First(&model, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		r.logger.Errorw("failed to get reseller by ID", "id", id, "error", err)
		return nil, fmt.Errorf("failed to get reseller: %w", err)
	}
	return r.mapper.ToEntity(&model)
}

// GetByIDForUpdate loads the reseller under SELECT ... FOR UPDATE. The row
// lock serializes concurrent balance mutations for the same reseller until
// the surrounding transaction commits or rolls back.
func (r *ResellerRepository) GetByIDForUpdate(ctx context.Context, id uint) (*reseller.Reseller, error) {
	var model models.ResellerModel
	err := db.GetTxFromContext(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&model, id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		r.logger.Errorw("failed to lock reseller row", "id", id, "error", err)
		return nil, fmt.Errorf("failed to lock reseller: %w", err)
	}
	return r.mapper.ToEntity(&model)
}

func (r *ResellerRepository) GetByUsername(ctx context.Context, username string) (*reseller.Reseller, error) {
	var model models.ResellerModel
	err := db.GetTxFromContext(ctx, r.db).
		Where("username = ?", username).
		First(&model).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		r.logger.Errorw("failed to get reseller by username", "username", username, "error", err)
		return nil, fmt.Errorf("failed to get reseller: %w", err)
	}
	return r.mapper.ToEntity(&model)
}

func (r *ResellerRepository) Update(ctx context.Context, entity *reseller.Reseller) error {
	model, err := r.mapper.ToModel(entity)
	if err != nil {
		return fmt.Errorf("failed to map reseller entity: %w", err)
	}

	if err := db.GetTxFromContext(ctx, r.db).Save(model).Error; err != nil {
		r.logger.Errorw("failed to update reseller", "id", model.ID, "error", err)
		return fmt.Errorf("failed to update reseller: %w", err)
	}
	return nil
}

func (r *ResellerRepository) ListByParent(ctx context.Context, parentID uint) ([]*reseller.Reseller, error) {
	var ms []*models.ResellerModel
	err := db.GetTxFromContext(ctx, r.db).
		Where("parent_id = ?", parentID).
		Order("id").
		Find(&ms).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list sub-resellers: %w", err)
	}
	return r.mapper.ToEntities(ms)
}

func (r *ResellerRepository) ListAll(ctx context.Context) ([]*reseller.Reseller, error) {
	var ms []*models.ResellerModel
	if err := db.GetTxFromContext(ctx, r.db).Order("id").Find(&ms).Error; err != nil {
		return nil, fmt.Errorf("failed to list resellers: %w", err)
	}
	return r.mapper.ToEntities(ms)
}

func (r *ResellerRepository) ListWithDailyFee(ctx context.Context) ([]*reseller.Reseller, error) {
	var ms []*models.ResellerModel
	err := db.GetTxFromContext(ctx, r.db).
		Where("daily_fee > 0").
		Order("id").
		Find(&ms).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list resellers with daily fee: %w", err)
	}
	return r.mapper.ToEntities(ms)
}
