package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/guardino-io/guardino/internal/domain/node"
	"github.com/guardino-io/guardino/internal/infrastructure/persistence/mappers"
	"github.com/guardino-io/guardino/internal/infrastructure/persistence/models"
	"github.com/guardino-io/guardino/internal/shared/db"
	"github.com/guardino-io/guardino/internal/shared/logger"
)

// AllocationRepository implements the allocation repository interface.
type AllocationRepository struct {
	db     *gorm.DB
	mapper mappers.AllocationMapper
	logger logger.Interface
}

// NewAllocationRepository creates a new allocation repository
func NewAllocationRepository(gdb *gorm.DB, log logger.Interface) node.AllocationRepository {
	return &AllocationRepository{
		db:     gdb,
		mapper: mappers.NewAllocationMapper(),
		logger: log,
	}
}

func (r *AllocationRepository) Create(ctx context.Context, entity *node.Allocation) error {
	model, err := r.mapper.ToModel(entity)
	if err != nil {
		return fmt.Errorf("failed to map allocation entity: %w", err)
	}

	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		r.logger.Errorw("failed to create allocation",
			"reseller_id", model.ResellerID, "node_id", model.NodeID, "error", err)
		return fmt.Errorf("failed to create allocation: %w", err)
	}

	if err := entity.SetID(model.ID); err != nil {
		return fmt.Errorf("failed to set allocation ID: %w", err)
	}
	return nil
}

func (r *AllocationRepository) Get(ctx context.Context, resellerID, nodeID uint) (*node.Allocation, error) {
	var model models.AllocationModel
	err := db.GetTxFromContext(ctx, r.db).
		Where("reseller_id = ? AND node_id = ?", resellerID, nodeID).
		First(&model).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get allocation: %w", err)
	}
	return r.mapper.ToEntity(&model)
}

func (r *AllocationRepository) ListByReseller(ctx context.Context, resellerID uint) ([]*node.Allocation, error) {
	var ms []*models.AllocationModel
	err := db.GetTxFromContext(ctx, r.db).
		Where("reseller_id = ?", resellerID).
		Order("node_id").
		Find(&ms).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list allocations: %w", err)
	}
	return r.mapper.ToEntities(ms)
}

func (r *AllocationRepository) Delete(ctx context.Context, resellerID, nodeID uint) error {
	err := db.GetTxFromContext(ctx, r.db).
		Where("reseller_id = ? AND node_id = ?", resellerID, nodeID).
		Delete(&models.AllocationModel{}).Error
	if err != nil {
		r.logger.Errorw("failed to delete allocation",
			"reseller_id", resellerID, "node_id", nodeID, "error", err)
		return fmt.Errorf("failed to delete allocation: %w", err)
	}
	return nil
}
