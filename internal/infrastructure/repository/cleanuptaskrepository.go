package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/guardino-io/guardino/internal/domain/vpnuser"
	"github.com/guardino-io/guardino/internal/infrastructure/persistence/mappers"
	"github.com/guardino-io/guardino/internal/infrastructure/persistence/models"
	"github.com/guardino-io/guardino/internal/shared/db"
	"github.com/guardino-io/guardino/internal/shared/logger"
)

// CleanupTaskRepository implements the cleanup task repository interface.
type CleanupTaskRepository struct {
	db     *gorm.DB
	mapper mappers.CleanupTaskMapper
	logger logger.Interface
}

// NewCleanupTaskRepository creates a new cleanup task repository
func NewCleanupTaskRepository(gdb *gorm.DB, log logger.Interface) vpnuser.CleanupTaskRepository {
	return &CleanupTaskRepository{
		db:     gdb,
		mapper: mappers.NewCleanupTaskMapper(),
		logger: log,
	}
}

func (r *CleanupTaskRepository) Create(ctx context.Context, entity *vpnuser.CleanupTask) error {
	model, err := r.mapper.ToModel(entity)
	if err != nil {
		return fmt.Errorf("failed to map cleanup task: %w", err)
	}

	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		r.logger.Errorw("failed to create cleanup task",
			"node_id", model.NodeID, "remote_id", model.RemoteID, "error", err)
		return fmt.Errorf("failed to create cleanup task: %w", err)
	}

	if err := entity.SetID(model.ID); err != nil {
		return fmt.Errorf("failed to set cleanup task ID: %w", err)
	}

	r.logger.Warnw("cleanup task recorded",
		"id", model.ID, "node_id", model.NodeID, "remote_id", model.RemoteID, "reason", model.Reason)
	return nil
}

func (r *CleanupTaskRepository) Update(ctx context.Context, entity *vpnuser.CleanupTask) error {
	model, err := r.mapper.ToModel(entity)
	if err != nil {
		return fmt.Errorf("failed to map cleanup task: %w", err)
	}

	if err := db.GetTxFromContext(ctx, r.db).Save(model).Error; err != nil {
		r.logger.Errorw("failed to update cleanup task", "id", model.ID, "error", err)
		return fmt.Errorf("failed to update cleanup task: %w", err)
	}
	return nil
}

func (r *CleanupTaskRepository) ListPending(ctx context.Context, limit int) ([]*vpnuser.CleanupTask, error) {
	query := db.GetTxFromContext(ctx, r.db).
		Where("status = ?", string(vpnuser.CleanupTaskPending)).
		Order("id")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var ms []*models.CleanupTaskModel
	if err := query.Find(&ms).Error; err != nil {
		return nil, fmt.Errorf("failed to list pending cleanup tasks: %w", err)
	}
	return r.mapper.ToEntities(ms)
}
