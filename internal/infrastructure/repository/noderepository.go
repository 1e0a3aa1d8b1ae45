package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/guardino-io/guardino/internal/domain/node"
	"github.com/guardino-io/guardino/internal/infrastructure/persistence/mappers"
	"github.com/guardino-io/guardino/internal/infrastructure/persistence/models"
	"github.com/guardino-io/guardino/internal/shared/constants"
	"github.com/guardino-io/guardino/internal/shared/db"
	"github.com/guardino-io/guardino/internal/shared/logger"
)

// NodeRepository implements the node repository interface.
type NodeRepository struct {
	db     *gorm.DB
	mapper mappers.NodeMapper
	logger logger.Interface
}

// NewNodeRepository creates a new node repository
func NewNodeRepository(gdb *gorm.DB, log logger.Interface) node.Repository {
	return &NodeRepository{
		db:     gdb,
		mapper: mappers.NewNodeMapper(),
		logger: log,
	}
}

func (r *NodeRepository) Create(ctx context.Context, entity *node.Node) error {
	model, err := r.mapper.ToModel(entity)
	if err != nil {
		return fmt.Errorf("failed to map node entity: %w", err)
	}

	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		r.logger.Errorw("failed to create node", "name", model.Name, "error", err)
		return fmt.Errorf("failed to create node: %w", err)
	}

	if err := entity.SetID(model.ID); err != nil {
		return fmt.Errorf("failed to set node ID: %w", err)
	}

	r.logger.Infow("node created", "id", model.ID, "name", model.Name, "panel_type", model.PanelType)
	return nil
}

func (r *NodeRepository) GetByID(ctx context.Context, id uint) (*node.Node, error) {
	var model models.NodeModel
	if err := db.GetTxFromContext(ctx, r.db).First(&model, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		r.logger.Errorw("failed to get node by ID", "id", id, "error", err)
		return nil, fmt.Errorf("failed to get node: %w", err)
	}
	return r.mapper.ToEntity(&model)
}

func (r *NodeRepository) Update(ctx context.Context, entity *node.Node) error {
	model, err := r.mapper.ToModel(entity)
	if err != nil {
		return fmt.Errorf("failed to map node entity: %w", err)
	}

	if err := db.GetTxFromContext(ctx, r.db).Save(model).Error; err != nil {
		r.logger.Errorw("failed to update node", "id", model.ID, "error", err)
		return fmt.Errorf("failed to update node: %w", err)
	}
	return nil
}

func (r *NodeRepository) Delete(ctx context.Context, id uint) error {
	if err := db.GetTxFromContext(ctx, r.db).Delete(&models.NodeModel{}, id).Error; err != nil {
		r.logger.Errorw("failed to delete node", "id", id, "error", err)
		return fmt.Errorf("failed to delete node: %w", err)
	}

	r.logger.Infow("node deleted", "id", id)
	return nil
}

func (r *NodeRepository) ListAll(ctx context.Context) ([]*node.Node, error) {
	var ms []*models.NodeModel
	if err := db.GetTxFromContext(ctx, r.db).Order("id").Find(&ms).Error; err != nil {
		return nil, fmt.Errorf("failed to list nodes: %w", err)
	}
	return r.mapper.ToEntities(ms)
}

func (r *NodeRepository) ListByIDs(ctx context.Context, ids []uint) ([]*node.Node, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var ms []*models.NodeModel
	err := db.GetTxFromContext(ctx, r.db).
		Where("id IN ?", ids).
		Order("id").
		Find(&ms).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list nodes by IDs: %w", err)
	}
	return r.mapper.ToEntities(ms)
}

// ListAllocatedTo returns the nodes the reseller holds an allocation for.
func (r *NodeRepository) ListAllocatedTo(ctx context.Context, resellerID uint) ([]*node.Node, error) {
	var ms []*models.NodeModel
	err := db.GetTxFromContext(ctx, r.db).
		Joins(fmt.Sprintf("JOIN %s a ON a.node_id = %s.id", constants.TableAllocations, constants.TableNodes)).
		Where("a.reseller_id = ?", resellerID).
		Order(constants.TableNodes + ".id").
		Find(&ms).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list allocated nodes: %w", err)
	}
	return r.mapper.ToEntities(ms)
}
