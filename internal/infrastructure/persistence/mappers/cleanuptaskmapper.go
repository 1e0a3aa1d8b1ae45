package mappers

import (
	"fmt"

	"github.com/guardino-io/guardino/internal/domain/vpnuser"
	"github.com/guardino-io/guardino/internal/infrastructure/persistence/models"
)

// CleanupTaskMapper handles the conversion between domain entities and persistence models
type CleanupTaskMapper interface {
	ToEntity(model *models.CleanupTaskModel) (*vpnuser.CleanupTask, error)
	ToModel(entity *vpnuser.CleanupTask) (*models.CleanupTaskModel, error)
	ToEntities(models []*models.CleanupTaskModel) ([]*vpnuser.CleanupTask, error)
}

type cleanupTaskMapper struct{}

// NewCleanupTaskMapper creates a new cleanup task mapper
func NewCleanupTaskMapper() CleanupTaskMapper {
	return &cleanupTaskMapper{}
}

func (m *cleanupTaskMapper) ToEntity(model *models.CleanupTaskModel) (*vpnuser.CleanupTask, error) {
	if model == nil {
		return nil, nil
	}

	entity, err := vpnuser.ReconstructCleanupTask(
		model.ID,
		model.NodeID,
		model.RemoteID,
		model.Reason,
		model.Attempts,
		vpnuser.CleanupTaskStatus(model.Status),
		model.CreatedAt,
		model.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to reconstruct cleanup task entity: %w", err)
	}
	return entity, nil
}

func (m *cleanupTaskMapper) ToModel(entity *vpnuser.CleanupTask) (*models.CleanupTaskModel, error) {
	if entity == nil {
		return nil, nil
	}

	return &models.CleanupTaskModel{
		ID:        entity.ID(),
		NodeID:    entity.NodeID(),
		RemoteID:  entity.RemoteID(),
		Reason:    entity.Reason(),
		Attempts:  entity.Attempts(),
		Status:    string(entity.Status()),
		CreatedAt: entity.CreatedAt(),
		UpdatedAt: entity.UpdatedAt(),
	}, nil
}

func (m *cleanupTaskMapper) ToEntities(ms []*models.CleanupTaskModel) ([]*vpnuser.CleanupTask, error) {
	entities := make([]*vpnuser.CleanupTask, 0, len(ms))
	for _, model := range ms {
		entity, err := m.ToEntity(model)
		if err != nil {
			return nil, err
		}
		if entity != nil {
			entities = append(entities, entity)
		}
	}
	return entities, nil
}
