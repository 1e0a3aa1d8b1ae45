package mappers

import (
	"fmt"

	"github.com/guardino-io/guardino/internal/domain/node"
	"github.com/guardino-io/guardino/internal/infrastructure/persistence/models"
)

// AllocationMapper handles the conversion between domain entities and persistence models
type AllocationMapper interface {
	ToEntity(model *models.AllocationModel) (*node.Allocation, error)
	ToModel(entity *node.Allocation) (*models.AllocationModel, error)
	ToEntities(models []*models.AllocationModel) ([]*node.Allocation, error)
}

type allocationMapper struct{}

// NewAllocationMapper creates a new allocation mapper
func NewAllocationMapper() AllocationMapper {
	return &allocationMapper{}
}

func (m *allocationMapper) ToEntity(model *models.AllocationModel) (*node.Allocation, error) {
	if model == nil {
		return nil, nil
	}

	entity, err := node.ReconstructAllocation(
		model.ID,
		model.ResellerID,
		model.NodeID,
		model.CustomPricePerGB,
		model.CustomPricePerDay,
		model.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to reconstruct allocation entity: %w", err)
	}
	return entity, nil
}

func (m *allocationMapper) ToModel(entity *node.Allocation) (*models.AllocationModel, error) {
	if entity == nil {
		return nil, nil
	}

	return &models.AllocationModel{
		ID:                entity.ID(),
		ResellerID:        entity.ResellerID(),
		NodeID:            entity.NodeID(),
		CustomPricePerGB:  entity.CustomPricePerGB(),
		CustomPricePerDay: entity.CustomPricePerDay(),
		CreatedAt:         entity.CreatedAt(),
	}, nil
}

func (m *allocationMapper) ToEntities(ms []*models.AllocationModel) ([]*node.Allocation, error) {
	entities := make([]*node.Allocation, 0, len(ms))
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
