package mappers

import (
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"

	"github.com/guardino-io/guardino/internal/domain/node"
	"github.com/guardino-io/guardino/internal/infrastructure/persistence/models"
)

// NodeMapper handles the conversion between domain entities and persistence models
type NodeMapper interface {
	ToEntity(model *models.NodeModel) (*node.Node, error)
	ToModel(entity *node.Node) (*models.NodeModel, error)
	ToEntities(models []*models.NodeModel) ([]*node.Node, error)
}

type nodeMapper struct{}

// NewNodeMapper creates a new node mapper
func NewNodeMapper() NodeMapper {
	return &nodeMapper{}
}

func (m *nodeMapper) ToEntity(model *models.NodeModel) (*node.Node, error) {
	if model == nil {
		return nil, nil
	}

	credential, err := node.NewCredential(model.Credential)
	if err != nil {
		return nil, fmt.Errorf("failed to create credential value object: %w", err)
	}

	var settings map[string]interface{}
	if len(model.Settings) > 0 {
		if err := json.Unmarshal(model.Settings, &settings); err != nil {
			return nil, fmt.Errorf("failed to decode node settings: %w", err)
		}
	}

	entity, err := node.ReconstructNode(
		model.ID,
		model.Name,
		node.PanelType(model.PanelType),
		model.APIURL,
		credential,
		settings,
		node.Status(model.Status),
		model.VisibleInAggregate,
		model.CreatedAt,
		model.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to reconstruct node entity: %w", err)
	}
	return entity, nil
}

func (m *nodeMapper) ToModel(entity *node.Node) (*models.NodeModel, error) {
	if entity == nil {
		return nil, nil
	}

	var settings datatypes.JSON
	if entity.Settings() != nil {
		data, err := json.Marshal(entity.Settings())
		if err != nil {
			return nil, fmt.Errorf("failed to encode node settings: %w", err)
		}
		settings = datatypes.JSON(data)
	}

	return &models.NodeModel{
		ID:                 entity.ID(),
		Name:               entity.Name(),
		PanelType:          entity.PanelType().String(),
		APIURL:             entity.APIURL(),
		Credential:         entity.Credential().Raw(),
		Settings:           settings,
		Status:             entity.Status().String(),
		VisibleInAggregate: entity.VisibleInAggregate(),
		CreatedAt:          entity.CreatedAt(),
		UpdatedAt:          entity.UpdatedAt(),
	}, nil
}

func (m *nodeMapper) ToEntities(ms []*models.NodeModel) ([]*node.Node, error) {
	entities := make([]*node.Node, 0, len(ms))
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
