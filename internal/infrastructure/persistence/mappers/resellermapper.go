// Package mappers converts between domain entities and persistence models.
package mappers

import (
	"fmt"

	"github.com/guardino-io/guardino/internal/domain/reseller"
	"github.com/guardino-io/guardino/internal/infrastructure/persistence/models"
)

// ResellerMapper handles the conversion between domain entities and persistence models
type ResellerMapper interface {
	ToEntity(model *models.ResellerModel) (*reseller.Reseller, error)
	ToModel(entity *reseller.Reseller) (*models.ResellerModel, error)
	ToEntities(models []*models.ResellerModel) ([]*reseller.Reseller, error)
}

type resellerMapper struct{}

// NewResellerMapper creates a new reseller mapper
func NewResellerMapper() ResellerMapper {
	return &resellerMapper{}
}

func (m *resellerMapper) ToEntity(model *models.ResellerModel) (*reseller.Reseller, error) {
	if model == nil {
		return nil, nil
	}

	parentage := reseller.Root()
	if model.ParentID != nil {
		parentage = reseller.SubOf(*model.ParentID)
	}

	entity, err := reseller.ReconstructReseller(
		model.ID,
		model.Username,
		model.PasswordHash,
		model.Balance,
		model.PricePerGB,
		model.PriceMasterSub,
		model.DailyFee,
		parentage,
		model.CanCreateSub,
		reseller.Status(model.Status),
		model.CreatedAt,
		model.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to reconstruct reseller entity: %w", err)
	}
	return entity, nil
}

func (m *resellerMapper) ToModel(entity *reseller.Reseller) (*models.ResellerModel, error) {
	if entity == nil {
		return nil, nil
	}

	var parentID *uint
	if id, ok := entity.Parentage().ParentID(); ok {
		parentID = &id
	}

	return &models.ResellerModel{
		ID:             entity.ID(),
		Username:       entity.Username(),
		PasswordHash:   entity.PasswordHash(),
		Balance:        entity.Balance(),
		PricePerGB:     entity.PricePerGB(),
		PriceMasterSub: entity.PriceMasterSub(),
		DailyFee:       entity.DailyFee(),
		ParentID:       parentID,
		CanCreateSub:   entity.CanCreateSub(),
		Status:         entity.Status().String(),
		CreatedAt:      entity.CreatedAt(),
		UpdatedAt:      entity.UpdatedAt(),
	}, nil
}

func (m *resellerMapper) ToEntities(ms []*models.ResellerModel) ([]*reseller.Reseller, error) {
	entities := make([]*reseller.Reseller, 0, len(ms))
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
