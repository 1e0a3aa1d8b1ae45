package mappers

import (
	"fmt"

	"github.com/guardino-io/guardino/internal/domain/reseller"
	"github.com/guardino-io/guardino/internal/infrastructure/persistence/models"
)

// LedgerEntryMapper handles the conversion between domain entities and persistence models
type LedgerEntryMapper interface {
	ToEntity(model *models.LedgerEntryModel) (*reseller.LedgerEntry, error)
	ToModel(entity *reseller.LedgerEntry) (*models.LedgerEntryModel, error)
	ToEntities(models []*models.LedgerEntryModel) ([]*reseller.LedgerEntry, error)
}

type ledgerEntryMapper struct{}

// NewLedgerEntryMapper creates a new ledger entry mapper
func NewLedgerEntryMapper() LedgerEntryMapper {
	return &ledgerEntryMapper{}
}

func (m *ledgerEntryMapper) ToEntity(model *models.LedgerEntryModel) (*reseller.LedgerEntry, error) {
	if model == nil {
		return nil, nil
	}

	entity, err := reseller.ReconstructLedgerEntry(
		model.ID,
		model.ResellerID,
		model.Amount,
		reseller.EntryKind(model.Kind),
		model.Description,
		model.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to reconstruct ledger entry: %w", err)
	}
	return entity, nil
}

func (m *ledgerEntryMapper) ToModel(entity *reseller.LedgerEntry) (*models.LedgerEntryModel, error) {
	if entity == nil {
		return nil, nil
	}

	return &models.LedgerEntryModel{
		ID:          entity.ID(),
		ResellerID:  entity.ResellerID(),
		Amount:      entity.Amount(),
		Kind:        string(entity.Kind()),
		Description: entity.Description(),
		CreatedAt:   entity.CreatedAt(),
	}, nil
}

func (m *ledgerEntryMapper) ToEntities(ms []*models.LedgerEntryModel) ([]*reseller.LedgerEntry, error) {
	entities := make([]*reseller.LedgerEntry, 0, len(ms))
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
