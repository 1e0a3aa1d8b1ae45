package mappers

import (
	"fmt"

	"github.com/guardino-io/guardino/internal/domain/vpnuser"
	"github.com/guardino-io/guardino/internal/infrastructure/persistence/models"
)

// VPNUserMapper handles the conversion between domain entities and persistence models
type VPNUserMapper interface {
	ToEntity(model *models.VPNUserModel) (*vpnuser.VPNUser, error)
	ToModel(entity *vpnuser.VPNUser) (*models.VPNUserModel, error)
	ToEntities(models []*models.VPNUserModel) ([]*vpnuser.VPNUser, error)
	AccountToModel(entity *vpnuser.NodeAccount) (*models.NodeAccountModel, error)
}

type vpnUserMapper struct{}

// NewVPNUserMapper creates a new VPN user mapper
func NewVPNUserMapper() VPNUserMapper {
	return &vpnUserMapper{}
}

func (m *vpnUserMapper) ToEntity(model *models.VPNUserModel) (*vpnuser.VPNUser, error) {
	if model == nil {
		return nil, nil
	}

	accounts := make([]*vpnuser.NodeAccount, 0, len(model.Accounts))
	for i := range model.Accounts {
		account, err := m.accountToEntity(&model.Accounts[i])
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}

	entity, err := vpnuser.ReconstructVPNUser(
		model.ID,
		model.ResellerID,
		model.Username,
		vpnuser.Status(model.Status),
		model.DataLimit,
		model.ExpireAt,
		model.TotalCost,
		model.SubToken,
		model.CreatedAt,
		model.UpdatedAt,
		accounts,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to reconstruct vpn user entity: %w", err)
	}
	return entity, nil
}

func (m *vpnUserMapper) ToModel(entity *vpnuser.VPNUser) (*models.VPNUserModel, error) {
	if entity == nil {
		return nil, nil
	}

	model := &models.VPNUserModel{
		ID:         entity.ID(),
		ResellerID: entity.ResellerID(),
		Username:   entity.Username(),
		Status:     entity.Status().String(),
		DataLimit:  entity.DataLimit(),
		ExpireAt:   entity.ExpireAt(),
		TotalCost:  entity.TotalCost(),
		SubToken:   entity.SubToken(),
		CreatedAt:  entity.CreatedAt(),
		UpdatedAt:  entity.UpdatedAt(),
	}

	for _, account := range entity.Accounts() {
		accountModel, err := m.AccountToModel(account)
		if err != nil {
			return nil, err
		}
		model.Accounts = append(model.Accounts, *accountModel)
	}
	return model, nil
}

func (m *vpnUserMapper) ToEntities(ms []*models.VPNUserModel) ([]*vpnuser.VPNUser, error) {
	entities := make([]*vpnuser.VPNUser, 0, len(ms))
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

// AccountToModel converts one backend account to its persistence model.
func (m *vpnUserMapper) AccountToModel(entity *vpnuser.NodeAccount) (*models.NodeAccountModel, error) {
	if entity == nil {
		return nil, nil
	}

	return &models.NodeAccountModel{
		ID:          entity.ID(),
		VPNUserID:   entity.VPNUserID(),
		NodeID:      entity.NodeID(),
		RemoteID:    entity.RemoteID(),
		UsedTraffic: entity.UsedTraffic(),
		CreatedAt:   entity.CreatedAt(),
		UpdatedAt:   entity.UpdatedAt(),
	}, nil
}

func (m *vpnUserMapper) accountToEntity(model *models.NodeAccountModel) (*vpnuser.NodeAccount, error) {
	entity, err := vpnuser.ReconstructNodeAccount(
		model.ID,
		model.VPNUserID,
		model.NodeID,
		model.RemoteID,
		model.UsedTraffic,
		model.CreatedAt,
		model.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to reconstruct node account entity: %w", err)
	}
	return entity, nil
}
