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

// VPNUserRepository implements the VPN user repository interface.
type VPNUserRepository struct {
	db     *gorm.DB
	mapper mappers.VPNUserMapper
	logger logger.Interface
}

// NewVPNUserRepository creates a new VPN user repository
func NewVPNUserRepository(gdb *gorm.DB, log logger.Interface) vpnuser.Repository {
	return &VPNUserRepository{
		db:     gdb,
		mapper: mappers.NewVPNUserMapper(),
		logger: log,
	}
}

// Create persists the user together with its backend accounts in one
// statement; GORM inserts the association rows with the generated user ID.
func (r *VPNUserRepository) Create(ctx context.Context, entity *vpnuser.VPNUser) error {
	model, err := r.mapper.ToModel(entity)
	if err != nil {
		return fmt.Errorf("failed to map vpn user entity: %w", err)
	}

	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		r.logger.Errorw("failed to create vpn user", "username", model.Username, "error", err)
		return fmt.Errorf("failed to create vpn user: %w", err)
	}

	if err := entity.SetID(model.ID); err != nil {
		return fmt.Errorf("failed to set vpn user ID: %w", err)
	}
	for i, account := range entity.Accounts() {
		account.SetVPNUserID(model.ID)
		if i < len(model.Accounts) {
			if err := account.SetID(model.Accounts[i].ID); err != nil {
				return fmt.Errorf("failed to set node account ID: %w", err)
			}
		}
	}

	r.logger.Infow("vpn user created",
		"id", model.ID, "username", model.Username, "accounts", len(model.Accounts))
	return nil
}

func (r *VPNUserRepository) GetByID(ctx context.Context, id uint) (*vpnuser.VPNUser, error) {
	var model models.VPNUserModel
	err := db.GetTxFromContext(ctx, r.db).
		Preload("Accounts").
		First(&model, id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		r.logger.Errorw("failed to get vpn user by ID", "id", id, "error", err)
		return nil, fmt.Errorf("failed to get vpn user: %w", err)
	}
	return r.mapper.ToEntity(&model)
}

func (r *VPNUserRepository) GetByUsername(ctx context.Context, username string) (*vpnuser.VPNUser, error) {
	var model models.VPNUserModel
	err := db.GetTxFromContext(ctx, r.db).
		Preload("Accounts").
		Where("username = ?", username).
		First(&model).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get vpn user: %w", err)
	}
	return r.mapper.ToEntity(&model)
}

func (r *VPNUserRepository) GetBySubToken(ctx context.Context, token string) (*vpnuser.VPNUser, error) {
	var model models.VPNUserModel
	err := db.GetTxFromContext(ctx, r.db).
		Preload("Accounts").
		Where("sub_token = ?", token).
		First(&model).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get vpn user by token: %w", err)
	}
	return r.mapper.ToEntity(&model)
}

func (r *VPNUserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	var count int64
	err := db.GetTxFromContext(ctx, r.db).
		Model(&models.VPNUserModel{}).
		Where("username = ?", username).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check vpn user existence: %w", err)
	}
	return count > 0, nil
}

// Update persists the user row only; account rows are updated through
// UpdateAccountUsage.
func (r *VPNUserRepository) Update(ctx context.Context, entity *vpnuser.VPNUser) error {
	model, err := r.mapper.ToModel(entity)
	if err != nil {
		return fmt.Errorf("failed to map vpn user entity: %w", err)
	}
	model.Accounts = nil

	err = db.GetTxFromContext(ctx, r.db).
		Omit("Accounts").
		Save(model).Error
	if err != nil {
		r.logger.Errorw("failed to update vpn user", "id", model.ID, "error", err)
		return fmt.Errorf("failed to update vpn user: %w", err)
	}
	return nil
}

func (r *VPNUserRepository) UpdateAccountUsage(ctx context.Context, accountID uint, usedBytes int64) error {
	err := db.GetTxFromContext(ctx, r.db).
		Model(&models.NodeAccountModel{}).
		Where("id = ?", accountID).
		Update("used_traffic", usedBytes).Error
	if err != nil {
		return fmt.Errorf("failed to update account usage: %w", err)
	}
	return nil
}

func (r *VPNUserRepository) Delete(ctx context.Context, id uint) error {
	tx := db.GetTxFromContext(ctx, r.db)

	err := tx.Where("vpn_user_id = ?", id).
		Delete(&models.NodeAccountModel{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete node accounts: %w", err)
	}
	if err := tx.Delete(&models.VPNUserModel{}, id).Error; err != nil {
		r.logger.Errorw("failed to delete vpn user", "id", id, "error", err)
		return fmt.Errorf("failed to delete vpn user: %w", err)
	}

	r.logger.Infow("vpn user deleted", "id", id)
	return nil
}

func (r *VPNUserRepository) ListActive(ctx context.Context) ([]*vpnuser.VPNUser, error) {
	var ms []*models.VPNUserModel
	err := db.GetTxFromContext(ctx, r.db).
		Preload("Accounts").
		Where("status = ?", vpnuser.StatusActive.String()).
		Order("id").
		Find(&ms).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list active vpn users: %w", err)
	}
	return r.mapper.ToEntities(ms)
}
