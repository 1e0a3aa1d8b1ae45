package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/guardino-io/guardino/internal/domain/node"
	"github.com/guardino-io/guardino/internal/domain/reseller"
	"github.com/guardino-io/guardino/internal/domain/vpnuser"
	"github.com/guardino-io/guardino/internal/infrastructure/persistence/models"
	"github.com/guardino-io/guardino/internal/shared/db"
	"github.com/guardino-io/guardino/internal/shared/errors"
	"github.com/guardino-io/guardino/internal/shared/logger"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	// The in-memory database lives per connection.
	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, gdb.AutoMigrate(
		&models.ResellerModel{},
		&models.LedgerEntryModel{},
		&models.NodeModel{},
		&models.AllocationModel{},
		&models.VPNUserModel{},
		&models.NodeAccountModel{},
		&models.CleanupTaskModel{},
	))
	return gdb
}

func TestResellerRepository_RoundTrip(t *testing.T) {
	gdb := openTestDB(t)
	repo := NewResellerRepository(gdb, logger.NewNop())
	ctx := context.Background()

	root, err := reseller.NewReseller("root", "hash", reseller.Root(), 0, 0, 0, true)
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, root))
	require.NotZero(t, root.ID())

	child, err := reseller.NewReseller("child", "hash", reseller.SubOf(root.ID()), 100, 150, 50, false)
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, child))

	got, err := repo.GetByUsername(ctx, "child")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, child.ID(), got.ID())
	parentID, ok := got.Parentage().ParentID()
	require.True(t, ok)
	assert.Equal(t, root.ID(), parentID)
	assert.Equal(t, int64(100), got.PricePerGB())

	missing, err := repo.GetByID(ctx, 999)
	require.NoError(t, err)
	assert.Nil(t, missing)

	require.NoError(t, got.Credit(2500))
	require.NoError(t, repo.Update(ctx, got))
	got, err = repo.GetByID(ctx, child.ID())
	require.NoError(t, err)
	assert.Equal(t, int64(2500), got.Balance())

	children, err := repo.ListByParent(ctx, root.ID())
	require.NoError(t, err)
	require.Len(t, children, 1)
	assert.Equal(t, "child", children[0].Username())

	feeCarriers, err := repo.ListWithDailyFee(ctx)
	require.NoError(t, err)
	require.Len(t, feeCarriers, 1)
	assert.Equal(t, child.ID(), feeCarriers[0].ID())
}

func TestResellerRepository_DuplicateUsername(t *testing.T) {
	gdb := openTestDB(t)
	repo := NewResellerRepository(gdb, logger.NewNop())
	ctx := context.Background()

	first, err := reseller.NewReseller("acme", "hash", reseller.Root(), 0, 0, 0, false)
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, first))

	second, err := reseller.NewReseller("acme", "hash", reseller.Root(), 0, 0, 0, false)
	require.NoError(t, err)
	err = repo.Create(ctx, second)
	require.Error(t, err)
	assert.True(t, errors.IsDuplicateError(err))
}

func TestLedgerRepository_AppendListSum(t *testing.T) {
	gdb := openTestDB(t)
	repo := NewLedgerRepository(gdb, logger.NewNop())
	ctx := context.Background()

	for i, amount := range []int64{-300, -200, 400} {
		entry, err := reseller.NewLedgerEntry(7, amount, reseller.EntryKindPurchase,
			fmt.Sprintf("entry %d", i))
		require.NoError(t, err)
		require.NoError(t, repo.Append(ctx, entry))
	}
	other, err := reseller.NewLedgerEntry(8, -999, reseller.EntryKindDailyFee, "other reseller")
	require.NoError(t, err)
	require.NoError(t, repo.Append(ctx, other))

	entries, err := repo.ListByReseller(ctx, 7, 2)
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	sum, err := repo.SumByReseller(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, int64(-100), sum)

	sum, err = repo.SumByReseller(ctx, 99)
	require.NoError(t, err)
	assert.Zero(t, sum)
}

func TestVPNUserRepository_AggregateRoundTrip(t *testing.T) {
	gdb := openTestDB(t)
	repo := NewVPNUserRepository(gdb, logger.NewNop())
	ctx := context.Background()

	expire := time.Now().UTC().Add(30 * 24 * time.Hour).Truncate(time.Second)
	u, err := vpnuser.NewVPNUser(1, "alice", 10<<30, &expire, 2300, "tok0123456789abcdef0123456789abcd")
	require.NoError(t, err)
	for _, nodeID := range []uint{1, 2} {
		account, err := vpnuser.NewNodeAccount(0, nodeID, fmt.Sprintf("remote-%d", nodeID))
		require.NoError(t, err)
		u.AttachAccount(account)
	}

	require.NoError(t, repo.Create(ctx, u))
	require.NotZero(t, u.ID())
	for _, account := range u.Accounts() {
		assert.NotZero(t, account.ID(), "account IDs backfilled from the insert")
		assert.Equal(t, u.ID(), account.VPNUserID())
	}

	got, err := repo.GetBySubToken(ctx, "tok0123456789abcdef0123456789abcd")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "alice", got.Username())
	assert.Len(t, got.Accounts(), 2)

	exists, err := repo.ExistsByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, repo.UpdateAccountUsage(ctx, got.Accounts()[0].ID(), 123456))
	got, err = repo.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(123456), got.Accounts()[0].UsedTraffic())

	active, err := repo.ListActive(ctx)
	require.NoError(t, err)
	assert.Len(t, active, 1)

	got.Disable()
	require.NoError(t, repo.Update(ctx, got))
	active, err = repo.ListActive(ctx)
	require.NoError(t, err)
	assert.Empty(t, active)

	require.NoError(t, repo.Delete(ctx, got.ID()))
	gone, err := repo.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Nil(t, gone)

	var orphans int64
	require.NoError(t, gdb.Model(&models.NodeAccountModel{}).Count(&orphans).Error)
	assert.Zero(t, orphans, "accounts removed with the user")
}

func TestNodeAndAllocationRepositories(t *testing.T) {
	gdb := openTestDB(t)
	nodeRepo := NewNodeRepository(gdb, logger.NewNop())
	allocationRepo := NewAllocationRepository(gdb, logger.NewNop())
	ctx := context.Background()

	cred, err := node.NewCredential("admin:secret")
	require.NoError(t, err)
	n1, err := node.NewNode("de-1", node.PanelTypeMarzban, "https://de1.example.com", cred,
		map[string]interface{}{"inbound": "vless-tcp"}, true)
	require.NoError(t, err)
	require.NoError(t, nodeRepo.Create(ctx, n1))
	n2, err := node.NewNode("nl-1", node.PanelTypePasarguard, "https://nl1.example.com", cred, nil, false)
	require.NoError(t, err)
	require.NoError(t, nodeRepo.Create(ctx, n2))

	got, err := nodeRepo.GetByID(ctx, n1.ID())
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "de-1", got.Name())
	assert.Equal(t, "vless-tcp", got.Settings()["inbound"])
	assert.Equal(t, "admin:secret", got.Credential().Raw())

	perGB := int64(80)
	allocation, err := node.NewAllocation(5, n1.ID(), &perGB, nil)
	require.NoError(t, err)
	require.NoError(t, allocationRepo.Create(ctx, allocation))

	allocated, err := nodeRepo.ListAllocatedTo(ctx, 5)
	require.NoError(t, err)
	require.Len(t, allocated, 1)
	assert.Equal(t, n1.ID(), allocated[0].ID())

	stored, err := allocationRepo.Get(ctx, 5, n1.ID())
	require.NoError(t, err)
	require.NotNil(t, stored)
	require.NotNil(t, stored.CustomPricePerGB())
	assert.Equal(t, int64(80), *stored.CustomPricePerGB())

	require.NoError(t, allocationRepo.Delete(ctx, 5, n1.ID()))
	stored, err = allocationRepo.Get(ctx, 5, n1.ID())
	require.NoError(t, err)
	assert.Nil(t, stored)
}

func TestCleanupTaskRepository_PendingQueue(t *testing.T) {
	gdb := openTestDB(t)
	repo := NewCleanupTaskRepository(gdb, logger.NewNop())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		task, err := vpnuser.NewCleanupTask(uint(i+1), fmt.Sprintf("remote-%d", i), "compensation failed")
		require.NoError(t, err)
		require.NoError(t, repo.Create(ctx, task))
	}

	pending, err := repo.ListPending(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 3)

	done := pending[0]
	done.MarkAttempt()
	done.MarkDone()
	require.NoError(t, repo.Update(ctx, done))

	pending, err = repo.ListPending(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, pending, 2)

	limited, err := repo.ListPending(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestTransactionManager_RollsBackOnError(t *testing.T) {
	gdb := openTestDB(t)
	repo := NewResellerRepository(gdb, logger.NewNop())
	tm := db.NewTransactionManager(gdb)
	ctx := context.Background()

	err := tm.RunInTransaction(ctx, func(txCtx context.Context) error {
		r, err := reseller.NewReseller("ghost", "hash", reseller.Root(), 0, 0, 0, false)
		if err != nil {
			return err
		}
		if err := repo.Create(txCtx, r); err != nil {
			return err
		}
		return fmt.Errorf("abort")
	})
	require.Error(t, err)

	got, err := repo.GetByUsername(ctx, "ghost")
	require.NoError(t, err)
	assert.Nil(t, got, "insert rolled back with the transaction")
}
