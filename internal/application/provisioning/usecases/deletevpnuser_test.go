package usecases

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guardino-io/guardino/internal/application/testutil"
	"github.com/guardino-io/guardino/internal/domain/node"
	"github.com/guardino-io/guardino/internal/domain/reseller"
	"github.com/guardino-io/guardino/internal/domain/vpnuser"
	"github.com/guardino-io/guardino/internal/shared/errors"
	"github.com/guardino-io/guardino/internal/shared/logger"
)

type deleteFixture struct {
	resellerRepo *testutil.MockResellerRepository
	ledgerRepo   *testutil.MockLedgerRepository
	vpnUserRepo  *testutil.MockVPNUserRepository
	nodeRepo     *testutil.MockNodeRepository
	cleanupRepo  *testutil.MockCleanupTaskRepository
	adapters     *testutil.MockAdapterRegistry
	payloadCache *testutil.MockPayloadCache
	uc           *DeleteVPNUserUseCase
}

func newDeleteFixture(t *testing.T) *deleteFixture {
	t.Helper()
	f := &deleteFixture{
		resellerRepo: testutil.NewMockResellerRepository(),
		ledgerRepo:   testutil.NewMockLedgerRepository(),
		vpnUserRepo:  testutil.NewMockVPNUserRepository(),
		nodeRepo:     testutil.NewMockNodeRepository(),
		cleanupRepo:  testutil.NewMockCleanupTaskRepository(),
		adapters:     testutil.NewMockAdapterRegistry(),
		payloadCache: testutil.NewMockPayloadCache(),
	}
	f.uc = NewDeleteVPNUserUseCase(
		f.resellerRepo, f.ledgerRepo, f.vpnUserRepo, f.nodeRepo,
		f.cleanupRepo, f.adapters, &testutil.MockTransactionManager{}, f.payloadCache, logger.NewNop(),
	)
	return f
}

func (f *deleteFixture) addUserWithAccount(t *testing.T, ownerID uint, totalCost int64) *vpnuser.VPNUser {
	t.Helper()

	cred, err := node.NewCredential("admin:secret")
	require.NoError(t, err)
	n, err := node.NewNode("eu-1", node.PanelTypeMarzban, "https://eu-1.example.com", cred, nil, true)
	require.NoError(t, err)
	f.nodeRepo.Add(n)

	u, err := vpnuser.NewVPNUser(ownerID, "alice", 0, nil, totalCost, "tok")
	require.NoError(t, err)
	account, err := vpnuser.NewNodeAccount(0, n.ID(), "remote-1")
	require.NoError(t, err)
	u.AttachAccount(account)
	f.vpnUserRepo.Add(u)
	return u
}

func TestDeleteVPNUser_RefundsActiveUser(t *testing.T) {
	f := newDeleteFixture(t)

	owner, err := reseller.NewReseller("acme", "hash", reseller.SubOf(1), 100, 150, 0, false)
	require.NoError(t, err)
	f.resellerRepo.Add(owner)

	user := f.addUserWithAccount(t, owner.ID(), 2000)
	require.NoError(t, f.payloadCache.Set(context.Background(), user.SubToken(), "cached"))

	result, err := f.uc.Execute(context.Background(), DeleteVPNUserCommand{
		ResellerID: owner.ID(),
		Username:   "alice",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2000), result.Refunded)
	assert.Equal(t, int64(2000), owner.Balance())

	_, hit, err := f.payloadCache.Get(context.Background(), user.SubToken())
	require.NoError(t, err)
	assert.False(t, hit)

	require.Len(t, f.ledgerRepo.Entries, 1)
	assert.Equal(t, reseller.EntryKindRefund, f.ledgerRepo.Entries[0].Kind())

	assert.Contains(t, f.vpnUserRepo.Deleted, user.ID())

	// The remote account was deleted too.
	adapter := f.adapters.Adapters[user.Accounts()[0].NodeID()]
	require.NotNil(t, adapter)
	assert.Equal(t, []string{"remote-1"}, adapter.Deleted)
}

func TestDeleteVPNUser_NoRefundForDisabledUser(t *testing.T) {
	f := newDeleteFixture(t)

	owner, err := reseller.NewReseller("acme", "hash", reseller.SubOf(1), 100, 150, 0, false)
	require.NoError(t, err)
	f.resellerRepo.Add(owner)

	user := f.addUserWithAccount(t, owner.ID(), 2000)
	user.Disable()

	result, err := f.uc.Execute(context.Background(), DeleteVPNUserCommand{
		ResellerID: owner.ID(),
		Username:   "alice",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(0), result.Refunded)
	assert.Equal(t, int64(0), owner.Balance())
	assert.Empty(t, f.ledgerRepo.Entries)
}

func TestDeleteVPNUser_OwnershipEnforced(t *testing.T) {
	f := newDeleteFixture(t)

	owner, err := reseller.NewReseller("acme", "hash", reseller.SubOf(1), 100, 150, 0, false)
	require.NoError(t, err)
	f.resellerRepo.Add(owner)
	f.addUserWithAccount(t, owner.ID(), 1000)

	_, err = f.uc.Execute(context.Background(), DeleteVPNUserCommand{
		ResellerID: owner.ID() + 99,
		Username:   "alice",
	})
	require.Error(t, err)
	appErr := errors.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, errors.ErrorTypeForbidden, appErr.Type)

	// Root bypasses ownership.
	result, err := f.uc.Execute(context.Background(), DeleteVPNUserCommand{
		ResellerID: owner.ID() + 99,
		IsRoot:     true,
		Username:   "alice",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1000), result.Refunded)
}

func TestDeleteVPNUser_FailedRemoteDeleteBecomesCleanupTask(t *testing.T) {
	f := newDeleteFixture(t)

	owner, err := reseller.NewReseller("acme", "hash", reseller.SubOf(1), 100, 150, 0, false)
	require.NoError(t, err)
	f.resellerRepo.Add(owner)

	user := f.addUserWithAccount(t, owner.ID(), 500)
	nodeID := user.Accounts()[0].NodeID()
	f.adapters.Adapters[nodeID] = &testutil.MockProviderAdapter{DeleteErr: fmt.Errorf("timeout")}

	result, err := f.uc.Execute(context.Background(), DeleteVPNUserCommand{
		ResellerID: owner.ID(),
		Username:   "alice",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(500), result.Refunded)

	require.Len(t, f.cleanupRepo.Tasks, 1)
	assert.Equal(t, nodeID, f.cleanupRepo.Tasks[0].NodeID())
	assert.Equal(t, "remote-1", f.cleanupRepo.Tasks[0].RemoteID())
}

func TestDeleteVPNUser_NotFound(t *testing.T) {
	f := newDeleteFixture(t)

	_, err := f.uc.Execute(context.Background(), DeleteVPNUserCommand{
		ResellerID: 1,
		Username:   "ghost",
	})
	require.Error(t, err)
	assert.True(t, errors.IsNotFoundError(err))
}

func TestDeleteVPNUser_NoRefundPastExpiry(t *testing.T) {
	f := newDeleteFixture(t)

	owner, err := reseller.NewReseller("acme", "hash", reseller.SubOf(1), 100, 150, 0, false)
	require.NoError(t, err)
	f.resellerRepo.Add(owner)

	cred, err := node.NewCredential("admin:secret")
	require.NoError(t, err)
	n, err := node.NewNode("eu-1", node.PanelTypeMarzban, "https://eu-1.example.com", cred, nil, true)
	require.NoError(t, err)
	f.nodeRepo.Add(n)

	past := time.Now().UTC().Add(-24 * time.Hour)
	user, err := vpnuser.NewVPNUser(owner.ID(), "alice", 0, &past, 2000, "tok")
	require.NoError(t, err)
	account, err := vpnuser.NewNodeAccount(0, n.ID(), "remote-1")
	require.NoError(t, err)
	user.AttachAccount(account)
	f.vpnUserRepo.Add(user)

	// Past expiry but the reconciliation sweep has not flipped the status yet.
	require.True(t, user.IsActive())

	result, err := f.uc.Execute(context.Background(), DeleteVPNUserCommand{
		ResellerID: owner.ID(),
		Username:   "alice",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(0), result.Refunded)
	assert.Equal(t, int64(0), owner.Balance())
	assert.Empty(t, f.ledgerRepo.Entries)
	assert.Contains(t, f.vpnUserRepo.Deleted, user.ID())
}
