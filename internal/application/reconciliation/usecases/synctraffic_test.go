package usecases

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guardino-io/guardino/internal/application/testutil"
	"github.com/guardino-io/guardino/internal/domain/node"
	"github.com/guardino-io/guardino/internal/domain/vpnuser"
	"github.com/guardino-io/guardino/internal/shared/logger"
)

type syncFixture struct {
	vpnUserRepo  *testutil.MockVPNUserRepository
	nodeRepo     *testutil.MockNodeRepository
	adapters     *testutil.MockAdapterRegistry
	payloadCache *testutil.MockPayloadCache
	uc           *SyncTrafficUseCase
}

func newSyncFixture(t *testing.T) *syncFixture {
	t.Helper()
	f := &syncFixture{
		vpnUserRepo:  testutil.NewMockVPNUserRepository(),
		nodeRepo:     testutil.NewMockNodeRepository(),
		adapters:     testutil.NewMockAdapterRegistry(),
		payloadCache: testutil.NewMockPayloadCache(),
	}
	f.uc = NewSyncTrafficUseCase(f.vpnUserRepo, f.nodeRepo, f.adapters, f.payloadCache, logger.NewNop())
	return f
}

func (f *syncFixture) addNode(t *testing.T, name string) *node.Node {
	t.Helper()
	cred, err := node.NewCredential("token")
	require.NoError(t, err)
	n, err := node.NewNode(name, node.PanelTypeMarzban, "https://"+name+".example.com", cred, nil, true)
	require.NoError(t, err)
	f.nodeRepo.Add(n)
	return n
}

func (f *syncFixture) addUser(t *testing.T, dataLimit int64, expireAt *time.Time, nodeID uint) *vpnuser.VPNUser {
	t.Helper()
	u, err := vpnuser.NewVPNUser(1, "alice", dataLimit, expireAt, 0, "tok")
	require.NoError(t, err)
	account, err := vpnuser.NewNodeAccount(0, nodeID, "remote-1")
	require.NoError(t, err)
	u.AttachAccount(account)
	f.vpnUserRepo.Add(u)
	return u
}

func TestSyncTraffic_DisablesUserOverLimit(t *testing.T) {
	f := newSyncFixture(t)
	n := f.addNode(t, "eu-1")
	user := f.addUser(t, 1_000_000_000, nil, n.ID())

	adapter := &testutil.MockProviderAdapter{FetchUsage: 1_000_000_001}
	f.adapters.Adapters[n.ID()] = adapter
	require.NoError(t, f.payloadCache.Set(context.Background(), user.SubToken(), "cached"))

	result, err := f.uc.Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.UsersChecked)
	assert.Equal(t, 1, result.UsersDisabled)
	assert.Equal(t, 0, result.UsersExpired)

	assert.Equal(t, vpnuser.StatusDisabled, user.Status())
	assert.Equal(t, []string{"remote-1"}, adapter.Suspended)
	assert.Equal(t, int64(1_000_000_001), user.Accounts()[0].UsedTraffic())

	_, hit, err := f.payloadCache.Get(context.Background(), user.SubToken())
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestSyncTraffic_UnderLimitStaysActive(t *testing.T) {
	f := newSyncFixture(t)
	n := f.addNode(t, "eu-1")
	user := f.addUser(t, 1_000_000_000, nil, n.ID())

	adapter := &testutil.MockProviderAdapter{FetchUsage: 500}
	f.adapters.Adapters[n.ID()] = adapter

	result, err := f.uc.Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, result.UsersDisabled)
	assert.True(t, user.IsActive())
	assert.Empty(t, adapter.Suspended)
}

func TestSyncTraffic_ExpiresUser(t *testing.T) {
	f := newSyncFixture(t)
	n := f.addNode(t, "eu-1")
	past := time.Now().UTC().Add(-time.Hour)
	user := f.addUser(t, 0, &past, n.ID())

	adapter := &testutil.MockProviderAdapter{}
	f.adapters.Adapters[n.ID()] = adapter
	require.NoError(t, f.payloadCache.Set(context.Background(), user.SubToken(), "cached"))

	result, err := f.uc.Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.UsersExpired)
	assert.Equal(t, vpnuser.StatusExpired, user.Status())
	assert.Equal(t, []string{"remote-1"}, adapter.Suspended)

	_, hit, err := f.payloadCache.Get(context.Background(), user.SubToken())
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestSyncTraffic_FailedFetchKeepsLastKnownUsage(t *testing.T) {
	f := newSyncFixture(t)
	n := f.addNode(t, "eu-1")
	user := f.addUser(t, 1000, nil, n.ID())
	user.Accounts()[0].RecordUsage(999)

	f.adapters.Adapters[n.ID()] = &testutil.MockProviderAdapter{
		FetchErr: assert.AnError,
	}

	result, err := f.uc.Execute(context.Background())
	require.NoError(t, err)

	// Last-known 999 is below the 1000 limit, so the user survives.
	assert.Equal(t, 0, result.UsersDisabled)
	assert.True(t, user.IsActive())
}

func TestSyncTraffic_UnlimitedUserNeverDisabled(t *testing.T) {
	f := newSyncFixture(t)
	n := f.addNode(t, "eu-1")
	user := f.addUser(t, 0, nil, n.ID())

	f.adapters.Adapters[n.ID()] = &testutil.MockProviderAdapter{FetchUsage: 1 << 50}

	result, err := f.uc.Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, result.UsersDisabled)
	assert.True(t, user.IsActive())
}
