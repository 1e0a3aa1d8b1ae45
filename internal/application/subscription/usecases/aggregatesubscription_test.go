package usecases

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guardino-io/guardino/internal/application/testutil"
	"github.com/guardino-io/guardino/internal/domain/node"
	"github.com/guardino-io/guardino/internal/domain/vpnuser"
	"github.com/guardino-io/guardino/internal/shared/errors"
	"github.com/guardino-io/guardino/internal/shared/logger"
)

type aggregateFixture struct {
	vpnUserRepo *testutil.MockVPNUserRepository
	nodeRepo    *testutil.MockNodeRepository
	adapters    *testutil.MockAdapterRegistry
	cache       *testutil.MockPayloadCache
	uc          *AggregateSubscriptionUseCase
}

func newAggregateFixture(t *testing.T) *aggregateFixture {
	t.Helper()
	f := &aggregateFixture{
		vpnUserRepo: testutil.NewMockVPNUserRepository(),
		nodeRepo:    testutil.NewMockNodeRepository(),
		adapters:    testutil.NewMockAdapterRegistry(),
		cache:       testutil.NewMockPayloadCache(),
	}
	f.uc = NewAggregateSubscriptionUseCase(
		f.vpnUserRepo, f.nodeRepo, f.adapters, f.cache, 2*time.Second, logger.NewNop(),
	)
	return f
}

func (f *aggregateFixture) addNode(t *testing.T, name string, visible bool) *node.Node {
	t.Helper()
	cred, err := node.NewCredential("token")
	require.NoError(t, err)
	n, err := node.NewNode(name, node.PanelTypeMarzban, "https://"+name+".example.com", cred, nil, visible)
	require.NoError(t, err)
	f.nodeRepo.Add(n)
	return n
}

func (f *aggregateFixture) addUser(t *testing.T, token string, nodeIDs ...uint) *vpnuser.VPNUser {
	t.Helper()
	u, err := vpnuser.NewVPNUser(1, "alice", 0, nil, 0, token)
	require.NoError(t, err)
	for _, nodeID := range nodeIDs {
		account, err := vpnuser.NewNodeAccount(0, nodeID, "remote")
		require.NoError(t, err)
		u.AttachAccount(account)
	}
	f.vpnUserRepo.Add(u)
	return u
}

func decode(t *testing.T, payload string) string {
	t.Helper()
	raw, err := base64.StdEncoding.DecodeString(payload)
	require.NoError(t, err)
	return string(raw)
}

// payloadServer serves the given body on every request and records the
// User-Agent it saw.
func payloadServer(body string, sawUA *string) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if sawUA != nil {
			*sawUA = r.Header.Get("User-Agent")
		}
		_, _ = w.Write([]byte(body))
	}))
}

func TestAggregate_MergesInAccountOrder(t *testing.T) {
	f := newAggregateFixture(t)
	n1 := f.addNode(t, "eu-1", true)
	n2 := f.addNode(t, "eu-2", true)
	n3 := f.addNode(t, "eu-3", true)
	f.addUser(t, "tok", n1.ID(), n2.ID(), n3.ID())

	srvA := payloadServer(base64.StdEncoding.EncodeToString([]byte("vless://A")), nil)
	defer srvA.Close()
	srvB := payloadServer("", nil)
	defer srvB.Close()
	srvC := payloadServer(base64.StdEncoding.EncodeToString([]byte("vless://C")), nil)
	defer srvC.Close()

	f.adapters.Adapters[n1.ID()] = &testutil.MockProviderAdapter{URI: srvA.URL}
	f.adapters.Adapters[n2.ID()] = &testutil.MockProviderAdapter{URI: srvB.URL}
	f.adapters.Adapters[n3.ID()] = &testutil.MockProviderAdapter{URI: srvC.URL}

	result, err := f.uc.Execute(context.Background(), AggregateSubscriptionCommand{Token: "tok"})
	require.NoError(t, err)
	assert.Equal(t, "vless://A\nvless://C", decode(t, result.Payload))
}

func TestAggregate_AllEmptyServesPlaceholder(t *testing.T) {
	f := newAggregateFixture(t)
	n := f.addNode(t, "eu-1", true)
	f.addUser(t, "tok", n.ID())

	f.adapters.Adapters[n.ID()] = &testutil.MockProviderAdapter{URI: ""}

	result, err := f.uc.Execute(context.Background(), AggregateSubscriptionCommand{Token: "tok"})
	require.NoError(t, err)
	assert.Contains(t, decode(t, result.Payload), "No_Active_Nodes_Available")
}

func TestAggregate_SuspendedUserServesPlaceholder(t *testing.T) {
	f := newAggregateFixture(t)
	n := f.addNode(t, "eu-1", true)
	u := f.addUser(t, "tok", n.ID())
	u.Disable()

	result, err := f.uc.Execute(context.Background(), AggregateSubscriptionCommand{Token: "tok"})
	require.NoError(t, err)
	assert.Contains(t, decode(t, result.Payload), "Account_Suspended_or_Expired")
}

func TestAggregate_UnknownTokenNotFound(t *testing.T) {
	f := newAggregateFixture(t)

	_, err := f.uc.Execute(context.Background(), AggregateSubscriptionCommand{Token: "ghost"})
	require.Error(t, err)
	assert.True(t, errors.IsNotFoundError(err))

	_, err = f.uc.Execute(context.Background(), AggregateSubscriptionCommand{Token: ""})
	require.Error(t, err)
	assert.True(t, errors.IsNotFoundError(err))
}

func TestAggregate_HiddenNodeSkipped(t *testing.T) {
	f := newAggregateFixture(t)
	visible := f.addNode(t, "eu-1", true)
	hidden := f.addNode(t, "eu-2", false)
	f.addUser(t, "tok", visible.ID(), hidden.ID())

	srv := payloadServer(base64.StdEncoding.EncodeToString([]byte("vless://A")), nil)
	defer srv.Close()
	f.adapters.Adapters[visible.ID()] = &testutil.MockProviderAdapter{URI: srv.URL}
	f.adapters.Adapters[hidden.ID()] = &testutil.MockProviderAdapter{URI: srv.URL}

	result, err := f.uc.Execute(context.Background(), AggregateSubscriptionCommand{Token: "tok"})
	require.NoError(t, err)
	assert.Equal(t, "vless://A", decode(t, result.Payload))
}

func TestAggregate_PlainTextPayloadPassedThrough(t *testing.T) {
	f := newAggregateFixture(t)
	n := f.addNode(t, "wg-1", true)
	f.addUser(t, "tok", n.ID())

	// WireGuard configuration files are not base64.
	wgConfig := "[Interface]\nPrivateKey = abc\nAddress = 10.0.0.2/32"
	srv := payloadServer(wgConfig, nil)
	defer srv.Close()
	f.adapters.Adapters[n.ID()] = &testutil.MockProviderAdapter{URI: srv.URL}

	result, err := f.uc.Execute(context.Background(), AggregateSubscriptionCommand{Token: "tok"})
	require.NoError(t, err)
	assert.Equal(t, wgConfig, decode(t, result.Payload))
}

func TestAggregate_ForwardsUserAgent(t *testing.T) {
	f := newAggregateFixture(t)
	n := f.addNode(t, "eu-1", true)
	f.addUser(t, "tok", n.ID())

	var sawUA string
	srv := payloadServer(base64.StdEncoding.EncodeToString([]byte("vless://A")), &sawUA)
	defer srv.Close()
	f.adapters.Adapters[n.ID()] = &testutil.MockProviderAdapter{URI: srv.URL}

	_, err := f.uc.Execute(context.Background(), AggregateSubscriptionCommand{
		Token:     "tok",
		UserAgent: "v2rayNG/1.8.0",
	})
	require.NoError(t, err)
	assert.Equal(t, "v2rayNG/1.8.0", sawUA)
}

func TestAggregate_CachedPayloadSkipsFetch(t *testing.T) {
	f := newAggregateFixture(t)
	n := f.addNode(t, "eu-1", true)
	f.addUser(t, "tok", n.ID())

	cached := base64.StdEncoding.EncodeToString([]byte("vless://CACHED"))
	require.NoError(t, f.cache.Set(context.Background(), "tok", cached))

	result, err := f.uc.Execute(context.Background(), AggregateSubscriptionCommand{Token: "tok"})
	require.NoError(t, err)
	assert.Equal(t, cached, result.Payload)
}

func TestDecodePayload_PadsBase64(t *testing.T) {
	unpadded := strings.TrimRight(base64.StdEncoding.EncodeToString([]byte("vless://X")), "=")
	assert.Equal(t, "vless://X", decodePayload(unpadded))
	assert.Equal(t, "", decodePayload(""))
}
