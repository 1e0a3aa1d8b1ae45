package usecases

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guardino-io/guardino/internal/application/testutil"
	"github.com/guardino-io/guardino/internal/domain/node"
	"github.com/guardino-io/guardino/internal/domain/reseller"
	"github.com/guardino-io/guardino/internal/shared/errors"
	"github.com/guardino-io/guardino/internal/shared/logger"
)

func addNode(t *testing.T, repo *testutil.MockNodeRepository, name string) *node.Node {
	t.Helper()
	cred, err := node.NewCredential("admin:secret")
	require.NoError(t, err)
	n, err := node.NewNode(name, node.PanelTypeMarzban, "https://panel.example.com", cred, nil, true)
	require.NoError(t, err)
	repo.Add(n)
	return n
}

func TestCreateNode_ProbesThePanelFirst(t *testing.T) {
	nodeRepo := testutil.NewMockNodeRepository()
	registry := testutil.NewMockAdapterRegistry()

	uc := NewCreateNodeUseCase(nodeRepo, registry, logger.NewNop())

	result, err := uc.Execute(context.Background(), CreateNodeCommand{
		Name:               "de-1",
		PanelType:          "marzban",
		APIURL:             "https://panel.example.com/",
		Credential:         "admin:secret",
		VisibleInAggregate: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "de-1", result.Node.Name())
	assert.Equal(t, node.StatusActive, result.Node.Status())

	nodes, err := nodeRepo.ListAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, nodes, 1)
}

func TestCreateNode_RejectedCredentialsBecomeValidationError(t *testing.T) {
	nodeRepo := testutil.NewMockNodeRepository()
	registry := testutil.NewMockAdapterRegistry()
	// The node has no ID yet when the connectivity probe runs.
	registry.Adapters[0] = &testutil.MockProviderAdapter{
		ConnectErr: errors.NewUpstreamAuthError("panel returned 401"),
	}

	uc := NewCreateNodeUseCase(nodeRepo, registry, logger.NewNop())

	_, err := uc.Execute(context.Background(), CreateNodeCommand{
		Name:       "de-1",
		PanelType:  "marzban",
		APIURL:     "https://panel.example.com",
		Credential: "admin:wrong",
	})
	require.Error(t, err)
	assert.True(t, errors.IsValidationError(err))

	nodes, err := nodeRepo.ListAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, nodes, "nothing persisted when the probe fails")
}

func TestCreateNode_UnreachablePanelPassesThrough(t *testing.T) {
	nodeRepo := testutil.NewMockNodeRepository()
	registry := testutil.NewMockAdapterRegistry()
	registry.Adapters[0] = &testutil.MockProviderAdapter{
		ConnectErr: errors.NewUpstreamError("connection refused"),
	}

	uc := NewCreateNodeUseCase(nodeRepo, registry, logger.NewNop())

	_, err := uc.Execute(context.Background(), CreateNodeCommand{
		Name:       "de-1",
		PanelType:  "marzban",
		APIURL:     "https://panel.example.com",
		Credential: "admin:secret",
	})
	require.Error(t, err)
	assert.True(t, errors.IsUpstreamError(err))
}

func TestCreateNode_UnsupportedPanelType(t *testing.T) {
	uc := NewCreateNodeUseCase(testutil.NewMockNodeRepository(), testutil.NewMockAdapterRegistry(), logger.NewNop())

	_, err := uc.Execute(context.Background(), CreateNodeCommand{
		Name:       "de-1",
		PanelType:  "3x-ui",
		APIURL:     "https://panel.example.com",
		Credential: "admin:secret",
	})
	require.Error(t, err)
	assert.True(t, errors.IsValidationError(err))
}

func TestAllocateNode_Conflict(t *testing.T) {
	nodeRepo := testutil.NewMockNodeRepository()
	resellerRepo := testutil.NewMockResellerRepository()
	allocationRepo := testutil.NewMockAllocationRepository()

	r, err := reseller.NewReseller("acme", "hash", reseller.SubOf(1), 100, 150, 0, false)
	require.NoError(t, err)
	resellerRepo.Add(r)
	n := addNode(t, nodeRepo, "de-1")

	uc := NewAllocateNodeUseCase(nodeRepo, resellerRepo, allocationRepo, logger.NewNop())

	perGB := int64(80)
	result, err := uc.Execute(context.Background(), AllocateNodeCommand{
		ResellerID:       r.ID(),
		NodeID:           n.ID(),
		CustomPricePerGB: &perGB,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(80), result.Allocation.PricePerGB(r.PriceMasterSub()))

	_, err = uc.Execute(context.Background(), AllocateNodeCommand{
		ResellerID: r.ID(),
		NodeID:     n.ID(),
	})
	require.Error(t, err)
	assert.True(t, errors.IsConflictError(err))
}

func TestAllocateNode_UnknownTargets(t *testing.T) {
	nodeRepo := testutil.NewMockNodeRepository()
	resellerRepo := testutil.NewMockResellerRepository()

	r, err := reseller.NewReseller("acme", "hash", reseller.SubOf(1), 100, 150, 0, false)
	require.NoError(t, err)
	resellerRepo.Add(r)

	uc := NewAllocateNodeUseCase(nodeRepo, resellerRepo, testutil.NewMockAllocationRepository(), logger.NewNop())

	_, err = uc.Execute(context.Background(), AllocateNodeCommand{ResellerID: 42, NodeID: 1})
	assert.True(t, errors.IsNotFoundError(err))

	_, err = uc.Execute(context.Background(), AllocateNodeCommand{ResellerID: r.ID(), NodeID: 42})
	assert.True(t, errors.IsNotFoundError(err))
}

func TestDeallocateNode(t *testing.T) {
	allocationRepo := testutil.NewMockAllocationRepository()
	allocation, err := node.NewAllocation(1, 2, nil, nil)
	require.NoError(t, err)
	allocationRepo.Add(allocation)

	uc := NewDeallocateNodeUseCase(allocationRepo, logger.NewNop())

	require.NoError(t, uc.Execute(context.Background(), DeallocateNodeCommand{ResellerID: 1, NodeID: 2}))

	err = uc.Execute(context.Background(), DeallocateNodeCommand{ResellerID: 1, NodeID: 2})
	assert.True(t, errors.IsNotFoundError(err))
}

func TestUpdateNodeStatus(t *testing.T) {
	nodeRepo := testutil.NewMockNodeRepository()
	n := addNode(t, nodeRepo, "de-1")

	uc := NewUpdateNodeStatusUseCase(nodeRepo, logger.NewNop())

	hidden := false
	result, err := uc.Execute(context.Background(), UpdateNodeStatusCommand{
		NodeID:             n.ID(),
		Status:             "maintenance",
		VisibleInAggregate: &hidden,
	})
	require.NoError(t, err)
	assert.Equal(t, node.StatusMaintenance, result.Node.Status())
	assert.False(t, result.Node.VisibleInAggregate())

	// Visibility alone, status untouched.
	visible := true
	result, err = uc.Execute(context.Background(), UpdateNodeStatusCommand{
		NodeID:             n.ID(),
		VisibleInAggregate: &visible,
	})
	require.NoError(t, err)
	assert.Equal(t, node.StatusMaintenance, result.Node.Status())
	assert.True(t, result.Node.VisibleInAggregate())

	_, err = uc.Execute(context.Background(), UpdateNodeStatusCommand{NodeID: n.ID(), Status: "rebooting"})
	require.Error(t, err)
	assert.True(t, errors.IsValidationError(err))

	_, err = uc.Execute(context.Background(), UpdateNodeStatusCommand{NodeID: 42, Status: "active"})
	assert.True(t, errors.IsNotFoundError(err))
}

func TestListNodes_ScopedByRole(t *testing.T) {
	nodeRepo := testutil.NewMockNodeRepository()
	allocationRepo := testutil.NewMockAllocationRepository()
	nodeRepo.Allocations = allocationRepo

	n1 := addNode(t, nodeRepo, "de-1")
	addNode(t, nodeRepo, "nl-1")

	allocation, err := node.NewAllocation(7, n1.ID(), nil, nil)
	require.NoError(t, err)
	allocationRepo.Add(allocation)

	uc := NewListNodesUseCase(nodeRepo, logger.NewNop())

	all, err := uc.Execute(context.Background(), ListNodesCommand{IsRoot: true})
	require.NoError(t, err)
	assert.Len(t, all.Nodes, 2)

	mine, err := uc.Execute(context.Background(), ListNodesCommand{ActorID: 7})
	require.NoError(t, err)
	require.Len(t, mine.Nodes, 1)
	assert.Equal(t, "de-1", mine.Nodes[0].Name())
}

func TestDeleteNode(t *testing.T) {
	nodeRepo := testutil.NewMockNodeRepository()
	n := addNode(t, nodeRepo, "de-1")

	uc := NewDeleteNodeUseCase(nodeRepo, logger.NewNop())

	require.NoError(t, uc.Execute(context.Background(), DeleteNodeCommand{NodeID: n.ID()}))

	err := uc.Execute(context.Background(), DeleteNodeCommand{NodeID: n.ID()})
	assert.True(t, errors.IsNotFoundError(err))
}
