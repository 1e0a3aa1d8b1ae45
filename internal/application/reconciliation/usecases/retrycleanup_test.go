package usecases

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guardino-io/guardino/internal/application/testutil"
	"github.com/guardino-io/guardino/internal/domain/node"
	"github.com/guardino-io/guardino/internal/domain/vpnuser"
	"github.com/guardino-io/guardino/internal/shared/logger"
)

func addPendingTask(t *testing.T, repo *testutil.MockCleanupTaskRepository, nodeID uint) *vpnuser.CleanupTask {
	t.Helper()
	task, err := vpnuser.NewCleanupTask(nodeID, "remote-1", "compensation delete failed")
	require.NoError(t, err)
	require.NoError(t, repo.Create(context.Background(), task))
	return task
}

func TestRetryCleanup_DeletesAndMarksDone(t *testing.T) {
	cleanupRepo := testutil.NewMockCleanupTaskRepository()
	nodeRepo := testutil.NewMockNodeRepository()
	adapters := testutil.NewMockAdapterRegistry()

	cred, err := node.NewCredential("token")
	require.NoError(t, err)
	n, err := node.NewNode("eu-1", node.PanelTypeMarzban, "https://eu-1.example.com", cred, nil, true)
	require.NoError(t, err)
	nodeRepo.Add(n)

	adapter := &testutil.MockProviderAdapter{}
	adapters.Adapters[n.ID()] = adapter

	task := addPendingTask(t, cleanupRepo, n.ID())

	uc := NewRetryCleanupUseCase(cleanupRepo, nodeRepo, adapters, logger.NewNop())
	result, err := uc.Execute(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, result.TasksTried)
	assert.Equal(t, 1, result.TasksDone)
	assert.Equal(t, vpnuser.CleanupTaskDone, task.Status())
	assert.Equal(t, 1, task.Attempts())
	assert.Equal(t, []string{"remote-1"}, adapter.Deleted)
}

func TestRetryCleanup_FailureKeepsTaskPending(t *testing.T) {
	cleanupRepo := testutil.NewMockCleanupTaskRepository()
	nodeRepo := testutil.NewMockNodeRepository()
	adapters := testutil.NewMockAdapterRegistry()

	cred, err := node.NewCredential("token")
	require.NoError(t, err)
	n, err := node.NewNode("eu-1", node.PanelTypeMarzban, "https://eu-1.example.com", cred, nil, true)
	require.NoError(t, err)
	nodeRepo.Add(n)

	adapters.Adapters[n.ID()] = &testutil.MockProviderAdapter{DeleteErr: fmt.Errorf("timeout")}

	task := addPendingTask(t, cleanupRepo, n.ID())

	uc := NewRetryCleanupUseCase(cleanupRepo, nodeRepo, adapters, logger.NewNop())
	result, err := uc.Execute(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, result.TasksTried)
	assert.Equal(t, 0, result.TasksDone)
	assert.Equal(t, vpnuser.CleanupTaskPending, task.Status())
	assert.Equal(t, 1, task.Attempts())
}

func TestRetryCleanup_MissingNodeCompletesTask(t *testing.T) {
	cleanupRepo := testutil.NewMockCleanupTaskRepository()
	nodeRepo := testutil.NewMockNodeRepository()
	adapters := testutil.NewMockAdapterRegistry()

	task := addPendingTask(t, cleanupRepo, 42)

	uc := NewRetryCleanupUseCase(cleanupRepo, nodeRepo, adapters, logger.NewNop())
	result, err := uc.Execute(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, result.TasksDone)
	assert.Equal(t, vpnuser.CleanupTaskDone, task.Status())
}
