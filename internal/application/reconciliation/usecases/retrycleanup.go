package usecases

import (
	"context"
	"fmt"

	"github.com/guardino-io/guardino/internal/domain/node"
	"github.com/guardino-io/guardino/internal/domain/vpnuser"
	"github.com/guardino-io/guardino/internal/shared/logger"
)

// retryBatchSize bounds one retry run.
const retryBatchSize = 100

type RetryCleanupResult struct {
	TasksTried int
	TasksDone  int
}

// RetryCleanupUseCase retries the pending remote deletes recorded when
// compensation failed. Deletes are idempotent, so retrying until success is
// safe; a task whose node has since been removed is marked done.
type RetryCleanupUseCase struct {
	cleanupRepo vpnuser.CleanupTaskRepository
	nodeRepo    node.Repository
	adapters    node.AdapterRegistry
	logger      logger.Interface
}

func NewRetryCleanupUseCase(
	cleanupRepo vpnuser.CleanupTaskRepository,
	nodeRepo node.Repository,
	adapters node.AdapterRegistry,
	logger logger.Interface,
) *RetryCleanupUseCase {
	return &RetryCleanupUseCase{
		cleanupRepo: cleanupRepo,
		nodeRepo:    nodeRepo,
		adapters:    adapters,
		logger:      logger,
	}
}

func (uc *RetryCleanupUseCase) Execute(ctx context.Context) (*RetryCleanupResult, error) {
	tasks, err := uc.cleanupRepo.ListPending(ctx, retryBatchSize)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending cleanup tasks: %w", err)
	}

	result := &RetryCleanupResult{TasksTried: len(tasks)}
	for _, task := range tasks {
		if uc.retryOne(ctx, task) {
			result.TasksDone++
		}
	}

	if result.TasksTried > 0 {
		uc.logger.Infow("cleanup retry run finished",
			"tried", result.TasksTried, "done", result.TasksDone)
	}
	return result, nil
}

func (uc *RetryCleanupUseCase) retryOne(ctx context.Context, task *vpnuser.CleanupTask) bool {
	task.MarkAttempt()

	n, err := uc.nodeRepo.GetByID(ctx, task.NodeID())
	if err != nil {
		uc.logger.Warnw("failed to load node for cleanup task",
			"task_id", task.ID(), "node_id", task.NodeID(), "error", err)
		uc.persist(ctx, task)
		return false
	}
	if n == nil {
		// Node is gone, nothing left to delete.
		task.MarkDone()
		uc.persist(ctx, task)
		return true
	}

	adapter, err := uc.adapters.Resolve(n)
	if err == nil {
		err = adapter.DeleteAccount(ctx, task.RemoteID())
	}
	if err != nil {
		uc.logger.Warnw("cleanup delete failed",
			"task_id", task.ID(), "node_id", task.NodeID(),
			"remote_id", task.RemoteID(), "attempts", task.Attempts(), "error", err)
		uc.persist(ctx, task)
		return false
	}

	task.MarkDone()
	uc.persist(ctx, task)
	uc.logger.Infow("cleanup task completed",
		"task_id", task.ID(), "node_id", task.NodeID(), "remote_id", task.RemoteID())
	return true
}

func (uc *RetryCleanupUseCase) persist(ctx context.Context, task *vpnuser.CleanupTask) {
	if err := uc.cleanupRepo.Update(ctx, task); err != nil {
		uc.logger.Errorw("failed to persist cleanup task state",
			"task_id", task.ID(), "error", err)
	}
}
