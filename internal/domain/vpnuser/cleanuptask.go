package vpnuser

import (
	"fmt"
	"time"
)

// CleanupTaskStatus tracks whether an orphaned remote account still needs
// deletion.
type CleanupTaskStatus string

const (
	CleanupTaskPending CleanupTaskStatus = "pending"
	CleanupTaskDone    CleanupTaskStatus = "done"
)

// CleanupTask records one compensation delete that failed during saga
// rollback. The remote account may still exist on the node; a periodic job
// retries the delete (which is idempotent) until it succeeds.
type CleanupTask struct {
	id        uint
	nodeID    uint
	remoteID  string
	reason    string
	attempts  int
	status    CleanupTaskStatus
	createdAt time.Time
	updatedAt time.Time
}

// NewCleanupTask records a failed compensation delete.
func NewCleanupTask(nodeID uint, remoteID, reason string) (*CleanupTask, error) {
	if nodeID == 0 {
		return nil, fmt.Errorf("cleanup task needs a node")
	}
	if remoteID == "" {
		return nil, fmt.Errorf("cleanup task needs a remote identifier")
	}

	now := time.Now().UTC()
	return &CleanupTask{
		nodeID:    nodeID,
		remoteID:  remoteID,
		reason:    reason,
		status:    CleanupTaskPending,
		createdAt: now,
		updatedAt: now,
	}, nil
}

// ReconstructCleanupTask reconstructs a task from persistence.
func ReconstructCleanupTask(
	id uint,
	nodeID uint,
	remoteID string,
	reason string,
	attempts int,
	status CleanupTaskStatus,
	createdAt, updatedAt time.Time,
) (*CleanupTask, error) {
	if id == 0 {
		return nil, fmt.Errorf("cleanup task ID cannot be zero")
	}

	return &CleanupTask{
		id:        id,
		nodeID:    nodeID,
		remoteID:  remoteID,
		reason:    reason,
		attempts:  attempts,
		status:    status,
		createdAt: createdAt,
		updatedAt: updatedAt,
	}, nil
}

func (t *CleanupTask) ID() uint                  { return t.id }
func (t *CleanupTask) NodeID() uint              { return t.nodeID }
func (t *CleanupTask) RemoteID() string          { return t.remoteID }
func (t *CleanupTask) Reason() string            { return t.reason }
func (t *CleanupTask) Attempts() int             { return t.attempts }
func (t *CleanupTask) Status() CleanupTaskStatus { return t.status }
func (t *CleanupTask) CreatedAt() time.Time      { return t.createdAt }
func (t *CleanupTask) UpdatedAt() time.Time      { return t.updatedAt }

// SetID sets the ID after persistence assigns one.
func (t *CleanupTask) SetID(id uint) error {
	if t.id != 0 {
		return fmt.Errorf("cleanup task ID already set")
	}
	t.id = id
	return nil
}

// MarkAttempt records one more delete attempt.
func (t *CleanupTask) MarkAttempt() {
	t.attempts++
	t.updatedAt = time.Now().UTC()
}

// MarkDone marks the remote account as successfully removed.
func (t *CleanupTask) MarkDone() {
	t.status = CleanupTaskDone
	t.updatedAt = time.Now().UTC()
}
