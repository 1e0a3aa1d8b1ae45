package vpnuser

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testUser(t *testing.T, dataLimit int64, expireAt *time.Time) *VPNUser {
	t.Helper()
	u, err := NewVPNUser(1, "alice", dataLimit, expireAt, 2000, "tok123")
	require.NoError(t, err)
	return u
}

func TestNewVPNUser_Validation(t *testing.T) {
	_, err := NewVPNUser(0, "alice", 0, nil, 0, "tok")
	assert.Error(t, err)

	_, err = NewVPNUser(1, "", 0, nil, 0, "tok")
	assert.Error(t, err)

	_, err = NewVPNUser(1, "alice", -1, nil, 0, "tok")
	assert.Error(t, err)

	_, err = NewVPNUser(1, "alice", 0, nil, 0, "")
	assert.Error(t, err)

	u := testUser(t, 0, nil)
	assert.Equal(t, StatusActive, u.Status())
	assert.True(t, u.IsActive())
}

func TestExceedsLimit(t *testing.T) {
	limited := testUser(t, 1_000_000_000, nil)

	assert.False(t, limited.ExceedsLimit(999_999_999))
	assert.True(t, limited.ExceedsLimit(1_000_000_000))
	assert.True(t, limited.ExceedsLimit(1_000_000_001))

	unlimited := testUser(t, 0, nil)
	assert.False(t, unlimited.ExceedsLimit(1<<50))
}

func TestIsExpiredAt(t *testing.T) {
	now := time.Now().UTC()

	noExpiry := testUser(t, 0, nil)
	assert.False(t, noExpiry.IsExpiredAt(now))

	future := now.Add(time.Hour)
	u := testUser(t, 0, &future)
	assert.False(t, u.IsExpiredAt(now))
	assert.True(t, u.IsExpiredAt(future))
	assert.True(t, u.IsExpiredAt(future.Add(time.Second)))
}

func TestStatusTransitions(t *testing.T) {
	u := testUser(t, 100, nil)

	u.Disable()
	assert.Equal(t, StatusDisabled, u.Status())
	assert.False(t, u.IsActive())

	u2 := testUser(t, 100, nil)
	u2.Expire()
	assert.Equal(t, StatusExpired, u2.Status())
}

func TestAttachAccount(t *testing.T) {
	u := testUser(t, 0, nil)

	a, err := NewNodeAccount(0, 3, "remote-abc")
	require.NoError(t, err)
	u.AttachAccount(a)

	require.Len(t, u.Accounts(), 1)
	assert.Equal(t, "remote-abc", u.Accounts()[0].RemoteID())
}

func TestNodeAccount_RecordUsage(t *testing.T) {
	a, err := NewNodeAccount(1, 3, "remote-abc")
	require.NoError(t, err)

	a.RecordUsage(12345)
	assert.Equal(t, int64(12345), a.UsedTraffic())

	_, err = NewNodeAccount(1, 0, "remote-abc")
	assert.Error(t, err)
	_, err = NewNodeAccount(1, 3, "")
	assert.Error(t, err)
}

func TestCleanupTask_Lifecycle(t *testing.T) {
	task, err := NewCleanupTask(3, "remote-abc", "compensation delete failed")
	require.NoError(t, err)
	assert.Equal(t, CleanupTaskPending, task.Status())
	assert.Equal(t, 0, task.Attempts())

	task.MarkAttempt()
	assert.Equal(t, 1, task.Attempts())
	assert.Equal(t, CleanupTaskPending, task.Status())

	task.MarkDone()
	assert.Equal(t, CleanupTaskDone, task.Status())

	_, err = NewCleanupTask(0, "remote-abc", "x")
	assert.Error(t, err)
}
