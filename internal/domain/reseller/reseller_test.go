package reseller

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testReseller(t *testing.T, balance int64, parentage Parentage) *Reseller {
	t.Helper()
	r, err := ReconstructReseller(
		1, "tester", "hash", balance, 100, 150, 10,
		parentage, false, StatusActive,
		time.Now().UTC(), time.Now().UTC(),
	)
	require.NoError(t, err)
	return r
}

func TestNewReseller_Validation(t *testing.T) {
	_, err := NewReseller("", "hash", Root(), 0, 0, 0, false)
	assert.Error(t, err)

	_, err = NewReseller("alice", "", Root(), 0, 0, 0, false)
	assert.Error(t, err)

	_, err = NewReseller("alice", "hash", Root(), -1, 0, 0, false)
	assert.Error(t, err)

	r, err := NewReseller("alice", "hash", SubOf(7), 100, 150, 10, true)
	require.NoError(t, err)
	assert.Equal(t, int64(0), r.Balance())
	assert.Equal(t, StatusActive, r.Status())
	parentID, ok := r.Parentage().ParentID()
	assert.True(t, ok)
	assert.Equal(t, uint(7), parentID)
}

func TestDebit_RejectsOverdraw(t *testing.T) {
	r := testReseller(t, 5000, SubOf(2))

	require.NoError(t, r.Debit(2000))
	assert.Equal(t, int64(3000), r.Balance())

	err := r.Debit(4000)
	assert.Error(t, err)
	assert.Equal(t, int64(3000), r.Balance())

	assert.Error(t, r.Debit(-1))
}

func TestDebitFee_MayGoNegative(t *testing.T) {
	r := testReseller(t, 100, SubOf(2))

	r.DebitFee(250)
	assert.Equal(t, int64(-150), r.Balance())
}

func TestCredit_And_AdjustWallet(t *testing.T) {
	r := testReseller(t, 0, SubOf(2))

	require.NoError(t, r.Credit(500))
	assert.Equal(t, int64(500), r.Balance())
	assert.Error(t, r.Credit(-1))

	r.AdjustWallet(-200)
	assert.Equal(t, int64(300), r.Balance())
}

func TestClampChildPrices(t *testing.T) {
	r := testReseller(t, 0, SubOf(2))

	perGB, masterSub := r.ClampChildPrices(50, 120)
	assert.Equal(t, int64(100), perGB)
	assert.Equal(t, int64(150), masterSub)

	perGB, masterSub = r.ClampChildPrices(200, 300)
	assert.Equal(t, int64(200), perGB)
	assert.Equal(t, int64(300), masterSub)
}

func TestParentage_RootHasNoParent(t *testing.T) {
	root := Root()
	assert.True(t, root.IsRoot())
	_, ok := root.ParentID()
	assert.False(t, ok)

	sub := SubOf(3)
	assert.False(t, sub.IsRoot())
	parentID, ok := sub.ParentID()
	assert.True(t, ok)
	assert.Equal(t, uint(3), parentID)
}

func TestMayCreateSubReseller(t *testing.T) {
	root := testReseller(t, 0, Root())
	assert.True(t, root.MayCreateSubReseller())

	sub := testReseller(t, 0, SubOf(1))
	assert.False(t, sub.MayCreateSubReseller())
}

func TestStatusTransitions(t *testing.T) {
	r := testReseller(t, 0, SubOf(1))
	assert.True(t, r.IsActive())

	r.Lock()
	assert.Equal(t, StatusLocked, r.Status())
	assert.False(t, r.IsActive())

	r.Activate()
	assert.True(t, r.IsActive())

	r.Suspend()
	assert.Equal(t, StatusSuspended, r.Status())
}

func TestNewLedgerEntry(t *testing.T) {
	e, err := NewLedgerEntry(1, -500, EntryKindPurchase, "provision user alice on 2 nodes")
	require.NoError(t, err)
	assert.Equal(t, int64(-500), e.Amount())
	assert.Equal(t, EntryKindPurchase, e.Kind())

	_, err = NewLedgerEntry(0, 100, EntryKindRefund, "refund")
	assert.Error(t, err)

	_, err = NewLedgerEntry(1, 100, EntryKind("bogus"), "x")
	assert.Error(t, err)
}
