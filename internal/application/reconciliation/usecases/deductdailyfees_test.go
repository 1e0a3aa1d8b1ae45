package usecases

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guardino-io/guardino/internal/application/testutil"
	"github.com/guardino-io/guardino/internal/domain/reseller"
	"github.com/guardino-io/guardino/internal/shared/logger"
)

func newFeeReseller(t *testing.T, username string, balance, dailyFee int64) *reseller.Reseller {
	t.Helper()
	r, err := reseller.NewReseller(username, "hash", reseller.SubOf(1), 100, 150, dailyFee, false)
	require.NoError(t, err)
	if balance > 0 {
		require.NoError(t, r.Credit(balance))
	}
	return r
}

func TestDeductDailyFees_ChargesEveryFeeCarrier(t *testing.T) {
	resellerRepo := testutil.NewMockResellerRepository()
	ledgerRepo := testutil.NewMockLedgerRepository()

	paying := newFeeReseller(t, "paying", 1000, 100)
	free := newFeeReseller(t, "free", 1000, 0)
	resellerRepo.Add(paying)
	resellerRepo.Add(free)

	uc := NewDeductDailyFeesUseCase(resellerRepo, ledgerRepo, &testutil.MockTransactionManager{}, logger.NewNop())

	result, err := uc.Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.ResellersCharged)
	assert.Equal(t, 0, result.ResellersLocked)

	assert.Equal(t, int64(900), paying.Balance())
	assert.Equal(t, int64(1000), free.Balance())

	require.Len(t, ledgerRepo.Entries, 1)
	assert.Equal(t, int64(-100), ledgerRepo.Entries[0].Amount())
	assert.Equal(t, reseller.EntryKindDailyFee, ledgerRepo.Entries[0].Kind())
}

func TestDeductDailyFees_LocksOnNegativeBalance(t *testing.T) {
	resellerRepo := testutil.NewMockResellerRepository()
	ledgerRepo := testutil.NewMockLedgerRepository()

	broke := newFeeReseller(t, "broke", 50, 100)
	resellerRepo.Add(broke)

	uc := NewDeductDailyFeesUseCase(resellerRepo, ledgerRepo, &testutil.MockTransactionManager{}, logger.NewNop())

	result, err := uc.Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.ResellersCharged)
	assert.Equal(t, 1, result.ResellersLocked)

	assert.Equal(t, int64(-50), broke.Balance())
	assert.Equal(t, reseller.StatusLocked, broke.Status())
}

func TestDeductDailyFees_AlreadyLockedStaysLocked(t *testing.T) {
	resellerRepo := testutil.NewMockResellerRepository()
	ledgerRepo := testutil.NewMockLedgerRepository()

	locked := newFeeReseller(t, "locked", 0, 100)
	locked.Lock()
	resellerRepo.Add(locked)

	uc := NewDeductDailyFeesUseCase(resellerRepo, ledgerRepo, &testutil.MockTransactionManager{}, logger.NewNop())

	result, err := uc.Execute(context.Background())
	require.NoError(t, err)

	// The fee still lands, but an already locked reseller is not counted
	// as newly locked.
	assert.Equal(t, 1, result.ResellersCharged)
	assert.Equal(t, 0, result.ResellersLocked)
	assert.Equal(t, int64(-100), locked.Balance())
	assert.Equal(t, reseller.StatusLocked, locked.Status())
}
