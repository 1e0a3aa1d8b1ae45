package usecases

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guardino-io/guardino/internal/application/testutil"
	"github.com/guardino-io/guardino/internal/domain/reseller"
	"github.com/guardino-io/guardino/internal/shared/errors"
	"github.com/guardino-io/guardino/internal/shared/logger"
)

// fakeHasher matches passwords against "hash:" + password.
type fakeHasher struct{}

func (fakeHasher) Hash(password string) (string, error) {
	return "hash:" + password, nil
}

func (fakeHasher) Verify(password, hash string) error {
	if hash != "hash:"+password {
		return fmt.Errorf("password verification failed")
	}
	return nil
}

type fakeTokenIssuer struct{}

func (fakeTokenIssuer) Generate(resellerID uint, isRoot bool) (string, error) {
	return fmt.Sprintf("token-%d-%t", resellerID, isRoot), nil
}

func (fakeTokenIssuer) ExpiresIn() int64 { return 3600 }

func addReseller(t *testing.T, repo *testutil.MockResellerRepository, username string, parentage reseller.Parentage, canCreateSub bool) *reseller.Reseller {
	t.Helper()
	r, err := reseller.NewReseller(username, "hash:secret", parentage, 100, 150, 0, canCreateSub)
	require.NoError(t, err)
	repo.Add(r)
	return r
}

func TestAuthenticate_Success(t *testing.T) {
	repo := testutil.NewMockResellerRepository()
	r := addReseller(t, repo, "acme", reseller.SubOf(1), false)

	uc := NewAuthenticateUseCase(repo, fakeHasher{}, fakeTokenIssuer{}, logger.NewNop())

	result, err := uc.Execute(context.Background(), AuthenticateCommand{Username: "acme", Password: "secret"})
	require.NoError(t, err)
	assert.Equal(t, r.ID(), result.Reseller.ID())
	assert.Equal(t, fmt.Sprintf("token-%d-false", r.ID()), result.AccessToken)
	assert.Equal(t, int64(3600), result.ExpiresIn)
}

func TestAuthenticate_InvalidCredentials(t *testing.T) {
	repo := testutil.NewMockResellerRepository()
	addReseller(t, repo, "acme", reseller.SubOf(1), false)

	uc := NewAuthenticateUseCase(repo, fakeHasher{}, fakeTokenIssuer{}, logger.NewNop())

	_, err := uc.Execute(context.Background(), AuthenticateCommand{Username: "acme", Password: "wrong"})
	require.Error(t, err)
	appErr := errors.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, errors.ErrorTypeUnauthorized, appErr.Type)

	// Unknown usernames get the same answer as bad passwords.
	_, err = uc.Execute(context.Background(), AuthenticateCommand{Username: "ghost", Password: "secret"})
	appErr = errors.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, errors.ErrorTypeUnauthorized, appErr.Type)
}

func TestAuthenticate_SuspendedRejected_LockedAllowed(t *testing.T) {
	repo := testutil.NewMockResellerRepository()
	suspended := addReseller(t, repo, "suspended", reseller.SubOf(1), false)
	suspended.Suspend()
	locked := addReseller(t, repo, "locked", reseller.SubOf(1), false)
	locked.Lock()

	uc := NewAuthenticateUseCase(repo, fakeHasher{}, fakeTokenIssuer{}, logger.NewNop())

	_, err := uc.Execute(context.Background(), AuthenticateCommand{Username: "suspended", Password: "secret"})
	require.Error(t, err)
	appErr := errors.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, errors.ErrorTypeForbidden, appErr.Type)

	// Locked resellers may still log in to inspect their account.
	_, err = uc.Execute(context.Background(), AuthenticateCommand{Username: "locked", Password: "secret"})
	assert.NoError(t, err)
}

func TestCreateReseller_ClampsPricesToActor(t *testing.T) {
	repo := testutil.NewMockResellerRepository()
	actor := addReseller(t, repo, "parent", reseller.SubOf(1), true)

	uc := NewCreateResellerUseCase(repo, fakeHasher{}, logger.NewNop())

	result, err := uc.Execute(context.Background(), CreateResellerCommand{
		ActorID:        actor.ID(),
		Username:       "child",
		Password:       "pw",
		PricePerGB:     10,  // below the actor's 100
		PriceMasterSub: 400, // above the actor's 150
	})
	require.NoError(t, err)

	assert.Equal(t, int64(100), result.Reseller.PricePerGB())
	assert.Equal(t, int64(400), result.Reseller.PriceMasterSub())
	parentID, ok := result.Reseller.Parentage().ParentID()
	require.True(t, ok)
	assert.Equal(t, actor.ID(), parentID)
}

func TestCreateReseller_RequiresPermission(t *testing.T) {
	repo := testutil.NewMockResellerRepository()
	actor := addReseller(t, repo, "parent", reseller.SubOf(1), false)

	uc := NewCreateResellerUseCase(repo, fakeHasher{}, logger.NewNop())

	_, err := uc.Execute(context.Background(), CreateResellerCommand{
		ActorID:  actor.ID(),
		Username: "child",
		Password: "pw",
	})
	require.Error(t, err)
	appErr := errors.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, errors.ErrorTypeForbidden, appErr.Type)

	// Root always may.
	root, err := reseller.NewReseller("root", "hash:secret", reseller.Root(), 0, 0, 0, false)
	require.NoError(t, err)
	repo.Add(root)

	_, err = uc.Execute(context.Background(), CreateResellerCommand{
		ActorID:  root.ID(),
		Username: "child",
		Password: "pw",
	})
	assert.NoError(t, err)
}

func TestCreateReseller_DuplicateUsername(t *testing.T) {
	repo := testutil.NewMockResellerRepository()
	actor := addReseller(t, repo, "parent", reseller.Root(), false)
	addReseller(t, repo, "taken", reseller.SubOf(actor.ID()), false)

	uc := NewCreateResellerUseCase(repo, fakeHasher{}, logger.NewNop())

	_, err := uc.Execute(context.Background(), CreateResellerCommand{
		ActorID:  actor.ID(),
		Username: "taken",
		Password: "pw",
	})
	require.Error(t, err)
	assert.True(t, errors.IsConflictError(err))
}

func TestAdjustWallet_ParentOnly(t *testing.T) {
	repo := testutil.NewMockResellerRepository()
	ledgerRepo := testutil.NewMockLedgerRepository()

	parent := addReseller(t, repo, "parent", reseller.Root(), true)
	child := addReseller(t, repo, "child", reseller.SubOf(parent.ID()), false)
	stranger := addReseller(t, repo, "stranger", reseller.SubOf(99), false)

	uc := NewAdjustWalletUseCase(repo, ledgerRepo, &testutil.MockTransactionManager{}, logger.NewNop())

	result, err := uc.Execute(context.Background(), AdjustWalletCommand{
		ActorID:  parent.ID(),
		TargetID: child.ID(),
		Amount:   500,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(500), result.Balance)

	require.Len(t, ledgerRepo.Entries, 1)
	assert.Equal(t, reseller.EntryKindWalletAdjustment, ledgerRepo.Entries[0].Kind())

	// A non-parent cannot touch the wallet.
	_, err = uc.Execute(context.Background(), AdjustWalletCommand{
		ActorID:  stranger.ID(),
		TargetID: child.ID(),
		Amount:   100,
	})
	require.Error(t, err)
	appErr := errors.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, errors.ErrorTypeForbidden, appErr.Type)

	// Root may adjust anyone.
	_, err = uc.Execute(context.Background(), AdjustWalletCommand{
		ActorID:  parent.ID(),
		IsRoot:   true,
		TargetID: stranger.ID(),
		Amount:   -50,
	})
	assert.NoError(t, err)
}

func TestAdjustWallet_ZeroAmountRejected(t *testing.T) {
	repo := testutil.NewMockResellerRepository()
	ledgerRepo := testutil.NewMockLedgerRepository()

	uc := NewAdjustWalletUseCase(repo, ledgerRepo, &testutil.MockTransactionManager{}, logger.NewNop())

	_, err := uc.Execute(context.Background(), AdjustWalletCommand{ActorID: 1, TargetID: 2, Amount: 0})
	require.Error(t, err)
	assert.True(t, errors.IsValidationError(err))
}

func TestLedgerHistory_AccessControl(t *testing.T) {
	repo := testutil.NewMockResellerRepository()
	ledgerRepo := testutil.NewMockLedgerRepository()

	parent := addReseller(t, repo, "parent", reseller.Root(), true)
	child := addReseller(t, repo, "child", reseller.SubOf(parent.ID()), false)
	stranger := addReseller(t, repo, "stranger", reseller.SubOf(99), false)

	entry, err := reseller.NewLedgerEntry(child.ID(), -100, reseller.EntryKindPurchase, "provision")
	require.NoError(t, err)
	require.NoError(t, ledgerRepo.Append(context.Background(), entry))

	uc := NewLedgerHistoryUseCase(repo, ledgerRepo, logger.NewNop())

	// Parent reads the child's history.
	result, err := uc.Execute(context.Background(), LedgerHistoryCommand{
		ActorID:  parent.ID(),
		TargetID: child.ID(),
	})
	require.NoError(t, err)
	require.Len(t, result.Entries, 1)

	// TargetID zero means the actor's own history.
	result, err = uc.Execute(context.Background(), LedgerHistoryCommand{ActorID: child.ID()})
	require.NoError(t, err)
	require.Len(t, result.Entries, 1)

	// A stranger cannot read it.
	_, err = uc.Execute(context.Background(), LedgerHistoryCommand{
		ActorID:  stranger.ID(),
		TargetID: child.ID(),
	})
	require.Error(t, err)
	appErr := errors.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, errors.ErrorTypeForbidden, appErr.Type)
}

func TestListResellers_ScopedByRole(t *testing.T) {
	repo := testutil.NewMockResellerRepository()

	root := addReseller(t, repo, "root", reseller.Root(), true)
	child := addReseller(t, repo, "child", reseller.SubOf(root.ID()), false)
	addReseller(t, repo, "grandchild", reseller.SubOf(child.ID()), false)

	uc := NewListResellersUseCase(repo, logger.NewNop())

	all, err := uc.Execute(context.Background(), ListResellersCommand{ActorID: root.ID(), IsRoot: true})
	require.NoError(t, err)
	assert.Len(t, all.Resellers, 3)

	children, err := uc.Execute(context.Background(), ListResellersCommand{ActorID: child.ID()})
	require.NoError(t, err)
	require.Len(t, children.Resellers, 1)
	assert.Equal(t, "grandchild", children.Resellers[0].Username())
}
