package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moneydesk/exchange-ledger/internal/apperrors"
	"github.com/moneydesk/exchange-ledger/internal/core/domain"
	portsrepo "github.com/moneydesk/exchange-ledger/internal/core/ports/repositories"
)

func newTestAccount(balance string) domain.Account {
	return domain.Account{
		AccountID:          uuid.NewString(),
		Balance:            decimal.RequireFromString(balance),
		DailyWithdrawLimit: decimal.RequireFromString("10000"),
		AuditFields: domain.AuditFields{
			CreatedAt:     time.Now().UTC(),
			CreatedBy:     "system",
			LastUpdatedAt: time.Now().UTC(),
			LastUpdatedBy: "system",
		},
	}
}

func TestWithAccountLock_Timeout(t *testing.T) {
	store := NewStore(50 * time.Millisecond)
	acc := newTestAccount("100")
	store.SeedAccount(acc)

	holding := make(chan struct{})
	release := make(chan struct{})
	go func() {
		_ = store.WithAccountLock(context.Background(), acc.AccountID, func(ctx context.Context, uow portsrepo.UnitOfWork) error {
			close(holding)
			<-release
			return nil
		})
	}()
	<-holding
	defer close(release)

	err := store.WithAccountLock(context.Background(), acc.AccountID, func(ctx context.Context, uow portsrepo.UnitOfWork) error {
		return nil
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrLockTimeout)
}

func TestWithAccountLock_DifferentAccountsDoNotBlock(t *testing.T) {
	store := NewStore(100 * time.Millisecond)
	accA := newTestAccount("100")
	accB := newTestAccount("100")
	store.SeedAccount(accA)
	store.SeedAccount(accB)

	holding := make(chan struct{})
	release := make(chan struct{})
	go func() {
		_ = store.WithAccountLock(context.Background(), accA.AccountID, func(ctx context.Context, uow portsrepo.UnitOfWork) error {
			close(holding)
			<-release
			return nil
		})
	}()
	<-holding
	defer close(release)

	err := store.WithAccountLock(context.Background(), accB.AccountID, func(ctx context.Context, uow portsrepo.UnitOfWork) error {
		return nil
	})
	assert.NoError(t, err)
}

func TestWithAccountLock_ContextCancelled(t *testing.T) {
	store := NewStore(5 * time.Second)
	acc := newTestAccount("100")
	store.SeedAccount(acc)

	holding := make(chan struct{})
	release := make(chan struct{})
	go func() {
		_ = store.WithAccountLock(context.Background(), acc.AccountID, func(ctx context.Context, uow portsrepo.UnitOfWork) error {
			close(holding)
			<-release
			return nil
		})
	}()
	<-holding
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := store.WithAccountLock(ctx, acc.AccountID, func(ctx context.Context, uow portsrepo.UnitOfWork) error {
		return nil
	})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestUnitOfWork_FailedFnLeavesNoState(t *testing.T) {
	store := NewStore(time.Second)
	acc := newTestAccount("100")
	store.SeedAccount(acc)
	boom := errors.New("deliberate failure")

	err := store.WithAccountLock(context.Background(), acc.AccountID, func(ctx context.Context, uow portsrepo.UnitOfWork) error {
		updated := acc
		updated.Balance = decimal.RequireFromString("999")
		require.NoError(t, uow.Accounts().ApplyAccountSnapshot(ctx, updated))
		require.NoError(t, uow.Ledger().AppendTransaction(ctx, domain.Transaction{
			TransactionID:  uuid.NewString(),
			IdempotencyKey: "key-rollback",
			AccountID:      acc.AccountID,
			Kind:           domain.Credit,
			Amount:         decimal.RequireFromString("899"),
			CreatedAt:      time.Now().UTC(),
		}))
		return boom
	})
	require.ErrorIs(t, err, boom)

	got, ok := store.Account(acc.AccountID)
	require.True(t, ok)
	assert.True(t, got.Balance.Equal(decimal.RequireFromString("100")), "balance must be untouched, got %s", got.Balance)
	assert.Empty(t, store.Transactions())
}

func TestUnitOfWork_StagedWritesVisibleWithinUnit(t *testing.T) {
	store := NewStore(time.Second)
	acc := newTestAccount("100")
	store.SeedAccount(acc)

	err := store.WithAccountLock(context.Background(), acc.AccountID, func(ctx context.Context, uow portsrepo.UnitOfWork) error {
		txn := domain.Transaction{
			TransactionID:  uuid.NewString(),
			IdempotencyKey: "key-visible",
			AccountID:      acc.AccountID,
			Kind:           domain.Debit,
			Amount:         decimal.RequireFromString("10"),
			CreatedAt:      time.Now().UTC(),
		}
		if err := uow.Ledger().AppendTransaction(ctx, txn); err != nil {
			return err
		}
		from, to := time.Now().UTC().Add(-time.Hour), time.Now().UTC().Add(time.Hour)
		sum, err := uow.Ledger().SumDebitsInWindow(ctx, acc.AccountID, from, to)
		if err != nil {
			return err
		}
		assert.True(t, sum.Equal(decimal.RequireFromString("10")), "staged debit must count, got %s", sum)
		found, err := uow.Ledger().FindTransactionByID(ctx, txn.TransactionID)
		if err != nil {
			return err
		}
		assert.Equal(t, txn.TransactionID, found.TransactionID)
		return nil
	})
	require.NoError(t, err)
	assert.Len(t, store.Transactions(), 1)
}

func TestLedger_DuplicateIdempotencyKeyRejected(t *testing.T) {
	store := NewStore(time.Second)
	acc := newTestAccount("100")
	store.SeedAccount(acc)

	append1 := func(ctx context.Context, uow portsrepo.UnitOfWork) error {
		return uow.Ledger().AppendTransaction(ctx, domain.Transaction{
			TransactionID:  uuid.NewString(),
			IdempotencyKey: "key-dup",
			AccountID:      acc.AccountID,
			Kind:           domain.Credit,
			Amount:         decimal.RequireFromString("5"),
			CreatedAt:      time.Now().UTC(),
		})
	}
	require.NoError(t, store.WithUnit(context.Background(), append1))

	err := store.WithUnit(context.Background(), append1)
	assert.ErrorIs(t, err, apperrors.ErrDuplicate)
	assert.Len(t, store.Transactions(), 1)
}

func TestRequests_MarkResolvedTwiceConflicts(t *testing.T) {
	store := NewStore(time.Second)
	req := domain.PendingRequest{
		RequestID: uuid.NewString(),
		AccountID: uuid.NewString(),
		Kind:      domain.DepositRequest,
		Amount:    decimal.RequireFromString("10"),
		Status:    domain.RequestPending,
		CreatedAt: time.Now().UTC(),
	}
	store.SeedRequest(req)

	resolve := func(ctx context.Context, uow portsrepo.UnitOfWork) error {
		return uow.Requests().MarkRequestResolved(ctx, req.RequestID, domain.RequestRejected, "admin-1", time.Now().UTC(), "declined")
	}
	require.NoError(t, store.WithUnit(context.Background(), resolve))

	err := store.WithUnit(context.Background(), resolve)
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	got, ok := store.Request(req.RequestID)
	require.True(t, ok)
	assert.Equal(t, domain.RequestRejected, got.Status)
	assert.Equal(t, "admin-1", got.ProcessedBy)
}

func TestIdempotency_ReserveAndFind(t *testing.T) {
	store := NewStore(time.Second)
	rec := domain.IdempotencyRecord{
		Key:         "key-1",
		Fingerprint: "abc",
		AccountID:   uuid.NewString(),
		Kind:        domain.Credit,
		Amount:      decimal.RequireFromString("10"),
		CreatedAt:   time.Now().UTC(),
	}
	require.NoError(t, store.WithUnit(context.Background(), func(ctx context.Context, uow portsrepo.UnitOfWork) error {
		return uow.Idempotency().Reserve(ctx, rec)
	}))

	err := store.WithUnit(context.Background(), func(ctx context.Context, uow portsrepo.UnitOfWork) error {
		_, findErr := uow.Idempotency().FindByKey(ctx, "key-1")
		require.NoError(t, findErr)
		return uow.Idempotency().Reserve(ctx, rec)
	})
	assert.ErrorIs(t, err, apperrors.ErrDuplicate)

	err = store.WithUnit(context.Background(), func(ctx context.Context, uow portsrepo.UnitOfWork) error {
		_, findErr := uow.Idempotency().FindByKey(ctx, "missing")
		return findErr
	})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
