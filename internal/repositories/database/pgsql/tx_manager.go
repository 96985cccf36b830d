package pgsql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/moneydesk/exchange-ledger/internal/apperrors"
	portsrepo "github.com/moneydesk/exchange-ledger/internal/core/ports/repositories"
)

// PgxTxManager owns the commit boundary of ledger operations on Postgres.
// Per-account exclusivity comes from the SELECT ... FOR UPDATE issued by
// FindAccountByIDForUpdate inside the transaction; lockWait is applied as
// the transaction's lock_timeout so a contended account row fails the
// operation instead of queueing forever.
type PgxTxManager struct {
	pool     *pgxpool.Pool
	lockWait time.Duration
}

// NewTxManager creates the Postgres-backed transaction manager.
func NewTxManager(pool *pgxpool.Pool, lockWait time.Duration) *PgxTxManager {
	return &PgxTxManager{pool: pool, lockWait: lockWait}
}

// Ensure PgxTxManager implements the portsrepo.LedgerTxManager interface
var _ portsrepo.LedgerTxManager = (*PgxTxManager)(nil)

// WithAccountLock runs fn inside one transaction with a bounded row-lock
// wait. The account id is not locked here; fn is expected to lock the row
// through uow.Accounts().FindAccountByIDForUpdate.
func (m *PgxTxManager) WithAccountLock(ctx context.Context, accountID string, fn func(ctx context.Context, uow portsrepo.UnitOfWork) error) error {
	return m.run(ctx, true, fn)
}

// WithUnit runs fn inside one transaction without a lock timeout override.
func (m *PgxTxManager) WithUnit(ctx context.Context, fn func(ctx context.Context, uow portsrepo.UnitOfWork) error) error {
	return m.run(ctx, false, fn)
}

func (m *PgxTxManager) run(ctx context.Context, boundLockWait bool, fn func(ctx context.Context, uow portsrepo.UnitOfWork) error) error {
	tx, err := m.pool.Begin(ctx)
	if err != nil {
		return apperrors.NewAppError(500, "failed to begin transaction", err)
	}
	defer func() {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) && !errors.Is(rbErr, sql.ErrTxDone) {
			slog.ErrorContext(ctx, "failed to rollback transaction", "error", rbErr)
		}
	}()

	if boundLockWait && m.lockWait > 0 {
		// SET LOCAL does not accept bind parameters; the value comes from
		// config, not request input.
		stmt := fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", m.lockWait.Milliseconds())
		if _, err := tx.Exec(ctx, stmt); err != nil {
			return apperrors.NewAppError(500, "failed to set lock timeout", err)
		}
	}

	if err := fn(ctx, newTxUnitOfWork(tx)); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return apperrors.NewAppError(500, "failed to commit transaction", err)
	}
	return nil
}

// txUnitOfWork binds every repository to the same pgx transaction.
type txUnitOfWork struct {
	accounts    *PgxAccountRepository
	requests    *PgxRequestRepository
	ledger      *PgxLedgerRepository
	audit       *PgxAuditRepository
	idempotency *PgxIdempotencyRepository
}

func newTxUnitOfWork(tx pgx.Tx) *txUnitOfWork {
	return &txUnitOfWork{
		accounts:    &PgxAccountRepository{db: tx},
		requests:    &PgxRequestRepository{db: tx},
		ledger:      &PgxLedgerRepository{db: tx},
		audit:       &PgxAuditRepository{db: tx},
		idempotency: &PgxIdempotencyRepository{db: tx},
	}
}

// Ensure txUnitOfWork implements the portsrepo.UnitOfWork interface
var _ portsrepo.UnitOfWork = (*txUnitOfWork)(nil)

func (u *txUnitOfWork) Accounts() portsrepo.AccountRepositoryFacade        { return u.accounts }
func (u *txUnitOfWork) Requests() portsrepo.RequestRepositoryFacade        { return u.requests }
func (u *txUnitOfWork) Ledger() portsrepo.LedgerRepositoryFacade           { return u.ledger }
func (u *txUnitOfWork) Audit() portsrepo.AuditRepositoryFacade             { return u.audit }
func (u *txUnitOfWork) Idempotency() portsrepo.IdempotencyRepositoryFacade { return u.idempotency }
