package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/moneydesk/exchange-ledger/internal/apperrors"
	"github.com/moneydesk/exchange-ledger/internal/core/domain"
	portsrepo "github.com/moneydesk/exchange-ledger/internal/core/ports/repositories"
	"github.com/moneydesk/exchange-ledger/internal/models"
	"github.com/moneydesk/exchange-ledger/internal/utils/mapping"
)

type PgxAccountRepository struct {
	db querier
}

// Ensure PgxAccountRepository implements portsrepo.AccountRepositoryFacade
var _ portsrepo.AccountRepositoryFacade = (*PgxAccountRepository)(nil)

const accountColumns = `account_id, balance, total_deposited, total_withdrawn, daily_withdraw_limit, is_banned, created_at, created_by, last_updated_at, last_updated_by`

func scanAccount(row pgx.Row) (*domain.Account, error) {
	var m models.Account
	err := row.Scan(
		&m.AccountID,
		&m.Balance,
		&m.TotalDeposited,
		&m.TotalWithdrawn,
		&m.DailyWithdrawLimit,
		&m.IsBanned,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	acc := mapping.ToDomainAccount(m)
	return &acc, nil
}

// SaveAccount inserts a new account row. Account creation belongs to the
// provisioning layer; the processor only ever updates existing rows.
func (r *PgxAccountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	m := mapping.ToModelAccount(account)

	query := `
		INSERT INTO accounts (` + accountColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
	`
	_, err := r.db.Exec(ctx, query,
		m.AccountID,
		m.Balance,
		m.TotalDeposited,
		m.TotalWithdrawn,
		m.DailyWithdrawLimit,
		m.IsBanned,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		if isPgErrCode(err, pgUniqueViolation) {
			return fmt.Errorf("%w: account with ID %s already exists", apperrors.ErrDuplicate, m.AccountID)
		}
		return fmt.Errorf("failed to save account %s: %w", m.AccountID, err)
	}
	return nil
}

// FindAccountByID retrieves an account without locking it.
func (r *PgxAccountRepository) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE account_id = $1;`

	acc, err := scanAccount(r.db.QueryRow(ctx, query, accountID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find account by ID %s: %w", accountID, err)
	}
	return acc, nil
}

// FindAccountByIDForUpdate retrieves the account and takes its row lock for
// the rest of the transaction. A lock wait beyond the transaction's
// lock_timeout surfaces apperrors.ErrLockTimeout.
func (r *PgxAccountRepository) FindAccountByIDForUpdate(ctx context.Context, accountID string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE account_id = $1 FOR UPDATE;`

	acc, err := scanAccount(r.db.QueryRow(ctx, query, accountID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		if isPgErrCode(err, pgLockNotAvailable) {
			return nil, fmt.Errorf("%w: account %s", apperrors.ErrLockTimeout, accountID)
		}
		return nil, fmt.Errorf("failed to lock account %s: %w", accountID, err)
	}
	return acc, nil
}

// ApplyAccountSnapshot writes the post-operation balance and totals.
func (r *PgxAccountRepository) ApplyAccountSnapshot(ctx context.Context, account domain.Account) error {
	m := mapping.ToModelAccount(account)

	query := `
		UPDATE accounts
		SET balance = $2, total_deposited = $3, total_withdrawn = $4, last_updated_at = $5, last_updated_by = $6
		WHERE account_id = $1;
	`
	cmdTag, err := r.db.Exec(ctx, query,
		m.AccountID,
		m.Balance,
		m.TotalDeposited,
		m.TotalWithdrawn,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to update account %s: %w", m.AccountID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
