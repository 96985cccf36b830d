package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/moneydesk/exchange-ledger/internal/apperrors"
	"github.com/moneydesk/exchange-ledger/internal/core/domain"
	portsrepo "github.com/moneydesk/exchange-ledger/internal/core/ports/repositories"
	"github.com/moneydesk/exchange-ledger/internal/models"
	"github.com/moneydesk/exchange-ledger/internal/utils/mapping"
)

type PgxLedgerRepository struct {
	db querier
}

// Ensure PgxLedgerRepository implements portsrepo.LedgerRepositoryFacade
var _ portsrepo.LedgerRepositoryFacade = (*PgxLedgerRepository)(nil)

const transactionColumns = `transaction_id, idempotency_key, account_id, kind, amount, balance_before, balance_after, signature, request_id, created_at, created_by`

// AppendTransaction inserts one immutable ledger row. The table carries a
// unique index on idempotency_key; a violation maps to ErrDuplicate.
func (r *PgxLedgerRepository) AppendTransaction(ctx context.Context, txn domain.Transaction) error {
	m := mapping.ToModelTransaction(txn)

	query := `
		INSERT INTO transactions (` + transactionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);
	`
	_, err := r.db.Exec(ctx, query,
		m.TransactionID,
		m.IdempotencyKey,
		m.AccountID,
		m.Kind,
		m.Amount,
		m.BalanceBefore,
		m.BalanceAfter,
		m.Signature,
		m.RequestID,
		m.CreatedAt,
		m.CreatedBy,
	)
	if err != nil {
		if isPgErrCode(err, pgUniqueViolation) {
			return fmt.Errorf("%w: ledger row for key %s", apperrors.ErrDuplicate, m.IdempotencyKey)
		}
		return fmt.Errorf("failed to append transaction %s: %w", m.TransactionID, err)
	}
	return nil
}

// FindTransactionByID retrieves a single ledger row.
func (r *PgxLedgerRepository) FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE transaction_id = $1;`

	var m models.Transaction
	err := r.db.QueryRow(ctx, query, transactionID).Scan(
		&m.TransactionID,
		&m.IdempotencyKey,
		&m.AccountID,
		&m.Kind,
		&m.Amount,
		&m.BalanceBefore,
		&m.BalanceAfter,
		&m.Signature,
		&m.RequestID,
		&m.CreatedAt,
		&m.CreatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find transaction by ID %s: %w", transactionID, err)
	}
	txn := mapping.ToDomainTransaction(m)
	return &txn, nil
}

// SumDebitsInWindow sums DEBIT amounts for the account created in [from, to).
func (r *PgxLedgerRepository) SumDebitsInWindow(ctx context.Context, accountID string, from, to time.Time) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(amount), 0)
		FROM transactions
		WHERE account_id = $1 AND kind = $2 AND created_at >= $3 AND created_at < $4;
	`
	var sum decimal.Decimal
	err := r.db.QueryRow(ctx, query, accountID, string(models.Debit), from, to).Scan(&sum)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum debits for account %s: %w", accountID, err)
	}
	return sum, nil
}
