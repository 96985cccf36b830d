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

type PgxIdempotencyRepository struct {
	db querier
}

// Ensure PgxIdempotencyRepository implements portsrepo.IdempotencyRepositoryFacade
var _ portsrepo.IdempotencyRepositoryFacade = (*PgxIdempotencyRepository)(nil)

const idempotencyColumns = `idempotency_key, fingerprint, transaction_id, account_id, kind, amount, balance_before, balance_after, request_id, created_at`

// FindByKey returns the prior record for key, or apperrors.ErrNotFound.
func (r *PgxIdempotencyRepository) FindByKey(ctx context.Context, key string) (*domain.IdempotencyRecord, error) {
	query := `SELECT ` + idempotencyColumns + ` FROM idempotency_keys WHERE idempotency_key = $1;`

	var m models.IdempotencyRecord
	err := r.db.QueryRow(ctx, query, key).Scan(
		&m.Key,
		&m.Fingerprint,
		&m.TransactionID,
		&m.AccountID,
		&m.Kind,
		&m.Amount,
		&m.BalanceBefore,
		&m.BalanceAfter,
		&m.RequestID,
		&m.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find idempotency key %s: %w", key, err)
	}
	rec := mapping.ToDomainIdempotencyRecord(m)
	return &rec, nil
}

// Reserve records the key and the outcome it produced.
func (r *PgxIdempotencyRepository) Reserve(ctx context.Context, record domain.IdempotencyRecord) error {
	m := mapping.ToModelIdempotencyRecord(record)

	query := `
		INSERT INTO idempotency_keys (` + idempotencyColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
	`
	_, err := r.db.Exec(ctx, query,
		m.Key,
		m.Fingerprint,
		m.TransactionID,
		m.AccountID,
		m.Kind,
		m.Amount,
		m.BalanceBefore,
		m.BalanceAfter,
		m.RequestID,
		m.CreatedAt,
	)
	if err != nil {
		if isPgErrCode(err, pgUniqueViolation) {
			return fmt.Errorf("%w: idempotency key %s", apperrors.ErrDuplicate, m.Key)
		}
		return fmt.Errorf("failed to reserve idempotency key %s: %w", m.Key, err)
	}
	return nil
}
