package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/moneydesk/exchange-ledger/internal/apperrors"
	"github.com/moneydesk/exchange-ledger/internal/core/domain"
	portsrepo "github.com/moneydesk/exchange-ledger/internal/core/ports/repositories"
	"github.com/moneydesk/exchange-ledger/internal/models"
	"github.com/moneydesk/exchange-ledger/internal/utils/mapping"
)

type PgxRequestRepository struct {
	db querier
}

// Ensure PgxRequestRepository implements portsrepo.RequestRepositoryFacade
var _ portsrepo.RequestRepositoryFacade = (*PgxRequestRepository)(nil)

const requestColumns = `request_id, account_id, kind, amount, status, notes, processed_by, processed_at, created_at`

// SaveRequest inserts a new pending request row.
func (r *PgxRequestRepository) SaveRequest(ctx context.Context, request domain.PendingRequest) error {
	m := mapping.ToModelRequest(request)

	query := `
		INSERT INTO requests (` + requestColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
	`
	_, err := r.db.Exec(ctx, query,
		m.RequestID,
		m.AccountID,
		m.Kind,
		m.Amount,
		m.Status,
		m.Notes,
		m.ProcessedBy,
		m.ProcessedAt,
		m.CreatedAt,
	)
	if err != nil {
		if isPgErrCode(err, pgUniqueViolation) {
			return fmt.Errorf("%w: request with ID %s already exists", apperrors.ErrDuplicate, m.RequestID)
		}
		return fmt.Errorf("failed to save request %s: %w", m.RequestID, err)
	}
	return nil
}

// FindRequestByID retrieves a request by its ID.
func (r *PgxRequestRepository) FindRequestByID(ctx context.Context, requestID string) (*domain.PendingRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM requests WHERE request_id = $1;`

	var m models.PendingRequest
	err := r.db.QueryRow(ctx, query, requestID).Scan(
		&m.RequestID,
		&m.AccountID,
		&m.Kind,
		&m.Amount,
		&m.Status,
		&m.Notes,
		&m.ProcessedBy,
		&m.ProcessedAt,
		&m.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find request by ID %s: %w", requestID, err)
	}
	req := mapping.ToDomainRequest(m)
	return &req, nil
}

// MarkRequestResolved transitions a PENDING request to its final status.
// The status guard is in the WHERE clause, so a request resolved by a
// concurrent transaction yields zero affected rows and an ErrConflict.
func (r *PgxRequestRepository) MarkRequestResolved(ctx context.Context, requestID string, status domain.RequestStatus, processedBy string, processedAt time.Time, notes string) error {
	query := `
		UPDATE requests
		SET status = $2, processed_by = $3, processed_at = $4,
		    notes = CASE WHEN $5 = '' THEN notes ELSE $5 END
		WHERE request_id = $1 AND status = $6;
	`
	cmdTag, err := r.db.Exec(ctx, query, requestID, string(status), processedBy, processedAt, notes, string(domain.RequestPending))
	if err != nil {
		return fmt.Errorf("failed to resolve request %s: %w", requestID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		// Zero rows means either the request is gone or it is no longer
		// pending; distinguish the two for the caller.
		if _, findErr := r.FindRequestByID(ctx, requestID); errors.Is(findErr, apperrors.ErrNotFound) {
			return apperrors.ErrNotFound
		} else if findErr != nil {
			return fmt.Errorf("failed to check request status after resolve attempt for %s: %w", requestID, findErr)
		}
		return fmt.Errorf("%w: request %s is already resolved", apperrors.ErrConflict, requestID)
	}
	return nil
}
