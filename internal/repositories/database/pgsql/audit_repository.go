package pgsql

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/moneydesk/exchange-ledger/internal/core/domain"
	portsrepo "github.com/moneydesk/exchange-ledger/internal/core/ports/repositories"
)

type PgxAuditRepository struct {
	db querier
}

// Ensure PgxAuditRepository implements portsrepo.AuditRepositoryFacade
var _ portsrepo.AuditRepositoryFacade = (*PgxAuditRepository)(nil)

// AppendEntry inserts one audit record. Details goes into a JSONB column.
func (r *PgxAuditRepository) AppendEntry(ctx context.Context, entry domain.AuditLogEntry) (string, error) {
	details, err := json.Marshal(entry.Details)
	if err != nil {
		return "", fmt.Errorf("failed to marshal audit details for %s: %w", entry.EntryID, err)
	}

	query := `
		INSERT INTO audit_log (entry_id, actor_id, action, target_type, target_id, details, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7);
	`
	_, err = r.db.Exec(ctx, query,
		entry.EntryID,
		entry.ActorID,
		string(entry.Action),
		entry.TargetType,
		entry.TargetID,
		details,
		entry.CreatedAt,
	)
	if err != nil {
		return "", fmt.Errorf("failed to append audit entry %s: %w", entry.EntryID, err)
	}
	return entry.EntryID, nil
}
