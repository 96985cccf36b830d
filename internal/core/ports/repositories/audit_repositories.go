package repositories

import (
	"context"

	"github.com/moneydesk/exchange-ledger/internal/core/domain"
)

// AuditRepositoryFacade is the append-only audit log. Query access is an
// external-reporting concern and lives outside the core.
type AuditRepositoryFacade interface {
	// AppendEntry appends one audit record and returns its id.
	AppendEntry(ctx context.Context, entry domain.AuditLogEntry) (string, error)
}
