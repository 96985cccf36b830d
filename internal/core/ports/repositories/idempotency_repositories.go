package repositories

import (
	"context"

	"github.com/moneydesk/exchange-ledger/internal/core/domain"
)

// IdempotencyRepositoryFacade is the registry of already-applied dedup keys.
// Both operations must run inside the same unit of work as the rest of a
// processor operation so that two concurrent calls bearing the same key
// cannot both pass the check.
type IdempotencyRepositoryFacade interface {
	// FindByKey returns the prior record for key, or apperrors.ErrNotFound.
	FindByKey(ctx context.Context, key string) (*domain.IdempotencyRecord, error)

	// Reserve records the key and its outcome. A key already reserved
	// surfaces apperrors.ErrDuplicate.
	Reserve(ctx context.Context, record domain.IdempotencyRecord) error
}
