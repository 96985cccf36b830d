package repositories

import (
	"context"

	"github.com/moneydesk/exchange-ledger/internal/core/domain"
)

// AccountReader defines read operations for account data.
type AccountReader interface {
	// FindAccountByID retrieves a specific account by its unique identifier.
	FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error)
}

// AccountWriter defines write operations for account data.
type AccountWriter interface {
	// SaveAccount persists a new account. Registration happens outside the
	// ledger core; this exists for provisioning and tests.
	SaveAccount(ctx context.Context, account domain.Account) error
}

// AccountLockedAccess defines operations only valid inside a unit of work
// while the account's exclusive lock is held.
type AccountLockedAccess interface {
	// FindAccountByIDForUpdate retrieves the account and locks it for the
	// remainder of the unit of work. All read-modify-write cycles for the
	// same account serialize on this lock.
	FindAccountByIDForUpdate(ctx context.Context, accountID string) (*domain.Account, error)

	// ApplyAccountSnapshot commits the new balance/totals snapshot.
	ApplyAccountSnapshot(ctx context.Context, account domain.Account) error
}

// AccountRepositoryFacade combines all account-related repository interfaces.
type AccountRepositoryFacade interface {
	AccountReader
	AccountWriter
	AccountLockedAccess
}
