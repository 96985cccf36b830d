package repositories

import "context"

// UnitOfWork exposes the repositories bound to a single commit scope.
// Everything written through it commits atomically or not at all.
type UnitOfWork interface {
	Accounts() AccountRepositoryFacade
	Requests() RequestRepositoryFacade
	Ledger() LedgerRepositoryFacade
	Audit() AuditRepositoryFacade
	Idempotency() IdempotencyRepositoryFacade
}

// LedgerTxManager owns the commit boundary of processor operations.
//
// WithAccountLock acquires exclusive access to the given account before
// invoking fn, so that two operations on the same account never interleave
// their read/compute/write phases, and commits fn's writes as one unit when
// it returns nil. Operations on different accounts proceed independently.
// If the lock cannot be obtained within the configured bounded wait the
// call fails with apperrors.ErrLockTimeout and nothing is written.
//
// WithUnit provides the same all-or-nothing commit scope without locking an
// account; rejections use it since they move no money.
type LedgerTxManager interface {
	WithAccountLock(ctx context.Context, accountID string, fn func(ctx context.Context, uow UnitOfWork) error) error
	WithUnit(ctx context.Context, fn func(ctx context.Context, uow UnitOfWork) error) error
}
