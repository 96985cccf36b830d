// Package memory implements the ledger storage ports entirely in process.
// It backs tests and embedded deployments: one logical lock per account id
// with a bounded wait, and staged writes that commit only when the unit of
// work succeeds, so a failed operation leaves no partial state.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/moneydesk/exchange-ledger/internal/apperrors"
	"github.com/moneydesk/exchange-ledger/internal/core/domain"
	portsrepo "github.com/moneydesk/exchange-ledger/internal/core/ports/repositories"
	"github.com/shopspring/decimal"
)

// Store holds all ledger state in memory.
type Store struct {
	mu          sync.RWMutex
	accounts    map[string]domain.Account
	requests    map[string]domain.PendingRequest
	ledger      []domain.Transaction
	ledgerByID  map[string]int
	ledgerByKey map[string]int
	idempotency map[string]domain.IdempotencyRecord
	audit       []domain.AuditLogEntry

	locksMu  sync.Mutex
	locks    map[string]chan struct{}
	lockWait time.Duration
}

// NewStore creates an empty in-memory store. lockWait bounds how long an
// operation waits for another operation on the same account to finish.
func NewStore(lockWait time.Duration) *Store {
	return &Store{
		accounts:    make(map[string]domain.Account),
		requests:    make(map[string]domain.PendingRequest),
		ledgerByID:  make(map[string]int),
		ledgerByKey: make(map[string]int),
		idempotency: make(map[string]domain.IdempotencyRecord),
		locks:       make(map[string]chan struct{}),
		lockWait:    lockWait,
	}
}

// Ensure Store implements the portsrepo.LedgerTxManager interface
var _ portsrepo.LedgerTxManager = (*Store)(nil)

func (s *Store) lockFor(accountID string) chan struct{} {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()
	ch, ok := s.locks[accountID]
	if !ok {
		ch = make(chan struct{}, 1)
		s.locks[accountID] = ch
	}
	return ch
}

// WithAccountLock serializes fn against every other operation targeting the
// same account. Operations on different accounts proceed independently.
func (s *Store) WithAccountLock(ctx context.Context, accountID string, fn func(ctx context.Context, uow portsrepo.UnitOfWork) error) error {
	ch := s.lockFor(accountID)
	timer := time.NewTimer(s.lockWait)
	defer timer.Stop()

	select {
	case ch <- struct{}{}:
		defer func() { <-ch }()
	case <-timer.C:
		return fmt.Errorf("%w: account %s", apperrors.ErrLockTimeout, accountID)
	case <-ctx.Done():
		return ctx.Err()
	}

	return s.runUnit(ctx, fn)
}

// WithUnit provides the all-or-nothing commit scope without an account lock.
func (s *Store) WithUnit(ctx context.Context, fn func(ctx context.Context, uow portsrepo.UnitOfWork) error) error {
	return s.runUnit(ctx, fn)
}

func (s *Store) runUnit(ctx context.Context, fn func(ctx context.Context, uow portsrepo.UnitOfWork) error) error {
	uow := newUnitOfWork(s)
	if err := fn(ctx, uow); err != nil {
		return err
	}
	return uow.commit()
}

// SeedAccount installs an account directly, bypassing the unit of work.
// Intended for provisioning and tests.
func (s *Store) SeedAccount(account domain.Account) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[account.AccountID] = account
}

// SeedRequest installs a pending request directly, bypassing the unit of work.
func (s *Store) SeedRequest(request domain.PendingRequest) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests[request.RequestID] = request
}

// Account returns a snapshot of the account, if present.
func (s *Store) Account(accountID string) (domain.Account, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	acc, ok := s.accounts[accountID]
	return acc, ok
}

// Request returns a snapshot of the request, if present.
func (s *Store) Request(requestID string) (domain.PendingRequest, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	req, ok := s.requests[requestID]
	return req, ok
}

// Transactions returns a copy of the ledger in append order.
func (s *Store) Transactions() []domain.Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Transaction, len(s.ledger))
	copy(out, s.ledger)
	return out
}

// AuditEntries returns a copy of the audit log in append order.
func (s *Store) AuditEntries() []domain.AuditLogEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.AuditLogEntry, len(s.audit))
	copy(out, s.audit)
	return out
}

// unitOfWork stages writes against the store and applies them atomically.
type unitOfWork struct {
	store *Store

	stagedAccounts map[string]domain.Account
	stagedRequests map[string]stagedRequest
	stagedTxns     []domain.Transaction
	stagedAudit    []domain.AuditLogEntry
	stagedIdem     map[string]domain.IdempotencyRecord
}

// stagedRequest remembers the status the request had when it was read, so
// commit can detect a concurrent resolution through another unit of work.
type stagedRequest struct {
	request        domain.PendingRequest
	expectedStatus domain.RequestStatus
}

func newUnitOfWork(s *Store) *unitOfWork {
	return &unitOfWork{
		store:          s,
		stagedAccounts: make(map[string]domain.Account),
		stagedRequests: make(map[string]stagedRequest),
		stagedIdem:     make(map[string]domain.IdempotencyRecord),
	}
}

// Ensure unitOfWork implements the portsrepo.UnitOfWork interface
var _ portsrepo.UnitOfWork = (*unitOfWork)(nil)

func (u *unitOfWork) Accounts() portsrepo.AccountRepositoryFacade       { return &accountRepo{u} }
func (u *unitOfWork) Requests() portsrepo.RequestRepositoryFacade       { return &requestRepo{u} }
func (u *unitOfWork) Ledger() portsrepo.LedgerRepositoryFacade          { return &ledgerRepo{u} }
func (u *unitOfWork) Audit() portsrepo.AuditRepositoryFacade            { return &auditRepo{u} }
func (u *unitOfWork) Idempotency() portsrepo.IdempotencyRepositoryFacade { return &idempotencyRepo{u} }

// commit validates and applies every staged write under one store lock.
// Nothing is applied if any validation fails.
func (u *unitOfWork) commit() error {
	s := u.store
	s.mu.Lock()
	defer s.mu.Unlock()

	for key := range u.stagedIdem {
		if _, exists := s.idempotency[key]; exists {
			return fmt.Errorf("%w: idempotency key %s", apperrors.ErrDuplicate, key)
		}
	}
	for _, txn := range u.stagedTxns {
		if _, exists := s.ledgerByKey[txn.IdempotencyKey]; exists {
			return fmt.Errorf("%w: ledger row for key %s", apperrors.ErrDuplicate, txn.IdempotencyKey)
		}
	}
	for id, staged := range u.stagedRequests {
		if committed, ok := s.requests[id]; ok && committed.Status != staged.expectedStatus {
			return fmt.Errorf("%w: request %s is %s", apperrors.ErrConflict, id, committed.Status)
		}
	}

	for id, acc := range u.stagedAccounts {
		s.accounts[id] = acc
	}
	for id, staged := range u.stagedRequests {
		s.requests[id] = staged.request
	}
	for _, txn := range u.stagedTxns {
		s.ledger = append(s.ledger, txn)
		s.ledgerByID[txn.TransactionID] = len(s.ledger) - 1
		s.ledgerByKey[txn.IdempotencyKey] = len(s.ledger) - 1
	}
	s.audit = append(s.audit, u.stagedAudit...)
	for key, rec := range u.stagedIdem {
		s.idempotency[key] = rec
	}
	return nil
}

// --- account repository ---

type accountRepo struct{ u *unitOfWork }

func (r *accountRepo) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	if acc, ok := r.u.stagedAccounts[accountID]; ok {
		return &acc, nil
	}
	s := r.u.store
	s.mu.RLock()
	defer s.mu.RUnlock()
	acc, ok := s.accounts[accountID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &acc, nil
}

func (r *accountRepo) FindAccountByIDForUpdate(ctx context.Context, accountID string) (*domain.Account, error) {
	// Exclusivity is provided by the store's per-account lock held around
	// the whole unit of work; the read itself is a plain lookup.
	return r.FindAccountByID(ctx, accountID)
}

func (r *accountRepo) SaveAccount(ctx context.Context, account domain.Account) error {
	if _, err := r.FindAccountByID(ctx, account.AccountID); err == nil {
		return fmt.Errorf("%w: account %s", apperrors.ErrDuplicate, account.AccountID)
	}
	r.u.stagedAccounts[account.AccountID] = account
	return nil
}

func (r *accountRepo) ApplyAccountSnapshot(ctx context.Context, account domain.Account) error {
	if _, err := r.FindAccountByID(ctx, account.AccountID); err != nil {
		return err
	}
	r.u.stagedAccounts[account.AccountID] = account
	return nil
}

// --- request repository ---

type requestRepo struct{ u *unitOfWork }

func (r *requestRepo) FindRequestByID(ctx context.Context, requestID string) (*domain.PendingRequest, error) {
	if staged, ok := r.u.stagedRequests[requestID]; ok {
		req := staged.request
		return &req, nil
	}
	s := r.u.store
	s.mu.RLock()
	defer s.mu.RUnlock()
	req, ok := s.requests[requestID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &req, nil
}

func (r *requestRepo) SaveRequest(ctx context.Context, request domain.PendingRequest) error {
	if _, err := r.FindRequestByID(ctx, request.RequestID); err == nil {
		return fmt.Errorf("%w: request %s", apperrors.ErrDuplicate, request.RequestID)
	}
	r.u.stagedRequests[request.RequestID] = stagedRequest{request: request, expectedStatus: request.Status}
	return nil
}

func (r *requestRepo) MarkRequestResolved(ctx context.Context, requestID string, status domain.RequestStatus, processedBy string, processedAt time.Time, notes string) error {
	req, err := r.FindRequestByID(ctx, requestID)
	if err != nil {
		return err
	}
	if req.Status != domain.RequestPending {
		return fmt.Errorf("%w: request %s is %s", apperrors.ErrConflict, requestID, req.Status)
	}
	expected := req.Status
	updated := *req
	updated.Status = status
	updated.ProcessedBy = processedBy
	updated.ProcessedAt = &processedAt
	if notes != "" {
		updated.Notes = notes
	}
	r.u.stagedRequests[requestID] = stagedRequest{request: updated, expectedStatus: expected}
	return nil
}

// --- ledger repository ---

type ledgerRepo struct{ u *unitOfWork }

func (r *ledgerRepo) AppendTransaction(ctx context.Context, txn domain.Transaction) error {
	s := r.u.store
	s.mu.RLock()
	_, exists := s.ledgerByKey[txn.IdempotencyKey]
	s.mu.RUnlock()
	if exists {
		return fmt.Errorf("%w: ledger row for key %s", apperrors.ErrDuplicate, txn.IdempotencyKey)
	}
	for _, staged := range r.u.stagedTxns {
		if staged.IdempotencyKey == txn.IdempotencyKey {
			return fmt.Errorf("%w: ledger row for key %s", apperrors.ErrDuplicate, txn.IdempotencyKey)
		}
	}
	r.u.stagedTxns = append(r.u.stagedTxns, txn)
	return nil
}

func (r *ledgerRepo) FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	for i := range r.u.stagedTxns {
		if r.u.stagedTxns[i].TransactionID == transactionID {
			txn := r.u.stagedTxns[i]
			return &txn, nil
		}
	}
	s := r.u.store
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx, ok := s.ledgerByID[transactionID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	txn := s.ledger[idx]
	return &txn, nil
}

func (r *ledgerRepo) SumDebitsInWindow(ctx context.Context, accountID string, from, to time.Time) (decimal.Decimal, error) {
	sum := decimal.Zero
	s := r.u.store
	s.mu.RLock()
	for _, txn := range s.ledger {
		if txn.AccountID == accountID && txn.Kind == domain.Debit &&
			!txn.CreatedAt.Before(from) && txn.CreatedAt.Before(to) {
			sum = sum.Add(txn.Amount)
		}
	}
	s.mu.RUnlock()
	for _, txn := range r.u.stagedTxns {
		if txn.AccountID == accountID && txn.Kind == domain.Debit &&
			!txn.CreatedAt.Before(from) && txn.CreatedAt.Before(to) {
			sum = sum.Add(txn.Amount)
		}
	}
	return sum, nil
}

// --- audit repository ---

type auditRepo struct{ u *unitOfWork }

func (r *auditRepo) AppendEntry(ctx context.Context, entry domain.AuditLogEntry) (string, error) {
	r.u.stagedAudit = append(r.u.stagedAudit, entry)
	return entry.EntryID, nil
}

// --- idempotency repository ---

type idempotencyRepo struct{ u *unitOfWork }

func (r *idempotencyRepo) FindByKey(ctx context.Context, key string) (*domain.IdempotencyRecord, error) {
	if rec, ok := r.u.stagedIdem[key]; ok {
		return &rec, nil
	}
	s := r.u.store
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.idempotency[key]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &rec, nil
}

func (r *idempotencyRepo) Reserve(ctx context.Context, record domain.IdempotencyRecord) error {
	if _, err := r.FindByKey(ctx, record.Key); err == nil {
		return fmt.Errorf("%w: idempotency key %s", apperrors.ErrDuplicate, record.Key)
	}
	r.u.stagedIdem[record.Key] = record
	return nil
}
