package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/moneydesk/exchange-ledger/internal/apperrors"
	"github.com/moneydesk/exchange-ledger/internal/core/domain"
	portsrepo "github.com/moneydesk/exchange-ledger/internal/core/ports/repositories"
	portssvc "github.com/moneydesk/exchange-ledger/internal/core/ports/services"
	"github.com/moneydesk/exchange-ledger/internal/dto"
	"github.com/moneydesk/exchange-ledger/internal/middleware"
	"github.com/moneydesk/exchange-ledger/internal/utils/accounting"
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidAmount          = errors.New("amount must be positive with at most two decimal places")
	ErrAmountTooLarge         = errors.New("amount exceeds the configured maximum")
	ErrRequestNotPending      = errors.New("request is not pending")
	ErrAccountNotFound        = errors.New("account not found")
	ErrAccountBanned          = errors.New("account is banned")
	ErrInsufficientFunds      = errors.New("insufficient funds")
	ErrDailyLimitExceeded     = errors.New("daily withdrawal limit exceeded")
	ErrIdempotencyKeyConflict = errors.New("idempotency key already used with different arguments")
)

// ledgerService is the orchestrating core of the exchange ledger. It is the
// only component external callers invoke to move money: it deduplicates,
// serializes access to the target account, validates business rules against
// current state, writes the signed ledger row, and commits everything as
// one unit.
type ledgerService struct {
	txManager portsrepo.LedgerTxManager
	signer    portssvc.TransactionSignerSvc
	maxAmount decimal.Decimal
	now       func() time.Time
}

// NewLedgerService creates a new LedgerService.
func NewLedgerService(txManager portsrepo.LedgerTxManager, signer portssvc.TransactionSignerSvc, maxAmount decimal.Decimal) portssvc.LedgerSvcFacade {
	return &ledgerService{
		txManager: txManager,
		signer:    signer,
		maxAmount: maxAmount,
		now:       time.Now,
	}
}

// Ensure ledgerService implements the portssvc.LedgerSvcFacade interface
var _ portssvc.LedgerSvcFacade = (*ledgerService)(nil)

// movement bundles the arguments a deposit or withdrawal shares.
type movement struct {
	accountID      string
	amount         decimal.Decimal
	requestID      string
	idempotencyKey string
	notes          string
	actorID        string
	kind           domain.TransactionKind
	requestKind    domain.RequestKind
	action         domain.AuditAction
}

// fingerprint digests the arguments that must be identical for a retry to
// count as a safe replay rather than a conflict.
func (m movement) fingerprint() string {
	payload := strings.Join([]string{
		m.accountID,
		string(m.kind),
		m.amount.StringFixed(2),
		m.requestID,
	}, "|")
	sum := sha256.Sum256([]byte(payload))
	return hex.EncodeToString(sum[:])
}

// ProcessDeposit applies an approved deposit to the account.
// Implements portssvc.LedgerSvcFacade
func (s *ledgerService) ProcessDeposit(ctx context.Context, req dto.ProcessDepositRequest, actorID string) (*dto.TransactionResult, error) {
	return s.processMovement(ctx, movement{
		accountID:      req.AccountID,
		amount:         req.Amount,
		requestID:      req.RequestID,
		idempotencyKey: req.IdempotencyKey,
		notes:          req.Notes,
		actorID:        actorID,
		kind:           domain.Credit,
		requestKind:    domain.DepositRequest,
		action:         domain.ActionApproveDeposit,
	})
}

// ProcessWithdrawal applies an approved withdrawal to the account.
// Implements portssvc.LedgerSvcFacade
func (s *ledgerService) ProcessWithdrawal(ctx context.Context, req dto.ProcessWithdrawalRequest, actorID string) (*dto.TransactionResult, error) {
	return s.processMovement(ctx, movement{
		accountID:      req.AccountID,
		amount:         req.Amount,
		requestID:      req.RequestID,
		idempotencyKey: req.IdempotencyKey,
		notes:          req.Notes,
		actorID:        actorID,
		kind:           domain.Debit,
		requestKind:    domain.WithdrawalRequest,
		action:         domain.ActionApproveWithdrawal,
	})
}

// processMovement runs the shared approval pipeline: amount validation,
// then dedup check, request and account validation, balance computation and
// all writes inside the account's exclusive lock. Validation before the
// lock is only an optimization; everything that depends on current state is
// (re)checked after acquisition.
func (s *ledgerService) processMovement(ctx context.Context, m movement) (*dto.TransactionResult, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if !m.amount.IsPositive() || !accounting.IsMonetary(m.amount) {
		return nil, fmt.Errorf("%w: got %s", ErrInvalidAmount, m.amount)
	}
	if m.amount.GreaterThan(s.maxAmount) {
		return nil, fmt.Errorf("%w: %s > %s", ErrAmountTooLarge, m.amount, s.maxAmount)
	}

	var result *dto.TransactionResult
	err := s.txManager.WithAccountLock(ctx, m.accountID, func(ctx context.Context, uow portsrepo.UnitOfWork) error {
		// Dedup first: a retry of an already-applied call must not touch
		// the account at all.
		fp := m.fingerprint()
		prior, err := uow.Idempotency().FindByKey(ctx, m.idempotencyKey)
		if err == nil {
			if prior.Fingerprint != fp {
				logger.Warn("Idempotency key reused with different arguments",
					slog.String("idempotency_key", m.idempotencyKey),
					slog.String("account_id", m.accountID))
				return fmt.Errorf("%w: key %s", ErrIdempotencyKeyConflict, m.idempotencyKey)
			}
			result = dto.ToReplayedResult(prior)
			return nil
		}
		if !errors.Is(err, apperrors.ErrNotFound) {
			return fmt.Errorf("failed to look up idempotency key: %w", err)
		}

		request, err := uow.Requests().FindRequestByID(ctx, m.requestID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return fmt.Errorf("%w: request %s", apperrors.ErrNotFound, m.requestID)
			}
			return fmt.Errorf("failed to find request %s: %w", m.requestID, err)
		}
		if request.Status != domain.RequestPending {
			return fmt.Errorf("%w: request %s is %s", ErrRequestNotPending, m.requestID, request.Status)
		}
		if request.Kind != m.requestKind {
			return fmt.Errorf("%w: request %s is a %s request", apperrors.ErrValidation, m.requestID, request.Kind)
		}
		if request.AccountID != m.accountID {
			return fmt.Errorf("%w: request %s targets account %s", apperrors.ErrValidation, m.requestID, request.AccountID)
		}
		if !request.Amount.Equal(m.amount) {
			return fmt.Errorf("%w: request %s was raised for %s", apperrors.ErrValidation, m.requestID, request.Amount)
		}

		account, err := uow.Accounts().FindAccountByIDForUpdate(ctx, m.accountID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return fmt.Errorf("%w: %s", ErrAccountNotFound, m.accountID)
			}
			return fmt.Errorf("failed to lock account %s: %w", m.accountID, err)
		}
		if account.IsBanned {
			return fmt.Errorf("%w: %s", ErrAccountBanned, m.accountID)
		}

		now := s.now().UTC()

		if m.kind == domain.Debit {
			if account.Balance.LessThan(m.amount) {
				return fmt.Errorf("%w: balance %s, requested %s", ErrInsufficientFunds, account.Balance, m.amount)
			}
			// Recomputed from the ledger every time so the check cannot
			// drift from the source of truth.
			from, to := accounting.UTCDayWindow(now)
			spentToday, err := uow.Ledger().SumDebitsInWindow(ctx, m.accountID, from, to)
			if err != nil {
				return fmt.Errorf("failed to sum today's withdrawals for %s: %w", m.accountID, err)
			}
			if spentToday.Add(m.amount).GreaterThan(account.DailyWithdrawLimit) {
				return fmt.Errorf("%w: %s spent today, limit %s", ErrDailyLimitExceeded, spentToday, account.DailyWithdrawLimit)
			}
		}

		balanceBefore := account.Balance
		balanceAfter, err := accounting.ApplySignedAmount(balanceBefore, m.kind, m.amount)
		if err != nil {
			return fmt.Errorf("internal error computing new balance: %w", err)
		}

		txn := domain.Transaction{
			TransactionID:  uuid.NewString(),
			IdempotencyKey: m.idempotencyKey,
			AccountID:      m.accountID,
			Kind:           m.kind,
			Amount:         m.amount,
			BalanceBefore:  balanceBefore,
			BalanceAfter:   balanceAfter,
			RequestID:      m.requestID,
			CreatedAt:      now,
			CreatedBy:      m.actorID,
		}
		txn.Signature = s.signer.Sign(txn)

		if err := uow.Ledger().AppendTransaction(ctx, txn); err != nil {
			return fmt.Errorf("failed to append ledger row: %w", err)
		}

		account.Balance = balanceAfter
		if m.kind == domain.Credit {
			account.TotalDeposited = account.TotalDeposited.Add(m.amount)
		} else {
			account.TotalWithdrawn = account.TotalWithdrawn.Add(m.amount)
		}
		account.LastUpdatedAt = now
		account.LastUpdatedBy = m.actorID
		if err := uow.Accounts().ApplyAccountSnapshot(ctx, *account); err != nil {
			return fmt.Errorf("failed to apply account snapshot: %w", err)
		}

		if err := uow.Requests().MarkRequestResolved(ctx, m.requestID, domain.RequestCompleted, m.actorID, now, m.notes); err != nil {
			return fmt.Errorf("failed to resolve request %s: %w", m.requestID, err)
		}

		if _, err := uow.Audit().AppendEntry(ctx, domain.AuditLogEntry{
			EntryID:    uuid.NewString(),
			ActorID:    m.actorID,
			Action:     m.action,
			TargetType: "request",
			TargetID:   m.requestID,
			Details: map[string]string{
				"account_id":      m.accountID,
				"amount":          m.amount.StringFixed(2),
				"balance_before":  balanceBefore.StringFixed(2),
				"balance_after":   balanceAfter.StringFixed(2),
				"idempotency_key": m.idempotencyKey,
			},
			CreatedAt: now,
		}); err != nil {
			return fmt.Errorf("failed to append audit entry: %w", err)
		}

		if err := uow.Idempotency().Reserve(ctx, domain.IdempotencyRecord{
			Key:           m.idempotencyKey,
			Fingerprint:   fp,
			TransactionID: txn.TransactionID,
			AccountID:     m.accountID,
			Kind:          m.kind,
			Amount:        m.amount,
			BalanceBefore: balanceBefore,
			BalanceAfter:  balanceAfter,
			RequestID:     m.requestID,
			CreatedAt:     now,
		}); err != nil {
			if errors.Is(err, apperrors.ErrDuplicate) {
				return fmt.Errorf("%w: key %s", ErrIdempotencyKeyConflict, m.idempotencyKey)
			}
			return fmt.Errorf("failed to reserve idempotency key: %w", err)
		}

		result = dto.ToTransactionResult(&txn)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if result.Replayed {
		logger.Info("Idempotent replay served from registry",
			slog.String("idempotency_key", m.idempotencyKey),
			slog.String("transaction_id", result.TransactionID))
	} else {
		logger.Info("Movement applied",
			slog.String("action", string(m.action)),
			slog.String("account_id", m.accountID),
			slog.String("transaction_id", result.TransactionID),
			slog.String("amount", m.amount.StringFixed(2)))
	}
	return result, nil
}

// RejectRequest resolves a pending request without moving money.
// Implements portssvc.LedgerSvcFacade
func (s *ledgerService) RejectRequest(ctx context.Context, requestID string, actorID string, reason string) (*dto.RejectionResult, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	var result *dto.RejectionResult
	err := s.txManager.WithUnit(ctx, func(ctx context.Context, uow portsrepo.UnitOfWork) error {
		request, err := uow.Requests().FindRequestByID(ctx, requestID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return fmt.Errorf("%w: request %s", apperrors.ErrNotFound, requestID)
			}
			return fmt.Errorf("failed to find request %s: %w", requestID, err)
		}
		if request.Status != domain.RequestPending {
			return fmt.Errorf("%w: request %s is %s", ErrRequestNotPending, requestID, request.Status)
		}

		now := s.now().UTC()
		if err := uow.Requests().MarkRequestResolved(ctx, requestID, domain.RequestRejected, actorID, now, reason); err != nil {
			return fmt.Errorf("failed to reject request %s: %w", requestID, err)
		}

		if _, err := uow.Audit().AppendEntry(ctx, domain.AuditLogEntry{
			EntryID:    uuid.NewString(),
			ActorID:    actorID,
			Action:     domain.ActionRejectRequest,
			TargetType: "request",
			TargetID:   requestID,
			Details: map[string]string{
				"account_id": request.AccountID,
				"reason":     reason,
			},
			CreatedAt: now,
		}); err != nil {
			return fmt.Errorf("failed to append audit entry: %w", err)
		}

		result = &dto.RejectionResult{
			RequestID:   requestID,
			Status:      string(domain.RequestRejected),
			Reason:      reason,
			ProcessedBy: actorID,
			ProcessedAt: now,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Request rejected", slog.String("request_id", requestID), slog.String("actor_id", actorID))
	return result, nil
}

// CalculateCommission returns round-half-up(amount * rate, 2dp).
// Pure function: no side effects, no dependency on account or ledger state.
func (s *ledgerService) CalculateCommission(amount, rate decimal.Decimal) decimal.Decimal {
	return accounting.CalculateCommission(amount, rate)
}

// VerifyTransaction recomputes a ledger row's signature for external audit
// tooling. The processor never verifies its own writes in normal operation.
func (s *ledgerService) VerifyTransaction(ctx context.Context, transactionID string) (*dto.VerificationResult, error) {
	var result *dto.VerificationResult
	err := s.txManager.WithUnit(ctx, func(ctx context.Context, uow portsrepo.UnitOfWork) error {
		txn, err := uow.Ledger().FindTransactionByID(ctx, transactionID)
		if err != nil {
			return fmt.Errorf("failed to find transaction %s: %w", transactionID, err)
		}
		result = &dto.VerificationResult{
			TransactionID: transactionID,
			Valid:         s.signer.Verify(*txn),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
