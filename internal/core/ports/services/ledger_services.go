package services

import (
	"context"

	"github.com/moneydesk/exchange-ledger/internal/core/domain"
	"github.com/moneydesk/exchange-ledger/internal/dto"
	"github.com/shopspring/decimal"
)

// LedgerProcessorSvc defines the balance-mutating operations of the core.
type LedgerProcessorSvc interface {
	// ProcessDeposit applies an approved deposit request to the account.
	ProcessDeposit(ctx context.Context, req dto.ProcessDepositRequest, actorID string) (*dto.TransactionResult, error)

	// ProcessWithdrawal applies an approved withdrawal request to the account.
	ProcessWithdrawal(ctx context.Context, req dto.ProcessWithdrawalRequest, actorID string) (*dto.TransactionResult, error)

	// RejectRequest resolves a pending request without moving money.
	RejectRequest(ctx context.Context, requestID string, actorID string, reason string) (*dto.RejectionResult, error)
}

// CommissionCalculatorSvc defines the pure commission computation.
type CommissionCalculatorSvc interface {
	// CalculateCommission returns round-half-up(amount * rate, 2dp).
	CalculateCommission(amount, rate decimal.Decimal) decimal.Decimal
}

// LedgerAuditSvc defines the external-auditor verification surface.
type LedgerAuditSvc interface {
	// VerifyTransaction recomputes a ledger row's signature and reports
	// whether the stored one still matches.
	VerifyTransaction(ctx context.Context, transactionID string) (*dto.VerificationResult, error)
}

// LedgerSvcFacade combines all ledger service interfaces.
type LedgerSvcFacade interface {
	LedgerProcessorSvc
	CommissionCalculatorSvc
	LedgerAuditSvc
}

// TransactionSignerSvc computes and verifies the keyed tamper-detection
// code over a transaction's canonical fields.
type TransactionSignerSvc interface {
	// Sign returns the hex-encoded code over the canonical ordering of
	// account id, kind, amount, balance before, balance after, created at.
	Sign(txn domain.Transaction) string

	// Verify recomputes the code and compares it in constant time against
	// the one stored on the transaction.
	Verify(txn domain.Transaction) bool
}
