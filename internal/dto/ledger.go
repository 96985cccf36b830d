package dto

import (
	"time"

	"github.com/moneydesk/exchange-ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// ProcessDepositRequest carries an approved deposit into the processor.
// The idempotency key is generated once per human-initiated action by the
// intake layer; retries reuse it verbatim.
type ProcessDepositRequest struct {
	AccountID      string          `json:"accountID" binding:"required"`
	Amount         decimal.Decimal `json:"amount" binding:"required,positivedecimal"`
	RequestID      string          `json:"requestID" binding:"required"`
	IdempotencyKey string          `json:"idempotencyKey" binding:"required"`
	Notes          string          `json:"notes"`
}

// ProcessWithdrawalRequest carries an approved withdrawal into the processor.
type ProcessWithdrawalRequest struct {
	AccountID      string          `json:"accountID" binding:"required"`
	Amount         decimal.Decimal `json:"amount" binding:"required,positivedecimal"`
	RequestID      string          `json:"requestID" binding:"required"`
	IdempotencyKey string          `json:"idempotencyKey" binding:"required"`
	Notes          string          `json:"notes"`
}

// RejectRequestBody carries the rejection reason.
type RejectRequestBody struct {
	Reason string `json:"reason" binding:"required"`
}

// TransactionResult is returned to the intake layer after a successful
// (or safely replayed) deposit or withdrawal.
type TransactionResult struct {
	TransactionID string          `json:"transactionID"`
	AccountID     string          `json:"accountID"`
	Kind          string          `json:"kind"` // CREDIT or DEBIT
	Amount        decimal.Decimal `json:"amount"`
	BalanceBefore decimal.Decimal `json:"balanceBefore"`
	BalanceAfter  decimal.Decimal `json:"balanceAfter"`
	RequestID     string          `json:"requestID"`
	CreatedAt     time.Time       `json:"createdAt"`
	Replayed      bool            `json:"replayed"` // True when served from the idempotency registry
}

// RejectionResult is returned after a request is rejected.
type RejectionResult struct {
	RequestID   string    `json:"requestID"`
	Status      string    `json:"status"`
	Reason      string    `json:"reason"`
	ProcessedBy string    `json:"processedBy"`
	ProcessedAt time.Time `json:"processedAt"`
}

// VerificationResult reports a tamper check on a single ledger row.
type VerificationResult struct {
	TransactionID string `json:"transactionID"`
	Valid         bool   `json:"valid"`
}

// CommissionResponse is the quote returned for a commission calculation.
type CommissionResponse struct {
	Amount     decimal.Decimal `json:"amount"`
	Rate       decimal.Decimal `json:"rate"`
	Commission decimal.Decimal `json:"commission"`
}

// ToTransactionResult converts a ledger row to the result DTO.
func ToTransactionResult(txn *domain.Transaction) *TransactionResult {
	return &TransactionResult{
		TransactionID: txn.TransactionID,
		AccountID:     txn.AccountID,
		Kind:          string(txn.Kind),
		Amount:        txn.Amount,
		BalanceBefore: txn.BalanceBefore,
		BalanceAfter:  txn.BalanceAfter,
		RequestID:     txn.RequestID,
		CreatedAt:     txn.CreatedAt,
	}
}

// ToReplayedResult rebuilds the original result from the idempotency registry.
func ToReplayedResult(rec *domain.IdempotencyRecord) *TransactionResult {
	return &TransactionResult{
		TransactionID: rec.TransactionID,
		AccountID:     rec.AccountID,
		Kind:          string(rec.Kind),
		Amount:        rec.Amount,
		BalanceBefore: rec.BalanceBefore,
		BalanceAfter:  rec.BalanceAfter,
		RequestID:     rec.RequestID,
		CreatedAt:     rec.CreatedAt,
		Replayed:      true,
	}
}
