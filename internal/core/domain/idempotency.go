package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// IdempotencyRecord remembers that a caller-supplied key has already been
// applied, and what it produced.
//
// Fingerprint is a digest of the original call's arguments. A retry whose
// fingerprint matches replays the stored outcome; any other reuse of the
// key is a genuine conflict.
type IdempotencyRecord struct {
	Key           string          `json:"key"` // Primary Key
	Fingerprint   string          `json:"fingerprint"`
	TransactionID string          `json:"transactionID"` // Ledger row produced by the original call
	AccountID     string          `json:"accountID"`
	Kind          TransactionKind `json:"kind"`
	Amount        decimal.Decimal `json:"amount"`
	BalanceBefore decimal.Decimal `json:"balanceBefore"`
	BalanceAfter  decimal.Decimal `json:"balanceAfter"`
	RequestID     string          `json:"requestID"`
	CreatedAt     time.Time       `json:"createdAt"`
}
