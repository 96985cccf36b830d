package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// IdempotencyRecord is the persisted form of a reserved dedup key.
type IdempotencyRecord struct {
	Key           string          `db:"idempotency_key"`
	Fingerprint   string          `db:"fingerprint"`
	TransactionID string          `db:"transaction_id"`
	AccountID     string          `db:"account_id"`
	Kind          TransactionKind `db:"kind"`
	Amount        decimal.Decimal `db:"amount"`
	BalanceBefore decimal.Decimal `db:"balance_before"`
	BalanceAfter  decimal.Decimal `db:"balance_after"`
	RequestID     string          `db:"request_id"`
	CreatedAt     time.Time       `db:"created_at"`
}
