package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionKind indicates whether a ledger row is a Credit or a Debit.
type TransactionKind string

const (
	Credit TransactionKind = "CREDIT"
	Debit  TransactionKind = "DEBIT"
)

// Transaction is the persisted form of one append-only ledger row.
// Rows are immutable once written; there is no update path.
type Transaction struct {
	TransactionID  string          `db:"transaction_id"`
	IdempotencyKey string          `db:"idempotency_key"` // UNIQUE across the ledger
	AccountID      string          `db:"account_id"`
	Kind           TransactionKind `db:"kind"`
	Amount         decimal.Decimal `db:"amount"`
	BalanceBefore  decimal.Decimal `db:"balance_before"`
	BalanceAfter   decimal.Decimal `db:"balance_after"`
	Signature      string          `db:"signature"`
	RequestID      string          `db:"request_id"`
	CreatedAt      time.Time       `db:"created_at"`
	CreatedBy      string          `db:"created_by"`
}
