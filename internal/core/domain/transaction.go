package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionKind indicates whether a ledger row credits or debits the account.
type TransactionKind string

const (
	Credit TransactionKind = "CREDIT"
	Debit  TransactionKind = "DEBIT"
)

// Transaction is one immutable row of the append-only ledger.
//
// IdempotencyKey is globally unique. Ordering a single account's rows by
// creation yields a chain where BalanceAfter of row n equals
// BalanceBefore of row n+1.
type Transaction struct {
	TransactionID  string          `json:"transactionID"`  // Primary Key (e.g., UUID)
	IdempotencyKey string          `json:"idempotencyKey"` // Caller-supplied dedup token (globally unique)
	AccountID      string          `json:"accountID"`      // FK -> Account.accountID (Not Null)
	Kind           TransactionKind `json:"kind"`           // CREDIT or DEBIT (Not Null)
	Amount         decimal.Decimal `json:"amount"`         // Positive value; precise decimal type
	BalanceBefore  decimal.Decimal `json:"balanceBefore"`  // Account balance before this row applied
	BalanceAfter   decimal.Decimal `json:"balanceAfter"`   // Account balance after this row applied
	Signature      string          `json:"signature"`      // Keyed tamper-detection code (hex)
	RequestID      string          `json:"requestID"`      // FK -> PendingRequest.requestID
	CreatedAt      time.Time       `json:"createdAt"`
	CreatedBy      string          `json:"createdBy"` // Actor that approved the movement
}
