package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// RequestKind identifies the direction of money movement a request asks for.
type RequestKind string

const (
	DepositRequest    RequestKind = "DEPOSIT"
	WithdrawalRequest RequestKind = "WITHDRAWAL"
)

// RequestStatus indicates the state of a pending request.
type RequestStatus string

const (
	RequestPending   RequestStatus = "PENDING"
	RequestCompleted RequestStatus = "COMPLETED"
	RequestRejected  RequestStatus = "REJECTED"
)

// PendingRequest is an approved-or-rejected-exactly-once intake record.
// It is created by the intake layer and consumed by the ledger processor,
// transitioning PENDING -> COMPLETED or PENDING -> REJECTED. Resolving an
// already-resolved request is an error distinct from idempotency-key reuse.
type PendingRequest struct {
	RequestID   string          `json:"requestID"` // Primary Key (e.g., UUID)
	AccountID   string          `json:"accountID"` // FK -> Account.accountID
	Kind        RequestKind     `json:"kind"`
	Amount      decimal.Decimal `json:"amount"`
	Status      RequestStatus   `json:"status"`
	Notes       string          `json:"notes"`       // Free text from the intake layer
	ProcessedBy string          `json:"processedBy"` // Actor that resolved the request
	ProcessedAt *time.Time      `json:"processedAt,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
}
