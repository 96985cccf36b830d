package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PendingRequest is the persisted form of an intake request.
type PendingRequest struct {
	RequestID   string          `db:"request_id"`
	AccountID   string          `db:"account_id"`
	Kind        string          `db:"kind"`
	Amount      decimal.Decimal `db:"amount"`
	Status      string          `db:"status"`
	Notes       string          `db:"notes"`
	ProcessedBy string          `db:"processed_by"`
	ProcessedAt *time.Time      `db:"processed_at"`
	CreatedAt   time.Time       `db:"created_at"`
}
