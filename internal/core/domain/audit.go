package domain

import "time"

// AuditAction names the administrative action an audit entry records.
type AuditAction string

const (
	ActionApproveDeposit    AuditAction = "APPROVE_DEPOSIT"
	ActionApproveWithdrawal AuditAction = "APPROVE_WITHDRAWAL"
	ActionRejectRequest     AuditAction = "REJECT_REQUEST"
)

// AuditLogEntry is one append-only record of an administrative action.
// It exists independently of Transaction so rejections, which move no
// money, are still auditable.
type AuditLogEntry struct {
	EntryID    string            `json:"entryID"` // Primary Key (e.g., UUID)
	ActorID    string            `json:"actorID"`
	Action     AuditAction       `json:"action"`
	TargetType string            `json:"targetType"` // e.g. "request", "account"
	TargetID   string            `json:"targetID"`
	Details    map[string]string `json:"details"` // Structured context (amounts, balances, reasons)
	CreatedAt  time.Time         `json:"createdAt"`
}
