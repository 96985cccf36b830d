package domain

import (
	"github.com/shopspring/decimal"
)

// Account represents a customer money account within the core domain.
// This is the primary representation used by services.
//
// Balance is never negative: every transition written by the ledger
// processor satisfies balanceAfter = balanceBefore ± amount, and the
// row is only ever mutated while the account's exclusive lock is held.
type Account struct {
	AccountID          string          `json:"accountID"`          // Primary Key (e.g., UUID)
	Balance            decimal.Decimal `json:"balance"`            // Current balance, 2 fractional digits
	TotalDeposited     decimal.Decimal `json:"totalDeposited"`     // Lifetime sum of credited amounts
	TotalWithdrawn     decimal.Decimal `json:"totalWithdrawn"`     // Lifetime sum of debited amounts
	DailyWithdrawLimit decimal.Decimal `json:"dailyWithdrawLimit"` // Ceiling on debits per UTC calendar day
	IsBanned           bool            `json:"isBanned"`           // Banned accounts accept no operations
	AuditFields                        // Embed CreatedAt, CreatedBy, etc.
}
