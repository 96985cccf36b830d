package models

import (
	"github.com/shopspring/decimal"
)

// Account represents the persisted form of a customer account.
type Account struct {
	AccountID          string          `db:"account_id"`
	Balance            decimal.Decimal `db:"balance"`
	TotalDeposited     decimal.Decimal `db:"total_deposited"`
	TotalWithdrawn     decimal.Decimal `db:"total_withdrawn"`
	DailyWithdrawLimit decimal.Decimal `db:"daily_withdraw_limit"`
	IsBanned           bool            `db:"is_banned"`
	AuditFields                        // Embed common audit fields
}
