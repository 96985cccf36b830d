package accounting

import (
	"fmt"
	"time"

	"github.com/moneydesk/exchange-ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CalculateCommission returns the commission charged on amount at rate,
// rounded half-up to two decimal places. Pure: no account or ledger state.
func CalculateCommission(amount, rate decimal.Decimal) decimal.Decimal {
	// shopspring's Round is half-away-from-zero, which is half-up for the
	// non-negative values a commission deals in.
	return amount.Mul(rate).Round(2)
}

// ApplySignedAmount computes the balance after a ledger row is applied.
// CREDIT adds to the balance, DEBIT subtracts from it.
func ApplySignedAmount(balance decimal.Decimal, kind domain.TransactionKind, amount decimal.Decimal) (decimal.Decimal, error) {
	switch kind {
	case domain.Credit:
		return balance.Add(amount), nil
	case domain.Debit:
		return balance.Sub(amount), nil
	default:
		return decimal.Zero, fmt.Errorf("unknown transaction kind '%s'", kind)
	}
}

// UTCDayWindow returns the half-open [start, end) window of the UTC
// calendar day containing t. The daily withdrawal limit is always judged
// against this fixed boundary regardless of the caller's locale.
func UTCDayWindow(t time.Time) (time.Time, time.Time) {
	u := t.UTC()
	start := time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
	return start, start.Add(24 * time.Hour)
}

// IsMonetary reports whether d is representable with at most two
// fractional digits, the precision the ledger stores.
func IsMonetary(d decimal.Decimal) bool {
	return d.Equal(d.Round(2))
}
