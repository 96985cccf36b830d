package mapping

import (
	"github.com/moneydesk/exchange-ledger/internal/core/domain"
	"github.com/moneydesk/exchange-ledger/internal/models"
)

// ToModelAccount converts a domain Account to its persisted form.
func ToModelAccount(d domain.Account) models.Account {
	return models.Account{
		AccountID:          d.AccountID,
		Balance:            d.Balance,
		TotalDeposited:     d.TotalDeposited,
		TotalWithdrawn:     d.TotalWithdrawn,
		DailyWithdrawLimit: d.DailyWithdrawLimit,
		IsBanned:           d.IsBanned,
		AuditFields:        ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainAccount converts a persisted Account to its domain form.
func ToDomainAccount(m models.Account) domain.Account {
	return domain.Account{
		AccountID:          m.AccountID,
		Balance:            m.Balance,
		TotalDeposited:     m.TotalDeposited,
		TotalWithdrawn:     m.TotalWithdrawn,
		DailyWithdrawLimit: m.DailyWithdrawLimit,
		IsBanned:           m.IsBanned,
		AuditFields:        ToDomainAuditFields(m.AuditFields),
	}
}
