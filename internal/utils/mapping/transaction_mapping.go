package mapping

import (
	"github.com/moneydesk/exchange-ledger/internal/core/domain"
	"github.com/moneydesk/exchange-ledger/internal/models"
)

// ToModelTransaction converts a domain ledger row to its persisted form.
func ToModelTransaction(d domain.Transaction) models.Transaction {
	return models.Transaction{
		TransactionID:  d.TransactionID,
		IdempotencyKey: d.IdempotencyKey,
		AccountID:      d.AccountID,
		Kind:           models.TransactionKind(d.Kind),
		Amount:         d.Amount,
		BalanceBefore:  d.BalanceBefore,
		BalanceAfter:   d.BalanceAfter,
		Signature:      d.Signature,
		RequestID:      d.RequestID,
		CreatedAt:      d.CreatedAt,
		CreatedBy:      d.CreatedBy,
	}
}

// ToDomainTransaction converts a persisted ledger row to its domain form.
func ToDomainTransaction(m models.Transaction) domain.Transaction {
	return domain.Transaction{
		TransactionID:  m.TransactionID,
		IdempotencyKey: m.IdempotencyKey,
		AccountID:      m.AccountID,
		Kind:           domain.TransactionKind(m.Kind),
		Amount:         m.Amount,
		BalanceBefore:  m.BalanceBefore,
		BalanceAfter:   m.BalanceAfter,
		Signature:      m.Signature,
		RequestID:      m.RequestID,
		CreatedAt:      m.CreatedAt,
		CreatedBy:      m.CreatedBy,
	}
}
