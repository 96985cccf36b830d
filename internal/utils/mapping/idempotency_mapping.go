package mapping

import (
	"github.com/moneydesk/exchange-ledger/internal/core/domain"
	"github.com/moneydesk/exchange-ledger/internal/models"
)

// ToModelIdempotencyRecord converts a domain record to its persisted form.
func ToModelIdempotencyRecord(d domain.IdempotencyRecord) models.IdempotencyRecord {
	return models.IdempotencyRecord{
		Key:           d.Key,
		Fingerprint:   d.Fingerprint,
		TransactionID: d.TransactionID,
		AccountID:     d.AccountID,
		Kind:          models.TransactionKind(d.Kind),
		Amount:        d.Amount,
		BalanceBefore: d.BalanceBefore,
		BalanceAfter:  d.BalanceAfter,
		RequestID:     d.RequestID,
		CreatedAt:     d.CreatedAt,
	}
}

// ToDomainIdempotencyRecord converts a persisted record to its domain form.
func ToDomainIdempotencyRecord(m models.IdempotencyRecord) domain.IdempotencyRecord {
	return domain.IdempotencyRecord{
		Key:           m.Key,
		Fingerprint:   m.Fingerprint,
		TransactionID: m.TransactionID,
		AccountID:     m.AccountID,
		Kind:          domain.TransactionKind(m.Kind),
		Amount:        m.Amount,
		BalanceBefore: m.BalanceBefore,
		BalanceAfter:  m.BalanceAfter,
		RequestID:     m.RequestID,
		CreatedAt:     m.CreatedAt,
	}
}
