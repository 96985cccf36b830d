package mapping

import (
	"github.com/moneydesk/exchange-ledger/internal/core/domain"
	"github.com/moneydesk/exchange-ledger/internal/models"
)

// ToModelRequest converts a domain PendingRequest to its persisted form.
func ToModelRequest(d domain.PendingRequest) models.PendingRequest {
	return models.PendingRequest{
		RequestID:   d.RequestID,
		AccountID:   d.AccountID,
		Kind:        string(d.Kind),
		Amount:      d.Amount,
		Status:      string(d.Status),
		Notes:       d.Notes,
		ProcessedBy: d.ProcessedBy,
		ProcessedAt: d.ProcessedAt,
		CreatedAt:   d.CreatedAt,
	}
}

// ToDomainRequest converts a persisted PendingRequest to its domain form.
func ToDomainRequest(m models.PendingRequest) domain.PendingRequest {
	return domain.PendingRequest{
		RequestID:   m.RequestID,
		AccountID:   m.AccountID,
		Kind:        domain.RequestKind(m.Kind),
		Amount:      m.Amount,
		Status:      domain.RequestStatus(m.Status),
		Notes:       m.Notes,
		ProcessedBy: m.ProcessedBy,
		ProcessedAt: m.ProcessedAt,
		CreatedAt:   m.CreatedAt,
	}
}
