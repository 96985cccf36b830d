package repositories

import (
	"context"
	"time"

	"github.com/moneydesk/exchange-ledger/internal/core/domain"
)

// RequestReader defines read operations for pending requests.
type RequestReader interface {
	// FindRequestByID retrieves a request by its unique identifier.
	FindRequestByID(ctx context.Context, requestID string) (*domain.PendingRequest, error)
}

// RequestWriter defines write operations for pending requests.
type RequestWriter interface {
	// SaveRequest persists a new pending request. The intake layer owns
	// creation; this exists for provisioning and tests.
	SaveRequest(ctx context.Context, request domain.PendingRequest) error

	// MarkRequestResolved transitions a PENDING request to COMPLETED or
	// REJECTED. Returns apperrors.ErrConflict if the request is no longer
	// pending.
	MarkRequestResolved(ctx context.Context, requestID string, status domain.RequestStatus, processedBy string, processedAt time.Time, notes string) error
}

// RequestRepositoryFacade combines all request-related repository interfaces.
type RequestRepositoryFacade interface {
	RequestReader
	RequestWriter
}
