package repositories

import (
	"context"
	"time"

	"github.com/moneydesk/exchange-ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// LedgerReader defines read operations over the append-only ledger.
type LedgerReader interface {
	// FindTransactionByID retrieves a single ledger row.
	FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error)

	// SumDebitsInWindow returns the sum of DEBIT amounts created for the
	// account within [from, to). The daily-limit check recomputes from the
	// ledger on every call so it cannot drift from the source of truth.
	SumDebitsInWindow(ctx context.Context, accountID string, from, to time.Time) (decimal.Decimal, error)
}

// LedgerWriter defines the single write operation the ledger exposes.
type LedgerWriter interface {
	// AppendTransaction appends one immutable row. The idempotency key is
	// unique across the whole ledger; a duplicate surfaces
	// apperrors.ErrDuplicate.
	AppendTransaction(ctx context.Context, txn domain.Transaction) error
}

// LedgerRepositoryFacade combines ledger read and append interfaces.
type LedgerRepositoryFacade interface {
	LedgerReader
	LedgerWriter
}
