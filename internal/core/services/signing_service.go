package services

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/moneydesk/exchange-ledger/internal/core/domain"
	portssvc "github.com/moneydesk/exchange-ledger/internal/core/ports/services"
)

// signingService computes the keyed tamper-detection code stored on every
// ledger row. Signing is deterministic: the same fields always produce the
// same code, so external auditors can recompute it at any later time.
type signingService struct {
	key []byte
}

// NewSigningService creates a signer backed by the given secret key.
func NewSigningService(key []byte) portssvc.TransactionSignerSvc {
	return &signingService{key: key}
}

// Ensure signingService implements the portssvc.TransactionSignerSvc interface
var _ portssvc.TransactionSignerSvc = (*signingService)(nil)

// canonicalPayload serializes the signed fields in their fixed order.
// Amounts are rendered with exactly two fractional digits and the
// timestamp in RFC3339Nano UTC, so the payload does not depend on how the
// values happened to be stored.
func (s *signingService) canonicalPayload(txn domain.Transaction) string {
	return strings.Join([]string{
		txn.AccountID,
		string(txn.Kind),
		txn.Amount.StringFixed(2),
		txn.BalanceBefore.StringFixed(2),
		txn.BalanceAfter.StringFixed(2),
		txn.CreatedAt.UTC().Format(time.RFC3339Nano),
	}, "|")
}

// Sign returns the hex-encoded HMAC-SHA256 over the canonical payload.
func (s *signingService) Sign(txn domain.Transaction) string {
	mac := hmac.New(sha256.New, s.key)
	mac.Write([]byte(s.canonicalPayload(txn)))
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify recomputes the code and compares it in constant time.
func (s *signingService) Verify(txn domain.Transaction) bool {
	expected, err := hex.DecodeString(s.Sign(txn))
	if err != nil {
		return false
	}
	stored, err := hex.DecodeString(txn.Signature)
	if err != nil {
		return false
	}
	return hmac.Equal(expected, stored)
}
