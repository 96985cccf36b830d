package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/moneydesk/exchange-ledger/internal/apperrors"
	portssvc "github.com/moneydesk/exchange-ledger/internal/core/ports/services"
	"github.com/moneydesk/exchange-ledger/internal/core/services"
	"github.com/moneydesk/exchange-ledger/internal/dto"
	"github.com/moneydesk/exchange-ledger/internal/middleware"
)

// ledgerHandler handles HTTP requests for the ledger processor. It only
// binds DTOs, resolves the acting administrator and translates typed
// errors; all business rules live in the service.
type ledgerHandler struct {
	ledgerService portssvc.LedgerSvcFacade
}

// newLedgerHandler creates a new ledgerHandler.
func newLedgerHandler(ledgerService portssvc.LedgerSvcFacade) *ledgerHandler {
	return &ledgerHandler{ledgerService: ledgerService}
}

// statusForError maps the processor's typed errors to HTTP status codes.
func statusForError(err error) int {
	switch {
	case errors.Is(err, services.ErrInvalidAmount),
		errors.Is(err, services.ErrAmountTooLarge),
		errors.Is(err, apperrors.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrInsufficientFunds):
		return http.StatusPaymentRequired
	case errors.Is(err, services.ErrDailyLimitExceeded):
		return http.StatusUnprocessableEntity
	case errors.Is(err, services.ErrAccountBanned):
		return http.StatusLocked
	case errors.Is(err, services.ErrAccountNotFound),
		errors.Is(err, apperrors.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrRequestNotPending),
		errors.Is(err, services.ErrIdempotencyKeyConflict),
		errors.Is(err, apperrors.ErrConflict),
		errors.Is(err, apperrors.ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, apperrors.ErrLockTimeout):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, logger *slog.Logger, err error, operation string) {
	status := statusForError(err)
	if status == http.StatusInternalServerError {
		logger.Error("Unexpected error in "+operation, slog.String("error", err.Error()))
		c.JSON(status, gin.H{"error": "Internal server error"})
		return
	}
	logger.Warn("Rejected "+operation, slog.String("error", err.Error()), slog.Int("status", status))
	c.JSON(status, gin.H{"error": err.Error()})
}

// processDeposit godoc
// @Summary Apply an approved deposit to an account
// @Tags ledger
// @Accept  json
// @Produce json
// @Param   deposit body dto.ProcessDepositRequest true "Approved deposit"
// @Success 200 {object} dto.TransactionResult
// @Router /ledger/deposits [post]
func (h *ledgerHandler) processDeposit(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.ProcessDepositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind deposit request", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	actorID, ok := middleware.GetActorIDFromContext(c.Request.Context())
	if !ok {
		logger.Error("Actor ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	result, err := h.ledgerService.ProcessDeposit(c.Request.Context(), req, actorID)
	if err != nil {
		respondError(c, logger, err, "deposit")
		return
	}
	c.JSON(http.StatusOK, result)
}

// processWithdrawal godoc
// @Summary Apply an approved withdrawal to an account
// @Tags ledger
// @Accept  json
// @Produce json
// @Param   withdrawal body dto.ProcessWithdrawalRequest true "Approved withdrawal"
// @Success 200 {object} dto.TransactionResult
// @Router /ledger/withdrawals [post]
func (h *ledgerHandler) processWithdrawal(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.ProcessWithdrawalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind withdrawal request", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	actorID, ok := middleware.GetActorIDFromContext(c.Request.Context())
	if !ok {
		logger.Error("Actor ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	result, err := h.ledgerService.ProcessWithdrawal(c.Request.Context(), req, actorID)
	if err != nil {
		respondError(c, logger, err, "withdrawal")
		return
	}
	c.JSON(http.StatusOK, result)
}

// rejectRequest godoc
// @Summary Reject a pending deposit or withdrawal request
// @Tags ledger
// @Accept  json
// @Produce json
// @Param   requestID path string true "Request ID"
// @Param   body body dto.RejectRequestBody true "Rejection reason"
// @Success 200 {object} dto.RejectionResult
// @Router /requests/{requestID}/reject [post]
func (h *ledgerHandler) rejectRequest(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	requestID := c.Param("requestID")

	var body dto.RejectRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		logger.Warn("Failed to bind rejection body", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	actorID, ok := middleware.GetActorIDFromContext(c.Request.Context())
	if !ok {
		logger.Error("Actor ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	result, err := h.ledgerService.RejectRequest(c.Request.Context(), requestID, actorID, body.Reason)
	if err != nil {
		respondError(c, logger, err, "rejection")
		return
	}
	c.JSON(http.StatusOK, result)
}

// getCommission godoc
// @Summary Quote the commission for an amount at a rate
// @Tags ledger
// @Produce json
// @Param   amount query string true "Amount"
// @Param   rate query string true "Rate, e.g. 0.025"
// @Success 200 {object} dto.CommissionResponse
// @Router /ledger/commission [get]
func (h *ledgerHandler) getCommission(c *gin.Context) {
	amount, err := decimal.NewFromString(c.Query("amount"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid amount"})
		return
	}
	rate, err := decimal.NewFromString(c.Query("rate"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid rate"})
		return
	}
	if amount.IsNegative() || rate.IsNegative() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Amount and rate must not be negative"})
		return
	}

	c.JSON(http.StatusOK, dto.CommissionResponse{
		Amount:     amount,
		Rate:       rate,
		Commission: h.ledgerService.CalculateCommission(amount, rate),
	})
}

// verifyTransaction godoc
// @Summary Verify the tamper-detection signature of a ledger row
// @Tags ledger
// @Produce json
// @Param   transactionID path string true "Transaction ID"
// @Success 200 {object} dto.VerificationResult
// @Router /ledger/transactions/{transactionID}/verify [get]
func (h *ledgerHandler) verifyTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	transactionID := c.Param("transactionID")

	result, err := h.ledgerService.VerifyTransaction(c.Request.Context(), transactionID)
	if err != nil {
		respondError(c, logger, err, "verification")
		return
	}
	c.JSON(http.StatusOK, result)
}
