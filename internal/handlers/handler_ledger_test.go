package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/moneydesk/exchange-ledger/internal/apperrors"
	portssvc "github.com/moneydesk/exchange-ledger/internal/core/ports/services"
	"github.com/moneydesk/exchange-ledger/internal/core/services"
	"github.com/moneydesk/exchange-ledger/internal/dto"
	"github.com/moneydesk/exchange-ledger/internal/handlers"
	"github.com/moneydesk/exchange-ledger/internal/middleware"
)

// --- Mock LedgerService ---

type MockLedgerService struct {
	mock.Mock
}

func (m *MockLedgerService) ProcessDeposit(ctx context.Context, req dto.ProcessDepositRequest, actorID string) (*dto.TransactionResult, error) {
	args := m.Called(ctx, req, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.TransactionResult), args.Error(1)
}

func (m *MockLedgerService) ProcessWithdrawal(ctx context.Context, req dto.ProcessWithdrawalRequest, actorID string) (*dto.TransactionResult, error) {
	args := m.Called(ctx, req, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.TransactionResult), args.Error(1)
}

func (m *MockLedgerService) RejectRequest(ctx context.Context, requestID string, actorID string, reason string) (*dto.RejectionResult, error) {
	args := m.Called(ctx, requestID, actorID, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.RejectionResult), args.Error(1)
}

func (m *MockLedgerService) CalculateCommission(amount, rate decimal.Decimal) decimal.Decimal {
	args := m.Called(amount, rate)
	return args.Get(0).(decimal.Decimal)
}

func (m *MockLedgerService) VerifyTransaction(ctx context.Context, transactionID string) (*dto.VerificationResult, error) {
	args := m.Called(ctx, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.VerificationResult), args.Error(1)
}

// Ensure mock implements the interface
var _ portssvc.LedgerSvcFacade = (*MockLedgerService)(nil)

// --- Test Suite Setup ---

type LedgerHandlerTestSuite struct {
	suite.Suite
	router      *gin.Engine
	mockService *MockLedgerService
	jwtSecret   string
	actorID     string
}

func (suite *LedgerHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	dto.RegisterValidations()

	suite.jwtSecret = "test-secret-key-that-is-long-enough"
	suite.actorID = uuid.NewString()
	suite.mockService = new(MockLedgerService)

	suite.router = gin.New()
	suite.router.Use(middleware.AuthMiddleware(suite.jwtSecret))
	v1 := suite.router.Group("/api/v1")
	handlers.RegisterLedgerRoutes(v1, suite.mockService)
}

// generateTestToken creates a dummy JWT for testing.
func (suite *LedgerHandlerTestSuite) generateTestToken(actorID string) string {
	claims := jwt.RegisteredClaims{
		Issuer:    "ledger-test",
		Subject:   actorID,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(1 * time.Hour)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(suite.jwtSecret))
	if err != nil {
		suite.FailNow("Failed to sign test token", err.Error())
	}
	return signed
}

func (suite *LedgerHandlerTestSuite) doJSON(method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(suite.T(), json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+suite.generateTestToken(suite.actorID))
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

// --- Test Cases ---

func (suite *LedgerHandlerTestSuite) TestProcessDeposit_Success() {
	body := dto.ProcessDepositRequest{
		AccountID:      uuid.NewString(),
		Amount:         decimal.RequireFromString("100.50"),
		RequestID:      uuid.NewString(),
		IdempotencyKey: uuid.NewString(),
	}
	expected := &dto.TransactionResult{
		TransactionID: uuid.NewString(),
		AccountID:     body.AccountID,
		Kind:          "CREDIT",
		Amount:        body.Amount,
		BalanceBefore: decimal.Zero,
		BalanceAfter:  body.Amount,
		RequestID:     body.RequestID,
		CreatedAt:     time.Now().UTC(),
	}
	suite.mockService.On("ProcessDeposit", mock.Anything, mock.MatchedBy(func(r dto.ProcessDepositRequest) bool {
		return r.AccountID == body.AccountID && r.Amount.Equal(body.Amount)
	}), suite.actorID).Return(expected, nil).Once()

	w := suite.doJSON(http.MethodPost, "/api/v1/ledger/deposits", body)

	assert.Equal(suite.T(), http.StatusOK, w.Code)
	var got dto.TransactionResult
	require.NoError(suite.T(), json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(suite.T(), expected.TransactionID, got.TransactionID)
	assert.True(suite.T(), got.BalanceAfter.Equal(expected.BalanceAfter))
	suite.mockService.AssertExpectations(suite.T())
}

func (suite *LedgerHandlerTestSuite) TestProcessDeposit_Unauthorized() {
	body := dto.ProcessDepositRequest{
		AccountID:      uuid.NewString(),
		Amount:         decimal.RequireFromString("10"),
		RequestID:      uuid.NewString(),
		IdempotencyKey: uuid.NewString(),
	}
	var buf bytes.Buffer
	require.NoError(suite.T(), json.NewEncoder(&buf).Encode(body))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/ledger/deposits", &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	assert.Equal(suite.T(), http.StatusUnauthorized, w.Code)
	suite.mockService.AssertNotCalled(suite.T(), "ProcessDeposit")
}

func (suite *LedgerHandlerTestSuite) TestProcessDeposit_BindingRejectsNonPositiveAmount() {
	body := map[string]any{
		"accountID":      uuid.NewString(),
		"amount":         "-10",
		"requestID":      uuid.NewString(),
		"idempotencyKey": uuid.NewString(),
	}
	w := suite.doJSON(http.MethodPost, "/api/v1/ledger/deposits", body)
	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
	suite.mockService.AssertNotCalled(suite.T(), "ProcessDeposit")
}

func (suite *LedgerHandlerTestSuite) TestProcessWithdrawal_ErrorMapping() {
	cases := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"insufficient funds", services.ErrInsufficientFunds, http.StatusPaymentRequired},
		{"daily limit", services.ErrDailyLimitExceeded, http.StatusUnprocessableEntity},
		{"banned", services.ErrAccountBanned, http.StatusLocked},
		{"account missing", services.ErrAccountNotFound, http.StatusNotFound},
		{"request resolved", services.ErrRequestNotPending, http.StatusConflict},
		{"key conflict", services.ErrIdempotencyKeyConflict, http.StatusConflict},
		{"amount too large", services.ErrAmountTooLarge, http.StatusBadRequest},
		{"lock timeout", apperrors.ErrLockTimeout, http.StatusServiceUnavailable},
		{"internal", fmt.Errorf("pool exhausted"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		suite.Run(tc.name, func() {
			body := dto.ProcessWithdrawalRequest{
				AccountID:      uuid.NewString(),
				Amount:         decimal.RequireFromString("50"),
				RequestID:      uuid.NewString(),
				IdempotencyKey: uuid.NewString(),
			}
			suite.mockService.On("ProcessWithdrawal", mock.Anything, mock.Anything, suite.actorID).
				Return(nil, tc.err).Once()

			w := suite.doJSON(http.MethodPost, "/api/v1/ledger/withdrawals", body)
			assert.Equal(suite.T(), tc.wantStatus, w.Code)
		})
	}
	suite.mockService.AssertExpectations(suite.T())
}

func (suite *LedgerHandlerTestSuite) TestRejectRequest_Success() {
	requestID := uuid.NewString()
	expected := &dto.RejectionResult{
		RequestID:   requestID,
		Status:      "REJECTED",
		Reason:      "limits exceeded",
		ProcessedBy: suite.actorID,
		ProcessedAt: time.Now().UTC(),
	}
	suite.mockService.On("RejectRequest", mock.Anything, requestID, suite.actorID, "limits exceeded").
		Return(expected, nil).Once()

	w := suite.doJSON(http.MethodPost, "/api/v1/requests/"+requestID+"/reject", dto.RejectRequestBody{Reason: "limits exceeded"})

	assert.Equal(suite.T(), http.StatusOK, w.Code)
	var got dto.RejectionResult
	require.NoError(suite.T(), json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(suite.T(), "REJECTED", got.Status)
	suite.mockService.AssertExpectations(suite.T())
}

func (suite *LedgerHandlerTestSuite) TestRejectRequest_MissingReason() {
	w := suite.doJSON(http.MethodPost, "/api/v1/requests/"+uuid.NewString()+"/reject", map[string]any{})
	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
	suite.mockService.AssertNotCalled(suite.T(), "RejectRequest")
}

func (suite *LedgerHandlerTestSuite) TestGetCommission() {
	amount := decimal.RequireFromString("100.00")
	rate := decimal.RequireFromString("0.025")
	suite.mockService.On("CalculateCommission", amount, rate).
		Return(decimal.RequireFromString("2.50")).Once()

	w := suite.doJSON(http.MethodGet, "/api/v1/ledger/commission?amount=100.00&rate=0.025", nil)

	assert.Equal(suite.T(), http.StatusOK, w.Code)
	var got dto.CommissionResponse
	require.NoError(suite.T(), json.Unmarshal(w.Body.Bytes(), &got))
	assert.True(suite.T(), got.Commission.Equal(decimal.RequireFromString("2.50")))
	suite.mockService.AssertExpectations(suite.T())
}

func (suite *LedgerHandlerTestSuite) TestGetCommission_BadInput() {
	w := suite.doJSON(http.MethodGet, "/api/v1/ledger/commission?amount=abc&rate=0.1", nil)
	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)

	w = suite.doJSON(http.MethodGet, "/api/v1/ledger/commission?amount=100&rate=-0.1", nil)
	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
	suite.mockService.AssertNotCalled(suite.T(), "CalculateCommission")
}

func (suite *LedgerHandlerTestSuite) TestVerifyTransaction() {
	transactionID := uuid.NewString()
	suite.mockService.On("VerifyTransaction", mock.Anything, transactionID).
		Return(&dto.VerificationResult{TransactionID: transactionID, Valid: true}, nil).Once()

	w := suite.doJSON(http.MethodGet, "/api/v1/ledger/transactions/"+transactionID+"/verify", nil)

	assert.Equal(suite.T(), http.StatusOK, w.Code)
	var got dto.VerificationResult
	require.NoError(suite.T(), json.Unmarshal(w.Body.Bytes(), &got))
	assert.True(suite.T(), got.Valid)
	suite.mockService.AssertExpectations(suite.T())
}

func (suite *LedgerHandlerTestSuite) TestVerifyTransaction_NotFound() {
	transactionID := uuid.NewString()
	suite.mockService.On("VerifyTransaction", mock.Anything, transactionID).
		Return(nil, apperrors.ErrNotFound).Once()

	w := suite.doJSON(http.MethodGet, "/api/v1/ledger/transactions/"+transactionID+"/verify", nil)
	assert.Equal(suite.T(), http.StatusNotFound, w.Code)
}

func TestLedgerHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(LedgerHandlerTestSuite))
}
