package handlers

import (
	"github.com/gin-gonic/gin"

	portssvc "github.com/moneydesk/exchange-ledger/internal/core/ports/services"
	"github.com/moneydesk/exchange-ledger/internal/middleware"
	"github.com/moneydesk/exchange-ledger/internal/platform/config"
)

// RegisterRoutes sets up all application routes, injecting dependencies using interfaces
func RegisterRoutes(r *gin.Engine, cfg *config.Config, ledgerService portssvc.LedgerSvcFacade) {
	// Add health check route
	r.GET("/health", func(c *gin.Context) {
		c.String(200, "OK")
	})

	// Apply AuthMiddleware to the entire v1 group; every ledger operation
	// requires an authenticated actor.
	v1 := r.Group("/api/v1", middleware.AuthMiddleware(cfg.JWTSecret))
	RegisterLedgerRoutes(v1, ledgerService)
}

// RegisterLedgerRoutes attaches the ledger endpoints to the given group.
// Exported so handler tests can mount them on a bare router.
func RegisterLedgerRoutes(rg *gin.RouterGroup, ledgerService portssvc.LedgerSvcFacade) {
	h := newLedgerHandler(ledgerService)

	ledger := rg.Group("/ledger")
	ledger.POST("/deposits", h.processDeposit)
	ledger.POST("/withdrawals", h.processWithdrawal)
	ledger.GET("/commission", h.getCommission)
	ledger.GET("/transactions/:transactionID/verify", h.verifyTransaction)

	rg.POST("/requests/:requestID/reject", h.rejectRequest)
}
