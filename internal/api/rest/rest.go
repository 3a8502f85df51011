package rest

import (
	"github.com/gin-gonic/gin"

	"github.com/TenderBeastJr/KittyConnect-FF/internal/api/middleware"
)

// SetupRoutes configures all API routes
func SetupRoutes(router *gin.Engine, handler Handler, authCfg middleware.AuthConfig) {
	// Health check endpoint
	router.GET("/health", handler.HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Public read endpoints
		v1.GET("/tokens/:id", handler.GetToken)
		v1.GET("/owners/:address/tokens", handler.GetOwnerTokens)
		v1.GET("/partners", handler.GetPartners)
		v1.GET("/ledger", handler.GetLedgerInfo)

		// Caller-authenticated ledger operations. The JWT subject is the
		// caller address; the ledger enforces partner and owner checks.
		v1.POST("/tokens", middleware.Auth(authCfg), handler.MintToken)
		v1.POST("/tokens/:id/approve", middleware.Auth(authCfg), handler.ApproveTransfer)
		v1.POST("/tokens/:id/transfer", middleware.Auth(authCfg), handler.TransferToken)
		v1.POST("/tokens/:id/bridge", middleware.Auth(authCfg), handler.BridgeToken)

		// Admin endpoints
		admin := v1.Group("/admin", middleware.APIKeyAuth(authCfg))
		{
			admin.GET("/allowlist", handler.GetAllowlist)
			admin.POST("/allowlist/destinations", handler.SetDestinationAllowed)
			admin.POST("/allowlist/sources", handler.SetSourceAllowed)
			admin.POST("/allowlist/senders", handler.SetSenderAllowed)
			admin.POST("/gas-limit", handler.SetGasLimit)
			admin.POST("/partners", handler.AddPartner)
		}
	}
}
