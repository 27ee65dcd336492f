package http

import (
	"github.com/gin-gonic/gin"
	"github.com/layer-3/seedvault/ports"
	"github.com/layer-3/seedvault/service"
	"go.uber.org/zap"
)

// SetupRouter sets up the Gin router
func SetupRouter(
	identityService *service.IdentityService,
	tok ports.Tokenizer,
	limiter ports.RateLimiter,
	cfg GatewayConfig,
	logger *zap.Logger,
) *gin.Engine {
	if logger == nil {
		logger = zap.NewNop()
	}

	router := gin.New()
	router.Use(RequestID(), AccessLog(logger), Recover(logger))

	// Create handlers
	handlers := NewHandlers(identityService)

	api := router.Group("/api")
	api.Use(Gateway(tok, limiter, cfg, logger))
	{
		api.GET("/health", handlers.Health)
		api.GET("/nonce", handlers.Nonce)
		api.GET("/users/:nullifier", handlers.User)

		api.POST("/verify", handlers.Verify)
		api.POST("/complete-siwe", handlers.CompleteSIWE)
		api.POST("/contribute", handlers.Contribute)
		api.POST("/claim", handlers.Claim)
	}

	return router
}
