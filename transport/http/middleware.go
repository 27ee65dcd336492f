package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/layer-3/seedvault/adapters/tokenizer"
	"github.com/layer-3/seedvault/core"
	"github.com/layer-3/seedvault/ports"
	"go.uber.org/zap"
)

// Identity headers injected for downstream handlers
const (
	HeaderUserID            = "X-User-Id"
	HeaderVerificationLevel = "X-Verification-Level"
	HeaderNullifierHash     = "X-Nullifier-Hash"
)

const identityKey = "identity"

// GatewayConfig holds the gateway policy
type GatewayConfig struct {
	LoginMethod string // Method of the public login route
	LoginPath   string // Path of the public login route
	FailOpen    bool   // Let writes through when the rate limiter backend errors
}

// DefaultGatewayConfig exempts POST /api/verify and fails closed
func DefaultGatewayConfig() GatewayConfig {
	return GatewayConfig{
		LoginMethod: http.MethodPost,
		LoginPath:   "/api/verify",
	}
}

// Gateway authenticates and rate limits every write request. Reads and the
// login route pass through. On success the verified identity is attached as
// request headers and as a gin context value.
func Gateway(tok ports.Tokenizer, limiter ports.RateLimiter, cfg GatewayConfig, logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("gateway")

	return func(c *gin.Context) {
		// Identity headers are only ever set by the gateway.
		c.Request.Header.Del(HeaderUserID)
		c.Request.Header.Del(HeaderVerificationLevel)
		c.Request.Header.Del(HeaderNullifierHash)

		if c.Request.Method == http.MethodGet ||
			(c.Request.Method == cfg.LoginMethod && c.Request.URL.Path == cfg.LoginPath) {
			c.Next()
			return
		}

		raw, ok := tokenizer.ExtractBearer(c.GetHeader("Authorization"))
		if !ok {
			abortWithError(c, core.ErrUnauthorized)
			return
		}

		session, ok := tok.Verify(raw)
		if !ok {
			abortWithError(c, core.ErrUnauthorized)
			return
		}

		allowed, err := limiter.Allow(c.Request.Context(), session.NullifierHash)
		if err != nil {
			logger.Error("rate limiter unavailable",
				zap.Bool("fail_open", cfg.FailOpen),
				zap.String("request_id", requestID(c)),
				zap.Error(err),
			)
			allowed = cfg.FailOpen
		}
		if !allowed {
			abortWithError(c, core.ErrRateLimited)
			return
		}

		c.Request.Header.Set(HeaderUserID, session.UserID)
		c.Request.Header.Set(HeaderVerificationLevel, string(session.Level))
		c.Request.Header.Set(HeaderNullifierHash, session.NullifierHash)
		c.Set(identityKey, session.Identity)

		c.Next()
	}
}

// identityFromRequest reads the identity injected by the gateway. Handlers
// treat a missing identity as unauthenticated.
func identityFromRequest(c *gin.Context) (core.Identity, bool) {
	identity := core.Identity{
		UserID:        c.GetHeader(HeaderUserID),
		NullifierHash: c.GetHeader(HeaderNullifierHash),
		Level:         core.VerificationLevel(c.GetHeader(HeaderVerificationLevel)),
	}
	if identity.UserID == "" || identity.NullifierHash == "" || !identity.Level.Valid() {
		return core.Identity{}, false
	}
	return identity, true
}
