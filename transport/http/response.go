package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/layer-3/seedvault/core"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func mapError(err error) (int, string, string) {
	switch {
	case errors.Is(err, core.ErrUnauthorized):
		return http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized"
	case errors.Is(err, core.ErrRateLimited):
		return http.StatusTooManyRequests, "RATE_LIMITED", "Too many requests"
	case errors.Is(err, core.ErrInvalidInput):
		return http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request"
	case errors.Is(err, core.ErrVerificationFailed):
		return http.StatusBadRequest, "VERIFICATION_FAILED", "Identity verification failed"
	case errors.Is(err, core.ErrInvalidNonce):
		return http.StatusBadRequest, "INVALID_NONCE", "Invalid or expired nonce"
	case errors.Is(err, core.ErrInvalidMessage):
		return http.StatusBadRequest, "INVALID_MESSAGE", "Invalid SIWE message"
	case errors.Is(err, core.ErrInvalidSignature):
		return http.StatusBadRequest, "INVALID_SIGNATURE", "Invalid signature"
	case errors.Is(err, core.ErrUpstream):
		return http.StatusBadGateway, "UPSTREAM_UNAVAILABLE", "Verification service unavailable"
	case errors.Is(err, core.ErrNotFound):
		return http.StatusNotFound, "NOT_FOUND", "Resource not found"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error"
	}
}

func abortWithError(c *gin.Context, err error) {
	status, code, message := mapError(err)
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, errorResponse{Error: message, Code: code})
}
