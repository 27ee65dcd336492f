package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/layer-3/seedvault/core"
	"github.com/layer-3/seedvault/service"
	"github.com/shopspring/decimal"
)

// Handlers contains HTTP handlers for the API
type Handlers struct {
	identityService *service.IdentityService
}

// NewHandlers creates new handlers
func NewHandlers(identityService *service.IdentityService) *Handlers {
	return &Handlers{
		identityService: identityService,
	}
}

// Verify exchanges a World ID proof for a session token
func (h *Handlers) Verify(c *gin.Context) {
	var req struct {
		Proof             string `json:"proof" binding:"required"`
		MerkleRoot        string `json:"merkle_root" binding:"required"`
		NullifierHash     string `json:"nullifier_hash" binding:"required"`
		VerificationLevel string `json:"verification_level" binding:"required"`
		Action            string `json:"action"`
		Signal            string `json:"signal"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, core.ErrInvalidInput)
		return
	}

	res, err := h.identityService.Login(c.Request.Context(), core.Proof{
		Proof:         req.Proof,
		MerkleRoot:    req.MerkleRoot,
		NullifierHash: req.NullifierHash,
		Level:         core.VerificationLevel(req.VerificationLevel),
		Action:        req.Action,
		Signal:        req.Signal,
	})
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":              res.Token,
		"token_type":         "Bearer",
		"user_id":            res.User.ID,
		"verification_level": res.User.Level,
	})
}

// Nonce issues a nonce for a SIWE message
func (h *Handlers) Nonce(c *gin.Context) {
	nonce, err := h.identityService.CreateNonce(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"nonce": nonce})
}

// CompleteSIWE links the signing wallet to the caller
func (h *Handlers) CompleteSIWE(c *gin.Context) {
	identity, ok := identityFromRequest(c)
	if !ok {
		abortWithError(c, core.ErrUnauthorized)
		return
	}

	var req struct {
		Payload struct {
			Message   string `json:"message" binding:"required"`
			Signature string `json:"signature" binding:"required"`
			Address   string `json:"address" binding:"required"`
		} `json:"payload"`
		Nonce string `json:"nonce" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, core.ErrInvalidInput)
		return
	}

	user, err := h.identityService.CompleteSIWE(c.Request.Context(), identity, service.WalletAuth{
		Message:   req.Payload.Message,
		Signature: req.Payload.Signature,
		Address:   req.Payload.Address,
		Nonce:     req.Nonce,
	})
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"isValid": true,
		"address": user.WalletAddress,
	})
}

// Contribute accepts a knowledge node for a bot
func (h *Handlers) Contribute(c *gin.Context) {
	identity, ok := identityFromRequest(c)
	if !ok {
		abortWithError(c, core.ErrUnauthorized)
		return
	}

	var req struct {
		BotID   string `json:"bot_id" binding:"required"`
		Content string `json:"content" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, core.ErrInvalidInput)
		return
	}

	id, err := h.identityService.Contribute(c.Request.Context(), identity, req.BotID, req.Content)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": id})
}

// Claim queues a reward payout
func (h *Handlers) Claim(c *gin.Context) {
	identity, ok := identityFromRequest(c)
	if !ok {
		abortWithError(c, core.ErrUnauthorized)
		return
	}

	var req struct {
		Amount string `json:"amount" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, core.ErrInvalidInput)
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		abortWithError(c, core.ErrInvalidInput)
		return
	}

	id, err := h.identityService.Claim(c.Request.Context(), identity, amount)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"id":     id,
		"amount": amount.String(),
	})
}

// User returns the public view of a verified user
func (h *Handlers) User(c *gin.Context) {
	user, err := h.identityService.Lookup(c.Request.Context(), c.Param("nullifier"))
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":                 user.ID,
		"verification_level": user.Level,
		"wallet_linked":      user.WalletAddress != "",
	})
}

// Health reports liveness
func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
