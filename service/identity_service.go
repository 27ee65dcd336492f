package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/layer-3/seedvault/core"
	"github.com/layer-3/seedvault/ports"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// IdentityService handles the flows around the gateway: proof login, wallet
// linking and the write endpoints that consume an injected identity
type IdentityService struct {
	tokenizer ports.Tokenizer
	nonces    ports.NonceStore
	directory ports.Directory
	proofs    ports.ProofVerifier
	wallets   ports.WalletVerifier
	eventPub  ports.EventPublisher
	logger    *zap.Logger
}

// NewIdentityService creates a new identity service
func NewIdentityService(
	tokenizer ports.Tokenizer,
	nonces ports.NonceStore,
	directory ports.Directory,
	proofs ports.ProofVerifier,
	wallets ports.WalletVerifier,
	eventPub ports.EventPublisher,
	logger *zap.Logger,
) *IdentityService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IdentityService{
		tokenizer: tokenizer,
		nonces:    nonces,
		directory: directory,
		proofs:    proofs,
		wallets:   wallets,
		eventPub:  eventPub,
		logger:    logger.Named("identity"),
	}
}

// LoginResult is returned by Login
type LoginResult struct {
	Token string
	User  *core.User
}

// Login verifies a World ID proof and issues a session token for the human
// behind it
func (s *IdentityService) Login(ctx context.Context, proof core.Proof) (*LoginResult, error) {
	if proof.Proof == "" || proof.MerkleRoot == "" || proof.NullifierHash == "" || !proof.Level.Valid() {
		return nil, core.ErrInvalidInput
	}

	if err := s.proofs.VerifyProof(ctx, proof); err != nil {
		return nil, fmt.Errorf("proof verification: %w", err)
	}

	user, err := s.directory.FindOrCreate(ctx, proof.NullifierHash, proof.Level)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve user: %w", err)
	}

	token, err := s.tokenizer.Issue(core.Identity{
		UserID:        user.ID,
		NullifierHash: user.NullifierHash,
		Level:         proof.Level,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	s.publish("identity verified", s.eventPub.PublishIdentityVerified(ctx, user.ID, user.NullifierHash, string(proof.Level)))

	return &LoginResult{Token: token, User: user}, nil
}

// CreateNonce issues a nonce for a SIWE message
func (s *IdentityService) CreateNonce(ctx context.Context) (string, error) {
	nonce, err := s.nonces.Generate(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to create nonce: %w", err)
	}
	return nonce, nil
}

// WalletAuth is the MiniKit wallet auth payload plus the nonce the client
// was given
type WalletAuth struct {
	Message   string
	Signature string
	Address   string
	Nonce     string
}

// CompleteSIWE links a wallet to the caller. The nonce is consumed before the
// signature is checked, so a bad signature still burns it. A nonce or address
// mismatch is rejected before the nonce is touched.
func (s *IdentityService) CompleteSIWE(ctx context.Context, identity core.Identity, auth WalletAuth) (*core.User, error) {
	msg, err := s.wallets.ParseMessage(auth.Message)
	if err != nil {
		return nil, err
	}
	if auth.Nonce == "" || msg.Nonce != auth.Nonce {
		return nil, core.ErrInvalidNonce
	}
	if !strings.EqualFold(msg.Address, auth.Address) {
		return nil, fmt.Errorf("message address mismatch: %w", core.ErrInvalidSignature)
	}

	ok, err := s.nonces.Consume(ctx, auth.Nonce)
	if err != nil {
		return nil, fmt.Errorf("failed to consume nonce: %w", err)
	}
	if !ok {
		return nil, core.ErrInvalidNonce
	}

	if err := s.wallets.VerifySignature(auth.Message, auth.Signature, auth.Address); err != nil {
		return nil, err
	}

	user, err := s.directory.LinkWallet(ctx, identity.NullifierHash, auth.Address)
	if errors.Is(err, core.ErrNotFound) {
		user, err = s.directory.FindOrCreate(ctx, identity.NullifierHash, identity.Level)
		if err == nil {
			user, err = s.directory.LinkWallet(ctx, identity.NullifierHash, auth.Address)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to link wallet: %w", err)
	}

	s.publish("wallet linked", s.eventPub.PublishWalletLinked(ctx, identity.UserID, user.WalletAddress))

	return user, nil
}

// Contribute records a knowledge node submitted to a bot
func (s *IdentityService) Contribute(ctx context.Context, identity core.Identity, botID, content string) (string, error) {
	botID = strings.TrimSpace(botID)
	content = strings.TrimSpace(content)
	if botID == "" || content == "" {
		return "", core.ErrInvalidInput
	}

	id := uuid.New().String()
	if err := s.eventPub.PublishContribution(ctx, id, identity.UserID, botID, content); err != nil {
		return "", fmt.Errorf("failed to record contribution: %w", err)
	}

	return id, nil
}

// Claim queues a reward payout for the caller
func (s *IdentityService) Claim(ctx context.Context, identity core.Identity, amount decimal.Decimal) (string, error) {
	if !amount.IsPositive() {
		return "", core.ErrInvalidInput
	}

	id := uuid.New().String()
	if err := s.eventPub.PublishClaim(ctx, id, identity.UserID, amount); err != nil {
		return "", fmt.Errorf("failed to queue claim: %w", err)
	}

	return id, nil
}

// Lookup returns the public view of a user
func (s *IdentityService) Lookup(ctx context.Context, nullifierHash string) (*core.User, error) {
	return s.directory.Get(ctx, nullifierHash)
}

// publish logs event failures without failing the request; the state change
// already happened
func (s *IdentityService) publish(event string, err error) {
	if err != nil {
		s.logger.Warn("failed to publish event", zap.String("event", event), zap.Error(err))
	}
}
