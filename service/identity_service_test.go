package service

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/layer-3/seedvault/adapters/siwe"
	"github.com/layer-3/seedvault/adapters/store"
	"github.com/layer-3/seedvault/adapters/tokenizer"
	"github.com/layer-3/seedvault/core"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProofs struct {
	err error
}

func (s stubProofs) VerifyProof(context.Context, core.Proof) error { return s.err }

type recordingPublisher struct {
	mu     sync.Mutex
	topics []string
	err    error
}

func (p *recordingPublisher) record(topic string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.topics = append(p.topics, topic)
	return p.err
}

func (p *recordingPublisher) PublishIdentityVerified(context.Context, string, string, string) error {
	return p.record("identity")
}

func (p *recordingPublisher) PublishWalletLinked(context.Context, string, string) error {
	return p.record("wallet")
}

func (p *recordingPublisher) PublishContribution(context.Context, string, string, string, string) error {
	return p.record("contribution")
}

func (p *recordingPublisher) PublishClaim(context.Context, string, string, decimal.Decimal) error {
	return p.record("claim")
}

type fixture struct {
	svc       *IdentityService
	tokenizer *tokenizer.JWTTokenizer
	nonces    *store.MemoryNonceStore
	directory *store.MemoryDirectory
	events    *recordingPublisher
}

func newFixture(t *testing.T, proofErr error) *fixture {
	t.Helper()
	tok, err := tokenizer.NewJWTTokenizer("abcdefghijklmnopqrstuvwxyz123456", false)
	require.NoError(t, err)

	f := &fixture{
		tokenizer: tok,
		nonces:    store.NewMemoryNonceStore(),
		directory: store.NewMemoryDirectory(),
		events:    &recordingPublisher{},
	}
	f.svc = NewIdentityService(tok, f.nonces, f.directory, stubProofs{err: proofErr}, siwe.NewVerifier(nil), f.events, nil)
	return f
}

var validProof = core.Proof{
	Proof:         "0xproof",
	MerkleRoot:    "0xroot",
	NullifierHash: "0xnullifier",
	Level:         core.VerificationOrb,
}

func TestLoginIssuesVerifiableToken(t *testing.T) {
	f := newFixture(t, nil)

	res, err := f.svc.Login(context.Background(), validProof)
	require.NoError(t, err)

	session, ok := f.tokenizer.Verify(res.Token)
	require.True(t, ok)
	assert.Equal(t, res.User.ID, session.UserID)
	assert.Equal(t, "0xnullifier", session.NullifierHash)
	assert.Equal(t, core.VerificationOrb, session.Level)
	assert.Equal(t, []string{"identity"}, f.events.topics)

	again, err := f.svc.Login(context.Background(), validProof)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, again.User.ID)
}

func TestLoginRejectsBadProof(t *testing.T) {
	f := newFixture(t, fmt.Errorf("invalid_proof: %w", core.ErrVerificationFailed))

	_, err := f.svc.Login(context.Background(), validProof)
	assert.ErrorIs(t, err, core.ErrVerificationFailed)

	incomplete := validProof
	incomplete.Level = "passport"
	_, err = f.svc.Login(context.Background(), incomplete)
	assert.ErrorIs(t, err, core.ErrInvalidInput)
}

func TestLoginSurvivesPublishFailure(t *testing.T) {
	f := newFixture(t, nil)
	f.events.err = assert.AnError

	_, err := f.svc.Login(context.Background(), validProof)
	assert.NoError(t, err)
}

func signedWalletAuth(t *testing.T, nonce string) WalletAuth {
	t.Helper()
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	address := crypto.PubkeyToAddress(key.PublicKey).Hex()

	message := fmt.Sprintf(`seedvault.app wants you to sign in with your Ethereum account:
%s

URI: https://seedvault.app
Version: 1
Chain ID: 480
Nonce: %s
Issued At: 2026-03-01T09:00:00Z`, address, nonce)

	sig, err := crypto.Sign(accounts.TextHash([]byte(message)), key)
	require.NoError(t, err)

	return WalletAuth{Message: message, Signature: hexutil.Encode(sig), Address: address, Nonce: nonce}
}

func TestCompleteSIWE(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	login, err := f.svc.Login(ctx, validProof)
	require.NoError(t, err)
	identity := core.Identity{UserID: login.User.ID, NullifierHash: login.User.NullifierHash, Level: core.VerificationOrb}

	nonce, err := f.svc.CreateNonce(ctx)
	require.NoError(t, err)
	auth := signedWalletAuth(t, nonce)

	user, err := f.svc.CompleteSIWE(ctx, identity, auth)
	require.NoError(t, err)
	assert.Equal(t, login.User.ID, user.ID)
	assert.NotEmpty(t, user.WalletAddress)
	assert.Contains(t, f.events.topics, "wallet")

	// Replaying the same signed message fails: the nonce is gone.
	_, err = f.svc.CompleteSIWE(ctx, identity, auth)
	assert.ErrorIs(t, err, core.ErrInvalidNonce)
}

func TestCompleteSIWEBurnsNonceOnBadSignature(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	identity := core.Identity{UserID: "u", NullifierHash: "0xn", Level: core.VerificationDevice}

	nonce, err := f.svc.CreateNonce(ctx)
	require.NoError(t, err)
	auth := signedWalletAuth(t, nonce)
	auth.Signature = signedWalletAuth(t, nonce).Signature

	_, err = f.svc.CompleteSIWE(ctx, identity, auth)
	assert.ErrorIs(t, err, core.ErrInvalidSignature)
	assert.Equal(t, 0, f.nonces.Len())
}

func TestCompleteSIWERejectsNonceMismatch(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	identity := core.Identity{UserID: "u", NullifierHash: "0xn", Level: core.VerificationDevice}

	nonce, err := f.svc.CreateNonce(ctx)
	require.NoError(t, err)

	auth := signedWalletAuth(t, nonce)
	auth.Nonce = "somethingelse"
	_, err = f.svc.CompleteSIWE(ctx, identity, auth)
	assert.ErrorIs(t, err, core.ErrInvalidNonce)

	never := signedWalletAuth(t, "neverissued")
	_, err = f.svc.CompleteSIWE(ctx, identity, never)
	assert.ErrorIs(t, err, core.ErrInvalidNonce)

	// The first nonce was not touched by the mismatched attempt.
	assert.Equal(t, 1, f.nonces.Len())
}

func TestCompleteSIWECreatesMissingUser(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	identity := core.Identity{UserID: "u", NullifierHash: "0xfresh", Level: core.VerificationDevice}

	nonce, err := f.svc.CreateNonce(ctx)
	require.NoError(t, err)

	user, err := f.svc.CompleteSIWE(ctx, identity, signedWalletAuth(t, nonce))
	require.NoError(t, err)
	assert.NotEmpty(t, user.WalletAddress)
}

func TestContributeAndClaim(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	identity := core.Identity{UserID: "u", NullifierHash: "0xn", Level: core.VerificationOrb}

	id, err := f.svc.Contribute(ctx, identity, "bot-1", "Seeds germinate faster when soaked.")
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	_, err = f.svc.Contribute(ctx, identity, "bot-1", "   ")
	assert.ErrorIs(t, err, core.ErrInvalidInput)

	id, err = f.svc.Claim(ctx, identity, decimal.RequireFromString("1.5"))
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	_, err = f.svc.Claim(ctx, identity, decimal.Zero)
	assert.ErrorIs(t, err, core.ErrInvalidInput)

	f.events.err = assert.AnError
	_, err = f.svc.Claim(ctx, identity, decimal.NewFromInt(1))
	assert.ErrorIs(t, err, assert.AnError)

	assert.Equal(t, []string{"contribution", "claim", "claim"}, f.events.topics)
}

func TestCompleteSIWEAddressMismatchKeepsNonce(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	identity := core.Identity{UserID: "u", NullifierHash: "0xn", Level: core.VerificationDevice}

	nonce, err := f.svc.CreateNonce(ctx)
	require.NoError(t, err)

	auth := signedWalletAuth(t, nonce)
	auth.Address = "0x000000000000000000000000000000000000dEaD"
	_, err = f.svc.CompleteSIWE(ctx, identity, auth)
	assert.ErrorIs(t, err, core.ErrInvalidSignature)
	assert.Equal(t, 1, f.nonces.Len())
}

func TestContributeFailsWhenEventIsLost(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	identity := core.Identity{UserID: "u", NullifierHash: "0xn", Level: core.VerificationOrb}

	f.events.err = assert.AnError
	id, err := f.svc.Contribute(ctx, identity, "bot-1", "Soil needs rest between harvests.")
	assert.ErrorIs(t, err, assert.AnError)
	assert.Empty(t, id)
}
