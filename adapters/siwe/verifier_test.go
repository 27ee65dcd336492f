package siwe

import (
	"crypto/ecdsa"
	"fmt"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/layer-3/seedvault/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildMessage(address, nonce string, expires time.Time) string {
	msg := fmt.Sprintf(`seedvault.app wants you to sign in with your Ethereum account:
%s

Link your wallet to Seed Vault.

URI: https://seedvault.app
Version: 1
Chain ID: 480
Nonce: %s
Issued At: 2026-03-01T09:00:00Z`, address, nonce)
	if !expires.IsZero() {
		msg += "\nExpiration Time: " + expires.UTC().Format(time.RFC3339)
	}
	return msg
}

func sign(t *testing.T, key *ecdsa.PrivateKey, message string) string {
	t.Helper()
	sig, err := crypto.Sign(accounts.TextHash([]byte(message)), key)
	require.NoError(t, err)
	sig[crypto.RecoveryIDOffset] += 27
	return hexutil.Encode(sig)
}

func TestParseMessage(t *testing.T) {
	msg, err := ParseMessage(buildMessage("0x8ba1f109551bD432803012645Ac136ddd64DBA72", "a1b2c3d4e5f6a7b8", time.Time{}))
	require.NoError(t, err)

	assert.Equal(t, "seedvault.app", msg.Domain)
	assert.Equal(t, "0x8ba1f109551bD432803012645Ac136ddd64DBA72", msg.Address)
	assert.Equal(t, "Link your wallet to Seed Vault.", msg.Statement)
	assert.Equal(t, "https://seedvault.app", msg.URI)
	assert.Equal(t, int64(480), msg.ChainID)
	assert.Equal(t, "a1b2c3d4e5f6a7b8", msg.Nonce)
	assert.Equal(t, time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC), msg.IssuedAt)
	assert.True(t, msg.ExpirationTime.IsZero())
}

func TestParseMessageRejectsMalformed(t *testing.T) {
	valid := buildMessage("0x8ba1f109551bD432803012645Ac136ddd64DBA72", "abc", time.Time{})
	cases := []string{
		"",
		"hello\nworld",
		buildMessage("not-an-address", "abc", time.Time{}),
		buildMessage("0x8ba1f109551bD432803012645Ac136ddd64DBA72", "", time.Time{}),
		valid + "\nChain ID: x",
	}
	for _, c := range cases {
		_, err := ParseMessage(c)
		assert.ErrorIs(t, err, core.ErrInvalidMessage, c)
	}
}

func TestVerifierRejectsExpiredMessage(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	v := NewVerifier(func() time.Time { return now })

	_, err := v.ParseMessage(buildMessage("0x8ba1f109551bD432803012645Ac136ddd64DBA72", "abc", now.Add(time.Minute)))
	require.NoError(t, err)

	_, err = v.ParseMessage(buildMessage("0x8ba1f109551bD432803012645Ac136ddd64DBA72", "abc", now.Add(-time.Minute)))
	assert.ErrorIs(t, err, core.ErrInvalidMessage)
}

func TestVerifySignature(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	address := crypto.PubkeyToAddress(key.PublicKey).Hex()

	message := buildMessage(address, "a1b2c3d4e5f6a7b8", time.Time{})
	signature := sign(t, key, message)

	v := NewVerifier(nil)
	assert.NoError(t, v.VerifySignature(message, signature, address))

	other, err := crypto.GenerateKey()
	require.NoError(t, err)
	assert.ErrorIs(t, v.VerifySignature(message, signature, crypto.PubkeyToAddress(other.PublicKey).Hex()), core.ErrInvalidSignature)

	tampered := buildMessage(address, "ffffffffffffffff", time.Time{})
	assert.ErrorIs(t, v.VerifySignature(tampered, signature, address), core.ErrInvalidSignature)

	assert.ErrorIs(t, v.VerifySignature(message, "0x1234", address), core.ErrInvalidSignature)
	assert.ErrorIs(t, v.VerifySignature(message, "zz", address), core.ErrInvalidSignature)
	assert.ErrorIs(t, v.VerifySignature(message, signature, "nope"), core.ErrInvalidSignature)
}

func TestVerifierRejectsMessageBeforeNotBefore(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	v := NewVerifier(func() time.Time { return now })
	base := buildMessage("0x8ba1f109551bD432803012645Ac136ddd64DBA72", "abc", time.Time{})

	msg, err := v.ParseMessage(base + "\nNot Before: " + now.Add(-time.Minute).Format(time.RFC3339))
	require.NoError(t, err)
	assert.Equal(t, now.Add(-time.Minute), msg.NotBefore)

	_, err = v.ParseMessage(base + "\nNot Before: " + now.Add(time.Minute).Format(time.RFC3339))
	assert.ErrorIs(t, err, core.ErrInvalidMessage)

	_, err = ParseMessage(base + "\nNot Before: tomorrow")
	assert.ErrorIs(t, err, core.ErrInvalidMessage)
}
