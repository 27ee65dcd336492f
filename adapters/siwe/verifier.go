package siwe

import (
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/layer-3/seedvault/core"
)

// Verifier checks SIWE messages signed with personal_sign (EIP-191)
type Verifier struct {
	now func() time.Time
}

// NewVerifier creates a verifier. now may be nil.
func NewVerifier(now func() time.Time) *Verifier {
	if now == nil {
		now = time.Now
	}
	return &Verifier{now: now}
}

// ParseMessage parses the message and rejects it outside its validity
// window (Not Before to Expiration Time).
func (v *Verifier) ParseMessage(message string) (*core.WalletMessage, error) {
	msg, err := ParseMessage(message)
	if err != nil {
		return nil, err
	}
	now := v.now()
	if !msg.ExpirationTime.IsZero() && now.After(msg.ExpirationTime) {
		return nil, fmt.Errorf("message expired: %w", core.ErrInvalidMessage)
	}
	if !msg.NotBefore.IsZero() && now.Before(msg.NotBefore) {
		return nil, fmt.Errorf("message not yet valid: %w", core.ErrInvalidMessage)
	}
	return msg, nil
}

// VerifySignature checks that signature over message recovers to address
func (v *Verifier) VerifySignature(message, signature, address string) error {
	if !common.IsHexAddress(address) {
		return fmt.Errorf("bad address: %w", core.ErrInvalidSignature)
	}

	sig, err := hexutil.Decode(signature)
	if err != nil {
		return fmt.Errorf("failed to decode signature: %w", core.ErrInvalidSignature)
	}
	if len(sig) != crypto.SignatureLength {
		return fmt.Errorf("signature must be %d bytes: %w", crypto.SignatureLength, core.ErrInvalidSignature)
	}

	// Wallets emit V as 27/28; recovery expects 0/1.
	if sig[crypto.RecoveryIDOffset] >= 27 {
		sig[crypto.RecoveryIDOffset] -= 27
	}

	pub, err := crypto.SigToPub(accounts.TextHash([]byte(message)), sig)
	if err != nil {
		return fmt.Errorf("failed to recover signer: %w", core.ErrInvalidSignature)
	}

	if crypto.PubkeyToAddress(*pub) != common.HexToAddress(address) {
		return core.ErrInvalidSignature
	}

	return nil
}
