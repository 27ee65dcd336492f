package ports

import (
	"context"

	"github.com/layer-3/seedvault/core"
)

// ProofVerifier checks World ID proofs against the identity provider
type ProofVerifier interface {
	VerifyProof(ctx context.Context, proof core.Proof) error
}

// WalletVerifier parses SIWE messages and checks their signatures
type WalletVerifier interface {
	ParseMessage(message string) (*core.WalletMessage, error)
	VerifySignature(message, signature, address string) error
}
