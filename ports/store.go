package ports

import (
	"context"

	"github.com/layer-3/seedvault/core"
)

// NonceStore issues single-use challenge nonces
type NonceStore interface {
	Generate(ctx context.Context) (string, error)
	// Consume reports whether the nonce was live and removes it. A nonce is
	// consumable at most once.
	Consume(ctx context.Context, nonce string) (bool, error)
}

// RateLimiter counts requests per key in fixed windows
type RateLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// Directory stores users keyed by nullifier hash
type Directory interface {
	FindOrCreate(ctx context.Context, nullifierHash string, level core.VerificationLevel) (*core.User, error)
	LinkWallet(ctx context.Context, nullifierHash, address string) (*core.User, error)
	Get(ctx context.Context, nullifierHash string) (*core.User, error)
}
