package store

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/layer-3/seedvault/core"
)

// MemoryDirectory is an in-memory user directory keyed by nullifier hash
type MemoryDirectory struct {
	mu       sync.RWMutex
	users    map[string]core.User
	settings settings
}

// NewMemoryDirectory creates an empty directory
func NewMemoryDirectory(opts ...Option) *MemoryDirectory {
	return &MemoryDirectory{
		users:    make(map[string]core.User),
		settings: newSettings(opts),
	}
}

// FindOrCreate returns the user for a nullifier hash, creating it on first
// sight. The stored level follows the most recent verification.
func (d *MemoryDirectory) FindOrCreate(ctx context.Context, nullifierHash string, level core.VerificationLevel) (*core.User, error) {
	if nullifierHash == "" {
		return nil, core.ErrInvalidInput
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	user, ok := d.users[nullifierHash]
	if !ok {
		user = core.User{
			ID:            uuid.New().String(),
			NullifierHash: nullifierHash,
			CreatedAt:     d.settings.now(),
		}
	}
	user.Level = level
	d.users[nullifierHash] = user

	return &user, nil
}

// LinkWallet attaches a wallet address to an existing user
func (d *MemoryDirectory) LinkWallet(ctx context.Context, nullifierHash, address string) (*core.User, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	user, ok := d.users[nullifierHash]
	if !ok {
		return nil, core.ErrNotFound
	}
	user.WalletAddress = strings.ToLower(address)
	d.users[nullifierHash] = user

	return &user, nil
}

// Get returns the user for a nullifier hash
func (d *MemoryDirectory) Get(ctx context.Context, nullifierHash string) (*core.User, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	user, ok := d.users[nullifierHash]
	if !ok {
		return nil, core.ErrNotFound
	}
	return &user, nil
}
