package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/layer-3/seedvault/core"
	"github.com/redis/go-redis/v9"
)

// RedisDirectory stores users as redis hashes keyed by nullifier hash
type RedisDirectory struct {
	client   redis.UniversalClient
	settings settings
}

// NewRedisDirectory creates a redis user directory
func NewRedisDirectory(client redis.UniversalClient, opts ...Option) *RedisDirectory {
	return &RedisDirectory{
		client:   client,
		settings: newSettings(opts),
	}
}

func (d *RedisDirectory) key(nullifierHash string) string {
	return d.settings.prefix + "user:" + nullifierHash
}

// FindOrCreate returns the user for a nullifier hash, creating it on first
// sight. HSETNX keeps the id stable when two instances race on creation.
func (d *RedisDirectory) FindOrCreate(ctx context.Context, nullifierHash string, level core.VerificationLevel) (*core.User, error) {
	if nullifierHash == "" {
		return nil, core.ErrInvalidInput
	}

	key := d.key(nullifierHash)
	_, err := d.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSetNX(ctx, key, "id", uuid.New().String())
		pipe.HSetNX(ctx, key, "created_at", d.settings.now().UTC().Format(time.RFC3339Nano))
		pipe.HSet(ctx, key, "level", string(level))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upsert user: %w", err)
	}

	return d.Get(ctx, nullifierHash)
}

// LinkWallet attaches a wallet address to an existing user
func (d *RedisDirectory) LinkWallet(ctx context.Context, nullifierHash, address string) (*core.User, error) {
	key := d.key(nullifierHash)

	exists, err := d.client.Exists(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if exists == 0 {
		return nil, core.ErrNotFound
	}

	if err := d.client.HSet(ctx, key, "wallet", strings.ToLower(address)).Err(); err != nil {
		return nil, fmt.Errorf("failed to link wallet: %w", err)
	}

	return d.Get(ctx, nullifierHash)
}

// Get returns the user for a nullifier hash
func (d *RedisDirectory) Get(ctx context.Context, nullifierHash string) (*core.User, error) {
	fields, err := d.client.HGetAll(ctx, d.key(nullifierHash)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read user: %w", err)
	}
	if len(fields) == 0 {
		return nil, core.ErrNotFound
	}

	var createdAt time.Time
	if raw := fields["created_at"]; raw != "" {
		createdAt, err = time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			return nil, fmt.Errorf("failed to parse created_at of user: %w", err)
		}
	}

	return &core.User{
		ID:            fields["id"],
		NullifierHash: nullifierHash,
		Level:         core.VerificationLevel(fields["level"]),
		WalletAddress: fields["wallet"],
		CreatedAt:     createdAt,
	}, nil
}
