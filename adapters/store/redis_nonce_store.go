package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisNonceStore shares nonces between instances. Expiry is delegated to
// redis key TTLs and consumption to GETDEL, so a nonce can only be taken once
// across the whole deployment.
type RedisNonceStore struct {
	client   redis.UniversalClient
	settings settings
}

// NewRedisNonceStore creates a redis nonce store
func NewRedisNonceStore(client redis.UniversalClient, opts ...Option) *RedisNonceStore {
	return &RedisNonceStore{
		client:   client,
		settings: newSettings(opts),
	}
}

func (s *RedisNonceStore) key(nonce string) string {
	return s.settings.prefix + "nonce:" + nonce
}

// Generate issues a nonce that expires after the configured TTL
func (s *RedisNonceStore) Generate(ctx context.Context) (string, error) {
	nonce, err := newNonce()
	if err != nil {
		return "", err
	}

	if err := s.client.Set(ctx, s.key(nonce), "1", s.settings.nonceTTL).Err(); err != nil {
		return "", fmt.Errorf("failed to store nonce: %w", err)
	}

	return nonce, nil
}

// Consume removes the nonce and reports whether it was still live
func (s *RedisNonceStore) Consume(ctx context.Context, nonce string) (bool, error) {
	if nonce == "" {
		return false, nil
	}

	err := s.client.GetDel(ctx, s.key(nonce)).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to consume nonce: %w", err)
	}

	return true, nil
}
