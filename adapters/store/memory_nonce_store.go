package store

import (
	"context"
	"sync"
	"time"
)

// MemoryNonceStore keeps nonces in process memory. Nonces are lost on restart
// and are not visible to other instances; use RedisNonceStore when the
// service runs behind a load balancer.
type MemoryNonceStore struct {
	mu          sync.Mutex
	nonces      map[string]time.Time
	lastCleanup time.Time
	settings    settings
}

// NewMemoryNonceStore creates an empty in-memory nonce store
func NewMemoryNonceStore(opts ...Option) *MemoryNonceStore {
	s := newSettings(opts)
	return &MemoryNonceStore{
		nonces:      make(map[string]time.Time),
		lastCleanup: s.now(),
		settings:    s,
	}
}

// Generate issues a nonce that expires after the configured TTL
func (s *MemoryNonceStore) Generate(ctx context.Context) (string, error) {
	nonce, err := newNonce()
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.settings.now()
	s.cleanup(now)
	s.nonces[nonce] = now.Add(s.settings.nonceTTL)

	return nonce, nil
}

// Consume removes the nonce and reports whether it was still live
func (s *MemoryNonceStore) Consume(ctx context.Context, nonce string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.settings.now()
	s.cleanup(now)

	expiresAt, ok := s.nonces[nonce]
	if !ok {
		return false, nil
	}
	delete(s.nonces, nonce)

	return !now.After(expiresAt), nil
}

// Len returns the number of stored nonces, expired ones included
func (s *MemoryNonceStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.nonces)
}

// cleanup drops expired nonces at most once per cleanup interval. Callers
// hold s.mu.
func (s *MemoryNonceStore) cleanup(now time.Time) {
	if now.Sub(s.lastCleanup) < s.settings.cleanupInterval {
		return
	}
	for nonce, expiresAt := range s.nonces {
		if now.After(expiresAt) {
			delete(s.nonces, nonce)
		}
	}
	s.lastCleanup = now
}
