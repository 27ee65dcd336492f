package store

import "time"

const (
	// DefaultNonceTTL is how long an issued nonce stays consumable
	DefaultNonceTTL = 5 * time.Minute

	// DefaultNonceCleanupInterval throttles the sweep of expired nonces
	DefaultNonceCleanupInterval = time.Minute

	// DefaultRateLimit is the number of requests allowed per window
	DefaultRateLimit = 10

	// DefaultRateWindow is the length of a rate limit window
	DefaultRateWindow = time.Minute
)

type settings struct {
	now             func() time.Time
	nonceTTL        time.Duration
	cleanupInterval time.Duration
	limit           int
	window          time.Duration
	prefix          string
}

// Option customizes a store
type Option func(*settings)

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(s *settings) { s.now = now }
}

// WithNonceTTL overrides DefaultNonceTTL
func WithNonceTTL(ttl time.Duration) Option {
	return func(s *settings) { s.nonceTTL = ttl }
}

// WithLimit overrides DefaultRateLimit and DefaultRateWindow
func WithLimit(limit int, window time.Duration) Option {
	return func(s *settings) {
		s.limit = limit
		s.window = window
	}
}

// WithPrefix sets the key prefix of the redis stores
func WithPrefix(prefix string) Option {
	return func(s *settings) { s.prefix = prefix }
}

func newSettings(opts []Option) settings {
	s := settings{
		now:             time.Now,
		nonceTTL:        DefaultNonceTTL,
		cleanupInterval: DefaultNonceCleanupInterval,
		limit:           DefaultRateLimit,
		window:          DefaultRateWindow,
		prefix:          "seedvault:",
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}
