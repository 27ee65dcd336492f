package store

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// The window starts with the first INCR of a key and ends when its TTL fires.
var fixedWindowScript = redis.NewScript(`
local count = redis.call("INCR", KEYS[1])
if count == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return count
`)

// RedisRateLimiter is a fixed-window counter shared by every instance
type RedisRateLimiter struct {
	client   redis.UniversalClient
	settings settings
}

// NewRedisRateLimiter creates a redis fixed-window limiter
func NewRedisRateLimiter(client redis.UniversalClient, opts ...Option) *RedisRateLimiter {
	return &RedisRateLimiter{
		client:   client,
		settings: newSettings(opts),
	}
}

// Allow counts a request for key and reports whether it fits in the current
// window. Denied requests are still counted.
func (l *RedisRateLimiter) Allow(ctx context.Context, key string) (bool, error) {
	storeKey := l.settings.prefix + "rl:" + key
	count, err := fixedWindowScript.Run(ctx, l.client, []string{storeKey}, l.settings.window.Milliseconds()).Int64()
	if err != nil {
		return false, fmt.Errorf("failed to evaluate rate limit: %w", err)
	}
	return count <= int64(l.settings.limit), nil
}
