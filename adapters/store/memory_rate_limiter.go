package store

import (
	"context"
	"sync"
	"time"
)

type fixedWindow struct {
	count   int
	resetAt time.Time
}

// MemoryRateLimiter is a fixed-window counter held in process memory. Each
// instance counts independently, so the effective global limit grows with the
// number of instances.
type MemoryRateLimiter struct {
	mu          sync.Mutex
	windows     map[string]*fixedWindow
	lastCleanup time.Time
	settings    settings
}

// NewMemoryRateLimiter creates an in-memory fixed-window limiter
func NewMemoryRateLimiter(opts ...Option) *MemoryRateLimiter {
	s := newSettings(opts)
	return &MemoryRateLimiter{
		windows:     make(map[string]*fixedWindow),
		lastCleanup: s.now(),
		settings:    s,
	}
}

// Allow counts a request for key and reports whether it fits in the current
// window. Denied requests are still counted.
func (l *MemoryRateLimiter) Allow(ctx context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.settings.now()
	l.cleanup(now)

	entry, ok := l.windows[key]
	if !ok || !now.Before(entry.resetAt) {
		l.windows[key] = &fixedWindow{count: 1, resetAt: now.Add(l.settings.window)}
		return true, nil
	}

	entry.count++
	return entry.count <= l.settings.limit, nil
}

// Len returns the number of tracked keys
func (l *MemoryRateLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.windows)
}

func (l *MemoryRateLimiter) cleanup(now time.Time) {
	if now.Sub(l.lastCleanup) < l.settings.window {
		return
	}
	for key, entry := range l.windows {
		if !now.Before(entry.resetAt) {
			delete(l.windows, key)
		}
	}
	l.lastCleanup = now
}
