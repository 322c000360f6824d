// Package ratelimit implements the fixed-window admission guard placed in
// front of generation-triggering routes.
package ratelimit

import (
	"context"
	"fmt"
	"time"
)

const (
	// DefaultMax and DefaultWindow: 5 requests per 60 seconds per (route, key).
	DefaultMax    = 5
	DefaultWindow = 60 * time.Second
)

// Store counts requests per key inside a fixed window.
type Store interface {
	// Incr bumps the counter for key, starting a new window with the given
	// TTL when the key is unseen, and returns the resulting count.
	Incr(ctx context.Context, key string, window time.Duration) (int64, error)
}

type Limiter struct {
	store  Store
	max    int64
	window time.Duration
}

func NewLimiter(store Store, max int, window time.Duration) *Limiter {
	if max <= 0 {
		max = DefaultMax
	}
	if window <= 0 {
		window = DefaultWindow
	}
	return &Limiter{
		store:  store,
		max:    int64(max),
		window: window,
	}
}

// Allow reports whether one more request from key on route fits in the current
// window. Each route keeps its own counter per key, so exhausting one route
// leaves the others untouched. Store failures fail open: an unreachable
// counter backend must not take the API down with it.
func (l *Limiter) Allow(ctx context.Context, route, key string) bool {
	count, err := l.store.Incr(ctx, fmt.Sprintf("%s:%s", route, key), l.window)
	if err != nil {
		return true
	}
	return count <= l.max
}

// RetryAfterSeconds is the guidance attached to a rejection.
func (l *Limiter) RetryAfterSeconds() int {
	return int(l.window / time.Second)
}

// KeyFor resolves the tracking key: authenticated identity first, client
// address as fallback, a literal last resort when neither exists.
func KeyFor(identity, clientIP string) string {
	if identity != "" {
		return identity
	}
	if clientIP != "" {
		return clientIP
	}
	return "unknown"
}
