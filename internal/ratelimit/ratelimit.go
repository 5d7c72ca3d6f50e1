// Package ratelimit provides a keyed rate limiter using token bucket algorithm.
// It supports both non-blocking (Allow) and blocking (Wait) operations.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/time/rate"
)

const (
	defaultMaxKeys = 10000
	defaultIdleTTL = 10 * time.Minute
)

// KeyedRateLimiter manages per-key rate limiting.
// Each unique key gets its own independent rate limiter. Keys unused for the
// idle TTL are forgotten, and the number of tracked keys is capped.
type KeyedRateLimiter struct {
	mu       sync.Mutex
	limiters *expirable.LRU[string, *rate.Limiter]
	limit    rate.Limit
	burst    int
}

// New creates a new keyed rate limiter.
// rps: requests per second allowed.
// burst: maximum burst size (tokens available immediately).
func New(rps float64, burst int) *KeyedRateLimiter {
	return NewBounded(rps, burst, defaultMaxKeys, defaultIdleTTL)
}

// NewBounded creates a keyed rate limiter tracking at most maxKeys keys,
// each dropped after idleTTL without use.
func NewBounded(rps float64, burst, maxKeys int, idleTTL time.Duration) *KeyedRateLimiter {
	if maxKeys <= 0 {
		maxKeys = defaultMaxKeys
	}
	if idleTTL <= 0 {
		idleTTL = defaultIdleTTL
	}
	return &KeyedRateLimiter{
		limiters: expirable.NewLRU[string, *rate.Limiter](maxKeys, nil, idleTTL),
		limit:    rate.Limit(rps),
		burst:    burst,
	}
}

// PerMinute creates a limiter allowing n requests per minute per key,
// with a burst of a tenth of that (at least one).
func PerMinute(n int) *KeyedRateLimiter {
	return New(float64(n)/60.0, max(1, n/10))
}

// Allow checks if a request for the given key should be allowed.
// Returns immediately without blocking. Use for inbound request protection.
func (krl *KeyedRateLimiter) Allow(key string) bool {
	return krl.getLimiter(key).Allow()
}

// Wait blocks until a request for the given key is allowed or context is canceled.
// Use for outbound requests where you want to respect rate limits.
func (krl *KeyedRateLimiter) Wait(ctx context.Context, key string) error {
	return krl.getLimiter(key).Wait(ctx)
}

// Len returns the number of keys currently tracked.
func (krl *KeyedRateLimiter) Len() int {
	return krl.limiters.Len()
}

// getLimiter returns the limiter for a key, creating one if needed.
// A lookup refreshes the key's idle TTL.
func (krl *KeyedRateLimiter) getLimiter(key string) *rate.Limiter {
	krl.mu.Lock()
	defer krl.mu.Unlock()

	if limiter, ok := krl.limiters.Get(key); ok {
		krl.limiters.Add(key, limiter)
		return limiter
	}

	limiter := rate.NewLimiter(krl.limit, krl.burst)
	krl.limiters.Add(key, limiter)
	return limiter
}

// Stop forgets every tracked key.
func (krl *KeyedRateLimiter) Stop() {
	krl.limiters.Purge()
}
