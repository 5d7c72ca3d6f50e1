package ratelimit

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyedRateLimiter_Allow(t *testing.T) {
	tests := []struct {
		name     string
		rps      float64
		burst    int
		calls    int
		wantPass int
	}{
		{"burst allows initial requests", 1, 3, 3, 3},
		{"exceeding burst blocks", 1, 2, 5, 2},
		{"single token", 1, 1, 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rl := New(tt.rps, tt.burst)
			defer rl.Stop()

			passed := 0
			for range tt.calls {
				if rl.Allow("graphql.anilist.co") {
					passed++
				}
			}

			assert.Equal(t, tt.wantPass, passed)
		})
	}
}

func TestKeyedRateLimiter_Wait(t *testing.T) {
	rl := New(10, 1)
	defer rl.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	start := time.Now()
	require.NoError(t, rl.Wait(ctx, "host"))
	assert.Less(t, time.Since(start), 50*time.Millisecond, "first Wait() should be immediate")

	// Second token arrives after ~100ms at 10 rps.
	start = time.Now()
	require.NoError(t, rl.Wait(ctx, "host"))
	elapsed := time.Since(start)
	assert.GreaterOrEqual(t, elapsed, 80*time.Millisecond)
	assert.Less(t, elapsed, 250*time.Millisecond)
}

func TestKeyedRateLimiter_WaitContextCancelled(t *testing.T) {
	rl := New(0.1, 1)
	defer rl.Stop()

	rl.Allow("host")

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	assert.Error(t, rl.Wait(ctx, "host"))
}

func TestKeyedRateLimiter_IndependentKeys(t *testing.T) {
	rl := New(1, 1)
	defer rl.Stop()

	rl.Allow("10.0.0.1")
	assert.False(t, rl.Allow("10.0.0.1"), "first key should be exhausted")
	assert.True(t, rl.Allow("10.0.0.2"), "second key should be independent")
}

func TestKeyedRateLimiter_BoundedKeys(t *testing.T) {
	rl := NewBounded(1, 1, 3, time.Minute)
	defer rl.Stop()

	for i := range 10 {
		rl.Allow(fmt.Sprintf("10.0.0.%d", i))
	}

	assert.Equal(t, 3, rl.Len())
}

func TestKeyedRateLimiter_IdleKeysExpire(t *testing.T) {
	rl := NewBounded(1, 1, 10, 50*time.Millisecond)
	defer rl.Stop()

	rl.Allow("10.0.0.1")
	assert.False(t, rl.Allow("10.0.0.1"))

	time.Sleep(120 * time.Millisecond)

	// A fresh bucket replaces the expired one.
	assert.True(t, rl.Allow("10.0.0.1"))
}

func TestKeyedRateLimiter_Stop(t *testing.T) {
	rl := New(1, 1)
	rl.Allow("a")
	rl.Allow("b")

	rl.Stop()

	assert.Zero(t, rl.Len())
}

func TestPerMinute(t *testing.T) {
	rl := PerMinute(30)
	defer rl.Stop()

	passed := 0
	for range 10 {
		if rl.Allow("client") {
			passed++
		}
	}

	assert.Equal(t, 3, passed)
}
