package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryLimiter_AllowsUpToMax(t *testing.T) {
	limiter := NewMemoryLimiter(3, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		decision, err := limiter.Allow(ctx, "1.2.3.4")
		require.NoError(t, err)
		assert.True(t, decision.Allowed, "attempt %d should be allowed", i+1)
		assert.Equal(t, 2-i, decision.Remaining)
	}

	decision, err := limiter.Allow(ctx, "1.2.3.4")
	require.NoError(t, err)
	assert.False(t, decision.Allowed)
	assert.Greater(t, decision.RetryAfter, time.Duration(0))
}

func TestMemoryLimiter_TenthAllowedEleventhBlocked(t *testing.T) {
	limiter := NewMemoryLimiter(10, 15*time.Minute)
	ctx := context.Background()

	var last bool
	for i := 0; i < 10; i++ {
		decision, err := limiter.Allow(ctx, "client")
		require.NoError(t, err)
		last = decision.Allowed
	}
	assert.True(t, last, "10th attempt should be allowed")

	decision, err := limiter.Allow(ctx, "client")
	require.NoError(t, err)
	assert.False(t, decision.Allowed, "11th attempt should be blocked")
}

func TestMemoryLimiter_KeysAreIndependent(t *testing.T) {
	limiter := NewMemoryLimiter(1, time.Minute)
	ctx := context.Background()

	first, err := limiter.Allow(ctx, "a")
	require.NoError(t, err)
	assert.True(t, first.Allowed)

	blocked, err := limiter.Allow(ctx, "a")
	require.NoError(t, err)
	assert.False(t, blocked.Allowed)

	other, err := limiter.Allow(ctx, "b")
	require.NoError(t, err)
	assert.True(t, other.Allowed)
}

func TestMemoryLimiter_WindowSlides(t *testing.T) {
	clock := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	limiter := NewMemoryLimiter(2, 15*time.Minute, WithNow(func() time.Time { return clock }))
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		decision, err := limiter.Allow(ctx, "ip")
		require.NoError(t, err)
		require.True(t, decision.Allowed)
	}

	blocked, err := limiter.Allow(ctx, "ip")
	require.NoError(t, err)
	assert.False(t, blocked.Allowed)
	assert.Equal(t, 15*time.Minute, blocked.RetryAfter)

	// Once the first attempt ages out, a slot frees up.
	clock = clock.Add(16 * time.Minute)
	decision, err := limiter.Allow(ctx, "ip")
	require.NoError(t, err)
	assert.True(t, decision.Allowed)
}

func TestMemoryLimiter_Prune(t *testing.T) {
	clock := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	limiter := NewMemoryLimiter(5, time.Minute, WithNow(func() time.Time { return clock }))
	ctx := context.Background()

	_, err := limiter.Allow(ctx, "stale")
	require.NoError(t, err)

	clock = clock.Add(2 * time.Minute)
	limiter.Prune()

	limiter.mu.Lock()
	_, exists := limiter.attempts["stale"]
	limiter.mu.Unlock()
	assert.False(t, exists)
}
