package di

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	cache := NewSessionCache()
	defer cache.Stop()

	require.NoError(t, cache.Set(ctx, "principal-a", "session-a", 60))

	value, ok := cache.Get(ctx, "principal-a")
	require.True(t, ok)
	assert.Equal(t, "session-a", value)

	_, ok = cache.Get(ctx, "principal-b")
	assert.False(t, ok)
}

func TestSessionCacheExpiry(t *testing.T) {
	ctx := context.Background()
	cache := NewSessionCache()
	defer cache.Stop()

	// An entry past its idle deadline reads as absent even before the
	// sweeper runs
	cache.mu.Lock()
	cache.entries["principal-a"] = sessionEntry{
		value:    "stale-session",
		deadline: time.Now().Add(-time.Second),
	}
	cache.mu.Unlock()

	_, ok := cache.Get(ctx, "principal-a")
	assert.False(t, ok)
}

func TestSessionCacheNoExpiryForZeroTTL(t *testing.T) {
	ctx := context.Background()
	cache := NewSessionCache()
	defer cache.Stop()

	require.NoError(t, cache.Set(ctx, "principal-a", "session-a", 0))

	value, ok := cache.Get(ctx, "principal-a")
	require.True(t, ok)
	assert.Equal(t, "session-a", value)
}

func TestSessionCacheDeleteAndClear(t *testing.T) {
	ctx := context.Background()
	cache := NewSessionCache()
	defer cache.Stop()

	require.NoError(t, cache.Set(ctx, "principal-a", "session-a", 60))
	require.NoError(t, cache.Set(ctx, "principal-b", "session-b", 60))

	require.NoError(t, cache.Delete(ctx, "principal-a"))
	_, ok := cache.Get(ctx, "principal-a")
	assert.False(t, ok)

	// Absent key is fine
	assert.NoError(t, cache.Delete(ctx, "principal-a"))

	require.NoError(t, cache.Clear(ctx))
	_, ok = cache.Get(ctx, "principal-b")
	assert.False(t, ok)
}
