package cache

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryDebounceGuard_Claim(t *testing.T) {
	guard := NewInMemoryDebounceGuard()
	defer guard.Close()

	ctx := context.Background()
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	guard.now = func() time.Time { return now }

	t.Run("first claim wins", func(t *testing.T) {
		ok, err := guard.Claim(ctx, "webhook:t1:products:p1", time.Minute)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("second claim within ttl loses", func(t *testing.T) {
		ok, err := guard.Claim(ctx, "webhook:t1:products:p1", time.Minute)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("other keys are independent", func(t *testing.T) {
		ok, err := guard.Claim(ctx, "webhook:t1:products:p2", time.Minute)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("claim is granted again after expiry", func(t *testing.T) {
		now = now.Add(61 * time.Second)
		ok, err := guard.Claim(ctx, "webhook:t1:products:p1", time.Minute)
		require.NoError(t, err)
		assert.True(t, ok)
	})
}

func TestInMemoryDebounceGuard_Release(t *testing.T) {
	guard := NewInMemoryDebounceGuard()
	defer guard.Close()
	ctx := context.Background()

	ok, err := guard.Claim(ctx, "webhook:t1:customers:c1", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, guard.Release(ctx, "webhook:t1:customers:c1"))
	assert.Zero(t, guard.Size())

	ok, err = guard.Claim(ctx, "webhook:t1:customers:c1", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	assert.NoError(t, guard.Release(ctx, "never-claimed"))
}

func TestInMemoryDebounceGuard_ConcurrentClaims(t *testing.T) {
	guard := NewInMemoryDebounceGuard()
	defer guard.Close()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		winners int
	)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := guard.Claim(context.Background(), "same-key", time.Minute)
			if err == nil && ok {
				mu.Lock()
				winners++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, winners)
}

func TestInMemoryDebounceGuard_Cleanup(t *testing.T) {
	guard := NewInMemoryDebounceGuard()
	defer guard.Close()

	now := time.Now()
	guard.now = func() time.Time { return now }
	ctx := context.Background()

	_, _ = guard.Claim(ctx, "short", time.Second)
	_, _ = guard.Claim(ctx, "long", time.Hour)
	require.Equal(t, 2, guard.Size())

	now = now.Add(2 * time.Second)
	guard.cleanup()

	assert.Equal(t, 1, guard.Size())
}

func TestInMemoryDebounceGuard_CloseIsIdempotent(t *testing.T) {
	guard := NewInMemoryDebounceGuard()
	assert.NoError(t, guard.Close())
	assert.NoError(t, guard.Close())
}
