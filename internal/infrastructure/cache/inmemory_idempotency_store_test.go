package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryIdempotencyStore_MarkProcessed(t *testing.T) {
	store := NewInMemoryIdempotencyStore(time.Minute)
	defer store.Close()
	ctx := context.Background()

	first, err := store.MarkProcessed(ctx, "evt_1", time.Hour)
	require.NoError(t, err)
	assert.True(t, first)

	again, err := store.MarkProcessed(ctx, "evt_1", time.Hour)
	require.NoError(t, err)
	assert.False(t, again)

	done, err := store.IsProcessed(ctx, "evt_1")
	require.NoError(t, err)
	assert.True(t, done)

	done, err = store.IsProcessed(ctx, "evt_2")
	require.NoError(t, err)
	assert.False(t, done)
}

func TestInMemoryIdempotencyStore_ExpiryAndForget(t *testing.T) {
	store := NewInMemoryIdempotencyStore(time.Minute)
	defer store.Close()
	ctx := context.Background()

	_, err := store.MarkProcessed(ctx, "short", time.Millisecond)
	require.NoError(t, err)
	time.Sleep(5 * time.Millisecond)

	again, err := store.MarkProcessed(ctx, "short", time.Hour)
	require.NoError(t, err)
	assert.True(t, again, "an expired key can be marked again")

	require.NoError(t, store.Forget(ctx, "short"))
	done, err := store.IsProcessed(ctx, "short")
	require.NoError(t, err)
	assert.False(t, done)
}

func TestInMemoryIdempotencyStore_Janitor(t *testing.T) {
	store := NewInMemoryIdempotencyStore(10 * time.Millisecond)
	defer store.Close()

	_, err := store.MarkProcessed(context.Background(), "gone", time.Millisecond)
	require.NoError(t, err)

	assert.Eventually(t, func() bool { return store.Size() == 0 }, time.Second, 10*time.Millisecond)
}

func TestInMemoryIdempotencyStore_ConcurrentMark(t *testing.T) {
	store := NewInMemoryIdempotencyStore(time.Minute)
	defer store.Close()

	var winners int32
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, _ := store.MarkProcessed(context.Background(), "evt_race", time.Hour); ok {
				atomic.AddInt32(&winners, 1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), winners)
}

func TestInMemoryIdempotencyStore_CloseTwice(t *testing.T) {
	store := NewInMemoryIdempotencyStore(time.Minute)
	assert.NoError(t, store.Close())
	assert.NoError(t, store.Close())
}
