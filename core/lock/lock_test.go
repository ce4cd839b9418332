package lock

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"newhackers-api/core/interfaces"
	"newhackers-api/infrastructure/cache/memory"
)

func TestAcquireAndRelease(t *testing.T) {
	store := memory.NewMemoryCache()
	locker := NewLocker(store, time.Millisecond)
	ctx := context.Background()

	ok, err := locker.Acquire(ctx, "/lock/pages/", "a", 50*time.Millisecond, time.Second)
	require.NoError(t, err)
	require.True(t, ok)

	holder, err := store.Get(ctx, "/lock/pages/")
	require.NoError(t, err)
	assert.Equal(t, "a", string(holder))

	ttl, err := store.TTL(ctx, "/lock/pages/")
	require.NoError(t, err)
	assert.True(t, ttl > 0 && ttl <= time.Second)

	released, err := locker.Release(ctx, "/lock/pages/", "a")
	require.NoError(t, err)
	assert.True(t, released)

	_, err = store.Get(ctx, "/lock/pages/")
	assert.ErrorIs(t, err, interfaces.ErrCacheMiss)
}

func TestAcquire_TimesOutWhileHeld(t *testing.T) {
	store := memory.NewMemoryCache()
	locker := NewLocker(store, time.Millisecond)
	ctx := context.Background()

	ok, _ := locker.Acquire(ctx, "/lock/pages/", "a", 0, time.Minute)
	require.True(t, ok)

	start := time.Now()
	ok, err := locker.Acquire(ctx, "/lock/pages/", "b", 30*time.Millisecond, time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)

	holder, _ := store.Get(ctx, "/lock/pages/")
	assert.Equal(t, "a", string(holder))
}

func TestAcquire_WaitsForRelease(t *testing.T) {
	store := memory.NewMemoryCache()
	locker := NewLocker(store, time.Millisecond)
	ctx := context.Background()

	ok, _ := locker.Acquire(ctx, "/lock/pages/", "a", 0, time.Minute)
	require.True(t, ok)

	go func() {
		time.Sleep(20 * time.Millisecond)
		locker.Release(ctx, "/lock/pages/", "a")
	}()

	ok, err := locker.Acquire(ctx, "/lock/pages/", "b", time.Second, time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestAcquire_RepairsOrphanedLock(t *testing.T) {
	store := memory.NewMemoryCache()
	locker := NewLocker(store, time.Millisecond)
	ctx := context.Background()

	// A holder that crashed between set and expire leaves a lock without lease.
	require.NoError(t, store.Set(ctx, "/lock/pages/", []byte("crashed"), 0))

	ok, err := locker.Acquire(ctx, "/lock/pages/", "b", 0, 50*time.Millisecond)
	require.NoError(t, err)
	assert.False(t, ok)

	ttl, err := store.TTL(ctx, "/lock/pages/")
	require.NoError(t, err)
	assert.NotEqual(t, interfaces.NoExpiration, ttl)

	ok, err = locker.Acquire(ctx, "/lock/pages/", "b", time.Second, time.Minute)
	require.NoError(t, err)
	assert.True(t, ok, "lock should free up once the repaired lease runs out")
}

func TestRelease_LostLock(t *testing.T) {
	store := memory.NewMemoryCache()
	locker := NewLocker(store, time.Millisecond)
	ctx := context.Background()

	ok, _ := locker.Acquire(ctx, "/lock/pages/", "a", 0, 10*time.Millisecond)
	require.True(t, ok)
	time.Sleep(30 * time.Millisecond)

	ok, _ = locker.Acquire(ctx, "/lock/pages/", "b", 0, time.Minute)
	require.True(t, ok)

	released, err := locker.Release(ctx, "/lock/pages/", "a")
	require.NoError(t, err)
	assert.False(t, released)

	holder, _ := store.Get(ctx, "/lock/pages/")
	assert.Equal(t, "b", string(holder), "a stale owner must not delete the new holder's lock")
}

func TestAcquire_MutualExclusion(t *testing.T) {
	store := memory.NewMemoryCache()
	locker := NewLocker(store, time.Millisecond)
	ctx := context.Background()

	var inside, maxInside, acquired int32
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			owner := NewOwnerToken()
			ok, err := locker.Acquire(ctx, "/lock/pages/", owner, 2*time.Second, time.Minute)
			if err != nil || !ok {
				return
			}
			atomic.AddInt32(&acquired, 1)
			n := atomic.AddInt32(&inside, 1)
			for {
				m := atomic.LoadInt32(&maxInside)
				if n <= m || atomic.CompareAndSwapInt32(&maxInside, m, n) {
					break
				}
			}
			time.Sleep(2 * time.Millisecond)
			atomic.AddInt32(&inside, -1)
			locker.Release(ctx, "/lock/pages/", owner)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(8), acquired)
	assert.Equal(t, int32(1), maxInside)
}

func TestAcquire_CancelledContext(t *testing.T) {
	store := memory.NewMemoryCache()
	locker := NewLocker(store, time.Millisecond)

	ok, _ := locker.Acquire(context.Background(), "/lock/pages/", "a", 0, time.Minute)
	require.True(t, ok)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	ok, err := locker.Acquire(ctx, "/lock/pages/", "b", time.Minute, time.Minute)
	assert.False(t, ok)
	assert.Error(t, err)
}

func TestNewOwnerToken(t *testing.T) {
	a, b := NewOwnerToken(), NewOwnerToken()
	assert.NotEqual(t, a, b)
	assert.True(t, strings.Contains(a, ":"))
}

func TestNewLocker_DefaultPollInterval(t *testing.T) {
	locker := NewLocker(memory.NewMemoryCache(), 0)
	assert.Equal(t, DefaultPollInterval, locker.pollInterval)
}
