// ABOUTME: In-memory store implementation backed by patrickmn/go-cache
// ABOUTME: A mutex makes the compound lock and multi-key operations atomic within one process

package memory

import (
	"bytes"
	"context"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"newhackers-api/core/interfaces"
)

const cleanupInterval = time.Minute

// MemoryCache implements interfaces.Store for a single process
type MemoryCache struct {
	items *gocache.Cache
	mu    sync.RWMutex
}

// NewMemoryCache creates a new in-memory store. Entries never expire unless
// a TTL is given.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		items: gocache.New(gocache.NoExpiration, cleanupInterval),
	}
}

// expiration maps the Store convention (0 = no expiry) onto go-cache
func expiration(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return gocache.NoExpiration
	}
	return ttl
}

func copyBytes(value []byte) []byte {
	out := make([]byte, len(value))
	copy(out, value)
	return out
}

// Get retrieves a value from the cache
func (c *MemoryCache) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	value, ok := c.items.Get(key)
	if !ok {
		return nil, interfaces.ErrCacheMiss
	}
	return copyBytes(value.([]byte)), nil
}

// Set stores a value in the cache with the given TTL
func (c *MemoryCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.items.Set(key, copyBytes(value), expiration(ttl))
	return nil
}

// SetMulti stores every entry without expiry while holding the write lock
func (c *MemoryCache) SetMulti(ctx context.Context, entries map[string][]byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for key, value := range entries {
		c.items.Set(key, copyBytes(value), gocache.NoExpiration)
	}
	return nil
}

// SetNX stores value only when key is absent or expired
func (c *MemoryCache) SetNX(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.items.Add(key, copyBytes(value), expiration(ttl)); err != nil {
		return false, nil
	}
	return true, nil
}

// Expire sets a new TTL on an existing key
func (c *MemoryCache) Expire(ctx context.Context, key string, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	value, ok := c.items.Get(key)
	if !ok {
		return nil
	}
	c.items.Set(key, value, expiration(ttl))
	return nil
}

// TTL returns the remaining lifetime of key
func (c *MemoryCache) TTL(ctx context.Context, key string) (time.Duration, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	_, expiresAt, ok := c.items.GetWithExpiration(key)
	if !ok {
		return 0, interfaces.ErrCacheMiss
	}
	if expiresAt.IsZero() {
		return interfaces.NoExpiration, nil
	}
	return time.Until(expiresAt), nil
}

// CompareAndDelete removes key only while it still holds expected
func (c *MemoryCache) CompareAndDelete(ctx context.Context, key string, expected []byte) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	value, ok := c.items.Get(key)
	if !ok || !bytes.Equal(value.([]byte), expected) {
		return false, nil
	}
	c.items.Delete(key)
	return true, nil
}

// Delete removes a key from the cache
func (c *MemoryCache) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.items.Delete(key)
	return nil
}
