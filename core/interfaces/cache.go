// Package interfaces defines the core interfaces used throughout the application.
// These interfaces allow for dependency injection and make the code testable.
package interfaces

import (
	"context"
	"errors"
	"time"
)

// ErrCacheMiss is returned by Store implementations when a key does not exist
// or has expired.
var ErrCacheMiss = errors.New("cache: key not found")

// NoExpiration is returned by Store.TTL for keys that exist without an expiry.
const NoExpiration time.Duration = -1

// Store defines the key-value operations the cache-aside layer and the
// refresh lock need from the shared cache.
// Implementations can be Redis, in-memory, SQLite or any other store that can
// provide the atomic operations below.
//
// Example usage:
//
//	ok, err := store.SetNX(ctx, "/lock/pages/", token, 10*time.Second)
//	if err == nil && ok {
//		defer store.CompareAndDelete(ctx, "/lock/pages/", token)
//	}
type Store interface {
	// Get retrieves a value by key.
	// Returns ErrCacheMiss if the key doesn't exist.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value with the given TTL.
	// If ttl is 0, the value is stored indefinitely.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// SetMulti stores all entries without expiry in one atomic step, so that
	// no reader can observe only part of them.
	SetMulti(ctx context.Context, entries map[string][]byte) error

	// SetNX stores value only if key does not exist and reports whether it did.
	// A ttl of 0 stores the key without expiry.
	SetNX(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error)

	// Expire sets a TTL on an existing key. Missing keys are ignored.
	Expire(ctx context.Context, key string, ttl time.Duration) error

	// TTL returns the remaining time to live of key, NoExpiration when it
	// exists without an expiry and ErrCacheMiss when it doesn't exist.
	TTL(ctx context.Context, key string) (time.Duration, error)

	// CompareAndDelete deletes key only if its current value equals expected.
	// The comparison and the delete are atomic with respect to other writers.
	CompareAndDelete(ctx context.Context, key string, expected []byte) (bool, error)

	// Delete removes a value by key.
	// Returns nil if the key doesn't exist.
	Delete(ctx context.Context, key string) error
}
