// ABOUTME: Redis store implementation using go-redis client
// ABOUTME: Lock release and multi-key writes run in WATCH/MULTI transactions

package redis

import (
	"bytes"
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"newhackers-api/core/interfaces"
	"newhackers-api/pkg/config"
)

// maxTxRetries bounds optimistic transaction retries under contention
const maxTxRetries = 10

// ErrTxContention is returned when a watched key kept changing
var ErrTxContention = errors.New("redis: transaction aborted by concurrent writers")

// RedisCache implements interfaces.Store using Redis
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache creates a new Redis store and checks the connection
func NewRedisCache(cfg config.RedisConfig) (*RedisCache, error) {
	if cfg.Address == "" {
		return nil, errors.New("redis address cannot be empty")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}

	return &RedisCache{
		client: client,
	}, nil
}

// NewRedisCacheFromClient wraps an existing client
func NewRedisCacheFromClient(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

// Get retrieves a value from Redis
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, interfaces.ErrCacheMiss
	}
	if err != nil {
		return nil, err
	}
	return val, nil
}

// Set stores a value in Redis with the given TTL
func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	// Redis SET with 0 TTL means no expiration
	return c.client.Set(ctx, key, value, ttl).Err()
}

// SetMulti writes all entries in one MULTI/EXEC block
func (c *RedisCache) SetMulti(ctx context.Context, entries map[string][]byte) error {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for key, value := range entries {
			pipe.Set(ctx, key, value, 0)
		}
		return nil
	})
	return err
}

// SetNX stores value only if key does not exist
func (c *RedisCache) SetNX(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	return c.client.SetNX(ctx, key, value, ttl).Result()
}

// Expire sets a TTL on an existing key
func (c *RedisCache) Expire(ctx context.Context, key string, ttl time.Duration) error {
	return c.client.Expire(ctx, key, ttl).Err()
}

// TTL returns the remaining time to live of key
func (c *RedisCache) TTL(ctx context.Context, key string) (time.Duration, error) {
	ttl, err := c.client.TTL(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	// go-redis passes the -1 and -2 markers through unscaled
	switch ttl {
	case -1:
		return interfaces.NoExpiration, nil
	case -2:
		return 0, interfaces.ErrCacheMiss
	}
	return ttl, nil
}

// CompareAndDelete deletes key if it still holds expected. The key is
// watched so a concurrent change aborts the delete and the check is retried.
func (c *RedisCache) CompareAndDelete(ctx context.Context, key string, expected []byte) (bool, error) {
	var deleted bool
	txf := func(tx *redis.Tx) error {
		deleted = false
		current, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return nil
		}
		if err != nil {
			return err
		}
		if !bytes.Equal(current, expected) {
			return nil
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, key)
			return nil
		})
		if err == nil {
			deleted = true
		}
		return err
	}

	for i := 0; i < maxTxRetries; i++ {
		err := c.client.Watch(ctx, txf, key)
		if err == nil {
			return deleted, nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return false, err
	}
	return false, ErrTxContention
}

// Delete removes a key from Redis
func (c *RedisCache) Delete(ctx context.Context, key string) error {
	return c.client.Del(ctx, key).Err()
}

// Ping checks the connection
func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the Redis connection
func (c *RedisCache) Close() error {
	return c.client.Close()
}
