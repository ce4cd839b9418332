// ABOUTME: SQLite-based store implementation for persistent single-node caching
// ABOUTME: Provides a file-based cache that survives application restarts

package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"newhackers-api/core/interfaces"
)

const maxKeyLength = 255

// Client implements interfaces.Store using SQLite
type Client struct {
	db       *sql.DB
	filePath string
	now      func() time.Time
	stop     chan struct{}
	once     sync.Once
}

// NewSQLiteCache creates a new SQLite store. Use ":memory:" for a throwaway
// database.
func NewSQLiteCache(filePath string) (*Client, error) {
	if filePath == "" {
		filePath = "cache.db"
	}

	db, err := sql.Open("sqlite3", filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	// One connection serializes writers and keeps ":memory:" databases shared
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to SQLite database: %w", err)
	}

	client := &Client{
		db:       db,
		filePath: filePath,
		now:      time.Now,
		stop:     make(chan struct{}),
	}

	if err := client.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	go client.cleanupRoutine(5 * time.Minute)

	return client, nil
}

// initSchema creates the cache table if it doesn't exist. A NULL expiry
// means the entry never expires.
func (c *Client) initSchema() error {
	query := `
		CREATE TABLE IF NOT EXISTS cache (
			key TEXT PRIMARY KEY,
			value BLOB NOT NULL,
			expiry INTEGER
		);
		CREATE INDEX IF NOT EXISTS idx_expiry ON cache(expiry);
	`

	_, err := c.db.Exec(query)
	return err
}

func validateKey(key string) error {
	if key == "" {
		return errors.New("key cannot be empty")
	}
	if len(key) > maxKeyLength {
		return fmt.Errorf("key too long: %d bytes (max %d)", len(key), maxKeyLength)
	}
	return nil
}

// expiryFor converts a TTL into the stored column value
func (c *Client) expiryFor(ttl time.Duration) sql.NullInt64 {
	if ttl <= 0 {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: c.now().Add(ttl).UnixNano(), Valid: true}
}

// Get retrieves a live value from the cache
func (c *Client) Get(ctx context.Context, key string) ([]byte, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}

	var value []byte
	query := "SELECT value FROM cache WHERE key = ? AND (expiry IS NULL OR expiry > ?)"
	err := c.db.QueryRowContext(ctx, query, key, c.now().UnixNano()).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, interfaces.ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get value: %w", err)
	}
	return value, nil
}

// Set stores a value in the cache with TTL
func (c *Client) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := validateKey(key); err != nil {
		return err
	}

	query := "INSERT OR REPLACE INTO cache (key, value, expiry) VALUES (?, ?, ?)"
	if _, err := c.db.ExecContext(ctx, query, key, value, c.expiryFor(ttl)); err != nil {
		return fmt.Errorf("failed to set value: %w", err)
	}
	return nil
}

// SetMulti stores all entries without expiry in one transaction
func (c *Client) SetMulti(ctx context.Context, entries map[string][]byte) error {
	for key := range entries {
		if err := validateKey(key); err != nil {
			return err
		}
	}

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for key, value := range entries {
		if _, err := tx.ExecContext(ctx, "INSERT OR REPLACE INTO cache (key, value, expiry) VALUES (?, ?, NULL)", key, value); err != nil {
			return fmt.Errorf("failed to set %s: %w", key, err)
		}
	}
	return tx.Commit()
}

// SetNX stores value only if key is absent or expired
func (c *Client) SetNX(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	if err := validateKey(key); err != nil {
		return false, err
	}

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := c.now().UnixNano()
	if _, err := tx.ExecContext(ctx, "DELETE FROM cache WHERE key = ? AND expiry IS NOT NULL AND expiry <= ?", key, now); err != nil {
		return false, fmt.Errorf("failed to clear expired key: %w", err)
	}

	res, err := tx.ExecContext(ctx, "INSERT OR IGNORE INTO cache (key, value, expiry) VALUES (?, ?, ?)", key, value, c.expiryFor(ttl))
	if err != nil {
		return false, fmt.Errorf("failed to insert key: %w", err)
	}
	inserted, err := res.RowsAffected()
	if err != nil {
		return false, err
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit: %w", err)
	}
	return inserted == 1, nil
}

// Expire sets a new TTL on a live key
func (c *Client) Expire(ctx context.Context, key string, ttl time.Duration) error {
	if err := validateKey(key); err != nil {
		return err
	}

	query := "UPDATE cache SET expiry = ? WHERE key = ? AND (expiry IS NULL OR expiry > ?)"
	if _, err := c.db.ExecContext(ctx, query, c.expiryFor(ttl), key, c.now().UnixNano()); err != nil {
		return fmt.Errorf("failed to set expiry: %w", err)
	}
	return nil
}

// TTL returns the remaining lifetime of key
func (c *Client) TTL(ctx context.Context, key string) (time.Duration, error) {
	if err := validateKey(key); err != nil {
		return 0, err
	}

	now := c.now().UnixNano()
	var expiry sql.NullInt64
	query := "SELECT expiry FROM cache WHERE key = ? AND (expiry IS NULL OR expiry > ?)"
	err := c.db.QueryRowContext(ctx, query, key, now).Scan(&expiry)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, interfaces.ErrCacheMiss
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read expiry: %w", err)
	}

	if !expiry.Valid {
		return interfaces.NoExpiration, nil
	}
	return time.Duration(expiry.Int64 - now), nil
}

// CompareAndDelete deletes key only while it holds expected
func (c *Client) CompareAndDelete(ctx context.Context, key string, expected []byte) (bool, error) {
	if err := validateKey(key); err != nil {
		return false, err
	}

	query := "DELETE FROM cache WHERE key = ? AND value = ? AND (expiry IS NULL OR expiry > ?)"
	res, err := c.db.ExecContext(ctx, query, key, expected, c.now().UnixNano())
	if err != nil {
		return false, fmt.Errorf("failed to delete value: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// Delete removes a value from the cache
func (c *Client) Delete(ctx context.Context, key string) error {
	if err := validateKey(key); err != nil {
		return err
	}

	if _, err := c.db.ExecContext(ctx, "DELETE FROM cache WHERE key = ?", key); err != nil {
		return fmt.Errorf("failed to delete value: %w", err)
	}
	return nil
}

// cleanupRoutine periodically removes expired entries
func (c *Client) cleanupRoutine(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.cleanup()
		case <-c.stop:
			return
		}
	}
}

// cleanup removes expired entries
func (c *Client) cleanup() {
	_, _ = c.db.Exec("DELETE FROM cache WHERE expiry IS NOT NULL AND expiry <= ?", c.now().UnixNano())
}

// Close stops the cleanup routine and closes the database connection
func (c *Client) Close() error {
	c.once.Do(func() { close(c.stop) })
	return c.db.Close()
}

// Stats returns cache statistics
func (c *Client) Stats() (map[string]interface{}, error) {
	stats := make(map[string]interface{})

	var count int
	if err := c.db.QueryRow("SELECT COUNT(*) FROM cache").Scan(&count); err != nil {
		return nil, err
	}
	stats["total_entries"] = count

	var expired int
	err := c.db.QueryRow("SELECT COUNT(*) FROM cache WHERE expiry IS NOT NULL AND expiry <= ?", c.now().UnixNano()).Scan(&expired)
	if err != nil {
		return nil, err
	}
	stats["expired_entries"] = expired
	stats["file_path"] = c.filePath

	return stats, nil
}
