// ABOUTME: Freshness tracker decides whether a cached value is due for a refresh
// ABOUTME: Timestamps live next to the value under key + "/updated"

package freshness

import (
	"context"
	"errors"
	"time"

	"newhackers-api/core/domain"
	"newhackers-api/core/interfaces"
)

// DefaultInterval is how long a cached value stays fresh.
const DefaultInterval = 30 * time.Second

// TimestampLayout is the format of stored refresh timestamps.
const TimestampLayout = time.RFC3339Nano

// Tracker reads and formats refresh timestamps.
type Tracker struct {
	store    interfaces.Store
	interval time.Duration
	now      func() time.Time
}

// NewTracker creates a tracker considering values older than interval stale.
func NewTracker(store interfaces.Store, interval time.Duration) *Tracker {
	return &Tracker{
		store:    store,
		interval: interval,
		now:      time.Now,
	}
}

// IsStale reports whether key needs a refresh. A missing or unreadable
// timestamp counts as stale.
func (t *Tracker) IsStale(ctx context.Context, key string) (bool, error) {
	raw, err := t.store.Get(ctx, domain.UpdatedKey(key))
	if errors.Is(err, interfaces.ErrCacheMiss) {
		return true, nil
	}
	if err != nil {
		return false, err
	}

	updated, err := time.Parse(TimestampLayout, string(raw))
	if err != nil {
		return true, nil
	}
	return t.now().Sub(updated) >= t.interval, nil
}

// Stamp returns the entries that store value under key together with the
// current time, ready for an atomic Store.SetMulti.
func (t *Tracker) Stamp(key string, value []byte) map[string][]byte {
	return map[string][]byte{
		key:                    value,
		domain.UpdatedKey(key): []byte(t.now().UTC().Format(TimestampLayout)),
	}
}

// Interval returns the configured refresh interval.
func (t *Tracker) Interval() time.Duration {
	return t.interval
}
