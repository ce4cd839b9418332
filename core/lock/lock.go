// ABOUTME: Distributed refresh lock built on the shared store's set-if-absent and compare-and-delete
// ABOUTME: Leases bound how long a crashed holder can block other refreshers

package lock

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"newhackers-api/core/interfaces"
)

// DefaultPollInterval is how often a contended lock is retried.
const DefaultPollInterval = 10 * time.Millisecond

// Locker acquires and releases named locks in a Store.
type Locker struct {
	store        interfaces.Store
	pollInterval time.Duration
	now          func() time.Time
}

// NewLocker creates a locker polling at pollInterval, or DefaultPollInterval
// when pollInterval is not positive.
func NewLocker(store interfaces.Store, pollInterval time.Duration) *Locker {
	if pollInterval <= 0 {
		pollInterval = DefaultPollInterval
	}
	return &Locker{
		store:        store,
		pollInterval: pollInterval,
		now:          time.Now,
	}
}

// NewOwnerToken returns a token unique to one acquisition.
func NewOwnerToken() string {
	return fmt.Sprintf("%d:%s", os.Getpid(), uuid.NewString())
}

// Acquire tries to take lockKey for owner until acquireTimeout elapses. The
// lock expires on its own after lease. A holder without expiry, left by a
// crashed process, gets the lease applied so it eventually frees up.
// Returns false without error when the lock stayed busy.
func (l *Locker) Acquire(ctx context.Context, lockKey, owner string, acquireTimeout, lease time.Duration) (bool, error) {
	deadline := l.now().Add(acquireTimeout)

	ticker := time.NewTicker(l.pollInterval)
	defer ticker.Stop()

	for {
		ok, err := l.store.SetNX(ctx, lockKey, []byte(owner), lease)
		if err != nil {
			return false, fmt.Errorf("acquiring %s: %w", lockKey, err)
		}
		if ok {
			return true, nil
		}

		if err := l.repairOrphan(ctx, lockKey, lease); err != nil {
			return false, err
		}

		if !l.now().Before(deadline) {
			return false, nil
		}

		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case <-ticker.C:
		}
	}
}

func (l *Locker) repairOrphan(ctx context.Context, lockKey string, lease time.Duration) error {
	ttl, err := l.store.TTL(ctx, lockKey)
	if errors.Is(err, interfaces.ErrCacheMiss) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading lease of %s: %w", lockKey, err)
	}
	if ttl == interfaces.NoExpiration {
		if err := l.store.Expire(ctx, lockKey, lease); err != nil {
			return fmt.Errorf("repairing lease of %s: %w", lockKey, err)
		}
	}
	return nil
}

// Release deletes lockKey if owner still holds it. False means the lease ran
// out and the lock was lost, possibly to another holder.
func (l *Locker) Release(ctx context.Context, lockKey, owner string) (bool, error) {
	ok, err := l.store.CompareAndDelete(ctx, lockKey, []byte(owner))
	if err != nil {
		return false, fmt.Errorf("releasing %s: %w", lockKey, err)
	}
	return ok, nil
}
