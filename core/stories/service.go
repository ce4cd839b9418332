// ABOUTME: Cache-aside story service serving listing and item pages from the shared store
// ABOUTME: Stale entries are served immediately while a background refresh is scheduled

package stories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"newhackers-api/core/domain"
	coreerrors "newhackers-api/core/errors"
	"newhackers-api/core/fetcher"
	"newhackers-api/core/freshness"
	"newhackers-api/core/interfaces"
	"newhackers-api/core/lock"
	"newhackers-api/core/parser"

	"golang.org/x/sync/singleflight"
)

// Config holds the refresh lock settings.
type Config struct {
	// LockAcquireTimeout bounds how long a refresh waits for the lock.
	LockAcquireTimeout time.Duration

	// LockLease is how long a held lock survives a crashed holder.
	LockLease time.Duration
}

// DefaultConfig returns the default refresh lock settings.
func DefaultConfig() Config {
	return Config{
		LockAcquireTimeout: 10 * time.Second,
		LockLease:          10 * time.Second,
	}
}

// Options carries the collaborators of a Service.
type Options struct {
	Fetcher  *fetcher.Fetcher
	Parser   *parser.Parser
	Tracker  *freshness.Tracker
	Locker   *lock.Locker
	Resolver PageResolver
	Config   Config
}

// Service implements cache-aside reads of upstream pages.
type Service struct {
	store     interfaces.Store
	logger    interfaces.Logger
	fetcher   *fetcher.Fetcher
	parser    *parser.Parser
	tracker   *freshness.Tracker
	locker    *lock.Locker
	resolver  PageResolver
	scheduler interfaces.Scheduler
	config    Config
	now       func() time.Time

	// misses collapses concurrent cold misses of one key in this process.
	misses singleflight.Group
}

// NewService creates a story service. Without a scheduler stale entries are
// served as they are until one is set.
func NewService(deps interfaces.Dependencies, opts Options) *Service {
	s := &Service{
		store:    deps.Store,
		logger:   interfaces.LoggerOrNop(deps.Logger),
		fetcher:  opts.Fetcher,
		parser:   opts.Parser,
		tracker:  opts.Tracker,
		locker:   opts.Locker,
		resolver: opts.Resolver,
		config:   opts.Config,
		now:      time.Now,
	}

	if s.parser == nil {
		s.parser = parser.NewParser()
	}
	if s.tracker == nil {
		s.tracker = freshness.NewTracker(deps.Store, freshness.DefaultInterval)
	}
	if s.locker == nil {
		s.locker = lock.NewLocker(deps.Store, lock.DefaultPollInterval)
	}
	if s.resolver == nil {
		s.resolver = DefaultResolver{}
	}
	defaults := DefaultConfig()
	if s.config.LockAcquireTimeout <= 0 {
		s.config.LockAcquireTimeout = defaults.LockAcquireTimeout
	}
	if s.config.LockLease <= 0 {
		s.config.LockLease = defaults.LockLease
	}
	return s
}

// SetScheduler sets the scheduler used for background refreshes.
func (s *Service) SetScheduler(scheduler interfaces.Scheduler) {
	s.scheduler = scheduler
}

// GetStories returns a listing page.
func (s *Service) GetStories(ctx context.Context, pageID string) (*domain.StoryPage, error) {
	res, err := s.resolver.Listing(pageID)
	if err != nil {
		return nil, err
	}
	return get[domain.StoryPage](ctx, s, res)
}

// GetItem returns a story with its comments.
func (s *Service) GetItem(ctx context.Context, itemID string) (*domain.ItemDetail, error) {
	res, err := s.resolver.Item(itemID)
	if err != nil {
		return nil, err
	}
	return get[domain.ItemDetail](ctx, s, res)
}

// get serves res from the store, falling back to the upstream on a miss.
func get[T any](ctx context.Context, s *Service, res domain.Resource) (*T, error) {
	cached, err := s.store.Get(ctx, res.Key)
	switch {
	case err == nil:
		var value T
		jsonErr := json.Unmarshal(cached, &value)
		if jsonErr == nil {
			s.scheduleIfStale(ctx, res)
			return &value, nil
		}
		s.logger.Warn("Discarding unreadable cache entry", map[string]interface{}{
			"key":   res.Key,
			"error": jsonErr.Error(),
		})
	case errors.Is(err, interfaces.ErrCacheMiss):
	default:
		s.logger.Warn("Cache read failed, loading from upstream", map[string]interface{}{
			"key":   res.Key,
			"error": err.Error(),
		})
	}

	data, err := s.loadMiss(ctx, res)
	if err != nil {
		return nil, err
	}

	var value T
	if err := json.Unmarshal(data, &value); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", res.Key, err)
	}
	return &value, nil
}

// loadMiss loads res from the upstream and caches it. Concurrent callers for
// the same key share one load, which outlives the caller that started it.
func (s *Service) loadMiss(ctx context.Context, res domain.Resource) ([]byte, error) {
	v, err, _ := s.misses.Do(res.Key, func() (interface{}, error) {
		loadCtx := context.WithoutCancel(ctx)

		data, err := s.load(loadCtx, res)
		if err != nil {
			return nil, err
		}
		if err := s.store.SetMulti(loadCtx, s.tracker.Stamp(res.Key, data)); err != nil {
			s.logger.Warn("Failed to cache page", map[string]interface{}{
				"key":   res.Key,
				"error": err.Error(),
			})
		}
		return data, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

func (s *Service) scheduleIfStale(ctx context.Context, res domain.Resource) {
	stale, err := s.tracker.IsStale(ctx, res.Key)
	if err != nil {
		s.logger.Warn("Failed to check freshness", map[string]interface{}{
			"key":   res.Key,
			"error": err.Error(),
		})
		return
	}
	if !stale || s.scheduler == nil {
		return
	}

	if err := s.scheduler.Schedule(ctx, domain.RefreshTask{Resource: res}); err != nil {
		s.logger.Warn("Failed to schedule refresh", map[string]interface{}{
			"key":   res.Key,
			"error": err.Error(),
		})
	}
}

// load fetches and parses res, returning its serialized form.
func (s *Service) load(ctx context.Context, res domain.Resource) ([]byte, error) {
	resp, err := s.fetcher.Fetch(ctx, res.Path, fetcher.FetchOptions{})
	if err != nil {
		return nil, err
	}

	var value interface{}
	switch res.Kind {
	case domain.KindListing:
		value, err = s.parser.ParseListingPage(resp.Body, s.now())
	case domain.KindItem:
		value, err = s.parser.ParseItemPage(resp.Body, s.now())
	default:
		return nil, &coreerrors.ValidationError{Field: "kind", Message: fmt.Sprintf("unsupported resource kind %s", res.Kind)}
	}
	if err != nil {
		s.logger.Error("Failed to parse upstream page", map[string]interface{}{
			"path":  res.Path,
			"kind":  res.Kind.String(),
			"error": err.Error(),
		})
		return nil, err
	}

	data, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("encoding %s: %w", res.Key, err)
	}
	return data, nil
}

// Refresh reloads a cached resource under its distributed lock. A busy lock
// or an entry that turned fresh in the meantime is not an error.
func (s *Service) Refresh(ctx context.Context, task domain.RefreshTask) error {
	res := task.Resource
	lockKey := domain.LockKey(res.Key)
	owner := lock.NewOwnerToken()

	acquired, err := s.locker.Acquire(ctx, lockKey, owner, s.config.LockAcquireTimeout, s.config.LockLease)
	if err != nil {
		return err
	}
	if !acquired {
		s.logger.Debug("Refresh already running elsewhere", map[string]interface{}{
			"key": res.Key,
		})
		return nil
	}
	defer s.release(ctx, lockKey, owner)

	stale, err := s.tracker.IsStale(ctx, res.Key)
	if err != nil {
		return err
	}
	if !stale {
		return nil
	}

	start := time.Now()
	data, err := s.load(ctx, res)
	if err != nil {
		return err
	}
	if err := s.store.SetMulti(ctx, s.tracker.Stamp(res.Key, data)); err != nil {
		return fmt.Errorf("storing %s: %w", res.Key, err)
	}

	s.logger.Info("Refreshed cache entry", map[string]interface{}{
		"key":         res.Key,
		"duration_ms": time.Since(start).Milliseconds(),
	})
	return nil
}

func (s *Service) release(ctx context.Context, lockKey, owner string) {
	released, err := s.locker.Release(context.WithoutCancel(ctx), lockKey, owner)
	if err != nil {
		s.logger.Warn("Failed to release refresh lock", map[string]interface{}{
			"lock":  lockKey,
			"error": err.Error(),
		})
		return
	}
	if !released {
		s.logger.Warn("Refresh lock expired before release", map[string]interface{}{
			"lock":  lockKey,
			"lease": s.config.LockLease.String(),
		})
	}
}
