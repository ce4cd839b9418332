package stories

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"newhackers-api/core/domain"
	"newhackers-api/core/errors"
	"newhackers-api/core/fetcher"
	"newhackers-api/core/freshness"
	"newhackers-api/core/interfaces"
	"newhackers-api/core/lock"
	"newhackers-api/core/parser"
	"newhackers-api/core/workers"
	"newhackers-api/infrastructure/cache/memory"
)

const baseURL = "https://news.example.com/"

type testEnv struct {
	service   *Service
	store     *memory.MemoryCache
	client    *countingHTTPClient
	scheduler *recordingScheduler
	logger    *recordingLogger
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store := memory.NewMemoryCache()
	client := &countingHTTPClient{bodies: map[string]string{
		baseURL:                         mustFixture("front_page.html"),
		baseURL + "item?id=4705067":     mustFixture("comments.html"),
		baseURL + "item?id=4706068":     mustFixture("no_comments.html"),
		baseURL + "x?fnid=4AVKeJz9TP":   mustFixture("front_page.html"),
		baseURL + "item?id=999":         "No such item.",
		baseURL + "item?id=500":         "<html><body>maintenance</body></html>",
		baseURL + "x?fnid=expired00000": "Unknown or expired link.",
	}}
	logger := &recordingLogger{}
	deps := interfaces.Dependencies{Store: store, HTTPClient: client, Logger: logger}

	service := NewService(deps, Options{
		Fetcher: fetcher.NewFetcher(baseURL, deps),
		Parser:  parser.NewParser(),
		Tracker: freshness.NewTracker(store, 30*time.Second),
		Locker:  lock.NewLocker(store, time.Millisecond),
		Config:  Config{LockAcquireTimeout: 20 * time.Millisecond, LockLease: time.Second},
	})
	scheduler := &recordingScheduler{}
	service.SetScheduler(scheduler)

	return &testEnv{service: service, store: store, client: client, scheduler: scheduler, logger: logger}
}

// expire makes the cached value of key stale.
func (e *testEnv) expire(t *testing.T, key string) {
	t.Helper()
	old := time.Now().Add(-time.Hour).UTC().Format(freshness.TimestampLayout)
	require.NoError(t, e.store.Set(context.Background(), domain.UpdatedKey(key), []byte(old), 0))
}

func TestGetStories_MissFetchesAndStores(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	page, err := env.service.GetStories(ctx, "")
	require.NoError(t, err)
	require.Len(t, page.Stories, 30)
	assert.Equal(t, "Dummy Title", page.Stories[0].Title)
	assert.Equal(t, "4AVKeJz9TP", *page.More)
	assert.Equal(t, 1, env.client.count())

	_, err = env.store.Get(ctx, "/pages/")
	assert.NoError(t, err)
	_, err = env.store.Get(ctx, "/pages//updated")
	assert.NoError(t, err)
}

func TestGetStories_FreshHitSkipsUpstream(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	first, err := env.service.GetStories(ctx, "frontpage")
	require.NoError(t, err)
	second, err := env.service.GetStories(ctx, "")
	require.NoError(t, err)

	assert.Equal(t, 1, env.client.count())
	assert.Empty(t, env.scheduler.scheduled())
	assert.Equal(t, first.Stories[0].Title, second.Stories[0].Title)
	assert.True(t, first.Stories[0].PostedAt.Equal(second.Stories[0].PostedAt))
}

func TestGetStories_StaleHitServesAndSchedules(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.service.GetStories(ctx, "4AVKeJz9TP")
	require.NoError(t, err)
	env.expire(t, "/pages/4AVKeJz9TP")

	page, err := env.service.GetStories(ctx, "4AVKeJz9TP")
	require.NoError(t, err)
	assert.Len(t, page.Stories, 30)
	assert.Equal(t, 1, env.client.count(), "stale reads must not block on the upstream")

	tasks := env.scheduler.scheduled()
	require.Len(t, tasks, 1)
	assert.Equal(t, "/pages/4AVKeJz9TP", tasks[0].Resource.Key)
	assert.Equal(t, "x?fnid=4AVKeJz9TP", tasks[0].Resource.Path)
}

func TestGetStories_ValueWithoutTimestampIsServedOnce(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	require.NoError(t, env.store.Set(ctx, "/pages/ask", []byte(`{"stories":[],"more":"abc"}`), 0))

	page, err := env.service.GetStories(ctx, "ask")
	require.NoError(t, err)
	assert.Empty(t, page.Stories)
	assert.Equal(t, "abc", *page.More)
	assert.Equal(t, 0, env.client.count())
	assert.Len(t, env.scheduler.scheduled(), 1)
}

func TestGetStories_ScheduleFailureStillServesStale(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.service.GetStories(ctx, "")
	require.NoError(t, err)
	env.expire(t, "/pages/")
	env.scheduler.err = workers.ErrQueueFull

	page, err := env.service.GetStories(ctx, "")
	require.NoError(t, err)
	assert.Len(t, page.Stories, 30)
	assert.True(t, env.logger.warned("Failed to schedule refresh"))
}

func TestGetStories_CorruptEntryIsReloaded(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	require.NoError(t, env.store.Set(ctx, "/pages/", []byte("not json"), 0))

	page, err := env.service.GetStories(ctx, "")
	require.NoError(t, err)
	assert.Len(t, page.Stories, 30)
	assert.Equal(t, 1, env.client.count())
	assert.True(t, env.logger.warned("Discarding unreadable cache entry"))
}

func TestGetStories_Errors(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.service.GetStories(ctx, "expired00000")
	assert.True(t, errors.IsNotFound(err))

	_, err = env.service.GetStories(ctx, "bad cursor")
	assert.True(t, errors.IsValidation(err))

	_, err = env.store.Get(ctx, "/pages/expired00000")
	assert.ErrorIs(t, err, interfaces.ErrCacheMiss, "failed loads must not be cached")
}

func TestGetItem(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	item, err := env.service.GetItem(ctx, "4705067")
	require.NoError(t, err)
	assert.Equal(t, "woz", *item.Author)
	require.Len(t, item.Comments, 3)
	assert.Equal(t, "seldo", item.Comments[0].Author)

	empty, err := env.service.GetItem(ctx, "4706068")
	require.NoError(t, err)
	assert.Equal(t, 0, *empty.CommentsCount)
	assert.Empty(t, empty.Comments)

	_, err = env.store.Get(ctx, "/comments/4705067")
	assert.NoError(t, err)
}

func TestGetItem_Errors(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.service.GetItem(ctx, "999")
	assert.True(t, errors.IsNotFound(err))

	_, err = env.service.GetItem(ctx, "500")
	assert.True(t, errors.IsParse(err))

	_, err = env.service.GetItem(ctx, "abc")
	assert.True(t, errors.IsValidation(err))
	assert.Equal(t, 2, env.client.count())
}

func TestRefresh_UpdatesStaleEntry(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.service.GetItem(ctx, "4705067")
	require.NoError(t, err)
	env.expire(t, "/comments/4705067")

	res, _ := DefaultResolver{}.Item("4705067")
	require.NoError(t, env.service.Refresh(ctx, domain.RefreshTask{Resource: res}))
	assert.Equal(t, 2, env.client.count())

	stale, err := freshness.NewTracker(env.store, 30*time.Second).IsStale(ctx, "/comments/4705067")
	require.NoError(t, err)
	assert.False(t, stale)

	_, err = env.store.Get(ctx, "/lock/comments/4705067")
	assert.ErrorIs(t, err, interfaces.ErrCacheMiss, "lock must be released")
}

func TestRefresh_SkipsFreshEntry(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.service.GetStories(ctx, "")
	require.NoError(t, err)

	res, _ := DefaultResolver{}.Listing("")
	require.NoError(t, env.service.Refresh(ctx, domain.RefreshTask{Resource: res}))
	assert.Equal(t, 1, env.client.count())
}

func TestRefresh_SkipsWhenLockIsHeld(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.service.GetStories(ctx, "")
	require.NoError(t, err)
	env.expire(t, "/pages/")
	require.NoError(t, env.store.Set(ctx, "/lock/pages/", []byte("other"), time.Minute))

	res, _ := DefaultResolver{}.Listing("")
	require.NoError(t, env.service.Refresh(ctx, domain.RefreshTask{Resource: res}))
	assert.Equal(t, 1, env.client.count())

	holder, err := env.store.Get(ctx, "/lock/pages/")
	require.NoError(t, err)
	assert.Equal(t, "other", string(holder))
}

func TestRefresh_FailureKeepsExistingEntry(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.service.GetStories(ctx, "")
	require.NoError(t, err)
	before, _ := env.store.Get(ctx, "/pages/")
	env.expire(t, "/pages/")
	env.client.bodies[baseURL] = "<html><body>We're restarting</body></html>"

	res, _ := DefaultResolver{}.Listing("")
	err = env.service.Refresh(ctx, domain.RefreshTask{Resource: res})
	assert.True(t, errors.IsParse(err))

	after, err := env.store.Get(ctx, "/pages/")
	require.NoError(t, err)
	assert.Equal(t, before, after)

	_, err = env.store.Get(ctx, "/lock/pages/")
	assert.ErrorIs(t, err, interfaces.ErrCacheMiss)
}

func TestRefresh_WarnsOnLostLock(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.service.config.LockLease = 10 * time.Millisecond
	env.client.delay = 40 * time.Millisecond

	res, _ := DefaultResolver{}.Item("4706068")
	require.NoError(t, env.service.Refresh(ctx, domain.RefreshTask{Resource: res}))

	assert.True(t, env.logger.warned("Refresh lock expired before release"))
}

func TestStaleReadRefreshesThroughWorker(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	worker := workers.NewRefreshWorker(env.service, env.logger, workers.WorkerConfig{MaxWorkers: 2})
	require.NoError(t, worker.Start())
	defer worker.Stop()
	env.service.SetScheduler(worker)

	_, err := env.service.GetItem(ctx, "4705067")
	require.NoError(t, err)
	env.expire(t, "/comments/4705067")

	for i := 0; i < 5; i++ {
		_, err := env.service.GetItem(ctx, "4705067")
		require.NoError(t, err)
	}

	tracker := freshness.NewTracker(env.store, 30*time.Second)
	require.Eventually(t, func() bool {
		stale, err := tracker.IsStale(ctx, "/comments/4705067")
		return err == nil && !stale
	}, time.Second, 5*time.Millisecond)
	require.Eventually(t, func() bool { return worker.Pending() == 0 }, time.Second, 5*time.Millisecond)

	assert.Equal(t, 2, env.client.count(), "one miss and one deduplicated refresh")
}

func TestGetStories_ConcurrentMissesShareOneLoad(t *testing.T) {
	env := newTestEnv(t)
	env.client.delay = 50 * time.Millisecond

	var wg sync.WaitGroup
	errs := make(chan error, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			page, err := env.service.GetStories(context.Background(), "")
			if err == nil && len(page.Stories) != 30 {
				err = fmt.Errorf("got %d stories", len(page.Stories))
			}
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
	assert.Equal(t, 1, env.client.count())
}

func TestGetStories_MissSurvivesCallerCancellation(t *testing.T) {
	env := newTestEnv(t)
	env.client.delay = 20 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := env.service.GetStories(ctx, "")
	require.NoError(t, err)

	_, err = env.store.Get(context.Background(), "/pages/")
	assert.NoError(t, err)
}
