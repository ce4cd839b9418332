// ABOUTME: Refresh worker runs cache refresh tasks on a fixed pool of goroutines
// ABOUTME: Scheduling never blocks the request path and drops keys that are already queued

package workers

import (
	"context"
	"sync"
	"time"

	"newhackers-api/core/domain"
	"newhackers-api/core/interfaces"
)

// RefreshWorker manages background refresh processing
type RefreshWorker struct {
	refresher   interfaces.Refresher
	logger      interfaces.Logger
	jobQueue    chan domain.RefreshTask
	maxWorkers  int
	taskTimeout time.Duration
	pending     map[string]struct{}
	wg          sync.WaitGroup
	ctx         context.Context
	cancel      context.CancelFunc
	mu          sync.Mutex
	running     bool
}

// WorkerConfig holds configuration for the refresh worker
type WorkerConfig struct {
	MaxWorkers  int
	QueueSize   int
	TaskTimeout time.Duration
}

// DefaultWorkerConfig returns the default worker configuration
func DefaultWorkerConfig() WorkerConfig {
	return WorkerConfig{
		MaxWorkers:  4,
		QueueSize:   100,
		TaskTimeout: time.Minute,
	}
}

// NewRefreshWorker creates a new refresh worker
func NewRefreshWorker(refresher interfaces.Refresher, logger interfaces.Logger, config WorkerConfig) *RefreshWorker {
	defaults := DefaultWorkerConfig()
	if config.MaxWorkers <= 0 {
		config.MaxWorkers = defaults.MaxWorkers
	}
	if config.QueueSize <= 0 {
		config.QueueSize = defaults.QueueSize
	}
	if config.TaskTimeout <= 0 {
		config.TaskTimeout = defaults.TaskTimeout
	}

	return &RefreshWorker{
		refresher:   refresher,
		logger:      interfaces.LoggerOrNop(logger),
		jobQueue:    make(chan domain.RefreshTask, config.QueueSize),
		maxWorkers:  config.MaxWorkers,
		taskTimeout: config.TaskTimeout,
		pending:     make(map[string]struct{}),
	}
}

// Start starts the worker pool
func (rw *RefreshWorker) Start() error {
	rw.mu.Lock()
	defer rw.mu.Unlock()

	if rw.running {
		return nil
	}

	rw.ctx, rw.cancel = context.WithCancel(context.Background())
	for i := 0; i < rw.maxWorkers; i++ {
		rw.wg.Add(1)
		go rw.run(i)
	}

	rw.running = true
	return nil
}

// Stop stops the worker pool and waits for running tasks. Queued tasks that
// have not started are dropped.
func (rw *RefreshWorker) Stop() error {
	rw.mu.Lock()
	if !rw.running {
		rw.mu.Unlock()
		return nil
	}
	rw.running = false
	rw.cancel()
	rw.mu.Unlock()

	rw.wg.Wait()

	rw.mu.Lock()
drain:
	for {
		select {
		case <-rw.jobQueue:
		default:
			break drain
		}
	}
	rw.pending = make(map[string]struct{})
	rw.mu.Unlock()
	return nil
}

// Schedule queues a refresh without waiting. A task for a key that is
// already queued or running is accepted and dropped.
func (rw *RefreshWorker) Schedule(_ context.Context, task domain.RefreshTask) error {
	rw.mu.Lock()
	defer rw.mu.Unlock()

	if !rw.running {
		return ErrWorkerNotRunning
	}

	key := task.Resource.Key
	if _, ok := rw.pending[key]; ok {
		return nil
	}

	select {
	case rw.jobQueue <- task:
		rw.pending[key] = struct{}{}
		return nil
	default:
		return ErrQueueFull
	}
}

// Pending returns the number of queued or running tasks
func (rw *RefreshWorker) Pending() int {
	rw.mu.Lock()
	defer rw.mu.Unlock()
	return len(rw.pending)
}

// run is the main loop for each worker
func (rw *RefreshWorker) run(id int) {
	defer rw.wg.Done()

	for {
		select {
		case task := <-rw.jobQueue:
			rw.process(id, task)
		case <-rw.ctx.Done():
			return
		}
	}
}

func (rw *RefreshWorker) process(id int, task domain.RefreshTask) {
	defer rw.done(task.Resource.Key)

	ctx, cancel := context.WithTimeout(rw.ctx, rw.taskTimeout)
	defer cancel()

	if err := rw.refresher.Refresh(ctx, task); err != nil {
		rw.logger.Error("Background refresh failed", map[string]interface{}{
			"worker": id,
			"key":    task.Resource.Key,
			"path":   task.Resource.Path,
			"error":  err.Error(),
		})
	}
}

func (rw *RefreshWorker) done(key string) {
	rw.mu.Lock()
	delete(rw.pending, key)
	rw.mu.Unlock()
}

// Error definitions
var (
	ErrWorkerNotRunning = &WorkerError{Message: "worker pool is not running"}
	ErrQueueFull        = &WorkerError{Message: "job queue is full"}
)

// WorkerError represents a worker-specific error
type WorkerError struct {
	Message string
}

func (e *WorkerError) Error() string {
	return e.Message
}
