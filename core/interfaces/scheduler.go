// ABOUTME: Scheduler interface decouples the cache-aside layer from background execution
// ABOUTME: Implemented by the in-process refresh worker pool or any external queue

package interfaces

import (
	"context"

	"newhackers-api/core/domain"
)

// Scheduler dispatches a refresh of a cached resource without waiting for it.
type Scheduler interface {
	// Schedule queues task and returns immediately.
	Schedule(ctx context.Context, task domain.RefreshTask) error
}

// Refresher runs a refresh task. Workers call it for every dequeued task.
type Refresher interface {
	Refresh(ctx context.Context, task domain.RefreshTask) error
}
