package workers

import (
	"context"
	"sync"

	"newhackers-api/core/domain"
)

// mockRefresher is a mock implementation of the Refresher interface
type mockRefresher struct {
	refreshFunc func(ctx context.Context, task domain.RefreshTask) error
}

func (m *mockRefresher) Refresh(ctx context.Context, task domain.RefreshTask) error {
	if m.refreshFunc != nil {
		return m.refreshFunc(ctx, task)
	}
	return nil
}

// recordingLogger keeps error messages for assertions
type recordingLogger struct {
	mu     sync.Mutex
	errors []map[string]interface{}
}

func (l *recordingLogger) Debug(string, map[string]interface{}) {}
func (l *recordingLogger) Info(string, map[string]interface{})  {}
func (l *recordingLogger) Warn(string, map[string]interface{})  {}

func (l *recordingLogger) Error(_ string, fields map[string]interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.errors = append(l.errors, fields)
}

func (l *recordingLogger) errorCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.errors)
}

func task(key string) domain.RefreshTask {
	return domain.RefreshTask{Resource: domain.Resource{Key: key, Path: key, Kind: domain.KindListing}}
}
