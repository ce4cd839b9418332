package stories

import (
	"context"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"newhackers-api/core/domain"
	"newhackers-api/core/interfaces"
)

// countingHTTPClient serves canned bodies by URL and counts requests
type countingHTTPClient struct {
	bodies map[string]string
	delay  time.Duration
	calls  int32
}

func (c *countingHTTPClient) Get(ctx context.Context, url string, _ ...interfaces.RequestOption) (interfaces.Response, error) {
	atomic.AddInt32(&c.calls, 1)
	if c.delay > 0 {
		time.Sleep(c.delay)
	}
	body, ok := c.bodies[url]
	if !ok {
		body = "Unknown."
	}
	return &mockResponse{statusCode: http.StatusOK, body: body}, nil
}

func (c *countingHTTPClient) Post(ctx context.Context, url string, _ io.Reader, opts ...interfaces.RequestOption) (interfaces.Response, error) {
	return c.Get(ctx, url, opts...)
}

func (c *countingHTTPClient) count() int {
	return int(atomic.LoadInt32(&c.calls))
}

// mockResponse is a mock implementation of the Response interface
type mockResponse struct {
	statusCode int
	body       string
}

func (m *mockResponse) StatusCode() int {
	return m.statusCode
}

func (m *mockResponse) Body() io.ReadCloser {
	return io.NopCloser(strings.NewReader(m.body))
}

func (m *mockResponse) Header(string) string {
	return ""
}

func (m *mockResponse) Cookies() []*http.Cookie {
	return nil
}

// recordingScheduler keeps scheduled tasks instead of running them
type recordingScheduler struct {
	mu    sync.Mutex
	tasks []domain.RefreshTask
	err   error
}

func (r *recordingScheduler) Schedule(_ context.Context, task domain.RefreshTask) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.tasks = append(r.tasks, task)
	return nil
}

func (r *recordingScheduler) scheduled() []domain.RefreshTask {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.RefreshTask(nil), r.tasks...)
}

// recordingLogger keeps warnings for assertions
type recordingLogger struct {
	mu       sync.Mutex
	warnings []string
}

func (l *recordingLogger) Debug(string, map[string]interface{}) {}
func (l *recordingLogger) Info(string, map[string]interface{})  {}
func (l *recordingLogger) Error(string, map[string]interface{}) {}

func (l *recordingLogger) Warn(msg string, _ map[string]interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.warnings = append(l.warnings, msg)
}

func (l *recordingLogger) warned(msg string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, w := range l.warnings {
		if w == msg {
			return true
		}
	}
	return false
}

func mustFixture(name string) string {
	data, err := os.ReadFile("../parser/testdata/" + name)
	if err != nil {
		panic(err)
	}
	return string(data)
}
