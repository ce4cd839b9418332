package votes

import (
	"context"
	"io"
	"net/http"
	"strings"

	"newhackers-api/core/interfaces"
)

// mockHTTPClient is a mock implementation of the HTTPClient interface
type mockHTTPClient struct {
	getFunc func(ctx context.Context, url string, cfg interfaces.RequestConfig) (interfaces.Response, error)
}

func (m *mockHTTPClient) Get(ctx context.Context, url string, opts ...interfaces.RequestOption) (interfaces.Response, error) {
	if m.getFunc != nil {
		return m.getFunc(ctx, url, interfaces.NewRequestConfig(opts...))
	}
	return nil, nil
}

func (m *mockHTTPClient) Post(ctx context.Context, url string, _ io.Reader, opts ...interfaces.RequestOption) (interfaces.Response, error) {
	return m.Get(ctx, url, opts...)
}

// mockResponse is a mock implementation of the Response interface
type mockResponse struct {
	body string
}

func (m *mockResponse) StatusCode() int {
	return http.StatusOK
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
