package fetcher

import (
	"context"
	"io"
	"net/http"
	"strings"

	"newhackers-api/core/interfaces"
)

// mockHTTPClient is a mock implementation of the HTTPClient interface
type mockHTTPClient struct {
	getFunc  func(ctx context.Context, url string, cfg interfaces.RequestConfig) (interfaces.Response, error)
	postFunc func(ctx context.Context, url string, body io.Reader, cfg interfaces.RequestConfig) (interfaces.Response, error)
}

func (m *mockHTTPClient) Get(ctx context.Context, url string, opts ...interfaces.RequestOption) (interfaces.Response, error) {
	if m.getFunc != nil {
		return m.getFunc(ctx, url, interfaces.NewRequestConfig(opts...))
	}
	return nil, nil
}

func (m *mockHTTPClient) Post(ctx context.Context, url string, body io.Reader, opts ...interfaces.RequestOption) (interfaces.Response, error) {
	if m.postFunc != nil {
		return m.postFunc(ctx, url, body, interfaces.NewRequestConfig(opts...))
	}
	return nil, nil
}

// mockResponse is a mock implementation of the Response interface
type mockResponse struct {
	statusCode int
	body       string
	cookies    []*http.Cookie
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
	return m.cookies
}

func bodyClient(body string) *mockHTTPClient {
	return &mockHTTPClient{
		getFunc: func(context.Context, string, interfaces.RequestConfig) (interfaces.Response, error) {
			return &mockResponse{statusCode: http.StatusOK, body: body}, nil
		},
	}
}
