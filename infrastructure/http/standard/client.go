// ABOUTME: Standard HTTP client implementation with retry logic and timeout support
// ABOUTME: Supports per-request cookies and redirect control for the upstream login and vote flows

package standard

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"newhackers-api/core/interfaces"
)

const (
	maxRetries = 3
	userAgent  = "NewHackersAPI/1.0"
)

// StandardHTTPClient implements the HTTPClient interface using standard library
type StandardHTTPClient struct {
	client *http.Client
}

// NewStandardHTTPClient creates a new HTTP client with the specified timeout
func NewStandardHTTPClient(timeout time.Duration) *StandardHTTPClient {
	return &StandardHTTPClient{
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// WithTransport replaces the round tripper used for every request
func (c *StandardHTTPClient) WithTransport(transport http.RoundTripper) *StandardHTTPClient {
	c.client.Transport = transport
	return c
}

// Get performs an HTTP GET request, retrying transport failures and 5xx responses
func (c *StandardHTTPClient) Get(ctx context.Context, url string, opts ...interfaces.RequestOption) (interfaces.Response, error) {
	cfg := interfaces.NewRequestConfig(opts...)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	applyConfig(req, cfg)

	client := c.clientFor(cfg)

	// Perform request with retry logic
	var resp *http.Response
	var lastErr error

	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			// Exponential backoff: 100ms, 200ms, 400ms
			backoff := time.Duration(100*(1<<(attempt-1))) * time.Millisecond
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		resp, err = client.Do(req)
		if err != nil {
			resp = nil
			lastErr = err
			continue
		}

		// Don't retry on success or 4xx errors
		if resp.StatusCode < 500 {
			break
		}

		// Keep the last 5xx response unless another attempt follows
		if attempt == maxRetries-1 {
			break
		}
		lastErr = fmt.Errorf("server returned %d", resp.StatusCode)
		resp.Body.Close()
		resp = nil
	}

	if resp == nil {
		return nil, lastErr
	}

	return newResponse(resp), nil
}

// Post performs an HTTP POST request. Posts are never retried.
func (c *StandardHTTPClient) Post(ctx context.Context, url string, body io.Reader, opts ...interfaces.RequestOption) (interfaces.Response, error) {
	cfg := interfaces.NewRequestConfig(opts...)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	applyConfig(req, cfg)

	resp, err := c.clientFor(cfg).Do(req)
	if err != nil {
		return nil, err
	}

	return newResponse(resp), nil
}

// clientFor returns a client that stops at the first response when the
// request must not follow redirects
func (c *StandardHTTPClient) clientFor(cfg interfaces.RequestConfig) *http.Client {
	if cfg.FollowRedirects {
		return c.client
	}
	return &http.Client{
		Transport: c.client.Transport,
		Timeout:   c.client.Timeout,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func applyConfig(req *http.Request, cfg interfaces.RequestConfig) {
	req.Header.Set("User-Agent", userAgent)
	for k, v := range cfg.Headers {
		req.Header.Set(k, v)
	}
	for _, cookie := range cfg.Cookies {
		req.AddCookie(cookie)
	}
}

func newResponse(resp *http.Response) *httpResponse {
	return &httpResponse{
		statusCode: resp.StatusCode,
		body:       resp.Body,
		headers:    resp.Header,
		cookies:    resp.Cookies(),
	}
}

// httpResponse implements the Response interface
type httpResponse struct {
	statusCode int
	body       io.ReadCloser
	headers    http.Header
	cookies    []*http.Cookie
}

// StatusCode returns the HTTP status code
func (r *httpResponse) StatusCode() int {
	return r.statusCode
}

// Body returns the response body
func (r *httpResponse) Body() io.ReadCloser {
	return r.body
}

// Header returns the value of the specified header
func (r *httpResponse) Header(key string) string {
	return r.headers.Get(key)
}

// Cookies returns the cookies set by the response
func (r *httpResponse) Cookies() []*http.Cookie {
	return r.cookies
}
