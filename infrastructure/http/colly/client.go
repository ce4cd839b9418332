// ABOUTME: Colly-backed HTTP client for scraping the upstream site
// ABOUTME: Builds one collector per request so cookies never leak between callers

package colly

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gocolly/colly/v2"

	"newhackers-api/core/interfaces"
)

const userAgent = "NewHackersAPI/1.0"

// Client implements interfaces.HTTPClient on top of gocolly
type Client struct {
	timeout   time.Duration
	transport http.RoundTripper
}

// NewClient creates a colly client with the given request timeout
func NewClient(timeout time.Duration) *Client {
	return &Client{
		timeout:   timeout,
		transport: http.DefaultTransport,
	}
}

// WithTransport replaces the round tripper used for every request
func (c *Client) WithTransport(transport http.RoundTripper) *Client {
	if transport != nil {
		c.transport = transport
	}
	return c
}

// Get performs an HTTP GET request
func (c *Client) Get(ctx context.Context, url string, opts ...interfaces.RequestOption) (interfaces.Response, error) {
	return c.do(ctx, http.MethodGet, url, nil, opts)
}

// Post performs an HTTP POST request with a form encoded body
func (c *Client) Post(ctx context.Context, url string, body io.Reader, opts ...interfaces.RequestOption) (interfaces.Response, error) {
	return c.do(ctx, http.MethodPost, url, body, opts)
}

func (c *Client) do(ctx context.Context, method, url string, body io.Reader, opts []interfaces.RequestOption) (interfaces.Response, error) {
	cfg := interfaces.NewRequestConfig(opts...)

	collector := colly.NewCollector(
		colly.UserAgent(userAgent),
		colly.AllowURLRevisit(),
	)
	collector.ParseHTTPErrorResponse = true
	collector.DisableCookies()
	collector.SetRequestTimeout(c.timeout)
	collector.WithTransport(&contextTransport{ctx: ctx, base: c.transport})
	if !cfg.FollowRedirects {
		collector.SetRedirectHandler(func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		})
	}

	var result *collyResponse
	collector.OnResponse(func(r *colly.Response) {
		result = newResponse(r)
	})

	hdr := http.Header{}
	hdr.Set("User-Agent", userAgent)
	if method == http.MethodPost {
		hdr.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	for k, v := range cfg.Headers {
		hdr.Set(k, v)
	}
	if len(cfg.Cookies) > 0 {
		pairs := make([]string, 0, len(cfg.Cookies))
		for _, cookie := range cfg.Cookies {
			pairs = append(pairs, cookie.String())
		}
		hdr.Set("Cookie", strings.Join(pairs, "; "))
	}

	if err := collector.Request(method, url, body, nil, hdr); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, err
	}
	if result == nil {
		return nil, ctx.Err()
	}
	return result, nil
}

// contextTransport binds every request of a collector to the caller's context
type contextTransport struct {
	ctx  context.Context
	base http.RoundTripper
}

func (t *contextTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	return t.base.RoundTrip(req.WithContext(t.ctx))
}

type collyResponse struct {
	statusCode int
	body       []byte
	headers    http.Header
}

func newResponse(r *colly.Response) *collyResponse {
	resp := &collyResponse{
		statusCode: r.StatusCode,
		body:       r.Body,
		headers:    http.Header{},
	}
	if r.Headers != nil {
		resp.headers = *r.Headers
	}
	return resp
}

// StatusCode returns the HTTP status code
func (r *collyResponse) StatusCode() int {
	return r.statusCode
}

// Body returns the already read response body
func (r *collyResponse) Body() io.ReadCloser {
	return io.NopCloser(bytes.NewReader(r.body))
}

// Header returns the value of the specified header
func (r *collyResponse) Header(key string) string {
	return r.headers.Get(key)
}

// Cookies parses the Set-Cookie headers of the response
func (r *collyResponse) Cookies() []*http.Cookie {
	return (&http.Response{Header: r.headers}).Cookies()
}
