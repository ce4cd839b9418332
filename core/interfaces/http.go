package interfaces

import (
	"context"
	"io"
	"net/http"
)

// HTTPClient defines the interface for making HTTP requests.
// This abstraction allows for easy mocking in tests and switching between
// different HTTP client implementations (standard library, colly, etc.)
type HTTPClient interface {
	// Get performs an HTTP GET request to the specified URL.
	Get(ctx context.Context, url string, opts ...RequestOption) (Response, error)

	// Post performs an HTTP POST request to the specified URL with the given body.
	Post(ctx context.Context, url string, body io.Reader, opts ...RequestOption) (Response, error)
}

// Response defines the interface for HTTP responses.
type Response interface {
	// StatusCode returns the HTTP status code of the response.
	StatusCode() int

	// Body returns the response body as an io.ReadCloser.
	// The caller is responsible for closing the body when done.
	Body() io.ReadCloser

	// Header returns the value of the specified header.
	// Header names are case-insensitive.
	Header(key string) string

	// Cookies returns the cookies set by the response.
	Cookies() []*http.Cookie
}

// RequestConfig collects per-request settings.
type RequestConfig struct {
	Headers         map[string]string
	Cookies         []*http.Cookie
	FollowRedirects bool
}

// RequestOption customizes a single request.
type RequestOption func(*RequestConfig)

// WithHeader sets a request header.
func WithHeader(key, value string) RequestOption {
	return func(c *RequestConfig) {
		if c.Headers == nil {
			c.Headers = make(map[string]string)
		}
		c.Headers[key] = value
	}
}

// WithCookie attaches a cookie to the request.
func WithCookie(name, value string) RequestOption {
	return func(c *RequestConfig) {
		c.Cookies = append(c.Cookies, &http.Cookie{Name: name, Value: value})
	}
}

// WithoutRedirects returns the first response instead of following redirects.
// The login flow needs it to read the cookie set on the redirect itself.
func WithoutRedirects() RequestOption {
	return func(c *RequestConfig) {
		c.FollowRedirects = false
	}
}

// NewRequestConfig applies opts on top of the defaults.
func NewRequestConfig(opts ...RequestOption) RequestConfig {
	cfg := RequestConfig{FollowRedirects: true}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}
