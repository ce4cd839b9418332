// ABOUTME: Remote fetcher retrieves upstream pages and classifies plain-text error replies
// ABOUTME: The upstream answers errors with a bare sentence and status 200, so bodies decide

package fetcher

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"newhackers-api/core/errors"
	"newhackers-api/core/interfaces"
)

// Sentences the upstream uses instead of a status code.
const (
	noSuchItem       = "No such item."
	unknown          = "Unknown."
	unknownOrExpired = "Unknown or expired link."
	cannotVote       = "Can't make that vote."
)

// FetchOptions customizes a single upstream request.
type FetchOptions struct {
	// Method is GET when empty
	Method string

	// Cookies are sent with the request
	Cookies []*http.Cookie

	// Form is sent url-encoded as the body of a POST
	Form url.Values

	// NoRedirects returns the first response of a redirect chain
	NoRedirects bool
}

// RawResponse is an upstream reply that passed classification.
type RawResponse struct {
	StatusCode int
	Body       string
	Cookies    []*http.Cookie
}

// Cookie returns the value of a cookie set by the response.
func (r *RawResponse) Cookie(name string) (string, bool) {
	for _, c := range r.Cookies {
		if c.Name == name {
			return c.Value, true
		}
	}
	return "", false
}

// Fetcher performs requests against the upstream site.
type Fetcher struct {
	baseURL string
	client  interfaces.HTTPClient
	logger  interfaces.Logger
}

// NewFetcher creates a fetcher for paths relative to baseURL.
func NewFetcher(baseURL string, deps interfaces.Dependencies) *Fetcher {
	return &Fetcher{
		baseURL: strings.TrimRight(baseURL, "/") + "/",
		client:  deps.HTTPClient,
		logger:  interfaces.LoggerOrNop(deps.Logger),
	}
}

// URL returns the absolute address of an upstream path.
func (f *Fetcher) URL(path string) string {
	return f.baseURL + strings.TrimLeft(path, "/")
}

// Fetch requests path and returns the response body. Known error sentences
// become NotFoundError or ClientActionRejectedError, anything that is neither
// empty nor an HTML document becomes an UpstreamError.
func (f *Fetcher) Fetch(ctx context.Context, path string, opts FetchOptions) (*RawResponse, error) {
	reqOpts := make([]interfaces.RequestOption, 0, len(opts.Cookies)+1)
	for _, c := range opts.Cookies {
		reqOpts = append(reqOpts, interfaces.WithCookie(c.Name, c.Value))
	}
	if opts.NoRedirects {
		reqOpts = append(reqOpts, interfaces.WithoutRedirects())
	}

	target := f.URL(path)
	var (
		resp interfaces.Response
		err  error
	)
	if strings.EqualFold(opts.Method, http.MethodPost) {
		resp, err = f.client.Post(ctx, target, strings.NewReader(opts.Form.Encode()), reqOpts...)
	} else {
		resp, err = f.client.Get(ctx, target, reqOpts...)
	}
	if err != nil {
		return nil, &errors.UpstreamError{Path: path, Message: "request failed", Err: err}
	}

	body := resp.Body()
	defer body.Close()
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, &errors.UpstreamError{Path: path, Message: "reading body", Err: err}
	}

	f.logger.Debug("Fetched upstream page", map[string]interface{}{
		"path":   path,
		"status": resp.StatusCode(),
		"bytes":  len(data),
	})

	text := string(data)
	if err := classify(path, text); err != nil {
		return nil, err
	}

	return &RawResponse{
		StatusCode: resp.StatusCode(),
		Body:       text,
		Cookies:    resp.Cookies(),
	}, nil
}

func classify(path, body string) error {
	trimmed := strings.TrimSpace(body)
	switch trimmed {
	case noSuchItem, unknown, unknownOrExpired:
		return &errors.NotFoundError{Resource: "page", ID: path}
	case cannotVote:
		return &errors.ClientActionRejectedError{Message: cannotVote}
	case "":
		return nil
	}

	if isHTMLDocument(trimmed) {
		return nil
	}
	return &errors.UpstreamError{Path: path, Message: fmt.Sprintf("unexpected response %q", preview(trimmed))}
}

func isHTMLDocument(body string) bool {
	head := strings.ToLower(body[:min(len(body), 16)])
	return strings.HasPrefix(head, "<html") || strings.HasPrefix(head, "<!doctype html")
}

func preview(body string) string {
	const limit = 80
	if len(body) <= limit {
		return body
	}
	return body[:limit] + "..."
}
