package integrations

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/matzehuels/npm-time-machine/pkg/httputil"
	"github.com/matzehuels/npm-time-machine/pkg/observability"
)

// Options configures a [Client].
type Options struct {
	Timeout time.Duration           // per-request timeout; 0 selects DefaultTimeout
	Headers map[string]string       // applied to every request
	Hooks   observability.HTTPHooks // request/response events; nil means no-op
}

// Client provides shared HTTP functionality for registry API clients.
// It applies default headers, maps status codes to sentinel errors and
// decodes JSON bodies.
type Client struct {
	http    *http.Client
	headers map[string]string
	hooks   observability.HTTPHooks
}

// NewClient creates a Client from opts.
func NewClient(opts Options) *Client {
	hooks := opts.Hooks
	if hooks == nil {
		hooks = observability.NoopHTTPHooks{}
	}
	return &Client{
		http:    NewHTTPClient(opts.Timeout),
		headers: opts.Headers,
		hooks:   hooks,
	}
}

// Get performs an HTTP GET request and JSON-decodes the response into v.
//
// Transport failures, 429 and 5xx responses are wrapped with
// [httputil.Retryable]. A body that fails to decode yields
// [ErrMalformedResponse].
func (c *Client) Get(ctx context.Context, rawURL string, v any) error {
	body, err := c.doRequest(ctx, rawURL)
	if err != nil {
		return err
	}
	defer body.Close()
	if err := json.NewDecoder(body).Decode(v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return nil
}

func (c *Client) doRequest(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	host, path := hostPath(req.URL)
	c.hooks.OnRequest(ctx, req.Method, host, path)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		c.hooks.OnError(ctx, req.Method, host, path, err)
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, httputil.Retryable(fmt.Errorf("%w: %v", ErrNetwork, err))
	}
	c.hooks.OnResponse(ctx, req.Method, host, path, resp.StatusCode, time.Since(start))

	if err := checkStatus(resp.StatusCode); err != nil {
		resp.Body.Close()
		return nil, err
	}
	return resp.Body, nil
}

func hostPath(u *url.URL) (string, string) {
	return u.Host, u.EscapedPath()
}

func checkStatus(code int) error {
	switch {
	case code == http.StatusOK:
		return nil
	case code == http.StatusNotFound:
		return ErrNotFound
	case code == http.StatusTooManyRequests, code >= 500:
		return httputil.Retryable(fmt.Errorf("%w: status %d", ErrNetwork, code))
	default:
		return fmt.Errorf("%w: status %d", ErrUnexpectedStatus, code)
	}
}
