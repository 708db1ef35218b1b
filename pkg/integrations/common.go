package integrations

import (
	"errors"
	"net/http"
	"time"
)

// DefaultTimeout bounds a single registry request, including reading the
// response body.
const DefaultTimeout = 30 * time.Second

var (
	// ErrNotFound is returned when a package doesn't exist in the registry.
	ErrNotFound = errors.New("resource not found")

	// ErrNetwork is returned for HTTP failures (timeouts, connection errors, 5xx responses).
	ErrNetwork = errors.New("network error")

	// ErrMalformedResponse is returned when the transport succeeded but the
	// body could not be decoded into the expected shape.
	ErrMalformedResponse = errors.New("malformed response")

	// ErrUnexpectedStatus is returned for non-retryable, non-404 error
	// statuses such as 401 or 403.
	ErrUnexpectedStatus = errors.New("unexpected status")
)

// NewHTTPClient creates an HTTP client with the given request timeout.
// A non-positive timeout selects [DefaultTimeout].
func NewHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &http.Client{Timeout: timeout}
}
