// Package httputil provides retry helpers for registry HTTP calls.
//
// # Retry
//
// [Retry] re-runs an operation when it fails with an error wrapped by
// [Retryable]. Registry clients wrap transient failures that way:
//
//   - Network errors (connection refused, timeouts)
//   - 5xx server errors
//   - 429 rate limit responses
//
// Any other error is returned immediately. The delay doubles after each
// failed attempt:
//
//	err := httputil.DefaultPolicy.Do(ctx, func() error {
//	    return fetch(ctx, pkg)
//	})
//
// # Defaults
//
//   - Attempts: 3
//   - Initial delay: 1 second
//
// A [Policy] with Attempts set to 1 disables retries entirely, which
// reproduces the strict fail-on-first-error behavior.
package httputil
