// Package integrations provides the HTTP plumbing for package registry
// clients.
//
// The [Client] type is embedded by registry-specific clients such as
// [npm]. It handles default headers, status code mapping and JSON
// decoding:
//
//   - 200: body decoded into the caller's value
//   - 404: [ErrNotFound]
//   - 429, 5xx, transport failures: [ErrNetwork], wrapped as retryable
//   - other statuses: [ErrUnexpectedStatus]
//   - undecodable body: [ErrMalformedResponse]
//
// Retrying is left to the caller so that it can decide what to hold while
// waiting (see [httputil.Policy]).
//
// [npm]: github.com/matzehuels/npm-time-machine/pkg/integrations/npm
// [httputil.Policy]: github.com/matzehuels/npm-time-machine/pkg/httputil.Policy
package integrations
