// Package npm provides an HTTP client for the npm registry API.
//
// # Overview
//
// The client fetches full package documents ("packuments") from
// https://registry.npmjs.org/<name> and returns their "time" field, the
// publish timestamp of every version ever released:
//
//	client := npm.NewClient("", integrations.Options{})
//	times, err := client.FetchTimes(ctx, "left-pad")
//	// times["1.1.0"] == "2016-04-..."
//
// Scoped packages ("@babel/core") are requested with the slash escaped.
//
// # Errors
//
// FetchTimes does not retry. Transient failures are wrapped as retryable
// (see httputil.Retryable) so the caller can retry under its own policy.
// Documents that lack a "time" map, or whose "time" map holds non-string
// values (unpublished packages), produce integrations.ErrMalformedResponse.
package npm
