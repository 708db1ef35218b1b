// Package observability provides hooks for progress reporting and metrics.
//
// Components never talk to a metrics backend directly. Instead they accept a
// [Hooks] value in their options and emit events through it. The zero value
// of [Hooks] is usable: missing hooks fall back to no-op implementations.
//
// # Usage
//
//	hooks := observability.Hooks{Load: myProgress}
//	reg := registry.New(fetcher, c, registry.Options{Hooks: hooks})
//
// Libraries emit events through the resolved hooks:
//
//	h := opts.Hooks.WithDefaults()
//	h.Load.OnLoadStart(ctx, pkg)
//	// ... fetch history ...
//	h.Load.OnLoadComplete(ctx, pkg, n, cached, time.Since(start), err)
package observability

import (
	"context"
	"time"
)

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from memo cache operations.
type CacheHooks interface {
	// OnCacheHit records a memo hit for key.
	OnCacheHit(ctx context.Context, key string)

	// OnCacheMiss records a memo miss for key.
	OnCacheMiss(ctx context.Context, key string)

	// OnCacheSet records a memo write of size bytes.
	OnCacheSet(ctx context.Context, key string, size int)
}

// =============================================================================
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events from registry HTTP calls.
type HTTPHooks interface {
	// OnRequest records an outgoing HTTP request.
	OnRequest(ctx context.Context, method, host, path string)

	// OnResponse records an HTTP response.
	OnResponse(ctx context.Context, method, host, path string, statusCode int, duration time.Duration)

	// OnError records an HTTP error (network failure, timeout).
	OnError(ctx context.Context, method, host, path string, err error)
}

// =============================================================================
// Load Hooks
// =============================================================================

// LoadHooks receives events about release history loads.
type LoadHooks interface {
	// OnLoadStart is called before a package's history is looked up.
	OnLoadStart(ctx context.Context, pkg string)

	// OnLoadComplete is called once the history is stored (or the load failed).
	OnLoadComplete(ctx context.Context, pkg string, versions int, cached bool, duration time.Duration, err error)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, string, int, time.Duration) {}
func (NoopHTTPHooks) OnError(context.Context, string, string, string, error)                 {}

// NoopLoadHooks is a no-op implementation of LoadHooks.
type NoopLoadHooks struct{}

func (NoopLoadHooks) OnLoadStart(context.Context, string) {}
func (NoopLoadHooks) OnLoadComplete(context.Context, string, int, bool, time.Duration, error) {
}

// =============================================================================
// Hook Bundle
// =============================================================================

// Hooks bundles the hook categories a run can emit. It is passed down
// explicitly through component options; there is no global registry.
type Hooks struct {
	Cache CacheHooks
	HTTP  HTTPHooks
	Load  LoadHooks
}

// WithDefaults returns a copy of h where every nil hook is replaced by its
// no-op implementation.
func (h Hooks) WithDefaults() Hooks {
	if h.Cache == nil {
		h.Cache = NoopCacheHooks{}
	}
	if h.HTTP == nil {
		h.HTTP = NoopHTTPHooks{}
	}
	if h.Load == nil {
		h.Load = NoopLoadHooks{}
	}
	return h
}
