// Package cache provides the persistent memo store that lets a run reuse
// registry lookups made by earlier runs.
//
// # Backends
//
//   - [FileCache]: one flat directory, one JSON file per key. This is the
//     default and what the CLI uses.
//   - [RedisCache]: a shared store so several machines (e.g. CI runners)
//     reuse the same lookups.
//   - [NullCache]: stores nothing. Useful for tests and when no cache
//     directory can be created.
//
// # Memoization
//
// [Memo] implements get-or-compute on top of any [Cache]:
//
//	hist, hit, err := cache.Memo(ctx, c, "left-pad.vit", cache.MemoOptions{},
//	    func(ctx context.Context) (History, error) {
//	        return fetch(ctx, "left-pad")
//	    })
//
// Concurrent misses for the same key are not deduplicated: both callers
// compute and the second write wins.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with optional expiry.
type Cache interface {
	// Get returns the data stored under key. ok is false on a miss.
	Get(ctx context.Context, key string) (data []byte, ok bool, err error)
	// Set stores data under key. A ttl of 0 means the entry never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases resources held by the backend.
	Close() error
}
