package cache

import (
	"context"
	"encoding/json"
	"time"

	errs "github.com/matzehuels/npm-time-machine/pkg/errors"
	"github.com/matzehuels/npm-time-machine/pkg/observability"
)

// MemoOptions tunes a single [Memo] call.
type MemoOptions struct {
	// Refresh skips the lookup and always recomputes. The fresh value is
	// still stored, replacing whatever a previous run left behind.
	Refresh bool
	// TTL is passed to [Cache.Set]. Zero keeps the entry forever.
	TTL time.Duration
	// Hooks receives hit/miss/set events. Nil means no-op.
	Hooks observability.CacheHooks
}

// Memo returns the value stored under key, or calls compute exactly once,
// stores its JSON encoding under key and returns it. hit reports whether
// the value came from the cache.
//
// A stored value that no longer decodes into T is treated as a miss.
// Errors from compute are returned as-is and nothing is stored. Failures to
// store the computed value are returned with code CACHE_ERROR.
func Memo[T any](ctx context.Context, c Cache, key string, opts MemoOptions, compute func(context.Context) (T, error)) (v T, hit bool, err error) {
	hooks := opts.Hooks
	if hooks == nil {
		hooks = observability.NoopCacheHooks{}
	}

	if !opts.Refresh {
		data, ok, err := c.Get(ctx, key)
		if err != nil {
			return v, false, errs.Wrap(errs.ErrCodeCache, err, "read %s", key)
		}
		if ok {
			var cached T
			if json.Unmarshal(data, &cached) == nil {
				hooks.OnCacheHit(ctx, key)
				return cached, true, nil
			}
		}
		hooks.OnCacheMiss(ctx, key)
	}

	v, err = compute(ctx)
	if err != nil {
		return v, false, err
	}

	data, err := json.Marshal(v)
	if err != nil {
		return v, false, errs.Wrap(errs.ErrCodeCache, err, "encode %s", key)
	}
	if err := c.Set(ctx, key, data, opts.TTL); err != nil {
		return v, false, errs.Wrap(errs.ErrCodeCache, err, "store %s", key)
	}
	hooks.OnCacheSet(ctx, key, len(data))
	return v, false, nil
}
