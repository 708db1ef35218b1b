package registry

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/semaphore"

	"github.com/matzehuels/npm-time-machine/pkg/cache"
	errs "github.com/matzehuels/npm-time-machine/pkg/errors"
	"github.com/matzehuels/npm-time-machine/pkg/httputil"
	"github.com/matzehuels/npm-time-machine/pkg/integrations"
	"github.com/matzehuels/npm-time-machine/pkg/observability"
	"github.com/matzehuels/npm-time-machine/pkg/semver"
)

// DefaultConcurrency is the number of registry requests allowed in flight.
const DefaultConcurrency = 4

// CacheSuffix is appended to a package name to form its memo key.
const CacheSuffix = ".vit"

// ErrNotLoaded is returned by the queries for a package whose history was
// never loaded.
var ErrNotLoaded = errs.New(errs.ErrCodeInternal, "release history not loaded")

// Fetcher retrieves the raw publish-time map of a package.
type Fetcher interface {
	FetchTimes(ctx context.Context, pkg string) (map[string]string, error)
}

// Options configures a [Registry].
type Options struct {
	Concurrency int             // max requests in flight; 0 selects DefaultConcurrency
	Refresh     bool            // ignore memoized histories, but still store fresh ones
	CacheTTL    time.Duration   // expiry of memoized histories; 0 keeps them forever
	Retry       httputil.Policy // zero value selects httputil.DefaultPolicy
	Hooks       observability.Hooks
	Logger      *log.Logger
}

// WithDefaults returns a copy of o with zero values replaced by defaults.
func (o Options) WithDefaults() Options {
	if o.Concurrency <= 0 {
		o.Concurrency = DefaultConcurrency
	}
	if o.Retry.Attempts <= 0 {
		o.Retry = httputil.DefaultPolicy
	}
	if o.Logger == nil {
		o.Logger = log.New(io.Discard)
	}
	o.Hooks = o.Hooks.WithDefaults()
	return o
}

// Registry is the release history store. It is safe for concurrent use.
type Registry struct {
	fetcher Fetcher
	cache   cache.Cache
	opts    Options
	permits *semaphore.Weighted

	mu        sync.Mutex
	histories map[string]History
}

// New creates a Registry that fetches through f and memoizes in c. A nil c
// disables memoization.
func New(f Fetcher, c cache.Cache, opts Options) *Registry {
	if c == nil {
		c = cache.NewNullCache()
	}
	opts = opts.WithDefaults()
	return &Registry{
		fetcher:   f,
		cache:     c,
		opts:      opts,
		permits:   semaphore.NewWeighted(int64(opts.Concurrency)),
		histories: make(map[string]History),
	}
}

// Load obtains the release history of pkg, from the memo cache or the
// registry, and stores it. A package the registry does not know, or whose
// document cannot be decoded, loads as an empty history.
func (r *Registry) Load(ctx context.Context, pkg string) error {
	r.opts.Hooks.Load.OnLoadStart(ctx, pkg)
	start := time.Now()

	memo := cache.MemoOptions{Refresh: r.opts.Refresh, TTL: r.opts.CacheTTL, Hooks: r.opts.Hooks.Cache}
	hist, hit, err := cache.Memo(ctx, r.cache, pkg+CacheSuffix, memo, func(ctx context.Context) (History, error) {
		return r.fetch(ctx, pkg)
	})
	r.opts.Hooks.Load.OnLoadComplete(ctx, pkg, len(hist), hit, time.Since(start), err)
	if err != nil {
		return err
	}
	if hist == nil {
		hist = History{}
	}

	r.mu.Lock()
	r.histories[pkg] = hist
	r.mu.Unlock()

	r.opts.Logger.Debug("loaded", "package", pkg, "versions", len(hist), "cached", hit)
	return nil
}

func (r *Registry) fetch(ctx context.Context, pkg string) (History, error) {
	var times map[string]string
	err := r.opts.Retry.Do(ctx, func() error {
		if err := r.permits.Acquire(ctx, 1); err != nil {
			return err
		}
		defer r.permits.Release(1)

		var err error
		times, err = r.fetcher.FetchTimes(ctx, pkg)
		return err
	})

	switch {
	case err == nil:
		return ParseTimes(times), nil
	case errors.Is(err, integrations.ErrNotFound),
		errors.Is(err, integrations.ErrMalformedResponse),
		errors.Is(err, integrations.ErrUnexpectedStatus):
		r.opts.Logger.Warn("no usable release history", "package", pkg, "err", err)
		return History{}, nil
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return nil, err
	case errs.GetCode(err) != "":
		return nil, err
	default:
		return nil, errs.Wrap(errs.ErrCodeNetwork, err, "fetch %s", pkg)
	}
}

// History returns a copy of the stored history of pkg.
func (r *Registry) History(pkg string) (History, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	h, ok := r.histories[pkg]
	return slices.Clone(h), ok
}

// Loaded returns the number of packages with a stored history.
func (r *Registry) Loaded() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.histories)
}

func (r *Registry) snapshot(pkg string) (History, error) {
	h, ok := r.History(pkg)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotLoaded, pkg)
	}
	return h, nil
}

// LatestAtOrBefore returns the highest non-pre-release version of pkg
// published on date's calendar day or earlier, or nil if there is none.
// Ties in precedence go to the later publish time.
func (r *Registry) LatestAtOrBefore(pkg string, date time.Time) (*semver.Version, error) {
	h, err := r.snapshot(pkg)
	if err != nil {
		return nil, err
	}

	candidates := slices.DeleteFunc(h, func(rec Record) bool {
		return semver.IsPrerelease(rec.Version) || !publishedBy(rec.PublishedAt, date)
	})
	if len(candidates) == 0 {
		return nil, nil
	}
	best := slices.MaxFunc(candidates, func(a, b Record) int {
		if c := a.Version.Compare(b.Version); c != 0 {
			return c
		}
		return cmp.Compare(a.PublishedAt.UnixNano(), b.PublishedAt.UnixNano())
	})
	return best.Version, nil
}

// LatestMatching returns the highest version of pkg that rng accepts, or
// nil if there is none. Pre-releases are candidates.
func (r *Registry) LatestMatching(pkg string, rng semver.Range) (*semver.Version, error) {
	h, err := r.snapshot(pkg)
	if err != nil {
		return nil, err
	}

	matching := slices.DeleteFunc(h.Versions(), func(v *semver.Version) bool {
		return !rng.Matches(v)
	})
	return semver.Max(matching), nil
}
