package timemachine

import (
	"context"
	"fmt"
	"io"
	"maps"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/npm-time-machine/pkg/changes"
	errs "github.com/matzehuels/npm-time-machine/pkg/errors"
	"github.com/matzehuels/npm-time-machine/pkg/manifest"
	"github.com/matzehuels/npm-time-machine/pkg/registry"
)

// Options configures a [Machine].
type Options struct {
	Date      time.Time // pins are computed as of this calendar day
	Output    string    // where Run writes the pinned manifest
	DryRun    bool      // compute pins but write nothing
	KeepGoing bool      // skip packages that fail to load instead of aborting
	Logger    *log.Logger
}

// Result summarizes a run.
type Result struct {
	Changes []changes.Change // pins, sorted by package name
	Failed  map[string]error // packages skipped because their load failed
	Written string           // path written, empty for a dry run
	Elapsed time.Duration
}

// Machine computes pins for the dependencies of one manifest.
type Machine struct {
	reg      *registry.Registry
	manifest *manifest.Manifest
	opts     Options
	changes  *changes.Set

	mu     sync.Mutex
	failed map[string]error
}

// New creates a Machine for m, resolving against reg.
func New(reg *registry.Registry, m *manifest.Manifest, opts Options) *Machine {
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	return &Machine{
		reg:      reg,
		manifest: m,
		opts:     opts,
		changes:  changes.NewSet(),
		failed:   make(map[string]error),
	}
}

// Run loads, resolves and, unless DryRun is set, writes the pinned
// manifest to Options.Output.
func (m *Machine) Run(ctx context.Context) (*Result, error) {
	start := time.Now()

	if err := m.Load(ctx); err != nil {
		return nil, err
	}
	m.opts.Logger.Debug("load phase complete", "packages", m.reg.Loaded())

	if err := m.Resolve(ctx); err != nil {
		return nil, err
	}

	res := &Result{
		Changes: m.changes.Drain(),
		Failed:  m.failures(),
	}
	if !m.opts.DryRun {
		if err := m.manifest.Write(m.opts.Output, res.Changes); err != nil {
			return nil, err
		}
		res.Written = m.opts.Output
	}
	res.Elapsed = time.Since(start)
	return res, nil
}

// Load loads the release history of every dependency and returns once all
// loads have finished.
func (m *Machine) Load(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, dep := range m.manifest.Dependencies() {
		g.Go(func() error {
			err := m.reg.Load(gctx, dep.Name)
			if err == nil {
				return nil
			}
			if !m.opts.KeepGoing || errs.Fatal(err) || ctx.Err() != nil {
				return fmt.Errorf("load %s: %w", dep.Name, err)
			}
			m.opts.Logger.Warn("skipping package", "package", dep.Name, "err", err)
			m.recordFailure(dep.Name, err)
			return nil
		})
	}
	return g.Wait()
}

// Resolve compares the two candidate versions of every loaded dependency
// and records a pin where the release at the target date is newer than
// anything the declared range accepts.
func (m *Machine) Resolve(ctx context.Context) error {
	var g errgroup.Group
	for _, dep := range m.manifest.Dependencies() {
		if m.hasFailed(dep.Name) {
			continue
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			atDate, err := m.reg.LatestAtOrBefore(dep.Name, m.opts.Date)
			if err != nil {
				return fmt.Errorf("resolve %s: %w", dep.Name, err)
			}
			allowed, err := m.reg.LatestMatching(dep.Name, dep.Range)
			if err != nil {
				return fmt.Errorf("resolve %s: %w", dep.Name, err)
			}
			if atDate == nil || allowed == nil {
				m.opts.Logger.Debug("no candidate", "package", dep.Name)
				return nil
			}
			if atDate.GreaterThan(allowed) {
				m.opts.Logger.Debug("pin", "package", dep.Name, "range", dep.Raw, "version", atDate)
				m.changes.Insert(dep.Name, atDate)
			}
			return nil
		})
	}
	return g.Wait()
}

func (m *Machine) recordFailure(pkg string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failed[pkg] = err
}

func (m *Machine) hasFailed(pkg string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.failed[pkg]
	return ok
}

func (m *Machine) failures() map[string]error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return maps.Clone(m.failed)
}
