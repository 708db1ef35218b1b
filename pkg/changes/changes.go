// Package changes collects the version pins proposed during a run.
package changes

import (
	"slices"
	"strings"
	"sync"

	"github.com/matzehuels/npm-time-machine/pkg/semver"
)

// Change pins Package to Version.
type Change struct {
	Package string
	Version *semver.Version
}

// Set holds at most one Change per package. It is safe for concurrent use.
type Set struct {
	mu      sync.Mutex
	entries map[string]*semver.Version
}

// NewSet returns an empty Set.
func NewSet() *Set {
	return &Set{entries: make(map[string]*semver.Version)}
}

// Insert records a pin for pkg, replacing any earlier one.
func (s *Set) Insert(pkg string, v *semver.Version) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[pkg] = v
}

// Len returns the number of recorded pins.
func (s *Set) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Drain returns every recorded pin sorted by package name and leaves the
// set empty.
func (s *Set) Drain() []Change {
	s.mu.Lock()
	entries := s.entries
	s.entries = make(map[string]*semver.Version)
	s.mu.Unlock()

	out := make([]Change, 0, len(entries))
	for pkg, v := range entries {
		out = append(out, Change{Package: pkg, Version: v})
	}
	slices.SortFunc(out, func(a, b Change) int { return strings.Compare(a.Package, b.Package) })
	return out
}
