package manifest

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"

	"github.com/matzehuels/npm-time-machine/pkg/changes"
	errs "github.com/matzehuels/npm-time-machine/pkg/errors"
	"github.com/matzehuels/npm-time-machine/pkg/semver"
)

// DependenciesKey is the manifest field holding the dependency map.
const DependenciesKey = "dependencies"

// ErrSyntax is the cause of the error [Read] returns for a file that is
// not JSON at all.
var ErrSyntax = errors.New("not valid JSON")

// Dependency is one entry of the "dependencies" map.
type Dependency struct {
	Name  string
	Raw   string       // the range as written in the manifest
	Range semver.Range // Raw, parsed
}

// Manifest is a parsed package.json.
type Manifest struct {
	path string
	doc  object
	deps object
	list []Dependency
}

// Read loads and parses the manifest at path.
//
// A missing file yields FILE_NOT_FOUND. Invalid JSON, a missing or
// non-object "dependencies" field, a non-string range or a range that does
// not parse yield INVALID_MANIFEST.
func Read(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeFileNotFound, err, "package input file (%s) couldn't be found", path)
	}
	m, err := Parse(data)
	if err != nil {
		return nil, err
	}
	m.path = path
	return m, nil
}

// Parse parses manifest contents. See [Read] for the error cases.
func Parse(data []byte) (*Manifest, error) {
	doc, err := decodeObject(data)
	if errors.Is(err, errNotObject) {
		return nil, errs.New(errs.ErrCodeInvalidManifest, "package json doesn't have `dependencies' entry")
	}
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidManifest, ErrSyntax, "%v", err)
	}

	raw, ok := doc.get(DependenciesKey)
	if !ok {
		return nil, errs.New(errs.ErrCodeInvalidManifest, "package json doesn't have `dependencies' entry")
	}
	deps, err := decodeObject(raw)
	if err != nil {
		return nil, errs.New(errs.ErrCodeInvalidManifest, "`dependencies' malformed")
	}

	m := &Manifest{doc: doc, deps: deps}
	seen := make(map[string]int, len(deps))
	for _, mem := range deps {
		var s string
		if err := json.Unmarshal(mem.Value, &s); err != nil {
			return nil, errs.New(errs.ErrCodeInvalidManifest, "version of %s is not a string", mem.Key)
		}
		rng, err := semver.ParseRange(s)
		if err != nil {
			return nil, errs.Wrap(errs.ErrCodeInvalidManifest, err, "unsupported version range %q for %s", s, mem.Key)
		}
		dep := Dependency{Name: mem.Key, Raw: s, Range: rng}
		if i, dup := seen[mem.Key]; dup {
			m.list[i] = dep
			continue
		}
		seen[mem.Key] = len(m.list)
		m.list = append(m.list, dep)
	}
	return m, nil
}

// Path returns the file the manifest was read from, or "" for [Parse].
func (m *Manifest) Path() string { return m.path }

// Dependencies returns the dependencies in manifest order. Each name
// appears once.
func (m *Manifest) Dependencies() []Dependency {
	return append([]Dependency(nil), m.list...)
}

// Dependency returns the entry for name.
func (m *Manifest) Dependency(name string) (Dependency, bool) {
	for _, d := range m.list {
		if d.Name == name {
			return d, true
		}
	}
	return Dependency{}, false
}

// Range returns the parsed range declared for name.
func (m *Manifest) Range(name string) (semver.Range, bool) {
	d, ok := m.Dependency(name)
	return d.Range, ok
}

// Render returns the manifest with each changed dependency set to its
// pinned version, indented with two spaces and ending in a newline. Pins
// for packages the manifest does not declare are ignored.
func (m *Manifest) Render(pins []changes.Change) ([]byte, error) {
	deps := m.deps.clone()
	for _, c := range pins {
		value, err := json.Marshal(c.Version.String())
		if err != nil {
			return nil, err
		}
		deps.set(c.Package, value)
	}
	depsJSON, err := deps.MarshalJSON()
	if err != nil {
		return nil, err
	}

	doc := m.doc.clone()
	doc.set(DependenciesKey, depsJSON)
	compact, err := doc.MarshalJSON()
	if err != nil {
		return nil, err
	}

	var out bytes.Buffer
	if err := json.Indent(&out, compact, "", "  "); err != nil {
		return nil, errs.Wrap(errs.ErrCodeInternal, err, "render manifest")
	}
	out.WriteByte('\n')
	return out.Bytes(), nil
}

// Write renders the manifest with pins applied and writes it to path.
func (m *Manifest) Write(path string, pins []changes.Change) error {
	data, err := m.Render(pins)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errs.Wrap(errs.ErrCodeInternal, err, "can't open %s for writing", path)
	}
	return nil
}
