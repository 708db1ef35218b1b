package semver

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	errs "github.com/matzehuels/npm-time-machine/pkg/errors"
)

// Op is a range operator.
type Op int

const (
	OpCaret Op = iota
	OpTilde
	OpExact
	OpGreater
	OpGreaterEq
	OpLess
	OpLessEq
	OpWildcard
)

var opSymbols = map[Op]string{
	OpCaret:     "^",
	OpTilde:     "~",
	OpExact:     "=",
	OpGreater:   ">",
	OpGreaterEq: ">=",
	OpLess:      "<",
	OpLessEq:    "<=",
	OpWildcard:  "",
}

// Range is a single comparator. Minor and Patch are nil when the
// expression leaves them out or uses a wildcard.
type Range struct {
	Op    Op
	Major *uint64 // nil only for the match-all wildcard "*"
	Minor *uint64
	Patch *uint64
	Pre   string
	raw   string
}

var rangePattern = regexp.MustCompile(
	`^(\^|~|=|>=|>|<=|<)?\s*v?` +
		`(\d+|[*xX])` +
		`(?:\.(\d+|[*xX])` +
		`(?:\.(\d+|[*xX])` +
		`(?:-([0-9A-Za-z-]+(?:\.[0-9A-Za-z-]+)*))?` +
		`(?:\+[0-9A-Za-z-]+(?:\.[0-9A-Za-z-]+)*)?)?)?$`)

var opByPrefix = map[string]Op{
	"":   OpCaret,
	"^":  OpCaret,
	"~":  OpTilde,
	"=":  OpExact,
	">":  OpGreater,
	">=": OpGreaterEq,
	"<":  OpLess,
	"<=": OpLessEq,
}

// ParseRange parses a single comparator such as "^1.2.3", "~1.2" or "1.x".
func ParseRange(s string) (Range, error) {
	raw := strings.TrimSpace(s)
	m := rangePattern.FindStringSubmatch(raw)
	if m == nil {
		return Range{}, errs.New(errs.ErrCodeInvalidRange, "invalid range expression %q", s)
	}

	r := Range{Op: opByPrefix[m[1]], raw: raw}
	parts := []**uint64{&r.Major, &r.Minor, &r.Patch}
	wildcard := false
	for i, p := range m[2:5] {
		if p == "" {
			break
		}
		if isWildcard(p) {
			wildcard = true
			continue
		}
		if wildcard {
			return Range{}, errs.New(errs.ErrCodeInvalidRange, "invalid range expression %q: version after wildcard", s)
		}
		n, err := strconv.ParseUint(p, 10, 64)
		if err != nil {
			return Range{}, errs.Wrap(errs.ErrCodeInvalidRange, err, "invalid range expression %q", s)
		}
		*parts[i] = &n
	}

	if wildcard {
		if m[1] == "" || m[1] == "=" {
			r.Op = OpWildcard
		}
		if m[5] != "" {
			return Range{}, errs.New(errs.ErrCodeInvalidRange, "invalid range expression %q: pre-release after wildcard", s)
		}
	}
	if r.Major == nil && r.Op != OpWildcard {
		return Range{}, errs.New(errs.ErrCodeInvalidRange, "invalid range expression %q: operator needs a version", s)
	}
	r.Pre = m[5]
	return r, nil
}

func isWildcard(s string) bool {
	return s == "*" || s == "x" || s == "X"
}

// MustParseRange is like ParseRange but panics on error.
func MustParseRange(s string) Range {
	r, err := ParseRange(s)
	if err != nil {
		panic(err)
	}
	return r
}

// String returns the expression the range was parsed from, or a canonical
// rendering for ranges built by hand.
func (r Range) String() string {
	if r.raw != "" {
		return r.raw
	}
	if r.Major == nil {
		return "*"
	}
	s := opSymbols[r.Op] + strconv.FormatUint(*r.Major, 10)
	if r.Minor != nil {
		s += "." + strconv.FormatUint(*r.Minor, 10)
		if r.Patch != nil {
			s += "." + strconv.FormatUint(*r.Patch, 10)
		}
	}
	if r.Op == OpWildcard {
		s += ".*"
	}
	if r.Pre != "" {
		s += "-" + r.Pre
	}
	return s
}

// Matches reports whether v satisfies the comparator. A pre-release only
// matches when the comparator names a pre-release of the same
// major.minor.patch.
func (r Range) Matches(v *Version) bool {
	if v.Prerelease() != "" && !r.allowsPrerelease(v) {
		return false
	}
	switch r.Op {
	case OpExact:
		return r.matchesExact(v)
	case OpGreater:
		return r.matchesGreater(v)
	case OpGreaterEq:
		return r.matchesExact(v) || r.matchesGreater(v)
	case OpLess:
		return r.matchesLess(v)
	case OpLessEq:
		return r.matchesExact(v) || r.matchesLess(v)
	case OpTilde:
		return r.matchesTilde(v)
	case OpCaret:
		return r.matchesCaret(v)
	case OpWildcard:
		return r.matchesWildcard(v)
	}
	panic(fmt.Sprintf("semver: unknown range operator %d", r.Op))
}

func (r Range) allowsPrerelease(v *Version) bool {
	return r.Pre != "" &&
		r.Major != nil && *r.Major == v.Major() &&
		r.Minor != nil && *r.Minor == v.Minor() &&
		r.Patch != nil && *r.Patch == v.Patch()
}

func (r Range) matchesExact(v *Version) bool {
	if v.Major() != *r.Major {
		return false
	}
	if r.Minor != nil && v.Minor() != *r.Minor {
		return false
	}
	if r.Patch != nil && v.Patch() != *r.Patch {
		return false
	}
	return v.Prerelease() == r.Pre
}

func (r Range) matchesGreater(v *Version) bool {
	if v.Major() != *r.Major {
		return v.Major() > *r.Major
	}
	if r.Minor == nil {
		return false
	}
	if v.Minor() != *r.Minor {
		return v.Minor() > *r.Minor
	}
	if r.Patch == nil {
		return false
	}
	if v.Patch() != *r.Patch {
		return v.Patch() > *r.Patch
	}
	return comparePre(v.Prerelease(), r.Pre) > 0
}

func (r Range) matchesLess(v *Version) bool {
	if v.Major() != *r.Major {
		return v.Major() < *r.Major
	}
	if r.Minor == nil {
		return false
	}
	if v.Minor() != *r.Minor {
		return v.Minor() < *r.Minor
	}
	if r.Patch == nil {
		return false
	}
	if v.Patch() != *r.Patch {
		return v.Patch() < *r.Patch
	}
	return comparePre(v.Prerelease(), r.Pre) < 0
}

func (r Range) matchesTilde(v *Version) bool {
	if v.Major() != *r.Major {
		return false
	}
	if r.Minor != nil && v.Minor() != *r.Minor {
		return false
	}
	if r.Patch != nil && v.Patch() != *r.Patch {
		return v.Patch() > *r.Patch
	}
	return comparePre(v.Prerelease(), r.Pre) >= 0
}

func (r Range) matchesCaret(v *Version) bool {
	if v.Major() != *r.Major {
		return false
	}
	if r.Minor == nil {
		return true
	}
	minor := *r.Minor
	if r.Patch == nil {
		if *r.Major > 0 {
			return v.Minor() >= minor
		}
		return v.Minor() == minor
	}
	patch := *r.Patch

	switch {
	case *r.Major > 0:
		if v.Minor() != minor {
			return v.Minor() > minor
		}
		if v.Patch() != patch {
			return v.Patch() > patch
		}
	case minor > 0:
		if v.Minor() != minor {
			return false
		}
		if v.Patch() != patch {
			return v.Patch() > patch
		}
	default:
		if v.Minor() != minor || v.Patch() != patch {
			return false
		}
	}
	return comparePre(v.Prerelease(), r.Pre) >= 0
}

func (r Range) matchesWildcard(v *Version) bool {
	if r.Major == nil {
		return true
	}
	if v.Major() != *r.Major {
		return false
	}
	return r.Minor == nil || v.Minor() == *r.Minor
}
