package semver

import (
	"slices"

	msemver "github.com/Masterminds/semver/v3"
)

// Version is a parsed semantic version.
type Version = msemver.Version

// Parse parses a strict semantic version such as "1.2.3" or "2.0.0-rc.1".
func Parse(s string) (*Version, error) {
	return msemver.StrictNewVersion(s)
}

// MustParse is like Parse but panics on error. Intended for tests and
// constants.
func MustParse(s string) *Version {
	v, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return v
}

// IsPrerelease reports whether v carries a pre-release tag.
func IsPrerelease(v *Version) bool {
	return v.Prerelease() != ""
}

// Max returns the version with the highest precedence, or nil when vs is
// empty.
func Max(vs []*Version) *Version {
	if len(vs) == 0 {
		return nil
	}
	return slices.MaxFunc(vs, func(a, b *Version) int { return a.Compare(b) })
}

// comparePre orders two pre-release tags by semver precedence. The empty
// tag (a release) sorts after every pre-release.
func comparePre(a, b string) int {
	return msemver.New(0, 0, 0, a, "").Compare(msemver.New(0, 0, 0, b, ""))
}
