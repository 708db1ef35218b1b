// Package semver parses semantic versions and the single-comparator range
// expressions found in package.json "dependencies".
//
// # Versions
//
// [Version] is github.com/Masterminds/semver's version type. [Parse] is
// strict: it accepts exactly MAJOR.MINOR.PATCH with optional pre-release
// and build tags, no "v" prefix and no partial versions. Precedence follows
// the semantic versioning rules (1.0.0-alpha < 1.0.0 < 1.0.1).
//
// # Ranges
//
// A [Range] is one comparator: an operator followed by a possibly partial
// version.
//
//	1.2.3    ^1.2.3   caret (the default operator)
//	~1.2     ~1.2.3   tilde
//	=1.2.3            exact
//	>1.2 >=1.2 <2 <=2.0.0
//	1.2.* 1.x *       wildcard
//
// [Range.Matches] compares a version against the comparator by precedence
// only. Unlike npm ranges it does not hide pre-releases: ^1.2.3 matches
// 1.4.0-beta.1.
package semver
