// Package pkg holds the libraries behind npm-time-machine.
//
// # Overview
//
// Given a package.json and a date, npm-time-machine finds, for every
// dependency, the newest release published by that date and pins the
// dependency to it when its declared range would not reach that far.
//
//	package.json            npm registry
//	     ↓                       ↓
//	[manifest]          [integrations/npm]
//	     ↓                       ↓
//	     └──→ [timemachine] ←── [registry] ←→ [cache]
//	               ↓
//	          [changes] → [manifest].Write
//
// # Main Packages
//
//   - [manifest]: read package.json dependencies, write pinned copies
//   - [semver]: versions and single-comparator ranges
//   - [registry]: release histories and the two version queries
//   - [timemachine]: load and resolve phases
//   - [changes]: the pins collected by a run
//
// # Infrastructure
//
//   - [cache]: memo store (file, redis, null) and the generic Memo helper
//   - [integrations]: shared HTTP client with status mapping
//   - [httputil]: retry with exponential backoff
//   - [observability]: hooks for cache, HTTP and load events
//   - [errors]: error codes shared by every package
//   - [buildinfo]: version information set at build time
//
// [manifest]: github.com/matzehuels/npm-time-machine/pkg/manifest
// [semver]: github.com/matzehuels/npm-time-machine/pkg/semver
// [registry]: github.com/matzehuels/npm-time-machine/pkg/registry
// [timemachine]: github.com/matzehuels/npm-time-machine/pkg/timemachine
// [changes]: github.com/matzehuels/npm-time-machine/pkg/changes
// [cache]: github.com/matzehuels/npm-time-machine/pkg/cache
// [integrations]: github.com/matzehuels/npm-time-machine/pkg/integrations
// [integrations/npm]: github.com/matzehuels/npm-time-machine/pkg/integrations/npm
// [httputil]: github.com/matzehuels/npm-time-machine/pkg/httputil
// [observability]: github.com/matzehuels/npm-time-machine/pkg/observability
// [errors]: github.com/matzehuels/npm-time-machine/pkg/errors
// [buildinfo]: github.com/matzehuels/npm-time-machine/pkg/buildinfo
package pkg
