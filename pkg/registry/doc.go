// Package registry holds per-package release histories and answers the
// two version queries a time-machine run needs.
//
// # Loading
//
// [Registry.Load] fetches a package's publish times through a [Fetcher],
// parses them into a [History] and stores the result, replacing whatever
// was stored before. Loads are memoized in a [cache.Cache] under the key
// "<package>.vit", so a second run does not touch the network.
//
// At most Options.Concurrency fetches are in flight at any time. A permit
// is held only for the request and the decoding of its body; parsing runs
// after the permit is released.
//
// # Queries
//
//	latest, _ := reg.LatestAtOrBefore("left-pad", date)   // newest release published by date
//	allowed, _ := reg.LatestMatching("left-pad", rng)     // newest version rng accepts
//
// LatestAtOrBefore ignores pre-releases; LatestMatching does not. Both
// return [ErrNotLoaded] for a package that was never loaded.
package registry
