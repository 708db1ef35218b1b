// Package timemachine runs the two phases that turn a manifest and a
// target date into a set of version pins.
//
// # Phases
//
//  1. Load: the release history of every dependency is loaded
//     concurrently. The phase ends when every load has finished.
//  2. Resolve: for every dependency the newest release published by the
//     target date is compared with the newest version the declared range
//     accepts. When the former is strictly greater it becomes a pin.
//
// No query runs before the load phase has ended, so every history a
// resolver reads is complete.
//
// # Failures
//
// By default the first load failure cancels the remaining loads and the
// run returns the error. With Options.KeepGoing, failed packages are
// reported in Result.Failed and left out of the resolve phase; internal
// and cache errors still abort.
//
//	m := timemachine.New(reg, manifest, timemachine.Options{
//	    Date:   time.Date(2016, 6, 1, 0, 0, 0, 0, time.UTC),
//	    Output: "package.json.out",
//	})
//	res, err := m.Run(ctx)
package timemachine
