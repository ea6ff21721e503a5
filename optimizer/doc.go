// Package optimizer watches a container in the background: it promotes
// frequently resolved singletons into the hot cache, runs the cycle scan,
// and publishes immutable statistics snapshots for diagnostics.
//
// The optimizer runs on its own goroutine with a debounced interval and
// never blocks a resolution. Findings from the cycle scan are reported
// through logs, metrics, and the snapshot; they are never turned into
// errors, because the offending registrations are already live.
package optimizer
