// Package container is the dependency-injection runtime: a type-indexed
// registry that maps Go types to factories or instances, resolves them on
// demand across scoped lifetimes, and keeps a dependency graph of what
// needs what.
//
// Registration and resolution are safe for concurrent use from any
// goroutine. Mutations to the scoped store and the graph go through a
// single writer lock; resolutions read concurrently and frequently
// resolved singletons are served from a lock-free hot cache once their
// usage crosses the promotion threshold.
//
// The generic helpers are the intended call surface:
//
//	c := container.New()
//	container.Register[Logger](c, func() Logger { return NewConsoleLogger() })
//	log, err := container.Resolve[Logger](c)
//
// Factories may accept a *Container to resolve their own dependencies.
// That container is a resolution-bound view carrying the in-flight path,
// so a factory that re-enters a type already under construction fails
// fast with a CircularDependency error instead of recursing forever.
package container
