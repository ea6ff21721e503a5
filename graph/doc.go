// Package graph maintains the dependency graph of a container: one node
// per registered type and one labeled edge per declared or observed
// dependency.
//
// The graph is advisory. Registration and resolution keep working even
// when an edge points at a type nobody registered; such edges surface as
// dangling diagnostics instead of failing the write. Cycle detection runs
// on immutable snapshots so background scans never block resolution.
package graph
