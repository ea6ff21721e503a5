// Package typeid assigns dense integer identifiers to Go types.
//
// Every distinct reflect.Type seen by the container maps to exactly one ID
// for the lifetime of the process. Per-type bookkeeping (store entries,
// usage counters, cache slots, graph nodes) keys on the integer ID rather
// than the reflect.Type itself, which keeps comparisons and map lookups
// cheap on resolution paths.
//
// IDs are never reused, even after a registration is released — a stale
// cache slot can therefore never alias a different type.
package typeid
