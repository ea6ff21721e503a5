// Package scope defines the lifetime buckets a registration can live in.
//
// Four kinds exist: Singleton (process lifetime), Session and Screen (keyed
// by a runtime identifier, released as a unit), and Transient (never cached,
// every resolution re-invokes the factory).
//
// When a resolution does not name a scope, the container searches kinds in
// fixed priority order: singleton, then session, then screen, then
// transient. Within session and screen the buckets are visited in
// lexicographic identifier order so the search stays deterministic.
package scope
