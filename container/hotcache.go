package container

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/kbukum/wirekit/typeid"
)

// cacheEntry holds one promoted value. Hit counting uses atomics so reads
// stay write-free on the shared map.
type cacheEntry struct {
	value      any
	hits       atomic.Uint64
	lastAccess atomic.Int64 // unix nanos
}

// hotCache serves promoted singletons without touching the store lock.
// The entry map is copy-on-write behind an atomic pointer: readers load
// the current map and index it, writers clone under a narrow mutex and
// swap the pointer. Readers never block and never observe a partial map.
type hotCache struct {
	entries atomic.Pointer[map[typeid.ID]*cacheEntry]
	mu      sync.Mutex // serializes writers only
}

func newHotCache() *hotCache {
	c := &hotCache{}
	m := make(map[typeid.ID]*cacheEntry)
	c.entries.Store(&m)
	return c
}

// get returns the promoted value for id, recording the hit.
func (c *hotCache) get(id typeid.ID) (any, bool) {
	e, ok := (*c.entries.Load())[id]
	if !ok {
		return nil, false
	}
	e.hits.Add(1)
	e.lastAccess.Store(time.Now().UnixNano())
	return e.value, true
}

// contains reports presence without counting a hit.
func (c *hotCache) contains(id typeid.ID) bool {
	_, ok := (*c.entries.Load())[id]
	return ok
}

// hits returns the hit count for id, zero when not promoted.
func (c *hotCache) hits(id typeid.ID) uint64 {
	if e, ok := (*c.entries.Load())[id]; ok {
		return e.hits.Load()
	}
	return 0
}

// set promotes a value. Re-promoting an id replaces the entry and resets
// its counters.
func (c *hotCache) set(id typeid.ID, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	old := *c.entries.Load()
	next := make(map[typeid.ID]*cacheEntry, len(old)+1)
	for k, v := range old {
		next[k] = v
	}
	e := &cacheEntry{value: value}
	e.lastAccess.Store(time.Now().UnixNano())
	next[id] = e
	c.entries.Store(&next)
}

// invalidate drops id from the cache. No-op when id was never promoted.
func (c *hotCache) invalidate(id typeid.ID) {
	c.mu.Lock()
	defer c.mu.Unlock()

	old := *c.entries.Load()
	if _, ok := old[id]; !ok {
		return
	}
	next := make(map[typeid.ID]*cacheEntry, len(old)-1)
	for k, v := range old {
		if k != id {
			next[k] = v
		}
	}
	c.entries.Store(&next)
}

// reset drops every entry.
func (c *hotCache) reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	m := make(map[typeid.ID]*cacheEntry)
	c.entries.Store(&m)
}

// len reports the number of promoted entries.
func (c *hotCache) len() int {
	return len(*c.entries.Load())
}
