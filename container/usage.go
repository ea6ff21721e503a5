package container

import (
	"sync"
	"sync/atomic"

	"github.com/kbukum/wirekit/typeid"
)

// usage tracks per-TypeID resolution counts. Counters are *atomic.Uint64
// looked up under a read lock, so the steady state (counter exists) is one
// RLock and one atomic add; the write lock is only taken the first time an
// id is seen.
type usage struct {
	mu   sync.RWMutex
	byID map[typeid.ID]*atomic.Uint64
}

func newUsage() *usage {
	return &usage{byID: make(map[typeid.ID]*atomic.Uint64)}
}

// inc bumps the counter for id and returns the new total.
func (u *usage) inc(id typeid.ID) uint64 {
	u.mu.RLock()
	n, ok := u.byID[id]
	u.mu.RUnlock()
	if ok {
		return n.Add(1)
	}

	u.mu.Lock()
	n, ok = u.byID[id]
	if !ok {
		n = new(atomic.Uint64)
		u.byID[id] = n
	}
	u.mu.Unlock()
	return n.Add(1)
}

// count returns the current total for id.
func (u *usage) count(id typeid.ID) uint64 {
	u.mu.RLock()
	defer u.mu.RUnlock()
	if n, ok := u.byID[id]; ok {
		return n.Load()
	}
	return 0
}

// snapshot copies every counter. The result is detached; later
// increments do not show through.
func (u *usage) snapshot() map[typeid.ID]uint64 {
	u.mu.RLock()
	defer u.mu.RUnlock()

	out := make(map[typeid.ID]uint64, len(u.byID))
	for id, n := range u.byID {
		out[id] = n.Load()
	}
	return out
}

// reset drops every counter.
func (u *usage) reset() {
	u.mu.Lock()
	u.byID = make(map[typeid.ID]*atomic.Uint64)
	u.mu.Unlock()
}
