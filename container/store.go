package container

import (
	"sort"
	"sync"

	"github.com/kbukum/wirekit/scope"
	"github.com/kbukum/wirekit/typeid"
)

// entry is one stored value: a registration plus, once a factory has run,
// the materialized instance. Transient entries never materialize.
type entry struct {
	reg          *Registration
	instance     any
	materialized bool
}

// entryView is a copy of an entry's fields taken under the store lock.
// Registrations are immutable, so sharing the pointer is safe.
type entryView struct {
	reg          *Registration
	instance     any
	materialized bool
}

func (e *entry) view() entryView {
	return entryView{reg: e.reg, instance: e.instance, materialized: e.materialized}
}

// store is the scoped store: one bucket of TypeID -> entry per scope.
// Reads run concurrently; writes serialize on the writer lock. Factories
// are never invoked while either lock is held.
//
// The hot cache is written only from inside this lock. A put or remove
// that touches a TypeID invalidates its cache entry before the lock
// drops, and promotion re-checks the entry under the same lock, so the
// cache can never serve an instance the store has already replaced.
type store struct {
	mu      sync.RWMutex
	buckets map[scope.Scope]map[typeid.ID]*entry
	cache   *hotCache
}

func newStore(cache *hotCache) *store {
	return &store{
		buckets: make(map[scope.Scope]map[typeid.ID]*entry),
		cache:   cache,
	}
}

// put replaces any existing entry at (id, scope) and reports whether one
// was replaced. Replacement invalidates the TypeID's cache entry.
func (s *store) put(reg *Registration, instance any, materialized bool) (replaced bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b := s.buckets[reg.scope]
	if b == nil {
		b = make(map[typeid.ID]*entry)
		s.buckets[reg.scope] = b
	}
	_, replaced = b[reg.id]
	b[reg.id] = &entry{reg: reg, instance: instance, materialized: materialized}
	if replaced {
		s.cache.invalidate(reg.id)
	}
	return replaced
}

// get looks up (id, scope) exactly.
func (s *store) get(id typeid.ID, sc scope.Scope) (entryView, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.buckets[sc][id]
	if !ok {
		return entryView{}, false
	}
	return e.view(), true
}

// find searches scopes in priority order: singleton, then session buckets
// in lexicographic ID order, then screen buckets likewise, then
// transient. The bucket ordering keeps omitted-scope resolution
// deterministic when the same type lives in several sessions.
func (s *store) find(id typeid.ID) (entryView, scope.Scope, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, kind := range scope.SearchOrder() {
		if !kind.Keyed() {
			sc := scope.Scope{Kind: kind}
			if e, ok := s.buckets[sc][id]; ok {
				return e.view(), sc, true
			}
			continue
		}

		var matches []scope.Scope
		for sc, b := range s.buckets {
			if sc.Kind != kind {
				continue
			}
			if _, ok := b[id]; ok {
				matches = append(matches, sc)
			}
		}
		if len(matches) == 0 {
			continue
		}
		sort.Slice(matches, func(i, j int) bool { return matches[i].ID < matches[j].ID })
		sc := matches[0]
		return s.buckets[sc][id].view(), sc, true
	}
	return entryView{}, scope.Scope{}, false
}

// commit writes a factory-produced instance back, with a double check:
// the entry must still exist and still belong to reg. First commit wins;
// a concurrent flight that lost gets the winner's instance back. A
// missing or replaced entry means the registration changed mid-flight, in
// which case the local value is returned uncommitted.
func (s *store) commit(reg *Registration, value any) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.buckets[reg.scope][reg.id]
	if !ok || e.reg != reg {
		return value, false
	}
	if e.materialized {
		return e.instance, true
	}
	e.instance = value
	e.materialized = true
	return value, true
}

// promote copies the materialized singleton for id into the hot cache.
// Running under the writer lock means a promotion cannot interleave with
// a remove's invalidation and leave a stale entry behind.
func (s *store) promote(id typeid.ID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.buckets[scope.Singleton()][id]
	if !ok || !e.materialized {
		return false
	}
	s.cache.set(id, e.instance)
	return true
}

// remove deletes (id, scope) and returns the removed entry for cleanup.
func (s *store) remove(id typeid.ID, sc scope.Scope) (entryView, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.buckets[sc][id]
	if !ok {
		return entryView{}, false
	}
	delete(s.buckets[sc], id)
	if len(s.buckets[sc]) == 0 {
		delete(s.buckets, sc)
	}
	s.cache.invalidate(id)
	return e.view(), true
}

// removeType deletes id from every bucket and returns the removed entries.
func (s *store) removeType(id typeid.ID) []entryView {
	s.mu.Lock()
	defer s.mu.Unlock()

	var removed []entryView
	for sc, b := range s.buckets {
		if e, ok := b[id]; ok {
			removed = append(removed, e.view())
			delete(b, id)
			if len(b) == 0 {
				delete(s.buckets, sc)
			}
		}
	}
	if len(removed) > 0 {
		s.cache.invalidate(id)
	}
	return removed
}

// removeScope drops a whole bucket in one pass.
func (s *store) removeScope(sc scope.Scope) ([]entryView, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.buckets[sc]
	if !ok {
		return nil, false
	}
	delete(s.buckets, sc)
	views := make([]entryView, 0, len(b))
	for id, e := range b {
		views = append(views, e.view())
		s.cache.invalidate(id)
	}
	return views, true
}

// reset drops everything and returns the removed entries.
func (s *store) reset() []entryView {
	s.mu.Lock()
	defer s.mu.Unlock()

	var views []entryView
	for _, b := range s.buckets {
		for _, e := range b {
			views = append(views, e.view())
		}
	}
	s.buckets = make(map[scope.Scope]map[typeid.ID]*entry)
	s.cache.reset()
	return views
}

// contains reports whether id is registered under any scope.
func (s *store) contains(id typeid.ID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, b := range s.buckets {
		if _, ok := b[id]; ok {
			return true
		}
	}
	return false
}

// registrations returns a view of every live registration, sorted by
// scope then ID for stable introspection output.
func (s *store) registrations() []entryView {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var views []entryView
	for _, b := range s.buckets {
		for _, e := range b {
			views = append(views, e.view())
		}
	}
	sort.Slice(views, func(i, j int) bool {
		if views[i].reg.scope != views[j].reg.scope {
			return views[i].reg.scope.String() < views[j].reg.scope.String()
		}
		return views[i].reg.id < views[j].reg.id
	})
	return views
}

// size reports the number of live registrations across all buckets.
func (s *store) size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, b := range s.buckets {
		n += len(b)
	}
	return n
}
