package typeid

import (
	"reflect"
	"strconv"
	"sync"
)

// ID is a dense, process-lifetime-unique identifier for a type.
type ID int32

// None is the zero ID; no type is ever allocated to it.
const None ID = 0

// Allocator maps reflect.Type values to dense IDs, starting at 1.
// Allocation never fails; the ID space grows monotonically and is bounded
// only by the number of distinct types the process touches.
type Allocator struct {
	mu    sync.RWMutex
	ids   map[reflect.Type]ID
	types []reflect.Type // index id-1 -> type
}

// NewAllocator creates an empty allocator.
func NewAllocator() *Allocator {
	return &Allocator{
		ids: make(map[reflect.Type]ID, 64),
	}
}

// Of returns the ID for t, allocating one on first sight.
func (a *Allocator) Of(t reflect.Type) ID {
	a.mu.RLock()
	id, ok := a.ids[t]
	a.mu.RUnlock()
	if ok {
		return id
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if id, ok := a.ids[t]; ok {
		return id
	}
	a.types = append(a.types, t)
	id = ID(len(a.types))
	a.ids[t] = id
	return id
}

// Lookup returns the ID for t without allocating. ok is false if t has
// never been seen.
func (a *Allocator) Lookup(t reflect.Type) (ID, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	id, ok := a.ids[t]
	return id, ok
}

// TypeOf returns the reflect.Type behind id, or ok=false for an ID this
// allocator never issued.
func (a *Allocator) TypeOf(id ID) (reflect.Type, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if id < 1 || int(id) > len(a.types) {
		return nil, false
	}
	return a.types[id-1], true
}

// Name returns a readable name for id, or "typeid(<n>)" if unknown.
// Used for graph labels and error details.
func (a *Allocator) Name(id ID) string {
	if t, ok := a.TypeOf(id); ok {
		return t.String()
	}
	return "typeid(" + strconv.Itoa(int(id)) + ")"
}

// Count returns how many IDs have been allocated.
func (a *Allocator) Count() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.types)
}

// --- Process-global allocator ---
//
// Containers share one allocator so IDs stay stable across container
// instances (resolve caches and graphs never disagree about identity).

var global = NewAllocator()

// Global returns the process-wide allocator.
func Global() *Allocator { return global }

// Of returns the global ID for t.
func Of(t reflect.Type) ID { return global.Of(t) }

// For returns the global ID for the type parameter T.
func For[T any]() ID { return global.Of(TypeFor[T]()) }

// TypeFor returns the reflect.Type for T without requiring a value of T.
// Works for interface types as well as concrete types.
func TypeFor[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// Name returns a readable name for a globally allocated id.
func Name(id ID) string { return global.Name(id) }

// TypeOf returns the reflect.Type behind a globally allocated id.
func TypeOf(id ID) (reflect.Type, bool) { return global.TypeOf(id) }
