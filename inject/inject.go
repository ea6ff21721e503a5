package inject

import (
	"sync"

	"github.com/kbukum/wirekit/container"
)

// Lazy resolves T on first access and caches the value. Failed
// resolutions are not cached; the next access retries, so a field
// created before its dependency is registered starts working as soon as
// the registration lands. The zero Lazy is ready to use and resolves
// from container.Default().
type Lazy[T any] struct {
	mu       sync.RWMutex
	resolved bool
	value    T

	c    *container.Container
	opts []container.ResolveOption
}

// LazyIn builds a Lazy bound to an explicit container.
func LazyIn[T any](c *container.Container, opts ...container.ResolveOption) Lazy[T] {
	return Lazy[T]{c: c, opts: opts}
}

// LazyOf builds a Lazy on the default container.
func LazyOf[T any](opts ...container.ResolveOption) Lazy[T] {
	return Lazy[T]{opts: opts}
}

// Get returns the cached value, resolving it on first access. Reports
// false while the dependency cannot be resolved.
func (l *Lazy[T]) Get() (T, bool) {
	l.mu.RLock()
	if l.resolved {
		v := l.value
		l.mu.RUnlock()
		return v, true
	}
	l.mu.RUnlock()

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.resolved {
		return l.value, true
	}

	v, err := container.Resolve[T](l.target(), l.opts...)
	if err != nil {
		var zero T
		return zero, false
	}
	l.value = v
	l.resolved = true
	return v, true
}

// MustGet returns the cached value, panicking when the dependency is
// absent.
func (l *Lazy[T]) MustGet() T {
	if v, ok := l.Get(); ok {
		return v
	}
	return container.MustResolve[T](l.target(), l.opts...)
}

// Reset drops the cached value; the next access resolves again. Meant
// for tests that swap registrations underneath a long-lived owner.
func (l *Lazy[T]) Reset() {
	l.mu.Lock()
	var zero T
	l.value = zero
	l.resolved = false
	l.mu.Unlock()
}

// Resolved reports whether a value is cached.
func (l *Lazy[T]) Resolved() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.resolved
}

func (l *Lazy[T]) target() *container.Container {
	if l.c != nil {
		return l.c
	}
	return container.Default()
}

// Required resolves T on first access and panics when it is missing.
// The zero Required resolves from container.Default().
type Required[T any] struct {
	lazy Lazy[T]
}

// RequiredIn builds a Required bound to an explicit container.
func RequiredIn[T any](c *container.Container, opts ...container.ResolveOption) Required[T] {
	return Required[T]{lazy: LazyIn[T](c, opts...)}
}

// RequiredOf builds a Required on the default container.
func RequiredOf[T any](opts ...container.ResolveOption) Required[T] {
	return Required[T]{lazy: LazyOf[T](opts...)}
}

// Get returns the cached value, panicking when the dependency cannot be
// resolved.
func (r *Required[T]) Get() T {
	return r.lazy.MustGet()
}

// Reset drops the cached value.
func (r *Required[T]) Reset() { r.lazy.Reset() }

// Resolved reports whether a value is cached.
func (r *Required[T]) Resolved() bool { return r.lazy.Resolved() }
