package container

import (
	"context"
	"fmt"
	"reflect"
	"time"

	"github.com/kbukum/wirekit/errors"
	"github.com/kbukum/wirekit/graph"
	"github.com/kbukum/wirekit/logger"
	"github.com/kbukum/wirekit/observability"
	"github.com/kbukum/wirekit/scope"
	"github.com/kbukum/wirekit/typeid"
)

// resolveQuery carries per-call options.
type resolveQuery struct {
	scope *scope.Scope
}

// ResolveOption customizes a single resolution or release.
type ResolveOption func(*resolveQuery)

// In restricts the lookup to exactly one scope. Without it, resolution
// searches singleton, then session, then screen, then transient.
func In(s scope.Scope) ResolveOption {
	return func(q *resolveQuery) {
		sc := s
		q.scope = &sc
	}
}

// Resolve returns the instance registered for T.
func Resolve[T any](c *Container, opts ...ResolveOption) (T, error) {
	return ResolveCtx[T](context.Background(), c, opts...)
}

// ResolveCtx is Resolve with a caller context. The context is handed to
// context-aware factories and checked once before a factory runs;
// cancellation is not observed after a factory has started.
func ResolveCtx[T any](ctx context.Context, c *Container, opts ...ResolveOption) (T, error) {
	var zero T
	v, err := c.ResolveID(ctx, typeid.For[T](), opts...)
	if err != nil {
		return zero, err
	}
	if v == nil {
		return zero, nil
	}
	out, ok := v.(T)
	if !ok {
		return zero, errors.Internal(fmt.Errorf("resolved value of type %T is not %s", v, typeid.TypeFor[T]()))
	}
	return out, nil
}

// MustResolve resolves T and panics on failure. This is the only place a
// typed resolution failure escalates; use it for dependencies the caller
// cannot run without.
func MustResolve[T any](c *Container, opts ...ResolveOption) T {
	v, err := Resolve[T](c, opts...)
	if err != nil {
		panic(fmt.Sprintf("container: required dependency %s: %v", typeid.TypeFor[T](), err))
	}
	return v
}

// TryResolve resolves T, degrading any failure to the zero value and
// false. Meant for optional call sites.
func TryResolve[T any](c *Container, opts ...ResolveOption) (T, bool) {
	v, err := Resolve[T](c, opts...)
	if err != nil {
		var zero T
		return zero, false
	}
	return v, true
}

// Release removes T's registration. With In it removes from exactly that
// scope; without, from every scope. Reports whether anything was removed.
func Release[T any](c *Container, opts ...ResolveOption) bool {
	return c.ReleaseType(typeid.TypeFor[T](), opts...)
}

// ResolveType is the non-generic resolution entry point.
func (c *Container) ResolveType(ctx context.Context, t reflect.Type, opts ...ResolveOption) (any, error) {
	return c.ResolveID(ctx, typeid.Of(t), opts...)
}

// ResolveID resolves by TypeID.
func (c *Container) ResolveID(ctx context.Context, id typeid.ID, opts ...ResolveOption) (any, error) {
	var q resolveQuery
	for _, opt := range opts {
		opt(&q)
	}
	return c.resolve(ctx, id, q.scope)
}

// resolve is the engine entry: hot cache check, then the traced slow
// path. sc nil means priority search.
func (c *Container) resolve(ctx context.Context, id typeid.ID, sc *scope.Scope) (any, error) {
	st := c.st
	var started time.Time
	if st.metrics != nil {
		started = time.Now()
	}

	// Hot cache first. Only singletons are promoted, so an explicit
	// non-singleton scope bypasses it.
	if sc == nil || sc.Kind == scope.KindSingleton {
		if v, ok := st.cache.get(id); ok {
			st.usage.inc(id)
			c.recordEdge(id)
			if st.metrics != nil {
				st.metrics.RecordResolve(ctx, typeid.Name(id), "ok", true, time.Since(started))
			}
			return v, nil
		}
	}

	if st.metrics == nil {
		return c.resolveSlow(ctx, id, sc, started)
	}

	// Spans ride the slow path only; the cache hit above stays span-free.
	ctx, span := observability.StartSpan(ctx, observability.SpanResolve)
	defer span.End()
	observability.SetSpanAttribute(ctx, observability.AttrContainerName, st.name)
	observability.SetSpanAttribute(ctx, observability.AttrTypeName, typeid.Name(id))
	observability.SetSpanAttribute(ctx, observability.AttrCached, false)
	if sc != nil {
		observability.SetSpanAttribute(ctx, observability.AttrScope, sc.String())
	}

	value, err := c.resolveSlow(ctx, id, sc, started)
	if err != nil {
		observability.SetSpanError(ctx, err)
	}
	return value, err
}

// resolveSlow is everything past the hot cache: re-entrancy check, store
// lookup, factory invocation, commit, edge recording, promotion.
func (c *Container) resolveSlow(ctx context.Context, id typeid.ID, sc *scope.Scope, started time.Time) (any, error) {
	st := c.st

	// Re-entering a type already under construction on this path is a
	// runtime cycle; fail fast instead of recursing.
	for i, inFlight := range c.path {
		if inFlight == id {
			err := errors.CircularDependency(pathNames(c.path[i:], id))
			st.log.Warn("circular dependency", logger.Fields("type", typeid.Name(id), "path", err.Details["path"]))
			if st.metrics != nil {
				st.metrics.RecordResolve(ctx, typeid.Name(id), "cycle", false, time.Since(started))
			}
			return nil, err
		}
	}

	var (
		v  entryView
		at scope.Scope
		ok bool
	)
	if sc != nil {
		if err := sc.Validate(); err != nil {
			return nil, errors.InvalidScope(err.Error())
		}
		at = *sc
		v, ok = st.store.get(id, at)
	} else {
		v, at, ok = st.store.find(id)
	}
	if !ok {
		err := c.notRegistered(id, sc)
		if st.metrics != nil {
			st.metrics.RecordResolve(ctx, typeid.Name(id), "not_registered", false, time.Since(started))
		}
		return nil, err
	}

	if v.materialized {
		n := st.usage.inc(id)
		c.recordEdge(id)
		c.maybePromote(id, at, n)
		if st.metrics != nil {
			st.metrics.RecordResolve(ctx, typeid.Name(id), "ok", false, time.Since(started))
		}
		return v.instance, nil
	}

	// Cancellation is honored up to here; once the factory starts it
	// runs to completion so the store never holds a half-built entry.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// The factory runs with no engine lock held. The bound view extends
	// the path so nested resolutions see this flight.
	bound := &Container{st: st, path: appendPath(c.path, id)}
	value, err := v.reg.factory(ctx, bound)
	if err != nil {
		st.log.Warn("factory failed", logger.Fields("type", typeid.Name(id), "error", err.Error()))
		if st.metrics != nil {
			st.metrics.RecordFactoryError(ctx, typeid.Name(id))
			st.metrics.RecordResolve(ctx, typeid.Name(id), "factory_error", false, time.Since(started))
		}
		return nil, fmt.Errorf("%s factory: %w", typeid.Name(id), err)
	}

	if at.Kind != scope.KindTransient {
		committed := false
		value, committed = st.store.commit(v.reg, value)
		if !committed {
			st.log.Debug("registration changed during construction, returning uncommitted instance",
				logger.Fields("type", typeid.Name(id), "scope", at.String()))
		}
	}

	n := st.usage.inc(id)
	c.recordEdge(id)
	c.maybePromote(id, at, n)
	if st.metrics != nil {
		st.metrics.RecordResolve(ctx, typeid.Name(id), "ok", false, time.Since(started))
	}
	return value, nil
}

func (c *Container) notRegistered(id typeid.ID, sc *scope.Scope) error {
	name := typeid.Name(id)
	if sc != nil {
		return errors.NotRegisteredIn(name, sc.String())
	}
	return errors.NotRegistered(name)
}

// recordEdge adds an observed edge from the type whose factory is
// currently running to id. Top-level resolutions have no parent and
// skip the graph entirely, keeping the hot path free of graph locks.
func (c *Container) recordEdge(id typeid.ID) {
	if len(c.path) == 0 {
		return
	}
	from := c.path[len(c.path)-1]
	if c.st.graph.HasEdge(from, id) {
		return
	}
	c.st.graph.AddEdge(from, id, graph.LabelObserved)
}

// maybePromote promotes a singleton once its usage reaches the
// threshold. The store re-checks the entry under its writer lock, so a
// concurrent release cannot leave a stale cache entry.
func (c *Container) maybePromote(id typeid.ID, at scope.Scope, usage uint64) {
	if at.Kind != scope.KindSingleton {
		return
	}
	if usage < uint64(c.st.threshold.Load()) {
		return
	}
	if c.st.cache.contains(id) {
		return
	}
	if c.st.store.promote(id) {
		c.st.log.Debug("promoted to hot cache", logger.Fields("type", typeid.Name(id), "usage", usage))
	}
}

func pathNames(path []typeid.ID, last typeid.ID) []string {
	names := make([]string, 0, len(path)+1)
	for _, id := range path {
		names = append(names, typeid.Name(id))
	}
	return append(names, typeid.Name(last))
}

func appendPath(path []typeid.ID, id typeid.ID) []typeid.ID {
	next := make([]typeid.ID, len(path)+1)
	copy(next, path)
	next[len(path)] = id
	return next
}
