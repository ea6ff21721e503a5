package container

import (
	"context"
	"fmt"
	"reflect"
	"sync"
	"sync/atomic"

	"github.com/kbukum/wirekit/errors"
	"github.com/kbukum/wirekit/graph"
	"github.com/kbukum/wirekit/logger"
	"github.com/kbukum/wirekit/observability"
	"github.com/kbukum/wirekit/scope"
	"github.com/kbukum/wirekit/typeid"
)

// DefaultPromotionThreshold is the usage count at which a singleton is
// copied into the hot cache.
const DefaultPromotionThreshold = 10

// state is the shared engine state. Every Container view over the same
// state sees the same registrations, graph, cache, and counters.
type state struct {
	name      string
	log       *logger.Logger
	cache     *hotCache
	store     *store
	graph     *graph.Graph
	usage     *usage
	threshold atomic.Int64
	metrics   *observability.Metrics
}

// Container is the handle callers register and resolve through. The
// zero-path form returned by New is the root; the engine derives bound
// views from it that carry the in-flight resolution path handed to
// factories. Views are cheap and share all state with their root.
type Container struct {
	st   *state
	path []typeid.ID
}

// Option configures a Container at construction.
type Option func(*state)

// WithName sets the name used in log output.
func WithName(name string) Option {
	return func(st *state) { st.name = name }
}

// WithLogger overrides the component logger.
func WithLogger(l *logger.Logger) Option {
	return func(st *state) { st.log = l }
}

// WithPromotionThreshold overrides the usage count that triggers hot
// cache promotion. Values below 1 are ignored.
func WithPromotionThreshold(n int) Option {
	return func(st *state) {
		if n >= 1 {
			st.threshold.Store(int64(n))
		}
	}
}

// WithMetrics attaches OTel instruments recorded on registration and
// resolution. Without this option the engine records nothing.
func WithMetrics(m *observability.Metrics) Option {
	return func(st *state) { st.metrics = m }
}

// New builds an empty container.
func New(opts ...Option) *Container {
	st := &state{name: "container"}
	st.cache = newHotCache()
	st.store = newStore(st.cache)
	st.graph = graph.New()
	st.usage = newUsage()
	st.threshold.Store(DefaultPromotionThreshold)
	for _, opt := range opts {
		opt(st)
	}
	if st.log == nil {
		st.log = logger.Get(st.name)
	}
	return &Container{st: st}
}

var (
	defaultOnce      sync.Once
	defaultContainer *Container
)

// Default returns the process-wide shared container, created on first
// use. Tests that use it should end with ReleaseAll.
func Default() *Container {
	defaultOnce.Do(func() {
		defaultContainer = New(WithName("default"))
	})
	return defaultContainer
}

// Name returns the container's log name.
func (c *Container) Name() string { return c.st.name }

// Len reports the number of live registrations across all scopes.
func (c *Container) Len() int { return c.st.store.size() }

// Register binds T to a factory. The default scope is singleton.
func Register[T any](c *Container, factory any, opts ...RegisterOption) error {
	return c.RegisterType(typeid.TypeFor[T](), factory, opts...)
}

// RegisterValue binds T to an already-built value. The value counts as
// materialized from the start; transient scope is rejected because it
// would hand out the same instance while promising a fresh one.
func RegisterValue[T any](c *Container, value T, opts ...RegisterOption) error {
	return c.RegisterInstance(typeid.TypeFor[T](), value, opts...)
}

// RegisterType is the non-generic registration entry point.
func (c *Container) RegisterType(t reflect.Type, factory any, opts ...RegisterOption) error {
	reg := &Registration{
		id:    typeid.Of(t),
		typ:   t,
		scope: scope.Singleton(),
	}
	for _, opt := range opts {
		opt(reg)
	}
	if err := reg.scope.Validate(); err != nil {
		return errors.InvalidScope(err.Error())
	}

	fn, err := normalizeFactory(t, factory)
	if err != nil {
		return err
	}
	reg.factory = fn

	if err := c.checkSelfCycle(reg); err != nil {
		return err
	}
	c.put(reg, nil, false)
	return nil
}

// RegisterInstance is the non-generic value registration entry point.
func (c *Container) RegisterInstance(t reflect.Type, value any, opts ...RegisterOption) error {
	reg := &Registration{
		id:    typeid.Of(t),
		typ:   t,
		scope: scope.Singleton(),
	}
	for _, opt := range opts {
		opt(reg)
	}
	if err := reg.scope.Validate(); err != nil {
		return errors.InvalidScope(err.Error())
	}
	if reg.scope.Kind == scope.KindTransient {
		return errors.InvalidScope("transient registrations require a factory")
	}
	if value != nil && !assignable(reflect.TypeOf(value), t) {
		return errors.InvalidFactory(fmt.Sprintf("value of type %T is not assignable to %s", value, t))
	}

	if err := c.checkSelfCycle(reg); err != nil {
		return err
	}
	c.put(reg, value, true)
	return nil
}

// checkSelfCycle rejects a registration whose declared dependencies
// include its own type. This is the only cycle check run synchronously
// at registration time; longer cycles are found by the background scan.
func (c *Container) checkSelfCycle(reg *Registration) error {
	for _, dep := range reg.deps {
		if dep == reg.id {
			name := typeid.Name(reg.id)
			return errors.CircularDependency([]string{name, name})
		}
	}
	return nil
}

func (c *Container) put(reg *Registration, value any, materialized bool) {
	st := c.st
	replaced := st.store.put(reg, value, materialized)

	st.graph.AddNode(reg.id)
	for _, dep := range reg.deps {
		st.graph.AddEdge(reg.id, dep, graph.LabelDeclared)
	}

	if st.metrics != nil && !replaced {
		st.metrics.RecordRegistration(context.Background(), 1)
	}
	st.log.Debug("registered", logger.Fields(
		"type", typeid.Name(reg.id),
		"scope", reg.scope.String(),
		"replaced", replaced,
	))
}

// WarmUp materializes every registration marked eager, in registration
// store order. The first failing factory aborts the warm-up. The pass
// runs under a warmup span; eager resolutions nest inside it.
func (c *Container) WarmUp(ctx context.Context) error {
	oc := observability.NewOperationContext(c.st.name, "warmup", "", c.st.metrics)
	ctx, span := oc.StartSpanForOperation(ctx, observability.SpanWarmUp)

	for _, v := range c.st.store.registrations() {
		if !v.reg.eager || v.materialized {
			continue
		}
		if v.reg.scope.Kind == scope.KindTransient {
			continue
		}
		if _, err := c.ResolveID(ctx, v.reg.id, In(v.reg.scope)); err != nil {
			oc.EndOperation(ctx, span, "error", err)
			return fmt.Errorf("warm up %s: %w", typeid.Name(v.reg.id), err)
		}
	}
	oc.EndOperation(ctx, span, "ok", nil)
	return nil
}

// RegistrationInfo describes one live registration for introspection.
type RegistrationInfo struct {
	Type         string `json:"type"`
	Scope        string `json:"scope"`
	Materialized bool   `json:"materialized"`
	Eager        bool   `json:"eager"`
	Promoted     bool   `json:"promoted"`
	Usage        uint64 `json:"usage"`
}

// Registrations lists every live registration, sorted by scope then ID.
func (c *Container) Registrations() []RegistrationInfo {
	views := c.st.store.registrations()
	infos := make([]RegistrationInfo, 0, len(views))
	for _, v := range views {
		infos = append(infos, RegistrationInfo{
			Type:         typeid.Name(v.reg.id),
			Scope:        v.reg.scope.String(),
			Materialized: v.materialized,
			Eager:        v.reg.eager,
			Promoted:     c.st.cache.contains(v.reg.id),
			Usage:        c.st.usage.count(v.reg.id),
		})
	}
	return infos
}

// GraphSnapshot returns an immutable copy of the dependency graph. The
// graph itself is only mutated through registration and resolution.
func (c *Container) GraphSnapshot() *graph.Snapshot {
	return c.st.graph.Snapshot()
}

// DetectCycles runs an on-demand cycle scan over the current graph.
func (c *Container) DetectCycles() []graph.Cycle {
	return c.GraphSnapshot().Cycles()
}

// PromotionThreshold returns the current hot cache promotion threshold.
func (c *Container) PromotionThreshold() int {
	return int(c.st.threshold.Load())
}

// SetPromotionThreshold changes the promotion threshold on a live
// container. Values below 1 are ignored. Already-promoted entries stay
// promoted.
func (c *Container) SetPromotionThreshold(n int) {
	if n < 1 {
		return
	}
	c.st.threshold.Store(int64(n))
}

// Promote copies the materialized singleton for id into the hot cache,
// regardless of its usage count. Returns false when id is already
// promoted or has no materialized singleton registration, so repeated
// sweeps do not reset hit counters.
func (c *Container) Promote(id typeid.ID) bool {
	if c.st.cache.contains(id) {
		return false
	}
	if c.st.store.promote(id) {
		c.st.log.Debug("promoted to hot cache", logger.Fields("type", typeid.Name(id)))
		return true
	}
	return false
}

// UsageCounts returns a detached copy of every resolution counter.
func (c *Container) UsageCounts() map[typeid.ID]uint64 {
	return c.st.usage.snapshot()
}

// UsageCount returns the resolution counter for id.
func (c *Container) UsageCount(id typeid.ID) uint64 {
	return c.st.usage.count(id)
}

// CacheLen reports the number of promoted entries.
func (c *Container) CacheLen() int { return c.st.cache.len() }

// CacheContains reports whether id is currently promoted.
func (c *Container) CacheContains(id typeid.ID) bool {
	return c.st.cache.contains(id)
}

// CacheHits returns the hot cache hit counter for id.
func (c *Container) CacheHits(id typeid.ID) uint64 {
	return c.st.cache.hits(id)
}
