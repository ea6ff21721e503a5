package container

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"reflect"

	"github.com/kbukum/wirekit/errors"
	"github.com/kbukum/wirekit/logger"
	"github.com/kbukum/wirekit/scope"
	"github.com/kbukum/wirekit/typeid"
)

// ReleaseType removes t's registration. With In it removes from exactly
// that scope; without, from every scope. Materialized instances that
// implement io.Closer are closed; close failures are logged, not
// returned, because the registration is already gone either way.
func (c *Container) ReleaseType(t reflect.Type, opts ...ResolveOption) bool {
	var q resolveQuery
	for _, opt := range opts {
		opt(&q)
	}
	id := typeid.Of(t)

	var removed []entryView
	if q.scope != nil {
		v, ok := c.st.store.remove(id, *q.scope)
		if ok {
			removed = append(removed, v)
		}
	} else {
		removed = c.st.store.removeType(id)
	}
	if len(removed) == 0 {
		return false
	}

	for _, v := range removed {
		if err := closeInstance(v); err != nil {
			c.st.log.Warn("close failed on release", logger.Fields("type", typeid.Name(id), "error", err.Error()))
		}
	}
	if !c.st.store.contains(id) {
		c.st.graph.RemoveNode(id)
	}
	if c.st.metrics != nil {
		c.st.metrics.RecordRegistration(context.Background(), -int64(len(removed)))
	}
	c.st.log.Debug("released", logger.Fields("type", typeid.Name(id), "entries", len(removed)))
	return true
}

// ReleaseScope destroys every entry under one keyed scope bucket in a
// single pass. Unknown buckets return ScopeNotFound; singleton and
// transient buckets are not releasable this way.
func (c *Container) ReleaseScope(kind scope.Kind, id string) error {
	if !kind.Keyed() {
		return errors.InvalidScope(fmt.Sprintf("%s scope is not keyed; use ReleaseAll or ReleaseType", kind))
	}
	sc := scope.Scope{Kind: kind, ID: id}
	if err := sc.Validate(); err != nil {
		return errors.InvalidScope(err.Error())
	}

	views, ok := c.st.store.removeScope(sc)
	if !ok {
		return errors.ScopeNotFound(kind.String(), id)
	}

	for _, v := range views {
		if err := closeInstance(v); err != nil {
			c.st.log.Warn("close failed on scope release", logger.Fields(
				"type", typeid.Name(v.reg.id), "scope", sc.String(), "error", err.Error()))
		}
		if !c.st.store.contains(v.reg.id) {
			c.st.graph.RemoveNode(v.reg.id)
		}
	}
	if c.st.metrics != nil {
		c.st.metrics.RecordRegistration(context.Background(), -int64(len(views)))
	}
	c.st.log.Info("released scope", logger.Fields("scope", sc.String(), "entries", len(views)))
	return nil
}

// ReleaseAll destroys every registration, the hot cache, the usage
// counters, and the graph. TypeIDs are process-lifetime and survive, so
// stale promoted entries can never alias a future registration.
func (c *Container) ReleaseAll() {
	for _, err := range c.drain() {
		c.st.log.Warn("close failed on release all", logger.Fields("error", err.Error()))
	}
	c.st.log.Info("released all registrations")
}

// Close releases everything and returns the instances' close failures
// joined. Safe to call twice; the second call finds nothing to close.
func (c *Container) Close() error {
	errs := c.drain()
	c.st.log.Info("container closed", logger.Fields("close_errors", len(errs)))
	return stderrors.Join(errs...)
}

func (c *Container) drain() []error {
	views := c.st.store.reset()
	var errs []error
	for _, v := range views {
		if err := closeInstance(v); err != nil {
			errs = append(errs, fmt.Errorf("close %s: %w", typeid.Name(v.reg.id), err))
		}
	}
	c.st.usage.reset()
	c.st.graph.Reset()
	if c.st.metrics != nil && len(views) > 0 {
		c.st.metrics.RecordRegistration(context.Background(), -int64(len(views)))
	}
	return errs
}

func closeInstance(v entryView) error {
	if !v.materialized {
		return nil
	}
	if closer, ok := v.instance.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
