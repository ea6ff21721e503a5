package container

import (
	"context"
	"fmt"
	"reflect"

	"github.com/kbukum/wirekit/errors"
	"github.com/kbukum/wirekit/scope"
	"github.com/kbukum/wirekit/typeid"
)

// factoryFunc is the normalized form every accepted factory shape is
// adapted into at registration time. The *Container argument is the
// resolution-bound view, never the root.
type factoryFunc func(ctx context.Context, c *Container) (any, error)

// Registration binds a type to a factory (or pre-built value) under one
// scope. Immutable after Register returns; re-registration replaces the
// whole Registration, it never merges.
type Registration struct {
	id      typeid.ID
	typ     reflect.Type
	scope   scope.Scope
	factory factoryFunc
	deps    []typeid.ID
	eager   bool
}

// ID returns the TypeID this registration is stored under.
func (r *Registration) ID() typeid.ID { return r.id }

// Type returns the registered type.
func (r *Registration) Type() reflect.Type { return r.typ }

// Scope returns the lifetime bucket.
func (r *Registration) Scope() scope.Scope { return r.scope }

// Dependencies returns the declared dependency IDs. Declared dependencies
// feed the graph; the engine does not verify factories against them.
func (r *Registration) Dependencies() []typeid.ID {
	out := make([]typeid.ID, len(r.deps))
	copy(out, r.deps)
	return out
}

// Eager reports whether WarmUp should materialize this registration.
func (r *Registration) Eager() bool { return r.eager }

// RegisterOption customizes a registration.
type RegisterOption func(*Registration)

// InScope stores the registration under an explicit scope.
func InScope(s scope.Scope) RegisterOption {
	return func(r *Registration) { r.scope = s }
}

// InSession stores the registration under session(id).
func InSession(id string) RegisterOption {
	return func(r *Registration) { r.scope = scope.Session(id) }
}

// InScreen stores the registration under screen(id).
func InScreen(id string) RegisterOption {
	return func(r *Registration) { r.scope = scope.Screen(id) }
}

// AsTransient makes every resolution invoke the factory again; nothing is
// cached.
func AsTransient() RegisterOption {
	return func(r *Registration) { r.scope = scope.Transient() }
}

// WithDependencies declares dependency IDs for the graph.
func WithDependencies(deps ...typeid.ID) RegisterOption {
	return func(r *Registration) { r.deps = append(r.deps, deps...) }
}

// DependsOn declares a dependency on T for the graph.
func DependsOn[T any]() RegisterOption {
	return func(r *Registration) { r.deps = append(r.deps, typeid.For[T]()) }
}

// AsEager marks the registration for materialization during WarmUp.
func AsEager() RegisterOption {
	return func(r *Registration) { r.eager = true }
}

var (
	ctxType       = reflect.TypeOf((*context.Context)(nil)).Elem()
	containerType = reflect.TypeOf((*Container)(nil))
	errorType     = reflect.TypeOf((*error)(nil)).Elem()
)

// normalizeFactory adapts a user factory into factoryFunc. Accepted
// shapes, with an optional trailing error return on each:
//
//	func() T
//	func(context.Context) T
//	func(*Container) T
//	func(context.Context, *Container) T
//
// T must be assignable to the registered type.
func normalizeFactory(target reflect.Type, factory any) (factoryFunc, error) {
	if factory == nil {
		return nil, errors.InvalidFactory("factory is nil")
	}
	fn := reflect.ValueOf(factory)
	fnType := fn.Type()
	if fnType.Kind() != reflect.Func {
		return nil, errors.InvalidFactory(fmt.Sprintf("factory must be a function, got %s", fnType.Kind()))
	}
	if fnType.IsVariadic() {
		return nil, errors.InvalidFactory("variadic factories are not supported")
	}

	switch fnType.NumOut() {
	case 1:
		if !assignable(fnType.Out(0), target) {
			return nil, errors.InvalidFactory(fmt.Sprintf("factory returns %s, want %s", fnType.Out(0), target))
		}
	case 2:
		if !assignable(fnType.Out(0), target) {
			return nil, errors.InvalidFactory(fmt.Sprintf("factory returns %s, want %s", fnType.Out(0), target))
		}
		if !fnType.Out(1).Implements(errorType) {
			return nil, errors.InvalidFactory("second return value must be error")
		}
	default:
		return nil, errors.InvalidFactory(fmt.Sprintf("factory must return (T) or (T, error), got %d values", fnType.NumOut()))
	}

	// Map the parameter list onto (ctx, container) argument builders.
	type argFn func(ctx context.Context, c *Container) reflect.Value
	var args []argFn
	for i := 0; i < fnType.NumIn(); i++ {
		in := fnType.In(i)
		switch {
		case in == ctxType:
			args = append(args, func(ctx context.Context, _ *Container) reflect.Value {
				return reflect.ValueOf(ctx)
			})
		case in == containerType:
			args = append(args, func(_ context.Context, c *Container) reflect.Value {
				return reflect.ValueOf(c)
			})
		default:
			return nil, errors.InvalidFactory(fmt.Sprintf("unsupported factory parameter %s; only context.Context and *container.Container are injected", in))
		}
	}
	if len(args) > 2 {
		return nil, errors.InvalidFactory(fmt.Sprintf("factory takes %d parameters, at most 2 are supported", len(args)))
	}

	returnsErr := fnType.NumOut() == 2
	return func(ctx context.Context, c *Container) (any, error) {
		in := make([]reflect.Value, len(args))
		for i, build := range args {
			in[i] = build(ctx, c)
		}
		results := fn.Call(in)
		if returnsErr {
			if errV := results[1]; !errV.IsNil() {
				return nil, errV.Interface().(error)
			}
		}
		return results[0].Interface(), nil
	}, nil
}

// assignable allows exact matches, interface satisfaction, and plain Go
// assignability between the factory's return type and the registered type.
func assignable(got, want reflect.Type) bool {
	if got == want {
		return true
	}
	if want.Kind() == reflect.Interface && got.Implements(want) {
		return true
	}
	return got.AssignableTo(want)
}
