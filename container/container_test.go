package container

import (
	"context"
	"strings"
	"testing"

	"github.com/kbukum/wirekit/errors"
	"github.com/kbukum/wirekit/scope"
	"github.com/kbukum/wirekit/typeid"
)

type greeter interface {
	Greet() string
}

type consoleGreeter struct{ prefix string }

func (g *consoleGreeter) Greet() string { return g.prefix + " hello" }

type trackedCloser struct {
	closed bool
	fail   error
}

func (t *trackedCloser) Close() error {
	t.closed = true
	return t.fail
}

func TestNew(t *testing.T) {
	c := New()
	if c == nil {
		t.Fatal("expected non-nil container")
	}
	if c.Len() != 0 {
		t.Errorf("expected empty container, got %d registrations", c.Len())
	}
	if c.PromotionThreshold() != DefaultPromotionThreshold {
		t.Errorf("expected default threshold %d, got %d", DefaultPromotionThreshold, c.PromotionThreshold())
	}
}

func TestRegisterAndResolve(t *testing.T) {
	c := New()

	err := Register[greeter](c, func() greeter {
		return &consoleGreeter{prefix: "console"}
	})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	g, err := Resolve[greeter](c)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if g.Greet() != "console hello" {
		t.Errorf("unexpected greeting %q", g.Greet())
	}
}

func TestFactoryShapes(t *testing.T) {
	tests := []struct {
		name    string
		factory any
	}{
		{"plain", func() *consoleGreeter { return &consoleGreeter{} }},
		{"with error", func() (*consoleGreeter, error) { return &consoleGreeter{}, nil }},
		{"context", func(ctx context.Context) *consoleGreeter { return &consoleGreeter{} }},
		{"context and error", func(ctx context.Context) (*consoleGreeter, error) { return &consoleGreeter{}, nil }},
		{"container", func(c *Container) *consoleGreeter { return &consoleGreeter{} }},
		{"container and error", func(c *Container) (*consoleGreeter, error) { return &consoleGreeter{}, nil }},
		{"context container error", func(ctx context.Context, c *Container) (*consoleGreeter, error) { return &consoleGreeter{}, nil }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New()
			if err := Register[*consoleGreeter](c, tt.factory); err != nil {
				t.Fatalf("Register failed: %v", err)
			}
			if _, err := Resolve[*consoleGreeter](c); err != nil {
				t.Fatalf("Resolve failed: %v", err)
			}
		})
	}
}

func TestRejectedFactories(t *testing.T) {
	tests := []struct {
		name    string
		factory any
	}{
		{"nil", nil},
		{"not a function", "hello"},
		{"no returns", func() {}},
		{"wrong return type", func() int { return 1 }},
		{"second return not error", func() (*consoleGreeter, int) { return nil, 0 }},
		{"three returns", func() (*consoleGreeter, *consoleGreeter, error) { return nil, nil, nil }},
		{"unsupported parameter", func(n int) *consoleGreeter { return nil }},
		{"variadic", func(cs ...*Container) *consoleGreeter { return nil }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New()
			err := Register[*consoleGreeter](c, tt.factory)
			if err == nil {
				t.Fatal("expected registration to fail")
			}
			if !errors.Is(err, errors.ErrCodeInvalidFactory) {
				t.Errorf("expected INVALID_FACTORY, got %v", err)
			}
		})
	}
}

func TestRegisterValue(t *testing.T) {
	c := New()
	g := &consoleGreeter{prefix: "built"}

	if err := RegisterValue[greeter](c, g); err != nil {
		t.Fatalf("RegisterValue failed: %v", err)
	}

	got, err := Resolve[greeter](c)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if got != greeter(g) {
		t.Error("expected the registered value back")
	}
}

func TestRegisterValueTransientRejected(t *testing.T) {
	c := New()
	err := RegisterValue[*consoleGreeter](c, &consoleGreeter{}, AsTransient())
	if err == nil {
		t.Fatal("expected transient value registration to fail")
	}
	if !errors.Is(err, errors.ErrCodeInvalidScope) {
		t.Errorf("expected INVALID_SCOPE, got %v", err)
	}
}

func TestReplaceNotMerge(t *testing.T) {
	c := New()

	first := &consoleGreeter{prefix: "first"}
	second := &consoleGreeter{prefix: "second"}

	if err := RegisterValue[greeter](c, first); err != nil {
		t.Fatal(err)
	}
	if _, err := Resolve[greeter](c); err != nil {
		t.Fatal(err)
	}
	if err := RegisterValue[greeter](c, second); err != nil {
		t.Fatal(err)
	}

	if c.Len() != 1 {
		t.Errorf("re-registration must replace, got %d registrations", c.Len())
	}
	got, err := Resolve[greeter](c)
	if err != nil {
		t.Fatal(err)
	}
	if got != greeter(second) {
		t.Error("resolve after re-registration returned the old instance")
	}
}

func TestSelfCycleRejectedAtRegistration(t *testing.T) {
	c := New()
	err := Register[greeter](c, func() greeter { return &consoleGreeter{} },
		DependsOn[greeter]())
	if err == nil {
		t.Fatal("expected self-referential registration to fail")
	}
	if !errors.IsCircularDependency(err) {
		t.Errorf("expected CIRCULAR_DEPENDENCY, got %v", err)
	}
	if c.Len() != 0 {
		t.Error("rejected registration must not be stored")
	}
}

func TestInvalidScopeRejected(t *testing.T) {
	c := New()
	err := Register[greeter](c, func() greeter { return &consoleGreeter{} },
		InScope(scope.Scope{Kind: scope.KindSession}))
	if err == nil {
		t.Fatal("expected keyed scope without id to fail")
	}
	if !errors.Is(err, errors.ErrCodeInvalidScope) {
		t.Errorf("expected INVALID_SCOPE, got %v", err)
	}
}

func TestReleaseType(t *testing.T) {
	c := New()
	if err := Register[greeter](c, func() greeter { return &consoleGreeter{} }); err != nil {
		t.Fatal(err)
	}

	if !Release[greeter](c) {
		t.Fatal("expected release to remove the registration")
	}
	if Release[greeter](c) {
		t.Error("second release should find nothing")
	}
	if _, err := Resolve[greeter](c); !errors.IsNotRegistered(err) {
		t.Errorf("expected NOT_REGISTERED after release, got %v", err)
	}
}

func TestReleaseClosesInstance(t *testing.T) {
	c := New()
	tc := &trackedCloser{}
	if err := RegisterValue[*trackedCloser](c, tc); err != nil {
		t.Fatal(err)
	}
	Release[*trackedCloser](c)
	if !tc.closed {
		t.Error("expected materialized instance to be closed on release")
	}
}

func TestScopeIsolation(t *testing.T) {
	c := New()

	mk := func(p string) func() greeter {
		return func() greeter { return &consoleGreeter{prefix: p} }
	}
	if err := Register[greeter](c, mk("a"), InSession("a")); err != nil {
		t.Fatal(err)
	}
	if err := Register[greeter](c, mk("b"), InSession("b")); err != nil {
		t.Fatal(err)
	}
	if err := Register[*consoleGreeter](c, func() *consoleGreeter { return &consoleGreeter{} }); err != nil {
		t.Fatal(err)
	}

	if err := c.ReleaseScope(scope.KindSession, "a"); err != nil {
		t.Fatalf("ReleaseScope failed: %v", err)
	}

	if _, err := Resolve[greeter](c, In(scope.Session("a"))); !errors.IsNotRegistered(err) {
		t.Errorf("expected NOT_REGISTERED in released session, got %v", err)
	}
	if _, err := Resolve[greeter](c, In(scope.Session("b"))); err != nil {
		t.Errorf("session b must survive releasing session a: %v", err)
	}
	if _, err := Resolve[*consoleGreeter](c); err != nil {
		t.Errorf("singleton must survive releasing a session: %v", err)
	}
}

func TestReleaseScopeErrors(t *testing.T) {
	c := New()

	err := c.ReleaseScope(scope.KindSession, "missing")
	if !errors.IsScopeNotFound(err) {
		t.Errorf("expected SCOPE_NOT_FOUND for unknown bucket, got %v", err)
	}

	err = c.ReleaseScope(scope.KindSingleton, "")
	if !errors.Is(err, errors.ErrCodeInvalidScope) {
		t.Errorf("expected INVALID_SCOPE for singleton, got %v", err)
	}
}

func TestReleaseAll(t *testing.T) {
	c := New()
	if err := Register[greeter](c, func() greeter { return &consoleGreeter{} }); err != nil {
		t.Fatal(err)
	}
	if err := Register[*consoleGreeter](c, func() *consoleGreeter { return &consoleGreeter{} }, InSession("s")); err != nil {
		t.Fatal(err)
	}
	if _, err := Resolve[greeter](c); err != nil {
		t.Fatal(err)
	}

	id := typeid.For[greeter]()
	c.ReleaseAll()

	if c.Len() != 0 {
		t.Errorf("expected no registrations, got %d", c.Len())
	}
	if c.CacheLen() != 0 {
		t.Error("expected empty cache after ReleaseAll")
	}
	if c.UsageCount(id) != 0 {
		t.Error("expected usage counters cleared")
	}
	if got := len(c.GraphSnapshot().Nodes); got != 0 {
		t.Errorf("expected empty graph, got %d nodes", got)
	}
	// TypeIDs survive a release; the same type maps to the same ID.
	if typeid.For[greeter]() != id {
		t.Error("TypeID must be stable across ReleaseAll")
	}
}

func TestCloseJoinsErrors(t *testing.T) {
	c := New()
	bad := &trackedCloser{fail: errors.New(errors.ErrCodeInternal, "close failed")}
	good := &trackedCloser{}

	if err := RegisterValue[*trackedCloser](c, bad); err != nil {
		t.Fatal(err)
	}
	if err := RegisterValue[greeter](c, &consoleGreeter{}); err != nil {
		t.Fatal(err)
	}
	if err := RegisterValue[*trackedCloser](c, good, InSession("s")); err != nil {
		t.Fatal(err)
	}

	err := c.Close()
	if err == nil {
		t.Fatal("expected joined close error")
	}
	if !strings.Contains(err.Error(), "close failed") {
		t.Errorf("expected close failure in joined error, got %v", err)
	}
	if !bad.closed || !good.closed {
		t.Error("expected every materialized closer to be closed")
	}

	if err := c.Close(); err != nil {
		t.Errorf("second close should be a no-op, got %v", err)
	}
}

func TestWarmUp(t *testing.T) {
	c := New()
	built := false
	if err := Register[*consoleGreeter](c, func() *consoleGreeter {
		built = true
		return &consoleGreeter{}
	}, AsEager()); err != nil {
		t.Fatal(err)
	}
	if built {
		t.Fatal("eager factory must not run at registration time")
	}

	if err := c.WarmUp(context.Background()); err != nil {
		t.Fatalf("WarmUp failed: %v", err)
	}
	if !built {
		t.Error("expected eager registration to materialize during warm up")
	}
}

func TestWarmUpPropagatesFactoryError(t *testing.T) {
	c := New()
	if err := Register[*consoleGreeter](c, func() (*consoleGreeter, error) {
		return nil, errors.New(errors.ErrCodeInternal, "boom")
	}, AsEager()); err != nil {
		t.Fatal(err)
	}

	if err := c.WarmUp(context.Background()); err == nil {
		t.Error("expected warm up to surface the factory error")
	}
}

func TestRegistrationsIntrospection(t *testing.T) {
	c := New()
	if err := Register[greeter](c, func() greeter { return &consoleGreeter{} }); err != nil {
		t.Fatal(err)
	}
	if err := Register[*consoleGreeter](c, func() *consoleGreeter { return &consoleGreeter{} }, InSession("s"), AsEager()); err != nil {
		t.Fatal(err)
	}
	if _, err := Resolve[greeter](c); err != nil {
		t.Fatal(err)
	}

	infos := c.Registrations()
	if len(infos) != 2 {
		t.Fatalf("expected 2 registrations, got %d", len(infos))
	}
	byType := make(map[string]RegistrationInfo)
	for _, info := range infos {
		byType[info.Type] = info
	}
	g := byType[typeid.Name(typeid.For[greeter]())]
	if !g.Materialized {
		t.Error("resolved singleton should report materialized")
	}
	if g.Usage != 1 {
		t.Errorf("expected usage 1, got %d", g.Usage)
	}
	s := byType[typeid.Name(typeid.For[*consoleGreeter]())]
	if !s.Eager || s.Materialized {
		t.Errorf("unexpected session info %+v", s)
	}
}

func TestDefaultIsShared(t *testing.T) {
	a := Default()
	b := Default()
	if a != b {
		t.Fatal("Default must return the same container")
	}
	if err := Register[greeter](a, func() greeter { return &consoleGreeter{} }); err != nil {
		t.Fatal(err)
	}
	defer a.ReleaseAll()

	if _, err := Resolve[greeter](b); err != nil {
		t.Errorf("registration through one handle must be visible through the other: %v", err)
	}
}
