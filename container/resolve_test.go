package container

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/kbukum/wirekit/errors"
	"github.com/kbukum/wirekit/graph"
	"github.com/kbukum/wirekit/scope"
	"github.com/kbukum/wirekit/typeid"
)

type networkService interface {
	Endpoint() string
}

type httpNetwork struct{ addr string }

func (n *httpNetwork) Endpoint() string { return n.addr }

type userService struct {
	network networkService
}

type cycleA struct{ b *cycleB }
type cycleB struct{ a *cycleA }

func TestSingletonIdentity(t *testing.T) {
	c := New()
	if err := Register[greeter](c, func() greeter {
		return &consoleGreeter{prefix: "console"}
	}); err != nil {
		t.Fatal(err)
	}

	first, err := Resolve[greeter](c)
	if err != nil {
		t.Fatalf("first resolve failed: %v", err)
	}
	second, err := Resolve[greeter](c)
	if err != nil {
		t.Fatalf("second resolve failed: %v", err)
	}
	if first != second {
		t.Error("singleton resolutions must return the same instance")
	}
}

func TestTransientAlwaysFresh(t *testing.T) {
	c := New()
	var built atomic.Int32
	if err := Register[*consoleGreeter](c, func() *consoleGreeter {
		built.Add(1)
		return &consoleGreeter{}
	}, AsTransient()); err != nil {
		t.Fatal(err)
	}

	a, err := Resolve[*consoleGreeter](c)
	if err != nil {
		t.Fatal(err)
	}
	b, err := Resolve[*consoleGreeter](c)
	if err != nil {
		t.Fatal(err)
	}
	if a == b {
		t.Error("transient resolutions must build fresh instances")
	}
	if built.Load() != 2 {
		t.Errorf("expected 2 factory runs, got %d", built.Load())
	}
}

func TestScopePriorityOrder(t *testing.T) {
	c := New()
	mk := func(p string) func() greeter {
		return func() greeter { return &consoleGreeter{prefix: p} }
	}

	if err := Register[greeter](c, mk("screen"), InScreen("home")); err != nil {
		t.Fatal(err)
	}
	if err := Register[greeter](c, mk("session-z"), InSession("z")); err != nil {
		t.Fatal(err)
	}
	if err := Register[greeter](c, mk("session-a"), InSession("a")); err != nil {
		t.Fatal(err)
	}

	// No singleton: the lexicographically first session bucket wins.
	g, err := Resolve[greeter](c)
	if err != nil {
		t.Fatal(err)
	}
	if g.Greet() != "session-a hello" {
		t.Errorf("expected session-a to win, got %q", g.Greet())
	}

	// A singleton outranks every keyed bucket.
	if err := Register[greeter](c, mk("singleton")); err != nil {
		t.Fatal(err)
	}
	g, err = Resolve[greeter](c)
	if err != nil {
		t.Fatal(err)
	}
	if g.Greet() != "singleton hello" {
		t.Errorf("expected singleton to win, got %q", g.Greet())
	}

	// An explicit scope ignores the priority chain.
	g, err = Resolve[greeter](c, In(scope.Screen("home")))
	if err != nil {
		t.Fatal(err)
	}
	if g.Greet() != "screen hello" {
		t.Errorf("expected screen registration, got %q", g.Greet())
	}
}

func TestExplicitScopeDoesNotFallBack(t *testing.T) {
	c := New()
	if err := Register[greeter](c, func() greeter { return &consoleGreeter{} }); err != nil {
		t.Fatal(err)
	}

	_, err := Resolve[greeter](c, In(scope.Session("s")))
	if !errors.IsNotRegistered(err) {
		t.Errorf("explicit scope must not fall back to singleton, got %v", err)
	}
}

func TestNotRegistered(t *testing.T) {
	c := New()
	_, err := Resolve[networkService](c)
	if err == nil {
		t.Fatal("expected error for unregistered type")
	}
	if !errors.IsNotRegistered(err) {
		t.Errorf("expected NOT_REGISTERED, got %v", err)
	}
	if !strings.Contains(err.Error(), "networkService") {
		t.Errorf("expected type name in error, got %q", err.Error())
	}
}

func TestNestedResolution(t *testing.T) {
	c := New()
	if err := Register[networkService](c, func() networkService {
		return &httpNetwork{addr: "localhost:8080"}
	}); err != nil {
		t.Fatal(err)
	}
	if err := Register[*userService](c, func(c *Container) (*userService, error) {
		n, err := Resolve[networkService](c)
		if err != nil {
			return nil, err
		}
		return &userService{network: n}, nil
	}); err != nil {
		t.Fatal(err)
	}

	u, err := Resolve[*userService](c)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if u.network.Endpoint() != "localhost:8080" {
		t.Errorf("unexpected endpoint %q", u.network.Endpoint())
	}
}

func TestNestedResolutionMissingDependency(t *testing.T) {
	c := New()
	if err := Register[*userService](c, func(c *Container) (*userService, error) {
		n, err := Resolve[networkService](c)
		if err != nil {
			return nil, err
		}
		return &userService{network: n}, nil
	}); err != nil {
		t.Fatal(err)
	}

	_, err := Resolve[*userService](c)
	if err == nil {
		t.Fatal("expected inner NotRegistered to propagate")
	}
	if !errors.IsNotRegistered(err) {
		t.Errorf("expected NOT_REGISTERED through the factory wrap, got %v", err)
	}
	if !strings.Contains(err.Error(), "userService factory") {
		t.Errorf("expected outer factory context in error, got %q", err.Error())
	}
}

func TestRuntimeCycleDetection(t *testing.T) {
	c := New()
	if err := Register[*cycleA](c, func(c *Container) (*cycleA, error) {
		b, err := Resolve[*cycleB](c)
		if err != nil {
			return nil, err
		}
		return &cycleA{b: b}, nil
	}); err != nil {
		t.Fatal(err)
	}
	if err := Register[*cycleB](c, func(c *Container) (*cycleB, error) {
		a, err := Resolve[*cycleA](c)
		if err != nil {
			return nil, err
		}
		return &cycleB{a: a}, nil
	}); err != nil {
		t.Fatal(err)
	}

	_, err := Resolve[*cycleA](c)
	if err == nil {
		t.Fatal("expected circular dependency error")
	}
	if !errors.IsCircularDependency(err) {
		t.Fatalf("expected CIRCULAR_DEPENDENCY, got %v", err)
	}

	path := errors.CyclePath(err)
	if len(path) != 3 {
		t.Fatalf("expected path of 3, got %v", path)
	}
	aName := typeid.Name(typeid.For[*cycleA]())
	bName := typeid.Name(typeid.For[*cycleB]())
	if path[0] != aName || path[1] != bName || path[2] != aName {
		t.Errorf("expected path [%s %s %s], got %v", aName, bName, aName, path)
	}
}

func TestDirectSelfResolution(t *testing.T) {
	c := New()
	if err := Register[*cycleA](c, func(c *Container) (*cycleA, error) {
		return Resolve[*cycleA](c)
	}); err != nil {
		t.Fatal(err)
	}

	_, err := Resolve[*cycleA](c)
	if !errors.IsCircularDependency(err) {
		t.Errorf("expected CIRCULAR_DEPENDENCY for self-resolving factory, got %v", err)
	}
	if path := errors.CyclePath(err); len(path) != 2 {
		t.Errorf("expected path [A A], got %v", path)
	}
}

func TestObservedEdgesRecorded(t *testing.T) {
	c := New()
	if err := Register[networkService](c, func() networkService {
		return &httpNetwork{}
	}); err != nil {
		t.Fatal(err)
	}
	if err := Register[*userService](c, func(c *Container) (*userService, error) {
		n, _ := Resolve[networkService](c)
		return &userService{network: n}, nil
	}); err != nil {
		t.Fatal(err)
	}

	if _, err := Resolve[*userService](c); err != nil {
		t.Fatal(err)
	}

	from := typeid.For[*userService]()
	to := typeid.For[networkService]()
	var found bool
	for _, e := range c.GraphSnapshot().Edges {
		if e.From == from && e.To == to && e.Label == graph.LabelObserved {
			found = true
		}
	}
	if !found {
		t.Error("expected an observed edge from userService to networkService")
	}
}

func TestDeclaredEdgesRecorded(t *testing.T) {
	c := New()
	if err := Register[*userService](c, func() *userService { return &userService{} },
		DependsOn[networkService]()); err != nil {
		t.Fatal(err)
	}

	s := c.GraphSnapshot()
	if len(s.Edges) != 1 || s.Edges[0].Label != graph.LabelDeclared {
		t.Fatalf("expected one declared edge, got %+v", s.Edges)
	}
	// networkService was never registered: the edge is dangling.
	if len(s.Dangling()) != 1 {
		t.Errorf("expected dangling diagnostic, got %v", s.Dangling())
	}
}

func TestMustResolvePanicsWhenMissing(t *testing.T) {
	c := New()
	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected MustResolve to panic")
		}
		if !strings.Contains(r.(string), "required dependency") {
			t.Errorf("unexpected panic %v", r)
		}
	}()
	MustResolve[networkService](c)
}

func TestTryResolve(t *testing.T) {
	c := New()
	if _, ok := TryResolve[networkService](c); ok {
		t.Error("expected TryResolve to report false for unregistered type")
	}

	if err := Register[networkService](c, func() networkService {
		return &httpNetwork{addr: "a"}
	}); err != nil {
		t.Fatal(err)
	}
	n, ok := TryResolve[networkService](c)
	if !ok || n.Endpoint() != "a" {
		t.Errorf("expected resolved service, got %v %v", n, ok)
	}
}

func TestResolveCtxCancelledBeforeFactory(t *testing.T) {
	c := New()
	var built atomic.Int32
	if err := Register[*consoleGreeter](c, func() *consoleGreeter {
		built.Add(1)
		return &consoleGreeter{}
	}); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := ResolveCtx[*consoleGreeter](ctx, c); err == nil {
		t.Fatal("expected context error")
	}
	if built.Load() != 0 {
		t.Error("factory must not run after cancellation")
	}
}

func TestScreenReleaseScenario(t *testing.T) {
	c := New()

	reg := func(name string, factory any) {
		t.Helper()
		var err error
		switch name {
		case "greeter":
			err = Register[greeter](c, factory, InScreen("home"))
		case "network":
			err = Register[networkService](c, factory, InScreen("home"))
		case "user":
			err = Register[*userService](c, factory, InScreen("home"))
		}
		if err != nil {
			t.Fatalf("register %s: %v", name, err)
		}
	}
	reg("greeter", func() greeter { return &consoleGreeter{} })
	reg("network", func() networkService { return &httpNetwork{} })
	reg("user", func() *userService { return &userService{} })

	// The same greeter also lives as a singleton.
	single := &consoleGreeter{prefix: "single"}
	if err := RegisterValue[greeter](c, single); err != nil {
		t.Fatal(err)
	}

	if err := c.ReleaseScope(scope.KindScreen, "home"); err != nil {
		t.Fatalf("ReleaseScope failed: %v", err)
	}

	home := In(scope.Screen("home"))
	if _, err := Resolve[greeter](c, home); !errors.IsNotRegistered(err) {
		t.Errorf("expected NOT_REGISTERED for greeter, got %v", err)
	}
	if _, err := Resolve[networkService](c, home); !errors.IsNotRegistered(err) {
		t.Errorf("expected NOT_REGISTERED for network, got %v", err)
	}
	if _, err := Resolve[*userService](c, home); !errors.IsNotRegistered(err) {
		t.Errorf("expected NOT_REGISTERED for user, got %v", err)
	}

	g, err := Resolve[greeter](c)
	if err != nil {
		t.Fatalf("singleton must remain resolvable: %v", err)
	}
	if g != greeter(single) {
		t.Error("expected the singleton instance")
	}
}

func TestConcurrentSingletonResolution(t *testing.T) {
	c := New()
	var built atomic.Int32
	if err := Register[greeter](c, func() greeter {
		built.Add(1)
		return &consoleGreeter{prefix: "shared"}
	}); err != nil {
		t.Fatal(err)
	}

	const workers = 32
	results := make([]greeter, workers)
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func(i int) {
			defer wg.Done()
			g, err := Resolve[greeter](c)
			if err != nil {
				t.Errorf("worker %d: %v", i, err)
				return
			}
			results[i] = g
		}(i)
	}
	wg.Wait()

	// Racing flights may each run the factory, but the first commit wins
	// and every caller must observe that one instance.
	for i := 1; i < workers; i++ {
		if results[i] != results[0] {
			t.Fatalf("worker %d observed a different instance", i)
		}
	}
	if built.Load() == 0 {
		t.Error("factory never ran")
	}
}

func TestConcurrentRegisterAndResolve(t *testing.T) {
	c := New()
	if err := Register[networkService](c, func() networkService { return &httpNetwork{} }); err != nil {
		t.Fatal(err)
	}

	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-stop:
				return
			default:
			}
			_ = Register[greeter](c, func() greeter { return &consoleGreeter{} }, InSession("s"))
			Release[greeter](c, In(scope.Session("s")))
		}
	}()

	for i := 0; i < 1000; i++ {
		if _, err := Resolve[networkService](c); err != nil {
			t.Fatalf("resolve failed under concurrent writes: %v", err)
		}
	}
	close(stop)
	wg.Wait()
}
