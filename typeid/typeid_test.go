package typeid

import (
	"reflect"
	"sync"
	"testing"
)

type serviceA struct{}
type serviceB struct{}

type greeter interface {
	Greet() string
}

func TestOfIsIdempotent(t *testing.T) {
	a := NewAllocator()
	ta := reflect.TypeOf(serviceA{})

	first := a.Of(ta)
	second := a.Of(ta)
	if first != second {
		t.Errorf("expected stable ID, got %d then %d", first, second)
	}
}

func TestOfAssignsDenseIDs(t *testing.T) {
	a := NewAllocator()

	id1 := a.Of(reflect.TypeOf(serviceA{}))
	id2 := a.Of(reflect.TypeOf(serviceB{}))

	if id1 != 1 {
		t.Errorf("expected first ID to be 1, got %d", id1)
	}
	if id2 != 2 {
		t.Errorf("expected second ID to be 2, got %d", id2)
	}
	if a.Count() != 2 {
		t.Errorf("expected count 2, got %d", a.Count())
	}
}

func TestLookupDoesNotAllocate(t *testing.T) {
	a := NewAllocator()

	if _, ok := a.Lookup(reflect.TypeOf(serviceA{})); ok {
		t.Error("expected Lookup to miss before allocation")
	}
	if a.Count() != 0 {
		t.Errorf("expected Lookup not to allocate, count=%d", a.Count())
	}

	id := a.Of(reflect.TypeOf(serviceA{}))
	got, ok := a.Lookup(reflect.TypeOf(serviceA{}))
	if !ok || got != id {
		t.Errorf("expected Lookup to return %d, got %d ok=%v", id, got, ok)
	}
}

func TestTypeOfRoundTrip(t *testing.T) {
	a := NewAllocator()
	ta := reflect.TypeOf(&serviceA{})

	id := a.Of(ta)
	back, ok := a.TypeOf(id)
	if !ok {
		t.Fatal("expected TypeOf to find the allocated ID")
	}
	if back != ta {
		t.Errorf("expected %v, got %v", ta, back)
	}
}

func TestTypeOfUnknownID(t *testing.T) {
	a := NewAllocator()
	if _, ok := a.TypeOf(None); ok {
		t.Error("expected None to be unknown")
	}
	if _, ok := a.TypeOf(42); ok {
		t.Error("expected unissued ID to be unknown")
	}
}

func TestNameForKnownAndUnknown(t *testing.T) {
	a := NewAllocator()
	id := a.Of(reflect.TypeOf(serviceA{}))

	if name := a.Name(id); name != "typeid.serviceA" {
		t.Errorf("unexpected name %q", name)
	}
	if name := a.Name(99); name != "typeid(99)" {
		t.Errorf("unexpected fallback name %q", name)
	}
}

func TestForInterfaceType(t *testing.T) {
	id1 := For[greeter]()
	id2 := For[greeter]()
	if id1 != id2 {
		t.Errorf("expected stable interface ID, got %d then %d", id1, id2)
	}

	ty := TypeFor[greeter]()
	if ty.Kind() != reflect.Interface {
		t.Errorf("expected interface kind, got %v", ty.Kind())
	}
}

func TestGlobalAndForAgree(t *testing.T) {
	byFor := For[serviceB]()
	byOf := Of(reflect.TypeOf(serviceB{}))
	if byFor != byOf {
		t.Errorf("For and Of disagree: %d vs %d", byFor, byOf)
	}
}

func TestConcurrentAllocationIsStable(t *testing.T) {
	a := NewAllocator()
	types := []reflect.Type{
		reflect.TypeOf(serviceA{}),
		reflect.TypeOf(serviceB{}),
		reflect.TypeOf(""),
		reflect.TypeOf(0),
		reflect.TypeOf(0.0),
	}

	const workers = 8
	results := make([][]ID, workers)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			ids := make([]ID, len(types))
			for i, ty := range types {
				ids[i] = a.Of(ty)
			}
			results[w] = ids
		}(w)
	}
	wg.Wait()

	for w := 1; w < workers; w++ {
		for i := range types {
			if results[w][i] != results[0][i] {
				t.Fatalf("worker %d got ID %d for type %d, worker 0 got %d",
					w, results[w][i], i, results[0][i])
			}
		}
	}
	if a.Count() != len(types) {
		t.Errorf("expected %d allocations, got %d", len(types), a.Count())
	}
}
