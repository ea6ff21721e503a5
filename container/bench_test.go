package container

import (
	"testing"

	"github.com/kbukum/wirekit/typeid"
)

type benchService struct{ n int }

func BenchmarkResolveCacheHit(b *testing.B) {
	c := New(WithPromotionThreshold(1))
	if err := RegisterValue[*benchService](c, &benchService{n: 1}); err != nil {
		b.Fatal(err)
	}
	if _, err := Resolve[*benchService](c); err != nil { // promote
		b.Fatal(err)
	}
	if !c.CacheContains(typeid.For[*benchService]()) {
		b.Fatal("expected promoted entry")
	}

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			if _, err := Resolve[*benchService](c); err != nil {
				b.Fatal(err)
			}
		}
	})
}

func BenchmarkResolveStoreHit(b *testing.B) {
	// Threshold high enough that the store path stays exercised.
	c := New(WithPromotionThreshold(1 << 30))
	if err := RegisterValue[*benchService](c, &benchService{n: 1}); err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			if _, err := Resolve[*benchService](c); err != nil {
				b.Fatal(err)
			}
		}
	})
}

func BenchmarkResolveTransient(b *testing.B) {
	c := New()
	if err := Register[*benchService](c, func() *benchService {
		return &benchService{n: 2}
	}, AsTransient()); err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Resolve[*benchService](c); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkRegisterReplace(b *testing.B) {
	c := New()
	factory := func() *benchService { return &benchService{} }

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := Register[*benchService](c, factory); err != nil {
			b.Fatal(err)
		}
	}
}
