package optimizer

import (
	"context"
	"testing"
	"time"

	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/kbukum/wirekit/container"
	"github.com/kbukum/wirekit/observability"
	"github.com/kbukum/wirekit/typeid"
)

type parserService struct{ lang string }
type lexerService struct{ mode int }

func TestIntervalClamping(t *testing.T) {
	c := container.New()
	o := New(c, WithInterval(5*time.Millisecond))
	if o.Interval() != MinInterval {
		t.Errorf("expected clamp to %v, got %v", MinInterval, o.Interval())
	}
	o.SetInterval(10 * time.Second)
	if o.Interval() != MaxInterval {
		t.Errorf("expected clamp to %v, got %v", MaxInterval, o.Interval())
	}
	o.SetInterval(300 * time.Millisecond)
	if o.Interval() != 300*time.Millisecond {
		t.Errorf("expected 300ms, got %v", o.Interval())
	}

	if New(c).Interval() != DefaultInterval {
		t.Errorf("expected default interval %v", DefaultInterval)
	}
}

func TestThresholdProxiesToTarget(t *testing.T) {
	c := container.New()
	o := New(c)

	o.SetThreshold(5)
	if c.PromotionThreshold() != 5 {
		t.Errorf("expected target threshold 5, got %d", c.PromotionThreshold())
	}
	if o.Threshold() != 5 {
		t.Errorf("expected optimizer view 5, got %d", o.Threshold())
	}
}

func TestSweepPromotesFrequentTypes(t *testing.T) {
	// Threshold starts high so inline promotion stays out of the way.
	c := container.New(container.WithPromotionThreshold(1000))
	if err := container.Register[*parserService](c, func() *parserService {
		return &parserService{lang: "go"}
	}); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 6; i++ {
		if _, err := container.Resolve[*parserService](c); err != nil {
			t.Fatal(err)
		}
	}

	o := New(c)
	id := typeid.For[*parserService]()

	stats := o.Sweep()
	if stats.Promoted != 0 || c.CacheContains(id) {
		t.Fatal("nothing should qualify at threshold 1000")
	}

	o.SetThreshold(5)
	stats = o.Sweep()
	if stats.Promoted != 1 {
		t.Fatalf("expected 1 promotion, got %d", stats.Promoted)
	}
	if !c.CacheContains(id) {
		t.Error("expected the frequent type in the hot cache")
	}

	// Re-sweeping must not count the already-promoted type again.
	stats = o.Sweep()
	if stats.Promoted != 0 {
		t.Errorf("expected no repeat promotion, got %d", stats.Promoted)
	}
}

func TestSweepReportsCyclesAndDangling(t *testing.T) {
	c := container.New()
	if err := container.Register[*parserService](c, func() *parserService { return &parserService{} },
		container.DependsOn[*lexerService]()); err != nil {
		t.Fatal(err)
	}
	if err := container.Register[*lexerService](c, func() *lexerService { return &lexerService{} },
		container.DependsOn[*parserService]()); err != nil {
		t.Fatal(err)
	}

	o := New(c)
	stats := o.Sweep()
	if len(stats.Cycles) != 1 {
		t.Fatalf("expected 1 cycle, got %d", len(stats.Cycles))
	}
	if stats.Healthy() {
		t.Error("a cyclic graph must not report healthy")
	}

	// Break the cycle; the dangling edge to the released type remains a
	// diagnostic, not a cycle.
	container.Release[*lexerService](c)
	stats = o.Sweep()
	if len(stats.Cycles) != 0 {
		t.Errorf("expected no cycles after release, got %v", stats.Cycles)
	}
	if len(stats.Dangling) == 0 {
		t.Error("expected dangling diagnostics for the released dependency")
	}
}

func TestSnapshotLifecycle(t *testing.T) {
	c := container.New()
	o := New(c)

	if o.Snapshot() != nil {
		t.Fatal("expected nil snapshot before the first sweep")
	}

	first := o.Sweep()
	if o.Snapshot() != first {
		t.Error("Snapshot must return the published sweep")
	}

	if err := container.Register[*parserService](c, func() *parserService { return &parserService{} }); err != nil {
		t.Fatal(err)
	}
	second := o.Sweep()
	if len(first.Registered) != 0 {
		t.Error("published snapshots must not change after later sweeps")
	}
	if len(second.Registered) != 1 {
		t.Errorf("expected 1 registered type, got %v", second.Registered)
	}
}

func TestStartStopIdempotent(t *testing.T) {
	c := container.New()
	o := New(c, WithInterval(MinInterval))

	o.Start()
	o.Start()
	if !o.Running() {
		t.Fatal("expected running optimizer")
	}
	o.Stop()
	o.Stop()
	if o.Running() {
		t.Fatal("expected stopped optimizer")
	}

	// Restartable after a stop.
	o.Start()
	if !o.Running() {
		t.Fatal("expected optimizer to restart")
	}
	o.Stop()
}

func TestBackgroundPromotion(t *testing.T) {
	c := container.New(container.WithPromotionThreshold(1000))
	if err := container.Register[*lexerService](c, func() *lexerService {
		return &lexerService{}
	}); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 8; i++ {
		if _, err := container.Resolve[*lexerService](c); err != nil {
			t.Fatal(err)
		}
	}

	o := New(c, WithInterval(MinInterval))
	o.SetThreshold(4)
	o.Start()
	defer o.Stop()

	id := typeid.For[*lexerService]()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if c.CacheContains(id) {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("background sweep never promoted the frequent type")
}

func TestHealthBeforeFirstSweep(t *testing.T) {
	o := New(container.New())

	h := o.Health()
	if h.Name != "optimizer" {
		t.Errorf("expected component name 'optimizer', got %q", h.Name)
	}
	if h.Status != observability.HealthStatusUp {
		t.Errorf("expected up before any sweep, got %s", h.Status)
	}
	if h.Message == "" {
		t.Error("expected a message noting no sweep has run")
	}
}

func TestHealthAfterSweep(t *testing.T) {
	c := container.New()
	o := New(c)
	o.Sweep()

	h := o.Health()
	if h.Status != observability.HealthStatusUp {
		t.Errorf("expected up for a clean graph, got %s", h.Status)
	}
	if h.Details["interval"] != o.Interval().String() {
		t.Errorf("expected interval detail %s, got %s", o.Interval(), h.Details["interval"])
	}
	if h.Details["threshold"] == "" {
		t.Error("expected threshold detail")
	}
}

func TestSweepEmitsSpan(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(prev)
		_ = tp.Shutdown(context.Background())
	})

	c := container.New(container.WithName("swept"))
	o := New(c)
	o.Sweep()

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("expected 1 sweep span, got %d", len(spans))
	}
	if spans[0].Name != observability.SpanSweep {
		t.Errorf("expected span %q, got %q", observability.SpanSweep, spans[0].Name)
	}
	gotContainer := ""
	for _, attr := range spans[0].Attributes {
		if string(attr.Key) == observability.AttrContainerName {
			gotContainer = attr.Value.Emit()
		}
	}
	if gotContainer != "swept" {
		t.Errorf("expected container attribute 'swept', got %q", gotContainer)
	}
}

func TestHealthDegradedOnCycle(t *testing.T) {
	c := container.New()
	if err := container.Register[*parserService](c, func() *parserService { return &parserService{} },
		container.DependsOn[*lexerService]()); err != nil {
		t.Fatal(err)
	}
	if err := container.Register[*lexerService](c, func() *lexerService { return &lexerService{} },
		container.DependsOn[*parserService]()); err != nil {
		t.Fatal(err)
	}

	o := New(c)
	o.Sweep()

	h := o.Health()
	if h.Status != observability.HealthStatusDegraded {
		t.Errorf("expected degraded for a cyclic graph, got %s", h.Status)
	}
}
