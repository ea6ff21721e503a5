package optimizer

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/kbukum/wirekit/graph"
	"github.com/kbukum/wirekit/logger"
	"github.com/kbukum/wirekit/observability"
	"github.com/kbukum/wirekit/typeid"
)

// Debounce window bounds. Sub-50ms sweeps burn CPU on graphs that cannot
// change that fast; above a second the cache reacts too slowly to be
// worth running at all.
const (
	MinInterval     = 50 * time.Millisecond
	MaxInterval     = 1000 * time.Millisecond
	DefaultInterval = 200 * time.Millisecond
)

// Target is the container surface the optimizer drives. *container.Container
// implements it.
type Target interface {
	Name() string
	UsageCounts() map[typeid.ID]uint64
	PromotionThreshold() int
	SetPromotionThreshold(n int)
	Promote(id typeid.ID) bool
	GraphSnapshot() *graph.Snapshot
	CacheLen() int
}

// Optimizer is safe for concurrent use. Start and Stop are idempotent.
type Optimizer struct {
	target   Target
	log      *logger.Logger
	metrics  *observability.Metrics
	interval atomic.Int64 // nanoseconds
	latest   atomic.Pointer[Stats]

	mu      sync.Mutex
	running bool
	stop    chan struct{}
	done    chan struct{}
}

// Option configures an Optimizer at construction.
type Option func(*Optimizer)

// WithInterval sets the debounce window, clamped to [50ms, 1000ms].
func WithInterval(d time.Duration) Option {
	return func(o *Optimizer) { o.interval.Store(int64(clampInterval(d))) }
}

// WithLogger overrides the component logger.
func WithLogger(l *logger.Logger) Option {
	return func(o *Optimizer) { o.log = l }
}

// WithMetrics attaches OTel instruments for cycle findings.
func WithMetrics(m *observability.Metrics) Option {
	return func(o *Optimizer) { o.metrics = m }
}

// New builds an optimizer for target. It does not start sweeping until
// Start is called.
func New(target Target, opts ...Option) *Optimizer {
	o := &Optimizer{target: target}
	o.interval.Store(int64(DefaultInterval))
	for _, opt := range opts {
		opt(o)
	}
	if o.log == nil {
		o.log = logger.Get("optimizer")
	}
	return o
}

// Start launches the background sweep loop. Starting a running optimizer
// is a no-op.
func (o *Optimizer) Start() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.running {
		return
	}
	o.stop = make(chan struct{})
	o.done = make(chan struct{})
	o.running = true
	go o.loop(o.stop, o.done)
	o.log.Info("optimizer started", logger.Fields(
		"container", o.target.Name(),
		"interval", o.Interval().String(),
	))
}

// Stop halts the loop and waits for the in-flight sweep to finish.
// Stopping a stopped optimizer is a no-op.
func (o *Optimizer) Stop() {
	o.mu.Lock()
	if !o.running {
		o.mu.Unlock()
		return
	}
	close(o.stop)
	done := o.done
	o.running = false
	o.mu.Unlock()

	<-done
	o.log.Info("optimizer stopped")
}

// Running reports whether the sweep loop is active.
func (o *Optimizer) Running() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.running
}

// Interval returns the current debounce window.
func (o *Optimizer) Interval() time.Duration {
	return time.Duration(o.interval.Load())
}

// SetInterval retunes the debounce window on a live optimizer, clamped
// to [50ms, 1000ms]. Takes effect after the next sweep.
func (o *Optimizer) SetInterval(d time.Duration) {
	o.interval.Store(int64(clampInterval(d)))
}

// Threshold returns the target's promotion threshold.
func (o *Optimizer) Threshold() int {
	return o.target.PromotionThreshold()
}

// SetThreshold retunes the target's promotion threshold, so inline and
// sweep promotion stay on one value.
func (o *Optimizer) SetThreshold(n int) {
	o.target.SetPromotionThreshold(n)
}

// Snapshot returns the most recently published statistics, or nil when
// no sweep has run yet.
func (o *Optimizer) Snapshot() *Stats {
	return o.latest.Load()
}

func (o *Optimizer) loop(stop, done chan struct{}) {
	defer close(done)

	timer := time.NewTimer(o.Interval())
	defer timer.Stop()
	for {
		select {
		case <-stop:
			return
		case <-timer.C:
			o.Sweep()
			timer.Reset(o.Interval())
		}
	}
}

// Sweep runs one optimization pass synchronously: recompute the
// frequently-used set, promote what qualifies, scan for cycles, publish
// the snapshot. Returns the published snapshot.
func (o *Optimizer) Sweep() *Stats {
	ctx, span := observability.StartSpan(context.Background(), observability.SpanSweep)
	defer span.End()
	observability.SetSpanAttribute(ctx, observability.AttrContainerName, o.target.Name())

	counts := o.target.UsageCounts()
	threshold := o.target.PromotionThreshold()

	promoted := 0
	frequent := make(map[string]uint64)
	for id, n := range counts {
		if n < uint64(threshold) {
			continue
		}
		frequent[typeid.Name(id)] = n
		if o.target.Promote(id) {
			promoted++
		}
	}

	snap := o.target.GraphSnapshot()
	cycles := snap.Cycles()
	dangling := snap.Dangling()

	stats := newStats(statsInput{
		interval:  o.Interval(),
		threshold: threshold,
		counts:    counts,
		frequent:  frequent,
		snap:      snap,
		cycles:    cycles,
		dangling:  dangling,
		cacheLen:  o.target.CacheLen(),
		promoted:  promoted,
	})
	o.latest.Store(stats)

	observability.SetSpanAttribute(ctx, "optimizer.promoted", promoted)
	observability.SetSpanAttribute(ctx, "optimizer.cycles", len(cycles))

	if len(cycles) > 0 {
		names := make([]string, len(cycles))
		for i, cy := range cycles {
			names[i] = cy.String()
		}
		o.log.Warn("dependency cycles detected", logger.Fields(
			"count", len(cycles),
			"cycles", names,
		))
		if o.metrics != nil {
			o.metrics.RecordCycleFindings(ctx, len(cycles))
		}
	}
	if promoted > 0 {
		o.log.Debug("sweep promoted types", logger.Fields("count", promoted))
	}
	return stats
}

func clampInterval(d time.Duration) time.Duration {
	if d < MinInterval {
		return MinInterval
	}
	if d > MaxInterval {
		return MaxInterval
	}
	return d
}
