package optimizer

import (
	"sort"
	"strconv"
	"time"

	"github.com/kbukum/wirekit/graph"
	"github.com/kbukum/wirekit/observability"
	"github.com/kbukum/wirekit/typeid"
)

// Stats is one immutable sweep snapshot. Every field is detached from
// the live container; holding a snapshot never pins engine state and
// later sweeps never mutate it.
type Stats struct {
	TakenAt   time.Time     `json:"taken_at"`
	Interval  time.Duration `json:"interval"`
	Threshold int           `json:"threshold"`

	// Resolved maps every resolved type name to its usage count.
	Resolved map[string]uint64 `json:"resolved"`
	// FrequentlyUsed is the subset of Resolved at or above Threshold.
	FrequentlyUsed map[string]uint64 `json:"frequently_used"`
	// Registered lists registered type names, sorted.
	Registered []string `json:"registered"`

	Edges    []graph.Edge  `json:"edges"`
	Cycles   []graph.Cycle `json:"cycles,omitempty"`
	Dangling []graph.Edge  `json:"dangling,omitempty"`

	// GraphText is a mermaid render of the dependency graph.
	GraphText string `json:"graph_text"`

	CacheEntries int `json:"cache_entries"`
	// Promoted is how many types this sweep moved into the hot cache.
	Promoted int `json:"promoted"`
}

// Healthy reports whether the sweep found nothing to complain about.
func (s *Stats) Healthy() bool {
	return len(s.Cycles) == 0 && len(s.Dangling) == 0
}

type statsInput struct {
	interval  time.Duration
	threshold int
	counts    map[typeid.ID]uint64
	frequent  map[string]uint64
	snap      *graph.Snapshot
	cycles    []graph.Cycle
	dangling  []graph.Edge
	cacheLen  int
	promoted  int
}

func newStats(in statsInput) *Stats {
	resolved := make(map[string]uint64, len(in.counts))
	for id, n := range in.counts {
		resolved[typeid.Name(id)] = n
	}

	var registered []string
	for _, node := range in.snap.Nodes {
		if node.Registered {
			registered = append(registered, node.Name)
		}
	}
	sort.Strings(registered)

	edges := make([]graph.Edge, len(in.snap.Edges))
	copy(edges, in.snap.Edges)

	return &Stats{
		TakenAt:        time.Now(),
		Interval:       in.interval,
		Threshold:      in.threshold,
		Resolved:       resolved,
		FrequentlyUsed: in.frequent,
		Registered:     registered,
		Edges:          edges,
		Cycles:         in.cycles,
		Dangling:       in.dangling,
		GraphText:      in.snap.Mermaid(),
		CacheEntries:   in.cacheLen,
		Promoted:       in.promoted,
	}
}

// Health renders the latest sweep as a component health result. Before
// the first sweep the optimizer reports up with an explanatory message;
// cycle or dangling findings degrade it.
func (o *Optimizer) Health() observability.Health {
	stats := o.Snapshot()
	if stats == nil {
		return observability.Health{
			Name:    "optimizer",
			Status:  observability.HealthStatusUp,
			Message: "no sweep completed yet",
		}
	}

	return observability.GraphReport("optimizer", len(stats.Cycles), len(stats.Dangling), map[string]string{
		"interval":      stats.Interval.String(),
		"threshold":     strconv.Itoa(stats.Threshold),
		"cache_entries": strconv.Itoa(stats.CacheEntries),
		"promoted":      strconv.Itoa(stats.Promoted),
	})
}
