package graph

import (
	"sort"
	"sync"

	"github.com/kbukum/wirekit/typeid"
)

// Edge labels distinguish how a dependency entered the graph.
const (
	LabelDeclared = "declared" // listed at registration time
	LabelObserved = "observed" // recorded during an actual resolution
)

// Node is a single type in the graph. Registered is false for nodes that
// only exist because some edge points at them.
type Node struct {
	ID         typeid.ID `json:"id"`
	Name       string    `json:"name"`
	Registered bool      `json:"registered"`
}

// Edge represents a dependency: From needs To.
type Edge struct {
	From  typeid.ID `json:"from"`
	To    typeid.ID `json:"to"`
	Label string    `json:"label"`
}

// Graph is safe for concurrent use. Writers take the exclusive lock;
// readers work on snapshots.
type Graph struct {
	mu    sync.RWMutex
	nodes map[typeid.ID]bool             // id -> registered
	edges map[typeid.ID]map[typeid.ID]string // from -> to -> label
}

func New() *Graph {
	return &Graph{
		nodes: make(map[typeid.ID]bool),
		edges: make(map[typeid.ID]map[typeid.ID]string),
	}
}

// AddNode records id as a registered type. Adding an existing node is a
// no-op apart from flipping it to registered.
func (g *Graph) AddNode(id typeid.ID) {
	g.mu.Lock()
	g.nodes[id] = true
	g.mu.Unlock()
}

// RemoveNode marks id as no longer registered. Edges involving id are
// kept; they show up as dangling diagnostics until re-registration.
func (g *Graph) RemoveNode(id typeid.ID) {
	g.mu.Lock()
	if _, ok := g.nodes[id]; ok {
		g.nodes[id] = false
	}
	g.mu.Unlock()
}

// AddEdge records that from depends on to. Repeated (from, to) pairs are
// idempotent; an observed edge never downgrades a declared one.
func (g *Graph) AddEdge(from, to typeid.ID, label string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.nodes[from]; !ok {
		g.nodes[from] = false
	}
	if _, ok := g.nodes[to]; !ok {
		g.nodes[to] = false
	}

	m := g.edges[from]
	if m == nil {
		m = make(map[typeid.ID]string)
		g.edges[from] = m
	}
	if prev, ok := m[to]; ok && prev == LabelDeclared {
		return
	}
	m[to] = label
}

// HasEdge reports whether a (from, to) edge exists with any label.
func (g *Graph) HasEdge(from, to typeid.ID) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	_, ok := g.edges[from][to]
	return ok
}

// Reset drops every node and edge.
func (g *Graph) Reset() {
	g.mu.Lock()
	g.nodes = make(map[typeid.ID]bool)
	g.edges = make(map[typeid.ID]map[typeid.ID]string)
	g.mu.Unlock()
}

// Snapshot copies the graph under the read lock. The result is immutable
// and safe to scan, render, or hand to another goroutine.
func (g *Graph) Snapshot() *Snapshot {
	g.mu.RLock()
	defer g.mu.RUnlock()

	s := &Snapshot{
		Nodes: make([]Node, 0, len(g.nodes)),
		Edges: make([]Edge, 0),
		out:   make(map[typeid.ID][]typeid.ID, len(g.edges)),
		reg:   make(map[typeid.ID]bool, len(g.nodes)),
	}
	for id, registered := range g.nodes {
		s.Nodes = append(s.Nodes, Node{ID: id, Name: typeid.Name(id), Registered: registered})
		s.reg[id] = registered
	}
	for from, m := range g.edges {
		for to, label := range m {
			s.Edges = append(s.Edges, Edge{From: from, To: to, Label: label})
			s.out[from] = append(s.out[from], to)
		}
	}

	sort.Slice(s.Nodes, func(i, j int) bool { return s.Nodes[i].ID < s.Nodes[j].ID })
	sort.Slice(s.Edges, func(i, j int) bool {
		if s.Edges[i].From != s.Edges[j].From {
			return s.Edges[i].From < s.Edges[j].From
		}
		return s.Edges[i].To < s.Edges[j].To
	})
	for _, outs := range s.out {
		sort.Slice(outs, func(i, j int) bool { return outs[i] < outs[j] })
	}
	return s
}

// Snapshot is a point-in-time copy of a Graph. Nodes and Edges are sorted
// by ID so renders and scans are deterministic.
type Snapshot struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`

	out map[typeid.ID][]typeid.ID
	reg map[typeid.ID]bool
}

// Dangling returns every edge whose target is not a registered node.
// These are diagnostics, not errors: the dependency may be registered
// later, or resolved from a scope the graph never saw.
func (s *Snapshot) Dangling() []Edge {
	var out []Edge
	for _, e := range s.Edges {
		if !s.reg[e.To] {
			out = append(out, e)
		}
	}
	return out
}
