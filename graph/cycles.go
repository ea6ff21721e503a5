package graph

import (
	"strings"

	"github.com/kbukum/wirekit/errors"
	"github.com/kbukum/wirekit/typeid"
)

// Cycle is one closed walk through the graph. Path starts and ends on the
// same type so renders read naturally: A -> B -> A.
type Cycle struct {
	Path []typeid.ID `json:"path"`
}

// Names resolves the path to type names.
func (c Cycle) Names() []string {
	names := make([]string, len(c.Path))
	for i, id := range c.Path {
		names[i] = typeid.Name(id)
	}
	return names
}

func (c Cycle) String() string {
	return strings.Join(c.Names(), " -> ")
}

// DFS node colors.
const (
	white = iota // unvisited
	gray         // on the current recursion stack
	black        // fully explored
)

// Cycles runs a depth-first search over the snapshot and returns every
// distinct cycle. Two walks over the same loop (entered at different
// nodes) count as one cycle. Only edges between registered nodes are
// walked: an unregistered node cannot be resolved, so a loop through it
// is a dangling diagnostic rather than a live cycle.
func (s *Snapshot) Cycles() []Cycle {
	color := make(map[typeid.ID]int, len(s.Nodes))
	var stack []typeid.ID
	var cycles []Cycle
	seen := make(map[string]bool)

	var visit func(id typeid.ID)
	visit = func(id typeid.ID) {
		color[id] = gray
		stack = append(stack, id)

		for _, next := range s.out[id] {
			if !s.reg[next] {
				continue
			}
			switch color[next] {
			case white:
				visit(next)
			case gray:
				// next is on the stack: the segment from its last
				// occurrence to here closes a cycle.
				start := len(stack) - 1
				for start >= 0 && stack[start] != next {
					start--
				}
				path := make([]typeid.ID, 0, len(stack)-start+1)
				path = append(path, stack[start:]...)
				path = append(path, next)

				key := canonicalKey(path)
				if !seen[key] {
					seen[key] = true
					cycles = append(cycles, Cycle{Path: path})
				}
			}
		}

		stack = stack[:len(stack)-1]
		color[id] = black
	}

	// Nodes slice is sorted, so traversal order and therefore reported
	// entry points are stable across runs.
	for _, n := range s.Nodes {
		if n.Registered && color[n.ID] == white {
			visit(n.ID)
		}
	}
	return cycles
}

// canonicalKey rotates the cycle so its smallest ID comes first, making
// A->B->A and B->A->B hash to the same key.
func canonicalKey(path []typeid.ID) string {
	loop := path[:len(path)-1] // drop the repeated closing node
	min := 0
	for i := range loop {
		if loop[i] < loop[min] {
			min = i
		}
	}
	var b strings.Builder
	for i := range loop {
		id := loop[(min+i)%len(loop)]
		b.WriteString(typeid.Name(id))
		b.WriteString(">")
	}
	return b.String()
}

// Validate returns a CircularDependency error for the first cycle in the
// graph, or nil when the graph is acyclic. Dangling edges do not fail
// validation.
func (g *Graph) Validate() error {
	cycles := g.Snapshot().Cycles()
	if len(cycles) == 0 {
		return nil
	}
	return errors.CircularDependency(cycles[0].Names())
}
