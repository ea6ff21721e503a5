package graph

import (
	"encoding/json"
	"fmt"
	"strings"
)

// DOT renders the snapshot in Graphviz dot syntax. Unregistered nodes are
// drawn dashed, observed edges gray.
func (s *Snapshot) DOT() string {
	var b strings.Builder
	b.WriteString("digraph dependencies {\n")
	b.WriteString("  rankdir=LR;\n")
	for _, n := range s.Nodes {
		attrs := fmt.Sprintf("label=%q", n.Name)
		if !n.Registered {
			attrs += ", style=dashed"
		}
		fmt.Fprintf(&b, "  n%d [%s];\n", n.ID, attrs)
	}
	for _, e := range s.Edges {
		if e.Label == LabelObserved {
			fmt.Fprintf(&b, "  n%d -> n%d [color=gray];\n", e.From, e.To)
		} else {
			fmt.Fprintf(&b, "  n%d -> n%d;\n", e.From, e.To)
		}
	}
	b.WriteString("}\n")
	return b.String()
}

// Mermaid renders the snapshot as a mermaid flowchart, pasteable into
// docs and issue trackers.
func (s *Snapshot) Mermaid() string {
	var b strings.Builder
	b.WriteString("graph LR\n")
	for _, n := range s.Nodes {
		fmt.Fprintf(&b, "  n%d[%q]\n", n.ID, n.Name)
	}
	for _, e := range s.Edges {
		if e.Label == LabelObserved {
			fmt.Fprintf(&b, "  n%d -.-> n%d\n", e.From, e.To)
		} else {
			fmt.Fprintf(&b, "  n%d --> n%d\n", e.From, e.To)
		}
	}
	return b.String()
}

// JSON marshals the snapshot. Node and edge order is deterministic, so
// repeated exports of the same graph are byte-identical.
func (s *Snapshot) JSON() ([]byte, error) {
	return json.MarshalIndent(s, "", "  ")
}
