// Package viz renders a task graph for humans: indented level-grouped text,
// Mermaid flowchart syntax, and Graphviz DOT. The exact byte formats are
// presentation only and carry no scheduling semantics.
package viz

import (
	"fmt"
	"strings"

	"github.com/taskforge-dev/taskforge/internal/graph"
)

// Text renders the parallel batches as an indented level listing. Requires a
// valid graph, since levels come from the batch computation.
func Text(g *graph.Graph) (string, error) {
	batches, err := g.ParallelBatches()
	if err != nil {
		return "", err
	}

	var b strings.Builder
	for i, batch := range batches {
		fmt.Fprintf(&b, "Level %d:\n", i+1)
		for _, t := range batch {
			fmt.Fprintf(&b, "  [%s] %s (%.0fs, %s)\n", t.ID, t.Description, t.EstimatedTime, t.Type)
		}
	}
	return b.String(), nil
}

// Mermaid renders the graph in `graph TD` syntax. It does not require a
// valid graph; cycles simply render as cycles.
func Mermaid(g *graph.Graph) string {
	var b strings.Builder
	b.WriteString("graph TD\n")
	for _, t := range g.Tasks() {
		fmt.Fprintf(&b, "    %s[\"%s\"]\n", mermaidID(t.ID), escapeLabel(t.Description))
	}
	for _, e := range g.Edges() {
		fmt.Fprintf(&b, "    %s --> %s\n", mermaidID(e.From), mermaidID(e.To))
	}
	return b.String()
}

// DOT renders the graph in Graphviz digraph syntax.
func DOT(g *graph.Graph) string {
	var b strings.Builder
	b.WriteString("digraph tasks {\n")
	b.WriteString("    rankdir=TB;\n")
	b.WriteString("    node [shape=box];\n")
	for _, t := range g.Tasks() {
		fmt.Fprintf(&b, "    %q [label=%q];\n", t.ID, t.Description)
	}
	for _, e := range g.Edges() {
		fmt.Fprintf(&b, "    %q -> %q;\n", e.From, e.To)
	}
	b.WriteString("}\n")
	return b.String()
}

// mermaidID keeps node identifiers inside Mermaid's safe character set.
func mermaidID(id string) string {
	var b strings.Builder
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}

func escapeLabel(s string) string {
	return strings.ReplaceAll(s, `"`, `'`)
}
