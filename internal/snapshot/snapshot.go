// Package snapshot writes a graph and its infection state in interchange
// formats: Graphviz DOT for external layout tools, and JSON.
package snapshot

import (
	"fmt"
	"sort"
	"strings"

	"github.com/nvandessel/graphism/internal/graph"
)

// Format specifies the snapshot encoding.
type Format string

const (
	FormatDOT  Format = "dot"
	FormatJSON Format = "json"
)

// ParseFormat maps a flag value to a Format.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(s)) {
	case FormatDOT:
		return FormatDOT, nil
	case FormatJSON:
		return FormatJSON, nil
	}
	return "", fmt.Errorf("unknown snapshot format %q (valid: dot, json)", s)
}

// stateColors maps infection state to DOT fill colors.
var stateColors = map[bool]string{
	true:  "tomato",
	false: "lightgray",
}

// edgeStyles maps well-known edge types to DOT styles. Other types render solid.
var edgeStyles = map[string]string{
	"household": "bold",
	"work":      "solid",
	"school":    "dashed",
	"social":    "dotted",
}

// DOT produces a Graphviz DOT representation of g. Infected nodes
// are filled red. An undirected graph emits each relationship once.
func DOT(g *graph.Graph, name string) string {
	if name == "" {
		name = "graphism"
	}
	kind, arrow := "graph", "--"
	if g.Directed() {
		kind, arrow = "digraph", "->"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s %q {\n", kind, name)
	b.WriteString("  rankdir=LR;\n")
	b.WriteString("  node [shape=ellipse, style=filled, fontname=\"Helvetica\"];\n")
	b.WriteString("  edge [fontname=\"Helvetica\", fontsize=10];\n\n")

	for _, n := range g.Nodes() {
		fmt.Fprintf(&b, "  %q [fillcolor=%q, tooltip=\"degree=%d\"];\n",
			n.Name(), stateColors[g.IsInfected(n.Name())], n.Degree())
	}
	b.WriteString("\n")

	for _, e := range CollectEdges(g) {
		attrs := []string{fmt.Sprintf("penwidth=%.2f", penWidth(e.Weight()))}
		if label := edgeLabel(e); label != "" {
			attrs = append(attrs, fmt.Sprintf("label=%q", label))
		}
		if style, ok := edgeStyles[e.Type()]; ok {
			attrs = append(attrs, fmt.Sprintf("style=%s", style))
		}
		fmt.Fprintf(&b, "  %q %s %q [%s];\n", e.Parent(), arrow, e.Child(), strings.Join(attrs, ", "))
	}

	b.WriteString("}\n")
	return b.String()
}

// JSON produces a JSON-serializable node/edge map for g.
func JSON(g *graph.Graph) map[string]interface{} {
	nodes := g.Nodes()
	jsonNodes := make([]map[string]interface{}, 0, len(nodes))
	for _, n := range nodes {
		jsonNodes = append(jsonNodes, map[string]interface{}{
			"name":     n.Name(),
			"degree":   n.Degree(),
			"infected": g.IsInfected(n.Name()),
		})
	}

	edges := CollectEdges(g)
	jsonEdges := make([]map[string]interface{}, 0, len(edges))
	for _, e := range edges {
		jsonEdges = append(jsonEdges, map[string]interface{}{
			"source":       e.Parent(),
			"target":       e.Child(),
			"type":         e.Type(),
			"weight":       e.Weight(),
			"multiplicity": e.Multiplicity(),
		})
	}

	return map[string]interface{}{
		"directed":   g.Directed(),
		"nodes":      jsonNodes,
		"edges":      jsonEdges,
		"node_count": len(jsonNodes),
		"edge_count": len(jsonEdges),
	}
}

// CollectEdges gathers the edges of g sorted by parent then child. In an
// undirected graph the reverse half of each relationship is skipped, so a
// pair appears once with its lexically smaller endpoint as parent.
func CollectEdges(g *graph.Graph) []*graph.Edge {
	var result []*graph.Edge
	for _, n := range g.Nodes() {
		for _, child := range n.Neighbors() {
			if !g.Directed() && child < n.Name() {
				continue
			}
			e, _ := n.Edge(child)
			result = append(result, e)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		if result[i].Parent() != result[j].Parent() {
			return result[i].Parent() < result[j].Parent()
		}
		return result[i].Child() < result[j].Child()
	})
	return result
}

// edgeLabel combines the edge type and, when above one, its multiplicity.
func edgeLabel(e *graph.Edge) string {
	label := e.Type()
	if m := e.Multiplicity(); m > 1 {
		if label != "" {
			label += " "
		}
		label += fmt.Sprintf("x%d", m)
	}
	return label
}

// penWidth scales line thickness with weight, clamped to [0.5, 5].
func penWidth(w float64) float64 {
	switch {
	case w < 0.5:
		return 0.5
	case w > 5:
		return 5
	}
	return w
}
