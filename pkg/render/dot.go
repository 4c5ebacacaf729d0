// Package render converts dependency graphs into Graphviz DOT and SVG
// output for the export command and the HTTP API.
package render

import (
	"bytes"
	"context"
	"fmt"

	"github.com/goccy/go-graphviz"

	"github.com/depviz-io/depviz/pkg/depgraph"
)

// Options configures DOT rendering.
type Options struct {
	// Root highlights the traversal origin with a distinct fill.
	Root string
}

// ToDOT converts a dependency graph to Graphviz DOT format.
//
// Unresolved packages (dependency values whose metadata was never
// retrieved) get dashed grey outlines; edges that close a cycle are drawn
// dashed and red. Nodes follow serialization order, so output is
// deterministic for a given graph.
func ToDOT(g *depgraph.Graph, opts Options) string {
	back := make(map[depgraph.JSONEdge]bool)
	for _, edge := range depgraph.FindCycles(g, opts.Root).BackEdges {
		back[depgraph.JSONEdge{From: edge[0], To: edge[1]}] = true
	}

	var buf bytes.Buffer
	buf.WriteString("digraph dependencies {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	gj := depgraph.ToJSON(g)
	for _, n := range gj.Nodes {
		switch {
		case n.ID == opts.Root:
			fmt.Fprintf(&buf, "  %q [fillcolor=lightblue];\n", n.ID)
		case n.Unresolved:
			fmt.Fprintf(&buf, "  %q [style=\"rounded,filled,dashed\", fillcolor=lightgrey];\n", n.ID)
		default:
			fmt.Fprintf(&buf, "  %q;\n", n.ID)
		}
	}

	buf.WriteString("\n")
	for _, e := range gj.Edges {
		if back[e] {
			fmt.Fprintf(&buf, "  %q -> %q [style=dashed, color=red];\n", e.From, e.To)
			continue
		}
		fmt.Fprintf(&buf, "  %q -> %q;\n", e.From, e.To)
	}

	buf.WriteString("}\n")
	return buf.String()
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
