package depgraph

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
)

// JSONGraph is the canonical serialization format for dependency graphs,
// used for --output files and API responses.
type JSONGraph struct {
	Nodes []JSONNode `json:"nodes"`
	Edges []JSONEdge `json:"edges"`
}

// JSONNode is a serialized graph node. Unresolved marks names that appear
// only as dependency values because their own metadata was never retrieved
// (fetch failure or traversal limit).
type JSONNode struct {
	ID         string `json:"id"`
	Unresolved bool   `json:"unresolved,omitempty"`
}

// JSONEdge is a serialized directed dependency.
type JSONEdge struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// ToJSON converts g to its serialization format.
// Nodes are sorted by ID for deterministic output; edges keep discovery order.
func ToJSON(g *Graph) JSONGraph {
	seen := make(map[string]bool)
	var out JSONGraph

	for _, name := range g.Packages() {
		seen[name] = true
		out.Nodes = append(out.Nodes, JSONNode{ID: name})
	}
	for _, name := range g.Packages() {
		for _, dep := range g.Deps(name) {
			if !seen[dep] {
				seen[dep] = true
				out.Nodes = append(out.Nodes, JSONNode{ID: dep, Unresolved: true})
			}
			out.Edges = append(out.Edges, JSONEdge{From: name, To: dep})
		}
	}

	slices.SortFunc(out.Nodes, func(a, b JSONNode) int {
		if a.ID < b.ID {
			return -1
		}
		if a.ID > b.ID {
			return 1
		}
		return 0
	})
	return out
}

// FromJSON rebuilds a Graph from its serialization format. Unresolved
// nodes stay dependency values only. Package insertion order follows the
// serialized node order.
func FromJSON(gj JSONGraph) (*Graph, error) {
	deps := make(map[string][]string)
	for _, e := range gj.Edges {
		deps[e.From] = append(deps[e.From], e.To)
	}

	g := New()
	for _, n := range gj.Nodes {
		if n.Unresolved {
			continue
		}
		if err := g.Add(n.ID, deps[n.ID]); err != nil {
			return nil, fmt.Errorf("add package %s: %w", n.ID, err)
		}
	}
	return g, nil
}

// Write serializes g as indented JSON to w.
func Write(g *Graph, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(ToJSON(g)); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// Read decodes a JSON graph from r.
func Read(r io.Reader) (*Graph, error) {
	var gj JSONGraph
	if err := json.NewDecoder(r).Decode(&gj); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return FromJSON(gj)
}
