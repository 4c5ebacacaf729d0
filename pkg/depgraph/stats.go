package depgraph

// Stats aggregates summary numbers over a finished graph.
// Collect is pure: calling it repeatedly on the same graph yields
// identical results.
type Stats struct {
	TotalPackages int `json:"total_packages"` // Distinct packages (graph keys)
	TotalEdges    int `json:"total_edges"`    // Sum of successor list lengths
	LeafPackages  int `json:"leaf_packages"`  // Packages with zero dependencies
	CyclicRefs    int `json:"cyclic_refs"`    // Back edges reported by FindCycles
}

// Collect computes statistics for g with root as the traversal origin for
// cycle counting.
func Collect(g *Graph, root string) Stats {
	return Stats{
		TotalPackages: g.PackageCount(),
		TotalEdges:    g.EdgeCount(),
		LeafPackages:  len(g.Leaves()),
		CyclicRefs:    FindCycles(g, root).Count,
	}
}
