package depgraph

import "slices"

// CycleInfo is the result of cycle detection over a finished graph.
type CycleInfo struct {
	Count     int         // Number of distinct cyclic references (back edges)
	BackEdges [][2]string // The edges that close a cycle, as [from, to] pairs
}

// FindCycles counts the distinct cyclic references in g.
//
// A cyclic reference is an edge whose target is an ancestor of its source
// on some traversal path. Detection runs a three-color depth-first search
// from root and then from every other package in sorted order: within one
// search, an edge into a node on the current recursion path (gray) closes
// a cycle and is not followed further, an edge into a fully explored node
// (black) is an ordinary shared-subgraph reference, and a white node is
// recursed into. Back edges are deduplicated across starting points, so
// the reported count is a property of the graph alone, independent of
// discovery order. A self-dependency counts as one cyclic reference.
//
// The graph is never modified.
func FindCycles(g *Graph, root string) CycleInfo {
	seen := make(map[[2]string]bool)
	var info CycleInfo

	record := func(edge [2]string) {
		if !seen[edge] {
			seen[edge] = true
			info.Count++
			info.BackEdges = append(info.BackEdges, edge)
		}
	}

	if g.Has(root) {
		collectBackEdges(g, root, record)
	}

	rest := g.Packages()
	slices.Sort(rest)
	for _, name := range rest {
		if name != root {
			collectBackEdges(g, name, record)
		}
	}

	return info
}

// collectBackEdges runs one white/gray/black DFS rooted at start and
// reports every edge that targets a gray node.
func collectBackEdges(g *Graph, start string, record func([2]string)) {
	const (
		white = iota
		gray
		black
	)

	color := make(map[string]int)

	var dfs func(node string)
	dfs = func(node string) {
		color[node] = gray
		for _, dep := range g.Deps(node) {
			switch color[dep] {
			case white:
				dfs(dep)
			case gray:
				record([2]string{node, dep})
			}
		}
		color[node] = black
	}

	dfs(start)
}
