package depgraph

import (
	"iter"
	"slices"
	"strings"
)

// Markers appended to tree lines.
const (
	CycleMarker      = "[cycle]" // Node equals an ancestor on the current path
	TruncationMarker = "…"       // Depth or branch limit reached
)

// TreeOptions bounds the rendered tree. Zero values mean unlimited.
type TreeOptions struct {
	MaxDepth  int // Maximum depth below the root; deeper subtrees become "…"
	MaxBranch int // Maximum children rendered per node; the rest become "…"
}

// Lines walks g depth-first from root and yields one display line per
// node, drawn with box characters:
//
//	root
//	├── a
//	│   └── c
//	└── b [cycle]
//
// A package reached through several distinct parents is rendered under
// each of them (shared dependency, not a cycle). A package equal to an
// ancestor on the active path is rendered once with a cycle marker and not
// recursed into, so output stays finite on cyclic data.
//
// The sequence is lazy and restartable; iterating it twice yields
// byte-identical lines. The graph is never modified.
func Lines(g *Graph, root string, opts TreeOptions) iter.Seq[string] {
	return func(yield func(string) bool) {
		if !yield(root) {
			return
		}
		walk(g, root, "", []string{root}, opts, 1, yield)
	}
}

// Render materializes Lines into a single newline-terminated string.
func Render(g *Graph, root string, opts TreeOptions) string {
	var sb strings.Builder
	for line := range Lines(g, root, opts) {
		sb.WriteString(line)
		sb.WriteByte('\n')
	}
	return sb.String()
}

// walk emits node's children. path holds the root-to-node package names;
// prefix holds the accumulated branch drawing for this depth.
// Returns false when the consumer stopped the iteration.
func walk(g *Graph, node, prefix string, path []string, opts TreeOptions, depth int, yield func(string) bool) bool {
	deps := g.Deps(node)
	if len(deps) == 0 {
		return true
	}

	if opts.MaxDepth > 0 && depth > opts.MaxDepth {
		return yield(prefix + "└── " + TruncationMarker)
	}

	shown := len(deps)
	if opts.MaxBranch > 0 && shown > opts.MaxBranch {
		shown = opts.MaxBranch
	}

	for i := 0; i < shown; i++ {
		dep := deps[i]
		last := i == len(deps)-1

		branch, indent := "├── ", "│   "
		if last {
			branch, indent = "└── ", "    "
		}

		if slices.Contains(path, dep) {
			if !yield(prefix + branch + dep + " " + CycleMarker) {
				return false
			}
			continue
		}

		if !yield(prefix + branch + dep) {
			return false
		}
		if !walk(g, dep, prefix+indent, append(path, dep), opts, depth+1, yield) {
			return false
		}
	}

	if shown < len(deps) {
		return yield(prefix + "└── " + TruncationMarker)
	}
	return true
}
