// Package report formats resolved dependency graphs as stable text
// reports: a delimited tree section followed by a statistics block.
// Repeated renders of the same graph are byte-identical, so reports can be
// diffed between runs.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/depviz-io/depviz/pkg/depgraph"
)

const (
	ruleWide   = 60
	ruleNarrow = 40
)

// Write streams the report for a finished graph to w.
// Fetch warnings are deliberately excluded; they belong on stderr.
func Write(w io.Writer, g *depgraph.Graph, root string, opts depgraph.TreeOptions) error {
	rule := strings.Repeat("=", ruleWide)

	if _, err := fmt.Fprintf(w, "%s\nDependency tree: %s\n%s\n", rule, root, rule); err != nil {
		return err
	}
	for line := range depgraph.Lines(g, root, opts) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintln(w, rule); err != nil {
		return err
	}

	stats := depgraph.Collect(g, root)
	_, err := fmt.Fprintf(w, "\nGraph statistics:\n%s\n• Total packages: %d\n• Total dependencies: %d\n• Leaf packages: %d\n• Cyclic references: %d\n",
		strings.Repeat("-", ruleNarrow),
		stats.TotalPackages, stats.TotalEdges, stats.LeafPackages, stats.CyclicRefs)
	return err
}

// Render returns the report as a string.
func Render(g *depgraph.Graph, root string, opts depgraph.TreeOptions) string {
	var sb strings.Builder
	Write(&sb, g, root, opts) // strings.Builder never fails
	return sb.String()
}
