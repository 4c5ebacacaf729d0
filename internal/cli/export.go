package cli

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/depviz-io/depviz/pkg/depgraph"
	"github.com/depviz-io/depviz/pkg/errors"
	"github.com/depviz-io/depviz/pkg/render"
)

// Export formats.
const (
	formatJSON = "json"
	formatDOT  = "dot"
	formatSVG  = "svg"
)

// exportCommand creates the export command.
func (c *CLI) exportCommand() *cobra.Command {
	var (
		opts   resolveOpts
		format string
		output string
	)

	cmd := &cobra.Command{
		Use:   "export [package]",
		Short: "Export the dependency graph as JSON, DOT, or SVG",
		Long: `Export resolves a package's dependency graph and writes it in a
machine-readable format. Edges that close a cycle are drawn dashed in DOT
and SVG output.

Examples:
  depviz export express --format json -o express.json
  depviz export express --format svg -o express.svg
  depviz export express --format dot               # DOT to stdout`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var pkg string
			if len(args) == 1 {
				pkg = args[0]
			}
			res, root, err := c.buildGraph(cmd, &opts, pkg)
			if err != nil {
				return err
			}
			reportWarnings(cmd, res.Warnings)

			data, err := exportGraph(cmd, res.Graph, root, format)
			if err != nil {
				return err
			}

			if output == "" {
				_, err := os.Stdout.Write(data)
				return err
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", output, err)
			}
			printSuccess("Exported %s graph", format)
			printFile(output)
			return nil
		},
	}

	opts.register(cmd)
	cmd.Flags().StringVarP(&format, "format", "f", formatJSON, "output format: json, dot, or svg")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (stdout if empty)")

	return cmd
}

func exportGraph(cmd *cobra.Command, g *depgraph.Graph, root, format string) ([]byte, error) {
	switch format {
	case formatJSON:
		var buf bytes.Buffer
		if err := depgraph.Write(g, &buf); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case formatDOT:
		return []byte(render.ToDOT(g, render.Options{Root: root})), nil
	case formatSVG:
		dot := render.ToDOT(g, render.Options{Root: root})
		return render.RenderSVG(cmd.Context(), dot)
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unknown export format: %s", format)
	}
}
