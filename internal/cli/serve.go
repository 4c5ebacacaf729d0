package cli

import (
	"github.com/spf13/cobra"

	"github.com/depviz-io/depviz/internal/server"
	"github.com/depviz-io/depviz/pkg/config"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		opts resolveOpts
		addr string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve dependency graphs over an HTTP API",
		Long: `Serve starts an HTTP server exposing resolved dependency graphs:

  GET /api/v1/graph/{package}   JSON nodes, edges, statistics, and warnings
  GET /api/v1/tree/{package}    plain-text tree report
  GET /healthz                  liveness probe

Query parameters version, filter, max_depth, and max_packages override the
configured crawl settings per request.

Example:
  depviz serve --addr :8080 --redis redis://localhost:6379/0`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadFile()
			if err != nil {
				return err
			}
			if opts.registryFile != "" {
				cfg.Registry = config.Registry{Mode: config.ModeFile, Path: opts.registryFile}
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			store := newCache(cmd, opts.noCache, opts.redisURL)
			defer store.Close()

			source, err := newSource(cfg, store)
			if err != nil {
				return err
			}

			logger := loggerFromContext(cmd.Context())
			srv := server.New(source, cfg, logger)

			printInfo("Listening on %s", addr)
			return srv.ListenAndServe(cmd.Context(), addr)
		},
	}

	opts.register(cmd)
	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")

	return cmd
}
