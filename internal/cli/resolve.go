package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/depviz-io/depviz/internal/report"
	"github.com/depviz-io/depviz/pkg/config"
	"github.com/depviz-io/depviz/pkg/depgraph"
	"github.com/depviz-io/depviz/pkg/errors"
)

// resolveOpts holds the command-line flags shared by resolve and export.
// Flag values override the configuration file; zero values defer to it.
type resolveOpts struct {
	configPath   string // TOML configuration file
	version      string // version selector
	filter       string // substring exclusion filter
	workers      int    // concurrent metadata fetches
	maxDepth     int    // traversal depth limit
	maxPackages  int    // package expansion limit
	registryFile string // static JSON document instead of the live registry
	registryURL  string // base URL override for the live registry
	noCache      bool   // disable the response cache
	redisURL     string // redis cache backend (overrides the file cache)
	treeDepth    int    // display depth limit, 0 = unlimited
	treeBranch   int    // children shown per node, 0 = unlimited
}

// register attaches the shared flags to cmd.
func (o *resolveOpts) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.configPath, "config", "c", "depviz.toml", "TOML configuration file")
	cmd.Flags().StringVar(&o.version, "version-selector", "", "version selector (concrete version or dist-tag)")
	cmd.Flags().StringVar(&o.filter, "filter", "", "exclude dependencies whose name contains this substring")
	cmd.Flags().IntVar(&o.workers, "workers", 0, "concurrent metadata fetches")
	cmd.Flags().IntVar(&o.maxDepth, "max-depth", 0, "maximum dependency depth")
	cmd.Flags().IntVar(&o.maxPackages, "max-packages", 0, "maximum packages to fetch")
	cmd.Flags().StringVar(&o.registryFile, "registry-file", "", "resolve against a local JSON document instead of the npm registry")
	cmd.Flags().StringVar(&o.registryURL, "registry-url", "", "npm registry base URL")
	cmd.Flags().BoolVar(&o.noCache, "no-cache", false, "bypass the response cache")
	cmd.Flags().StringVar(&o.redisURL, "redis", "", "redis URL for the response cache")
}

// load reads the configuration file and applies flag overrides.
func (o *resolveOpts) load(pkg string) (config.Config, error) {
	cfg, err := o.loadFile()
	if err != nil {
		return cfg, err
	}

	if pkg != "" {
		cfg.Package = pkg
	}
	if o.version != "" {
		cfg.Version = o.version
	}
	if o.filter != "" {
		cfg.Filter = o.filter
	}
	if o.workers > 0 {
		cfg.Workers = o.workers
	}
	if o.maxDepth > 0 {
		cfg.MaxDepth = o.maxDepth
	}
	if o.maxPackages > 0 {
		cfg.MaxPackages = o.maxPackages
	}
	if o.registryFile != "" {
		cfg.Registry = config.Registry{Mode: config.ModeFile, Path: o.registryFile}
	}
	if o.registryURL != "" {
		cfg.Registry.URL = o.registryURL
	}

	if cfg.Package == "" {
		return cfg, errors.New(errors.ErrCodeInvalidPackage, "no package given: pass one as an argument or set it in %s", o.configPath)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (o *resolveOpts) loadFile() (config.Config, error) {
	return config.Load(o.configPath)
}

// resolveCommand creates the resolve command.
func (c *CLI) resolveCommand() *cobra.Command {
	var opts resolveOpts

	cmd := &cobra.Command{
		Use:   "resolve [package]",
		Short: "Resolve a package's transitive dependencies and print the tree",
		Long: `Resolve crawls the dependency graph of an npm package breadth-first and
prints it as a tree with graph statistics.

Packages whose metadata cannot be retrieved stay in the graph as leaves and
are reported as warnings on stderr. Cyclic references are marked in the tree
and never expanded twice.

Examples:
  depviz resolve express                          # latest from the npm registry
  depviz resolve express --version-selector 4.18.2
  depviz resolve lodash --filter types            # skip @types/* style packages
  depviz resolve app --registry-file deps.json    # offline document`,
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

			tree := depgraph.TreeOptions{MaxDepth: opts.treeDepth, MaxBranch: opts.treeBranch}
			if err := report.Write(os.Stdout, res.Graph, root, tree); err != nil {
				return err
			}

			reportWarnings(cmd, res.Warnings)
			return nil
		},
	}

	opts.register(cmd)
	cmd.Flags().IntVar(&opts.treeDepth, "tree-depth", 0, "limit displayed tree depth (0 = unlimited)")
	cmd.Flags().IntVar(&opts.treeBranch, "tree-branch", 0, "limit children shown per node (0 = unlimited)")

	return cmd
}

// buildGraph runs the configured crawl and returns the result plus the root
// package name.
func (c *CLI) buildGraph(cmd *cobra.Command, opts *resolveOpts, pkg string) (*depgraph.Result, string, error) {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	cfg, err := opts.load(pkg)
	if err != nil {
		return nil, "", err
	}

	store := newCache(cmd, opts.noCache, opts.redisURL)
	defer store.Close()

	source, err := newSource(cfg, store)
	if err != nil {
		return nil, "", err
	}
	logger.Debugf("resolving %s@%s via %s", cfg.Package, cfg.Version, source.Name())

	build := cfg.BuildOptions()
	build.Logger = func(msg string, args ...any) { logger.Debugf(msg, args...) }

	p := newProgress(logger)
	res, err := depgraph.NewBuilder(source).Build(ctx, cfg.Package, build)
	if err != nil {
		return nil, "", err
	}
	p.done(fmt.Sprintf("Resolved %d packages", res.Graph.PackageCount()))

	return res, cfg.Package, nil
}

// reportWarnings logs every non-fatal fetch failure after the report.
func reportWarnings(cmd *cobra.Command, warnings []depgraph.Warning) {
	logger := loggerFromContext(cmd.Context())
	for _, w := range warnings {
		if errors.IsFetchFailure(w.Err) {
			logger.Warnf("metadata unavailable for %s: %s", w.Package, errors.UserMessage(w.Err))
			continue
		}
		logger.Errorf("unexpected failure for %s: %s", w.Package, errors.UserMessage(w.Err))
	}
	if n := len(warnings); n > 0 {
		printWarning("%d package(s) could not be fetched and appear as leaves", n)
	}
}
