// Package cli implements the depviz command-line interface.
//
// This package provides commands for resolving npm dependency graphs,
// exporting them as DOT/SVG/JSON, serving them over HTTP, and managing the
// registry response cache. The CLI is built using cobra and supports
// verbose logging via the charmbracelet/log library.
//
// # Commands
//
// The main commands are:
//   - resolve: Crawl a package's transitive dependencies and print the tree
//   - export: Write the dependency graph as DOT, SVG, or JSON
//   - serve: Expose graphs over an HTTP API
//   - cache: Manage the registry response cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers are
// passed through context.Context to allow structured progress tracking.
package cli

import (
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/depviz-io/depviz/pkg/buildinfo"
	"github.com/depviz-io/depviz/pkg/cache"
	"github.com/depviz-io/depviz/pkg/config"
	"github.com/depviz-io/depviz/pkg/registry"
)

// appName is the application name used for directories and display.
const appName = "depviz"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "depviz visualizes npm dependency graphs",
		Long:         `depviz resolves the transitive dependency graph of an npm package and renders it as a tree, DOT/SVG diagram, or JSON document.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	root.AddCommand(c.resolveCommand())
	root.AddCommand(c.exportCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())

	return root
}

// newCache selects a cache backend. Redis wins over the file cache when a
// URL is given; any setup failure degrades to no caching.
func newCache(cmd *cobra.Command, noCache bool, redisURL string) cache.Cache {
	if noCache {
		return cache.NewNullCache()
	}
	if redisURL != "" {
		c, err := cache.NewRedisCache(cmd.Context(), redisURL)
		if err == nil {
			return c
		}
		loggerFromContext(cmd.Context()).Warnf("Redis cache unavailable, continuing without: %v", err)
		return cache.NewNullCache()
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache()
	}
	c, err := cache.NewFileCache(dir)
	if err != nil {
		return cache.NewNullCache()
	}
	return c
}

// newSource builds the metadata source selected by the configuration.
func newSource(cfg config.Config, store cache.Cache) (registry.Source, error) {
	if cfg.Registry.Mode == config.ModeFile {
		return registry.OpenDocument(cfg.Registry.Path)
	}
	if cfg.Registry.URL != "" {
		return registry.NewClientWithBaseURL(store, cfg.CacheTTL.Std(), cfg.Registry.URL), nil
	}
	return registry.NewClient(store, cfg.CacheTTL.Std()), nil
}

// cacheDir returns the cache directory using XDG standard (~/.cache/depviz/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
