// Package config loads depviz configuration from TOML files and applies
// defaults. Command-line flags override file values; the file is optional.
package config

import (
	"os"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/depviz-io/depviz/pkg/depgraph"
	"github.com/depviz-io/depviz/pkg/errors"
)

// Registry modes.
const (
	ModeNpm  = "npm"  // Live npm registry over HTTP
	ModeFile = "file" // Static local JSON document
)

// DefaultCacheTTL is how long registry responses stay cached.
const DefaultCacheTTL = time.Hour

// Duration wraps time.Duration so TOML values can be written as "30m" or
// "1h30m".
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler for TOML decoding.
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Registry selects where package metadata comes from.
type Registry struct {
	Mode string `toml:"mode"` // "npm" or "file"
	Path string `toml:"path"` // Document path, required for "file" mode
	URL  string `toml:"url"`  // Base URL override for "npm" mode
}

// Config is the full depviz configuration.
type Config struct {
	Package     string   `toml:"package"`      // Root package to resolve
	Version     string   `toml:"version"`      // Version selector
	Filter      string   `toml:"filter"`       // Substring exclusion filter
	Workers     int      `toml:"workers"`      // Concurrent metadata fetches
	MaxDepth    int      `toml:"max_depth"`    // Traversal depth limit
	MaxPackages int      `toml:"max_packages"` // Package expansion limit
	CacheTTL    Duration `toml:"cache_ttl"`    // Registry response cache lifetime
	Registry    Registry `toml:"registry"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Version:     depgraph.DefaultSelector,
		Workers:     depgraph.DefaultWorkers,
		MaxDepth:    depgraph.DefaultMaxDepth,
		MaxPackages: depgraph.DefaultMaxPackages,
		CacheTTL:    Duration(DefaultCacheTTL),
		Registry:    Registry{Mode: ModeNpm},
	}
}

// Load reads a TOML configuration file and merges it over Default.
// A missing file is not an error; a malformed one is.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read config %s", path)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse config %s", path)
	}
	return cfg, nil
}

// Validate checks the configuration for contradictions. It does not touch
// the filesystem or the network.
func (c Config) Validate() error {
	switch c.Registry.Mode {
	case ModeNpm:
	case ModeFile:
		if c.Registry.Path == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "registry mode \"file\" requires registry.path")
		}
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "unknown registry mode: %s", c.Registry.Mode)
	}

	if c.Version != "" {
		if err := errors.ValidateVersionSelector(c.Version); err != nil {
			return err
		}
	}
	if c.Workers < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "workers must not be negative")
	}
	if c.MaxDepth < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "max_depth must not be negative")
	}
	if c.MaxPackages < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "max_packages must not be negative")
	}
	if c.CacheTTL < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "cache_ttl must not be negative")
	}
	return nil
}

// BuildOptions converts the configuration into crawl options.
func (c Config) BuildOptions() depgraph.Options {
	return depgraph.Options{
		Selector:    c.Version,
		Filter:      c.Filter,
		MaxDepth:    c.MaxDepth,
		MaxPackages: c.MaxPackages,
		Workers:     c.Workers,
	}
}
