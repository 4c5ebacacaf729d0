package depgraph

import (
	"context"
	"sync"

	"github.com/depviz-io/depviz/pkg/registry"
)

const (
	DefaultSelector    = "latest" // Default version selector
	DefaultMaxDepth    = 50       // Default maximum dependency depth
	DefaultMaxPackages = 5000     // Default maximum packages to fetch
	DefaultWorkers     = 8        // Default concurrent metadata fetches
)

// Options configures dependency graph construction.
type Options struct {
	Selector    string               // Version selector (default: "latest")
	Filter      string               // Substring exclusion filter for dependency names
	MaxDepth    int                  // Maximum traversal depth (default: 50)
	MaxPackages int                  // Maximum packages to expand (default: 5000)
	Workers     int                  // Concurrent fetches per level; 1 = fully sequential (default: 8)
	Logger      func(string, ...any) // Progress/warning callback (optional)
}

// WithDefaults returns a copy of Options with zero values replaced by defaults.
func (o Options) WithDefaults() Options {
	opts := o
	if opts.Selector == "" {
		opts.Selector = DefaultSelector
	}
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = DefaultMaxDepth
	}
	if opts.MaxPackages <= 0 {
		opts.MaxPackages = DefaultMaxPackages
	}
	if opts.Workers <= 0 {
		opts.Workers = DefaultWorkers
	}
	if opts.Logger == nil {
		opts.Logger = func(string, ...any) {}
	}
	return opts
}

// Warning records a non-fatal metadata failure encountered during a crawl.
// The affected package is kept in the graph as a leaf.
type Warning struct {
	Package string // Package whose metadata could not be retrieved
	Err     error  // The underlying fetch error
}

// Result is the outcome of a crawl: the finished graph plus the warnings
// accumulated along the way.
type Result struct {
	Graph    *Graph
	Warnings []Warning
}

// Builder constructs dependency graphs from a metadata source.
type Builder struct {
	source registry.Source
}

// NewBuilder creates a Builder that crawls the given metadata source.
func NewBuilder(source registry.Source) *Builder {
	return &Builder{source: source}
}

// Build performs a breadth-first crawl starting at root and returns the
// finished graph.
//
// Each package is fetched and expanded exactly once regardless of how many
// other packages depend on it, so the number of metadata fetches is bounded
// by the number of distinct reachable packages and termination is
// guaranteed even when the dependency relation is cyclic. Fetches within
// one BFS level run concurrently on opts.Workers goroutines; graph
// mutation stays on the calling goroutine, and discovery order is
// deterministic for a deterministic source.
//
// Metadata failures never abort the crawl: the failing package is recorded
// as dependency-free and a Warning is appended to the result. The only
// error Build itself returns is context cancellation.
func (b *Builder) Build(ctx context.Context, root string, opts Options) (*Result, error) {
	opts = opts.WithDefaults()

	res := &Result{Graph: New()}
	visited := map[string]bool{root: true}
	frontier := []string{root}

	for depth := 0; len(frontier) > 0; depth++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		opts.Logger("expanding level %d: %d packages", depth, len(frontier))
		fetched := b.fetchLevel(ctx, frontier, opts)

		var next []string
		for i, name := range frontier {
			f := fetched[i]
			if f.err != nil {
				// Leaf-node policy: record the package without
				// dependencies and keep crawling.
				res.Warnings = append(res.Warnings, Warning{Package: name, Err: f.err})
				opts.Logger("fetch failed: %s: %v", name, f.err)
				_ = res.Graph.Add(name, nil)
				continue
			}

			deps := ExtractDependencies(f.meta, opts.Filter)
			_ = res.Graph.Add(name, deps)

			if depth >= opts.MaxDepth {
				continue
			}
			for _, dep := range deps {
				if !visited[dep] && len(visited) < opts.MaxPackages {
					visited[dep] = true
					next = append(next, dep)
				}
			}
		}
		frontier = next
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return res, nil
}

type fetchResult struct {
	meta *registry.VersionMetadata
	err  error
}

// fetchLevel fetches metadata for every package in the frontier, at most
// opts.Workers requests in flight. Results are returned in frontier order.
func (b *Builder) fetchLevel(ctx context.Context, frontier []string, opts Options) []fetchResult {
	results := make([]fetchResult, len(frontier))

	var wg sync.WaitGroup
	sem := make(chan struct{}, opts.Workers)
	for i, name := range frontier {
		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()
			meta, err := b.source.Fetch(ctx, name, opts.Selector)
			results[i] = fetchResult{meta: meta, err: err}
		}()
	}
	wg.Wait()

	return results
}
