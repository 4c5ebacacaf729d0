package depgraph

import (
	"slices"
	"strings"

	"github.com/depviz-io/depviz/pkg/registry"
)

// ExtractDependencies flattens one version's dependency declarations into a
// deduplicated, sorted list of package names.
//
// All four declaration categories (runtime, development, peer, optional)
// are merged; a name declared in several categories appears once. If filter
// is non-empty, every name containing it as a substring is removed.
// Filtered names are treated as non-existent dependencies, not as errors,
// so their subtrees are never discovered. Self-dependencies are retained
// and surface later as one-node cycles.
//
// The result is sorted lexically so successor lists are deterministic
// regardless of map iteration order.
func ExtractDependencies(meta *registry.VersionMetadata, filter string) []string {
	seen := make(map[string]bool)
	var names []string

	collect := func(category map[string]string) {
		for name := range category {
			if seen[name] {
				continue
			}
			if filter != "" && strings.Contains(name, filter) {
				continue
			}
			seen[name] = true
			names = append(names, name)
		}
	}

	collect(meta.Dependencies)
	collect(meta.DevDependencies)
	collect(meta.PeerDependencies)
	collect(meta.OptionalDependencies)

	slices.Sort(names)
	return names
}
