// Package depgraph builds and analyzes package dependency graphs.
//
// The [Builder] performs a breadth-first crawl over a metadata source,
// expanding each package exactly once and recording its direct dependencies
// in a [Graph]. The finished graph is read-only and is consumed by three
// independent passes: cycle detection ([FindCycles]), tree rendering
// ([Lines]), and statistics ([Collect]). The passes never mutate the graph
// and may run concurrently with each other.
package depgraph

import (
	"errors"
	"slices"
)

var (
	// ErrInvalidPackageName is returned by [Graph.Add] when the package
	// name is empty.
	ErrInvalidPackageName = errors.New("package name must not be empty")

	// ErrDuplicatePackage is returned by [Graph.Add] when the package was
	// already recorded. Each package is expanded exactly once.
	ErrDuplicatePackage = errors.New("duplicate package")
)

// Graph maps each visited package to its ordered list of direct
// dependencies. Insertion order is discovery order.
//
// A name may appear inside a dependency list without being a key of its
// own when metadata retrieval failed for it or traversal limits cut it
// off; such names count as edges but not as packages.
//
// Graph is not safe for concurrent mutation. Once building is complete it
// is treated as immutable and may be shared freely across readers.
type Graph struct {
	order []string
	deps  map[string][]string
}

// New creates an empty Graph.
func New() *Graph {
	return &Graph{deps: make(map[string][]string)}
}

// Add records a package and its direct dependencies.
// The dependency slice is stored as-is; callers hand over ownership.
func (g *Graph) Add(name string, deps []string) error {
	if name == "" {
		return ErrInvalidPackageName
	}
	if _, ok := g.deps[name]; ok {
		return ErrDuplicatePackage
	}
	g.order = append(g.order, name)
	g.deps[name] = deps
	return nil
}

// Has reports whether name was recorded as a package.
func (g *Graph) Has(name string) bool {
	_, ok := g.deps[name]
	return ok
}

// Deps returns name's direct dependencies in discovery order.
// Returns nil for unknown names. The returned slice must not be modified.
func (g *Graph) Deps(name string) []string {
	return g.deps[name]
}

// Packages returns all recorded package names in discovery order.
func (g *Graph) Packages() []string {
	return slices.Clone(g.order)
}

// PackageCount returns the number of recorded packages.
func (g *Graph) PackageCount() int {
	return len(g.order)
}

// EdgeCount returns the total number of dependency edges,
// the sum of all successor list lengths.
func (g *Graph) EdgeCount() int {
	n := 0
	for _, deps := range g.deps {
		n += len(deps)
	}
	return n
}

// Leaves returns the packages with no dependencies, in discovery order.
func (g *Graph) Leaves() []string {
	var leaves []string
	for _, name := range g.order {
		if len(g.deps[name]) == 0 {
			leaves = append(leaves, name)
		}
	}
	return leaves
}
