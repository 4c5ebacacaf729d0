package depgraph

import (
	"context"
	"slices"
	"sync"
	"testing"

	"github.com/depviz-io/depviz/pkg/errors"
	"github.com/depviz-io/depviz/pkg/registry"
)

// fakeSource is an in-memory metadata source that counts fetches per
// package and can fail selected packages.
type fakeSource struct {
	mu       sync.Mutex
	packages map[string]map[string]string // name -> runtime dependencies
	failing  map[string]error
	calls    map[string]int
}

func newFakeSource(packages map[string]map[string]string) *fakeSource {
	return &fakeSource{
		packages: packages,
		failing:  make(map[string]error),
		calls:    make(map[string]int),
	}
}

func (s *fakeSource) Fetch(ctx context.Context, name, selector string) (*registry.VersionMetadata, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls[name]++

	if err, ok := s.failing[name]; ok {
		return nil, err
	}
	deps, ok := s.packages[name]
	if !ok {
		return nil, errors.New(errors.ErrCodePackageNotFound, "package not found: %s", name)
	}
	return &registry.VersionMetadata{
		Name:         name,
		Version:      "1.0.0",
		Dependencies: deps,
	}, nil
}

func (s *fakeSource) Name() string { return "fake" }

func (s *fakeSource) callCount(name string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[name]
}

func TestBuildLinearChain(t *testing.T) {
	src := newFakeSource(map[string]map[string]string{
		"root": {"x": "*"},
		"x":    {"y": "*"},
		"y":    {"z": "*"},
		"z":    nil,
	})

	res, err := NewBuilder(src).Build(context.Background(), "root", Options{})
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	if len(res.Warnings) != 0 {
		t.Errorf("Warnings = %v, want none", res.Warnings)
	}

	stats := Collect(res.Graph, "root")
	want := Stats{TotalPackages: 4, TotalEdges: 3, LeafPackages: 1, CyclicRefs: 0}
	if stats != want {
		t.Errorf("stats = %+v, want %+v", stats, want)
	}
}

func TestBuildCyclicFetchesOnce(t *testing.T) {
	src := newFakeSource(map[string]map[string]string{
		"A": {"B": "*", "C": "*"},
		"B": {"D": "*"},
		"C": {"D": "*", "E": "*"},
		"D": {"B": "*"},
		"E": nil,
	})

	res, err := NewBuilder(src).Build(context.Background(), "A", Options{})
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}

	for _, name := range []string{"A", "B", "C", "D", "E"} {
		if n := src.callCount(name); n != 1 {
			t.Errorf("fetch count for %s = %d, want 1", name, n)
		}
	}

	stats := Collect(res.Graph, "A")
	want := Stats{TotalPackages: 5, TotalEdges: 6, LeafPackages: 1, CyclicRefs: 2}
	if stats != want {
		t.Errorf("stats = %+v, want %+v", stats, want)
	}
}

func TestBuildFetchFailureBecomesLeaf(t *testing.T) {
	src := newFakeSource(map[string]map[string]string{
		"root":    {"broken": "*", "healthy": "*"},
		"healthy": {"deep": "*"},
		"deep":    nil,
	})
	src.failing["broken"] = errors.New(errors.ErrCodeRegistryUnavailable, "boom")

	res, err := NewBuilder(src).Build(context.Background(), "root", Options{})
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}

	if len(res.Warnings) != 1 || res.Warnings[0].Package != "broken" {
		t.Fatalf("Warnings = %v, want one for broken", res.Warnings)
	}
	if deps := res.Graph.Deps("broken"); len(deps) != 0 || !res.Graph.Has("broken") {
		t.Errorf("broken: Has=%v Deps=%v, want leaf node", res.Graph.Has("broken"), deps)
	}
	if !res.Graph.Has("deep") {
		t.Error("sibling branch was not traversed past the failure")
	}
}

func TestBuildRootFetchFailure(t *testing.T) {
	src := newFakeSource(nil)

	res, err := NewBuilder(src).Build(context.Background(), "ghost", Options{})
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	if len(res.Warnings) != 1 {
		t.Fatalf("Warnings = %v, want one", res.Warnings)
	}
	if !errors.Is(res.Warnings[0].Err, errors.ErrCodePackageNotFound) {
		t.Errorf("warning code = %v, want PACKAGE_NOT_FOUND", res.Warnings[0].Err)
	}
	if !res.Graph.Has("ghost") || res.Graph.PackageCount() != 1 {
		t.Errorf("graph = %v, want single leaf ghost", res.Graph.Packages())
	}
}

func TestBuildFilterSkipsDiscovery(t *testing.T) {
	src := newFakeSource(map[string]map[string]string{
		"root":       {"babel-core": "*", "webpack": "*"},
		"babel-core": {"hidden": "*"},
		"webpack":    nil,
		"hidden":     nil,
	})

	res, err := NewBuilder(src).Build(context.Background(), "root", Options{Filter: "babel"})
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}

	if src.callCount("babel-core") != 0 {
		t.Error("filtered package was fetched")
	}
	if res.Graph.Has("babel-core") || res.Graph.Has("hidden") {
		t.Errorf("filtered subtree leaked into graph: %v", res.Graph.Packages())
	}
	if !slices.Equal(res.Graph.Deps("root"), []string{"webpack"}) {
		t.Errorf("root deps = %v, want [webpack]", res.Graph.Deps("root"))
	}
}

func TestBuildMaxDepth(t *testing.T) {
	src := newFakeSource(map[string]map[string]string{
		"a": {"b": "*"},
		"b": {"c": "*"},
		"c": {"d": "*"},
		"d": nil,
	})

	res, err := NewBuilder(src).Build(context.Background(), "a", Options{MaxDepth: 2})
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}

	if res.Graph.Has("d") {
		t.Error("package beyond MaxDepth was expanded")
	}
	// c is recorded with its dependency edge even though d is never expanded.
	if !slices.Equal(res.Graph.Deps("c"), []string{"d"}) {
		t.Errorf("Deps(c) = %v, want [d]", res.Graph.Deps("c"))
	}
}

func TestBuildMaxPackages(t *testing.T) {
	src := newFakeSource(map[string]map[string]string{
		"root": {"a": "*", "b": "*", "c": "*"},
		"a":    nil, "b": nil, "c": nil,
	})

	res, err := NewBuilder(src).Build(context.Background(), "root", Options{MaxPackages: 2})
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	if n := res.Graph.PackageCount(); n != 2 {
		t.Errorf("PackageCount() = %d, want 2", n)
	}
}

func TestBuildWorkerCountEquivalence(t *testing.T) {
	packages := map[string]map[string]string{
		"A": {"B": "*", "C": "*"},
		"B": {"D": "*"},
		"C": {"D": "*", "E": "*"},
		"D": {"B": "*"},
		"E": nil,
	}

	sequential, err := NewBuilder(newFakeSource(packages)).Build(context.Background(), "A", Options{Workers: 1})
	if err != nil {
		t.Fatalf("Build(Workers=1) error: %v", err)
	}
	concurrent, err := NewBuilder(newFakeSource(packages)).Build(context.Background(), "A", Options{Workers: 8})
	if err != nil {
		t.Fatalf("Build(Workers=8) error: %v", err)
	}

	if seq, con := Render(sequential.Graph, "A", TreeOptions{}), Render(concurrent.Graph, "A", TreeOptions{}); seq != con {
		t.Errorf("renders differ:\n%s\nvs:\n%s", seq, con)
	}
	if seq, con := Collect(sequential.Graph, "A"), Collect(concurrent.Graph, "A"); seq != con {
		t.Errorf("stats differ: %+v vs %+v", seq, con)
	}
}

func TestBuildContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewBuilder(newFakeSource(nil)).Build(ctx, "root", Options{})
	if err != context.Canceled {
		t.Errorf("Build() error = %v, want context.Canceled", err)
	}
}
