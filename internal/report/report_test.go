package report

import (
	"strings"
	"testing"

	"github.com/depviz-io/depviz/pkg/depgraph"
)

func buildGraph(t *testing.T) *depgraph.Graph {
	t.Helper()
	g := depgraph.New()
	for _, step := range []struct {
		name string
		deps []string
	}{
		{"root", []string{"x"}},
		{"x", []string{"y"}},
		{"y", []string{"z"}},
		{"z", nil},
	} {
		if err := g.Add(step.name, step.deps); err != nil {
			t.Fatalf("Add(%s) error: %v", step.name, err)
		}
	}
	return g
}

func TestRender(t *testing.T) {
	g := buildGraph(t)

	got := Render(g, "root", depgraph.TreeOptions{})
	want := strings.Join([]string{
		strings.Repeat("=", 60),
		"Dependency tree: root",
		strings.Repeat("=", 60),
		"root",
		"└── x",
		"    └── y",
		"        └── z",
		strings.Repeat("=", 60),
		"",
		"Graph statistics:",
		strings.Repeat("-", 40),
		"• Total packages: 4",
		"• Total dependencies: 3",
		"• Leaf packages: 1",
		"• Cyclic references: 0",
		"",
	}, "\n")
	if got != want {
		t.Errorf("Render() =\n%s\nwant:\n%s", got, want)
	}
}

func TestRenderStable(t *testing.T) {
	g := buildGraph(t)

	first := Render(g, "root", depgraph.TreeOptions{})
	for i := 0; i < 3; i++ {
		if again := Render(g, "root", depgraph.TreeOptions{}); again != first {
			t.Fatalf("render %d differs from first", i+2)
		}
	}
}
