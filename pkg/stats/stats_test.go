package stats

import (
	"math"
	"testing"

	"github.com/orneryd/citegraph/pkg/bibgraph"
)

func buildGraph(t *testing.T) *bibgraph.Graph {
	t.Helper()
	g := bibgraph.New()
	for _, id := range []bibgraph.ArticleID{"hub", "a", "b", "c"} {
		if err := g.AddNode(&bibgraph.Article{ID: id}); err != nil {
			t.Fatalf("AddNode(%s): %v", id, err)
		}
	}
	// Everyone cites hub; hub cites a.
	for _, e := range [][2]bibgraph.ArticleID{{"a", "hub"}, {"b", "hub"}, {"c", "hub"}, {"hub", "a"}} {
		if err := g.AddEdge(e[0], e[1], 0.8); err != nil {
			t.Fatalf("AddEdge(%s, %s): %v", e[0], e[1], err)
		}
	}
	return g
}

func TestCollect(t *testing.T) {
	g := buildGraph(t)
	r := Collect(g, 2)

	if r.Nodes != 4 || r.Edges != 4 {
		t.Fatalf("expected 4 nodes / 4 edges, got %d / %d", r.Nodes, r.Edges)
	}
	// density = 4 / (4·3)
	if math.Abs(r.Density-1.0/3.0) > 1e-9 {
		t.Errorf("density = %g, want 1/3", r.Density)
	}

	if len(r.MostCited) != 2 {
		t.Fatalf("topK=2 should cap the ranking, got %d entries", len(r.MostCited))
	}
	if r.MostCited[0].ID != "hub" || r.MostCited[0].Degree != 3 {
		t.Errorf("most cited should be hub with 3, got %+v", r.MostCited[0])
	}
	// a is cited once; b and c not at all. Ties break by id.
	if r.MostCited[1].ID != "a" || r.MostCited[1].Degree != 1 {
		t.Errorf("second most cited should be a with 1, got %+v", r.MostCited[1])
	}

	// hub↔a is a 2-cycle; b and c are singletons.
	if r.Components != 3 || r.LargestComponent != 2 {
		t.Errorf("components = (%d, %d), want (3, 2)", r.Components, r.LargestComponent)
	}
}

func TestCollectEmptyGraph(t *testing.T) {
	r := Collect(bibgraph.New(), 10)

	if r.Nodes != 0 || r.Edges != 0 {
		t.Errorf("empty graph: nodes/edges = %d/%d", r.Nodes, r.Edges)
	}
	if r.Density != 0 {
		t.Errorf("empty graph density = %g, want 0", r.Density)
	}
	if r.Components != 0 || r.LargestComponent != 0 {
		t.Errorf("empty graph components = (%d, %d), want (0, 0)", r.Components, r.LargestComponent)
	}
	if len(r.MostCited) != 0 || len(r.MostCiting) != 0 {
		t.Errorf("empty graph should have empty rankings")
	}
}

func TestCollectSingleNode(t *testing.T) {
	g := bibgraph.New()
	if err := g.AddNode(&bibgraph.Article{ID: "only"}); err != nil {
		t.Fatal(err)
	}
	r := Collect(g, 10)

	if r.Density != 0 {
		t.Errorf("single-node density = %g, want 0 (n·(n−1) would be 0)", r.Density)
	}
	if r.Components != 1 || r.LargestComponent != 1 {
		t.Errorf("single node is its own component, got (%d, %d)", r.Components, r.LargestComponent)
	}
}

func TestTopKFallback(t *testing.T) {
	g := buildGraph(t)
	r := Collect(g, 0)

	// 4 nodes, all fit inside DefaultTopK.
	if len(r.MostCited) != 4 {
		t.Errorf("topK<1 should fall back to DefaultTopK, got %d entries", len(r.MostCited))
	}
}
