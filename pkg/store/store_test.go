package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orneryd/citegraph/pkg/bibgraph"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSaveAndLoadRoundtrip(t *testing.T) {
	s := openTestStore(t)

	articles := []*bibgraph.Article{
		{
			ID:       "smith2020",
			Title:    "Graph Methods",
			Authors:  []string{"Smith, J.", "Jones, M."},
			Year:     2020,
			Journal:  "J. Bibliometrics",
			Abstract: "We study citation graphs.",
			Keywords: "graphs, citations",
			DOI:      "10.1000/xyz",
		},
		{ID: "jones2018", Title: "Networks", Year: 2018},
	}
	require.NoError(t, s.SaveArticles(articles))

	g := bibgraph.New()
	for _, a := range articles {
		require.NoError(t, g.AddNode(a))
	}
	require.NoError(t, g.AddEdge("smith2020", "jones2018", 0.83))
	require.NoError(t, s.SaveEdges(g))

	loaded, err := s.LoadGraph()
	require.NoError(t, err)

	assert.Equal(t, 2, loaded.NodeCount())
	assert.Equal(t, 1, loaded.EdgeCount())

	a, ok := loaded.Article("smith2020")
	require.True(t, ok)
	assert.Equal(t, "Graph Methods", a.Title)
	assert.Equal(t, []string{"Smith, J.", "Jones, M."}, a.Authors)
	assert.Equal(t, "We study citation graphs.", a.Abstract, "full record incl. abstract must survive the roundtrip")

	w, ok := loaded.Weight("smith2020", "jones2018")
	require.True(t, ok)
	assert.InDelta(t, 0.83, w, 1e-9)

	assert.False(t, loaded.Frozen(), "loaded graph must accept further edges")
}

func TestLoadWithoutBuildFails(t *testing.T) {
	s := openTestStore(t)

	_, err := s.LoadGraph()
	assert.ErrorIs(t, err, ErrNoSnapshot)
}

func TestSaveEdgesReplacesPreviousRun(t *testing.T) {
	s := openTestStore(t)

	articles := []*bibgraph.Article{
		{ID: "a", Year: 2021},
		{ID: "b", Year: 2019},
		{ID: "c", Year: 2018},
	}
	require.NoError(t, s.SaveArticles(articles))

	g1 := bibgraph.New()
	for _, a := range articles {
		require.NoError(t, g1.AddNode(a))
	}
	require.NoError(t, g1.AddEdge("a", "b", 0.9))
	require.NoError(t, g1.AddEdge("a", "c", 0.6))
	require.NoError(t, s.SaveEdges(g1))

	// A re-run with a stricter threshold keeps fewer edges; the store
	// must not retain stale ones.
	g2 := bibgraph.New()
	for _, a := range articles {
		require.NoError(t, g2.AddNode(a))
	}
	require.NoError(t, g2.AddEdge("a", "b", 0.9))
	require.NoError(t, s.SaveEdges(g2))

	loaded, err := s.LoadGraph()
	require.NoError(t, err)
	assert.Equal(t, 1, loaded.EdgeCount())

	_, stale := loaded.Weight("a", "c")
	assert.False(t, stale, "edges from the previous inference run must be dropped")
}

func TestSaveArticlesOverwritesById(t *testing.T) {
	s := openTestStore(t)

	require.NoError(t, s.SaveArticles([]*bibgraph.Article{{ID: "x", Title: "first"}}))
	require.NoError(t, s.SaveArticles([]*bibgraph.Article{{ID: "x", Title: "second"}}))

	loaded, err := s.LoadGraph()
	require.NoError(t, err)
	require.Equal(t, 1, loaded.NodeCount())

	a, ok := loaded.Article("x")
	require.True(t, ok)
	assert.Equal(t, "second", a.Title)
}
