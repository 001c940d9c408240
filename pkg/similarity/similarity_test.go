package similarity

import (
	"math"
	"testing"

	"github.com/orneryd/citegraph/pkg/bibgraph"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestJaccard(t *testing.T) {
	cases := []struct {
		a, b string
		want float64
	}{
		{"graph theory basics", "graph theory basics", 1.0},
		{"graph theory basics", "graph theory applications", 0.5},
		{"alpha beta", "gamma delta", 0.0},
		{"", "anything", 0.0},
		{"anything", "", 0.0},
		{"Graph THEORY", "graph theory", 1.0}, // case-insensitive
	}
	for _, c := range cases {
		if got := Jaccard(c.a, c.b); !almostEqual(got, c.want) {
			t.Errorf("Jaccard(%q, %q) = %g, want %g", c.a, c.b, got, c.want)
		}
	}
}

func TestAuthorOverlap(t *testing.T) {
	a := []string{"Smith, J.", "Jones, M."}
	b := []string{"smith, j.", "Brown, K."}

	// One shared author of three distinct names.
	if got := AuthorOverlap(a, b); !almostEqual(got, 1.0/3.0) {
		t.Errorf("AuthorOverlap = %g, want 1/3", got)
	}
	if got := AuthorOverlap(nil, b); got != 0 {
		t.Errorf("empty author list should score 0, got %g", got)
	}
}

func TestKeywordSimilarity(t *testing.T) {
	if got := KeywordSimilarity("graphs, citations, networks", "Citations, networks, clustering"); !almostEqual(got, 0.5) {
		t.Errorf("KeywordSimilarity = %g, want 0.5", got)
	}
	if got := KeywordSimilarity("", "a, b"); got != 0 {
		t.Errorf("empty keywords should score 0, got %g", got)
	}
	if got := KeywordSimilarity(" , , ", "a"); got != 0 {
		t.Errorf("blank keywords should score 0, got %g", got)
	}
}

func TestCosineTFIDF(t *testing.T) {
	if got := CosineTFIDF("shared words only", "shared words only"); !almostEqual(got, 1.0) {
		t.Errorf("identical texts should score 1, got %g", got)
	}
	if got := CosineTFIDF("alpha beta", "gamma delta"); got != 0 {
		t.Errorf("disjoint texts should score 0, got %g", got)
	}
	if got := CosineTFIDF("", "text"); got != 0 {
		t.Errorf("empty text should score 0, got %g", got)
	}

	// Partial overlap lands strictly between the extremes.
	mid := CosineTFIDF("graph based citation analysis", "graph based keyword analysis")
	if mid <= 0 || mid >= 1 {
		t.Errorf("partial overlap should score in (0, 1), got %g", mid)
	}
}

func TestLexicalScorerCombined(t *testing.T) {
	scorer := NewLexicalScorer(DefaultWeights())

	a := &bibgraph.Article{ID: "a", Title: "deep learning methods"}
	b := &bibgraph.Article{ID: "b", Title: "deep learning methods"}

	sc, err := scorer.Score(a, b)
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if !almostEqual(sc.Title, 1.0) {
		t.Errorf("identical titles should score 1, got %g", sc.Title)
	}
	// Only the title contributes: 0.5·1 / (0.5+0.2+0.2+0.1) = 0.5
	if !almostEqual(sc.Combined, 0.5) {
		t.Errorf("combined = %g, want 0.5", sc.Combined)
	}
}

func TestLexicalScorerAllFields(t *testing.T) {
	scorer := NewLexicalScorer(DefaultWeights())

	a := &bibgraph.Article{
		ID:       "a",
		Title:    "citation graphs",
		Authors:  []string{"Smith, J."},
		Keywords: "graphs, citations",
		Abstract: "we build citation graphs from article metadata",
	}
	b := &bibgraph.Article{
		ID:       "b",
		Title:    "citation graphs",
		Authors:  []string{"Smith, J."},
		Keywords: "graphs, citations",
		Abstract: "we build citation graphs from article metadata",
	}

	sc, err := scorer.Score(a, b)
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	for name, v := range map[string]float64{
		"title":    sc.Title,
		"authors":  sc.Authors,
		"keywords": sc.Keywords,
		"abstract": sc.Abstract,
		"combined": sc.Combined,
	} {
		if !almostEqual(v, 1.0) {
			t.Errorf("identical articles: %s = %g, want 1", name, v)
		}
	}
}

func TestLexicalScorerCustomWeights(t *testing.T) {
	// Title-only weighting reproduces the legacy combined score.
	scorer := NewLexicalScorer(Weights{Title: 1})

	a := &bibgraph.Article{ID: "a", Title: "graph theory basics", Authors: []string{"X"}}
	b := &bibgraph.Article{ID: "b", Title: "graph theory applications", Authors: []string{"X"}}

	sc, _ := scorer.Score(a, b)
	if !almostEqual(sc.Combined, 0.5) {
		t.Errorf("title-only combined = %g, want 0.5", sc.Combined)
	}
}

func TestLexicalScorerZeroWeightsFallBack(t *testing.T) {
	scorer := NewLexicalScorer(Weights{})

	a := &bibgraph.Article{ID: "a", Title: "same title"}
	b := &bibgraph.Article{ID: "b", Title: "same title"}

	sc, _ := scorer.Score(a, b)
	if !almostEqual(sc.Combined, 0.5) {
		t.Errorf("zero weights should fall back to defaults, combined = %g", sc.Combined)
	}
}
