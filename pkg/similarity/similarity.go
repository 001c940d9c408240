// Package similarity scores pairs of bibliographic records.
//
// The inference phase only needs the Combined score; the per-field scores
// are informational and surface in diagnostics. All scores lie in [0, 1].
//
// The default LexicalScorer compares:
//   - Titles with Jaccard similarity over word sets
//   - Author lists as overlap of normalized name sets
//   - Keyword strings with Jaccard over comma-separated terms
//   - Abstracts with TF-IDF cosine similarity
//
// and combines them as a weighted sum. Scorer is an interface so callers
// can plug in semantic scorers (embeddings) without touching inference.
package similarity

import (
	"math"
	"strings"
	"unicode"

	"github.com/orneryd/citegraph/pkg/bibgraph"
)

// Scores holds the named similarity metrics for one article pair.
// Every value lies in [0, 1].
type Scores struct {
	Title    float64 `json:"title"`
	Authors  float64 `json:"authors"`
	Keywords float64 `json:"keywords"`
	Abstract float64 `json:"abstract"`
	Combined float64 `json:"combined"`
}

// Scorer computes similarity scores for a pair of articles.
//
// Implementations must be safe for concurrent use: the inference phase
// calls Score from multiple workers. A returned error is treated as a
// zero score for the affected pair; it never aborts a whole inference
// pass.
type Scorer interface {
	Score(a, b *bibgraph.Article) (Scores, error)
}

// Weights controls how per-field scores combine into Scores.Combined.
type Weights struct {
	Title    float64 `yaml:"title"`
	Authors  float64 `yaml:"authors"`
	Keywords float64 `yaml:"keywords"`
	Abstract float64 `yaml:"abstract"`
}

// DefaultWeights returns the intended multi-factor combination: title
// dominates, authors and keywords contribute equally, abstracts least.
func DefaultWeights() Weights {
	return Weights{Title: 0.5, Authors: 0.2, Keywords: 0.2, Abstract: 0.1}
}

// LexicalScorer scores article pairs with purely lexical comparisons.
// It is stateless and safe for concurrent use.
type LexicalScorer struct {
	weights Weights
}

// NewLexicalScorer creates a scorer with the given combination weights.
// Zero-value weights fall back to DefaultWeights.
func NewLexicalScorer(w Weights) *LexicalScorer {
	if w == (Weights{}) {
		w = DefaultWeights()
	}
	return &LexicalScorer{weights: w}
}

// Score computes all similarity metrics for the pair (a, b). It never
// returns an error: degenerate inputs (empty titles, missing abstracts)
// score 0 for the affected metric.
func (s *LexicalScorer) Score(a, b *bibgraph.Article) (Scores, error) {
	sc := Scores{
		Title:    Jaccard(a.Title, b.Title),
		Authors:  AuthorOverlap(a.Authors, b.Authors),
		Keywords: KeywordSimilarity(a.Keywords, b.Keywords),
	}
	if a.Abstract != "" && b.Abstract != "" {
		sc.Abstract = CosineTFIDF(a.Abstract, b.Abstract)
	}

	w := s.weights
	total := w.Title + w.Authors + w.Keywords + w.Abstract
	if total > 0 {
		sc.Combined = (w.Title*sc.Title + w.Authors*sc.Authors +
			w.Keywords*sc.Keywords + w.Abstract*sc.Abstract) / total
	}
	sc.Combined = clamp01(sc.Combined)
	return sc, nil
}

// Jaccard computes word-set Jaccard similarity between two texts:
// |A ∩ B| / |A ∪ B| over lowercased word tokens.
func Jaccard(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	return jaccardSets(tokenize(a), tokenize(b))
}

// AuthorOverlap computes Jaccard similarity between two author lists,
// comparing names case-insensitively after trimming whitespace.
func AuthorOverlap(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	setA := make(map[string]struct{}, len(a))
	for _, name := range a {
		setA[strings.ToLower(strings.TrimSpace(name))] = struct{}{}
	}
	setB := make(map[string]struct{}, len(b))
	for _, name := range b {
		setB[strings.ToLower(strings.TrimSpace(name))] = struct{}{}
	}
	return jaccardSets(setA, setB)
}

// KeywordSimilarity computes Jaccard similarity between two raw
// comma-separated keyword strings.
func KeywordSimilarity(a, b string) float64 {
	setA := keywordSet(a)
	setB := keywordSet(b)
	if len(setA) == 0 || len(setB) == 0 {
		return 0
	}
	return jaccardSets(setA, setB)
}

// CosineTFIDF computes cosine similarity between two texts under a
// two-document TF-IDF weighting. Terms appearing in both documents get
// idf 1; terms unique to one document get the smoothed idf ln(3/2)+1.
func CosineTFIDF(a, b string) float64 {
	tfA := termFreq(a)
	tfB := termFreq(b)
	if len(tfA) == 0 || len(tfB) == 0 {
		return 0
	}

	// Smoothed idf over the two-document corpus: ln((1+n)/(1+df)) + 1.
	idf := func(term string) float64 {
		df := 0.0
		if _, ok := tfA[term]; ok {
			df++
		}
		if _, ok := tfB[term]; ok {
			df++
		}
		return math.Log(3.0/(1.0+df)) + 1.0
	}

	dot, normA, normB := 0.0, 0.0, 0.0
	for term, fa := range tfA {
		wa := fa * idf(term)
		normA += wa * wa
		if fb, ok := tfB[term]; ok {
			dot += wa * fb * idf(term)
		}
	}
	for term, fb := range tfB {
		wb := fb * idf(term)
		normB += wb * wb
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return clamp01(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}

// tokenize splits text into a set of lowercased alphanumeric word tokens.
func tokenize(text string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, tok := range splitWords(text) {
		set[tok] = struct{}{}
	}
	return set
}

// termFreq counts lowercased word tokens.
func termFreq(text string) map[string]float64 {
	freq := make(map[string]float64)
	for _, tok := range splitWords(text) {
		freq[tok]++
	}
	return freq
}

func splitWords(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_'
	})
}

func keywordSet(raw string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, kw := range strings.Split(raw, ",") {
		if k := strings.ToLower(strings.TrimSpace(kw)); k != "" {
			set[k] = struct{}{}
		}
	}
	return set
}

func jaccardSets(a, b map[string]struct{}) float64 {
	intersection := 0
	for tok := range a {
		if _, ok := b[tok]; ok {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

func clamp01(v float64) float64 {
	return math.Min(1.0, math.Max(0.0, v))
}
