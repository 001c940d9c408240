// Package bibgraph provides the in-memory citation graph for CiteGraph.
//
// The graph holds one node per bibliographic record and weighted directed
// edges representing inferred "cites" relationships. Edges are written once
// during the inference phase and read many times afterwards by the analysis
// packages (pathfind, components, stats).
//
// Design Principles:
//   - The graph owns all node and edge data; accessors return copies
//   - Single write phase, then Freeze() for the read-only analysis phase
//   - Thread-safe through an RWMutex, though the batch pipeline is sequential
//
// Example Usage:
//
//	g := bibgraph.New()
//
//	g.AddNode(&bibgraph.Article{
//		ID:    "smith2020",
//		Title: "Graph Methods in Bibliometrics",
//		Year:  2020,
//	})
//	g.AddNode(&bibgraph.Article{
//		ID:    "jones2018",
//		Title: "Citation Network Analysis",
//		Year:  2018,
//	})
//
//	// smith2020 (newer) cites jones2018 (older), strength 0.83
//	if err := g.AddEdge("smith2020", "jones2018", 0.83); err != nil {
//		log.Fatal(err)
//	}
//
//	g.Freeze()
//	fmt.Println(g.Neighbors("smith2020")) // map[jones2018:0.83]
package bibgraph

import (
	"errors"
	"strings"
)

// Common errors
var (
	// ErrUnknownNode reports an edge or query referencing an article id that
	// is not in the node set. This always indicates a data-integrity bug
	// upstream and is never silently ignored.
	ErrUnknownNode = errors.New("unknown node")

	// ErrFrozen reports a mutation attempted after Freeze().
	ErrFrozen = errors.New("graph is frozen")

	// ErrInvalidWeight reports an edge weight outside (0, 1].
	ErrInvalidWeight = errors.New("edge weight must be in (0, 1]")
)

// ArticleID is a strongly-typed unique identifier for articles.
//
// Identifiers are stable for the lifetime of the graph. In practice they
// are BibTeX entry keys (e.g. "smith2020graph").
type ArticleID string

// Article is a single bibliographic record represented as a graph vertex.
//
// Articles are immutable once loaded into the graph. Year 0 means the
// publication year was absent or unparseable; such articles still
// participate in inference (they form their own temporal bucket).
type Article struct {
	ID       ArticleID `json:"id"`
	Title    string    `json:"title"`
	Authors  []string  `json:"authors"`
	Year     int       `json:"year"`
	Journal  string    `json:"journal"`
	Abstract string    `json:"abstract"`
	Keywords string    `json:"keywords"` // raw comma-separated keyword string
	DOI      string    `json:"doi"`
}

// SplitAuthors splits a raw BibTeX author field into an ordered list of
// author names. BibTeX separates authors with the word "and".
//
// Example:
//
//	bibgraph.SplitAuthors("Smith, J. and Jones, M.")
//	// → []string{"Smith, J.", "Jones, M."}
func SplitAuthors(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, " and ")
	authors := make([]string, 0, len(parts))
	for _, p := range parts {
		if name := strings.TrimSpace(p); name != "" {
			authors = append(authors, name)
		}
	}
	return authors
}
