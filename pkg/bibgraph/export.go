package bibgraph

import (
	"encoding/json"
	"io"
)

// NodeExport is the stable per-article shape of a graph export. Abstract
// text, raw keyword strings, and any raw-record passthrough are
// intentionally omitted; only these fields are guaranteed stable for
// external visualization tools.
type NodeExport struct {
	Title   string   `json:"title"`
	Authors []string `json:"authors"`
	Year    int      `json:"year"`
	Journal string   `json:"journal"`
	DOI     string   `json:"doi"`
}

// Export is a serialized snapshot of the graph with two top-level
// collections: nodes (id → metadata) and edges (source → target → weight).
type Export struct {
	Nodes map[ArticleID]NodeExport            `json:"nodes"`
	Edges map[ArticleID]map[ArticleID]float64 `json:"edges"`
}

// Snapshot captures the current graph state as an Export.
func (g *Graph) Snapshot() *Export {
	g.mu.RLock()
	defer g.mu.RUnlock()

	exp := &Export{
		Nodes: make(map[ArticleID]NodeExport, len(g.nodes)),
		Edges: make(map[ArticleID]map[ArticleID]float64, len(g.adj)),
	}
	for id, a := range g.nodes {
		exp.Nodes[id] = NodeExport{
			Title:   a.Title,
			Authors: a.Authors,
			Year:    a.Year,
			Journal: a.Journal,
			DOI:     a.DOI,
		}
	}
	for source, targets := range g.adj {
		if len(targets) == 0 {
			continue
		}
		exp.Edges[source] = copyEdges(targets)
	}
	return exp
}

// WriteJSON writes the snapshot as indented JSON.
func (e *Export) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(e)
}
