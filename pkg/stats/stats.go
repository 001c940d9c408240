// Package stats summarizes a citation graph: size, density, degree
// rankings, and strongly-connected-component counts.
package stats

import (
	"sort"

	"github.com/orneryd/citegraph/pkg/bibgraph"
	"github.com/orneryd/citegraph/pkg/components"
)

// DefaultTopK is the default length of the degree rankings.
const DefaultTopK = 10

// DegreeEntry ranks one article by degree.
type DegreeEntry struct {
	ID     bibgraph.ArticleID `json:"id"`
	Degree int                `json:"degree"`
}

// Report is the statistics block for one graph.
type Report struct {
	Nodes int `json:"nodes"`
	Edges int `json:"edges"`

	// Density is edges / (n·(n−1)) for n > 1, else 0.
	Density float64 `json:"density"`

	// MostCited ranks articles by in-degree (incoming citations).
	MostCited []DegreeEntry `json:"most_cited"`

	// MostCiting ranks articles by out-degree (outgoing citations).
	MostCiting []DegreeEntry `json:"most_citing"`

	Components       int `json:"components"`
	LargestComponent int `json:"largest_component"`
}

// Collect computes the full statistics block for g, including the SCC
// summary. topK bounds the degree rankings; values below 1 fall back to
// DefaultTopK. The empty graph yields an all-zero report.
func Collect(g *bibgraph.Graph, topK int) Report {
	if topK < 1 {
		topK = DefaultTopK
	}

	r := Report{
		Nodes: g.NodeCount(),
		Edges: g.EdgeCount(),
	}
	if r.Nodes > 1 {
		r.Density = float64(r.Edges) / float64(r.Nodes*(r.Nodes-1))
	}

	ids := g.NodeIDs()
	inDegrees := g.InDegrees()

	cited := make([]DegreeEntry, 0, len(ids))
	citing := make([]DegreeEntry, 0, len(ids))
	for _, id := range ids {
		cited = append(cited, DegreeEntry{ID: id, Degree: inDegrees[id]})
		citing = append(citing, DegreeEntry{ID: id, Degree: g.OutDegree(id)})
	}
	r.MostCited = topEntries(cited, topK)
	r.MostCiting = topEntries(citing, topK)

	r.Components, r.LargestComponent = components.Summary(components.Analyze(g))
	return r
}

// topEntries sorts by degree descending (id ascending on ties, for
// deterministic output) and truncates to k.
func topEntries(entries []DegreeEntry, k int) []DegreeEntry {
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Degree != entries[j].Degree {
			return entries[i].Degree > entries[j].Degree
		}
		return entries[i].ID < entries[j].ID
	})
	if len(entries) > k {
		entries = entries[:k]
	}
	return entries
}
