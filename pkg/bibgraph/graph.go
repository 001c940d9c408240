package bibgraph

import (
	"sort"
	"sync"
)

// Graph is a thread-safe weighted directed citation graph.
//
// The adjacency map is the sole source of truth for edges: out-edges are a
// direct lookup, in-edges are derived by inversion (see Transposed and
// InDegrees). At most one edge exists per ordered pair; re-adding an edge
// overwrites its weight.
//
// Lifecycle: nodes are added during ingestion, edges during inference, then
// the pipeline calls Freeze() and the analysis phase reads without writes.
type Graph struct {
	mu    sync.RWMutex
	nodes map[ArticleID]*Article
	adj   map[ArticleID]map[ArticleID]float64

	// transpose is a derived, recomputable view built lazily for the
	// analysis phase. Any mutation invalidates it.
	transpose map[ArticleID]map[ArticleID]float64

	edgeCount int
	frozen    bool
}

// New creates an empty citation graph.
func New() *Graph {
	return &Graph{
		nodes: make(map[ArticleID]*Article),
		adj:   make(map[ArticleID]map[ArticleID]float64),
	}
}

// AddNode inserts an article as a graph vertex, ensuring an empty out-edge
// entry exists for it. Adding an id that is already present replaces the
// stored article (duplicate records overwrite, they do not append).
func (g *Graph) AddNode(a *Article) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.frozen {
		return ErrFrozen
	}
	g.nodes[a.ID] = a
	if _, ok := g.adj[a.ID]; !ok {
		g.adj[a.ID] = make(map[ArticleID]float64)
	}
	g.transpose = nil
	return nil
}

// AddEdge creates or overwrites the weighted directed edge source→target.
//
// Both endpoints must already be nodes; otherwise ErrUnknownNode is
// returned and the graph is left unchanged. Weights must lie in (0, 1]:
// zero-or-below similarity never yields an edge.
func (g *Graph) AddEdge(source, target ArticleID, weight float64) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.frozen {
		return ErrFrozen
	}
	if _, ok := g.nodes[source]; !ok {
		return ErrUnknownNode
	}
	if _, ok := g.nodes[target]; !ok {
		return ErrUnknownNode
	}
	if weight <= 0 || weight > 1 {
		return ErrInvalidWeight
	}

	out := g.adj[source]
	if _, exists := out[target]; !exists {
		g.edgeCount++
	}
	out[target] = weight
	g.transpose = nil
	return nil
}

// Freeze transitions the graph into its read-only analysis phase. All
// subsequent AddNode/AddEdge calls fail with ErrFrozen. Freezing twice is
// a no-op.
func (g *Graph) Freeze() {
	g.mu.Lock()
	g.frozen = true
	g.mu.Unlock()
}

// Frozen reports whether the graph has entered the read-only phase.
func (g *Graph) Frozen() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.frozen
}

// Article returns the stored record for id.
func (g *Graph) Article(id ArticleID) (*Article, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	a, ok := g.nodes[id]
	return a, ok
}

// HasNode reports whether id is in the node set.
func (g *Graph) HasNode(id ArticleID) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	_, ok := g.nodes[id]
	return ok
}

// NodeIDs returns all article ids in lexicographic order. The fixed order
// keeps downstream passes (candidate generation, DFS roots) deterministic.
func (g *Graph) NodeIDs() []ArticleID {
	g.mu.RLock()
	defer g.mu.RUnlock()

	ids := make([]ArticleID, 0, len(g.nodes))
	for id := range g.nodes {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.nodes)
}

// EdgeCount returns the number of directed edges.
func (g *Graph) EdgeCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.edgeCount
}

// Neighbors returns the out-edges of id as a target→weight map. The map is
// a copy; mutating it does not affect the graph. Unknown or isolated nodes
// yield an empty map, not an error (isolated nodes are a valid, common
// state in inferred citation graphs).
func (g *Graph) Neighbors(id ArticleID) map[ArticleID]float64 {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return copyEdges(g.adj[id])
}

// Weight returns the weight of the edge source→target, if present.
func (g *Graph) Weight(source, target ArticleID) (float64, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	w, ok := g.adj[source][target]
	return w, ok
}

// OutDegree returns the number of out-edges of id.
func (g *Graph) OutDegree(id ArticleID) int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.adj[id])
}

// InDegrees returns the in-degree of every node, derived by inverting the
// adjacency map. Nodes with no incoming edges map to 0.
func (g *Graph) InDegrees() map[ArticleID]int {
	g.mu.RLock()
	defer g.mu.RUnlock()

	in := make(map[ArticleID]int, len(g.nodes))
	for id := range g.nodes {
		in[id] = 0
	}
	for _, targets := range g.adj {
		for target := range targets {
			in[target]++
		}
	}
	return in
}

// TransposedNeighbors returns the out-edges of id in the transposed graph
// (every edge reversed), as a copy. The transpose is computed on first use
// and cached until the next mutation; it is only needed during the
// read-only analysis phase (Kosaraju's second pass).
func (g *Graph) TransposedNeighbors(id ArticleID) map[ArticleID]float64 {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.transpose == nil {
		g.transpose = make(map[ArticleID]map[ArticleID]float64, len(g.nodes))
		for source, targets := range g.adj {
			for target, w := range targets {
				rev, ok := g.transpose[target]
				if !ok {
					rev = make(map[ArticleID]float64)
					g.transpose[target] = rev
				}
				rev[source] = w
			}
		}
	}
	return copyEdges(g.transpose[id])
}

func copyEdges(edges map[ArticleID]float64) map[ArticleID]float64 {
	out := make(map[ArticleID]float64, len(edges))
	for id, w := range edges {
		out[id] = w
	}
	return out
}
