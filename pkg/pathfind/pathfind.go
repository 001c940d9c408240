// Package pathfind runs shortest-path searches over a citation graph.
//
// Edge weights are similarity strengths in (0, 1], so the traversal cost
// of an edge is 1/weight: a strong citation relation (weight near 1) is a
// short hop, a weak one is a long hop. Weights in (0, 1] guarantee every
// cost is finite and at least 1.
package pathfind

import (
	"container/heap"
	"fmt"
	"math"

	"github.com/orneryd/citegraph/pkg/bibgraph"
)

// Result is the outcome of a shortest-path search.
//
// An unreachable target is not an error: it is reported as the sentinel
// Cost = +Inf with a nil Path, so callers can distinguish "no path" from
// an invalid query (ErrUnknownNode).
type Result struct {
	// Cost is the summed 1/weight traversal cost, or +Inf when the target
	// is unreachable.
	Cost float64

	// Path lists the articles from source to target inclusive. Nil when
	// the target is unreachable. A search from a node to itself yields
	// Cost 0 and a single-element path.
	Path []bibgraph.ArticleID
}

// Reachable reports whether the search found a path.
func (r Result) Reachable() bool {
	return !math.IsInf(r.Cost, 1)
}

// ShortestPath runs Dijkstra's algorithm from source to target.
//
// It returns bibgraph.ErrUnknownNode if either endpoint is not a node in
// the graph. Stale priority-queue entries for already-settled nodes are
// skipped, so each node is processed at most once; the search stops as
// soon as the target is settled.
func ShortestPath(g *bibgraph.Graph, source, target bibgraph.ArticleID) (Result, error) {
	if !g.HasNode(source) {
		return Result{}, fmt.Errorf("source %q: %w", source, bibgraph.ErrUnknownNode)
	}
	if !g.HasNode(target) {
		return Result{}, fmt.Errorf("target %q: %w", target, bibgraph.ErrUnknownNode)
	}

	// Distances default to +Inf; only discovered nodes get entries.
	dist := map[bibgraph.ArticleID]float64{source: 0}
	prev := make(map[bibgraph.ArticleID]bibgraph.ArticleID)
	visited := make(map[bibgraph.ArticleID]bool)

	pq := &queue{{id: source, cost: 0}}
	heap.Init(pq)

	for pq.Len() > 0 {
		current := heap.Pop(pq).(entry)
		if visited[current.id] {
			continue
		}
		visited[current.id] = true

		if current.id == target {
			break
		}

		for neighbor, weight := range g.Neighbors(current.id) {
			if visited[neighbor] {
				continue
			}
			// Higher similarity means a closer citation relationship.
			alt := current.cost + 1/weight
			if best, seen := dist[neighbor]; !seen || alt < best {
				dist[neighbor] = alt
				prev[neighbor] = current.id
				heap.Push(pq, entry{id: neighbor, cost: alt})
			}
		}
	}

	cost, ok := dist[target]
	if !ok || !visited[target] {
		return Result{Cost: math.Inf(1)}, nil
	}

	// Walk predecessors back from the target, then reverse.
	path := []bibgraph.ArticleID{target}
	for at := target; at != source; {
		at = prev[at]
		path = append(path, at)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return Result{Cost: cost, Path: path}, nil
}

// entry is a priority-queue element. Stale entries (a node pushed again
// with an older, larger cost) are filtered by the visited check on pop.
type entry struct {
	id   bibgraph.ArticleID
	cost float64
}

type queue []entry

func (q queue) Len() int            { return len(q) }
func (q queue) Less(i, j int) bool  { return q[i].cost < q[j].cost }
func (q queue) Swap(i, j int)       { q[i], q[j] = q[j], q[i] }
func (q *queue) Push(x interface{}) { *q = append(*q, x.(entry)) }
func (q *queue) Pop() interface{} {
	old := *q
	n := len(old)
	item := old[n-1]
	*q = old[:n-1]
	return item
}
