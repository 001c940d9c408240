// Package components finds strongly connected components in a citation
// graph using Kosaraju's two-pass algorithm.
//
// A strongly connected component is a maximal set of articles each
// mutually reachable from every other via directed citation edges. In
// inferred citation graphs most components are singletons; non-trivial
// components come almost entirely from same-year bidirectional edges.
//
// Both depth-first passes use an explicit stack. Inferred graphs can hold
// hundreds of thousands of nodes and recursion depth equals the longest
// DFS path, so recursive traversal would overflow the goroutine stack on
// real corpora.
package components

import (
	"sort"

	"github.com/orneryd/citegraph/pkg/bibgraph"
)

// Component is one strongly connected component, as a sorted id list.
type Component []bibgraph.ArticleID

// Analyze returns every strongly connected component of g. Each node is
// assigned to exactly one component; isolated nodes form singleton
// components. The empty graph yields an empty list.
//
// Pass 1 records DFS finish order on the graph, pass 2 runs DFS over the
// transposed graph in reverse finish order; each tree of the second pass
// is one component.
func Analyze(g *bibgraph.Graph) []Component {
	ids := g.NodeIDs()
	if len(ids) == 0 {
		return nil
	}

	finish := finishOrder(g, ids)

	visited := make(map[bibgraph.ArticleID]bool, len(ids))
	var comps []Component
	for i := len(finish) - 1; i >= 0; i-- {
		root := finish[i]
		if visited[root] {
			continue
		}
		comp := collectComponent(g, root, visited)
		sort.Slice(comp, func(a, b int) bool { return comp[a] < comp[b] })
		comps = append(comps, comp)
	}
	return comps
}

// Summary reduces a component list to its count and the size of the
// largest component.
func Summary(comps []Component) (count, largest int) {
	for _, c := range comps {
		if len(c) > largest {
			largest = len(c)
		}
	}
	return len(comps), largest
}

// dfsFrame drives the explicit-stack traversal. A node is pushed once to
// expand its neighbors and once more (expanded=true) to record its finish
// time after they complete.
type dfsFrame struct {
	id       bibgraph.ArticleID
	expanded bool
}

// finishOrder runs the first Kosaraju pass: an iterative DFS over every
// node, appending each node to the result when its subtree is exhausted.
func finishOrder(g *bibgraph.Graph, ids []bibgraph.ArticleID) []bibgraph.ArticleID {
	visited := make(map[bibgraph.ArticleID]bool, len(ids))
	finish := make([]bibgraph.ArticleID, 0, len(ids))
	var stack []dfsFrame

	for _, start := range ids {
		if visited[start] {
			continue
		}
		stack = append(stack[:0], dfsFrame{id: start})
		for len(stack) > 0 {
			frame := stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			if frame.expanded {
				finish = append(finish, frame.id)
				continue
			}
			if visited[frame.id] {
				continue
			}
			visited[frame.id] = true

			stack = append(stack, dfsFrame{id: frame.id, expanded: true})
			for neighbor := range g.Neighbors(frame.id) {
				if !visited[neighbor] {
					stack = append(stack, dfsFrame{id: neighbor})
				}
			}
		}
	}
	return finish
}

// collectComponent runs one DFS tree of the second pass over the
// transposed graph, gathering every node reachable from root.
func collectComponent(g *bibgraph.Graph, root bibgraph.ArticleID, visited map[bibgraph.ArticleID]bool) Component {
	var comp Component
	stack := []bibgraph.ArticleID{root}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[id] {
			continue
		}
		visited[id] = true
		comp = append(comp, id)

		for neighbor := range g.TransposedNeighbors(id) {
			if !visited[neighbor] {
				stack = append(stack, neighbor)
			}
		}
	}
	return comp
}
