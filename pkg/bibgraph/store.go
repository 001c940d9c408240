package bibgraph

import "sync"

// ArticleStore is an in-memory collection of articles keyed by id, used
// during ingestion before the graph is built. Adding a duplicate id
// overwrites the stored record and keeps its original position, so the
// iteration order of All stays stable across re-ingestion.
type ArticleStore struct {
	mu       sync.RWMutex
	articles map[ArticleID]*Article
	order    []ArticleID
}

// NewArticleStore creates an empty article store.
func NewArticleStore() *ArticleStore {
	return &ArticleStore{articles: make(map[ArticleID]*Article)}
}

// Add inserts or replaces an article.
func (s *ArticleStore) Add(a *Article) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.articles[a.ID]; !exists {
		s.order = append(s.order, a.ID)
	}
	s.articles[a.ID] = a
}

// Get returns the article for id.
func (s *ArticleStore) Get(id ArticleID) (*Article, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.articles[id]
	return a, ok
}

// Len returns the number of stored articles.
func (s *ArticleStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.articles)
}

// All returns the stored articles in insertion order.
func (s *ArticleStore) All() []*Article {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Article, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.articles[id])
	}
	return out
}

// BuildGraph creates a new graph with one node per stored article and no
// edges. Edge creation is the inference phase's job.
func (s *ArticleStore) BuildGraph() *Graph {
	g := New()
	for _, a := range s.All() {
		// AddNode cannot fail on an unfrozen graph.
		_ = g.AddNode(a)
	}
	return g
}
