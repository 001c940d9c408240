// Package store persists a built citation graph between CLI invocations.
//
// The store is an external collaborator of the core: the graph itself is
// purely in-memory, and the pipeline works without any store at all. The
// CLI uses one so `citegraph build`, `citegraph infer`, and the analysis
// commands can run as separate processes over the same corpus.
//
// Storage layout (BadgerDB):
//   - 0x01 + articleID            → JSON(Article), full record incl. abstract
//   - 0x02 + source + 0x00 + dest → JSON(float64 weight)
//
// The full article record is stored (unlike the JSON export, which strips
// abstracts and keywords) because inference needs the text fields when it
// runs in a later process.
package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"github.com/orneryd/citegraph/pkg/bibgraph"
)

// Key prefixes. Single bytes keep keys short; 0x00 separates the two ids
// in an edge key, which is safe because article ids are text.
const (
	prefixArticle = byte(0x01)
	prefixEdge    = byte(0x02)
	keySeparator  = byte(0x00)
)

// ErrNoSnapshot reports a load from a store that holds no articles, i.e.
// `citegraph build` has not run against this data directory.
var ErrNoSnapshot = errors.New("no graph snapshot in store")

// Store is a Badger-backed graph snapshot store.
type Store struct {
	db *badger.DB
}

// Open opens (creating if needed) the snapshot store in dir.
func Open(dir string) (*Store, error) {
	return open(badger.DefaultOptions(dir))
}

// OpenInMemory opens a non-persistent store. Useful for tests that need
// store semantics without disk I/O.
func OpenInMemory() (*Store, error) {
	return open(badger.DefaultOptions("").WithInMemory(true))
}

func open(opts badger.Options) (*Store, error) {
	// Quiet logger; badger's default chatters on stderr.
	opts = opts.WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("opening snapshot store: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveArticles writes the node set, replacing any articles already stored
// under the same ids. Edges are untouched.
func (s *Store) SaveArticles(articles []*bibgraph.Article) error {
	wb := s.db.NewWriteBatch()
	defer wb.Cancel()

	for _, a := range articles {
		data, err := json.Marshal(a)
		if err != nil {
			return fmt.Errorf("encoding article %s: %w", a.ID, err)
		}
		if err := wb.Set(articleKey(a.ID), data); err != nil {
			return fmt.Errorf("writing article %s: %w", a.ID, err)
		}
	}
	return wb.Flush()
}

// SaveEdges replaces the stored edge set with the edges of g.
func (s *Store) SaveEdges(g *bibgraph.Graph) error {
	if err := s.dropPrefix(prefixEdge); err != nil {
		return err
	}

	wb := s.db.NewWriteBatch()
	defer wb.Cancel()

	for _, source := range g.NodeIDs() {
		for target, weight := range g.Neighbors(source) {
			data, err := json.Marshal(weight)
			if err != nil {
				return fmt.Errorf("encoding edge weight: %w", err)
			}
			if err := wb.Set(edgeKey(source, target), data); err != nil {
				return fmt.Errorf("writing edge %s→%s: %w", source, target, err)
			}
		}
	}
	return wb.Flush()
}

// LoadGraph reads the stored snapshot into a fresh, unfrozen graph.
// Returns ErrNoSnapshot when no articles are stored.
func (s *Store) LoadGraph() (*bibgraph.Graph, error) {
	g := bibgraph.New()

	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte{prefixArticle}
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var a bibgraph.Article
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &a)
			}); err != nil {
				return fmt.Errorf("decoding article %q: %w", it.Item().Key(), err)
			}
			if err := g.AddNode(&a); err != nil {
				return err
			}
		}

		prefix = []byte{prefixEdge}
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			source, target, err := splitEdgeKey(it.Item().Key())
			if err != nil {
				return err
			}
			var weight float64
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &weight)
			}); err != nil {
				return fmt.Errorf("decoding edge %s→%s: %w", source, target, err)
			}
			if err := g.AddEdge(source, target, weight); err != nil {
				return fmt.Errorf("restoring edge %s→%s: %w", source, target, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if g.NodeCount() == 0 {
		return nil, ErrNoSnapshot
	}
	return g, nil
}

func (s *Store) dropPrefix(prefix byte) error {
	return s.db.DropPrefix([]byte{prefix})
}

func articleKey(id bibgraph.ArticleID) []byte {
	return append([]byte{prefixArticle}, []byte(id)...)
}

func edgeKey(source, target bibgraph.ArticleID) []byte {
	key := make([]byte, 0, 2+len(source)+len(target))
	key = append(key, prefixEdge)
	key = append(key, []byte(source)...)
	key = append(key, keySeparator)
	key = append(key, []byte(target)...)
	return key
}

func splitEdgeKey(key []byte) (source, target bibgraph.ArticleID, err error) {
	if len(key) < 2 || key[0] != prefixEdge {
		return "", "", fmt.Errorf("malformed edge key %q", key)
	}
	rest := key[1:]
	sep := bytes.IndexByte(rest, keySeparator)
	if sep < 0 {
		return "", "", fmt.Errorf("malformed edge key %q", key)
	}
	return bibgraph.ArticleID(rest[:sep]), bibgraph.ArticleID(rest[sep+1:]), nil
}
