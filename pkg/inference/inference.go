// Package inference decides which citation edges should exist.
//
// The inference phase walks candidate article pairs, scores each pair with
// a similarity.Scorer, and writes weighted directed edges into the graph
// according to a threshold and a publication-recency direction policy:
//
//   - score below threshold → no edge
//   - newer article → older article, weight = combined score
//   - equal years → both directions, weight = score × SameYearDiscount
//
// Inferred edges are a heuristic approximation of citation, not ground
// truth extracted from reference lists. The contract is determinism: the
// same node set, configuration, and seed always produce the same edge set,
// in sequential and parallel mode alike.
//
// Example Usage:
//
//	scorer := similarity.NewLexicalScorer(similarity.DefaultWeights())
//	inf := inference.New(scorer, inference.DefaultConfig())
//
//	count, err := inf.Run(ctx, graph)
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Printf("inferred %d citation relations\n", count)
package inference

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/orneryd/citegraph/pkg/bibgraph"
	"github.com/orneryd/citegraph/pkg/similarity"
)

// ProgressFunc observes inference progress. It is called with the number
// of candidate pairs scored so far and the total, roughly every 5%.
type ProgressFunc func(done, total int)

// Config controls candidate generation and the edge decision policy.
//
// The YearWindow and SameYearDiscount defaults come from the reference
// heuristics (±3 years, 0.8); both are tunable because neither has a
// principled derivation.
type Config struct {
	// Threshold is the minimum combined similarity for an edge.
	Threshold float64

	// MaxComparisons caps the candidate list by uniform random sampling
	// without replacement. 0 means unlimited. Sampling trades recall for
	// bounded runtime.
	MaxComparisons int

	// TemporalPruning buckets articles by publication year and only pairs
	// articles within YearWindow years of each other.
	TemporalPruning bool

	// YearWindow is the maximum year distance for candidate pairs under
	// temporal pruning.
	YearWindow int

	// SameYearDiscount scales the weight of the bidirectional edges
	// created for same-year pairs, where direction cannot be inferred
	// from recency.
	SameYearDiscount float64

	// Seed drives the sampling shuffle, for reproducible runs.
	Seed int64

	// Workers is the number of concurrent scoring goroutines. Scoring is
	// pure computation, so this is worth runtime.NumCPU() for large
	// corpora. Edges are always applied in candidate order by the calling
	// goroutine, so Workers never affects the result.
	Workers int

	// Progress, if set, observes scoring progress.
	Progress ProgressFunc
}

// DefaultConfig returns the reference inference configuration.
func DefaultConfig() Config {
	return Config{
		Threshold:        0.7,
		TemporalPruning:  true,
		YearWindow:       3,
		SameYearDiscount: 0.8,
		Workers:          1,
	}
}

// Inferrer writes inferred citation edges into a graph.
type Inferrer struct {
	scorer similarity.Scorer
	cfg    Config
}

// New creates an Inferrer. Out-of-range config fields are normalized to
// their defaults.
func New(scorer similarity.Scorer, cfg Config) *Inferrer {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if cfg.YearWindow < 0 {
		cfg.YearWindow = 0
	}
	if cfg.SameYearDiscount <= 0 || cfg.SameYearDiscount > 1 {
		cfg.SameYearDiscount = 0.8
	}
	return &Inferrer{scorer: scorer, cfg: cfg}
}

// pair is an unordered candidate pair. Both ids come from the sorted node
// list, so the pair list itself is deterministic.
type pair struct {
	a, b bibgraph.ArticleID
}

// Run infers citation relations and writes them into g. It returns the
// number of edges created. Fewer than two nodes is a valid degenerate
// input and yields zero relations, not an error.
//
// Scoring failures degrade to a zero score for the affected pair and the
// pass continues; structural errors (a frozen graph, an unknown node)
// abort immediately.
func (inf *Inferrer) Run(ctx context.Context, g *bibgraph.Graph) (int, error) {
	ids := g.NodeIDs()
	if len(ids) < 2 {
		return 0, nil
	}

	pairs := inf.candidates(g, ids)
	if max := inf.cfg.MaxComparisons; max > 0 && len(pairs) > max {
		rng := rand.New(rand.NewSource(inf.cfg.Seed))
		rng.Shuffle(len(pairs), func(i, j int) {
			pairs[i], pairs[j] = pairs[j], pairs[i]
		})
		pairs = pairs[:max]
	}
	if len(pairs) == 0 {
		return 0, nil
	}

	scores, err := inf.scoreAll(ctx, g, pairs)
	if err != nil {
		return 0, err
	}

	// Single writer: edges are applied here, in candidate order, so the
	// last-write-wins invariant holds deterministically regardless of
	// worker completion order.
	inferred := 0
	for i, p := range pairs {
		s := scores[i]
		if s <= 0 || s < inf.cfg.Threshold {
			continue
		}

		yearA := articleYear(g, p.a)
		yearB := articleYear(g, p.b)
		switch {
		case yearA > yearB:
			// The more recent article cites the older one.
			if err := g.AddEdge(p.a, p.b, s); err != nil {
				return inferred, fmt.Errorf("adding edge %s→%s: %w", p.a, p.b, err)
			}
			inferred++
		case yearB > yearA:
			if err := g.AddEdge(p.b, p.a, s); err != nil {
				return inferred, fmt.Errorf("adding edge %s→%s: %w", p.b, p.a, err)
			}
			inferred++
		default:
			// Same year: direction cannot be inferred from recency, so
			// relate both ways at a discounted weight.
			w := s * inf.cfg.SameYearDiscount
			if err := g.AddEdge(p.a, p.b, w); err != nil {
				return inferred, fmt.Errorf("adding edge %s→%s: %w", p.a, p.b, err)
			}
			if err := g.AddEdge(p.b, p.a, w); err != nil {
				return inferred, fmt.Errorf("adding edge %s→%s: %w", p.b, p.a, err)
			}
			inferred += 2
		}
	}
	return inferred, nil
}

// candidates generates the candidate pair list. With temporal pruning,
// articles are bucketed by year and paired within the same bucket plus
// across buckets at most YearWindow years apart; each unordered pair is
// generated exactly once. Without pruning, every unordered pair of
// distinct nodes is a candidate. Candidate generation never pairs a node
// with itself, so inference cannot create self-loops.
func (inf *Inferrer) candidates(g *bibgraph.Graph, ids []bibgraph.ArticleID) []pair {
	if !inf.cfg.TemporalPruning {
		pairs := make([]pair, 0, len(ids)*(len(ids)-1)/2)
		for i := 0; i < len(ids); i++ {
			for j := i + 1; j < len(ids); j++ {
				pairs = append(pairs, pair{ids[i], ids[j]})
			}
		}
		return pairs
	}

	buckets := make(map[int][]bibgraph.ArticleID)
	for _, id := range ids {
		year := articleYear(g, id)
		buckets[year] = append(buckets[year], id)
	}
	years := make([]int, 0, len(buckets))
	for year := range buckets {
		years = append(years, year)
	}
	sort.Ints(years)

	var pairs []pair
	for _, year := range years {
		bucket := buckets[year]
		for i := 0; i < len(bucket); i++ {
			for j := i + 1; j < len(bucket); j++ {
				pairs = append(pairs, pair{bucket[i], bucket[j]})
			}
		}
		// Cross-bucket pairs only look forward so each unordered pair
		// appears once.
		for dy := 1; dy <= inf.cfg.YearWindow; dy++ {
			near, ok := buckets[year+dy]
			if !ok {
				continue
			}
			for _, a := range bucket {
				for _, b := range near {
					pairs = append(pairs, pair{a, b})
				}
			}
		}
	}
	return pairs
}

// checkInterval is how often scoring loops poll for cancellation.
const checkInterval = 256

// scoreAll computes the combined similarity for every candidate pair,
// fanning out across Workers goroutines when configured. The scores slice
// is indexed by candidate position, so parallelism never reorders results.
func (inf *Inferrer) scoreAll(ctx context.Context, g *bibgraph.Graph, pairs []pair) ([]float64, error) {
	scores := make([]float64, len(pairs))
	progress := newProgressTracker(inf.cfg.Progress, len(pairs))

	workers := inf.cfg.Workers
	if workers > len(pairs) {
		workers = len(pairs)
	}
	if workers <= 1 {
		for i, p := range pairs {
			if i%checkInterval == 0 && ctx.Err() != nil {
				return nil, ctx.Err()
			}
			scores[i] = inf.scorePair(g, p)
			progress.add(1)
		}
		return scores, nil
	}

	grp, ctx := errgroup.WithContext(ctx)
	chunk := (len(pairs) + workers - 1) / workers
	for w := 0; w < workers; w++ {
		start := w * chunk
		end := start + chunk
		if end > len(pairs) {
			end = len(pairs)
		}
		if start >= end {
			break
		}
		grp.Go(func() error {
			for i := start; i < end; i++ {
				if (i-start)%checkInterval == 0 && ctx.Err() != nil {
					return ctx.Err()
				}
				scores[i] = inf.scorePair(g, pairs[i])
				progress.add(1)
			}
			return nil
		})
	}
	if err := grp.Wait(); err != nil {
		return nil, err
	}
	return scores, nil
}

// scorePair returns the combined similarity for one pair. A scoring
// failure counts as zero similarity so one bad pair cannot abort the pass.
func (inf *Inferrer) scorePair(g *bibgraph.Graph, p pair) float64 {
	a, okA := g.Article(p.a)
	b, okB := g.Article(p.b)
	if !okA || !okB {
		return 0
	}
	sc, err := inf.scorer.Score(a, b)
	if err != nil {
		return 0
	}
	if sc.Combined < 0 {
		return 0
	}
	if sc.Combined > 1 {
		return 1
	}
	return sc.Combined
}

func articleYear(g *bibgraph.Graph, id bibgraph.ArticleID) int {
	if a, ok := g.Article(id); ok {
		return a.Year
	}
	return 0
}

// progressTracker throttles progress callbacks to 5% steps. Safe for
// concurrent use by scoring workers.
type progressTracker struct {
	mu    sync.Mutex
	fn    ProgressFunc
	done  int
	total int
	last  int // last reported 5%-step
}

func newProgressTracker(fn ProgressFunc, total int) *progressTracker {
	return &progressTracker{fn: fn, total: total, last: -1}
}

func (t *progressTracker) add(n int) {
	if t.fn == nil {
		return
	}
	t.mu.Lock()
	t.done += n
	step := t.done * 100 / t.total / 5
	report := step > t.last || t.done == t.total
	if report {
		t.last = step
	}
	done, total := t.done, t.total
	t.mu.Unlock()

	if report {
		t.fn(done, total)
	}
}
