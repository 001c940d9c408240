// Package main provides the CiteGraph CLI entry point.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/orneryd/citegraph/pkg/bibgraph"
	"github.com/orneryd/citegraph/pkg/components"
	"github.com/orneryd/citegraph/pkg/config"
	"github.com/orneryd/citegraph/pkg/inference"
	"github.com/orneryd/citegraph/pkg/pathfind"
	"github.com/orneryd/citegraph/pkg/similarity"
	"github.com/orneryd/citegraph/pkg/stats"
	"github.com/orneryd/citegraph/pkg/store"
)

var (
	version = "0.1.0"
	commit  = "dev"
)

func main() {
	cfg := config.LoadFromEnv()

	rootCmd := &cobra.Command{
		Use:   "citegraph",
		Short: "CiteGraph - Citation graph builder for scientific corpora",
		Long: `CiteGraph builds a weighted directed citation graph from a corpus of
bibliographic records and runs classical graph analyses over it.

Edges are inferred from pairwise article similarity with temporal
pruning; they approximate citation, they are not extracted from
reference lists.

Pipeline:
  citegraph build --records articles.json   # ingest records
  citegraph infer --threshold 0.7           # infer citation edges
  citegraph stats                           # degree/density/SCC summary
  citegraph path smith2020 jones2018        # similarity-weighted shortest path
  citegraph export --out graph.json         # snapshot for visualization`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if path, _ := cmd.Flags().GetString("config"); path != "" {
				var err error
				if cfg, err = config.LoadFile(path, cfg); err != nil {
					return err
				}
			}
			if dir, _ := cmd.Flags().GetString("data-dir"); cmd.Flags().Changed("data-dir") {
				cfg.DataDir = dir
			}
			return cfg.Validate()
		},
	}
	rootCmd.PersistentFlags().String("data-dir", cfg.DataDir, "Snapshot store directory")
	rootCmd.PersistentFlags().String("config", "", "YAML config file")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("CiteGraph v%s (%s)\n", version, commit)
		},
	})

	buildCmd := &cobra.Command{
		Use:   "build",
		Short: "Ingest bibliographic records into the snapshot store",
		RunE: func(cmd *cobra.Command, args []string) error {
			recordsPath, _ := cmd.Flags().GetString("records")
			return runBuild(cfg, recordsPath)
		},
	}
	buildCmd.Flags().String("records", "", "JSON file with an array of article records")
	_ = buildCmd.MarkFlagRequired("records")
	rootCmd.AddCommand(buildCmd)

	inferCmd := &cobra.Command{
		Use:   "infer",
		Short: "Infer citation edges from article similarity",
		RunE: func(cmd *cobra.Command, args []string) error {
			overrideFloat(cmd, "threshold", &cfg.Threshold)
			overrideInt(cmd, "max-comparisons", &cfg.MaxComparisons)
			overrideBool(cmd, "temporal-pruning", &cfg.TemporalPruning)
			overrideInt(cmd, "year-window", &cfg.YearWindow)
			overrideInt(cmd, "workers", &cfg.Workers)
			if cmd.Flags().Changed("seed") {
				seed, _ := cmd.Flags().GetInt64("seed")
				cfg.Seed = seed
			}
			return runInfer(cmd.Context(), cfg)
		},
	}
	inferCmd.Flags().Float64("threshold", cfg.Threshold, "Minimum combined similarity for an edge")
	inferCmd.Flags().Int("max-comparisons", cfg.MaxComparisons, "Cap on candidate pairs, 0 = unlimited")
	inferCmd.Flags().Bool("temporal-pruning", cfg.TemporalPruning, "Only compare articles with nearby publication years")
	inferCmd.Flags().Int("year-window", cfg.YearWindow, "Temporal pruning window in years")
	inferCmd.Flags().Int64("seed", cfg.Seed, "Random seed for candidate sampling")
	inferCmd.Flags().Int("workers", cfg.Workers, "Concurrent scoring goroutines")
	rootCmd.AddCommand(inferCmd)

	pathCmd := &cobra.Command{
		Use:   "path SOURCE TARGET",
		Short: "Similarity-weighted shortest path between two articles",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPath(cfg, bibgraph.ArticleID(args[0]), bibgraph.ArticleID(args[1]))
		},
	}
	rootCmd.AddCommand(pathCmd)

	componentsCmd := &cobra.Command{
		Use:   "components",
		Short: "List strongly connected components",
		RunE: func(cmd *cobra.Command, args []string) error {
			minSize, _ := cmd.Flags().GetInt("min-size")
			return runComponents(cfg, minSize)
		},
	}
	componentsCmd.Flags().Int("min-size", 1, "Only list components with at least this many articles")
	rootCmd.AddCommand(componentsCmd)

	statsCmd := &cobra.Command{
		Use:   "stats",
		Short: "Print graph statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			overrideInt(cmd, "top-k", &cfg.TopK)
			return runStats(cfg)
		},
	}
	statsCmd.Flags().Int("top-k", cfg.TopK, "Length of the degree rankings")
	rootCmd.AddCommand(statsCmd)

	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Write the graph snapshot as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			out, _ := cmd.Flags().GetString("out")
			return runExport(cfg, out)
		},
	}
	exportCmd.Flags().String("out", "graph.json", "Output file")
	rootCmd.AddCommand(exportCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func overrideFloat(cmd *cobra.Command, name string, dst *float64) {
	if cmd.Flags().Changed(name) {
		*dst, _ = cmd.Flags().GetFloat64(name)
	}
}

func overrideInt(cmd *cobra.Command, name string, dst *int) {
	if cmd.Flags().Changed(name) {
		*dst, _ = cmd.Flags().GetInt(name)
	}
}

func overrideBool(cmd *cobra.Command, name string, dst *bool) {
	if cmd.Flags().Changed(name) {
		*dst, _ = cmd.Flags().GetBool(name)
	}
}

func runBuild(cfg config.Config, recordsPath string) error {
	articles, err := loadRecords(recordsPath)
	if err != nil {
		return err
	}

	st := bibgraph.NewArticleStore()
	for _, a := range articles {
		st.Add(a)
	}

	snap, err := store.Open(cfg.DataDir)
	if err != nil {
		return err
	}
	defer snap.Close()

	if err := snap.SaveArticles(st.All()); err != nil {
		return err
	}
	fmt.Printf("Loaded %d articles from %s (%d unique)\n", len(articles), recordsPath, st.Len())
	return nil
}

func runInfer(ctx context.Context, cfg config.Config) error {
	snap, err := store.Open(cfg.DataDir)
	if err != nil {
		return err
	}
	defer snap.Close()

	g, err := snap.LoadGraph()
	if err != nil {
		return describeNoSnapshot(err)
	}

	scorer := similarity.NewLexicalScorer(similarity.Weights{
		Title:    cfg.Weights.Title,
		Authors:  cfg.Weights.Authors,
		Keywords: cfg.Weights.Keywords,
		Abstract: cfg.Weights.Abstract,
	})
	inf := inference.New(scorer, inference.Config{
		Threshold:        cfg.Threshold,
		MaxComparisons:   cfg.MaxComparisons,
		TemporalPruning:  cfg.TemporalPruning,
		YearWindow:       cfg.YearWindow,
		SameYearDiscount: cfg.SameYearDiscount,
		Seed:             cfg.Seed,
		Workers:          cfg.Workers,
		Progress: func(done, total int) {
			fmt.Printf("   progress: %d%% (%d/%d)\n", done*100/total, done, total)
		},
	})

	count, err := inf.Run(ctx, g)
	if err != nil {
		return err
	}
	g.Freeze()

	if err := snap.SaveEdges(g); err != nil {
		return err
	}
	fmt.Printf("Inferred %d citation relations (%d nodes, %d edges)\n",
		count, g.NodeCount(), g.EdgeCount())
	return nil
}

func runPath(cfg config.Config, source, target bibgraph.ArticleID) error {
	g, cleanup, err := loadFrozenGraph(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	result, err := pathfind.ShortestPath(g, source, target)
	if err != nil {
		return err
	}
	if !result.Reachable() {
		fmt.Printf("No path from %s to %s\n", source, target)
		return nil
	}

	hops := make([]string, len(result.Path))
	for i, id := range result.Path {
		hops[i] = string(id)
	}
	fmt.Printf("Cost %.4f: %s\n", result.Cost, strings.Join(hops, " → "))
	return nil
}

func runComponents(cfg config.Config, minSize int) error {
	g, cleanup, err := loadFrozenGraph(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	comps := components.Analyze(g)
	count, largest := components.Summary(comps)
	fmt.Printf("%d strongly connected components (largest: %d)\n", count, largest)

	for i, comp := range comps {
		if len(comp) < minSize {
			continue
		}
		ids := make([]string, len(comp))
		for j, id := range comp {
			ids[j] = string(id)
		}
		fmt.Printf("  [%d] %s\n", i+1, strings.Join(ids, ", "))
	}
	return nil
}

func runStats(cfg config.Config) error {
	g, cleanup, err := loadFrozenGraph(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	report := stats.Collect(g, cfg.TopK)
	fmt.Printf("Nodes:              %d\n", report.Nodes)
	fmt.Printf("Edges:              %d\n", report.Edges)
	fmt.Printf("Density:            %.6f\n", report.Density)
	fmt.Printf("Components:         %d\n", report.Components)
	fmt.Printf("Largest component:  %d\n", report.LargestComponent)
	fmt.Println("Most cited:")
	for _, e := range report.MostCited {
		fmt.Printf("  %-30s %d\n", e.ID, e.Degree)
	}
	fmt.Println("Most citing:")
	for _, e := range report.MostCiting {
		fmt.Printf("  %-30s %d\n", e.ID, e.Degree)
	}
	return nil
}

func runExport(cfg config.Config, out string) error {
	g, cleanup, err := loadFrozenGraph(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("creating %s: %w", out, err)
	}
	defer f.Close()

	if err := g.Snapshot().WriteJSON(f); err != nil {
		return fmt.Errorf("writing %s: %w", out, err)
	}
	fmt.Printf("Exported %d nodes and %d edges to %s\n", g.NodeCount(), g.EdgeCount(), out)
	return nil
}

// loadFrozenGraph opens the snapshot store, loads the graph, and freezes
// it for the read-only analysis commands.
func loadFrozenGraph(cfg config.Config) (*bibgraph.Graph, func(), error) {
	snap, err := store.Open(cfg.DataDir)
	if err != nil {
		return nil, nil, err
	}
	g, err := snap.LoadGraph()
	if err != nil {
		snap.Close()
		return nil, nil, describeNoSnapshot(err)
	}
	g.Freeze()
	return g, func() { snap.Close() }, nil
}

func describeNoSnapshot(err error) error {
	if errors.Is(err, store.ErrNoSnapshot) {
		return fmt.Errorf("%w; run `citegraph build` first", err)
	}
	return err
}

// record is the ingestion shape for one article. The authors field takes
// either a JSON array of names or a raw BibTeX-style "A and B" string;
// year takes a number or a numeric string (unparseable years become 0).
type record struct {
	ID       string    `json:"id"`
	Title    string    `json:"title"`
	Authors  []string  `json:"authors"`
	Author   string    `json:"author"`
	Year     flexYear  `json:"year"`
	Journal  string    `json:"journal"`
	Abstract string    `json:"abstract"`
	Keywords string    `json:"keywords"`
	DOI      string    `json:"doi"`
}

type flexYear int

func (y *flexYear) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*y = 0
		return nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		*y = 0
		return nil
	}
	*y = flexYear(n)
	return nil
}

func loadRecords(path string) ([]*bibgraph.Article, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading records: %w", err)
	}
	var records []record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parsing records %s: %w", path, err)
	}

	articles := make([]*bibgraph.Article, 0, len(records))
	skipped := 0
	for _, r := range records {
		if r.ID == "" {
			skipped++
			continue
		}
		authors := r.Authors
		if len(authors) == 0 && r.Author != "" {
			authors = bibgraph.SplitAuthors(r.Author)
		}
		articles = append(articles, &bibgraph.Article{
			ID:       bibgraph.ArticleID(r.ID),
			Title:    r.Title,
			Authors:  authors,
			Year:     int(r.Year),
			Journal:  r.Journal,
			Abstract: r.Abstract,
			Keywords: r.Keywords,
			DOI:      r.DOI,
		})
	}
	if skipped > 0 {
		fmt.Printf("Skipped %d records without an id\n", skipped)
	}
	return articles, nil
}
