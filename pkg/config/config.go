// Package config handles CiteGraph configuration.
//
// Configuration is loaded from environment variables (Docker/CI friendly)
// and optionally overridden by a YAML file. All variables are prefixed
// with CITEGRAPH_.
//
// Example Usage:
//
//	cfg := config.LoadFromEnv()
//	if path := os.Getenv("CITEGRAPH_CONFIG"); path != "" {
//		cfg, _ = config.LoadFile(path, cfg)
//	}
//	if err := cfg.Validate(); err != nil {
//		log.Fatalf("Invalid config: %v", err)
//	}
//
// Environment Variables:
//
//	CITEGRAPH_DATA_DIR           - Snapshot store directory (default ./data)
//	CITEGRAPH_THRESHOLD          - Similarity threshold for edges (default 0.7)
//	CITEGRAPH_MAX_COMPARISONS    - Candidate-pair cap, 0 = unlimited
//	CITEGRAPH_TEMPORAL_PRUNING   - Bucket candidates by year (default true)
//	CITEGRAPH_YEAR_WINDOW        - Pruning window in years (default 3)
//	CITEGRAPH_SAME_YEAR_DISCOUNT - Same-year edge weight factor (default 0.8)
//	CITEGRAPH_SEED               - Sampling seed (default 0)
//	CITEGRAPH_WORKERS            - Scoring goroutines (default 1)
//	CITEGRAPH_TOP_K              - Degree-ranking length in stats (default 10)
//	CITEGRAPH_WEIGHT_TITLE       - Combined-score weight, title (default 0.5)
//	CITEGRAPH_WEIGHT_AUTHORS     - Combined-score weight, authors (default 0.2)
//	CITEGRAPH_WEIGHT_KEYWORDS    - Combined-score weight, keywords (default 0.2)
//	CITEGRAPH_WEIGHT_ABSTRACT    - Combined-score weight, abstract (default 0.1)
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all CiteGraph settings.
type Config struct {
	// DataDir is the snapshot store directory used by the CLI.
	DataDir string `yaml:"data_dir"`

	// Inference settings. See the inference package for semantics.
	Threshold        float64 `yaml:"threshold"`
	MaxComparisons   int     `yaml:"max_comparisons"`
	TemporalPruning  bool    `yaml:"temporal_pruning"`
	YearWindow       int     `yaml:"year_window"`
	SameYearDiscount float64 `yaml:"same_year_discount"`
	Seed             int64   `yaml:"seed"`
	Workers          int     `yaml:"workers"`

	// TopK bounds the degree rankings in stats output.
	TopK int `yaml:"top_k"`

	// Similarity combination weights.
	Weights WeightsConfig `yaml:"weights"`
}

// WeightsConfig mirrors similarity.Weights for file/env loading.
type WeightsConfig struct {
	Title    float64 `yaml:"title"`
	Authors  float64 `yaml:"authors"`
	Keywords float64 `yaml:"keywords"`
	Abstract float64 `yaml:"abstract"`
}

// Default returns the reference configuration.
func Default() Config {
	return Config{
		DataDir:          "./data",
		Threshold:        0.7,
		TemporalPruning:  true,
		YearWindow:       3,
		SameYearDiscount: 0.8,
		Workers:          1,
		TopK:             10,
		Weights: WeightsConfig{
			Title:    0.5,
			Authors:  0.2,
			Keywords: 0.2,
			Abstract: 0.1,
		},
	}
}

// LoadFromEnv builds a Config from CITEGRAPH_* environment variables,
// falling back to Default for anything unset.
func LoadFromEnv() Config {
	def := Default()
	return Config{
		DataDir:          getEnv("CITEGRAPH_DATA_DIR", def.DataDir),
		Threshold:        getEnvFloat("CITEGRAPH_THRESHOLD", def.Threshold),
		MaxComparisons:   getEnvInt("CITEGRAPH_MAX_COMPARISONS", def.MaxComparisons),
		TemporalPruning:  getEnvBool("CITEGRAPH_TEMPORAL_PRUNING", def.TemporalPruning),
		YearWindow:       getEnvInt("CITEGRAPH_YEAR_WINDOW", def.YearWindow),
		SameYearDiscount: getEnvFloat("CITEGRAPH_SAME_YEAR_DISCOUNT", def.SameYearDiscount),
		Seed:             int64(getEnvInt("CITEGRAPH_SEED", int(def.Seed))),
		Workers:          getEnvInt("CITEGRAPH_WORKERS", def.Workers),
		TopK:             getEnvInt("CITEGRAPH_TOP_K", def.TopK),
		Weights: WeightsConfig{
			Title:    getEnvFloat("CITEGRAPH_WEIGHT_TITLE", def.Weights.Title),
			Authors:  getEnvFloat("CITEGRAPH_WEIGHT_AUTHORS", def.Weights.Authors),
			Keywords: getEnvFloat("CITEGRAPH_WEIGHT_KEYWORDS", def.Weights.Keywords),
			Abstract: getEnvFloat("CITEGRAPH_WEIGHT_ABSTRACT", def.Weights.Abstract),
		},
	}
}

// LoadFile overlays a YAML configuration file onto base. Fields absent
// from the file keep their base values.
func LoadFile(path string, base Config) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return base, fmt.Errorf("reading config file: %w", err)
	}
	cfg := base
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return base, fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks value ranges. Call before handing settings to the
// pipeline.
func (c Config) Validate() error {
	if c.Threshold < 0 || c.Threshold > 1 {
		return fmt.Errorf("threshold must be in [0, 1], got %g", c.Threshold)
	}
	if c.SameYearDiscount <= 0 || c.SameYearDiscount > 1 {
		return fmt.Errorf("same_year_discount must be in (0, 1], got %g", c.SameYearDiscount)
	}
	if c.YearWindow < 0 {
		return fmt.Errorf("year_window must be >= 0, got %d", c.YearWindow)
	}
	if c.MaxComparisons < 0 {
		return fmt.Errorf("max_comparisons must be >= 0, got %d", c.MaxComparisons)
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be >= 1, got %d", c.Workers)
	}
	if c.TopK < 1 {
		return fmt.Errorf("top_k must be >= 1, got %d", c.TopK)
	}
	if w := c.Weights; w.Title < 0 || w.Authors < 0 || w.Keywords < 0 || w.Abstract < 0 {
		return fmt.Errorf("similarity weights must be >= 0")
	} else if w.Title+w.Authors+w.Keywords+w.Abstract == 0 {
		return fmt.Errorf("similarity weights must not all be zero")
	}
	if c.DataDir == "" {
		return fmt.Errorf("data_dir must not be empty")
	}
	return nil
}

// Helper functions for environment variable parsing

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		val = strings.ToLower(val)
		return val == "true" || val == "1" || val == "yes" || val == "on"
	}
	return defaultVal
}
