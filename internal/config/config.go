// Package config loads and validates the tunables that govern hybrid
// search: BM25 scoring constants, fusion weights, cache sizing, rerank
// batching, and MMR diversification.
package config

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the complete search-core configuration.
type Config struct {
	BM25    BM25Config    `yaml:"bm25" json:"bm25"`
	Fusion  FusionConfig  `yaml:"fusion" json:"fusion"`
	Rerank  RerankConfig  `yaml:"rerank" json:"rerank"`
	Diverse DiverseConfig `yaml:"diversify" json:"diversify"`
	Cache   CacheConfig   `yaml:"cache" json:"cache"`
	Search  SearchConfig  `yaml:"search" json:"search"`
}

// BM25Config configures the lexical index's scoring constants.
type BM25Config struct {
	// K1 controls term-frequency saturation (default: 1.5).
	K1 float64 `yaml:"k1" json:"k1"`

	// B controls document-length normalization strength (default: 0.75).
	B float64 `yaml:"b" json:"b"`
}

// FusionConfig configures score fusion across BM25 and vector results.
type FusionConfig struct {
	// RRFConstant is the reciprocal-rank-fusion smoothing parameter (k).
	// Default: 60, the value used by Azure AI Search and OpenSearch.
	RRFConstant int `yaml:"rrf_constant" json:"rrf_constant"`

	// BM25Weight is the weight given to BM25 rank in weighted-score fusion.
	BM25Weight float64 `yaml:"bm25_weight" json:"bm25_weight"`

	// VectorWeight is the weight given to vector rank in weighted-score fusion.
	VectorWeight float64 `yaml:"vector_weight" json:"vector_weight"`
}

// RerankConfig configures cross-encoder reranking.
type RerankConfig struct {
	// Enabled turns on cross-encoder reranking of fused candidates.
	Enabled bool `yaml:"enabled" json:"enabled"`

	// BatchSize is the number of candidate pairs sent to the cross-encoder per call.
	BatchSize int `yaml:"batch_size" json:"batch_size"`

	// CandidateMultiplier controls how many fused candidates (relative to
	// the requested result count) are passed into reranking.
	CandidateMultiplier int `yaml:"candidate_multiplier" json:"candidate_multiplier"`

	// TokenBudget caps how many whitespace-separated words of each
	// document are sent to the cross-encoder; the query is not truncated.
	TokenBudget int `yaml:"token_budget" json:"token_budget"`
}

// DiverseConfig configures MMR diversification of the final ranking.
type DiverseConfig struct {
	// Enabled turns on MMR diversification after reranking.
	Enabled bool `yaml:"enabled" json:"enabled"`

	// Lambda trades off relevance (1.0) against diversity (0.0).
	Lambda float64 `yaml:"lambda" json:"lambda"`
}

// CacheConfig configures the capacities and TTLs of the three named caches.
type CacheConfig struct {
	EmbeddingCacheSize int           `yaml:"embedding_cache_size" json:"embedding_cache_size"`
	EmbeddingCacheTTL  time.Duration `yaml:"embedding_cache_ttl" json:"embedding_cache_ttl"`

	QueryCacheSize int           `yaml:"query_cache_size" json:"query_cache_size"`
	QueryCacheTTL  time.Duration `yaml:"query_cache_ttl" json:"query_cache_ttl"`

	PairScoreCacheSize int           `yaml:"pair_score_cache_size" json:"pair_score_cache_size"`
	PairScoreCacheTTL  time.Duration `yaml:"pair_score_cache_ttl" json:"pair_score_cache_ttl"`
}

// SearchConfig configures orchestrator-level behavior.
type SearchConfig struct {
	// Timeout is the configured bound for an end-to-end Search call. It
	// is loaded and validated here; the orchestrator does not read it, so
	// it takes effect only through the context a caller passes to Search.
	Timeout time.Duration `yaml:"timeout" json:"timeout"`

	// DefaultTopK is a default result count for callers. SearchOptions
	// has no result-count field; Search takes nResults as an argument and
	// does not read this value.
	DefaultTopK int `yaml:"default_top_k" json:"default_top_k"`
}

// DefaultConfig returns the recommended tunables, matching the
// defaults named throughout the spec's testable properties.
func DefaultConfig() *Config {
	return &Config{
		BM25: BM25Config{
			K1: 1.5,
			B:  0.75,
		},
		Fusion: FusionConfig{
			RRFConstant:  60,
			BM25Weight:   0.5,
			VectorWeight: 0.5,
		},
		Rerank: RerankConfig{
			Enabled:             true,
			BatchSize:           32,
			CandidateMultiplier: 4,
			TokenBudget:         512,
		},
		Diverse: DiverseConfig{
			Enabled: false,
			Lambda:  0.5,
		},
		Cache: CacheConfig{
			EmbeddingCacheSize: 5_000,
			EmbeddingCacheTTL:  1 * time.Hour,
			QueryCacheSize:     100,
			QueryCacheTTL:      30 * time.Minute,
			PairScoreCacheSize: 10_000,
			PairScoreCacheTTL:  1 * time.Hour,
		},
		Search: SearchConfig{
			Timeout:     10 * time.Second,
			DefaultTopK: 10,
		},
	}
}

// Load builds a Config from defaults, an optional YAML file in dir
// (hybridsearch.yaml or hybridsearch.yml), and environment variable
// overrides, in that order of increasing precedence.
func Load(dir string) (*Config, error) {
	cfg := DefaultConfig()

	if err := cfg.loadFromFile(dir); err != nil {
		return nil, err
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// loadFromFile attempts to load configuration from hybridsearch.yaml or
// hybridsearch.yml in dir. Absence of either file is not an error.
func (c *Config) loadFromFile(dir string) error {
	yamlPath := filepath.Join(dir, "hybridsearch.yaml")
	if _, err := os.Stat(yamlPath); err == nil {
		return c.loadYAML(yamlPath)
	}

	ymlPath := filepath.Join(dir, "hybridsearch.yml")
	if _, err := os.Stat(ymlPath); err == nil {
		return c.loadYAML(ymlPath)
	}

	return nil
}

// loadYAML loads and merges configuration from a YAML file.
func (c *Config) loadYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var parsed Config
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	c.mergeWith(&parsed)
	return nil
}

// mergeWith merges non-zero values from other into c. Rerank.Enabled
// and Diverse.Enabled are the exception: they are always copied from
// other, so a file that omits them leaves both false.
func (c *Config) mergeWith(other *Config) {
	if other.BM25.K1 != 0 {
		c.BM25.K1 = other.BM25.K1
	}
	if other.BM25.B != 0 {
		c.BM25.B = other.BM25.B
	}

	if other.Fusion.RRFConstant != 0 {
		c.Fusion.RRFConstant = other.Fusion.RRFConstant
	}
	if other.Fusion.BM25Weight != 0 {
		c.Fusion.BM25Weight = other.Fusion.BM25Weight
	}
	if other.Fusion.VectorWeight != 0 {
		c.Fusion.VectorWeight = other.Fusion.VectorWeight
	}

	c.Rerank.Enabled = other.Rerank.Enabled
	if other.Rerank.BatchSize != 0 {
		c.Rerank.BatchSize = other.Rerank.BatchSize
	}
	if other.Rerank.CandidateMultiplier != 0 {
		c.Rerank.CandidateMultiplier = other.Rerank.CandidateMultiplier
	}
	if other.Rerank.TokenBudget != 0 {
		c.Rerank.TokenBudget = other.Rerank.TokenBudget
	}

	c.Diverse.Enabled = other.Diverse.Enabled
	if other.Diverse.Lambda != 0 {
		c.Diverse.Lambda = other.Diverse.Lambda
	}

	if other.Cache.EmbeddingCacheSize != 0 {
		c.Cache.EmbeddingCacheSize = other.Cache.EmbeddingCacheSize
	}
	if other.Cache.EmbeddingCacheTTL != 0 {
		c.Cache.EmbeddingCacheTTL = other.Cache.EmbeddingCacheTTL
	}
	if other.Cache.QueryCacheSize != 0 {
		c.Cache.QueryCacheSize = other.Cache.QueryCacheSize
	}
	if other.Cache.QueryCacheTTL != 0 {
		c.Cache.QueryCacheTTL = other.Cache.QueryCacheTTL
	}
	if other.Cache.PairScoreCacheSize != 0 {
		c.Cache.PairScoreCacheSize = other.Cache.PairScoreCacheSize
	}
	if other.Cache.PairScoreCacheTTL != 0 {
		c.Cache.PairScoreCacheTTL = other.Cache.PairScoreCacheTTL
	}

	if other.Search.Timeout != 0 {
		c.Search.Timeout = other.Search.Timeout
	}
	if other.Search.DefaultTopK != 0 {
		c.Search.DefaultTopK = other.Search.DefaultTopK
	}
}

// applyEnvOverrides applies HYBRIDSEARCH_* environment variables, the
// highest-precedence configuration source.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("HYBRIDSEARCH_BM25_K1"); v != "" {
		if f, err := parseFloat64(v); err == nil && f > 0 {
			c.BM25.K1 = f
		}
	}
	if v := os.Getenv("HYBRIDSEARCH_BM25_B"); v != "" {
		if f, err := parseFloat64(v); err == nil && f >= 0 && f <= 1 {
			c.BM25.B = f
		}
	}
	if v := os.Getenv("HYBRIDSEARCH_RRF_CONSTANT"); v != "" {
		if k, err := strconv.Atoi(v); err == nil && k > 0 {
			c.Fusion.RRFConstant = k
		}
	}
	if v := os.Getenv("HYBRIDSEARCH_RERANK_ENABLED"); v != "" {
		c.Rerank.Enabled = strings.ToLower(v) == "true" || v == "1"
	}
	if v := os.Getenv("HYBRIDSEARCH_MMR_LAMBDA"); v != "" {
		if f, err := parseFloat64(v); err == nil && f >= 0 && f <= 1 {
			c.Diverse.Lambda = f
		}
	}
	if v := os.Getenv("HYBRIDSEARCH_SEARCH_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.Search.Timeout = d
		}
	}
}

// parseFloat64 parses a string to float64 for config parsing.
func parseFloat64(s string) (float64, error) {
	var f float64
	_, err := fmt.Sscanf(strings.TrimSpace(s), "%f", &f)
	return f, err
}

// Validate checks the configuration for internally consistent values.
func (c *Config) Validate() error {
	if c.BM25.K1 <= 0 {
		return fmt.Errorf("bm25.k1 must be positive, got %f", c.BM25.K1)
	}
	if c.BM25.B < 0 || c.BM25.B > 1 {
		return fmt.Errorf("bm25.b must be between 0 and 1, got %f", c.BM25.B)
	}

	if c.Fusion.RRFConstant <= 0 {
		return fmt.Errorf("fusion.rrf_constant must be positive, got %d", c.Fusion.RRFConstant)
	}
	sum := c.Fusion.BM25Weight + c.Fusion.VectorWeight
	if math.Abs(sum-1.0) > 0.01 {
		return fmt.Errorf("fusion.bm25_weight + fusion.vector_weight must equal 1.0, got %.2f", sum)
	}

	if c.Rerank.BatchSize <= 0 {
		return fmt.Errorf("rerank.batch_size must be positive, got %d", c.Rerank.BatchSize)
	}
	if c.Rerank.CandidateMultiplier <= 0 {
		return fmt.Errorf("rerank.candidate_multiplier must be positive, got %d", c.Rerank.CandidateMultiplier)
	}

	if c.Diverse.Lambda < 0 || c.Diverse.Lambda > 1 {
		return fmt.Errorf("diversify.lambda must be between 0 and 1, got %f", c.Diverse.Lambda)
	}

	if c.Cache.EmbeddingCacheSize < 0 || c.Cache.QueryCacheSize < 0 || c.Cache.PairScoreCacheSize < 0 {
		return fmt.Errorf("cache sizes must be non-negative")
	}

	if c.Search.Timeout <= 0 {
		return fmt.Errorf("search.timeout must be positive, got %s", c.Search.Timeout)
	}
	if c.Search.DefaultTopK <= 0 {
		return fmt.Errorf("search.default_top_k must be positive, got %d", c.Search.DefaultTopK)
	}

	return nil
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
