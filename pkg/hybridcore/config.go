package hybridcore

import (
	"github.com/opendocs-search/hybridcore/internal/cache"
	"github.com/opendocs-search/hybridcore/internal/config"
	"github.com/opendocs-search/hybridcore/internal/expand"
	"github.com/opendocs-search/hybridcore/internal/rerank"
)

// NewFromConfig builds a SearchOrchestrator wiring cfg's BM25
// constants and its embedding and semantic query cache sizes/TTLs
// before applying any caller-supplied opts, so opts can still override
// a config-derived default. Rerank settings are not applied here; pass
// RerankerOptionsFromConfig(cfg) to WithReranker for those.
func NewFromConfig(vector VectorBackend, embedder EmbeddingModel, cfg *config.Config, opts ...Option) (*SearchOrchestrator, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	configOpts := []Option{
		WithBM25Constants(cfg.BM25.K1, cfg.BM25.B),
		WithEmbeddingCache(cache.NewEmbeddingCache(cfg.Cache.EmbeddingCacheSize, cfg.Cache.EmbeddingCacheTTL)),
		WithSemanticCache(cache.NewSemanticQueryCache[cachedSearch](cfg.Cache.QueryCacheSize, cfg.Cache.QueryCacheTTL, cache.DefaultSemanticSimilarityThreshold)),
	}
	configOpts = append(configOpts, opts...)

	return New(vector, embedder, configOpts...)
}

// RerankerOptionsFromConfig derives rerank.Options from cfg's rerank
// section, for callers building their own reranker via WithReranker.
func RerankerOptionsFromConfig(cfg *config.Config) []rerank.Option {
	return []rerank.Option{
		rerank.WithBatchSize(cfg.Rerank.BatchSize),
		rerank.WithTokenBudget(cfg.Rerank.TokenBudget),
		rerank.WithPairScoreCache(cache.NewPairScoreCache(cfg.Cache.PairScoreCacheSize, cfg.Cache.PairScoreCacheTTL)),
	}
}

// DefaultSearchOptions builds SearchOptions reflecting cfg's rerank
// and diversify sections: reranking or diversification is requested
// only when cfg enables it.
func DefaultSearchOptions(cfg *config.Config) SearchOptions {
	mode := ModeHybrid
	if cfg.Rerank.Enabled {
		mode = ModeReranked
	}
	return SearchOptions{
		Mode:                      mode,
		ExpansionStrategy:         expand.StrategyAuto,
		UseDiversification:        cfg.Diverse.Enabled,
		DiversificationLambda:     cfg.Diverse.Lambda,
		RerankCandidateMultiplier: cfg.Rerank.CandidateMultiplier,
	}
}
