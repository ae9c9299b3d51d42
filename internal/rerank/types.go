// Package rerank implements cross-encoder pair rescoring over a
// fused candidate list: cached pair lookups, batched model calls,
// token-budget truncation, and a circuit-breaker-gated degraded
// fallback to the input order when the model is unavailable.
package rerank

import "context"

// DefaultBatchSize and DefaultTokenBudget are the cross-encoder
// reranker's defaults; the pair-score cache's defaults live in
// internal/cache.
const (
	DefaultBatchSize   = 32
	DefaultTokenBudget = 512
)

// Pair is one (query, content) pair submitted to a CrossEncoderModel.
type Pair struct {
	Query   string
	Content string
}

// Model is the capability interface for an external cross-encoder.
// ScorePairs must be deterministic for identical input: same pairs in,
// same scores out.
type Model interface {
	ScorePairs(ctx context.Context, pairs []Pair) ([]float64, error)
	MaxPairLength() int
	ModelID() string
}

// Candidate is one pre-rerank ranked hit.
type Candidate struct {
	DocID        string
	Content      string
	Metadata     map[string]any
	Score        float64
	OriginalRank int
}

// Result is one reranked hit: Score is the cross-encoder's pair
// score, RerankRank is its 1-based position in the reranked output,
// and OriginalRank is carried through from the input.
type Result struct {
	DocID        string
	Content      string
	Metadata     map[string]any
	Score        float64
	OriginalRank int
	RerankRank   int
}
