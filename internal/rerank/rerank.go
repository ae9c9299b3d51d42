package rerank

import (
	"context"
	"sort"
	"strings"

	"github.com/opendocs-search/hybridcore/internal/cache"
	searcherrors "github.com/opendocs-search/hybridcore/internal/errors"
)

// Reranker rescores a fused candidate list with a cross-encoder model,
// using a pair-score cache to skip repeated model calls and a circuit
// breaker to degrade gracefully to the input order when the model is
// unavailable.
type Reranker struct {
	model       Model
	cache       *cache.PairScoreCache
	breaker     *searcherrors.CircuitBreaker
	batchSize   int
	tokenBudget int
}

// Option configures a Reranker.
type Option func(*Reranker)

// WithBatchSize overrides the default model batch size.
func WithBatchSize(n int) Option {
	return func(r *Reranker) { r.batchSize = n }
}

// WithTokenBudget overrides the default per-document token budget.
func WithTokenBudget(n int) Option {
	return func(r *Reranker) { r.tokenBudget = n }
}

// WithPairScoreCache overrides the default pair-score cache instance,
// mainly so callers can share one cache across reranker instances.
func WithPairScoreCache(c *cache.PairScoreCache) Option {
	return func(r *Reranker) { r.cache = c }
}

// WithCircuitBreaker overrides the default circuit breaker.
func WithCircuitBreaker(cb *searcherrors.CircuitBreaker) Option {
	return func(r *Reranker) { r.breaker = cb }
}

// BreakerState reports the cross-encoder circuit breaker's current
// state ("closed", "open", "half-open"), for surfacing in operator-
// facing stats.
func (r *Reranker) BreakerState() string {
	return r.breaker.State().String()
}

// New creates a Reranker wrapping model with spec default sizing.
func New(model Model, opts ...Option) *Reranker {
	r := &Reranker{
		model:       model,
		cache:       cache.NewPairScoreCacheWithDefaults(),
		breaker:     searcherrors.NewCircuitBreaker("cross-encoder-reranker"),
		batchSize:   DefaultBatchSize,
		tokenBudget: DefaultTokenBudget,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Rerank scores candidates against query and returns the top topK by
// descending cross-encoder score, with RerankRank assigned 1..topK
// and OriginalRank preserved from the input order. If the model is
// unavailable (circuit open, or every batch call fails), it degrades:
// returns the first topK candidates in their original order with
// degraded=true and no RerankRank assigned.
func (r *Reranker) Rerank(ctx context.Context, query string, candidates []Candidate, topK int) (results []Result, degraded bool, err error) {
	if len(candidates) == 0 || topK <= 0 {
		return []Result{}, false, nil
	}

	scores := make([]float64, len(candidates))
	misses := make([]int, 0, len(candidates))

	for i, c := range candidates {
		truncated := truncateToTokenBudget(c.Content, r.tokenBudget)
		if s, ok := r.cache.Get(r.model.ModelID(), query, truncated); ok {
			scores[i] = s
		} else {
			misses = append(misses, i)
		}
	}

	if len(misses) > 0 {
		ok, evalErr := r.evaluateMisses(ctx, query, candidates, misses, scores)
		if !ok {
			return degradedFallback(candidates, topK), true, evalErr
		}
	}

	out := make([]Result, len(candidates))
	for i, c := range candidates {
		out[i] = Result{
			DocID:        c.DocID,
			Content:      c.Content,
			Metadata:     c.Metadata,
			Score:        scores[i],
			OriginalRank: c.OriginalRank,
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].DocID < out[j].DocID
	})
	if len(out) > topK {
		out = out[:topK]
	}
	for i := range out {
		out[i].RerankRank = i + 1
	}
	return out, false, nil
}

// evaluateMisses scores every cache-missed candidate in batches,
// through the circuit breaker, writing results back into scores and
// the pair-score cache. It returns ok=false if the breaker is open or
// every batch call fails, signalling the caller to degrade.
func (r *Reranker) evaluateMisses(ctx context.Context, query string, candidates []Candidate, misses []int, scores []float64) (bool, error) {
	anySucceeded := false
	var lastErr error

	for start := 0; start < len(misses); start += r.batchSize {
		end := start + r.batchSize
		if end > len(misses) {
			end = len(misses)
		}
		idxBatch := misses[start:end]

		pairs := make([]Pair, len(idxBatch))
		for i, idx := range idxBatch {
			pairs[i] = Pair{Query: query, Content: truncateToTokenBudget(candidates[idx].Content, r.tokenBudget)}
		}

		vals, err := searcherrors.CircuitExecuteWithResult(r.breaker,
			func() ([]float64, error) {
				return r.model.ScorePairs(ctx, pairs)
			},
			func() ([]float64, error) {
				return nil, searcherrors.ModelUnavailableError("reranker circuit breaker open", searcherrors.ErrCircuitOpen)
			},
		)

		if err != nil {
			if ctx.Err() != nil {
				// The batch call failed because the caller's deadline or
				// cancellation fired mid-score, not because the model itself
				// rejected the pairs — RerankTimeoutError lets callers tell
				// this apart from a slow *overall* search (TimeoutError).
				lastErr = searcherrors.RerankTimeoutError("reranker batch call did not finish before the context ended", ctx.Err())
				continue
			}
			lastErr = err
			continue
		}
		if len(vals) != len(idxBatch) {
			lastErr = searcherrors.ModelError("rerank batch returned a mismatched result count", nil)
			continue
		}

		for i, idx := range idxBatch {
			scores[idx] = vals[i]
			r.cache.Put(r.model.ModelID(), query, truncateToTokenBudget(candidates[idx].Content, r.tokenBudget), vals[i])
		}
		anySucceeded = true
	}

	if !anySucceeded && len(misses) > 0 {
		return false, lastErr
	}
	return true, nil
}

// degradedFallback returns the first topK candidates unchanged, used
// when the reranker cannot score anything.
func degradedFallback(candidates []Candidate, topK int) []Result {
	n := topK
	if n > len(candidates) {
		n = len(candidates)
	}
	out := make([]Result, n)
	for i := 0; i < n; i++ {
		c := candidates[i]
		out[i] = Result{
			DocID:        c.DocID,
			Content:      c.Content,
			Metadata:     c.Metadata,
			Score:        c.Score,
			OriginalRank: c.OriginalRank,
		}
	}
	return out
}

// truncateToTokenBudget keeps the first budget whitespace-delimited
// words of content and drops the rest (head-keep, tail-drop).
func truncateToTokenBudget(content string, budget int) string {
	if budget <= 0 {
		return content
	}
	words := strings.Fields(content)
	if len(words) <= budget {
		return content
	}
	return strings.Join(words[:budget], " ")
}
