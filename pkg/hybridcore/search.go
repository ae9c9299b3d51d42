package hybridcore

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/opendocs-search/hybridcore/internal/bm25"
	"github.com/opendocs-search/hybridcore/internal/diversify"
	searcherrors "github.com/opendocs-search/hybridcore/internal/errors"
	"github.com/opendocs-search/hybridcore/internal/expand"
	"github.com/opendocs-search/hybridcore/internal/facet"
	"github.com/opendocs-search/hybridcore/internal/filter"
	"github.com/opendocs-search/hybridcore/internal/fusion"
	"github.com/opendocs-search/hybridcore/internal/rerank"
	"github.com/opendocs-search/hybridcore/internal/vectorstore"
)

// candidateInfo is the content/metadata/embedding a candidate id
// resolves to, gathered from whichever leg of the pipeline observed
// it first.
type candidateInfo struct {
	content   string
	metadata  map[string]any
	embedding []float32
}

// Search runs the hybrid retrieval pipeline: optional expansion,
// filter pushdown, parallel BM25/vector fan-out, residual filtering,
// fusion, optional reranking, optional diversification, truncation.
func (o *SearchOrchestrator) Search(ctx context.Context, query string, nResults int, opts SearchOptions) (SearchResponse, error) {
	if err := o.ensureRehydrated(ctx); err != nil {
		return SearchResponse{}, err
	}
	if opts.Mode == "" {
		opts.Mode = ModeHybrid
	}
	if nResults <= 0 {
		return SearchResponse{Mode: opts.Mode, Results: []RankedResult{}}, nil
	}

	if err := ctx.Err(); err != nil {
		if errors.Is(err, context.Canceled) {
			return SearchResponse{}, searcherrors.ContextCanceledError("search canceled before dispatch", err)
		}
		return SearchResponse{}, searcherrors.TimeoutError("search deadline exceeded before dispatch", err)
	}

	multiplier := opts.RerankCandidateMultiplier
	if multiplier <= 0 {
		multiplier = DefaultRerankCandidateMultiplier
	}
	useRerank := opts.Mode == ModeReranked && o.reranker != nil
	K := nResults * 2
	if opts.Mode == ModeReranked {
		K = nResults * multiplier
	}

	pushdown, residual := filter.CompileForBackend(opts.Filter, o.vector)

	var expanded *expand.Expanded
	bm25Query := query
	if opts.UseQueryExpansion && opts.Mode != ModeVector {
		strategy := opts.ExpansionStrategy
		if strategy == "" {
			strategy = expand.StrategyAuto
		}
		exp := o.expander.Expand(query, strategy)
		expanded = &exp
		bm25Query = strings.Join(append([]string{query}, exp.Terms...), " ")
	}

	queryEmbedding, err := o.embedQuery(ctx, query)
	if err != nil {
		return SearchResponse{}, err
	}

	fingerprint := optionsFingerprint(nResults, opts)
	if cached, ok := o.semanticCache.Lookup(queryEmbedding); ok && cached.optionsFingerprint == fingerprint {
		return cached.response, nil
	}

	var bm25Results []bm25.ScoredDoc
	var vectorCandidates []vectorstore.Candidate

	if opts.Mode == ModeVector {
		vectorCandidates, err = searcherrors.RetryWithResult(ctx, o.retryCfg, func() ([]vectorstore.Candidate, error) {
			return o.vector.Query(ctx, queryEmbedding, K, pushdown)
		})
		if err != nil {
			return SearchResponse{}, searcherrors.BackendQueryError("vector backend query failed", err)
		}
	} else {
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			bm25Results = o.bm25.Search(bm25Query, K)
			return nil
		})
		g.Go(func() error {
			var queryErr error
			vectorCandidates, queryErr = searcherrors.RetryWithResult(gctx, o.retryCfg, func() ([]vectorstore.Candidate, error) {
				return o.vector.Query(gctx, queryEmbedding, K, pushdown)
			})
			return queryErr
		})
		if waitErr := g.Wait(); waitErr != nil {
			return SearchResponse{}, searcherrors.BackendQueryError("vector backend query failed", waitErr)
		}
	}

	info := make(map[string]candidateInfo, len(bm25Results)+len(vectorCandidates))
	for _, c := range vectorCandidates {
		info[c.DocID] = candidateInfo{content: c.Content, metadata: c.Metadata}
	}
	o.hydrateMissing(ctx, bm25Results, info)

	// The BM25 leg never saw the pushdown, so its hits are checked
	// against the whole filter; vector hits only need the residual.
	bm25Results = filterScored(bm25Results, opts.Filter, info)
	vectorScored := make([]fusion.ScoredDoc, 0, len(vectorCandidates))
	for _, c := range vectorCandidates {
		vectorScored = append(vectorScored, fusion.ScoredDoc{DocID: c.DocID, Score: c.Similarity})
	}
	vectorScored = filterScoredFusion(vectorScored, residual, info)

	bm25Scored := make([]fusion.ScoredDoc, len(bm25Results))
	for i, r := range bm25Results {
		bm25Scored[i] = fusion.ScoredDoc{DocID: r.DocID, Score: r.Score}
	}

	var fused []fusion.Fused
	sourceMethod := "fused"
	switch opts.Mode {
	case ModeVector:
		fused = scoredToFused(vectorScored)
		sourceMethod = "vector"
	default:
		if o.classifier != nil {
			if bw, vw, ok := o.classifier.ClassifyWeights(ctx, query); ok {
				fused = fusion.WeightedScoreFusion(bm25Scored, vectorScored, bw, vw)
				break
			}
		}
		fused = fusion.ReciprocalRankFusion(bm25Scored, vectorScored, fusion.DefaultRRFConstant)
	}

	if len(fused) > K {
		fused = fused[:K]
	}

	degraded := false
	if useRerank {
		candidates := make([]rerank.Candidate, len(fused))
		for i, f := range fused {
			c := info[f.DocID]
			candidates[i] = rerank.Candidate{DocID: f.DocID, Content: c.content, Metadata: c.metadata, Score: f.Score, OriginalRank: i + 1}
		}
		results, wasDegraded, rerankErr := o.reranker.Rerank(ctx, query, candidates, K)
		if wasDegraded {
			degraded = true
			o.logDegradedOnce(rerankErr)
			sourceMethod = "fused"
		} else {
			sourceMethod = "reranked"
			fused = make([]fusion.Fused, len(results))
			for i, r := range results {
				fused[i] = fusion.Fused{DocID: r.DocID, Score: r.Score}
			}
		}
	} else if opts.Mode == ModeReranked {
		// Reranking was requested but no reranker is configured at all:
		// same degraded contract as a reranker that failed at call time.
		degraded = true
		o.logDegradedOnce(nil)
	}

	bm25Rank := rankIndex(bm25Results)
	vectorRank := rankIndexFromScored(vectorScored)

	final := fused
	if opts.UseDiversification {
		lambda := opts.DiversificationLambda
		mmrCandidates := make([]diversify.Candidate, len(fused))
		for i, f := range fused {
			c := info[f.DocID]
			mmrCandidates[i] = diversify.Candidate{DocID: f.DocID, Content: c.content, Score: f.Score, Embedding: c.embedding, OriginalRank: i + 1}
		}
		selected := diversify.Select(mmrCandidates, nResults, lambda)
		final = make([]fusion.Fused, len(selected))
		for i, s := range selected {
			final[i] = fusion.Fused{DocID: s.DocID, Score: s.Score}
		}
	} else if len(final) > nResults {
		final = final[:nResults]
	}

	results := make([]RankedResult, 0, len(final))
	for _, f := range final {
		c := info[f.DocID]
		results = append(results, RankedResult{
			DocID:        f.DocID,
			Content:      c.content,
			Metadata:     c.metadata,
			Score:        f.Score,
			SourceMethod: sourceMethod,
			BM25Rank:     bm25Rank[f.DocID],
			VectorRank:   vectorRank[f.DocID],
		})
	}

	resp := SearchResponse{Results: results, Mode: opts.Mode, Degraded: degraded}
	if opts.Explain {
		resp.Explain = &ExplainData{
			Query:                query,
			ExpandedQuery:        expanded,
			BM25CandidateCount:   len(bm25Results),
			VectorCandidateCount: len(vectorCandidates),
			Pushdown:             pushdown,
			Residual:             residual,
			RerankApplied:        sourceMethod == "reranked",
			DiversifyApplied:     opts.UseDiversification,
		}
	}
	o.semanticCache.Put(queryEmbedding, cachedSearch{optionsFingerprint: fingerprint, response: resp})
	return resp, nil
}

// optionsFingerprint collapses the options that change a search's
// outcome into a string, so a semantic cache hit on a similar query
// embedding is never served across incompatible option sets.
func optionsFingerprint(nResults int, opts SearchOptions) string {
	var b strings.Builder
	b.WriteString(string(opts.Mode))
	b.WriteString("|n=")
	b.WriteString(strconv.Itoa(nResults))
	b.WriteString("|exp=")
	b.WriteString(strconv.FormatBool(opts.UseQueryExpansion))
	b.WriteString(string(opts.ExpansionStrategy))
	b.WriteString("|div=")
	b.WriteString(strconv.FormatBool(opts.UseDiversification))
	b.WriteString("|lambda=")
	b.WriteString(strconv.FormatFloat(opts.DiversificationLambda, 'f', -1, 64))
	b.WriteString("|mult=")
	b.WriteString(strconv.Itoa(opts.RerankCandidateMultiplier))
	b.WriteString("|filter=")
	fmt.Fprintf(&b, "%+v", opts.Filter)
	b.WriteString("|explain=")
	b.WriteString(strconv.FormatBool(opts.Explain))
	return b.String()
}

// SearchWithFacets runs Search and then aggregates facet_fields over
// the returned documents' metadata.
func (o *SearchOrchestrator) SearchWithFacets(ctx context.Context, query string, nResults int, facetFields []string, opts SearchOptions) (SearchResponse, []FacetResult, error) {
	resp, err := o.Search(ctx, query, nResults, opts)
	if err != nil {
		return resp, nil, err
	}
	docs := make([]facet.Doc, len(resp.Results))
	for i, r := range resp.Results {
		docs[i] = facet.Doc{Metadata: r.Metadata}
	}
	facets := facet.Compute(docs, facetFields, facet.DefaultTopFacetValues)
	return resp, facets, nil
}

// embedQuery embeds text through the embedding cache; embedding
// errors are fatal to the current query, per the spec's failure
// semantics (unlike reranker errors, which degrade gracefully).
func (o *SearchOrchestrator) embedQuery(ctx context.Context, text string) ([]float32, error) {
	if v, ok := o.embeddingCache.Get(o.embedder.ModelID(), text); ok {
		return v, nil
	}
	v, err := o.embedder.EmbedQuery(ctx, text)
	if err != nil {
		return nil, searcherrors.ModelError("failed to embed query", err)
	}
	o.embeddingCache.Put(o.embedder.ModelID(), text, v)
	return v, nil
}

// hydrateMissing fetches content/metadata/embedding for BM25 hits not
// already known from the vector candidate list.
func (o *SearchOrchestrator) hydrateMissing(ctx context.Context, bm25Results []bm25.ScoredDoc, info map[string]candidateInfo) {
	for _, r := range bm25Results {
		if _, ok := info[r.DocID]; ok {
			continue
		}
		doc, found, err := o.vector.Get(ctx, r.DocID)
		if err != nil || !found {
			continue
		}
		info[r.DocID] = candidateInfo{content: doc.Content, metadata: doc.Metadata, embedding: doc.Embedding}
	}
	// Embeddings are also useful for diversification on vector-only
	// hits; fetch them lazily only when the embedding field is absent
	// and the id is still in use downstream (diversify path hydrates
	// on demand via the same Get call pattern would be redundant here,
	// so vector-only candidates fall back to content-based similarity
	// unless BM25 also surfaced the same id).
}

func filterScored(list []bm25.ScoredDoc, residual filter.Filter, info map[string]candidateInfo) []bm25.ScoredDoc {
	if residual == nil {
		return list
	}
	out := make([]bm25.ScoredDoc, 0, len(list))
	for _, d := range list {
		c := info[d.DocID]
		if filter.Matches(residual, c.content, c.metadata) {
			out = append(out, d)
		}
	}
	return out
}

func filterScoredFusion(list []fusion.ScoredDoc, residual filter.Filter, info map[string]candidateInfo) []fusion.ScoredDoc {
	if residual == nil {
		return list
	}
	out := make([]fusion.ScoredDoc, 0, len(list))
	for _, d := range list {
		c := info[d.DocID]
		if filter.Matches(residual, c.content, c.metadata) {
			out = append(out, d)
		}
	}
	return out
}

func scoredToFused(list []fusion.ScoredDoc) []fusion.Fused {
	out := make([]fusion.Fused, len(list))
	for i, d := range list {
		out[i] = fusion.Fused{DocID: d.DocID, Score: d.Score}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].DocID < out[j].DocID
	})
	return out
}

func rankIndex(list []bm25.ScoredDoc) map[string]int {
	ranks := make(map[string]int, len(list))
	for i, d := range list {
		ranks[d.DocID] = i + 1
	}
	return ranks
}

func rankIndexFromScored(list []fusion.ScoredDoc) map[string]int {
	ranks := make(map[string]int, len(list))
	for i, d := range list {
		ranks[d.DocID] = i + 1
	}
	return ranks
}

// logDegradedOnce logs the rerank-unavailable degradation exactly once
// per orchestrator lifetime, per the spec's "log once per session".
func (o *SearchOrchestrator) logDegradedOnce(cause error) {
	o.rerankDegradedMu.Lock()
	defer o.rerankDegradedMu.Unlock()
	if o.rerankDegradedLogged {
		return
	}
	o.rerankDegradedLogged = true
	if cause != nil {
		o.logger.Warn("reranker unavailable, falling back to fused ranking", "error", cause.Error())
	} else {
		o.logger.Warn("reranker unavailable, falling back to fused ranking")
	}
}
