// Package hybridcore composes the lexical, vector, filter, expansion,
// fusion, rerank, diversification, facet, and cache packages into a
// single SearchOrchestrator: the hybrid API-documentation search core
// exposed to CLIs, REST shells, and agent tools.
package hybridcore

import (
	"github.com/opendocs-search/hybridcore/internal/expand"
	"github.com/opendocs-search/hybridcore/internal/facet"
	"github.com/opendocs-search/hybridcore/internal/filter"
	"github.com/opendocs-search/hybridcore/internal/vectorstore"
)

// Document is a unit of indexed content. Embedding is populated
// internally during AddDocuments; callers never need to set it.
type Document = vectorstore.Document

// Filter is the boolean filter algebra over document metadata and
// content (internal/filter.Filter's public alias).
type Filter = filter.Filter

// FacetResult is one field's value-count aggregation.
type FacetResult = facet.Result

// Mode selects how a search pipeline combines the lexical and vector
// indices.
type Mode string

const (
	// ModeVector queries only the vector backend; BM25 and fusion are
	// skipped entirely.
	ModeVector Mode = "vector"
	// ModeHybrid runs BM25 and vector search in parallel and fuses the
	// two ranked lists with Reciprocal Rank Fusion, or with weighted
	// score fusion when a Classifier supplies weights.
	ModeHybrid Mode = "hybrid"
	// ModeReranked is ModeHybrid followed by cross-encoder reranking
	// of the fused candidates.
	ModeReranked Mode = "reranked"
)

// DefaultRerankCandidateMultiplier is applied to n_results to size the
// candidate pool fanned out to BM25 and the vector backend when
// reranking is requested.
const DefaultRerankCandidateMultiplier = 4

// SearchOptions closes over every pipeline toggle as an explicit,
// enumerated record rather than a dynamic config object.
type SearchOptions struct {
	Mode Mode

	// UseQueryExpansion runs the query through the domain expander
	// before the BM25 leg of the pipeline (vector search always uses
	// the original query text).
	UseQueryExpansion bool
	ExpansionStrategy expand.Strategy

	// Filter is compiled into (pushdown, residual) against the vector
	// backend's native capabilities before the candidate fan-out.
	Filter Filter

	UseDiversification    bool
	DiversificationLambda float64

	// RerankCandidateMultiplier sizes the BM25/vector candidate pool
	// when Mode is ModeReranked; zero uses DefaultRerankCandidateMultiplier.
	RerankCandidateMultiplier int

	// Explain, when true, attaches ExplainData to the response.
	Explain bool
}

// ExplainData exposes pipeline internals for debugging a single
// search call.
type ExplainData struct {
	Query             string
	ExpandedQuery     *expand.Expanded
	BM25CandidateCount   int
	VectorCandidateCount int
	Pushdown          Filter
	Residual          Filter
	RerankApplied     bool
	DiversifyApplied  bool
}

// RankedResult is one search hit in final response order.
type RankedResult struct {
	DocID        string
	Content      string
	Metadata     map[string]any
	Score        float64
	SourceMethod string // "vector", "fused", or "reranked"
	BM25Rank     int    // 0 if absent from the BM25 list
	VectorRank   int    // 0 if absent from the vector list
}

// SearchResponse is the full result of a search call.
type SearchResponse struct {
	Results  []RankedResult
	Mode     Mode
	Degraded bool // true when a reranker was requested but unavailable
	Explain  *ExplainData
}

// AddResult reports the outcome of add_document(s).
type AddResult struct {
	New     int
	Skipped int
	IDs     []string
}

// DeleteResult reports the outcome of delete/bulk_delete.
type DeleteResult struct {
	Deleted  int
	NotFound int
}

// StatsResult reports corpus size, enabled features, and cache
// telemetry.
type StatsResult struct {
	DocumentCount int
	Features      []string
	CacheStats    map[string]CacheStats
	BM25RebuildCount int

	// RerankerCircuitState is "closed"/"open"/"half-open" when a
	// reranker is configured, or "" when reranking is disabled.
	RerankerCircuitState string
}

// ConsistencyReport is the result of CheckConsistency: counts of BM25
// entries that disagreed with the vector backend's corpus before
// CheckConsistency repaired them in place.
type ConsistencyReport struct {
	OrphanedInBM25  int // present in BM25, absent from the backend
	MissingFromBM25 int // present in the backend, absent from BM25
}

// CacheStats mirrors internal/cache.Stats without exposing the cache
// package directly in the public surface.
type CacheStats struct {
	Hits      int64
	Misses    int64
	Evictions int64
	Len       int
}
