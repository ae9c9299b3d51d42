package hybridcore

import (
	"context"

	"github.com/opendocs-search/hybridcore/internal/rerank"
	"github.com/opendocs-search/hybridcore/internal/vectorstore"
)

// EmbeddingModel is the capability interface the core depends on for
// turning text into dense vectors. Implementations are expected to
// normalize embeddings to unit length; the core does not renormalize.
type EmbeddingModel interface {
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)
	ModelID() string
}

// CrossEncoderModel scores (query, document) pairs for reranking.
// This is internal/rerank.Model's public name.
type CrossEncoderModel = rerank.Model

// VectorBackend is the storage capability the core depends on. The
// reference implementation is internal/vectorstore.HNSWBackend; any
// type satisfying this interface can be substituted.
type VectorBackend = vectorstore.VectorBackend

// Classifier optionally adjusts lexical/vector fusion weight by query
// type (e.g. an acronym-heavy query favors BM25; a conversational one
// favors vector search). When absent, RRF fusion is weight-free.
type Classifier interface {
	ClassifyWeights(ctx context.Context, query string) (bm25Weight, vectorWeight float64, ok bool)
}
