// Package vectorstore defines the VectorBackend capability interface
// the search core depends on, and a reference in-process
// implementation backed by a pure-Go HNSW graph. The core never
// assumes a particular backend; VectorBackend is satisfied equally by
// the reference adapter here or by a remote vector database.
package vectorstore

import (
	"context"

	"github.com/opendocs-search/hybridcore/internal/filter"
)

// Document is a unit of indexed content: stable id, text content, and
// scalar/list-valued metadata. Embedding is populated by the caller
// (the orchestrator, via an EmbeddingModel) before Upsert; it is not
// computed inside the backend.
type Document struct {
	ID        string
	Content   string
	Metadata  map[string]any
	Embedding []float32
}

// Candidate is one vector-search hit, ordered by descending
// Similarity by the backend.
type Candidate struct {
	DocID      string
	Content    string
	Metadata   map[string]any
	Similarity float64
}

// VectorBackend is the capability interface consumed by the search
// core. Upsert is idempotent by Document.ID. Query returns candidates
// in descending similarity order; Where, when non-nil, is the
// pushdown fragment the backend itself can evaluate — callers still
// apply any residual filter client-side.
type VectorBackend interface {
	Upsert(ctx context.Context, docs []Document) error
	Delete(ctx context.Context, ids []string) error
	Query(ctx context.Context, embedding []float32, topK int, where filter.Filter) ([]Candidate, error)
	Get(ctx context.Context, id string) (Document, bool, error)
	List(ctx context.Context, offset, limit int) ([]Document, error)
	Count(ctx context.Context) (int, error)
	Supports(op filter.FilterOp) bool
}
