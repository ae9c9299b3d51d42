package vectorstore

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/coder/hnsw"

	searcherrors "github.com/opendocs-search/hybridcore/internal/errors"
	"github.com/opendocs-search/hybridcore/internal/filter"
)

// Metric selects the distance function a HNSWBackend's graph uses.
type Metric string

const (
	MetricCosine Metric = "cosine"
	MetricDot    Metric = "dot"
)

// Config tunes a HNSWBackend's graph construction parameters.
type Config struct {
	Dimensions int
	Metric     Metric
	M          int // graph degree; 0 uses the library default
	EfSearch   int // search-time candidate list size; 0 uses the library default
}

// overfetchFactor widens an ANN query so that post-hoc metadata
// filtering (native ops this backend supports) still returns topK
// matches when some neighbors are filtered out.
const overfetchFactor = 4

// HNSWBackend is the reference VectorBackend implementation, backed
// by a pure-Go HNSW graph. Deletion is lazy: a deleted id's key is
// orphaned from the id maps but left in the graph, since coder/hnsw
// does not support removing the last remaining node cleanly.
type HNSWBackend struct {
	mu     sync.RWMutex
	graph  *hnsw.Graph[uint64]
	config Config

	idMap   map[string]uint64
	keyMap  map[uint64]string
	docs    map[string]Document
	nextKey uint64

	closed bool
}

// NewHNSWBackend constructs a HNSWBackend with the given config,
// applying documented coder/hnsw defaults where unset.
func NewHNSWBackend(cfg Config) *HNSWBackend {
	if cfg.Metric == "" {
		cfg.Metric = MetricCosine
	}
	if cfg.M == 0 {
		cfg.M = 16
	}
	if cfg.EfSearch == 0 {
		cfg.EfSearch = 20
	}

	graph := hnsw.NewGraph[uint64]()
	switch cfg.Metric {
	case MetricDot:
		graph.Distance = dotDistance
	default:
		graph.Distance = hnsw.CosineDistance
	}
	graph.M = cfg.M
	graph.EfSearch = cfg.EfSearch
	graph.Ml = 0.25

	return &HNSWBackend{
		graph:   graph,
		config:  cfg,
		idMap:   make(map[string]uint64),
		keyMap:  make(map[uint64]string),
		docs:    make(map[string]Document),
	}
}

var _ VectorBackend = (*HNSWBackend)(nil)

// dotDistance adapts inner-product similarity into a distance suitable
// for HNSW's nearest-first ordering: lower is closer.
func dotDistance(a, b []float32) float32 {
	var dot float32
	for i := range a {
		dot += a[i] * b[i]
	}
	return -dot
}

func (b *HNSWBackend) Upsert(ctx context.Context, docs []Document) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return fmt.Errorf("vectorstore: backend is closed")
	}

	for _, doc := range docs {
		if b.config.Dimensions != 0 && len(doc.Embedding) != b.config.Dimensions {
			return searcherrors.DimensionMismatchError(
				fmt.Sprintf("vectorstore: dimension mismatch: expected %d, got %d", b.config.Dimensions, len(doc.Embedding)))
		}

		if existingKey, exists := b.idMap[doc.ID]; exists {
			delete(b.keyMap, existingKey)
			delete(b.idMap, doc.ID)
		}

		key := b.nextKey
		b.nextKey++

		vec := make([]float32, len(doc.Embedding))
		copy(vec, doc.Embedding)

		b.graph.Add(hnsw.MakeNode(key, vec))
		b.idMap[doc.ID] = key
		b.keyMap[key] = doc.ID
		b.docs[doc.ID] = doc
	}
	return nil
}

func (b *HNSWBackend) Delete(ctx context.Context, ids []string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return fmt.Errorf("vectorstore: backend is closed")
	}

	for _, id := range ids {
		if key, exists := b.idMap[id]; exists {
			delete(b.keyMap, key)
			delete(b.idMap, id)
			delete(b.docs, id)
		}
	}
	return nil
}

func (b *HNSWBackend) Query(ctx context.Context, embedding []float32, topK int, where filter.Filter) ([]Candidate, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return nil, fmt.Errorf("vectorstore: backend is closed")
	}
	if topK <= 0 || b.graph.Len() == 0 {
		return []Candidate{}, nil
	}

	fetchK := topK
	if where != nil {
		fetchK = topK * overfetchFactor
		if fetchK < topK+50 {
			fetchK = topK + 50
		}
	}
	if fetchK > b.graph.Len() {
		fetchK = b.graph.Len()
	}

	nodes := b.graph.Search(embedding, fetchK)

	candidates := make([]Candidate, 0, len(nodes))
	for _, node := range nodes {
		id, exists := b.keyMap[node.Key]
		if !exists {
			continue // lazily deleted
		}
		doc := b.docs[id]
		if where != nil && !filter.Matches(where, doc.Content, doc.Metadata) {
			continue
		}
		distance := b.graph.Distance(embedding, node.Value)
		candidates = append(candidates, Candidate{
			DocID:      id,
			Content:    doc.Content,
			Metadata:   doc.Metadata,
			Similarity: distanceToSimilarity(distance, b.config.Metric),
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Similarity > candidates[j].Similarity
	})
	if len(candidates) > topK {
		candidates = candidates[:topK]
	}
	return candidates, nil
}

func (b *HNSWBackend) Get(ctx context.Context, id string) (Document, bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return Document{}, false, fmt.Errorf("vectorstore: backend is closed")
	}
	doc, ok := b.docs[id]
	return doc, ok, nil
}

func (b *HNSWBackend) List(ctx context.Context, offset, limit int) ([]Document, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return nil, fmt.Errorf("vectorstore: backend is closed")
	}

	ids := make([]string, 0, len(b.docs))
	for id := range b.docs {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	if offset >= len(ids) {
		return []Document{}, nil
	}
	end := offset + limit
	if limit <= 0 || end > len(ids) {
		end = len(ids)
	}

	out := make([]Document, 0, end-offset)
	for _, id := range ids[offset:end] {
		out = append(out, b.docs[id])
	}
	return out, nil
}

func (b *HNSWBackend) Count(ctx context.Context) (int, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return 0, fmt.Errorf("vectorstore: backend is closed")
	}
	return len(b.docs), nil
}

// Supports reports that this reference backend can natively evaluate
// equality-family metadata ops via post-ANN filtering; comparisons,
// string ops, and regex are left to the residual client-side
// evaluator.
func (b *HNSWBackend) Supports(op filter.FilterOp) bool {
	switch op {
	case filter.OpEq, filter.OpNe, filter.OpIn, filter.OpNotIn:
		return true
	default:
		return false
	}
}

// Close marks the backend closed; further operations return an error.
func (b *HNSWBackend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	return nil
}

func distanceToSimilarity(distance float32, metric Metric) float64 {
	switch metric {
	case MetricDot:
		return -float64(distance)
	default:
		return 1.0 - float64(distance)/2.0
	}
}
