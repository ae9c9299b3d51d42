package hybridcore

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/opendocs-search/hybridcore/internal/bm25"
	"github.com/opendocs-search/hybridcore/internal/cache"
	searcherrors "github.com/opendocs-search/hybridcore/internal/errors"
	"github.com/opendocs-search/hybridcore/internal/expand"
	"github.com/opendocs-search/hybridcore/internal/rerank"
	"github.com/opendocs-search/hybridcore/internal/vectorstore"
)

// defaultBackendRetryConfig retries a failed backend call a couple of
// times with a short backoff before the orchestrator gives up and
// surfaces a BackendError. It is deliberately much faster than
// searcherrors.DefaultRetryConfig(), which is tuned for a networked
// service; callers backed by a real network store can override it with
// WithRetryConfig.
func defaultBackendRetryConfig() searcherrors.RetryConfig {
	return searcherrors.RetryConfig{
		MaxRetries:   2,
		InitialDelay: 10 * time.Millisecond,
		MaxDelay:     100 * time.Millisecond,
		Multiplier:   2.0,
	}
}

// cachedSearch is the value type stored in the semantic query cache:
// a full response for a query embedding, keyed by the options that
// produced it so a cache hit under different options is never served.
type cachedSearch struct {
	optionsFingerprint string
	response           SearchResponse
}

// SearchOrchestrator is the single entry point for the hybrid search
// core: it owns the BM25 index, the vector backend handle, the
// optional reranker (which holds the pair-score cache), and the
// embedding and semantic query caches, and composes them
// into add/delete/search/facet operations.
//
// Writes (AddDocuments, Delete, BulkDelete) are serialized against
// each other by writeMu; the BM25 index's own read-write lock already
// protects concurrent readers during a rebuild, so Search takes no
// orchestrator-level lock.
type SearchOrchestrator struct {
	bm25     *bm25.Index
	vector   VectorBackend
	embedder EmbeddingModel

	reranker   *rerank.Reranker
	expander   *expand.Expander
	classifier Classifier

	embeddingCache *cache.EmbeddingCache
	semanticCache  *cache.SemanticQueryCache[cachedSearch]

	retryCfg searcherrors.RetryConfig
	logger   *slog.Logger

	writeMu sync.Mutex

	rehydrateOnce sync.Once
	rehydrateErr  error

	rerankDegradedLogged bool
	rerankDegradedMu     sync.Mutex
}

// Option configures a SearchOrchestrator at construction time.
type Option func(*SearchOrchestrator)

// WithReranker enables cross-encoder reranking for ModeReranked
// searches.
func WithReranker(model CrossEncoderModel, opts ...rerank.Option) Option {
	return func(o *SearchOrchestrator) {
		o.reranker = rerank.New(model, opts...)
	}
}

// WithQueryExpander overrides the default domain expander.
func WithQueryExpander(e *expand.Expander) Option {
	return func(o *SearchOrchestrator) { o.expander = e }
}

// WithClassifier sets an optional fusion-weight classifier.
func WithClassifier(c Classifier) Option {
	return func(o *SearchOrchestrator) { o.classifier = c }
}

// WithLogger overrides the default slog logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *SearchOrchestrator) { o.logger = l }
}

// WithBM25Constants overrides the Okapi BM25 tuning constants.
func WithBM25Constants(k1, b float64) Option {
	return func(o *SearchOrchestrator) { o.bm25 = bm25.New(k1, b) }
}

// WithEmbeddingCache overrides the default-sized embedding cache.
func WithEmbeddingCache(c *cache.EmbeddingCache) Option {
	return func(o *SearchOrchestrator) { o.embeddingCache = c }
}

// WithSemanticCache overrides the default-sized semantic query cache.
func WithSemanticCache(c *cache.SemanticQueryCache[cachedSearch]) Option {
	return func(o *SearchOrchestrator) { o.semanticCache = c }
}

// WithRetryConfig overrides the backoff used when retrying a failed
// vector backend call before it is surfaced as a BackendError. The
// default (defaultBackendRetryConfig) assumes an in-process backend;
// a backend making real network calls should supply a slower schedule,
// e.g. searcherrors.DefaultRetryConfig().
func WithRetryConfig(cfg searcherrors.RetryConfig) Option {
	return func(o *SearchOrchestrator) { o.retryCfg = cfg }
}

// New builds a SearchOrchestrator. vector and embedder are required;
// everything else is optional and has a working default.
func New(vector VectorBackend, embedder EmbeddingModel, opts ...Option) (*SearchOrchestrator, error) {
	if vector == nil {
		return nil, fmt.Errorf("hybridcore: vector backend is required")
	}
	if embedder == nil {
		return nil, fmt.Errorf("hybridcore: embedding model is required")
	}

	o := &SearchOrchestrator{
		bm25:           bm25.NewDefault(),
		vector:         vector,
		embedder:       embedder,
		expander:       expand.New(),
		embeddingCache: cache.NewEmbeddingCacheWithDefaults(),
		semanticCache:  cache.NewSemanticQueryCacheWithDefaults[cachedSearch](),
		retryCfg:       defaultBackendRetryConfig(),
		logger:         slog.Default(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o, nil
}

// ensureRehydrated rebuilds the BM25 index from the vector backend's
// corpus snapshot exactly once per orchestrator lifetime. The core
// persists no state of its own; on first use after a restart, the
// lexical index must be reconstructed from the backend (the source of
// truth for content).
func (o *SearchOrchestrator) ensureRehydrated(ctx context.Context) error {
	o.rehydrateOnce.Do(func() {
		const pageSize = 1000
		offset := 0
		for {
			docs, err := searcherrors.RetryWithResult(ctx, o.retryCfg, func() ([]vectorstore.Document, error) {
				return o.vector.List(ctx, offset, pageSize)
			})
			if err != nil {
				o.rehydrateErr = searcherrors.BackendQueryError("failed to list corpus for BM25 rehydration", err)
				return
			}
			for _, d := range docs {
				o.bm25.Add(d.ID, d.Content)
			}
			if len(docs) < pageSize {
				break
			}
			offset += pageSize
		}
	})
	return o.rehydrateErr
}

// AddDocument is the single-document form of AddDocuments.
func (o *SearchOrchestrator) AddDocument(ctx context.Context, content string, metadata map[string]any, id string) (AddResult, error) {
	doc := Document{ID: id, Content: content, Metadata: metadata}
	return o.AddDocuments(ctx, []Document{doc})
}

// AddDocuments inserts new documents, skipping any whose id (supplied
// or content-hash-derived) already exists in the vector backend.
// Embeddings are computed in one batch call for every non-skipped
// document. A malformed document (invalid UTF-8 content or a
// non-scalar metadata value) is rejected without aborting the batch.
func (o *SearchOrchestrator) AddDocuments(ctx context.Context, docs []Document) (AddResult, error) {
	if err := o.ensureRehydrated(ctx); err != nil {
		return AddResult{}, err
	}

	o.writeMu.Lock()
	defer o.writeMu.Unlock()

	result := AddResult{IDs: make([]string, 0, len(docs))}

	type pending struct {
		id       string
		content  string
		metadata map[string]any
	}
	var toEmbed []pending

	for _, d := range docs {
		if err := validateDocument(d.Content, d.Metadata); err != nil {
			o.logger.Warn("rejecting document with encoding error", slog.String("error", err.Error()))
			continue
		}

		id := d.ID
		if id == "" {
			generated, err := generateID(d.Content, d.Metadata)
			if err != nil {
				o.logger.Warn("rejecting document: id generation failed", slog.String("error", err.Error()))
				continue
			}
			id = generated
		}

		if _, found, err := o.vector.Get(ctx, id); err == nil && found {
			result.Skipped++
			continue
		}

		toEmbed = append(toEmbed, pending{id: id, content: d.Content, metadata: d.Metadata})
	}

	if len(toEmbed) == 0 {
		return result, nil
	}

	texts := make([]string, len(toEmbed))
	for i, p := range toEmbed {
		texts[i] = p.content
	}
	embeddings, err := o.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return result, searcherrors.ModelError("failed to embed documents", err)
	}
	if len(embeddings) != len(toEmbed) {
		return result, searcherrors.EmbeddingShapeError("embedding model returned a mismatched vector count", nil)
	}

	upserts := make([]vectorstore.Document, len(toEmbed))
	for i, p := range toEmbed {
		o.bm25.Add(p.id, p.content)
		upserts[i] = vectorstore.Document{ID: p.id, Content: p.content, Metadata: p.metadata, Embedding: embeddings[i]}
		o.embeddingCache.Put(o.embedder.ModelID(), p.content, embeddings[i])
	}

	if err := searcherrors.Retry(ctx, o.retryCfg, func() error {
		return o.vector.Upsert(ctx, upserts)
	}); err != nil {
		return result, searcherrors.BackendWriteError("vector backend upsert failed", err)
	}

	for _, p := range toEmbed {
		result.New++
		result.IDs = append(result.IDs, p.id)
	}
	return result, nil
}

// Delete is the single-id form of BulkDelete.
func (o *SearchOrchestrator) Delete(ctx context.Context, id string) (DeleteResult, error) {
	return o.BulkDelete(ctx, []string{id})
}

// BulkDelete removes ids from both indices. A missing id contributes
// to NotFound rather than producing an error.
func (o *SearchOrchestrator) BulkDelete(ctx context.Context, ids []string) (DeleteResult, error) {
	if err := o.ensureRehydrated(ctx); err != nil {
		return DeleteResult{}, err
	}

	o.writeMu.Lock()
	defer o.writeMu.Unlock()

	var present []string
	result := DeleteResult{}
	for _, id := range ids {
		if _, found, err := o.vector.Get(ctx, id); err == nil && found {
			present = append(present, id)
		} else {
			result.NotFound++
		}
	}

	if len(present) == 0 {
		return result, nil
	}

	if err := o.vector.Delete(ctx, present); err != nil {
		return result, searcherrors.BackendWriteError("vector backend delete failed", err)
	}
	for _, id := range present {
		o.bm25.Remove(id)
	}
	result.Deleted = len(present)
	return result, nil
}

// Get fetches a single document by id.
func (o *SearchOrchestrator) Get(ctx context.Context, id string) (Document, bool, error) {
	if err := o.ensureRehydrated(ctx); err != nil {
		return Document{}, false, err
	}
	doc, found, err := o.vector.Get(ctx, id)
	if err != nil {
		return Document{}, false, searcherrors.BackendQueryError("vector backend get failed", err)
	}
	return doc, found, nil
}

// Stats reports corpus size, enabled features, BM25 rebuild count,
// and cache telemetry.
func (o *SearchOrchestrator) Stats(ctx context.Context) (StatsResult, error) {
	if err := o.ensureRehydrated(ctx); err != nil {
		return StatsResult{}, err
	}

	count, err := o.vector.Count(ctx)
	if err != nil {
		return StatsResult{}, searcherrors.BackendQueryError("vector backend count failed", err)
	}

	features := []string{"bm25", "vector"}
	if o.reranker != nil {
		features = append(features, "rerank")
	}
	if o.classifier != nil {
		features = append(features, "classifier")
	}

	bmStats := o.bm25.Stats()

	stats := StatsResult{
		DocumentCount:    count,
		Features:         features,
		BM25RebuildCount: bmStats.RebuildCount,
		CacheStats: map[string]CacheStats{
			"embedding": toCacheStats(o.embeddingCache.Stats()),
			"semantic":  toCacheStats(o.semanticCache.Stats()),
		},
	}
	if o.reranker != nil {
		stats.RerankerCircuitState = o.reranker.BreakerState()
	}
	return stats, nil
}

// CheckConsistency compares the BM25 index's document set against the
// vector backend's corpus and repairs any drift in place: entries
// present in BM25 but absent from the backend are removed, and
// documents present in the backend but absent from BM25 are re-added
// from the backend's own content. A disagreement covering more than
// half the corpus is treated as unrecoverable by targeted repair and
// triggers a full BM25 rebuild (clear, then re-add every backend
// document) instead of a per-entry patch.
//
// The returned error is non-nil whenever drift was found and repaired
// (ConsistencyError, §7's index-disagreement kind) so callers can log
// or alert on it; it is nil only when BM25 and the backend already
// agreed. A backend failure while listing the corpus returns a
// BackendError instead and leaves both indices untouched.
func (o *SearchOrchestrator) CheckConsistency(ctx context.Context) (ConsistencyReport, error) {
	if err := o.ensureRehydrated(ctx); err != nil {
		return ConsistencyReport{}, err
	}

	o.writeMu.Lock()
	defer o.writeMu.Unlock()

	backendDocs := make(map[string]vectorstore.Document)
	const pageSize = 1000
	offset := 0
	for {
		docs, err := searcherrors.RetryWithResult(ctx, o.retryCfg, func() ([]vectorstore.Document, error) {
			return o.vector.List(ctx, offset, pageSize)
		})
		if err != nil {
			return ConsistencyReport{}, searcherrors.BackendQueryError("failed to list corpus for consistency check", err)
		}
		for _, d := range docs {
			backendDocs[d.ID] = d
		}
		if len(docs) < pageSize {
			break
		}
		offset += pageSize
	}

	bm25IDs := make(map[string]struct{})
	for _, id := range o.bm25.AllIDs() {
		bm25IDs[id] = struct{}{}
	}

	var report ConsistencyReport
	for id := range bm25IDs {
		if _, ok := backendDocs[id]; !ok {
			report.OrphanedInBM25++
		}
	}
	for id := range backendDocs {
		if _, ok := bm25IDs[id]; !ok {
			report.MissingFromBM25++
		}
	}
	if report.OrphanedInBM25 == 0 && report.MissingFromBM25 == 0 {
		return report, nil
	}

	total := report.OrphanedInBM25 + report.MissingFromBM25
	if len(backendDocs) > 0 && total*2 > len(backendDocs) {
		o.logger.Warn("bm25 index disagreement exceeds repair threshold, rebuilding",
			slog.String("error", searcherrors.RebuildRequiredError("bm25/backend disagreement exceeds targeted-repair threshold").Error()))
		for id := range bm25IDs {
			o.bm25.Remove(id)
		}
		for _, d := range backendDocs {
			o.bm25.Add(d.ID, d.Content)
		}
	} else {
		for id := range bm25IDs {
			if _, ok := backendDocs[id]; !ok {
				o.logger.Warn("removing orphaned bm25 entry",
					slog.String("error", searcherrors.OrphanEntryError(fmt.Sprintf("doc %s absent from backend", id)).Error()))
				o.bm25.Remove(id)
			}
		}
		for id, d := range backendDocs {
			if _, ok := bm25IDs[id]; !ok {
				o.bm25.Add(id, d.Content)
			}
		}
	}

	return report, searcherrors.ConsistencyError(
		fmt.Sprintf("bm25 index disagreed with backend: %d orphaned, %d missing; repaired", report.OrphanedInBM25, report.MissingFromBM25),
		nil)
}

func toCacheStats(s cache.Stats) CacheStats {
	return CacheStats{Hits: s.Hits, Misses: s.Misses, Evictions: s.Evictions, Len: s.Len}
}
