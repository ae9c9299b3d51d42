package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// DefaultPairScoreCacheCapacity and DefaultPairScoreCacheTTL match the
// cross-encoder reranker's default cache sizing (§4.7).
const (
	DefaultPairScoreCacheCapacity = 10000
	DefaultPairScoreCacheTTL      = 3600 * time.Second
)

// pairKey is (model_id, query, content); query and content are hashed
// together since pairs are typically short-lived and numerous.
type pairKey struct {
	modelID string
	pair    [sha256.Size]byte
}

// PairScoreCache memoizes cross-encoder (query, document) relevance
// scores so a repeated rerank of the same pair skips the model call.
// It is the only cache touched on the hot read path of reranking and
// must support concurrent get/put without serializing searches; the
// embedded Cache's locking is scoped to the underlying expirable.LRU,
// not to the whole reranker.
type PairScoreCache struct {
	c *Cache[pairKey, float64]
}

// NewPairScoreCache creates a PairScoreCache with the given capacity
// and TTL; non-positive values fall back to the defaults.
func NewPairScoreCache(capacity int, ttl time.Duration) *PairScoreCache {
	if capacity <= 0 {
		capacity = DefaultPairScoreCacheCapacity
	}
	if ttl <= 0 {
		ttl = DefaultPairScoreCacheTTL
	}
	return &PairScoreCache{c: New[pairKey, float64](capacity, ttl)}
}

// NewPairScoreCacheWithDefaults creates a PairScoreCache sized per spec.
func NewPairScoreCacheWithDefaults() *PairScoreCache {
	return NewPairScoreCache(DefaultPairScoreCacheCapacity, DefaultPairScoreCacheTTL)
}

func (p *PairScoreCache) key(modelID, query, content string) pairKey {
	h := sha256.New()
	h.Write([]byte(query))
	h.Write([]byte{0})
	h.Write([]byte(content))
	var sum [sha256.Size]byte
	copy(sum[:], h.Sum(nil))
	return pairKey{modelID: modelID, pair: sum}
}

// Get returns the cached score for (modelID, query, content).
func (p *PairScoreCache) Get(modelID, query, content string) (float64, bool) {
	return p.c.Get(p.key(modelID, query, content))
}

// Put stores a score for (modelID, query, content).
func (p *PairScoreCache) Put(modelID, query, content string, score float64) {
	p.c.Put(p.key(modelID, query, content), score)
}

// Stats reports hit/miss/eviction counters.
func (p *PairScoreCache) Stats() Stats {
	return p.c.Stats()
}

func (k pairKey) hex() string {
	return k.modelID + ":" + hex.EncodeToString(k.pair[:])
}
