package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// DefaultEmbeddingCacheCapacity and DefaultEmbeddingCacheTTL match the
// spec's default sizing for dense-vector memoization.
const (
	DefaultEmbeddingCacheCapacity = 5000
	DefaultEmbeddingCacheTTL      = 1 * time.Hour
)

// embeddingKey is (model_id, content_hash): the same text embedded by
// two different models must not collide.
type embeddingKey struct {
	modelID      string
	contentHash  [sha256.Size]byte
}

// EmbeddingCache memoizes dense vectors by (model_id, content_hash) so
// repeated embedding requests for the same text and model skip the
// model call entirely.
type EmbeddingCache struct {
	c *Cache[embeddingKey, []float32]
}

// NewEmbeddingCache creates an EmbeddingCache with the given capacity
// and TTL; non-positive values fall back to the defaults.
func NewEmbeddingCache(capacity int, ttl time.Duration) *EmbeddingCache {
	if capacity <= 0 {
		capacity = DefaultEmbeddingCacheCapacity
	}
	if ttl <= 0 {
		ttl = DefaultEmbeddingCacheTTL
	}
	return &EmbeddingCache{c: New[embeddingKey, []float32](capacity, ttl)}
}

// NewEmbeddingCacheWithDefaults creates an EmbeddingCache sized per spec.
func NewEmbeddingCacheWithDefaults() *EmbeddingCache {
	return NewEmbeddingCache(DefaultEmbeddingCacheCapacity, DefaultEmbeddingCacheTTL)
}

func (e *EmbeddingCache) key(modelID, content string) embeddingKey {
	return embeddingKey{modelID: modelID, contentHash: sha256.Sum256([]byte(content))}
}

// Get returns the cached embedding for (modelID, content) if present.
func (e *EmbeddingCache) Get(modelID, content string) ([]float32, bool) {
	return e.c.Get(e.key(modelID, content))
}

// Put stores an embedding for (modelID, content).
func (e *EmbeddingCache) Put(modelID, content string, vec []float32) {
	e.c.Put(e.key(modelID, content), vec)
}

// Stats reports hit/miss/eviction counters.
func (e *EmbeddingCache) Stats() Stats {
	return e.c.Stats()
}

// hexKey returns a stable string form of the cache key (model id plus
// content hash), e.g. for logging a key without leaking content. It is
// unexported, so only this package can call it.
func (e *EmbeddingCache) hexKey(modelID, content string) string {
	k := e.key(modelID, content)
	return modelID + ":" + hex.EncodeToString(k.contentHash[:])
}
