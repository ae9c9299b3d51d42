// Package cache provides the LRU+TTL caches shared across the search
// pipeline: embedding vectors, semantic query results, and
// cross-encoder pair scores. EmbeddingCache and PairScoreCache wrap
// the same expirable LRU primitive (Cache) so capacity and time-based
// eviction are handled in one place; SemanticQueryCache matches by
// embedding similarity and keeps its own mutex-guarded recency list.
package cache

import (
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"
)

// Stats summarizes a cache's hit/miss counters since construction.
type Stats struct {
	Hits      int64
	Misses    int64
	Evictions int64
	Len       int
}

// Entry mirrors CacheEntry<K,V>: the value plus the bookkeeping a
// caller might want when inspecting cache contents directly.
type Entry[K comparable, V any] struct {
	Key            K
	Value          V
	InsertedAt     time.Time
	LastAccessedAt time.Time
}

// Cache is a thread-safe, capacity-bounded, TTL-evicting key/value
// store. It is the building block for EmbeddingCache and
// PairScoreCache; neither adds locking of its own, both delegate every
// read/write to a wrapped *Cache. SemanticQueryCache does not use it.
type Cache[K comparable, V any] struct {
	lru *lru.LRU[K, V]

	// Every exported method here takes no additional lock of its own,
	// relying on the underlying expirable.LRU's lock for atomicity;
	// the hits/misses/evictions counters are kept outside it as
	// atomics (see counter).
	counter counter
}

// New creates a Cache bounded by capacity entries and evicting entries
// ttl after insertion, regardless of access pattern (expirable.LRU
// evicts on a fixed TTL-since-insert, not a sliding idle timeout).
func New[K comparable, V any](capacity int, ttl time.Duration) *Cache[K, V] {
	c := &Cache[K, V]{}
	onEvict := func(key K, value V) {
		c.counter.addEviction()
	}
	c.lru = lru.NewLRU[K, V](capacity, onEvict, ttl)
	return c
}

// Get returns the cached value for key, reporting whether it was
// present and not expired.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	v, ok := c.lru.Get(key)
	if ok {
		c.counter.addHit()
	} else {
		c.counter.addMiss()
	}
	return v, ok
}

// Peek returns the cached value without updating its recency, and
// without affecting hit/miss counters.
func (c *Cache[K, V]) Peek(key K) (V, bool) {
	return c.lru.Peek(key)
}

// Put inserts or replaces key's value, resetting its TTL.
func (c *Cache[K, V]) Put(key K, value V) {
	c.lru.Add(key, value)
}

// Remove evicts key if present.
func (c *Cache[K, V]) Remove(key K) {
	c.lru.Remove(key)
}

// Keys returns the cache's current keys, oldest-accessed first.
func (c *Cache[K, V]) Keys() []K {
	return c.lru.Keys()
}

// Len returns the number of live (non-expired) entries.
func (c *Cache[K, V]) Len() int {
	return c.lru.Len()
}

// Purge removes all entries.
func (c *Cache[K, V]) Purge() {
	c.lru.Purge()
}

// Stats reports cumulative hit/miss/eviction counters and current size.
func (c *Cache[K, V]) Stats() Stats {
	hits, misses, evictions := c.counter.snapshot()
	return Stats{
		Hits:      hits,
		Misses:    misses,
		Evictions: evictions,
		Len:       c.lru.Len(),
	}
}
