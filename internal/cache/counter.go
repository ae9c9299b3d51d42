package cache

import "sync/atomic"

// counter tracks hit/miss/eviction totals with atomics so Stats can be
// read without taking the LRU's own lock.
type counter struct {
	hits      atomic.Int64
	misses    atomic.Int64
	evictions atomic.Int64
}

func (c *counter) addHit()      { c.hits.Add(1) }
func (c *counter) addMiss()     { c.misses.Add(1) }
func (c *counter) addEviction() { c.evictions.Add(1) }

func (c *counter) snapshot() (hits, misses, evictions int64) {
	return c.hits.Load(), c.misses.Load(), c.evictions.Load()
}
