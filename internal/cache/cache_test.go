package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCache_PutThenGetReturnsValue(t *testing.T) {
	c := New[string, int](10, time.Minute)
	c.Put("a", 1)
	v, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 1, v)
}

func TestCache_GetMissingKeyReturnsFalse(t *testing.T) {
	c := New[string, int](10, time.Minute)
	_, ok := c.Get("missing")
	assert.False(t, ok)
}

func TestCache_EvictsOldestBeyondCapacity(t *testing.T) {
	c := New[string, int](2, time.Minute)
	c.Put("a", 1)
	c.Put("b", 2)
	c.Put("c", 3)

	assert.LessOrEqual(t, c.Len(), 2)
	_, aOK := c.Get("a")
	assert.False(t, aOK, "oldest entry should have been evicted")
}

func TestCache_TTLExpiresEntries(t *testing.T) {
	c := New[string, int](10, 10*time.Millisecond)
	c.Put("a", 1)
	time.Sleep(30 * time.Millisecond)

	_, ok := c.Get("a")
	assert.False(t, ok)
}

func TestCache_StatsTracksHitsAndMisses(t *testing.T) {
	c := New[string, int](10, time.Minute)
	c.Put("a", 1)
	c.Get("a")
	c.Get("missing")

	stats := c.Stats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
}

func TestCache_RemoveDeletesEntry(t *testing.T) {
	c := New[string, int](10, time.Minute)
	c.Put("a", 1)
	c.Remove("a")

	_, ok := c.Get("a")
	assert.False(t, ok)
}
