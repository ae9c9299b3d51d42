package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPairScoreCache_HitsOnIdenticalTriple(t *testing.T) {
	c := NewPairScoreCacheWithDefaults()
	c.Put("cross-encoder-v1", "how to auth", "JWT bearer tokens", 0.87)

	score, ok := c.Get("cross-encoder-v1", "how to auth", "JWT bearer tokens")
	assert.True(t, ok)
	assert.Equal(t, 0.87, score)
}

func TestPairScoreCache_DifferentQuerySameContentMisses(t *testing.T) {
	c := NewPairScoreCacheWithDefaults()
	c.Put("cross-encoder-v1", "how to auth", "JWT bearer tokens", 0.87)

	_, ok := c.Get("cross-encoder-v1", "how to log out", "JWT bearer tokens")
	assert.False(t, ok)
}

func TestPairScoreCache_DifferentModelMisses(t *testing.T) {
	c := NewPairScoreCacheWithDefaults()
	c.Put("cross-encoder-v1", "q", "d", 0.5)

	_, ok := c.Get("cross-encoder-v2", "q", "d")
	assert.False(t, ok)
}
