package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEmbeddingCache_SameModelAndContentHits(t *testing.T) {
	c := NewEmbeddingCacheWithDefaults()
	vec := []float32{0.1, 0.2, 0.3}
	c.Put("model-a", "hello world", vec)

	got, ok := c.Get("model-a", "hello world")
	assert.True(t, ok)
	assert.Equal(t, vec, got)
}

func TestEmbeddingCache_DifferentModelSameContentMisses(t *testing.T) {
	c := NewEmbeddingCacheWithDefaults()
	c.Put("model-a", "hello world", []float32{0.1})

	_, ok := c.Get("model-b", "hello world")
	assert.False(t, ok)
}

func TestEmbeddingCache_DifferentContentSameModelMisses(t *testing.T) {
	c := NewEmbeddingCacheWithDefaults()
	c.Put("model-a", "hello world", []float32{0.1})

	_, ok := c.Get("model-a", "goodbye world")
	assert.False(t, ok)
}
