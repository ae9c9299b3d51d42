package diversify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelect_EmptyInputYieldsEmptyOutput(t *testing.T) {
	assert.Empty(t, Select(nil, 5, 0.5))
}

func TestSelect_LambdaOneYieldsRelevanceOnlyOrder(t *testing.T) {
	candidates := []Candidate{
		{DocID: "a", Content: "auth token login", Score: 0.9, OriginalRank: 1},
		{DocID: "b", Content: "auth token signin", Score: 0.8, OriginalRank: 2},
		{DocID: "c", Content: "completely unrelated topic", Score: 0.7, OriginalRank: 3},
	}

	result := Select(candidates, 3, 1.0)
	require.Len(t, result, 3)
	assert.Equal(t, "a", result[0].DocID)
	assert.Equal(t, "b", result[1].DocID)
	assert.Equal(t, "c", result[2].DocID)
}

func TestSelect_LambdaZeroStillAnchorsOnTopRelevanceSeed(t *testing.T) {
	candidates := []Candidate{
		{DocID: "a", Content: "auth token login", Score: 0.9, OriginalRank: 1},
		{DocID: "b", Content: "auth token login", Score: 0.1, OriginalRank: 2},
		{DocID: "c", Content: "billing invoice payment", Score: 0.1, OriginalRank: 3},
	}

	result := Select(candidates, 3, 0.0)
	require.NotEmpty(t, result)
	assert.Equal(t, "a", result[0].DocID, "first pick is always the top-relevance seed")
}

func TestSelect_PrefersDiverseCandidateOverRedundantOne(t *testing.T) {
	candidates := []Candidate{
		{DocID: "seed", Content: "auth token login flow", Score: 1.0, OriginalRank: 1},
		{DocID: "redundant", Content: "auth token login flow", Score: 0.9, OriginalRank: 2},
		{DocID: "diverse", Content: "billing invoice payment", Score: 0.85, OriginalRank: 3},
	}

	result := Select(candidates, 2, 0.3)
	require.Len(t, result, 2)
	assert.Equal(t, "seed", result[0].DocID)
	assert.Equal(t, "diverse", result[1].DocID)
}

func TestSelect_UsesCosineSimilarityWhenEmbeddingsProvided(t *testing.T) {
	candidates := []Candidate{
		{DocID: "seed", Score: 1.0, OriginalRank: 1, Embedding: []float32{1, 0}},
		{DocID: "same-direction", Score: 0.9, OriginalRank: 2, Embedding: []float32{1, 0}},
		{DocID: "orthogonal", Score: 0.8, OriginalRank: 3, Embedding: []float32{0, 1}},
	}

	result := Select(candidates, 2, 0.3)
	require.Len(t, result, 2)
	assert.Equal(t, "seed", result[0].DocID)
	assert.Equal(t, "orthogonal", result[1].DocID)
}

func TestSelect_TopKGreaterThanInputReturnsAll(t *testing.T) {
	candidates := []Candidate{
		{DocID: "a", Score: 1.0, OriginalRank: 1},
	}
	result := Select(candidates, 10, 0.5)
	assert.Len(t, result, 1)
}

func TestJaccard_IdenticalTokensReturnsOne(t *testing.T) {
	assert.Equal(t, 1.0, jaccard([]string{"a", "b"}, []string{"a", "b"}))
}

func TestJaccard_DisjointTokensReturnsZero(t *testing.T) {
	assert.Equal(t, 0.0, jaccard([]string{"a"}, []string{"b"}))
}
