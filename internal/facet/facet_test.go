package facet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompute_ScalarFieldCountsOncePerDocument(t *testing.T) {
	docs := []Doc{
		{Metadata: map[string]any{"lang": "go"}},
		{Metadata: map[string]any{"lang": "go"}},
		{Metadata: map[string]any{"lang": "python"}},
	}

	results := Compute(docs, []string{"lang"}, 10)
	require.Len(t, results, 1)
	assert.Equal(t, 3, results[0].TotalDocs)
	assert.Equal(t, ValueCount{Value: "go", Count: 2}, results[0].Values[0])
	assert.Equal(t, ValueCount{Value: "python", Count: 1}, results[0].Values[1])
}

func TestCompute_ListValuedFieldContributesOncePerDistinctElement(t *testing.T) {
	docs := []Doc{
		{Metadata: map[string]any{"tags": []any{"a", "b"}}},
		{Metadata: map[string]any{"tags": []any{"a"}}},
	}

	results := Compute(docs, []string{"tags"}, 10)
	require.Len(t, results, 1)
	counts := map[string]int{}
	for _, v := range results[0].Values {
		counts[v.Value] = v.Count
	}
	assert.Equal(t, 2, counts["a"])
	assert.Equal(t, 1, counts["b"])
	assert.Equal(t, 2, results[0].TotalDocs)
}

func TestCompute_DuplicateElementsWithinOneDocumentCountOnce(t *testing.T) {
	docs := []Doc{
		{Metadata: map[string]any{"tags": []any{"a", "a", "a"}}},
	}
	results := Compute(docs, []string{"tags"}, 10)
	require.Len(t, results, 1)
	require.Len(t, results[0].Values, 1)
	assert.Equal(t, 1, results[0].Values[0].Count)
}

func TestCompute_SortsByDescendingCountThenAscendingValue(t *testing.T) {
	docs := []Doc{
		{Metadata: map[string]any{"lang": "python"}},
		{Metadata: map[string]any{"lang": "go"}},
		{Metadata: map[string]any{"lang": "rust"}},
	}
	results := Compute(docs, []string{"lang"}, 10)
	require.Len(t, results[0].Values, 3)
	assert.Equal(t, "go", results[0].Values[0].Value)
	assert.Equal(t, "python", results[0].Values[1].Value)
	assert.Equal(t, "rust", results[0].Values[2].Value)
}

func TestCompute_TruncatesToTopFacetValues(t *testing.T) {
	docs := []Doc{
		{Metadata: map[string]any{"lang": "a"}},
		{Metadata: map[string]any{"lang": "b"}},
		{Metadata: map[string]any{"lang": "c"}},
	}
	results := Compute(docs, []string{"lang"}, 2)
	assert.Len(t, results[0].Values, 2)
}

func TestCompute_MissingFieldContributesNothing(t *testing.T) {
	docs := []Doc{{Metadata: map[string]any{"other": "x"}}}
	results := Compute(docs, []string{"lang"}, 10)
	require.Len(t, results, 1)
	assert.Empty(t, results[0].Values)
	assert.Equal(t, 1, results[0].TotalDocs)
}
