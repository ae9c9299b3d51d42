package vectorstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	searcherrors "github.com/opendocs-search/hybridcore/internal/errors"
	"github.com/opendocs-search/hybridcore/internal/filter"
)

func TestHNSWBackend_UpsertThenQueryReturnsNearest(t *testing.T) {
	b := NewHNSWBackend(Config{Dimensions: 2})
	ctx := context.Background()

	require.NoError(t, b.Upsert(ctx, []Document{
		{ID: "close", Content: "near", Embedding: []float32{1, 0}},
		{ID: "far", Content: "away", Embedding: []float32{-1, 0}},
	}))

	results, err := b.Query(ctx, []float32{1, 0}, 2, nil)
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Equal(t, "close", results[0].DocID)
}

func TestHNSWBackend_UpsertIsIdempotentByID(t *testing.T) {
	b := NewHNSWBackend(Config{Dimensions: 2})
	ctx := context.Background()

	require.NoError(t, b.Upsert(ctx, []Document{{ID: "a", Content: "v1", Embedding: []float32{1, 0}}}))
	require.NoError(t, b.Upsert(ctx, []Document{{ID: "a", Content: "v2", Embedding: []float32{0, 1}}}))

	count, err := b.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	doc, ok, err := b.Get(ctx, "a")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "v2", doc.Content)
}

func TestHNSWBackend_DeleteExcludesFromQuery(t *testing.T) {
	b := NewHNSWBackend(Config{Dimensions: 2})
	ctx := context.Background()

	require.NoError(t, b.Upsert(ctx, []Document{{ID: "a", Content: "x", Embedding: []float32{1, 0}}}))
	require.NoError(t, b.Delete(ctx, []string{"a"}))

	count, err := b.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	_, ok, err := b.Get(ctx, "a")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHNSWBackend_QueryEmptyGraphReturnsEmpty(t *testing.T) {
	b := NewHNSWBackend(Config{Dimensions: 2})
	results, err := b.Query(context.Background(), []float32{1, 0}, 5, nil)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestHNSWBackend_QueryAppliesPushdownFilter(t *testing.T) {
	b := NewHNSWBackend(Config{Dimensions: 2})
	ctx := context.Background()

	require.NoError(t, b.Upsert(ctx, []Document{
		{ID: "go-doc", Content: "go doc", Metadata: map[string]any{"lang": "go"}, Embedding: []float32{1, 0}},
		{ID: "py-doc", Content: "py doc", Metadata: map[string]any{"lang": "python"}, Embedding: []float32{0.9, 0.1}},
	}))

	where := filter.Leaf{Field: "lang", Op: filter.OpEq, Value: "go"}
	results, err := b.Query(ctx, []float32{1, 0}, 10, where)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "go-doc", results[0].DocID)
}

func TestHNSWBackend_UpsertRejectsDimensionMismatch(t *testing.T) {
	b := NewHNSWBackend(Config{Dimensions: 3})
	err := b.Upsert(context.Background(), []Document{{ID: "a", Embedding: []float32{1, 0}}})
	require.Error(t, err)
	assert.Equal(t, searcherrors.KindEncoding, searcherrors.GetKind(err))
}

func TestHNSWBackend_SupportsEqualityOpsNotRegex(t *testing.T) {
	b := NewHNSWBackend(Config{Dimensions: 2})
	assert.True(t, b.Supports(filter.OpEq))
	assert.True(t, b.Supports(filter.OpIn))
	assert.False(t, b.Supports(filter.OpRegex))
}

func TestHNSWBackend_ListIsOrderedAndPaginated(t *testing.T) {
	b := NewHNSWBackend(Config{Dimensions: 1})
	ctx := context.Background()
	require.NoError(t, b.Upsert(ctx, []Document{
		{ID: "b", Embedding: []float32{1}},
		{ID: "a", Embedding: []float32{1}},
		{ID: "c", Embedding: []float32{1}},
	}))

	page, err := b.List(ctx, 0, 2)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "a", page[0].ID)
	assert.Equal(t, "b", page[1].ID)
}

func TestHNSWBackend_ClosedBackendRejectsOperations(t *testing.T) {
	b := NewHNSWBackend(Config{Dimensions: 2})
	require.NoError(t, b.Close())

	err := b.Upsert(context.Background(), []Document{{ID: "a", Embedding: []float32{1, 0}}})
	assert.Error(t, err)
}
