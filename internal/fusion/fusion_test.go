package fusion

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReciprocalRankFusion_DocInBothListsOutranksSingleList(t *testing.T) {
	a := []ScoredDoc{{DocID: "x", Score: 1}, {DocID: "y", Score: 0.5}}
	b := []ScoredDoc{{DocID: "x", Score: 0.9}, {DocID: "z", Score: 0.4}}

	result := ReciprocalRankFusion(a, b, DefaultRRFConstant)
	require.NotEmpty(t, result)
	assert.Equal(t, "x", result[0].DocID)
}

func TestReciprocalRankFusion_UsesDefaultKWhenZero(t *testing.T) {
	a := []ScoredDoc{{DocID: "a", Score: 1}}
	result := ReciprocalRankFusion(a, nil, 0)
	require.Len(t, result, 1)
	assert.InDelta(t, 1.0/61.0, result[0].Score, 1e-9)
}

func TestReciprocalRankFusion_TieBreaksByAscendingDocID(t *testing.T) {
	a := []ScoredDoc{{DocID: "b", Score: 1}, {DocID: "a", Score: 1}}
	result := ReciprocalRankFusion(a, nil, 60)
	require.Len(t, result, 2)
	assert.Equal(t, "a", result[0].DocID)
	assert.Equal(t, "b", result[1].DocID)
}

func TestReciprocalRankFusion_IsCommutative(t *testing.T) {
	a := []ScoredDoc{{DocID: "x", Score: 1}, {DocID: "y", Score: 0.5}}
	b := []ScoredDoc{{DocID: "x", Score: 0.9}, {DocID: "z", Score: 0.4}}

	ab := ReciprocalRankFusion(a, b, 60)
	ba := ReciprocalRankFusion(b, a, 60)
	assert.Equal(t, ab, ba)
}

func TestReciprocalRankFusion_IsIdempotentOnIdenticalInputs(t *testing.T) {
	a := []ScoredDoc{{DocID: "x", Score: 1}, {DocID: "y", Score: 0.5}}
	first := ReciprocalRankFusion(a, a, 60)
	second := ReciprocalRankFusion(a, a, 60)
	assert.Equal(t, first, second)
}

func TestWeightedScoreFusion_NormalizesAndWeighs(t *testing.T) {
	a := []ScoredDoc{{DocID: "x", Score: 10}, {DocID: "y", Score: 0}}
	b := []ScoredDoc{{DocID: "x", Score: 5}}

	result := WeightedScoreFusion(a, b, 0.5, 0.5)
	require.Len(t, result, 2)
	assert.Equal(t, "x", result[0].DocID)
	// x: normA=1.0, normB=1.0 (single-element list normalizes to 1.0) -> 0.5+0.5=1.0
	assert.InDelta(t, 1.0, result[0].Score, 1e-9)
}

func TestWeightedScoreFusion_DocAbsentFromListContributesZero(t *testing.T) {
	a := []ScoredDoc{{DocID: "x", Score: 10}}
	b := []ScoredDoc{{DocID: "y", Score: 10}}

	result := WeightedScoreFusion(a, b, 0.5, 0.5)
	scores := map[string]float64{}
	for _, r := range result {
		scores[r.DocID] = r.Score
	}
	assert.InDelta(t, 0.5, scores["x"], 1e-9)
	assert.InDelta(t, 0.5, scores["y"], 1e-9)
}
