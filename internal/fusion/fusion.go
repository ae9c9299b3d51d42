// Package fusion merges ranked lists from independent retrieval
// methods (lexical and dense) into one ranked list, either by
// Reciprocal Rank Fusion or by weighted min-max score normalization.
package fusion

import "sort"

// DefaultRRFConstant is the classic k=60 smoothing constant.
const DefaultRRFConstant = 60

// ScoredDoc is one (doc_id, score) pair from a single ranked list.
type ScoredDoc struct {
	DocID string
	Score float64
}

// Fused is one document's fused score in a merged result.
type Fused struct {
	DocID string
	Score float64
}

// ReciprocalRankFusion merges ranked lists A and B by RRF: a document
// at 1-based rank r in a list contributes 1/(k+r); a document present
// in both lists sums both contributions. Output is sorted by
// descending score, ties broken by ascending doc_id.
func ReciprocalRankFusion(a, b []ScoredDoc, k int) []Fused {
	if k <= 0 {
		k = DefaultRRFConstant
	}
	scores := make(map[string]float64)
	order := make([]string, 0, len(a)+len(b))

	accumulate := func(list []ScoredDoc) {
		for i, d := range list {
			rank := i + 1
			if _, seen := scores[d.DocID]; !seen {
				order = append(order, d.DocID)
			}
			scores[d.DocID] += 1.0 / float64(k+rank)
		}
	}
	accumulate(a)
	accumulate(b)

	return sortedFused(order, scores)
}

// WeightedScoreFusion min-max normalizes each list's scores to [0,1]
// independently, then combines them as weightA*normA(d) + weightB*normB(d).
// A document absent from a list contributes 0 for that list's term.
func WeightedScoreFusion(a, b []ScoredDoc, weightA, weightB float64) []Fused {
	normA := minMaxNormalize(a)
	normB := minMaxNormalize(b)

	scores := make(map[string]float64, len(normA)+len(normB))
	order := make([]string, 0, len(normA)+len(normB))

	addTerm := func(norm map[string]float64, weight float64) {
		for docID, n := range norm {
			if _, seen := scores[docID]; !seen {
				order = append(order, docID)
			}
			scores[docID] += weight * n
		}
	}
	addTerm(normA, weightA)
	addTerm(normB, weightB)

	return sortedFused(order, scores)
}

func minMaxNormalize(list []ScoredDoc) map[string]float64 {
	norm := make(map[string]float64, len(list))
	if len(list) == 0 {
		return norm
	}
	min, max := list[0].Score, list[0].Score
	for _, d := range list {
		if d.Score < min {
			min = d.Score
		}
		if d.Score > max {
			max = d.Score
		}
	}
	spread := max - min
	for _, d := range list {
		if spread == 0 {
			norm[d.DocID] = 1.0
			continue
		}
		norm[d.DocID] = (d.Score - min) / spread
	}
	return norm
}

func sortedFused(ids []string, scores map[string]float64) []Fused {
	results := make([]Fused, 0, len(ids))
	for _, id := range ids {
		results = append(results, Fused{DocID: id, Score: scores[id]})
	}
	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].DocID < results[j].DocID
	})
	return results
}
