// Package diversify implements Maximal Marginal Relevance selection:
// a greedy re-ranking that trades relevance against redundancy
// against already-selected results.
package diversify

import (
	"math"

	"github.com/opendocs-search/hybridcore/internal/tokenizer"
)

// Candidate is one pre-diversification ranked hit. Embedding is
// optional; when nil for any candidate, similarity falls back to
// Jaccard over tokenized Content for the whole selection.
type Candidate struct {
	DocID        string
	Content      string
	Score        float64 // relevance
	Embedding    []float32
	OriginalRank int
}

// Select runs greedy MMR over candidates, returning up to topK
// candidates in selection order. lambda=1 yields relevance-only
// order; lambda=0 yields diversity-first, still anchored on the
// top-relevance seed. An empty candidates slice yields empty output.
func Select(candidates []Candidate, topK int, lambda float64) []Candidate {
	if len(candidates) == 0 || topK <= 0 {
		return []Candidate{}
	}

	useEmbeddings := allHaveEmbeddings(candidates)

	remaining := make([]Candidate, len(candidates))
	copy(remaining, candidates)

	// Step 1: seed with the highest-relevance candidate (ties by
	// original rank, lower first, since input is assumed pre-sorted
	// by relevance; we still guard explicitly for safety).
	seedIdx := 0
	for i := 1; i < len(remaining); i++ {
		if betterSeed(remaining[i], remaining[seedIdx]) {
			seedIdx = i
		}
	}

	selected := []Candidate{remaining[seedIdx]}
	remaining = append(remaining[:seedIdx], remaining[seedIdx+1:]...)

	for len(selected) < topK && len(remaining) > 0 {
		bestIdx := -1
		bestScore := math.Inf(-1)

		for i, d := range remaining {
			maxSim := 0.0
			for _, s := range selected {
				sim := similarity(d, s, useEmbeddings)
				if sim > maxSim {
					maxSim = sim
				}
			}
			mmr := lambda*d.Score - (1-lambda)*maxSim
			if mmr > bestScore || (mmr == bestScore && bestIdx >= 0 && d.OriginalRank < remaining[bestIdx].OriginalRank) {
				bestScore = mmr
				bestIdx = i
			}
		}

		selected = append(selected, remaining[bestIdx])
		remaining = append(remaining[:bestIdx], remaining[bestIdx+1:]...)
	}

	return selected
}

func betterSeed(a, b Candidate) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	return a.OriginalRank < b.OriginalRank
}

func allHaveEmbeddings(candidates []Candidate) bool {
	for _, c := range candidates {
		if len(c.Embedding) == 0 {
			return false
		}
	}
	return true
}

func similarity(a, b Candidate, useEmbeddings bool) float64 {
	if useEmbeddings {
		return cosineSimilarity(a.Embedding, b.Embedding)
	}
	return jaccard(tokenizer.Tokenize(a.Content), tokenizer.Tokenize(b.Content))
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		av, bv := float64(a[i]), float64(b[i])
		dot += av * bv
		normA += av * av
		normB += bv * bv
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

func jaccard(a, b []string) float64 {
	setA := toSet(a)
	setB := toSet(b)
	if len(setA) == 0 && len(setB) == 0 {
		return 0
	}

	intersection := 0
	for t := range setA {
		if setB[t] {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

func toSet(tokens []string) map[string]bool {
	set := make(map[string]bool, len(tokens))
	for _, t := range tokens {
		set[t] = true
	}
	return set
}
