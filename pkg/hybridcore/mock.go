package hybridcore

import (
	"context"
	"crypto/sha256"
	"math"

	"github.com/opendocs-search/hybridcore/internal/rerank"
	"github.com/opendocs-search/hybridcore/internal/tokenizer"
)

// HashEmbeddingModel is a deterministic, dependency-free EmbeddingModel
// for tests: it derives a unit-length vector from a SHA-256 hash of
// the input text, so the same text always embeds to the same vector
// and unrelated texts are (with overwhelming probability) not
// parallel. It makes no network or model calls.
type HashEmbeddingModel struct {
	Dimensions int
}

// NewHashEmbeddingModel creates a HashEmbeddingModel with the given
// vector width; dimensions <= 0 falls back to 32.
func NewHashEmbeddingModel(dimensions int) *HashEmbeddingModel {
	if dimensions <= 0 {
		dimensions = 32
	}
	return &HashEmbeddingModel{Dimensions: dimensions}
}

var _ EmbeddingModel = (*HashEmbeddingModel)(nil)

func (m *HashEmbeddingModel) EmbedQuery(_ context.Context, text string) ([]float32, error) {
	return hashVector(text, m.Dimensions), nil
}

func (m *HashEmbeddingModel) EmbedDocuments(_ context.Context, texts []string) ([][]float32, error) {
	vecs := make([][]float32, len(texts))
	for i, t := range texts {
		vecs[i] = hashVector(t, m.Dimensions)
	}
	return vecs, nil
}

func (m *HashEmbeddingModel) ModelID() string { return "hash-embedding-mock" }

// hashVector expands repeated SHA-256 rounds into dimensions floats in
// [-1, 1], then normalizes to unit length.
func hashVector(text string, dimensions int) []float32 {
	out := make([]float32, dimensions)
	seed := sha256.Sum256([]byte(text))
	block := seed
	idx := 0
	for i := 0; i < dimensions; i++ {
		if idx >= len(block) {
			block = sha256.Sum256(block[:])
			idx = 0
		}
		out[i] = float32(int8(block[idx]))/128.0
		idx++
	}

	var norm float64
	for _, v := range out {
		norm += float64(v) * float64(v)
	}
	if norm == 0 {
		return out
	}
	norm = math.Sqrt(norm)
	for i := range out {
		out[i] = float32(float64(out[i]) / norm)
	}
	return out
}

// HashCrossEncoderModel is a deterministic CrossEncoderModel for
// tests: it scores a (query, content) pair by the token overlap
// between them, scaled into [0, 1]. It makes no network calls and
// never fails, so it never exercises the reranker's degraded path —
// tests that need degraded behavior should use a failing stub.
type HashCrossEncoderModel struct{}

var _ rerank.Model = (*HashCrossEncoderModel)(nil)

func (HashCrossEncoderModel) ScorePairs(_ context.Context, pairs []rerank.Pair) ([]float64, error) {
	scores := make([]float64, len(pairs))
	for i, p := range pairs {
		scores[i] = overlapScore(p.Query, p.Content)
	}
	return scores, nil
}

func (HashCrossEncoderModel) MaxPairLength() int { return 512 }
func (HashCrossEncoderModel) ModelID() string    { return "hash-cross-encoder-mock" }

func overlapScore(query, content string) float64 {
	qTokens := tokenSet(query)
	if len(qTokens) == 0 {
		return 0
	}
	cTokens := tokenSet(content)
	hits := 0
	for t := range qTokens {
		if cTokens[t] {
			hits++
		}
	}
	return float64(hits) / float64(len(qTokens))
}

func tokenSet(text string) map[string]bool {
	tokens := tokenizer.Tokenize(text)
	set := make(map[string]bool, len(tokens))
	for _, t := range tokens {
		set[t] = true
	}
	return set
}
