// Package bm25 implements a hand-rolled Okapi BM25 lexical index with
// lazy rebuild semantics: mutations flip a dirty flag in O(1) amortized
// time, and the postings/df/avgdl state is rebuilt in one pass the
// first time a search observes the dirty index.
package bm25

import (
	"math"
	"sort"
	"sync"

	"github.com/opendocs-search/hybridcore/internal/tokenizer"
)

// DefaultK1 and DefaultB are the classic Okapi BM25 tuning constants.
const (
	DefaultK1 = 1.5
	DefaultB  = 0.75
)

// Index is a single-writer, multi-reader BM25 lexical index. Add and
// Remove mutate the document snapshot and mark the index dirty without
// touching postings; EnsureBuilt rebuilds postings/df/avgdl from the
// snapshot the first time it observes dirty state, and Search always
// calls EnsureBuilt before scoring.
type Index struct {
	k1 float64
	b  float64

	mu    sync.RWMutex
	docs  map[string]string // doc_id -> content, the rebuild source of truth
	dirty bool

	// built state, valid only when dirty == false
	df           map[string]int
	postings     map[string][]PostingEntry
	docLengths   map[string]int
	avgdl        float64
	rebuildCount int
}

// New creates an empty Index with the given BM25 constants.
func New(k1, b float64) *Index {
	return &Index{
		k1:         k1,
		b:          b,
		docs:       make(map[string]string),
		df:         make(map[string]int),
		postings:   make(map[string][]PostingEntry),
		docLengths: make(map[string]int),
	}
}

// NewDefault creates an Index using DefaultK1/DefaultB.
func NewDefault() *Index {
	return New(DefaultK1, DefaultB)
}

// Add registers or replaces a document's content and marks the index
// dirty. It does not rebuild postings.
func (ix *Index) Add(docID, content string) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.docs[docID] = content
	ix.dirty = true
}

// Remove deletes a document from the corpus snapshot and marks the
// index dirty. Removing an absent id is a no-op.
func (ix *Index) Remove(docID string) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	if _, ok := ix.docs[docID]; !ok {
		return
	}
	delete(ix.docs, docID)
	ix.dirty = true
}

// EnsureBuilt rebuilds postings/df/avgdl from the current document
// snapshot if the index is dirty. It is safe to call on every search;
// a clean index returns immediately without taking the write lock.
func (ix *Index) EnsureBuilt() {
	ix.mu.RLock()
	dirty := ix.dirty
	ix.mu.RUnlock()
	if !dirty {
		return
	}

	ix.mu.Lock()
	defer ix.mu.Unlock()
	if !ix.dirty {
		return // another writer rebuilt first
	}
	ix.rebuild()
	ix.dirty = false
	ix.rebuildCount++
}

// rebuild recomputes df/postings/avgdl/docLengths from ix.docs. Caller
// must hold the write lock.
func (ix *Index) rebuild() {
	df := make(map[string]int)
	postings := make(map[string][]PostingEntry)
	docLengths := make(map[string]int, len(ix.docs))

	totalLength := 0
	for docID, content := range ix.docs {
		terms := tokenizer.Tokenize(content)
		docLengths[docID] = len(terms)
		totalLength += len(terms)

		tf := make(map[string]int, len(terms))
		for _, t := range terms {
			tf[t]++
		}
		for term, count := range tf {
			df[term]++
			postings[term] = append(postings[term], PostingEntry{
				DocID:         docID,
				TermFrequency: count,
				DocLength:     docLengths[docID],
			})
		}
	}

	avgdl := 0.0
	if len(ix.docs) > 0 {
		avgdl = float64(totalLength) / float64(len(ix.docs))
	}

	ix.df = df
	ix.postings = postings
	ix.docLengths = docLengths
	ix.avgdl = avgdl
}

// Search scores documents containing at least one query token and
// returns the top_k by descending BM25 score, breaking ties by
// ascending doc_id. EnsureBuilt is called first. An empty corpus or a
// query with no recognized tokens returns an empty list.
func (ix *Index) Search(query string, topK int) []ScoredDoc {
	ix.EnsureBuilt()

	ix.mu.RLock()
	defer ix.mu.RUnlock()

	if topK <= 0 || len(ix.docs) == 0 {
		return []ScoredDoc{}
	}

	queryTerms := tokenizer.Tokenize(query)
	if len(queryTerms) == 0 {
		return []ScoredDoc{}
	}

	n := len(ix.docs)
	scores := make(map[string]float64)

	for _, term := range queryTerms {
		entries, ok := ix.postings[term]
		if !ok {
			continue
		}
		idf := idf(n, ix.df[term])
		for _, entry := range entries {
			tf := float64(entry.TermFrequency)
			denom := tf + ix.k1*(1-ix.b+ix.b*float64(entry.DocLength)/ix.avgdl)
			scores[entry.DocID] += idf * (tf * (ix.k1 + 1)) / denom
		}
	}

	results := make([]ScoredDoc, 0, len(scores))
	for docID, score := range scores {
		results = append(results, ScoredDoc{DocID: docID, Score: score})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].DocID < results[j].DocID
	})

	if len(results) > topK {
		results = results[:topK]
	}
	return results
}

// idf computes the Okapi BM25 inverse document frequency with a +1
// floor guarding against negative values for very common terms.
func idf(n, df int) float64 {
	return math.Log((float64(n)-float64(df)+0.5)/(float64(df)+0.5) + 1)
}

// Stats reports the index's current built-state summary.
func (ix *Index) Stats() Stats {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return Stats{
		DocumentCount: len(ix.docs),
		TermCount:     len(ix.df),
		AvgDocLength:  ix.avgdl,
		RebuildCount:  ix.rebuildCount,
		Dirty:         ix.dirty,
	}
}

// AllIDs returns every document id currently in the corpus snapshot,
// used by consistency checks against the vector backend.
func (ix *Index) AllIDs() []string {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	ids := make([]string, 0, len(ix.docs))
	for id := range ix.docs {
		ids = append(ids, id)
	}
	return ids
}
