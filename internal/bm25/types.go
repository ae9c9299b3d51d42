package bm25

// PostingEntry records one document's contribution to a term's posting
// list: how often the term occurs in the document, and the document's
// total token count.
type PostingEntry struct {
	DocID         string
	TermFrequency int
	DocLength     int
}

// ScoredDoc is one ranked BM25 hit.
type ScoredDoc struct {
	DocID string
	Score float64
}

// Stats summarizes the current built state of an Index.
type Stats struct {
	DocumentCount int
	TermCount     int
	AvgDocLength  float64
	RebuildCount  int
	Dirty         bool
}
