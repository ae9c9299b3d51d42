package vectorstore

import (
	"context"
	"encoding/gob"
	"io"
	"sort"
)

func init() {
	gob.Register(string(""))
	gob.Register(bool(false))
	gob.Register(int(0))
	gob.Register(int64(0))
	gob.Register(float64(0))
	gob.Register(float32(0))
	gob.Register([]any{})
	gob.Register([]string{})
	gob.Register([]int{})
	gob.Register([]float64{})
}

// persistedState is the on-disk gob shape for a HNSWBackend snapshot.
// Only documents are serialized; the HNSW graph itself is rebuilt by
// replaying Upsert on load, since coder/hnsw's graph is not gob-safe.
type persistedState struct {
	Config Config
	Docs   []Document
}

// SaveTo writes a gob snapshot of the backend's corpus. The snapshot
// captures documents, not index structure; LoadHNSWBackend rebuilds
// the graph from it.
func (b *HNSWBackend) SaveTo(w io.Writer) error {
	b.mu.RLock()
	ids := make([]string, 0, len(b.docs))
	for id := range b.docs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	docs := make([]Document, 0, len(ids))
	for _, id := range ids {
		docs = append(docs, b.docs[id])
	}
	cfg := b.config
	b.mu.RUnlock()

	return gob.NewEncoder(w).Encode(persistedState{Config: cfg, Docs: docs})
}

// LoadHNSWBackend reconstructs a HNSWBackend from a snapshot written by
// SaveTo, re-inserting every document into a fresh graph.
func LoadHNSWBackend(r io.Reader) (*HNSWBackend, error) {
	var state persistedState
	if err := gob.NewDecoder(r).Decode(&state); err != nil {
		return nil, err
	}
	b := NewHNSWBackend(state.Config)
	if len(state.Docs) > 0 {
		if err := b.Upsert(context.Background(), state.Docs); err != nil {
			return nil, err
		}
	}
	return b, nil
}
