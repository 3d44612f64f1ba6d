package vector

import (
	"sort"

	"github.com/gitnexus/gitnexus/internal/graph"
	"github.com/gitnexus/gitnexus/internal/types"
)

// BuildIndex constructs an Index from every {nodeId, embedding} currently
// recorded in store, in sorted node-id order so the resulting graph (and
// therefore approximate search results) is reproducible across runs with
// the same graph content.
func BuildIndex(store *graph.Store, dim, m, ef int) *Index {
	idx := NewIndex(dim, m, ef)
	ids := make([]string, 0)
	for _, sym := range store.Symbols() {
		if _, ok := store.Embedding(sym.ID); ok {
			ids = append(ids, sym.ID)
		}
	}
	sort.Strings(ids)
	for _, id := range ids {
		e, _ := store.Embedding(id)
		idx.Add(id, e.Embedding)
	}
	return idx
}

// ReplayCachedEmbeddings restores previously computed {nodeId, embedding}
// records into store, skipping any whose node id no longer exists in the
// current graph (a stale record for a deleted or renamed symbol is
// dropped). Must run before the staging-directory swap.
func ReplayCachedEmbeddings(store *graph.Store, cached []CachedEmbedding) (restored, skipped int) {
	for _, c := range cached {
		if !store.HasNode(c.NodeID) {
			skipped++
			continue
		}
		store.AddEmbedding(&types.CodeEmbedding{NodeID: c.NodeID, Embedding: c.Embedding})
		restored++
	}
	return restored, skipped
}

// CachedEmbedding is the on-disk replay record for one previously embedded
// node.
type CachedEmbedding struct {
	NodeID    string
	Embedding []float32
}
