// Package query implements the Query Surface: hybrid full-text + vector
// search with Reciprocal Rank Fusion, a minimal Cypher-style pass-through
// over the in-memory graph, impact analysis, and per-entity exploration.
// It sits directly on the ingestion pipeline's Result rather than the
// Badger-backed internal/persist store: the run that builds the graph is
// also the run that answers queries, so there is nothing to re-read.
package query

import (
	"github.com/gitnexus/gitnexus/internal/bm25"
	"github.com/gitnexus/gitnexus/internal/config"
	"github.com/gitnexus/gitnexus/internal/graph"
	"github.com/gitnexus/gitnexus/internal/vector"
)

// Surface is the single entry point the `serve` HTTP handlers and the
// `mcp` stdio adapter both wrap, so agents query one stable tool surface.
type Surface struct {
	store    *graph.Store
	bm       *bm25.Index
	vec      *vector.Index
	embedder vector.Provider
	cfg      *config.Config
}

// New returns a Surface over one ingested repository. bm, vec, and
// embedder may be nil; HybridSearch and Search degrade to BM25-only when
// vec or embedder is absent.
func New(store *graph.Store, bm *bm25.Index, vec *vector.Index, embedder vector.Provider, cfg *config.Config) *Surface {
	return &Surface{store: store, bm: bm, vec: vec, embedder: embedder, cfg: cfg}
}

func (s *Surface) rrfConstant() int {
	if s.cfg != nil && s.cfg.Search.RRFConstant > 0 {
		return s.cfg.Search.RRFConstant
	}
	return 60
}
