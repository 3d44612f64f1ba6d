package query

import (
	"context"
	"sort"
)

// HybridResult is one fused hit from HybridSearch, carrying provenance
// (sources is a subset of {bm25, semantic}) so a caller can tell which
// underlying index surfaced it.
type HybridResult struct {
	FilePath    string
	Score       float64
	Sources     []string
	BM25Score   float64
	VectorScore float64
}

// rankedEntry is one position in a single ranked list, before fusion.
type rankedEntry struct {
	key   string
	score float64
}

// HybridSearch merges BM25 and vector-search rankings via Reciprocal Rank
// Fusion with constant K. Vector
// search is skipped when no vector index or embedder provider is
// configured, degrading gracefully to BM25-only ranking.
func (s *Surface) HybridSearch(ctx context.Context, q string, k int) []HybridResult {
	if k <= 0 {
		k = 10
	}
	pool := k * 4
	if pool < 50 {
		pool = 50
	}

	var bmRanks []rankedEntry
	if s.bm != nil {
		for _, r := range s.bm.Search(q, pool) {
			bmRanks = append(bmRanks, rankedEntry{key: r.FilePath, score: r.Score})
		}
	}

	vecRanks := s.vectorFileRanks(ctx, q, pool)

	return rrfMerge(s.rrfConstant(), k, bmRanks, vecRanks)
}

// vectorFileRanks embeds q, searches the vector index, and collapses
// symbol-level hits down to one entry per file (first, i.e. closest,
// occurrence wins) since BM25's documents are file-granular and the two
// ranked lists must share a key space to be fused.
func (s *Surface) vectorFileRanks(ctx context.Context, q string, pool int) []rankedEntry {
	if s.vec == nil || s.embedder == nil {
		return nil
	}
	embedding, err := s.embedder.Embed(ctx, q)
	if err != nil {
		return nil
	}
	seen := make(map[string]bool)
	var out []rankedEntry
	for _, hit := range s.vec.Search(embedding, pool) {
		fp := s.filePathForNode(hit.NodeID)
		if fp == "" || seen[fp] {
			continue
		}
		seen[fp] = true
		out = append(out, rankedEntry{key: fp, score: 1 - hit.Distance})
	}
	return out
}

func (s *Surface) filePathForNode(id string) string {
	if sym, ok := s.store.GetSymbol(id); ok {
		return sym.FilePath
	}
	if f, ok := s.store.GetFile(id); ok {
		return f.FilePath
	}
	return ""
}

// rrfMerge fuses bm and vec (each already sorted best-first) into at most
// limit HybridResults, scored by Σ 1/(K + rank + 1) across the lists a key
// appears in. Ties are broken by first-seen order across the two lists
// (bm scanned before vec), preserved by the stable sort.
func rrfMerge(k, limit int, bm, vec []rankedEntry) []HybridResult {
	type agg struct {
		score             float64
		hasBM, hasVec     bool
		bmScore, vecScore float64
	}
	order := make([]string, 0, len(bm)+len(vec))
	aggs := make(map[string]*agg)
	ensure := func(key string) *agg {
		a, ok := aggs[key]
		if !ok {
			a = &agg{}
			aggs[key] = a
			order = append(order, key)
		}
		return a
	}

	for rank, e := range bm {
		a := ensure(e.key)
		a.score += 1.0 / float64(k+rank+1)
		a.hasBM = true
		a.bmScore = e.score
	}
	for rank, e := range vec {
		a := ensure(e.key)
		a.score += 1.0 / float64(k+rank+1)
		a.hasVec = true
		a.vecScore = e.score
	}

	results := make([]HybridResult, 0, len(order))
	for _, key := range order {
		a := aggs[key]
		var sources []string
		if a.hasBM {
			sources = append(sources, "bm25")
		}
		if a.hasVec {
			sources = append(sources, "semantic")
		}
		results = append(results, HybridResult{
			FilePath:    key,
			Score:       a.score,
			Sources:     sources,
			BM25Score:   a.bmScore,
			VectorScore: a.vecScore,
		})
	}

	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if len(results) > limit {
		results = results[:limit]
	}
	return results
}
