package query

import (
	"sort"

	"github.com/gitnexus/gitnexus/internal/types"
)

// SearchHit is one result of Search, joined back to the node graph.
type SearchHit struct {
	FilePath string
	Score    float64
	File     *types.FileNode
	Expanded []types.Relation // only populated when depth == "full"
}

// Search is the BM25-seeded lookup: results join back to the node graph
// by file path and optionally expand with outgoing edges when depth is
// "full". When the exact-term ranking finds nothing, prefix and then
// fuzzy term matching are tried so a slightly-off query still seeds the
// lookup.
func (s *Surface) Search(q string, k int, depth string) []SearchHit {
	if s.bm == nil {
		return nil
	}
	results := s.bm.Search(q, k)
	if len(results) == 0 {
		results = s.bm.SearchPrefix(q, k)
	}
	if len(results) == 0 {
		fraction := 0.2
		if s.cfg != nil && s.cfg.Search.FuzzyEditFraction > 0 {
			fraction = s.cfg.Search.FuzzyEditFraction
		}
		results = s.bm.SearchFuzzy(q, fraction, k)
	}
	hits := make([]SearchHit, 0, len(results))
	for _, r := range results {
		hit := SearchHit{FilePath: r.FilePath, Score: r.Score}
		if f, ok := s.store.GetFile(types.FileNodeID(r.FilePath)); ok {
			hit.File = f
		}
		if depth == "full" {
			hit.Expanded = s.outgoingFromFile(r.FilePath)
		}
		hits = append(hits, hit)
	}
	return hits
}

// File looks up one file node by its exact repo-relative path, alongside
// the outgoing edges of symbols it defines. Unlike
// Search, this is an exact lookup rather than a BM25-ranked one.
func (s *Surface) File(path string) (*types.FileNode, []types.Relation, bool) {
	f, ok := s.store.GetFile(types.FileNodeID(path))
	if !ok {
		return nil, nil, false
	}
	return f, s.outgoingFromFile(path), true
}

// outgoingFromFile collects every outgoing relation whose source is a
// symbol defined in filePath, sorted for deterministic output.
func (s *Surface) outgoingFromFile(filePath string) []types.Relation {
	origins := make(map[string]bool)
	for _, sym := range s.store.Symbols() {
		if sym.FilePath == filePath {
			origins[sym.ID] = true
		}
	}
	var out []types.Relation
	for _, r := range s.store.Relations() {
		if origins[r.From] {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].From != out[j].From {
			return out[i].From < out[j].From
		}
		if out[i].Type != out[j].Type {
			return out[i].Type < out[j].Type
		}
		return out[i].To < out[j].To
	})
	return out
}
