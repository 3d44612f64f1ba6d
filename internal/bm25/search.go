package bm25

import (
	"sort"
	"strings"

	"github.com/hbollon/go-edlib"

	"github.com/gitnexus/gitnexus/internal/debug"
)

// vocabulary returns every distinct content+name token across the index,
// sorted, for prefix/fuzzy term expansion.
func (idx *Index) vocabulary() []string {
	set := make(map[string]bool)
	for _, d := range idx.Docs {
		for t := range d.ContentTokens {
			set[t] = true
		}
		for t := range d.NameTokens {
			set[t] = true
		}
	}
	terms := make([]string, 0, len(set))
	for t := range set {
		terms = append(terms, t)
	}
	sort.Strings(terms)
	return terms
}

// SearchPrefix matches every vocabulary term starting with prefix and ranks
// the documents containing them via rankByTermSet.
func (idx *Index) SearchPrefix(prefix string, k int) []Result {
	prefix = strings.ToLower(prefix)
	if prefix == "" {
		return nil
	}
	var matched []string
	for _, t := range idx.vocabulary() {
		if strings.HasPrefix(t, prefix) {
			matched = append(matched, t)
		}
	}
	return idx.rankByTermSet(matched, k)
}

// fuzzyEditFraction is the default maximum normalized edit distance for a
// fuzzy term match.
const fuzzyEditFraction = 0.2

// SearchFuzzy matches vocabulary terms within editFraction normalized edit
// distance of term (using go-edlib's Levenshtein similarity) and ranks
// documents containing any matched term.
func (idx *Index) SearchFuzzy(term string, editFraction float64, k int) []Result {
	if editFraction <= 0 {
		editFraction = fuzzyEditFraction
	}
	term = strings.ToLower(term)
	var matched []string
	for _, t := range idx.vocabulary() {
		similarity, err := edlib.StringsSimilarity(term, t, edlib.Levenshtein)
		if err != nil {
			debug.Printf("bm25: edlib similarity(%q,%q): %v", term, t, err)
			continue
		}
		if 1-float64(similarity) <= editFraction {
			matched = append(matched, t)
		}
	}
	return idx.rankByTermSet(matched, k)
}

// rankByTermSet scores each document by the summed term frequency of
// whichever matched terms it contains, content occurrences counting once
// and name occurrences weighted by NameBoost, breaking ties by first-seen
// order.
func (idx *Index) rankByTermSet(terms []string, k int) []Result {
	if len(terms) == 0 {
		return nil
	}
	type scored struct {
		path  string
		score float64
		order int
	}
	var results []scored
	for order, path := range idx.Order {
		d := idx.Docs[path]
		score := 0.0
		for _, t := range terms {
			if d.ContentTokens[t] > 0 {
				score += float64(d.ContentTokens[t])
			}
			if d.NameTokens[t] > 0 {
				score += idx.NameBoost * float64(d.NameTokens[t])
			}
		}
		if score <= 0 {
			continue
		}
		results = append(results, scored{path: path, score: score, order: order})
	}
	sort.Slice(results, func(i, j int) bool {
		if results[i].score != results[j].score {
			return results[i].score > results[j].score
		}
		return results[i].order < results[j].order
	})
	if k > 0 && len(results) > k {
		results = results[:k]
	}
	out := make([]Result, len(results))
	for i, r := range results {
		out[i] = Result{FilePath: r.path, Score: r.score, Rank: i}
	}
	return out
}
