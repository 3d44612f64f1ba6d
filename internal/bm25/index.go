package bm25

import (
	"math"
	"sort"
)

// bm25K1 and bm25B are the conventional Okapi BM25 free parameters.
const (
	bm25K1 = 1.2
	bm25B  = 0.75
)

// document is one indexed BM25 document: (id = filePath, content = full
// bytes, name = basename).
type document struct {
	FilePath      string         `json:"filePath"`
	ContentTokens map[string]int `json:"contentTokens"`
	NameTokens    map[string]int `json:"nameTokens"`
	ContentLen    int            `json:"contentLen"`
	NameLen       int            `json:"nameLen"`
}

// Index is a two-field (content, name) BM25 index over File documents, with
// the name field boosted by Config.Search.NameFieldBoost (default 2.0).
type Index struct {
	Docs      map[string]*document `json:"docs"`
	Order     []string             `json:"order"` // insertion order, for first-seen tie-breaking
	NameBoost float64              `json:"nameBoost"`
	Stemming  bool                 `json:"stemming"`

	contentDF map[string]int
	nameDF    map[string]int
}

// New returns an empty index. nameBoost defaults to 2.0 when <= 0.
func New(nameBoost float64, stemming bool) *Index {
	if nameBoost <= 0 {
		nameBoost = 2.0
	}
	return &Index{
		Docs:      make(map[string]*document),
		NameBoost: nameBoost,
		Stemming:  stemming,
		contentDF: make(map[string]int),
		nameDF:    make(map[string]int),
	}
}

// Add indexes one document. name is typically the file's basename.
func (idx *Index) Add(filePath, name, content string) {
	if _, exists := idx.Docs[filePath]; !exists {
		idx.Order = append(idx.Order, filePath)
	}
	contentTokens := Tokenize(content, idx.Stemming)
	nameTokens := Tokenize(name, idx.Stemming)

	d := &document{
		FilePath:      filePath,
		ContentTokens: termFreq(contentTokens),
		NameTokens:    termFreq(nameTokens),
		ContentLen:    len(contentTokens),
		NameLen:       len(nameTokens),
	}
	idx.Docs[filePath] = d
	idx.reindexDF()
}

func termFreq(tokens []string) map[string]int {
	freq := make(map[string]int, len(tokens))
	for _, t := range tokens {
		freq[t]++
	}
	return freq
}

// reindexDF recomputes document frequencies from scratch. BM25 indices in
// this system are built once per ingestion run and queried many times, so
// paying an O(docs) recompute on each Add keeps Search's idf lookup O(1)
// without a separate "build" step callers must remember to invoke.
func (idx *Index) reindexDF() {
	idx.contentDF = make(map[string]int)
	idx.nameDF = make(map[string]int)
	for _, d := range idx.Docs {
		for t := range d.ContentTokens {
			idx.contentDF[t]++
		}
		for t := range d.NameTokens {
			idx.nameDF[t]++
		}
	}
}

// Result is one ranked hit.
type Result struct {
	FilePath string
	Score    float64
	Rank     int
}

// avgLen returns the mean document length across a field, or 0 if empty.
func (idx *Index) avgLen(field func(*document) int) float64 {
	if len(idx.Docs) == 0 {
		return 0
	}
	total := 0
	for _, d := range idx.Docs {
		total += field(d)
	}
	return float64(total) / float64(len(idx.Docs))
}

// scoreField computes the Okapi BM25 score for query terms against one
// field of one document.
func scoreField(terms []string, tf map[string]int, df map[string]int, docLen int, avgdl float64, n int) float64 {
	if n == 0 || avgdl == 0 {
		return 0
	}
	score := 0.0
	for _, term := range terms {
		f := float64(tf[term])
		if f == 0 {
			continue
		}
		d := float64(df[term])
		idf := math.Log((float64(n)-d+0.5)/(d+0.5) + 1)
		num := f * (bm25K1 + 1)
		den := f + bm25K1*(1-bm25B+bm25B*float64(docLen)/avgdl)
		score += idf * num / den
	}
	return score
}

// Search ranks every document against query using BM25 over both fields,
// the name field weighted by NameBoost, returning up to k results sorted
// descending by score with ties broken by first-seen order.
func (idx *Index) Search(query string, k int) []Result {
	terms := Tokenize(query, idx.Stemming)
	if len(terms) == 0 {
		return nil
	}
	avgContentLen := idx.avgLen(func(d *document) int { return d.ContentLen })
	avgNameLen := idx.avgLen(func(d *document) int { return d.NameLen })
	n := len(idx.Docs)

	type scored struct {
		path  string
		score float64
		order int
	}
	var results []scored
	for order, path := range idx.Order {
		d := idx.Docs[path]
		contentScore := scoreField(terms, d.ContentTokens, idx.contentDF, d.ContentLen, avgContentLen, n)
		nameScore := scoreField(terms, d.NameTokens, idx.nameDF, d.NameLen, avgNameLen, n)
		total := contentScore + idx.NameBoost*nameScore
		if total <= 0 {
			continue
		}
		results = append(results, scored{path: path, score: total, order: order})
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
