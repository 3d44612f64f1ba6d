package vector

import (
	"sort"
)

// bruteForceThreshold is the node count below which Search scans every
// vector exactly instead of walking the approximate graph; small indices
// gain nothing from the graph's approximation and exact search is simpler
// to reason about.
const bruteForceThreshold = 512

// Result is one ranked (nodeId, distance) nearest-neighbor hit.
type Result struct {
	NodeID   string
	Distance float64
}

// Index is a pure-Go brute-force/HNSW-lite cosine similarity index over
// per-node embeddings. No vector/HNSW library appears anywhere in the
// example pack, so this is built from scratch: a single-layer navigable
// small-world graph (HNSW without the logarithmic layer hierarchy) that
// falls back to an exact scan below bruteForceThreshold.
type Index struct {
	dim int
	m   int // max neighbors per node
	ef  int // candidate list size used for both construction and search

	ids       []string
	vectors   [][]float32
	idPos     map[string]int
	neighbors [][]int // adjacency, parallel to ids/vectors
}

// NewIndex returns an empty index. m bounds each node's neighbor list
// (default 16 via Config.Embed.HNSWM), ef bounds the candidate
// frontier explored during construction and search (default 64 via
// Config.Embed.HNSWEfSearch). Construction is a deterministic function of
// insertion order, no RNG involved, so search results are reproducible
// without a seed.
func NewIndex(dim, m, ef int) *Index {
	if m <= 0 {
		m = 16
	}
	if ef <= 0 {
		ef = 64
	}
	return &Index{
		dim:   dim,
		m:     m,
		ef:    ef,
		idPos: make(map[string]int),
	}
}

// Len reports how many vectors are indexed.
func (idx *Index) Len() int {
	return len(idx.ids)
}

// Add inserts one {nodeId, embedding} pair, connecting it into the
// approximate graph via a greedy search from the existing entry point.
// Re-adding an existing id overwrites its vector but leaves prior edges in
// place; callers doing a full rebuild should construct a fresh Index.
func (idx *Index) Add(nodeID string, embedding []float32) {
	if pos, ok := idx.idPos[nodeID]; ok {
		idx.vectors[pos] = embedding
		return
	}
	pos := len(idx.ids)
	idx.idPos[nodeID] = pos
	idx.ids = append(idx.ids, nodeID)
	idx.vectors = append(idx.vectors, embedding)
	idx.neighbors = append(idx.neighbors, nil)

	if pos == 0 {
		return
	}

	candidates := idx.greedySearch(embedding, idx.ef, pos)
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].Distance < candidates[j].Distance })
	if len(candidates) > idx.m {
		candidates = candidates[:idx.m]
	}
	for _, c := range candidates {
		other := idx.idPos[c.NodeID]
		idx.neighbors[pos] = append(idx.neighbors[pos], other)
		if len(idx.neighbors[other]) < idx.m {
			idx.neighbors[other] = append(idx.neighbors[other], pos)
		}
	}
}

// Search returns up to k nearest neighbors to query by cosine distance,
// ascending (closest first).
func (idx *Index) Search(query []float32, k int) []Result {
	if len(idx.ids) == 0 || k <= 0 {
		return nil
	}
	var results []Result
	if len(idx.ids) <= bruteForceThreshold {
		results = idx.bruteForce(query)
	} else {
		results = idx.greedySearch(query, idx.ef, -1)
	}
	sort.Slice(results, func(i, j int) bool {
		if results[i].Distance != results[j].Distance {
			return results[i].Distance < results[j].Distance
		}
		return results[i].NodeID < results[j].NodeID
	})
	if k < len(results) {
		results = results[:k]
	}
	return results
}

func (idx *Index) bruteForce(query []float32) []Result {
	out := make([]Result, 0, len(idx.ids))
	for i, id := range idx.ids {
		out = append(out, Result{NodeID: id, Distance: cosineDistance(query, idx.vectors[i])})
	}
	return out
}

// greedySearch walks the graph from the deterministic entry point (node 0),
// expanding the ef-closest frontier until it stops improving, and returns
// that frontier (at most ef of the visited nodes). excludePos, when >= 0, omits that position from the
// result (used while inserting a node that is already present in ids).
func (idx *Index) greedySearch(query []float32, ef, excludePos int) []Result {
	visited := make(map[int]bool)
	entry := 0
	if entry == excludePos && len(idx.ids) > 1 {
		entry = 1
	}
	visited[entry] = true
	frontier := []Result{{NodeID: idx.ids[entry], Distance: cosineDistance(query, idx.vectors[entry])}}

	improved := true
	for improved {
		improved = false
		sort.Slice(frontier, func(i, j int) bool { return frontier[i].Distance < frontier[j].Distance })
		if len(frontier) > ef {
			frontier = frontier[:ef]
		}
		for _, f := range frontier {
			pos := idx.idPos[f.NodeID]
			for _, n := range idx.neighbors[pos] {
				if n == excludePos || visited[n] {
					continue
				}
				visited[n] = true
				frontier = append(frontier, Result{NodeID: idx.ids[n], Distance: cosineDistance(query, idx.vectors[n])})
				improved = true
			}
		}
	}
	return frontier
}
