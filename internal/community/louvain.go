// Package community implements the Community Detector: a
// Louvain-family modularity-maximizing clustering over the
// CALLS∪EXTENDS∪IMPLEMENTS subgraph, heuristic labeling, and cohesion.
// Plain structs and slices implementing the standard Louvain
// local-move/aggregate algorithm directly over internal/graph.
package community

import (
	"sort"

	"github.com/gitnexus/gitnexus/internal/graph"
	"github.com/gitnexus/gitnexus/internal/types"
)

// communityLabels restricts the detector's vertex set to {Function, Class,
// Method, Interface}.
var communityLabels = []types.NodeLabel{
	types.LabelFunction, types.LabelClass, types.LabelMethod, types.LabelInterface,
}

// weightedGraph is an undirected, simple (no self-loops, no parallel edges)
// graph over integer-indexed vertices, built once per detection run.
type weightedGraph struct {
	nodes  []string          // index -> symbol id, sorted for determinism
	index  map[string]int    // symbol id -> index
	adj    []map[int]float64 // index -> neighbor index -> weight
	degree []float64
	total  float64 // sum of all edge weights (= m in modularity formula)
}

// buildGraph collects eligible vertices and CALLS/EXTENDS/IMPLEMENTS edges
// between them from store, suppressing self-loops and collapsing parallel
// edges to weight 1.
func buildGraph(store *graph.Store) *weightedGraph {
	eligible := make(map[string]bool)
	for _, sym := range store.SymbolsByLabels(communityLabels...) {
		eligible[sym.ID] = true
	}

	ids := make([]string, 0, len(eligible))
	for id := range eligible {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	g := &weightedGraph{
		nodes: ids,
		index: make(map[string]int, len(ids)),
		adj:   make([]map[int]float64, len(ids)),
	}
	for i, id := range ids {
		g.index[id] = i
		g.adj[i] = make(map[int]float64)
	}

	seen := make(map[[2]int]bool)
	addEdge := func(a, b int) {
		if a == b {
			return
		}
		if a > b {
			a, b = b, a
		}
		key := [2]int{a, b}
		if seen[key] {
			return
		}
		seen[key] = true
		g.adj[a][b] += 1
		g.adj[b][a] += 1
		g.total++
	}

	for _, r := range store.Relations() {
		switch r.Type {
		case types.RelCalls, types.RelExtends, types.RelImplements:
		default:
			continue
		}
		a, ok1 := g.index[r.From]
		b, ok2 := g.index[r.To]
		if !ok1 || !ok2 {
			continue
		}
		addEdge(a, b)
	}

	g.degree = make([]float64, len(ids))
	for i, neighbors := range g.adj {
		sum := 0.0
		for _, w := range neighbors {
			sum += w
		}
		g.degree[i] = sum
	}
	return g
}

// partition maps a vertex index to its community id. Community ids are
// dense small integers chosen deterministically from the original node
// ordering, never from map iteration.
type partition struct {
	comm       []int
	commWeight []float64 // total degree of each community (sigma_tot)
}

func newSingletonPartition(n int, g *weightedGraph) *partition {
	p := &partition{comm: make([]int, n), commWeight: make([]float64, n)}
	for i := 0; i < n; i++ {
		p.comm[i] = i
		p.commWeight[i] = g.degree[i]
	}
	return p
}

// localMove runs one Louvain local-moving phase to convergence, iterating
// vertices in fixed (index) order each pass so the result is reproducible
// run over run. resolution scales the null-model term
// (default 1.0).
func localMove(g *weightedGraph, resolution float64) *partition {
	n := len(g.nodes)
	p := newSingletonPartition(n, g)
	if g.total == 0 {
		return p
	}
	m2 := 2 * g.total

	improved := true
	for improved {
		improved = false
		for i := 0; i < n; i++ {
			currentComm := p.comm[i]

			// withdraw i from its current community before evaluating moves
			p.commWeight[currentComm] -= g.degree[i]

			neighborWeight := make(map[int]float64) // candidate community -> weight of edges from i into it
			for j, w := range g.adj[i] {
				neighborWeight[p.comm[j]] += w
			}

			bestComm := currentComm
			bestGain := neighborWeight[currentComm] - resolution*g.degree[i]*p.commWeight[currentComm]/m2

			candidates := make([]int, 0, len(neighborWeight))
			for c := range neighborWeight {
				candidates = append(candidates, c)
			}
			sort.Ints(candidates)

			for _, c := range candidates {
				gain := neighborWeight[c] - resolution*g.degree[i]*p.commWeight[c]/m2
				if gain > bestGain || (gain == bestGain && c < bestComm) {
					bestGain = gain
					bestComm = c
				}
			}

			p.commWeight[bestComm] += g.degree[i]
			if bestComm != currentComm {
				p.comm[i] = bestComm
				improved = true
			}
		}
	}
	return p
}

// aggregate collapses g by p's communities into a smaller graph whose
// vertices are the surviving (renumbered, in ascending original-id order)
// community ids.
func aggregate(g *weightedGraph, p *partition) *weightedGraph {
	commIDs := make([]int, 0)
	seen := make(map[int]bool)
	for _, c := range p.comm {
		if !seen[c] {
			seen[c] = true
			commIDs = append(commIDs, c)
		}
	}
	sort.Ints(commIDs)

	newIndex := make(map[int]int, len(commIDs))
	for newIdx, oldComm := range commIDs {
		newIndex[oldComm] = newIdx
	}

	ng := &weightedGraph{
		nodes: make([]string, len(commIDs)), // placeholder labels, unused beyond length
		index: make(map[string]int),
		adj:   make([]map[int]float64, len(commIDs)),
	}
	for i := range ng.adj {
		ng.adj[i] = make(map[int]float64)
	}

	// Internal edges are not kept as self-loops in adj, but they still count
	// toward the aggregated vertex's degree and the graph total, so both
	// carry over from g unchanged.
	ng.degree = make([]float64, len(commIDs))
	for i, neighbors := range g.adj {
		ci := newIndex[p.comm[i]]
		ng.degree[ci] += g.degree[i]
		for j, w := range neighbors {
			cj := newIndex[p.comm[j]]
			if i < j && ci != cj { // visit each undirected cross edge once
				ng.adj[ci][cj] += w
				ng.adj[cj][ci] += w
			}
		}
	}
	ng.total = g.total
	return ng
}

// Detect runs the full multi-level Louvain procedure and returns, for every
// original eligible vertex, its final community number (dense, starting at
// 0, assigned in ascending order of the smallest member node index so
// numbering is deterministic).
func Detect(store *graph.Store, resolution float64) map[string]int {
	if resolution <= 0 {
		resolution = 1.0
	}
	g := buildGraph(store)
	n := len(g.nodes)
	if n == 0 {
		return map[string]int{}
	}

	// finalComm[i] = current assignment of original vertex i, refined across levels
	finalComm := make([]int, n)
	for i := range finalComm {
		finalComm[i] = i
	}

	curGraph := g
	for {
		p := localMove(curGraph, resolution)
		allSingleton := true
		for i, c := range p.comm {
			if c != i {
				allSingleton = false
				break
			}
		}

		// push this level's assignment down to the original vertices: finalComm
		// already holds indices into curGraph, so remapping through p.comm is
		// exactly the refined assignment at this level.
		next := make([]int, n)
		for i := range finalComm {
			next[i] = p.comm[finalComm[i]]
		}
		finalComm = next

		if allSingleton {
			break
		}

		ng := aggregate(curGraph, p)
		if len(ng.nodes) == len(curGraph.nodes) {
			break
		}
		// aggregate numbers the surviving communities densely in ascending
		// order; carry finalComm over to ng's vertex indices the same way.
		dense := make(map[int]int, len(ng.nodes))
		sortedComms := append([]int(nil), p.comm...)
		sort.Ints(sortedComms)
		for _, c := range sortedComms {
			if _, ok := dense[c]; !ok {
				dense[c] = len(dense)
			}
		}
		for i := range finalComm {
			finalComm[i] = dense[finalComm[i]]
		}
		curGraph = ng
	}

	return renumberDeterministically(g.nodes, finalComm)
}

// Modularity computes the overall modularity Q of the final partition
// against the original (non-aggregated) graph built from store, matching
// the newman-girvan definition used throughout the Louvain family: Q =
// (1/2m) * sum_ij (A_ij - resolution*k_i*k_j/2m) * delta(c_i, c_j).
func Modularity(store *graph.Store, assignment map[string]int, resolution float64) float64 {
	if resolution <= 0 {
		resolution = 1.0
	}
	g := buildGraph(store)
	if g.total == 0 {
		return 0
	}
	m2 := 2 * g.total
	q := 0.0
	for i, neighbors := range g.adj {
		ci, ok := assignment[g.nodes[i]]
		if !ok {
			continue
		}
		for j, w := range neighbors {
			if assignment[g.nodes[j]] != ci {
				continue
			}
			q += w - resolution*g.degree[i]*g.degree[j]/m2
		}
	}
	return q / m2
}

// renumberDeterministically assigns dense community numbers 0..k-1 in order
// of each community's minimum member symbol id (sorted string order), so two
// runs over the same input graph produce identical numbering regardless of
// map iteration order during aggregation.
func renumberDeterministically(nodeIDs []string, comm []int) map[string]int {
	minMember := make(map[int]string)
	for i, c := range comm {
		id := nodeIDs[i]
		if cur, ok := minMember[c]; !ok || id < cur {
			minMember[c] = id
		}
	}
	keys := make([]int, 0, len(minMember))
	for c := range minMember {
		keys = append(keys, c)
	}
	sort.Slice(keys, func(i, j int) bool { return minMember[keys[i]] < minMember[keys[j]] })

	renumber := make(map[int]int, len(keys))
	for newNum, oldKey := range keys {
		renumber[oldKey] = newNum
	}

	out := make(map[string]int, len(nodeIDs))
	for i, id := range nodeIDs {
		out[id] = renumber[comm[i]]
	}
	return out
}
