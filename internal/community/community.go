package community

import (
	"sort"

	"github.com/gitnexus/gitnexus/internal/graph"
	"github.com/gitnexus/gitnexus/internal/types"
)

// Result summarizes one detection run for diagnostics/meta.json.
type Result struct {
	CommunityCount int
	Modularity     float64
}

// Run executes the full Community Detector phase: Louvain partition,
// cohesion, heuristic labeling, and Community/MEMBER_OF materialization into
// store. Communities with fewer than 2 surviving members are pruned.
func Run(store *graph.Store, resolution float64) Result {
	assignment := Detect(store, resolution)
	if len(assignment) == 0 {
		return Result{}
	}
	modularity := Modularity(store, assignment, resolution)

	g := buildGraph(store)

	membersByComm := make(map[int][]int) // commNum -> graph vertex indices
	for id, commNum := range assignment {
		idx, ok := g.index[id]
		if !ok {
			continue
		}
		membersByComm[commNum] = append(membersByComm[commNum], idx)
	}

	commNums := make([]int, 0, len(membersByComm))
	for n := range membersByComm {
		commNums = append(commNums, n)
	}
	sort.Ints(commNums)

	surviving := 0
	for _, commNum := range commNums {
		members := membersByComm[commNum]
		if len(members) < 2 {
			continue
		}
		sort.Ints(members)

		symbolIDs := make([]string, len(members))
		memberPaths := make([]string, len(members))
		memberNames := make([]string, len(members))
		for i, idx := range members {
			id := g.nodes[idx]
			symbolIDs[i] = id
			if sym, ok := store.GetSymbol(id); ok {
				memberPaths[i] = sym.FilePath
				memberNames[i] = sym.Name
			}
		}

		internal := countInternalEdges(g, members)
		n := len(members)
		cohesion := 0.0
		if n > 1 {
			cohesion = float64(internal) / (float64(n) * float64(n-1) / 2)
		}

		label := heuristicLabel(surviving, memberPaths, memberNames)
		commID := types.CommunityNodeID(surviving)
		store.AddCommunity(&types.Community{
			ID:             commID,
			Label:          label,
			HeuristicLabel: label,
			EnrichedBy:     types.EnrichedHeuristic,
			Cohesion:       cohesion,
			SymbolCount:    n,
		})
		for _, symID := range symbolIDs {
			store.AddRelation(types.Relation{From: symID, To: commID, Type: types.RelMemberOf})
		}
		surviving++
	}

	return Result{CommunityCount: surviving, Modularity: modularity}
}

// countInternalEdges counts the distinct undirected edges whose both
// endpoints are in members (a sorted slice of graph vertex indices).
func countInternalEdges(g *weightedGraph, members []int) int {
	inComm := make(map[int]bool, len(members))
	for _, idx := range members {
		inComm[idx] = true
	}
	count := 0
	for _, i := range members {
		for j, w := range g.adj[i] {
			if j > i && inComm[j] && w > 0 {
				count++
			}
		}
	}
	return count
}
