package process

import (
	"sort"

	"github.com/gitnexus/gitnexus/internal/graph"
	"github.com/gitnexus/gitnexus/internal/types"
	"github.com/gitnexus/gitnexus/internal/walk"
)

// defaultMaxDepth bounds the BFS traversal per entry point; chosen
// generously since CALLS edges already carry confidence scoring to damp
// false paths, not a separate config knob.
const defaultMaxDepth = 20

// eligibleEntryLabels restricts entry-point candidates to callable symbol
// kinds (functions/methods are the only things CALLS edges originate from).
var eligibleEntryLabels = []types.NodeLabel{types.LabelFunction, types.LabelMethod}

// Run discovers entry points, traces one BFS-ordered chain per entry, and
// materializes Process + STEP_IN_PROCESS nodes/edges into store. Entries
// whose traversal does not reach a second distinct step are skipped: a
// path only becomes a Process with two or more distinct steps.
func Run(store *graph.Store) int {
	adj := store.Adjacency(types.RelCalls)
	memberOf := buildMemberOfIndex(store)

	candidates := store.SymbolsByLabels(eligibleEntryLabels...)
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].ID < candidates[j].ID })

	count := 0
	for _, sym := range candidates {
		lang := walk.LanguageForPath(sym.FilePath)
		if !IsEntryPoint(sym, lang) {
			continue
		}
		steps := bfsOrder(sym.ID, adj, defaultMaxDepth)
		if len(steps) < 2 {
			continue
		}

		procID := types.ProcessNodeID(count)
		processType, communities := classify(steps, memberOf)
		label := sym.Name
		store.AddProcess(&types.Process{
			ID:             procID,
			Label:          label,
			HeuristicLabel: label,
			ProcessType:    processType,
			StepCount:      len(steps),
			Communities:    communities,
			EntryPointID:   steps[0],
			TerminalID:     steps[len(steps)-1],
		})
		for i, stepID := range steps {
			store.AddRelation(types.Relation{
				From: stepID,
				To:   procID,
				Type: types.RelStepInProcess,
				Step: i,
			})
		}
		count++
	}
	return count
}

// bfsOrder performs a breadth-first traversal from entry along adj, bounded
// to maxDepth hops, returning visited node ids in discovery order (entry
// first). Neighbor iteration is sorted so traversal order — and therefore
// step numbering — is deterministic across runs.
func bfsOrder(entry string, adj map[string][]string, maxDepth int) []string {
	visited := map[string]bool{entry: true}
	order := []string{entry}
	type item struct {
		id    string
		depth int
	}
	queue := []item{{entry, 0}}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur.depth >= maxDepth {
			continue
		}
		neighbors := append([]string(nil), adj[cur.id]...)
		sort.Strings(neighbors)
		for _, next := range neighbors {
			if visited[next] {
				continue
			}
			visited[next] = true
			order = append(order, next)
			queue = append(queue, item{next, cur.depth + 1})
		}
	}
	return order
}

// buildMemberOfIndex maps a symbol id to its community id, for symbols that
// survived community detection (singletons are pruned upstream and so are
// simply absent here).
func buildMemberOfIndex(store *graph.Store) map[string]string {
	idx := make(map[string]string)
	for _, r := range store.RelationsOfType(types.RelMemberOf) {
		idx[r.From] = r.To
	}
	return idx
}

// classify determines processType and the first-occurrence-ordered distinct
// community list for a traced step chain. Steps with no recorded
// community (ineligible label, or pruned singleton) are excluded from the
// comparison rather than forcing cross-community status — a step with no
// community carries no information either way.
func classify(steps []string, memberOf map[string]string) (types.ProcessType, []string) {
	var communities []string
	seen := make(map[string]bool)
	for _, stepID := range steps {
		commID, ok := memberOf[stepID]
		if !ok {
			continue
		}
		if !seen[commID] {
			seen[commID] = true
			communities = append(communities, commID)
		}
	}
	if len(communities) <= 1 {
		return types.ProcessIntraCommunity, communities
	}
	return types.ProcessCrossCommunity, communities
}
