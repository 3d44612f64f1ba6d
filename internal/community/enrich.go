package community

import (
	"context"
	"sort"

	"github.com/gitnexus/gitnexus/internal/enrich"
	"github.com/gitnexus/gitnexus/internal/graph"
	"github.com/gitnexus/gitnexus/internal/types"
)

// Enrich runs the optional LLM community-enrichment collaborator
// over every Community already materialized by Run, replacing each
// Community's Label/Keywords/Description/EnrichedBy in store. Gated by
// Config.Feature.LLMEnrichment at the call site; Run's heuristic labeling
// always happens first so this is a refinement pass, never a
// precondition for valid output.
func Enrich(ctx context.Context, store *graph.Store, collaborator enrich.Collaborator) int {
	communities := store.Communities()
	if len(communities) == 0 {
		return 0
	}

	membersByComm := make(map[string][]string)
	for _, r := range store.RelationsOfType(types.RelMemberOf) {
		if sym, ok := store.GetSymbol(r.From); ok {
			membersByComm[r.To] = append(membersByComm[r.To], sym.Name)
		}
	}

	inputs := make([]enrich.CommunityInput, len(communities))
	for i, c := range communities {
		members := append([]string(nil), membersByComm[c.ID]...)
		sort.Strings(members)
		inputs[i] = enrich.CommunityInput{
			ID:             c.ID,
			HeuristicLabel: c.HeuristicLabel,
			Members:        members,
			MemberCount:    c.SymbolCount,
		}
	}

	results := enrich.EnrichAll(ctx, collaborator, inputs)
	byID := make(map[string]enrich.EnrichedCommunity, len(results))
	for _, r := range results {
		byID[r.ID] = r
	}

	enriched := 0
	for _, c := range communities {
		r, ok := byID[c.ID]
		if !ok {
			continue
		}
		updated := *c
		updated.Label = r.Label
		updated.Keywords = r.Keywords
		updated.Description = r.Description
		if r.FromLLM {
			updated.EnrichedBy = types.EnrichedLLM
			enriched++
		} else {
			updated.EnrichedBy = types.EnrichedHeuristic
		}
		store.AddCommunity(&updated)
	}
	return enriched
}
