package query

import (
	"sort"

	"github.com/gitnexus/gitnexus/internal/types"
)

// ClusterSummary is one row of Overview's cluster listing.
type ClusterSummary struct {
	ID             string
	Label          string
	HeuristicLabel string
	SymbolCount    int
	Cohesion       float64
}

// ProcessSummary is one row of Overview's process listing.
type ProcessSummary struct {
	ID          string
	Label       string
	ProcessType types.ProcessType
	StepCount   int
}

// Overview is overview()'s aggregate report.
type Overview struct {
	Clusters  []ClusterSummary
	Processes []ProcessSummary
}

// Overview aggregates every detected community and traced process.
func (s *Surface) Overview() Overview {
	var out Overview
	for _, c := range s.store.Communities() {
		out.Clusters = append(out.Clusters, ClusterSummary{
			ID: c.ID, Label: c.Label, HeuristicLabel: c.HeuristicLabel,
			SymbolCount: c.SymbolCount, Cohesion: c.Cohesion,
		})
	}
	for _, p := range s.store.Processes() {
		out.Processes = append(out.Processes, ProcessSummary{
			ID: p.ID, Label: p.Label, ProcessType: p.ProcessType, StepCount: p.StepCount,
		})
	}
	sort.Slice(out.Clusters, func(i, j int) bool { return out.Clusters[i].ID < out.Clusters[j].ID })
	sort.Slice(out.Processes, func(i, j int) bool { return out.Processes[i].ID < out.Processes[j].ID })
	return out
}
