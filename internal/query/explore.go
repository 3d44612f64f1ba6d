package query

import (
	"fmt"
	"sort"

	"github.com/gitnexus/gitnexus/internal/types"
)

const (
	KindSymbol  = "symbol"
	KindCluster = "cluster"
	KindProcess = "process"
)

// SymbolReport is explore(name, "symbol")'s canonical report.
type SymbolReport struct {
	Symbol      *types.CodeSymbol
	Callers     []*types.CodeSymbol
	Callees     []*types.CodeSymbol
	CommunityID string
}

// ClusterReport is explore(name, "cluster")'s canonical report.
type ClusterReport struct {
	Community *types.Community
	Members   []*types.CodeSymbol
}

// ProcessStep is one node in a ProcessReport's traced chain.
type ProcessStep struct {
	NodeID string
	Name   string
	Label  types.NodeLabel
	Step   int
}

// ProcessReport is explore(name, "process")'s canonical report.
type ProcessReport struct {
	Process *types.Process
	Steps   []ProcessStep
}

// Explore returns the canonical per-entity report: callers, callees,
// community, members, and steps as appropriate for the entity kind.
func (s *Surface) Explore(name, kind string) (interface{}, error) {
	switch kind {
	case KindSymbol:
		return s.exploreSymbol(name)
	case KindCluster:
		return s.exploreCluster(name)
	case KindProcess:
		return s.exploreProcess(name)
	default:
		return nil, fmt.Errorf("query: unknown explore type %q", kind)
	}
}

func (s *Surface) exploreSymbol(name string) (*SymbolReport, error) {
	sym := s.findSymbolByName(name)
	if sym == nil {
		return nil, fmt.Errorf("query: no symbol named %q", name)
	}
	report := &SymbolReport{Symbol: sym}
	for _, r := range s.store.Relations() {
		switch {
		case r.Type == types.RelCalls && r.To == sym.ID:
			if caller, ok := s.store.GetSymbol(r.From); ok {
				report.Callers = append(report.Callers, caller)
			}
		case r.Type == types.RelCalls && r.From == sym.ID:
			if callee, ok := s.store.GetSymbol(r.To); ok {
				report.Callees = append(report.Callees, callee)
			}
		case r.Type == types.RelMemberOf && r.From == sym.ID:
			report.CommunityID = r.To
		}
	}
	sortSymbolsByID(report.Callers)
	sortSymbolsByID(report.Callees)
	return report, nil
}

func (s *Surface) exploreCluster(name string) (*ClusterReport, error) {
	var community *types.Community
	for _, c := range s.store.Communities() {
		if c.ID == name || c.Label == name || c.HeuristicLabel == name {
			community = c
			break
		}
	}
	if community == nil {
		return nil, fmt.Errorf("query: no cluster named %q", name)
	}
	report := &ClusterReport{Community: community}
	for _, r := range s.store.RelationsOfType(types.RelMemberOf) {
		if r.To != community.ID {
			continue
		}
		if member, ok := s.store.GetSymbol(r.From); ok {
			report.Members = append(report.Members, member)
		}
	}
	sortSymbolsByID(report.Members)
	return report, nil
}

func (s *Surface) exploreProcess(name string) (*ProcessReport, error) {
	var process *types.Process
	for _, p := range s.store.Processes() {
		if p.ID == name || p.Label == name || p.HeuristicLabel == name {
			process = p
			break
		}
	}
	if process == nil {
		return nil, fmt.Errorf("query: no process named %q", name)
	}
	report := &ProcessReport{Process: process}
	for _, r := range s.store.RelationsOfType(types.RelStepInProcess) {
		if r.To != process.ID {
			continue
		}
		name, label := s.nodeNameAndLabel(r.From)
		report.Steps = append(report.Steps, ProcessStep{NodeID: r.From, Name: name, Label: label, Step: r.Step})
	}
	sort.Slice(report.Steps, func(i, j int) bool { return report.Steps[i].Step < report.Steps[j].Step })
	return report, nil
}

func sortSymbolsByID(syms []*types.CodeSymbol) {
	sort.Slice(syms, func(i, j int) bool { return syms[i].ID < syms[j].ID })
}
