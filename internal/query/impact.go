package query

import (
	"fmt"
	"math"
	"sort"

	"github.com/gitnexus/gitnexus/internal/types"
)

const (
	DirectionUpstream   = "upstream"
	DirectionDownstream = "downstream"
)

// defaultImpactRelations is the configurable edge set BFS walks when the
// caller does not name one explicitly.
var defaultImpactRelations = []types.RelationType{
	types.RelCalls, types.RelImports, types.RelExtends, types.RelImplements,
}

// ImpactHit is one node discovered during Impact's BFS, classified by hop
// distance from the target: depth 1 will break, depth 2 is likely
// affected, depth 3 may need testing.
type ImpactHit struct {
	NodeID string
	Name   string
	Label  types.NodeLabel
	Depth  int
	Class  string
}

// ImpactResult is Impact's full report, hits ordered by ascending depth
// then node id.
type ImpactResult struct {
	Target    string
	Direction string
	Hits      []ImpactHit
}

func depthClass(depth int) string {
	switch depth {
	case 1:
		return "will break"
	case 2:
		return "likely affected"
	case 3:
		return "may need testing"
	default:
		return ""
	}
}

// Impact locates target by exact name match, then BFS-traverses relationTypes
// (or defaultImpactRelations if empty) up to maxDepth hops in direction,
// filtering by minConfidence. maxDepth <= 0 means
// unbounded.
func (s *Surface) Impact(target, direction string, maxDepth int, relationTypes []types.RelationType, minConfidence float64) (*ImpactResult, error) {
	if len(relationTypes) == 0 {
		relationTypes = defaultImpactRelations
	}
	if maxDepth <= 0 {
		maxDepth = math.MaxInt32
	}

	origin := s.findSymbolByName(target)
	if origin == nil {
		return nil, fmt.Errorf("query: no symbol named %q", target)
	}

	wantType := make(map[types.RelationType]bool, len(relationTypes))
	for _, t := range relationTypes {
		wantType[t] = true
	}

	adj := make(map[string][]string)
	for _, r := range s.store.Relations() {
		if !wantType[r.Type] || r.Confidence < minConfidence {
			continue
		}
		from, to := r.From, r.To
		if direction == DirectionUpstream {
			from, to = to, from
		}
		adj[from] = append(adj[from], to)
	}

	visited := map[string]int{origin.ID: 0}
	queue := []string{origin.ID}
	var hits []ImpactHit
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		depth := visited[cur]
		if depth >= maxDepth {
			continue
		}
		neighbors := append([]string(nil), adj[cur]...)
		sort.Strings(neighbors)
		for _, next := range neighbors {
			if _, seen := visited[next]; seen {
				continue
			}
			nd := depth + 1
			visited[next] = nd
			queue = append(queue, next)
			name, label := s.nodeNameAndLabel(next)
			hits = append(hits, ImpactHit{NodeID: next, Name: name, Label: label, Depth: nd, Class: depthClass(nd)})
		}
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Depth != hits[j].Depth {
			return hits[i].Depth < hits[j].Depth
		}
		return hits[i].NodeID < hits[j].NodeID
	})

	return &ImpactResult{Target: target, Direction: direction, Hits: hits}, nil
}

// findSymbolByName returns the lowest-id symbol named name, for
// deterministic exact-name lookup.
func (s *Surface) findSymbolByName(name string) *types.CodeSymbol {
	var best *types.CodeSymbol
	for _, sym := range s.store.Symbols() {
		if sym.Name != name {
			continue
		}
		if best == nil || sym.ID < best.ID {
			best = sym
		}
	}
	return best
}

func (s *Surface) nodeNameAndLabel(id string) (string, types.NodeLabel) {
	if sym, ok := s.store.GetSymbol(id); ok {
		return sym.Name, sym.Label
	}
	if f, ok := s.store.GetFile(id); ok {
		return f.Name, types.LabelFile
	}
	if f, ok := s.store.GetFolder(id); ok {
		return f.Name, types.LabelFolder
	}
	return id, ""
}
