package query

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/gitnexus/gitnexus/internal/types"
)

// cypherPattern recognizes the single-hop subset of Cypher GitNexus
// supports: `MATCH (a[:Label])-[[:TYPE]]->(b[:Label]) RETURN a[, b] [LIMIT n]`.
// Cypher(q) is a narrow hand-rolled pass-through over the in-memory
// relation list rather than a full query engine.
var cypherPattern = regexp.MustCompile(`(?is)^\s*MATCH\s*\(\s*(\w+)(?:\s*:\s*(\w+))?\s*\)\s*-\[\s*:?\s*(\w+)?\s*\]->\s*\(\s*(\w+)(?:\s*:\s*(\w+))?\s*\)\s*RETURN\s+([\w,\s]+?)(?:\s+LIMIT\s+(\d+))?\s*$`)

// NodeRef is one bound graph node in a Cypher result row.
type NodeRef struct {
	ID    string
	Label types.NodeLabel
	Name  string
}

// CypherResult is cypher(q)'s tabular output, one row per matched edge.
type CypherResult struct {
	Columns []string
	Rows    []map[string]NodeRef
}

// Cypher answers the subset of single-hop MATCH/RETURN queries described
// by cypherPattern against the in-memory graph.
func (s *Surface) Cypher(q string) (*CypherResult, error) {
	m := cypherPattern.FindStringSubmatch(q)
	if m == nil {
		return nil, fmt.Errorf("query: unsupported cypher query: %s", q)
	}
	varA, labelA, relType, varB, labelB, returnList, limitStr := m[1], m[2], m[3], m[4], m[5], m[6], m[7]

	columns := make([]string, 0, 2)
	for _, col := range strings.Split(returnList, ",") {
		col = strings.TrimSpace(col)
		if col == varA || col == varB {
			columns = append(columns, col)
		}
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("query: RETURN clause names neither bound variable")
	}

	limit := -1
	if limitStr != "" {
		if n, err := strconv.Atoi(limitStr); err == nil {
			limit = n
		}
	}

	result := &CypherResult{Columns: columns}
	for _, r := range s.store.Relations() {
		if relType != "" && string(r.Type) != strings.ToUpper(relType) {
			continue
		}
		fromRef, ok := s.nodeRef(r.From)
		if !ok || (labelA != "" && string(fromRef.Label) != labelA) {
			continue
		}
		toRef, ok := s.nodeRef(r.To)
		if !ok || (labelB != "" && string(toRef.Label) != labelB) {
			continue
		}
		row := make(map[string]NodeRef, len(columns))
		for _, col := range columns {
			if col == varA {
				row[col] = fromRef
			} else {
				row[col] = toRef
			}
		}
		result.Rows = append(result.Rows, row)
		if limit >= 0 && len(result.Rows) >= limit {
			break
		}
	}
	return result, nil
}

func (s *Surface) nodeRef(id string) (NodeRef, bool) {
	name, label := s.nodeNameAndLabel(id)
	if label == "" {
		if c, ok := s.store.GetCommunity(id); ok {
			return NodeRef{ID: id, Label: types.LabelCommunity, Name: c.Label}, true
		}
		if p, ok := s.store.GetProcess(id); ok {
			return NodeRef{ID: id, Label: types.LabelProcess, Name: p.Label}, true
		}
		return NodeRef{}, false
	}
	return NodeRef{ID: id, Label: label, Name: name}, true
}
