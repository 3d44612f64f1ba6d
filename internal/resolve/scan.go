package resolve

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// capture is one named capture from a single query match.
type capture struct {
	name string
	node *tree_sitter.Node
}

// scanMatches runs query against tree's root, invoking visit once per match
// with that match's captures resolved to names. Shared by the imports,
// calls, and heritage sub-phases so each re-uses one traversal
// convention instead of three bespoke walks.
func scanMatches(tree *tree_sitter.Tree, query *tree_sitter.Query, content []byte, visit func([]capture)) {
	qc := tree_sitter.NewQueryCursor()
	defer qc.Close()
	matches := qc.Matches(query, tree.RootNode(), content)
	names := query.CaptureNames()

	for {
		m := matches.Next()
		if m == nil {
			return
		}
		caps := make([]capture, 0, len(m.Captures))
		for i := range m.Captures {
			c := m.Captures[i]
			n := c.Node
			caps = append(caps, capture{name: names[c.Index], node: &n})
		}
		visit(caps)
	}
}
