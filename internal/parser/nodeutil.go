package parser

import tree_sitter "github.com/tree-sitter/go-tree-sitter"

// Text returns node's raw source slice, shared by extract/resolve so both
// packages read node text the same way.
func Text(node *tree_sitter.Node, content []byte) string {
	if node == nil {
		return ""
	}
	return string(content[node.StartByte():node.EndByte()])
}

// Lines returns node's 0-based [start,end] row span.
func Lines(node *tree_sitter.Node) (int, int) {
	if node == nil {
		return 0, 0
	}
	return int(node.StartPosition().Row), int(node.EndPosition().Row)
}

// Ancestors walks parent links from node up to the root, inclusive of node.
func Ancestors(node *tree_sitter.Node) []*tree_sitter.Node {
	var out []*tree_sitter.Node
	for n := node; n != nil; n = n.Parent() {
		out = append(out, n)
	}
	return out
}

// FindAncestor returns the nearest ancestor (including node itself) for
// which match returns true, or nil.
func FindAncestor(node *tree_sitter.Node, match func(*tree_sitter.Node) bool) *tree_sitter.Node {
	for n := node; n != nil; n = n.Parent() {
		if match(n) {
			return n
		}
	}
	return nil
}
