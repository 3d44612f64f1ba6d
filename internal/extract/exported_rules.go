// Package extract implements the Symbol Extractor and Symbol Table.
// exported_rules.go holds the per-language isExported rules as pure
// functions; languages whose grammar isn't wired (Java, C#, Rust, C, C++)
// still get a tested pure-function implementation.
package extract

import (
	"strings"
	"unicode"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/gitnexus/gitnexus/internal/parser"
)

// IsExportedTSJS implements the TypeScript/JavaScript rule: true iff any
// ancestor is an export statement/specifier, or the definition node's own
// text begins with "export ".
func IsExportedTSJS(defNode *tree_sitter.Node, content []byte) bool {
	if defNode == nil {
		return false
	}
	if strings.HasPrefix(parser.Text(defNode, content), "export ") {
		return true
	}
	hit := parser.FindAncestor(defNode, func(n *tree_sitter.Node) bool {
		switch n.Kind() {
		case "export_statement", "export_specifier", "export_clause":
			return true
		}
		return false
	})
	return hit != nil
}

// IsExportedPython: true iff name does not start with an underscore.
func IsExportedPython(name string) bool {
	return !strings.HasPrefix(name, "_")
}

// IsExportedJava: true iff modifiersText (the sibling "modifiers" node's
// text) contains "public", or declarationText (the parent declaration's
// text) begins with "public".
func IsExportedJava(modifiersText, declarationText string) bool {
	if strings.Contains(modifiersText, "public") {
		return true
	}
	return strings.HasPrefix(strings.TrimSpace(declarationText), "public")
}

// IsExportedCSharp: true iff any ancestor modifier/modifiers text contains
// "public".
func IsExportedCSharp(ancestorModifierTexts []string) bool {
	for _, t := range ancestorModifierTexts {
		if strings.Contains(t, "public") {
			return true
		}
	}
	return false
}

// IsExportedGo: true iff the first character of name is an uppercase
// letter (Unicode upper, not lower).
func IsExportedGo(name string) bool {
	if name == "" {
		return false
	}
	r := []rune(name)[0]
	return unicode.IsUpper(r) && !unicode.IsLower(r)
}

// IsExportedRust: true iff any ancestor visibility-modifier text contains
// "pub".
func IsExportedRust(ancestorVisibilityTexts []string) bool {
	for _, t := range ancestorVisibilityTexts {
		if strings.Contains(t, "pub") {
			return true
		}
	}
	return false
}

// IsExportedCFamily: C and C++ always report unexported; entry-point
// heuristics handle `main` directly in the process tracer.
func IsExportedCFamily() bool { return false }
