package extract

import (
	"fmt"
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/gitnexus/gitnexus/internal/astcache"
	"github.com/gitnexus/gitnexus/internal/config"
	"github.com/gitnexus/gitnexus/internal/graph"
	"github.com/gitnexus/gitnexus/internal/parser"
	"github.com/gitnexus/gitnexus/internal/types"
	"github.com/gitnexus/gitnexus/internal/walk"
)

// labelForCapture maps a capture tag's suffix (after "definition.") to
// the closed NodeLabel set, which drives schema routing downstream.
var labelForCapture = map[string]types.NodeLabel{
	"function":    types.LabelFunction,
	"class":       types.LabelClass,
	"interface":   types.LabelInterface,
	"method":      types.LabelMethod,
	"struct":      types.LabelStruct,
	"enum":        types.LabelEnum,
	"namespace":   types.LabelNamespace,
	"module":      types.LabelModule,
	"trait":       types.LabelTrait,
	"impl":        types.LabelImpl,
	"type":        types.LabelTypeAlias,
	"typealias":   types.LabelTypeAlias,
	"typedef":     types.LabelTypedef,
	"const":       types.LabelConst,
	"static":      types.LabelStatic,
	"macro":       types.LabelMacro,
	"union":       types.LabelUnion,
	"property":    types.LabelProperty,
	"record":      types.LabelRecord,
	"delegate":    types.LabelDelegate,
	"annotation":  types.LabelAnnotation,
	"constructor": types.LabelConstructor,
	"template":    types.LabelTemplate,
}

// Extractor runs each language's capture query against a cached AST and
// materializes CodeSymbol nodes + DEFINES edges.
type Extractor struct {
	reg   *parser.Registry
	cache *astcache.Cache
	cfg   *config.Config
}

// New returns an Extractor sharing reg/cache/cfg with the rest of the
// pipeline (the AST cache is the single point of truth for trees across
// phases).
func New(reg *parser.Registry, cache *astcache.Cache, cfg *config.Config) *Extractor {
	return &Extractor{reg: reg, cache: cache, cfg: cfg}
}

// treeFor returns the cached tree for f, parsing and inserting it if absent.
func (e *Extractor) treeFor(f walk.File) (*tree_sitter.Tree, error) {
	if t, ok := e.cache.Get(f.Path); ok {
		return t.(*tree_sitter.Tree), nil
	}
	tree, err := e.reg.Parse(f.Language, f.Bytes)
	if err != nil {
		return nil, err
	}
	e.cache.Set(f.Path, tree)
	return tree, nil
}

// captureSpecificity ranks the labels competing for one definition site so
// overlapping query patterns collapse to the most specific capture: a Go
// struct declaration also matches the generic typedef pattern, a Python
// method also matches the bare function pattern.
func captureSpecificity(l types.NodeLabel) int {
	switch l {
	case types.LabelTypedef, types.LabelTypeAlias:
		return 0
	case types.LabelFunction:
		return 1
	default:
		return 2
	}
}

// candidate is one definition site before specificity dedup.
type candidate struct {
	defNode  *tree_sitter.Node
	nameNode *tree_sitter.Node
	label    types.NodeLabel
}

// Collect parses f (through the shared AST cache) and returns its
// CodeSymbol nodes without touching any shared state, so parallel phase
// workers can each collect locally and the pipeline can apply the patches
// in walk order.
// Files in an unknown language yield no symbols.
func (e *Extractor) Collect(f walk.File) ([]*types.CodeSymbol, error) {
	if f.Language == "" || !e.reg.Supported(f.Language) {
		return nil, nil
	}
	tree, err := e.treeFor(f)
	if err != nil {
		return nil, fmt.Errorf("extract: parse %s: %w", f.Path, err)
	}
	query, err := e.reg.Query(f.Language)
	if err != nil {
		return nil, err
	}

	qc := tree_sitter.NewQueryCursor()
	defer qc.Close()
	matches := qc.Matches(query, tree.RootNode(), f.Bytes)
	captureNames := query.CaptureNames()

	// Key by the name node's byte offset: overlapping patterns for the same
	// declaration capture the same identifier, and the higher-specificity
	// label wins.
	byNamePos := make(map[uint]candidate)
	var order []uint

	for {
		match := matches.Next()
		if match == nil {
			break
		}

		var defNode *tree_sitter.Node
		var nameNode *tree_sitter.Node
		var label types.NodeLabel
		var isDefinition bool

		for i := range match.Captures {
			c := match.Captures[i]
			name := captureNames[c.Index]
			if name == "name" {
				n := c.Node
				nameNode = &n
				continue
			}
			if strings.HasPrefix(name, "definition.") {
				suffix := strings.TrimPrefix(name, "definition.")
				if lbl, ok := labelForCapture[suffix]; ok {
					n := c.Node
					defNode = &n
					label = lbl
					isDefinition = true
				}
			}
		}

		if !isDefinition || defNode == nil || nameNode == nil {
			continue
		}

		pos := uint(nameNode.StartByte())
		prev, seen := byNamePos[pos]
		if !seen {
			order = append(order, pos)
		}
		if !seen || captureSpecificity(label) > captureSpecificity(prev.label) {
			byNamePos[pos] = candidate{defNode: defNode, nameNode: nameNode, label: label}
		}
	}

	lines := splitLines(f.Bytes)
	out := make([]*types.CodeSymbol, 0, len(order))
	for _, pos := range order {
		c := byNamePos[pos]
		name := parser.Text(c.nameNode, f.Bytes)
		if name == "" {
			continue
		}
		startLine, endLine := parser.Lines(c.defNode)
		out = append(out, &types.CodeSymbol{
			ID:         types.SymbolNodeID(c.label, f.Path, name),
			Label:      c.label,
			Name:       name,
			FilePath:   f.Path,
			StartLine:  startLine,
			EndLine:    endLine,
			Content:    snippet(lines, startLine, endLine, e.cfg.Index.MaxSymbolSnippetChars),
			IsExported: e.computeExported(f.Language, c.label, name, c.defNode, f.Bytes),
		})
	}
	return out, nil
}

// Apply registers collected symbols in table and writes CodeSymbol nodes +
// DEFINES edges into store. Separated from Collect so the pipeline can
// serialize applications in walk order regardless of worker completion
// order.
func Apply(store *graph.Store, table *SymbolTable, filePath string, syms []*types.CodeSymbol) {
	for _, sym := range syms {
		store.AddSymbol(sym)
		table.Add(filePath, sym.Name, sym.ID, string(sym.Label))
		store.AddRelation(types.Relation{From: types.FileNodeID(filePath), To: sym.ID, Type: types.RelDefines})
	}
}

// ExtractFile runs Collect and Apply in one step for single-threaded
// callers. Files in an unknown language are skipped (still expected to
// already carry a File node from the walker).
func (e *Extractor) ExtractFile(store *graph.Store, table *SymbolTable, f walk.File) error {
	syms, err := e.Collect(f)
	if err != nil {
		return err
	}
	Apply(store, table, f.Path, syms)
	return nil
}

// computeExported applies the per-language isExported rule.
func (e *Extractor) computeExported(lang string, label types.NodeLabel, name string, defNode *tree_sitter.Node, content []byte) bool {
	if !types.IsExportableLabel(label) {
		return false
	}
	switch lang {
	case "typescript", "javascript":
		return IsExportedTSJS(defNode, content)
	case "python":
		return IsExportedPython(name)
	case "go":
		return IsExportedGo(name)
	default:
		return false
	}
}

func splitLines(content []byte) []string {
	return strings.Split(string(content), "\n")
}

// snippet extracts lines [start-2, end+2] (0-based, inclusive), capped at
// maxChars.
func snippet(lines []string, start, end, maxChars int) string {
	lo := start - 2
	if lo < 0 {
		lo = 0
	}
	hi := end + 2
	if hi >= len(lines) {
		hi = len(lines) - 1
	}
	if hi < lo {
		return ""
	}
	s := strings.Join(lines[lo:hi+1], "\n")
	if maxChars > 0 && len(s) > maxChars {
		s = s[:maxChars]
	}
	return s
}
