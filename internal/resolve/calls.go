package resolve

import (
	"path"
	"sort"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/gitnexus/gitnexus/internal/astcache"
	"github.com/gitnexus/gitnexus/internal/extract"
	"github.com/gitnexus/gitnexus/internal/graph"
	"github.com/gitnexus/gitnexus/internal/parser"
	"github.com/gitnexus/gitnexus/internal/types"
	"github.com/gitnexus/gitnexus/internal/walk"
)

// functionKinds is, per language, the set of node kinds that count as an
// "enclosing function" when walking ancestors from a call site.
var functionKinds = map[string]map[string]bool{
	"go": {
		"function_declaration": true,
		"method_declaration":   true,
	},
	"javascript": {
		"function_declaration":           true,
		"generator_function_declaration": true,
		"function_expression":            true,
		"generator_function":             true,
		"arrow_function":                 true,
		"method_definition":              true,
	},
	"typescript": {
		"function_declaration":           true,
		"generator_function_declaration": true,
		"function_expression":            true,
		"generator_function":             true,
		"arrow_function":                 true,
		"method_definition":              true,
	},
	"python": {
		"function_definition": true,
	},
}

// CallResolver resolves call targets in a fixed priority:
// import-resolved, then same-file, then fuzzy-global.
type CallResolver struct {
	reg   *parser.Registry
	cache *astcache.Cache

	// RankFuzzyCandidates, when set (Config.Search.FuzzyRanking), orders
	// fuzzy-global candidates by locality (same directory, then shared
	// path prefix) before the first is taken. Off by default so the
	// insertion-order behavior is preserved.
	RankFuzzyCandidates bool
}

// NewCallResolver returns a resolver sharing the registry/cache with the
// rest of the pipeline.
func NewCallResolver(reg *parser.Registry, cache *astcache.Cache) *CallResolver {
	return &CallResolver{reg: reg, cache: cache}
}

// ResolveFile scans f's call captures, determines the enclosing function for
// each, resolves the callee, and emits a CALLS edge.
func (r *CallResolver) ResolveFile(store *graph.Store, table *extract.SymbolTable, importMap *ImportMap, f walk.File) error {
	if f.Language == "" || !r.reg.Supported(f.Language) {
		return nil
	}
	tree, err := r.treeFor(f)
	if err != nil {
		return err
	}
	query, err := r.reg.Query(f.Language)
	if err != nil {
		return err
	}
	kinds := functionKinds[f.Language]

	scanMatches(tree, query, f.Bytes, func(caps []capture) {
		var nameNode *tree_sitter.Node
		var siteNode *tree_sitter.Node
		for _, c := range caps {
			switch c.name {
			case "call.name":
				nameNode = c.node
			case "call":
				siteNode = c.node
			}
		}
		if nameNode == nil || siteNode == nil {
			return
		}
		calleeName := parser.Text(nameNode, f.Bytes)
		if calleeName == "" || IsBuiltin(calleeName) {
			return
		}

		source := r.enclosingSource(siteNode, f, kinds, table)
		target, reason, confidence := r.resolveTarget(store, table, importMap, f.Path, calleeName)
		if target == "" {
			return
		}
		store.AddRelation(types.Relation{
			From:       source,
			To:         target,
			Type:       types.RelCalls,
			Confidence: confidence,
			Reason:     reason,
		})
	})
	return nil
}

// enclosingSource finds the innermost function-like ancestor of site and
// returns its symbol id, falling back to the File id. The id is
// taken from the symbol table when the extractor registered the name, so a
// Python method resolves to its Method: id rather than a guessed label;
// the node-kind-derived id is the fallback for names the extractor never
// saw (e.g. an anonymous wrapper the queries don't capture).
func (r *CallResolver) enclosingSource(site *tree_sitter.Node, f walk.File, kinds map[string]bool, table *extract.SymbolTable) string {
	if kinds != nil {
		anc := parser.FindAncestor(site.Parent(), func(n *tree_sitter.Node) bool {
			return kinds[n.Kind()]
		})
		if anc != nil {
			defNode := anc
			if f.Language == "rust" {
				if inner := findDescendant(anc, "function_item"); inner != nil {
					defNode = inner
				}
			}
			if name := enclosingName(defNode, f.Bytes); name != "" {
				if id, ok := table.LookupExact(f.Path, name); ok {
					return id
				}
				label := labelForFunctionKind(defNode.Kind())
				return types.SymbolNodeID(label, f.Path, name)
			}
		}
	}
	return types.FileNodeID(f.Path)
}

// enclosingName reads a function-like node's name from its "name" field, or
// (for anonymous forms bound through a variable_declarator) the nearest
// identifier sibling.
func enclosingName(n *tree_sitter.Node, content []byte) string {
	if nameNode := n.ChildByFieldName("name"); nameNode != nil {
		return parser.Text(nameNode, content)
	}
	if n.Parent() != nil && n.Parent().Kind() == "variable_declarator" {
		if nameNode := n.Parent().ChildByFieldName("name"); nameNode != nil {
			return parser.Text(nameNode, content)
		}
	}
	return ""
}

// labelForFunctionKind maps a function-like node kind to the label used when
// it was registered by the extractor, so the lookup id matches exactly.
func labelForFunctionKind(kind string) types.NodeLabel {
	if kind == "method_definition" || kind == "method_declaration" {
		return types.LabelMethod
	}
	return types.LabelFunction
}

func findDescendant(n *tree_sitter.Node, kind string) *tree_sitter.Node {
	count := int(n.ChildCount())
	for i := 0; i < count; i++ {
		c := n.Child(uint(i))
		if c == nil {
			continue
		}
		if c.Kind() == kind {
			return c
		}
		if found := findDescendant(c, kind); found != nil {
			return found
		}
	}
	return nil
}

// resolveTarget tries import-resolved, same-file, then fuzzy-global.
func (r *CallResolver) resolveTarget(store *graph.Store, table *extract.SymbolTable, importMap *ImportMap, callerPath, name string) (string, types.CallReason, float64) {
	for _, targetFileID := range importMap.Targets(callerPath) {
		targetPath := targetFileID
		if id, ok := table.LookupExact(targetPath, name); ok {
			return id, types.ReasonImportResolved, types.ConfidenceImportResolved
		}
	}

	if id, ok := table.LookupExact(callerPath, name); ok {
		return id, types.ReasonSameFile, types.ConfidenceSameFile
	}

	candidates := table.LookupFuzzy(name)
	if len(candidates) == 0 {
		return "", "", 0
	}
	confidence := types.ConfidenceFuzzySingle
	if len(candidates) > 1 {
		confidence = types.ConfidenceFuzzyMultiple
		if r.RankFuzzyCandidates {
			rankByLocality(candidates, callerPath)
		}
	}
	return candidates[0].ID, types.ReasonFuzzyGlobal, confidence
}

// rankByLocality stably reorders fuzzy candidates so definitions in the
// caller's own directory come first, then those sharing the longest path
// prefix with the caller. Stable so equally-local candidates keep their
// registration order.
func rankByLocality(candidates []extract.SymbolRef, callerPath string) {
	callerDir := path.Dir(callerPath)
	sort.SliceStable(candidates, func(i, j int) bool {
		return localityScore(candidates[i].FilePath, callerDir) > localityScore(candidates[j].FilePath, callerDir)
	})
}

func localityScore(filePath, callerDir string) int {
	if path.Dir(filePath) == callerDir {
		return 1 << 30
	}
	shared := 0
	for shared < len(filePath) && shared < len(callerDir) && filePath[shared] == callerDir[shared] {
		shared++
	}
	return shared
}

func (r *CallResolver) treeFor(f walk.File) (*tree_sitter.Tree, error) {
	if t, ok := r.cache.Get(f.Path); ok {
		return t.(*tree_sitter.Tree), nil
	}
	tree, err := r.reg.Parse(f.Language, f.Bytes)
	if err != nil {
		return nil, err
	}
	r.cache.Set(f.Path, tree)
	return tree, nil
}
