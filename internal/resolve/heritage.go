package resolve

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/gitnexus/gitnexus/internal/astcache"
	ierrors "github.com/gitnexus/gitnexus/internal/errors"
	"github.com/gitnexus/gitnexus/internal/extract"
	"github.com/gitnexus/gitnexus/internal/graph"
	"github.com/gitnexus/gitnexus/internal/parser"
	"github.com/gitnexus/gitnexus/internal/types"
	"github.com/gitnexus/gitnexus/internal/walk"
)

// HeritageResolver emits EXTENDS/IMPLEMENTS edges from the heritage capture
// groups.
type HeritageResolver struct {
	reg      *parser.Registry
	cache    *astcache.Cache
	warnings *ierrors.WarningList // optional; records each synthesized dangling target
}

// NewHeritageResolver returns a resolver sharing the registry/cache with the
// rest of the pipeline. warnings may be nil to skip miss tracking.
func NewHeritageResolver(reg *parser.Registry, cache *astcache.Cache, warnings *ierrors.WarningList) *HeritageResolver {
	return &HeritageResolver{reg: reg, cache: cache, warnings: warnings}
}

// ResolveFile scans f's heritage captures and emits EXTENDS/IMPLEMENTS edges,
// falling back to synthetic targets when the parent cannot be found.
func (h *HeritageResolver) ResolveFile(store *graph.Store, table *extract.SymbolTable, f walk.File) error {
	if f.Language == "" || !h.reg.Supported(f.Language) {
		return nil
	}
	tree, err := h.treeFor(f)
	if err != nil {
		return err
	}
	query, err := h.reg.Query(f.Language)
	if err != nil {
		return err
	}

	scanMatches(tree, query, f.Bytes, func(caps []capture) {
		var childName string
		var extendsNames []string
		var implementsNames []string

		for _, c := range caps {
			switch c.name {
			case "name.heritage":
				childName = parser.Text(c.node, f.Bytes)
			case "heritage.extends":
				extendsNames = append(extendsNames, parser.Text(c.node, f.Bytes))
			case "heritage.implements":
				implementsNames = append(implementsNames, parser.Text(c.node, f.Bytes))
			}
		}
		if childName == "" {
			return
		}

		childID, ok := table.LookupExact(f.Path, childName)
		if !ok {
			if refs := table.LookupFuzzy(childName); len(refs) > 0 {
				childID = refs[0].ID
			} else {
				return // no definition for the child symbol at all; nothing to anchor the edge to
			}
		}

		for _, parentName := range extendsNames {
			parentID := h.resolveParent(store, table, f.Path, parentName, types.LabelClass)
			store.AddRelation(types.Relation{From: childID, To: parentID, Type: types.RelExtends})
		}
		for _, ifaceName := range implementsNames {
			parentID := h.resolveParent(store, table, f.Path, ifaceName, types.LabelInterface)
			store.AddRelation(types.Relation{From: childID, To: parentID, Type: types.RelImplements})
		}
	})
	return nil
}

// resolveParent looks up parentName via the fuzzy index, falling back to a
// synthetic placeholder node labeled fallbackLabel so the edge target always
// exists in the graph. The fallback is recorded
// as a ResolutionMiss so the end-of-run summary counts it.
func (h *HeritageResolver) resolveParent(store *graph.Store, table *extract.SymbolTable, fromPath, name string, fallbackLabel types.NodeLabel) string {
	if refs := table.LookupFuzzy(name); len(refs) > 0 {
		return refs[0].ID
	}
	id := types.SyntheticSymbolID(fallbackLabel, name)
	store.AddSymbol(&types.CodeSymbol{
		ID:         id,
		Label:      fallbackLabel,
		Name:       name,
		IsExported: false,
		Synthetic:  true,
	})
	if h.warnings != nil {
		h.warnings.AddResolutionMiss("heritage", fromPath, name)
	}
	return id
}

func (h *HeritageResolver) treeFor(f walk.File) (*tree_sitter.Tree, error) {
	if t, ok := h.cache.Get(f.Path); ok {
		return t.(*tree_sitter.Tree), nil
	}
	tree, err := h.reg.Parse(f.Language, f.Bytes)
	if err != nil {
		return nil, err
	}
	h.cache.Set(f.Path, tree)
	return tree, nil
}
