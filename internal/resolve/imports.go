package resolve

import (
	"path"
	"strings"
	"sync"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/gitnexus/gitnexus/internal/astcache"
	"github.com/gitnexus/gitnexus/internal/graph"
	"github.com/gitnexus/gitnexus/internal/parser"
	"github.com/gitnexus/gitnexus/internal/types"
	"github.com/gitnexus/gitnexus/internal/walk"
)

// extensionOrder is the language-neutral ordered list of extensions/forms
// tried when resolving a relative import.
var extensionOrder = []string{
	// TS/JS
	".ts", ".tsx", ".js", ".jsx", ".mjs", ".cjs",
	"/index.ts", "/index.tsx", "/index.js", "/index.jsx",
	// Python
	".py", "/__init__.py",
	// Java
	".java",
	// C/C++
	".c", ".h", ".cpp", ".hpp", ".cc", ".cxx", ".hxx", ".hh",
	// C#
	".cs",
	// Go
	".go",
	// Rust
	".rs", "/mod.rs",
}

// ImportMap records, per importer file path, the resolved import targets in
// the order the import statements appear. Order matters downstream:
// the call resolver returns the "first exact match in any imported file's
// symbol index", and a map-iteration order would make that first
// match vary run to run.
type ImportMap struct {
	mu   sync.RWMutex
	data map[string][]string
	seen map[string]map[string]bool
}

// NewImportMap returns an empty map.
func NewImportMap() *ImportMap {
	return &ImportMap{
		data: make(map[string][]string),
		seen: make(map[string]map[string]bool),
	}
}

func (m *ImportMap) add(importer, targetFileID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	set, ok := m.seen[importer]
	if !ok {
		set = make(map[string]bool)
		m.seen[importer] = set
	}
	if set[targetFileID] {
		return
	}
	set[targetFileID] = true
	m.data[importer] = append(m.data[importer], targetFileID)
}

// Targets returns the resolved import targets for importer (file paths, not
// file ids), in statement order.
func (m *ImportMap) Targets(importer string) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, len(m.data[importer]))
	copy(out, m.data[importer])
	return out
}

// ImportResolver resolves import specifiers to File ids.
type ImportResolver struct {
	reg       *parser.Registry
	cache     *astcache.Cache
	filePaths map[string]bool // normalized repo-relative paths present in the repo

	memoMu sync.Mutex
	memo   map[string]string // "importerPath|rawSpecifier" -> targetFileID ("" = miss)
}

// NewImportResolver returns a resolver over the given file-path universe.
func NewImportResolver(reg *parser.Registry, cache *astcache.Cache, allPaths []string) *ImportResolver {
	fp := make(map[string]bool, len(allPaths))
	for _, p := range allPaths {
		fp[p] = true
	}
	return &ImportResolver{reg: reg, cache: cache, filePaths: fp, memo: make(map[string]string)}
}

// ResolveFile scans f's import captures, resolves each to a File id, adds
// the IMPORTS edge, and records the mapping in importMap. The tree must
// already be present in the shared AST cache (populated by the extractor
// phase); a cache miss re-parses from f.Bytes.
func (r *ImportResolver) ResolveFile(store *graph.Store, importMap *ImportMap, f walk.File) error {
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

	scanMatches(tree, query, f.Bytes, func(caps []capture) {
		for _, c := range caps {
			if c.name != "import.source" {
				continue
			}
			raw := parser.Text(c.node, f.Bytes)
			target, ok := r.resolve(f.Path, raw)
			if !ok {
				continue
			}
			if !store.HasNode(target) {
				continue // IMPORTS targets must exist in the graph
			}
			importMap.add(f.Path, strings.TrimPrefix(target, "File:"))
			store.AddRelation(types.Relation{
				From: types.FileNodeID(f.Path),
				To:   target,
				Type: types.RelImports,
			})
		}
	})
	return nil
}

func (r *ImportResolver) treeFor(f walk.File) (*tree_sitter.Tree, error) {
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

func (r *ImportResolver) resolve(importer, raw string) (string, bool) {
	key := importer + "|" + raw
	r.memoMu.Lock()
	if v, ok := r.memo[key]; ok {
		r.memoMu.Unlock()
		if v == "" {
			return "", false
		}
		return v, true
	}
	r.memoMu.Unlock()

	target, ok := r.resolveUncached(importer, raw)
	r.memoMu.Lock()
	if ok {
		r.memo[key] = target
	} else {
		r.memo[key] = ""
	}
	r.memoMu.Unlock()
	return target, ok
}

func (r *ImportResolver) resolveUncached(importer, raw string) (string, bool) {
	raw = strings.Trim(raw, `"'`)
	if raw == "" {
		return "", false
	}
	if strings.HasSuffix(raw, ".*") {
		return "", false
	}

	if strings.HasPrefix(raw, ".") {
		dir := path.Dir(importer)
		joined := path.Clean(path.Join(dir, raw))
		if fp, ok := r.tryExtensions(joined); ok {
			return types.FileNodeID(fp), true
		}
		return "", false
	}

	// dotted/slashed package specifier: normalize and try decreasing suffixes
	normalized := strings.ReplaceAll(raw, ".", "/")
	segments := strings.Split(normalized, "/")
	for i := 0; i < len(segments); i++ {
		suffix := strings.Join(segments[i:], "/")
		if fp, ok := r.trySuffixMatch(suffix); ok {
			return types.FileNodeID(fp), true
		}
	}
	return "", false
}

// tryExtensions tries joined as-is then joined+ext for every extension in
// extensionOrder, first hit wins.
func (r *ImportResolver) tryExtensions(joined string) (string, bool) {
	if r.filePaths[joined] {
		return joined, true
	}
	for _, ext := range extensionOrder {
		candidate := joined + ext
		if r.filePaths[candidate] {
			return candidate, true
		}
	}
	return "", false
}

// trySuffixMatch matches a package-specifier suffix against known file
// paths, requiring a leading "/" before the match (or an exact whole-path
// match) to avoid e.g. "View.java" matching "RootView.java".
func (r *ImportResolver) trySuffixMatch(suffix string) (string, bool) {
	for _, ext := range extensionOrder {
		candidate := suffix + ext
		if r.filePaths[candidate] {
			return candidate, true
		}
		needle := "/" + candidate
		for fp := range r.filePaths {
			if fp == candidate || strings.HasSuffix(fp, needle) {
				return fp, true
			}
		}
		lcNeedle := strings.ToLower(needle)
		lcCandidate := strings.ToLower(candidate)
		for fp := range r.filePaths {
			lcfp := strings.ToLower(fp)
			if lcfp == lcCandidate || strings.HasSuffix(lcfp, lcNeedle) {
				return fp, true
			}
		}
	}
	return "", false
}
