package resolve_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gitnexus/gitnexus/internal/astcache"
	"github.com/gitnexus/gitnexus/internal/config"
	"github.com/gitnexus/gitnexus/internal/extract"
	"github.com/gitnexus/gitnexus/internal/graph"
	"github.com/gitnexus/gitnexus/internal/parser"
	"github.com/gitnexus/gitnexus/internal/resolve"
	"github.com/gitnexus/gitnexus/internal/types"
	"github.com/gitnexus/gitnexus/internal/walk"
)

// ingestFixture runs the walk/extract/resolve pipeline over a set of files
// written to a temp dir, returning the populated store for assertions.
func ingestFixture(t *testing.T, files map[string]string) *graph.Store {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		abs := filepath.Join(root, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(abs), 0o755))
		require.NoError(t, os.WriteFile(abs, []byte(content), 0o644))
	}

	cfg := config.Default(root)
	w := walk.New(root, cfg)
	routed, err := w.Walk()
	require.NoError(t, err)

	reg := parser.New()
	cache := astcache.New(cfg.Ingest.ASTCacheCapacity)
	store := graph.NewStore()
	table := extract.NewSymbolTable()
	ext := extract.New(reg, cache, cfg)

	var paths []string
	for _, f := range routed {
		store.AddFile(&types.FileNode{ID: types.FileNodeID(f.Path), Name: filepath.Base(f.Path), FilePath: f.Path, Content: string(f.Bytes)})
		paths = append(paths, f.Path)
		require.NoError(t, ext.ExtractFile(store, table, f))
	}

	importMap := resolve.NewImportMap()
	importResolver := resolve.NewImportResolver(reg, cache, paths)
	for _, f := range routed {
		require.NoError(t, importResolver.ResolveFile(store, importMap, f))
	}

	callResolver := resolve.NewCallResolver(reg, cache)
	for _, f := range routed {
		require.NoError(t, callResolver.ResolveFile(store, table, importMap, f))
	}

	heritageResolver := resolve.NewHeritageResolver(reg, cache, nil)
	for _, f := range routed {
		require.NoError(t, heritageResolver.ResolveFile(store, table, f))
	}

	return store
}

func relationBetween(store *graph.Store, from, to string, typ types.RelationType) (types.Relation, bool) {
	for _, r := range store.Relations() {
		if r.From == from && r.To == to && r.Type == typ {
			return r, true
		}
	}
	return types.Relation{}, false
}

// Two functions in one TypeScript file, the second calling the first.
func TestDefineCallSameFile(t *testing.T) {
	store := ingestFixture(t, map[string]string{
		"app/a.ts": "export function foo() {}\nexport function bar() { foo(); }\n",
	})

	foo, ok := store.GetSymbol(types.SymbolNodeID(types.LabelFunction, "app/a.ts", "foo"))
	require.True(t, ok)
	assert.True(t, foo.IsExported)

	bar, ok := store.GetSymbol(types.SymbolNodeID(types.LabelFunction, "app/a.ts", "bar"))
	require.True(t, ok)
	assert.True(t, bar.IsExported)

	rel, ok := relationBetween(store, bar.ID, foo.ID, types.RelCalls)
	require.True(t, ok)
	assert.Equal(t, types.ReasonSameFile, rel.Reason)
	assert.InDelta(t, types.ConfidenceSameFile, rel.Confidence, 1e-9)
}

// b.ts imports greet from a.ts and calls it inside main.
func TestResolvedImportCall(t *testing.T) {
	store := ingestFixture(t, map[string]string{
		"a.ts": "export function greet() {}\n",
		"b.ts": "import { greet } from './a';\nfunction main() { greet(); }\n",
	})

	_, ok := relationBetween(store, types.FileNodeID("b.ts"), types.FileNodeID("a.ts"), types.RelImports)
	require.True(t, ok)

	main, ok := store.GetSymbol(types.SymbolNodeID(types.LabelFunction, "b.ts", "main"))
	require.True(t, ok)
	greet, ok := store.GetSymbol(types.SymbolNodeID(types.LabelFunction, "a.ts", "greet"))
	require.True(t, ok)

	rel, ok := relationBetween(store, main.ID, greet.ID, types.RelCalls)
	require.True(t, ok)
	assert.Equal(t, types.ReasonImportResolved, rel.Reason)
	assert.InDelta(t, types.ConfidenceImportResolved, rel.Confidence, 1e-9)
}

// Two files each define foo with no imports between them; a third file's
// call resolves fuzzily to the first-registered foo.
func TestFuzzyGlobalCall(t *testing.T) {
	store := ingestFixture(t, map[string]string{
		"one/foo.ts":  "export function foo() {}\n",
		"two/foo.ts":  "export function foo() {}\n",
		"caller/c.ts": "function caller() { foo(); }\n",
	})

	firstFoo, ok := store.GetSymbol(types.SymbolNodeID(types.LabelFunction, "one/foo.ts", "foo"))
	require.True(t, ok)
	caller, ok := store.GetSymbol(types.SymbolNodeID(types.LabelFunction, "caller/c.ts", "caller"))
	require.True(t, ok)

	rel, ok := relationBetween(store, caller.ID, firstFoo.ID, types.RelCalls)
	require.True(t, ok)
	assert.Equal(t, types.ReasonFuzzyGlobal, rel.Reason)
	assert.InDelta(t, types.ConfidenceFuzzyMultiple, rel.Confidence, 1e-9)
}

// TestFuzzyRankingPrefersLocalDefinition: with Config.Search.FuzzyRanking
// enabled, the fuzzy-global lookup prefers the candidate in the caller's
// own directory over the first-registered one.
func TestFuzzyRankingPrefersLocalDefinition(t *testing.T) {
	files := map[string]string{
		"one/foo.ts": "export function foo() {}\n",
		"two/foo.ts": "export function foo() {}\n",
		"two/c.ts":   "function caller() { foo(); }\n",
	}
	root := t.TempDir()
	for rel, content := range files {
		abs := filepath.Join(root, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(abs), 0o755))
		require.NoError(t, os.WriteFile(abs, []byte(content), 0o644))
	}

	cfg := config.Default(root)
	w := walk.New(root, cfg)
	routed, err := w.Walk()
	require.NoError(t, err)

	reg := parser.New()
	cache := astcache.New(cfg.Ingest.ASTCacheCapacity)
	store := graph.NewStore()
	table := extract.NewSymbolTable()
	ext := extract.New(reg, cache, cfg)
	for _, f := range routed {
		store.AddFile(&types.FileNode{ID: types.FileNodeID(f.Path), Name: filepath.Base(f.Path), FilePath: f.Path})
		require.NoError(t, ext.ExtractFile(store, table, f))
	}

	callResolver := resolve.NewCallResolver(reg, cache)
	callResolver.RankFuzzyCandidates = true
	importMap := resolve.NewImportMap()
	for _, f := range routed {
		require.NoError(t, callResolver.ResolveFile(store, table, importMap, f))
	}

	caller := types.SymbolNodeID(types.LabelFunction, "two/c.ts", "caller")
	localFoo := types.SymbolNodeID(types.LabelFunction, "two/foo.ts", "foo")
	rel, ok := relationBetween(store, caller, localFoo, types.RelCalls)
	require.True(t, ok)
	assert.Equal(t, types.ReasonFuzzyGlobal, rel.Reason)
	assert.InDelta(t, types.ConfidenceFuzzyMultiple, rel.Confidence, 1e-9)
}

// TestImportResolverSkipsWildcard verifies a trailing ".*" specifier is
// treated as unresolvable rather than matched against anything.
func TestImportResolverSkipsWildcard(t *testing.T) {
	store := ingestFixture(t, map[string]string{
		"a.ts": "import * as everything from 'pkg.*';\nfunction use() {}\n",
	})
	rels := store.RelationsOfType(types.RelImports)
	assert.Empty(t, rels)
}

func TestHeritageExtendsAndImplements(t *testing.T) {
	store := ingestFixture(t, map[string]string{
		"shapes.ts": "class Shape {}\ninterface Drawable {}\nclass Circle extends Shape implements Drawable {}\n",
	})

	circle, ok := store.GetSymbol(types.SymbolNodeID(types.LabelClass, "shapes.ts", "Circle"))
	require.True(t, ok)
	shape, ok := store.GetSymbol(types.SymbolNodeID(types.LabelClass, "shapes.ts", "Shape"))
	require.True(t, ok)
	drawable, ok := store.GetSymbol(types.SymbolNodeID(types.LabelInterface, "shapes.ts", "Drawable"))
	require.True(t, ok)

	_, ok = relationBetween(store, circle.ID, shape.ID, types.RelExtends)
	assert.True(t, ok)
	_, ok = relationBetween(store, circle.ID, drawable.ID, types.RelImplements)
	assert.True(t, ok)
}

func TestBuiltinStopListSkipsCommonGlobals(t *testing.T) {
	assert.True(t, resolve.IsBuiltin("console"))
	assert.True(t, resolve.IsBuiltin("map"))
	assert.False(t, resolve.IsBuiltin("myCustomHelper"))
}
