package extract_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gitnexus/gitnexus/internal/astcache"
	"github.com/gitnexus/gitnexus/internal/config"
	"github.com/gitnexus/gitnexus/internal/extract"
	"github.com/gitnexus/gitnexus/internal/graph"
	"github.com/gitnexus/gitnexus/internal/parser"
	"github.com/gitnexus/gitnexus/internal/types"
	"github.com/gitnexus/gitnexus/internal/walk"
)

func extractOne(t *testing.T, path, language, source string) (*graph.Store, *extract.SymbolTable) {
	t.Helper()
	cfg := config.Default(t.TempDir())
	reg := parser.New()
	cache := astcache.New(cfg.Ingest.ASTCacheCapacity)
	store := graph.NewStore()
	table := extract.NewSymbolTable()
	ext := extract.New(reg, cache, cfg)

	f := walk.File{Path: path, Language: language, Bytes: []byte(source)}
	store.AddFile(&types.FileNode{ID: types.FileNodeID(path), Name: path, FilePath: path, Content: source})
	require.NoError(t, ext.ExtractFile(store, table, f))
	return store, table
}

// TestGoExportedness: an uppercase first letter exports, a lowercase one
// does not.
func TestGoExportedness(t *testing.T) {
	store, _ := extractOne(t, "pkg/a.go", "go", "package pkg\n\nfunc Foo() {}\n\nfunc bar() {}\n")

	foo, ok := store.GetSymbol(types.SymbolNodeID(types.LabelFunction, "pkg/a.go", "Foo"))
	require.True(t, ok)
	assert.True(t, foo.IsExported)

	bar, ok := store.GetSymbol(types.SymbolNodeID(types.LabelFunction, "pkg/a.go", "bar"))
	require.True(t, ok)
	assert.False(t, bar.IsExported)
}

// TestGoStructNotDoubledAsTypedef: the generic type-declaration pattern also
// matches struct/interface declarations; the more specific label must win
// and only one symbol may be registered per declaration site.
func TestGoStructNotDoubledAsTypedef(t *testing.T) {
	src := "package pkg\n\ntype Config struct { N int }\n\ntype Reader interface { Read() }\n\ntype Alias = int\n"
	store, _ := extractOne(t, "pkg/t.go", "go", src)

	_, ok := store.GetSymbol(types.SymbolNodeID(types.LabelStruct, "pkg/t.go", "Config"))
	assert.True(t, ok)
	_, ok = store.GetSymbol(types.SymbolNodeID(types.LabelTypedef, "pkg/t.go", "Config"))
	assert.False(t, ok, "struct declaration must not also register as Typedef")

	_, ok = store.GetSymbol(types.SymbolNodeID(types.LabelInterface, "pkg/t.go", "Reader"))
	assert.True(t, ok)
	_, ok = store.GetSymbol(types.SymbolNodeID(types.LabelTypedef, "pkg/t.go", "Reader"))
	assert.False(t, ok)
}

// TestPythonMethodLabel: a function nested in a class body registers as a
// Method, a top-level function as a Function, and never both.
func TestPythonMethodLabel(t *testing.T) {
	src := "class Account:\n    def deposit(self, n):\n        pass\n\ndef standalone():\n    pass\n"
	store, _ := extractOne(t, "bank/account.py", "python", src)

	_, ok := store.GetSymbol(types.SymbolNodeID(types.LabelMethod, "bank/account.py", "deposit"))
	assert.True(t, ok)
	_, ok = store.GetSymbol(types.SymbolNodeID(types.LabelFunction, "bank/account.py", "deposit"))
	assert.False(t, ok, "class method must not also register as Function")

	standalone, ok := store.GetSymbol(types.SymbolNodeID(types.LabelFunction, "bank/account.py", "standalone"))
	require.True(t, ok)
	assert.True(t, standalone.IsExported)

	cls, ok := store.GetSymbol(types.SymbolNodeID(types.LabelClass, "bank/account.py", "Account"))
	require.True(t, ok)
	assert.True(t, cls.IsExported)
}

func TestPythonUnderscoreNotExported(t *testing.T) {
	store, _ := extractOne(t, "m.py", "python", "def _hidden():\n    pass\n")
	hidden, ok := store.GetSymbol(types.SymbolNodeID(types.LabelFunction, "m.py", "_hidden"))
	require.True(t, ok)
	assert.False(t, hidden.IsExported)
}

func TestDefinesEdgePerSymbol(t *testing.T) {
	store, _ := extractOne(t, "pkg/a.go", "go", "package pkg\n\nfunc Foo() {}\n")
	defines := store.RelationsOfType(types.RelDefines)
	require.Len(t, defines, 1)
	assert.Equal(t, types.FileNodeID("pkg/a.go"), defines[0].From)
	assert.Equal(t, types.SymbolNodeID(types.LabelFunction, "pkg/a.go", "Foo"), defines[0].To)
}

// Pure per-language rules for grammars that are not wired.
func TestExportRulesForUnwiredLanguages(t *testing.T) {
	assert.True(t, extract.IsExportedJava("public static", ""))
	assert.True(t, extract.IsExportedJava("", "public class Foo {"))
	assert.False(t, extract.IsExportedJava("private", "class Foo {"))

	assert.True(t, extract.IsExportedCSharp([]string{"public"}))
	assert.False(t, extract.IsExportedCSharp([]string{"internal", "sealed"}))

	assert.True(t, extract.IsExportedRust([]string{"pub(crate)"}))
	assert.False(t, extract.IsExportedRust(nil))

	assert.False(t, extract.IsExportedCFamily())

	assert.True(t, extract.IsExportedGo("Foo"))
	assert.False(t, extract.IsExportedGo("foo"))
	assert.False(t, extract.IsExportedGo(""))
}

func TestSymbolTableLookups(t *testing.T) {
	table := extract.NewSymbolTable()
	table.Add("a.ts", "foo", "Function:a.ts:foo", "Function")
	table.Add("b.ts", "foo", "Function:b.ts:foo", "Function")
	table.Add("a.ts", "Bar", "Class:a.ts:Bar", "Class")

	id, ok := table.LookupExact("a.ts", "foo")
	require.True(t, ok)
	assert.Equal(t, "Function:a.ts:foo", id)

	_, ok = table.LookupExact("c.ts", "foo")
	assert.False(t, ok)

	refs := table.LookupFuzzy("foo")
	require.Len(t, refs, 2)
	assert.Equal(t, "Function:a.ts:foo", refs[0].ID, "fuzzy candidates keep insertion order")

	stats := table.Stats()
	assert.Equal(t, 2, stats.Files)
	assert.Equal(t, 2, stats.Names)
	assert.Equal(t, 3, stats.Entries)

	table.Clear()
	assert.Empty(t, table.LookupFuzzy("foo"))
}

func TestSymbolTableMergeKeepsShardOrder(t *testing.T) {
	first := extract.NewSymbolTable()
	first.Add("a.ts", "foo", "Function:a.ts:foo", "Function")

	second := extract.NewSymbolTable()
	second.Add("b.ts", "foo", "Function:b.ts:foo", "Function")

	first.Merge(second)
	refs := first.LookupFuzzy("foo")
	require.Len(t, refs, 2)
	assert.Equal(t, "Function:a.ts:foo", refs[0].ID)
	assert.Equal(t, "Function:b.ts:foo", refs[1].ID)
}
