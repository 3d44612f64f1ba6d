package csvbuild_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gitnexus/gitnexus/internal/csvbuild"
	"github.com/gitnexus/gitnexus/internal/graph"
	"github.com/gitnexus/gitnexus/internal/types"
)

func buildFixtureStore() *graph.Store {
	store := graph.NewStore()
	store.AddFile(&types.FileNode{ID: types.FileNodeID("auth/login.go"), Name: "login.go", FilePath: "auth/login.go", Content: "package auth"})
	store.AddFolder(&types.FolderNode{ID: types.FolderNodeID("auth"), Name: "auth", FilePath: "auth"})

	loginID := types.SymbolNodeID(types.LabelFunction, "auth/login.go", "Login")
	store.AddSymbol(&types.CodeSymbol{ID: loginID, Label: types.LabelFunction, Name: "Login", FilePath: "auth/login.go", StartLine: 1, EndLine: 3, Content: "func Login() {}", IsExported: true})

	checkID := types.SymbolNodeID(types.LabelFunction, "auth/login.go", "checkPassword")
	store.AddSymbol(&types.CodeSymbol{ID: checkID, Label: types.LabelFunction, Name: "checkPassword", FilePath: "auth/login.go", StartLine: 5, EndLine: 7, Content: "func checkPassword() {}"})

	store.AddRelation(types.Relation{From: loginID, To: checkID, Type: types.RelCalls, Confidence: types.ConfidenceSameFile, Reason: types.ReasonSameFile})
	store.AddRelation(types.Relation{From: types.FileNodeID("auth/login.go"), To: loginID, Type: types.RelDefines})

	store.AddCommunity(&types.Community{ID: types.CommunityNodeID(0), Label: "auth", HeuristicLabel: "auth", EnrichedBy: types.EnrichedHeuristic, Cohesion: 1.0, SymbolCount: 2})
	store.AddRelation(types.Relation{From: loginID, To: types.CommunityNodeID(0), Type: types.RelMemberOf})
	store.AddRelation(types.Relation{From: checkID, To: types.CommunityNodeID(0), Type: types.RelMemberOf})

	store.AddProcess(&types.Process{ID: types.ProcessNodeID(0), ProcessType: types.ProcessIntraCommunity, StepCount: 2, EntryPointID: loginID, TerminalID: checkID})
	store.AddRelation(types.Relation{From: loginID, To: types.ProcessNodeID(0), Type: types.RelStepInProcess, Step: 0})
	store.AddRelation(types.Relation{From: checkID, To: types.ProcessNodeID(0), Type: types.RelStepInProcess, Step: 1})

	return store
}

func TestWriteNodesProducesPerLabelCSVs(t *testing.T) {
	store := buildFixtureStore()
	dir := t.TempDir()
	builder := csvbuild.NewBuilder(dir, filepath.Join(dir, "out"), 10, 0)

	require.NoError(t, builder.WriteNodes(store))

	for _, name := range []string{"File.csv", "Folder.csv", "Function.csv", "Community.csv", "Process.csv"} {
		data, err := os.ReadFile(filepath.Join(dir, "out", name))
		require.NoError(t, err, name)
		assert.Contains(t, string(data), "id")
	}

	fnCSV, err := os.ReadFile(filepath.Join(dir, "out", "Function.csv"))
	require.NoError(t, err)
	assert.Equal(t, 3, strings.Count(string(fnCSV), "\n")) // header + 2 rows
}

func TestWriteNodesSanitizesAndQuotesFields(t *testing.T) {
	store := graph.NewStore()
	store.AddFile(&types.FileNode{ID: types.FileNodeID("a.go"), Name: "a.go", FilePath: "a.go", Content: "line\x00with\x01control \"quoted\""})
	dir := t.TempDir()
	builder := csvbuild.NewBuilder(dir, filepath.Join(dir, "out"), 10, 0)
	require.NoError(t, builder.WriteNodes(store))

	data, err := os.ReadFile(filepath.Join(dir, "out", "File.csv"))
	require.NoError(t, err)
	content := string(data)
	assert.NotContains(t, content, "\x00")
	assert.NotContains(t, content, "\x01")
	assert.Contains(t, content, `""quoted""`)
}

func TestWriteRelationsAndSplitByPair(t *testing.T) {
	store := buildFixtureStore()
	dir := t.TempDir()
	builder := csvbuild.NewBuilder(dir, filepath.Join(dir, "out"), 10, 0)

	path, err := builder.WriteRelations(store)
	require.NoError(t, err)

	pairFiles, err := csvbuild.SplitRelationsByPair(path, filepath.Join(dir, "out", "pairs"))
	require.NoError(t, err)
	require.NotEmpty(t, pairFiles)

	found := false
	for _, p := range pairFiles {
		if strings.Contains(p, "Function__Function") {
			found = true
			data, err := os.ReadFile(p)
			require.NoError(t, err)
			assert.Contains(t, string(data), "CALLS")
		}
	}
	assert.True(t, found, "expected a Function__Function pair file")
}

func TestFileContentLazilyReadFromDisk(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "pkg"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pkg", "x.go"), []byte("package pkg"), 0o644))

	store := graph.NewStore()
	store.AddFile(&types.FileNode{ID: types.FileNodeID("pkg/x.go"), Name: "x.go", FilePath: "pkg/x.go"})

	builder := csvbuild.NewBuilder(dir, filepath.Join(dir, "out"), 10, 0)
	require.NoError(t, builder.WriteNodes(store))

	data, err := os.ReadFile(filepath.Join(dir, "out", "File.csv"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "package pkg")
}
