package persist_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gitnexus/gitnexus/internal/csvbuild"
	"github.com/gitnexus/gitnexus/internal/graph"
	"github.com/gitnexus/gitnexus/internal/persist"
	"github.com/gitnexus/gitnexus/internal/types"
)

func buildFixtureStore() *graph.Store {
	store := graph.NewStore()
	store.AddFile(&types.FileNode{ID: types.FileNodeID("auth/login.go"), Name: "login.go", FilePath: "auth/login.go", Content: "package auth"})

	loginID := types.SymbolNodeID(types.LabelFunction, "auth/login.go", "Login")
	store.AddSymbol(&types.CodeSymbol{ID: loginID, Label: types.LabelFunction, Name: "Login", FilePath: "auth/login.go", StartLine: 1, EndLine: 3, Content: "func Login() {}", IsExported: true})

	checkID := types.SymbolNodeID(types.LabelFunction, "auth/login.go", "checkPassword")
	store.AddSymbol(&types.CodeSymbol{ID: checkID, Label: types.LabelFunction, Name: "checkPassword", FilePath: "auth/login.go", StartLine: 5, EndLine: 7, Content: "func checkPassword() {}"})

	store.AddRelation(types.Relation{From: loginID, To: checkID, Type: types.RelCalls, Confidence: types.ConfidenceSameFile, Reason: types.ReasonSameFile})
	store.AddRelation(types.Relation{From: types.FileNodeID("auth/login.go"), To: loginID, Type: types.RelDefines})
	return store
}

func setupLoaded(t *testing.T) (*persist.Store, persist.Report) {
	t.Helper()
	dir := t.TempDir()

	store := buildFixtureStore()
	builder := csvbuild.NewBuilder(dir, filepath.Join(dir, "csv"), 10, 0)
	require.NoError(t, builder.WriteNodes(store))
	relPath, err := builder.WriteRelations(store)
	require.NoError(t, err)

	pairsDir := filepath.Join(dir, "csv", "pairs")
	_, err = csvbuild.SplitRelationsByPair(relPath, pairsDir)
	require.NoError(t, err)

	db, err := persist.Open(filepath.Join(dir, "badger"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	report, err := db.BulkLoad(context.Background(), filepath.Join(dir, "csv"), pairsDir)
	require.NoError(t, err)
	return db, report
}

func TestBulkLoadLoadsNodesAndRelations(t *testing.T) {
	db, report := setupLoaded(t)

	assert.Equal(t, 3, report.NodesLoaded) // 1 file + 2 functions
	assert.Equal(t, 2, report.RelationsLoaded)
	assert.Zero(t, report.NodeFallbacks)
	assert.Zero(t, report.RelationFallbacks)

	rec, err := db.GetNode(types.FileNodeID("auth/login.go"))
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "login.go", rec["name"])
}

func TestBulkLoadBuildsAdjacencyIndexes(t *testing.T) {
	db, _ := setupLoaded(t)

	loginID := types.SymbolNodeID(types.LabelFunction, "auth/login.go", "Login")
	checkID := types.SymbolNodeID(types.LabelFunction, "auth/login.go", "checkPassword")

	out, err := db.Outgoing(loginID)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, checkID, out[0].To)
	assert.Equal(t, types.RelCalls, out[0].Type)

	in, err := db.Incoming(checkID)
	require.NoError(t, err)
	require.Len(t, in, 1)
	assert.Equal(t, loginID, in[0].From)
}

func TestBulkLoadReportsNoSchemaWarningForPermittedPairs(t *testing.T) {
	_, report := setupLoaded(t)
	assert.Empty(t, report.SchemaWarnings)
}

func TestPairPermittedRejectsUnknownPair(t *testing.T) {
	assert.False(t, persist.PairPermitted(types.LabelCommunity, types.LabelFolder))
	assert.True(t, persist.PairPermitted(types.LabelFunction, types.LabelFunction))
	assert.True(t, persist.PairPermitted(types.LabelFile, types.LabelFunction))
}

func TestGetNodeReturnsNilForMissingID(t *testing.T) {
	db, _ := setupLoaded(t)
	rec, err := db.GetNode("File:does/not/exist.go")
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestLoadEmbeddingsRoundTripsThroughAllEmbeddings(t *testing.T) {
	dir := t.TempDir()
	loginID := types.SymbolNodeID(types.LabelFunction, "auth/login.go", "Login")
	store := buildFixtureStore()
	store.AddEmbedding(&types.CodeEmbedding{NodeID: loginID, Embedding: []float32{0.5, -0.25, 1}})

	builder := csvbuild.NewBuilder(dir, filepath.Join(dir, "csv"), 10, 0)
	embPath, err := builder.WriteEmbeddings(store)
	require.NoError(t, err)

	db, err := persist.Open(filepath.Join(dir, "badger"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	loaded, err := db.LoadEmbeddings(embPath)
	require.NoError(t, err)
	assert.Equal(t, 1, loaded)

	all, err := db.AllEmbeddings()
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, loginID, all[0].NodeID)
	assert.Equal(t, []float32{0.5, -0.25, 1}, all[0].Embedding)

	// An embedding row must never shadow the symbol node sharing its id.
	rec, err := db.GetNode(loginID)
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestLoadEmbeddingsIsANoOpWhenFileIsAbsent(t *testing.T) {
	dir := t.TempDir()
	db, err := persist.Open(filepath.Join(dir, "badger"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	loaded, err := db.LoadEmbeddings(filepath.Join(dir, "csv", "CodeEmbedding.csv"))
	require.NoError(t, err)
	assert.Zero(t, loaded)
}
