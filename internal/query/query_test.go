package query_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gitnexus/gitnexus/internal/bm25"
	"github.com/gitnexus/gitnexus/internal/config"
	"github.com/gitnexus/gitnexus/internal/graph"
	"github.com/gitnexus/gitnexus/internal/query"
	"github.com/gitnexus/gitnexus/internal/types"
	"github.com/gitnexus/gitnexus/internal/vector"
)

func buildFixture(t *testing.T) (*graph.Store, *bm25.Index, *vector.Index, vector.Provider) {
	t.Helper()
	store := graph.NewStore()

	store.AddFile(&types.FileNode{ID: types.FileNodeID("app/a.go"), Name: "a.go", FilePath: "app/a.go", Content: "package app\nfunc Foo() {}\nfunc Bar() { Foo() }\n"})
	store.AddFile(&types.FileNode{ID: types.FileNodeID("app/b.go"), Name: "b.go", FilePath: "app/b.go", Content: "package app\nfunc Baz() { Bar() }\n"})

	foo := &types.CodeSymbol{ID: types.SymbolNodeID(types.LabelFunction, "app/a.go", "Foo"), Label: types.LabelFunction, Name: "Foo", FilePath: "app/a.go", IsExported: true, Content: "func Foo() {}"}
	bar := &types.CodeSymbol{ID: types.SymbolNodeID(types.LabelFunction, "app/a.go", "Bar"), Label: types.LabelFunction, Name: "Bar", FilePath: "app/a.go", IsExported: true, Content: "func Bar() { Foo() }"}
	baz := &types.CodeSymbol{ID: types.SymbolNodeID(types.LabelFunction, "app/b.go", "Baz"), Label: types.LabelFunction, Name: "Baz", FilePath: "app/b.go", IsExported: true, Content: "func Baz() { Bar() }"}
	store.AddSymbol(foo)
	store.AddSymbol(bar)
	store.AddSymbol(baz)

	store.AddRelation(types.Relation{From: types.FileNodeID("app/a.go"), To: foo.ID, Type: types.RelDefines})
	store.AddRelation(types.Relation{From: types.FileNodeID("app/a.go"), To: bar.ID, Type: types.RelDefines})
	store.AddRelation(types.Relation{From: types.FileNodeID("app/b.go"), To: baz.ID, Type: types.RelDefines})
	store.AddRelation(types.Relation{From: bar.ID, To: foo.ID, Type: types.RelCalls, Confidence: types.ConfidenceSameFile, Reason: types.ReasonSameFile})
	store.AddRelation(types.Relation{From: baz.ID, To: bar.ID, Type: types.RelCalls, Confidence: types.ConfidenceSameFile, Reason: types.ReasonSameFile})

	store.AddCommunity(&types.Community{ID: "comm_0", Label: "comm_0", HeuristicLabel: "app-cluster", SymbolCount: 3, Cohesion: 0.8})
	store.AddRelation(types.Relation{From: foo.ID, To: "comm_0", Type: types.RelMemberOf})
	store.AddRelation(types.Relation{From: bar.ID, To: "comm_0", Type: types.RelMemberOf})
	store.AddRelation(types.Relation{From: baz.ID, To: "comm_0", Type: types.RelMemberOf})

	store.AddProcess(&types.Process{ID: "proc_0", Label: "Baz", HeuristicLabel: "Baz", ProcessType: types.ProcessIntraCommunity, StepCount: 3, EntryPointID: baz.ID, TerminalID: foo.ID})
	store.AddRelation(types.Relation{From: baz.ID, To: "proc_0", Type: types.RelStepInProcess, Step: 0})
	store.AddRelation(types.Relation{From: bar.ID, To: "proc_0", Type: types.RelStepInProcess, Step: 1})
	store.AddRelation(types.Relation{From: foo.ID, To: "proc_0", Type: types.RelStepInProcess, Step: 2})

	bmIndex := bm25.New(2.0, false)
	for _, sym := range store.Symbols() {
		bmIndex.Add(sym.FilePath, sym.Name, sym.Content)
	}

	provider := vector.NewHashProvider(32)
	vecIndex := vector.NewIndex(32, 16, 64)
	for _, sym := range store.Symbols() {
		emb, _ := provider.Embed(context.Background(), sym.Content)
		vecIndex.Add(sym.ID, emb)
	}

	return store, bmIndex, vecIndex, provider
}

func TestHybridSearchMergesBothSources(t *testing.T) {
	store, bmIndex, vecIndex, provider := buildFixture(t)
	surface := query.New(store, bmIndex, vecIndex, provider, config.Default("/repo"))

	results := surface.HybridSearch(context.Background(), "Foo", 5)
	require.NotEmpty(t, results)
	assert.Contains(t, results[0].Sources, "bm25")
}

func TestHybridSearchDegradesWithoutVectorIndex(t *testing.T) {
	store, bmIndex, _, _ := buildFixture(t)
	surface := query.New(store, bmIndex, nil, nil, config.Default("/repo"))

	results := surface.HybridSearch(context.Background(), "Baz", 5)
	require.NotEmpty(t, results)
	for _, r := range results {
		assert.NotContains(t, r.Sources, "semantic")
	}
}

func TestSearchExpandsOutgoingEdgesOnFullDepth(t *testing.T) {
	store, bmIndex, _, _ := buildFixture(t)
	surface := query.New(store, bmIndex, nil, nil, config.Default("/repo"))

	hits := surface.Search("Bar", 5, "full")
	require.NotEmpty(t, hits)
	found := false
	for _, h := range hits {
		if h.FilePath == "app/a.go" {
			found = true
			assert.NotEmpty(t, h.Expanded)
		}
	}
	assert.True(t, found)
}

func TestSearchFallsBackToPrefixMatch(t *testing.T) {
	store, bmIndex, _, _ := buildFixture(t)
	surface := query.New(store, bmIndex, nil, nil, config.Default("/repo"))

	hits := surface.Search("Ba", 5, "")
	require.NotEmpty(t, hits, "a partial term must still seed via prefix match")
	assert.Equal(t, "app/b.go", hits[0].FilePath)
}

func TestImpactDownstreamFindsTransitiveCallees(t *testing.T) {
	store, bmIndex, _, _ := buildFixture(t)
	surface := query.New(store, bmIndex, nil, nil, config.Default("/repo"))

	result, err := surface.Impact("Baz", query.DirectionDownstream, 0, nil, 0)
	require.NoError(t, err)
	names := map[string]int{}
	for _, h := range result.Hits {
		names[h.Name] = h.Depth
	}
	assert.Equal(t, 1, names["Bar"])
	assert.Equal(t, 2, names["Foo"])
	assert.Equal(t, "will break", depthClassOf(result, "Bar"))
	assert.Equal(t, "likely affected", depthClassOf(result, "Foo"))
}

func depthClassOf(r *query.ImpactResult, name string) string {
	for _, h := range r.Hits {
		if h.Name == name {
			return h.Class
		}
	}
	return ""
}

func TestImpactUpstreamExcludesTarget(t *testing.T) {
	store, bmIndex, _, _ := buildFixture(t)
	surface := query.New(store, bmIndex, nil, nil, config.Default("/repo"))

	result, err := surface.Impact("Foo", query.DirectionUpstream, 0, nil, 0)
	require.NoError(t, err)
	for _, h := range result.Hits {
		assert.NotEqual(t, "Foo", h.Name)
	}
	assert.Len(t, result.Hits, 2) // Bar (d=1), Baz (d=2)
}

func TestExploreSymbolReportsCallersCalleesAndCommunity(t *testing.T) {
	store, bmIndex, _, _ := buildFixture(t)
	surface := query.New(store, bmIndex, nil, nil, config.Default("/repo"))

	report, err := surface.Explore("Bar", query.KindSymbol)
	require.NoError(t, err)
	symReport := report.(*query.SymbolReport)
	require.Len(t, symReport.Callers, 1)
	assert.Equal(t, "Baz", symReport.Callers[0].Name)
	require.Len(t, symReport.Callees, 1)
	assert.Equal(t, "Foo", symReport.Callees[0].Name)
	assert.Equal(t, "comm_0", symReport.CommunityID)
}

func TestExploreClusterListsMembers(t *testing.T) {
	store, bmIndex, _, _ := buildFixture(t)
	surface := query.New(store, bmIndex, nil, nil, config.Default("/repo"))

	report, err := surface.Explore("app-cluster", query.KindCluster)
	require.NoError(t, err)
	clusterReport := report.(*query.ClusterReport)
	assert.Len(t, clusterReport.Members, 3)
}

func TestExploreProcessListsOrderedSteps(t *testing.T) {
	store, bmIndex, _, _ := buildFixture(t)
	surface := query.New(store, bmIndex, nil, nil, config.Default("/repo"))

	report, err := surface.Explore("proc_0", query.KindProcess)
	require.NoError(t, err)
	procReport := report.(*query.ProcessReport)
	require.Len(t, procReport.Steps, 3)
	assert.Equal(t, "Baz", procReport.Steps[0].Name)
	assert.Equal(t, "Bar", procReport.Steps[1].Name)
	assert.Equal(t, "Foo", procReport.Steps[2].Name)
}

func TestOverviewAggregatesClustersAndProcesses(t *testing.T) {
	store, bmIndex, _, _ := buildFixture(t)
	surface := query.New(store, bmIndex, nil, nil, config.Default("/repo"))

	overview := surface.Overview()
	require.Len(t, overview.Clusters, 1)
	require.Len(t, overview.Processes, 1)
	assert.Equal(t, "comm_0", overview.Clusters[0].ID)
}

func TestCypherMatchReturnsBoundRows(t *testing.T) {
	store, bmIndex, _, _ := buildFixture(t)
	surface := query.New(store, bmIndex, nil, nil, config.Default("/repo"))

	result, err := surface.Cypher("MATCH (a:Function)-[:CALLS]->(b:Function) RETURN a, b LIMIT 10")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, result.Columns)
	assert.Len(t, result.Rows, 2)
}

func TestCypherRejectsUnsupportedQuery(t *testing.T) {
	store, bmIndex, _, _ := buildFixture(t)
	surface := query.New(store, bmIndex, nil, nil, config.Default("/repo"))

	_, err := surface.Cypher("CREATE (a:Function)")
	assert.Error(t, err)
}
