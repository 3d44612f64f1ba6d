package process_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gitnexus/gitnexus/internal/graph"
	"github.com/gitnexus/gitnexus/internal/process"
	"github.com/gitnexus/gitnexus/internal/types"
)

func addFunc(store *graph.Store, filePath, name string, exported bool) string {
	id := types.SymbolNodeID(types.LabelFunction, filePath, name)
	store.AddSymbol(&types.CodeSymbol{ID: id, Label: types.LabelFunction, Name: name, FilePath: filePath, IsExported: exported})
	return id
}

func addCalls(store *graph.Store, from, to string) {
	store.AddRelation(types.Relation{From: from, To: to, Type: types.RelCalls, Confidence: types.ConfidenceSameFile, Reason: types.ReasonSameFile})
}

func TestRunTracesChainFromMain(t *testing.T) {
	store := graph.NewStore()
	main := addFunc(store, "cmd/app.go", "main", true)
	load := addFunc(store, "cmd/app.go", "loadConfig", true)
	serve := addFunc(store, "cmd/app.go", "serve", true)
	addCalls(store, main, load)
	addCalls(store, load, serve)

	n := process.Run(store)
	require.Equal(t, 1, n)

	procs := store.Processes()
	require.Len(t, procs, 1)
	p := procs[0]
	assert.Equal(t, main, p.EntryPointID)
	assert.Equal(t, serve, p.TerminalID)
	assert.Equal(t, 3, p.StepCount)
	assert.Equal(t, types.ProcessIntraCommunity, p.ProcessType)

	steps := store.RelationsOfType(types.RelStepInProcess)
	require.Len(t, steps, 3)
	bySymbol := map[string]int{}
	for _, s := range steps {
		bySymbol[s.From] = s.Step
	}
	assert.Equal(t, 0, bySymbol[main])
	assert.Equal(t, 1, bySymbol[load])
	assert.Equal(t, 2, bySymbol[serve])
}

func TestRunSkipsUnexportedEntries(t *testing.T) {
	store := graph.NewStore()
	helper := addFunc(store, "internal/h.go", "helper", false)
	other := addFunc(store, "internal/h.go", "other", false)
	addCalls(store, helper, other)

	n := process.Run(store)
	assert.Equal(t, 0, n)
	assert.Empty(t, store.Processes())
}

func TestRunSkipsSingleStepChains(t *testing.T) {
	store := graph.NewStore()
	addFunc(store, "cmd/app.go", "main", true)
	// no outgoing calls at all
	n := process.Run(store)
	assert.Equal(t, 0, n)
}

func TestIsEntryPointRecognizesHTTPHandlerNames(t *testing.T) {
	sym := &types.CodeSymbol{Name: "HandleLogin", IsExported: true}
	assert.True(t, process.IsEntryPoint(sym, "go"))

	unexported := &types.CodeSymbol{Name: "HandleLogin", IsExported: false}
	assert.False(t, process.IsEntryPoint(unexported, "go"))
}
