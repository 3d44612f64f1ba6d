package vector_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gitnexus/gitnexus/internal/graph"
	"github.com/gitnexus/gitnexus/internal/types"
	"github.com/gitnexus/gitnexus/internal/vector"
)

func addFunc(store *graph.Store, filePath, name, content string) string {
	id := types.SymbolNodeID(types.LabelFunction, filePath, name)
	store.AddSymbol(&types.CodeSymbol{ID: id, Label: types.LabelFunction, Name: name, FilePath: filePath, Content: content})
	return id
}

func TestHashProviderIsDeterministic(t *testing.T) {
	p := vector.NewHashProvider(16)
	a, err := p.Embed(context.Background(), "func login() {}")
	require.NoError(t, err)
	b, err := p.Embed(context.Background(), "func login() {}")
	require.NoError(t, err)
	assert.Equal(t, a, b)

	c, err := p.Embed(context.Background(), "func other() {}")
	require.NoError(t, err)
	assert.NotEqual(t, a, c)
}

func TestEmbedSymbolsSkipsExisting(t *testing.T) {
	store := graph.NewStore()
	id := addFunc(store, "auth/login.go", "Login", "func Login() {}")
	store.AddEmbedding(&types.CodeEmbedding{NodeID: id, Embedding: []float32{1, 0, 0}})

	addFunc(store, "billing/charge.go", "Charge", "func Charge() {}")

	provider := vector.NewHashProvider(8)
	result, err := vector.EmbedSymbols(context.Background(), store, provider, 5000, 2, 32)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Skipped)
	assert.Equal(t, 1, result.Embedded)

	_, ok := store.Embedding(id)
	assert.True(t, ok)
}

func TestBuildIndexAndSearchReturnsNearestFirst(t *testing.T) {
	store := graph.NewStore()
	a := addFunc(store, "auth/login.go", "Login", "func Login() {}")
	b := addFunc(store, "auth/logout.go", "Logout", "func Logout() {}")
	c := addFunc(store, "billing/charge.go", "Charge", "func Charge() {}")

	store.AddEmbedding(&types.CodeEmbedding{NodeID: a, Embedding: []float32{1, 0, 0}})
	store.AddEmbedding(&types.CodeEmbedding{NodeID: b, Embedding: []float32{0.9, 0.1, 0}})
	store.AddEmbedding(&types.CodeEmbedding{NodeID: c, Embedding: []float32{0, 0, 1}})

	idx := vector.BuildIndex(store, 3, 16, 64)
	require.Equal(t, 3, idx.Len())

	results := idx.Search([]float32{1, 0, 0}, 2)
	require.Len(t, results, 2)
	assert.Equal(t, a, results[0].NodeID)
	assert.Equal(t, b, results[1].NodeID)
	assert.Less(t, results[0].Distance, results[1].Distance)
}

func TestReplayCachedEmbeddingsSkipsMissingNodes(t *testing.T) {
	store := graph.NewStore()
	id := addFunc(store, "auth/login.go", "Login", "func Login() {}")

	cached := []vector.CachedEmbedding{
		{NodeID: id, Embedding: []float32{1, 0, 0}},
		{NodeID: "Function:gone.go:Removed", Embedding: []float32{0, 1, 0}},
	}
	restored, skipped := vector.ReplayCachedEmbeddings(store, cached)
	assert.Equal(t, 1, restored)
	assert.Equal(t, 1, skipped)

	_, ok := store.Embedding(id)
	assert.True(t, ok)
}
