package community_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gitnexus/gitnexus/internal/community"
	"github.com/gitnexus/gitnexus/internal/enrich"
	"github.com/gitnexus/gitnexus/internal/graph"
	"github.com/gitnexus/gitnexus/internal/types"
)

func addFunc(store *graph.Store, filePath, name string) string {
	id := types.SymbolNodeID(types.LabelFunction, filePath, name)
	store.AddSymbol(&types.CodeSymbol{ID: id, Label: types.LabelFunction, Name: name, FilePath: filePath})
	return id
}

func addCalls(store *graph.Store, from, to string) {
	store.AddRelation(types.Relation{From: from, To: to, Type: types.RelCalls, Confidence: types.ConfidenceSameFile, Reason: types.ReasonSameFile})
}

// buildTwoCluster wires up two tightly-connected triangles in separate
// directories with a single bridging edge between them, the canonical
// fixture for exercising Louvain's ability to separate dense subgraphs.
func buildTwoCluster(t *testing.T) *graph.Store {
	t.Helper()
	store := graph.NewStore()

	a1 := addFunc(store, "auth/login.ts", "login")
	a2 := addFunc(store, "auth/login.ts", "checkPassword")
	a3 := addFunc(store, "auth/session.ts", "createSession")
	addCalls(store, a1, a2)
	addCalls(store, a2, a3)
	addCalls(store, a3, a1)

	b1 := addFunc(store, "billing/invoice.ts", "createInvoice")
	b2 := addFunc(store, "billing/invoice.ts", "applyDiscount")
	b3 := addFunc(store, "billing/receipt.ts", "emitReceipt")
	addCalls(store, b1, b2)
	addCalls(store, b2, b3)
	addCalls(store, b3, b1)

	addCalls(store, a1, b1) // single bridge, should not dominate the partition

	return store
}

func TestRunSeparatesDenseClusters(t *testing.T) {
	store := buildTwoCluster(t)
	result := community.Run(store, 1.0)

	require.Equal(t, 2, result.CommunityCount)
	comms := store.Communities()
	require.Len(t, comms, 2)

	for _, c := range comms {
		assert.Equal(t, 3, c.SymbolCount)
		assert.Equal(t, types.EnrichedHeuristic, c.EnrichedBy)
		assert.Greater(t, c.Cohesion, 0.0)
	}

	memberOf := store.RelationsOfType(types.RelMemberOf)
	assert.Len(t, memberOf, 6)
}

func TestRunPrunesSingletons(t *testing.T) {
	store := graph.NewStore()
	lone := addFunc(store, "misc/x.ts", "standalone")
	_ = lone

	result := community.Run(store, 1.0)
	assert.Equal(t, 0, result.CommunityCount)
	assert.Empty(t, store.Communities())
}

func TestHeuristicLabelPrefersDirectoryBasename(t *testing.T) {
	store := buildTwoCluster(t)
	community.Run(store, 1.0)

	labels := make([]string, 0, 2)
	for _, c := range store.Communities() {
		labels = append(labels, c.Label)
	}
	assert.ElementsMatch(t, []string{"auth", "billing"}, labels)
}

func TestEnrichReplacesLabelsOnSuccess(t *testing.T) {
	store := buildTwoCluster(t)
	community.Run(store, 1.0)

	collab := &enrich.MockCollaborator{
		ChatFunc: func(ctx context.Context, req enrich.ChatRequest) (*enrich.ChatResponse, error) {
			return &enrich.ChatResponse{Message: enrich.Message{
				Content: `[{"name":"Authentication","keywords":["login"],"description":"auth flows"},
				           {"name":"Billing","keywords":["invoice"],"description":"billing flows"}]`,
			}}, nil
		},
	}
	enrichedCount := community.Enrich(context.Background(), store, collab)
	assert.Equal(t, 2, enrichedCount)

	for _, c := range store.Communities() {
		assert.Equal(t, types.EnrichedLLM, c.EnrichedBy)
		assert.NotEmpty(t, c.Description)
	}
}

func TestEnrichFallsBackToHeuristicOnCollaboratorFailure(t *testing.T) {
	store := buildTwoCluster(t)
	community.Run(store, 1.0)

	collab := &enrich.MockCollaborator{
		ChatFunc: func(ctx context.Context, req enrich.ChatRequest) (*enrich.ChatResponse, error) {
			return nil, assert.AnError
		},
	}
	enrichedCount := community.Enrich(context.Background(), store, collab)
	assert.Equal(t, 0, enrichedCount)

	for _, c := range store.Communities() {
		assert.Equal(t, types.EnrichedHeuristic, c.EnrichedBy)
		assert.Equal(t, c.Label, c.HeuristicLabel)
	}
}
