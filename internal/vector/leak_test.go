//go:build leaktests
// +build leaktests

package vector_test

import (
	"context"
	"testing"

	"go.uber.org/goleak"

	"github.com/gitnexus/gitnexus/internal/graph"
	"github.com/gitnexus/gitnexus/internal/vector"
)

// TestEmbedSymbolsLeavesNoWorkers verifies the bounded embedding pool fully
// drains: every worker goroutine must be joined before EmbedSymbols returns.
func TestEmbedSymbolsLeavesNoWorkers(t *testing.T) {
	defer goleak.VerifyNone(t)

	store := graph.NewStore()
	for i := 0; i < 50; i++ {
		id := addFunc(store, "pkg/f.go", "Fn"+string(rune('A'+i%26)), "func body")
		_ = id
	}

	provider := vector.NewHashProvider(16)
	_, err := vector.EmbedSymbols(context.Background(), store, provider, 5000, 4, 8)
	if err != nil {
		t.Fatalf("EmbedSymbols: %v", err)
	}
}
