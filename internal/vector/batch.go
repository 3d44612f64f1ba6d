package vector

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/gitnexus/gitnexus/internal/graph"
	"github.com/gitnexus/gitnexus/internal/types"
)

// EmbedResult summarizes one EmbedSymbols run with aggregated counters
// rather than failing the whole run on a single provider error.
type EmbedResult struct {
	Embedded int
	Skipped  int // already present in the store (re-ingestion replay) or synthetic placeholders
	Errors   int
}

// EmbedSymbols computes embeddings for every eligible symbol in store that
// does not already have one recorded, batching requests to respect an
// external embedder's throughput via a bounded worker pool (errgroup
// with SetLimit).
// workers <= 0 defaults to 4. batchSize only affects how many symbols are
// dispatched to the pool before the next batch is queued; Provider.Embed
// itself is single-text, so "batching" here bounds in-flight concurrent
// calls rather than building one multi-text request.
func EmbedSymbols(ctx context.Context, store *graph.Store, provider Provider, maxSnippetChars, workers, batchSize int) (EmbedResult, error) {
	if workers <= 0 {
		workers = 4
	}
	if batchSize <= 0 {
		batchSize = 32
	}

	candidates := store.SymbolsByLabels(EmbeddableLabels...)
	var pending []*types.CodeSymbol
	for _, sym := range candidates {
		if sym.Synthetic {
			continue
		}
		if _, ok := store.Embedding(sym.ID); ok {
			continue
		}
		pending = append(pending, sym)
	}

	result := EmbedResult{Skipped: len(candidates) - len(pending)}

	for start := 0; start < len(pending); start += batchSize {
		end := start + batchSize
		if end > len(pending) {
			end = len(pending)
		}
		batch := pending[start:end]

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(workers)
		errs := make([]error, len(batch))
		for i, sym := range batch {
			i, sym := i, sym
			g.Go(func() error {
				input := BuildInput(sym, maxSnippetChars)
				vec, err := provider.Embed(gctx, input)
				if err != nil {
					errs[i] = err
					return nil
				}
				store.AddEmbedding(&types.CodeEmbedding{NodeID: sym.ID, Embedding: vec})
				return nil
			})
		}
		// Workers never return a non-nil error (failures are recorded per
		// item instead), so Wait itself returns nil; ctx cancellation is
		// surfaced by checking ctx once the batch has drained.
		_ = g.Wait()
		if err := ctx.Err(); err != nil {
			return result, err
		}
		for _, err := range errs {
			if err != nil {
				result.Errors++
			} else {
				result.Embedded++
			}
		}
	}

	return result, nil
}
