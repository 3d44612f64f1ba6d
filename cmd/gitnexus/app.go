package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/urfave/cli/v2"

	"github.com/gitnexus/gitnexus/internal/config"
	"github.com/gitnexus/gitnexus/internal/ingest"
	"github.com/gitnexus/gitnexus/internal/query"
	"github.com/gitnexus/gitnexus/internal/vector"
)

// loadConfig resolves the Config for the --root flag, converted to an
// absolute path so every downstream phase sees one canonical root.
func loadConfig(c *cli.Context) (*config.Config, error) {
	root, err := filepath.Abs(c.String("root"))
	if err != nil {
		return nil, fmt.Errorf("resolve root path: %w", err)
	}
	cfg, err := config.Load(root)
	if err != nil {
		return nil, err
	}
	cfg.Verbose = c.Bool("verbose")
	return cfg, nil
}

// runPipeline builds a Pipeline with the default offline embedder (the
// vector index is best-effort, not a hard external dependency) and no LLM
// collaborator, since credentials for a real one are out of scope for
// core CLI wiring.
func runPipeline(ctx context.Context, cfg *config.Config, opts ingest.Options) (*ingest.Result, error) {
	embedder := vector.NewHashProvider(cfg.Embed.Dimension)
	pipeline := ingest.New(cfg, nil, embedder)
	return pipeline.Run(ctx, opts)
}

// buildSurface runs the pipeline with Force:true so the caller always gets
// a populated in-memory Result to query from, regardless of whether the
// on-disk checkpoint would otherwise have short-circuited the run. serve,
// mcp, and the one-off query command need live graph/BM25/vector state in
// memory; the checkpoint's idempotency optimization exists for repeated
// `analyze` invocations, not for commands that query the result.
func buildSurface(ctx context.Context, cfg *config.Config) (*query.Surface, *ingest.Result, error) {
	result, err := runPipeline(ctx, cfg, ingest.Options{Force: true})
	if err != nil {
		return nil, nil, err
	}
	surface := query.New(result.Store, result.BM25Index, result.VectorIndex, vector.NewHashProvider(cfg.Embed.Dimension), cfg)
	return surface, result, nil
}
