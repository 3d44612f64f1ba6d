// Package ingest implements the ingestion orchestrator: a phase-sequential
// pipeline over a bounded worker pool, with cancellation, checkpointing,
// and an atomic staging-directory swap into `.gitnexus/`. The phases run
// walk, extract, resolve, community/process detection, indexing, and
// persistence in order; inside a phase, file-level work fans out.
package ingest

import (
	"context"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/gitnexus/gitnexus/internal/astcache"
	"github.com/gitnexus/gitnexus/internal/bm25"
	"github.com/gitnexus/gitnexus/internal/community"
	"github.com/gitnexus/gitnexus/internal/config"
	"github.com/gitnexus/gitnexus/internal/csvbuild"
	"github.com/gitnexus/gitnexus/internal/enrich"
	ierrors "github.com/gitnexus/gitnexus/internal/errors"
	"github.com/gitnexus/gitnexus/internal/extract"
	"github.com/gitnexus/gitnexus/internal/graph"
	"github.com/gitnexus/gitnexus/internal/parser"
	"github.com/gitnexus/gitnexus/internal/persist"
	"github.com/gitnexus/gitnexus/internal/process"
	"github.com/gitnexus/gitnexus/internal/resolve"
	"github.com/gitnexus/gitnexus/internal/types"
	"github.com/gitnexus/gitnexus/internal/vector"
	"github.com/gitnexus/gitnexus/internal/walk"
)

// binaryPlaceholder stands in for the content of files the walker detected
// as binary.
const binaryPlaceholder = "[binary content omitted]"

// Options controls one `analyze [path] [--force] [--skip-embeddings]` run.
type Options struct {
	Force          bool
	SkipEmbeddings bool
}

// Result is everything one successful run produced, handed back so `serve`/
// `mcp`/`query` can answer immediately without reloading from disk.
type Result struct {
	Store        *graph.Store
	BM25Index    *bm25.Index
	VectorIndex  *vector.Index
	Community    community.Result
	ProcessCount int
	Meta         Meta
	Warnings     *ierrors.WarningList
	Skipped      bool // true when the checkpoint short-circuited the run
}

// Pipeline runs the full ingestion sequence against one repository.
type Pipeline struct {
	cfg          *config.Config
	collaborator enrich.Collaborator // optional, nil disables LLM enrichment
	embedder     vector.Provider     // optional, nil disables the vector index
}

// New returns a Pipeline for cfg. collaborator and embedder may be nil to
// disable their optional phases regardless of Config.Feature/Embed flags.
func New(cfg *config.Config, collaborator enrich.Collaborator, embedder vector.Provider) *Pipeline {
	return &Pipeline{cfg: cfg, collaborator: collaborator, embedder: embedder}
}

func (p *Pipeline) gitnexusDir() string {
	return filepath.Join(p.cfg.Project.Root, ".gitnexus")
}

func (p *Pipeline) workers() int {
	if p.cfg.Ingest.Workers > 0 {
		return p.cfg.Ingest.Workers
	}
	return 8
}

// Run executes one analyze pass: walk, extract, resolve, detect
// communities/processes, build indices, persist, and atomically swap the
// result into `.gitnexus/`. Returns Result.Skipped = true without touching
// disk when the checkpoint says this commit was already indexed and
// opts.Force is false.
func (p *Pipeline) Run(ctx context.Context, opts Options) (*Result, error) {
	root := p.cfg.Project.Root
	gnDir := p.gitnexusDir()
	commit := headCommit(root)

	ckptMgr := NewCheckpointManager(gnDir)
	if ckptMgr.ShouldSkip(commit, opts.Force) {
		return &Result{Skipped: true}, nil
	}

	warnings := &ierrors.WarningList{}

	staging, err := prepareStaging(gnDir)
	if err != nil {
		return nil, ierrors.NewPersistenceError("prepare-staging", err)
	}

	result, runErr := p.runPhases(ctx, staging, opts, warnings)
	if runErr != nil {
		discardStaging(gnDir)
		if cancelErr, ok := runErr.(*ierrors.CancelRequested); ok {
			return nil, cancelErr
		}
		return nil, ierrors.NewPersistenceError("ingest-run", runErr)
	}

	if err := swapIntoPlace(gnDir, staging); err != nil {
		return nil, ierrors.NewPersistenceError("staging-swap", err)
	}

	ckptMgr.Save(&Checkpoint{ProjectRoot: root, CommitHash: commit, LastPhase: "persist", Complete: true})
	result.Warnings = warnings
	return result, nil
}

func (p *Pipeline) runPhases(ctx context.Context, staging string, opts Options, warnings *ierrors.WarningList) (*Result, error) {
	root := p.cfg.Project.Root
	cfg := p.cfg

	if err := checkCancel(ctx, "walk"); err != nil {
		return nil, err
	}
	w := walk.New(root, cfg)
	files, err := w.Walk()
	if err != nil {
		return nil, err
	}

	store := graph.NewStore()
	paths := make([]string, 0, len(files))
	for _, f := range files {
		content := string(f.Bytes)
		if f.Binary {
			content = binaryPlaceholder
		}
		store.AddFile(&types.FileNode{ID: types.FileNodeID(f.Path), Name: filepath.Base(f.Path), FilePath: f.Path, Content: content})
		paths = append(paths, f.Path)
	}
	buildFolderTree(store, paths)

	fileIndex := make(map[string]int, len(files))
	for i, f := range files {
		fileIndex[f.Path] = i
	}

	reg := parser.New()
	cache := astcache.New(cfg.Ingest.ASTCacheCapacity)
	table := extract.NewSymbolTable()
	extractor := extract.New(reg, cache, cfg)

	if err := checkCancel(ctx, "extract"); err != nil {
		return nil, err
	}
	// Workers collect per-file patches in parallel; the patches are applied
	// in walk order afterwards so symbol-table insertion order — and with it
	// the fuzzy-global "first element" tie-break — is identical run
	// over run regardless of worker scheduling.
	collected := make([][]*types.CodeSymbol, len(files))
	if err := runPerFile(ctx, "extract", p.workers(), files, func(f walk.File) error {
		i := fileIndex[f.Path]
		syms, err := extractor.Collect(f)
		if err != nil {
			warnings.AddInputError(ierrors.NewInputError(f.Path, "extract", err))
			return nil
		}
		collected[i] = syms
		return nil
	}); err != nil {
		return nil, err
	}
	for i, f := range files {
		extract.Apply(store, table, f.Path, collected[i])
	}

	if err := checkCancel(ctx, "resolve-imports"); err != nil {
		return nil, err
	}
	importMap := resolve.NewImportMap()
	importResolver := resolve.NewImportResolver(reg, cache, paths)
	if err := runPerFile(ctx, "resolve-imports", p.workers(), files, func(f walk.File) error {
		if err := importResolver.ResolveFile(store, importMap, f); err != nil {
			warnings.AddInputError(ierrors.NewInputError(f.Path, "resolve-imports", err))
		}
		return nil
	}); err != nil {
		return nil, err
	}

	if err := checkCancel(ctx, "resolve-calls"); err != nil {
		return nil, err
	}
	callResolver := resolve.NewCallResolver(reg, cache)
	callResolver.RankFuzzyCandidates = cfg.Search.FuzzyRanking
	if err := runPerFile(ctx, "resolve-calls", p.workers(), files, func(f walk.File) error {
		if err := callResolver.ResolveFile(store, table, importMap, f); err != nil {
			warnings.AddInputError(ierrors.NewInputError(f.Path, "resolve-calls", err))
		}
		return nil
	}); err != nil {
		return nil, err
	}

	if err := checkCancel(ctx, "resolve-heritage"); err != nil {
		return nil, err
	}
	heritageResolver := resolve.NewHeritageResolver(reg, cache, warnings)
	if err := runPerFile(ctx, "resolve-heritage", p.workers(), files, func(f walk.File) error {
		if err := heritageResolver.ResolveFile(store, table, f); err != nil {
			warnings.AddInputError(ierrors.NewInputError(f.Path, "resolve-heritage", err))
		}
		return nil
	}); err != nil {
		return nil, err
	}

	if err := checkCancel(ctx, "community"); err != nil {
		return nil, err
	}
	communityResult := community.Run(store, 1.0)
	if p.collaborator != nil && cfg.Feature.LLMEnrichment {
		community.Enrich(ctx, store, p.collaborator)
	}

	if err := checkCancel(ctx, "process"); err != nil {
		return nil, err
	}
	processCount := process.Run(store)

	if err := checkCancel(ctx, "index"); err != nil {
		return nil, err
	}
	// BM25 documents are file-granular: (id = filePath, content = full
	// bytes, name = basename). Binary files index only their placeholder
	// text.
	bmIndex := bm25.New(cfg.Search.NameFieldBoost, cfg.Search.Stemming)
	for _, fn := range store.Files() {
		bmIndex.Add(fn.FilePath, fn.Name, fn.Content)
	}

	p.replayCachedEmbeddings(store)

	var vecIndex *vector.Index
	if !opts.SkipEmbeddings && cfg.Embed.Enabled && p.embedder != nil {
		if _, err := vector.EmbedSymbols(ctx, store, p.embedder, cfg.Index.MaxSymbolSnippetChars, p.workers(), cfg.Embed.BatchSize); err != nil {
			warnings.AddInputError(ierrors.NewInputError("", "embed", err))
		}
		vecIndex = vector.BuildIndex(store, cfg.Embed.Dimension, cfg.Embed.HNSWM, cfg.Embed.HNSWEfSearch)
	}

	if err := checkCancel(ctx, "persist"); err != nil {
		return nil, err
	}
	if err := p.persistArtifact(ctx, staging, store, bmIndex, warnings); err != nil {
		return nil, err
	}

	meta := Meta{
		RepoPath:   root,
		LastCommit: headCommit(root),
		Stats: Stats{
			Files:       len(files),
			Nodes:       store.Stats().Nodes,
			Edges:       store.Stats().Edges,
			Communities: communityResult.CommunityCount,
			Processes:   processCount,
		},
	}
	if err := writeMeta(staging, &meta); err != nil {
		return nil, err
	}

	return &Result{
		Store:        store,
		BM25Index:    bmIndex,
		VectorIndex:  vecIndex,
		Community:    communityResult,
		ProcessCount: processCount,
		Meta:         meta,
	}, nil
}

// replayCachedEmbeddings restores {nodeId, embedding} records from the
// previous `.gitnexus/kuzu` artifact (if one exists) into store, before
// fresh embeddings are computed and before the staging swap.
// Absence of a previous artifact, or of any CodeEmbedding records in it, is
// not an error: a first-ever run simply has nothing to replay.
func (p *Pipeline) replayCachedEmbeddings(store *graph.Store) {
	prevDir := filepath.Join(p.gitnexusDir(), "kuzu")
	if _, err := os.Stat(prevDir); err != nil {
		return
	}
	prev, err := persist.Open(prevDir)
	if err != nil {
		return
	}
	defer prev.Close()

	cached, err := prev.AllEmbeddings()
	if err != nil || len(cached) == 0 {
		return
	}
	replay := make([]vector.CachedEmbedding, len(cached))
	for i, c := range cached {
		replay[i] = vector.CachedEmbedding{NodeID: c.NodeID, Embedding: c.Embedding}
	}
	vector.ReplayCachedEmbeddings(store, replay)
}

func (p *Pipeline) persistArtifact(ctx context.Context, staging string, store *graph.Store, bmIndex *bm25.Index, warnings *ierrors.WarningList) error {
	csvDir := filepath.Join(staging, "csv")
	builder := csvbuild.NewBuilder(p.cfg.Project.Root, csvDir, p.cfg.Ingest.ContentCacheSize, p.cfg.Index.MaxFileContentChars)
	if err := builder.WriteNodes(store); err != nil {
		return err
	}
	relPath, err := builder.WriteRelations(store)
	if err != nil {
		return err
	}
	pairsDir := filepath.Join(csvDir, "pairs")
	if _, err := csvbuild.SplitRelationsByPair(relPath, pairsDir); err != nil {
		return err
	}

	db, err := persist.Open(filepath.Join(staging, "kuzu"))
	if err != nil {
		return err
	}
	defer db.Close()

	report, err := db.BulkLoad(ctx, csvDir, pairsDir)
	if err != nil {
		return err
	}
	for _, w := range report.SchemaWarnings {
		warnings.AddSchemaWarning(string(w.From), string(w.To), "")
	}

	embPath, err := builder.WriteEmbeddings(store)
	if err != nil {
		return err
	}
	if _, err := db.LoadEmbeddings(embPath); err != nil {
		return err
	}

	bmData, err := bmIndex.Marshal()
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(staging, "bm25.json"), bmData, 0o644); err != nil {
		return err
	}

	// csv/ is transient: once bulk-loaded into the embedded store it
	// has no reason to survive into the swapped-in artifact.
	return os.RemoveAll(csvDir)
}

// runPerFile runs fn over files using up to workers concurrent
// goroutines. A cancellation observed between files surfaces
// as *ierrors.CancelRequested for phase, matching checkCancel's
// between-phase classification; fn should route per-file problems into the
// warning list rather than return them.
func runPerFile(ctx context.Context, phase string, workers int, files []walk.File, fn func(walk.File) error) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, f := range files {
		f := f
		g.Go(func() error {
			if gctx.Err() != nil {
				return &ierrors.CancelRequested{Phase: phase}
			}
			return fn(f)
		})
	}
	return g.Wait()
}

// checkCancel is the between-phases cancellation checkpoint.
func checkCancel(ctx context.Context, phase string) error {
	select {
	case <-ctx.Done():
		return &ierrors.CancelRequested{Phase: phase}
	default:
		return nil
	}
}
