// Package config holds GitNexus's Config tree and the loaders/validators
// that build it: defaults, `.gitnexus.kdl` / `.gitnexus.toml` overlays,
// gitignore parsing, and build-artifact detection.
package config

import "github.com/gitnexus/gitnexus/internal/types"

// Config is the root configuration tree for one repository.
type Config struct {
	Version  int
	Project  Project
	Index    Index
	Ingest   Ingest
	Search   Search
	Embed    Embed
	Feature  FeatureFlags
	Include  []string
	Exclude  []string
	Verbose  bool // NODE_ENV-equivalent verbose logging flag
}

// Project identifies the repository being analyzed.
type Project struct {
	Root string
	Name string
}

// Index controls the file walker & language router.
type Index struct {
	MaxFileSizeBytes      int64
	MaxFileContentChars   int // File.content cap
	MaxSymbolSnippetChars int // CodeSymbol.content cap
	FollowSymlinks        bool
	RespectGitignore      bool
}

// Ingest controls the phase pipeline & worker pool.
type Ingest struct {
	Workers          int // 0 = 8 workers
	ASTCacheCapacity int // default 50
	ContentCacheSize int // CSV content cache, default ~3000 files
	CSVFlushEvery    int // default 500
	Watch            bool
	WatchDebounceMs  int
}

// Search controls BM25/vector ranking knobs.
type Search struct {
	Stemming          bool    // gated porter2 stemming step
	FuzzyEditFraction float64 // default 0.2
	NameFieldBoost    float64 // default 2.0
	FuzzyRanking      bool    // locality-ranked fuzzy call resolution, off by default
	RRFConstant       int     // default 60
}

// Embed controls the vector index & embedder collaborator.
type Embed struct {
	Enabled       bool
	Dimension     int // typical 384
	BatchSize     int
	HNSWM         int // neighbors per node
	HNSWEfSearch  int
}

// FeatureFlags toggles optional/experimental behavior.
type FeatureFlags struct {
	LLMEnrichment bool // optional LLM community enrichment
}

// Default returns a Config populated with GitNexus's standard defaults.
func Default(root string) *Config {
	return &Config{
		Version: 1,
		Project: Project{Root: root, Name: ""},
		Index: Index{
			MaxFileSizeBytes:      2 << 20, // 2MiB
			MaxFileContentChars:   types.DefaultMaxFileContentChars,
			MaxSymbolSnippetChars: types.DefaultMaxSymbolSnippetChars,
			FollowSymlinks:        false,
			RespectGitignore:      true,
		},
		Ingest: Ingest{
			Workers:          0,
			ASTCacheCapacity: 50,
			ContentCacheSize: 3000,
			CSVFlushEvery:    500,
			Watch:            false,
			WatchDebounceMs:  500,
		},
		Search: Search{
			Stemming:          false,
			FuzzyEditFraction: 0.2,
			NameFieldBoost:    2.0,
			FuzzyRanking:      false,
			RRFConstant:       60,
		},
		Embed: Embed{
			Enabled:      true,
			Dimension:    384,
			BatchSize:    32,
			HNSWM:        16,
			HNSWEfSearch: 64,
		},
		Feature: FeatureFlags{LLMEnrichment: false},
	}
}

// Load resolves a Config for projectRoot: try .gitnexus.kdl, then
// .gitnexus.toml, falling back to Default when neither exists.
func Load(projectRoot string) (*Config, error) {
	cfg := Default(projectRoot)

	kdlCfg, err := LoadKDL(projectRoot)
	if err != nil {
		return nil, err
	}
	if kdlCfg != nil {
		mergeInto(cfg, kdlCfg)
		return cfg, Validate(cfg)
	}

	tomlCfg, err := LoadTOML(projectRoot)
	if err != nil {
		return nil, err
	}
	if tomlCfg != nil {
		mergeInto(cfg, tomlCfg)
	}
	return cfg, Validate(cfg)
}

// mergeInto overlays non-zero fields of overlay onto base, field by
// field rather than a blind struct copy, so a partial config file never
// zeroes out defaults it doesn't mention.
func mergeInto(base, overlay *Config) {
	if overlay.Project.Root != "" {
		base.Project.Root = overlay.Project.Root
	}
	if overlay.Project.Name != "" {
		base.Project.Name = overlay.Project.Name
	}
	if overlay.Index.MaxFileSizeBytes != 0 {
		base.Index.MaxFileSizeBytes = overlay.Index.MaxFileSizeBytes
	}
	if overlay.Index.MaxFileContentChars != 0 {
		base.Index.MaxFileContentChars = overlay.Index.MaxFileContentChars
	}
	if overlay.Index.MaxSymbolSnippetChars != 0 {
		base.Index.MaxSymbolSnippetChars = overlay.Index.MaxSymbolSnippetChars
	}
	base.Index.FollowSymlinks = overlay.Index.FollowSymlinks || base.Index.FollowSymlinks
	base.Index.RespectGitignore = base.Index.RespectGitignore && overlay.Index.RespectGitignore
	if overlay.Ingest.Workers != 0 {
		base.Ingest.Workers = overlay.Ingest.Workers
	}
	if overlay.Ingest.ASTCacheCapacity != 0 {
		base.Ingest.ASTCacheCapacity = overlay.Ingest.ASTCacheCapacity
	}
	if overlay.Ingest.ContentCacheSize != 0 {
		base.Ingest.ContentCacheSize = overlay.Ingest.ContentCacheSize
	}
	if overlay.Ingest.CSVFlushEvery != 0 {
		base.Ingest.CSVFlushEvery = overlay.Ingest.CSVFlushEvery
	}
	base.Ingest.Watch = overlay.Ingest.Watch || base.Ingest.Watch
	if overlay.Ingest.WatchDebounceMs != 0 {
		base.Ingest.WatchDebounceMs = overlay.Ingest.WatchDebounceMs
	}
	if overlay.Search.RRFConstant != 0 {
		base.Search.RRFConstant = overlay.Search.RRFConstant
	}
	if overlay.Search.FuzzyEditFraction != 0 {
		base.Search.FuzzyEditFraction = overlay.Search.FuzzyEditFraction
	}
	if overlay.Search.NameFieldBoost != 0 {
		base.Search.NameFieldBoost = overlay.Search.NameFieldBoost
	}
	base.Search.FuzzyRanking = overlay.Search.FuzzyRanking || base.Search.FuzzyRanking
	if overlay.Embed.Dimension != 0 {
		base.Embed.Dimension = overlay.Embed.Dimension
	}
	if overlay.Embed.BatchSize != 0 {
		base.Embed.BatchSize = overlay.Embed.BatchSize
	}
	base.Search.Stemming = overlay.Search.Stemming || base.Search.Stemming
	base.Feature.LLMEnrichment = overlay.Feature.LLMEnrichment || base.Feature.LLMEnrichment
	if len(overlay.Include) > 0 {
		base.Include = overlay.Include
	}
	if len(overlay.Exclude) > 0 {
		base.Exclude = append(base.Exclude, overlay.Exclude...)
	}
}
