package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// tomlConfig is the on-disk shape of `.gitnexus.toml`, GitNexus's alternate
// config format promoted from the build-artifact detector's toml dependency
// to a first-class config source.
type tomlConfig struct {
	Project struct {
		Root string `toml:"root"`
		Name string `toml:"name"`
	} `toml:"project"`
	Index struct {
		MaxFileSizeBytes      int64 `toml:"max_file_size_bytes"`
		MaxFileContentChars   int   `toml:"max_file_content_chars"`
		MaxSymbolSnippetChars int   `toml:"max_symbol_snippet_chars"`
		FollowSymlinks        bool  `toml:"follow_symlinks"`
		RespectGitignore      bool  `toml:"respect_gitignore"`
	} `toml:"index"`
	Ingest struct {
		Workers          int  `toml:"workers"`
		ASTCacheCapacity int  `toml:"ast_cache_capacity"`
		ContentCacheSize int  `toml:"content_cache_size"`
		CSVFlushEvery    int  `toml:"csv_flush_every"`
		Watch            bool `toml:"watch"`
	} `toml:"ingest"`
	Search struct {
		Stemming       bool    `toml:"stemming"`
		NameFieldBoost float64 `toml:"name_field_boost"`
		RRFConstant    int     `toml:"rrf_constant"`
	} `toml:"search"`
	Feature struct {
		LLMEnrichment bool `toml:"llm_enrichment"`
	} `toml:"feature"`
	Include []string `toml:"include"`
	Exclude []string `toml:"exclude"`
}

// LoadTOML loads `.gitnexus.toml` from projectRoot, returning (nil, nil)
// when the file is absent.
func LoadTOML(projectRoot string) (*Config, error) {
	path := filepath.Join(projectRoot, ".gitnexus.toml")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read .gitnexus.toml: %w", err)
	}

	var t tomlConfig
	if err := toml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("failed to parse .gitnexus.toml: %w", err)
	}

	cfg := &Config{
		Project: Project{Root: t.Project.Root, Name: t.Project.Name},
		Index: Index{
			MaxFileSizeBytes:      t.Index.MaxFileSizeBytes,
			MaxFileContentChars:   t.Index.MaxFileContentChars,
			MaxSymbolSnippetChars: t.Index.MaxSymbolSnippetChars,
			FollowSymlinks:        t.Index.FollowSymlinks,
			RespectGitignore:      t.Index.RespectGitignore,
		},
		Ingest: Ingest{
			Workers:          t.Ingest.Workers,
			ASTCacheCapacity: t.Ingest.ASTCacheCapacity,
			ContentCacheSize: t.Ingest.ContentCacheSize,
			CSVFlushEvery:    t.Ingest.CSVFlushEvery,
			Watch:            t.Ingest.Watch,
		},
		Search: Search{
			Stemming:       t.Search.Stemming,
			NameFieldBoost: t.Search.NameFieldBoost,
			RRFConstant:    t.Search.RRFConstant,
		},
		Feature: FeatureFlags{LLMEnrichment: t.Feature.LLMEnrichment},
		Include: t.Include,
		Exclude: t.Exclude,
	}
	if cfg.Project.Root == "" {
		cfg.Project.Root = projectRoot
	}
	return cfg, nil
}

// parseProjectTOML reads a `Cargo.toml`/`pyproject.toml`-shaped manifest for
// the build-artifact detector (build_artifact_detector.go), returning the
// decoded generic table so callers can pick out language-specific keys.
func parseProjectTOML(path string) (map[string]interface{}, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var m map[string]interface{}
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return m, nil
}
