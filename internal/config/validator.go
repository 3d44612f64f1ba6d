package config

import "fmt"

// Validator checks a loaded Config for internally-consistent values
// before the ingestion pipeline runs.
type Validator struct{}

// NewValidator returns a Validator.
func NewValidator() *Validator { return &Validator{} }

// Validate runs all checks against cfg, returning the first violation.
func Validate(cfg *Config) error {
	if cfg.Project.Root == "" {
		return fmt.Errorf("config: project.root must not be empty")
	}
	if cfg.Index.MaxFileContentChars <= 0 {
		return fmt.Errorf("config: index.max_file_content_chars must be positive, got %d", cfg.Index.MaxFileContentChars)
	}
	if cfg.Index.MaxSymbolSnippetChars <= 0 {
		return fmt.Errorf("config: index.max_symbol_snippet_chars must be positive, got %d", cfg.Index.MaxSymbolSnippetChars)
	}
	if cfg.Ingest.CSVFlushEvery <= 0 {
		return fmt.Errorf("config: ingest.csv_flush_every must be positive, got %d", cfg.Ingest.CSVFlushEvery)
	}
	if cfg.Ingest.ASTCacheCapacity <= 0 {
		return fmt.Errorf("config: ingest.ast_cache_capacity must be positive, got %d", cfg.Ingest.ASTCacheCapacity)
	}
	if cfg.Search.FuzzyEditFraction < 0 || cfg.Search.FuzzyEditFraction > 1 {
		return fmt.Errorf("config: search.fuzzy_edit_fraction must be in [0,1], got %v", cfg.Search.FuzzyEditFraction)
	}
	if cfg.Search.RRFConstant <= 0 {
		return fmt.Errorf("config: search.rrf_constant must be positive, got %d", cfg.Search.RRFConstant)
	}
	if cfg.Embed.Enabled && cfg.Embed.Dimension <= 0 {
		return fmt.Errorf("config: embed.dimension must be positive when embed.enabled, got %d", cfg.Embed.Dimension)
	}
	return nil
}
