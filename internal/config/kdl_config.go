package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	kdl "github.com/sblinch/kdl-go"
	"github.com/sblinch/kdl-go/document"
)

// LoadKDL loads `.gitnexus.kdl` from projectRoot, returning (nil, nil) when
// the file is absent.
func LoadKDL(projectRoot string) (*Config, error) {
	kdlPath := filepath.Join(projectRoot, ".gitnexus.kdl")
	if _, err := os.Stat(kdlPath); os.IsNotExist(err) {
		return nil, nil
	}
	content, err := os.ReadFile(kdlPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read .gitnexus.kdl: %w", err)
	}
	cfg, err := parseKDL(string(content))
	if err != nil {
		return nil, err
	}
	if cfg.Project.Root == "" {
		cfg.Project.Root = projectRoot
	} else if !filepath.IsAbs(cfg.Project.Root) {
		cfg.Project.Root = filepath.Clean(filepath.Join(projectRoot, cfg.Project.Root))
	}
	return cfg, nil
}

func parseKDL(content string) (*Config, error) {
	cfg := &Config{}
	doc, err := kdl.Parse(strings.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("failed to parse .gitnexus.kdl: %w", err)
	}

	for _, n := range doc.Nodes {
		switch nodeName(n) {
		case "project":
			for _, cn := range n.Children {
				assignSimpleString(cn, "root", func(v string) { cfg.Project.Root = v })
				assignSimpleString(cn, "name", func(v string) { cfg.Project.Name = v })
			}
		case "index":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "max_file_size":
					if v, ok := firstIntArg(cn); ok {
						cfg.Index.MaxFileSizeBytes = int64(v)
					}
				case "max_file_content_chars":
					if v, ok := firstIntArg(cn); ok {
						cfg.Index.MaxFileContentChars = v
					}
				case "max_symbol_snippet_chars":
					if v, ok := firstIntArg(cn); ok {
						cfg.Index.MaxSymbolSnippetChars = v
					}
				case "follow_symlinks":
					if b, ok := firstBoolArg(cn); ok {
						cfg.Index.FollowSymlinks = b
					}
				case "respect_gitignore":
					if b, ok := firstBoolArg(cn); ok {
						cfg.Index.RespectGitignore = b
					}
				}
			}
		case "ingest":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "workers":
					if v, ok := firstIntArg(cn); ok {
						cfg.Ingest.Workers = v
					}
				case "ast_cache_capacity":
					if v, ok := firstIntArg(cn); ok {
						cfg.Ingest.ASTCacheCapacity = v
					}
				case "content_cache_size":
					if v, ok := firstIntArg(cn); ok {
						cfg.Ingest.ContentCacheSize = v
					}
				case "csv_flush_every":
					if v, ok := firstIntArg(cn); ok {
						cfg.Ingest.CSVFlushEvery = v
					}
				case "watch":
					if b, ok := firstBoolArg(cn); ok {
						cfg.Ingest.Watch = b
					}
				case "watch_debounce_ms":
					if v, ok := firstIntArg(cn); ok {
						cfg.Ingest.WatchDebounceMs = v
					}
				}
			}
		case "search":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "stemming":
					if b, ok := firstBoolArg(cn); ok {
						cfg.Search.Stemming = b
					}
				case "fuzzy_edit_fraction":
					if v, ok := firstFloatArg(cn); ok {
						cfg.Search.FuzzyEditFraction = v
					}
				case "name_field_boost":
					if v, ok := firstFloatArg(cn); ok {
						cfg.Search.NameFieldBoost = v
					}
				case "fuzzy_ranking":
					if b, ok := firstBoolArg(cn); ok {
						cfg.Search.FuzzyRanking = b
					}
				case "rrf_constant":
					if v, ok := firstIntArg(cn); ok {
						cfg.Search.RRFConstant = v
					}
				}
			}
		case "embed":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "enabled":
					if b, ok := firstBoolArg(cn); ok {
						cfg.Embed.Enabled = b
					}
				case "dimension":
					if v, ok := firstIntArg(cn); ok {
						cfg.Embed.Dimension = v
					}
				case "batch_size":
					if v, ok := firstIntArg(cn); ok {
						cfg.Embed.BatchSize = v
					}
				}
			}
		case "feature":
			for _, cn := range n.Children {
				if nodeName(cn) == "llm_enrichment" {
					if b, ok := firstBoolArg(cn); ok {
						cfg.Feature.LLMEnrichment = b
					}
				}
			}
		case "include":
			cfg.Include = append(cfg.Include, collectStringArgs(n)...)
		case "exclude":
			cfg.Exclude = append(cfg.Exclude, collectStringArgs(n)...)
		}
	}
	return cfg, nil
}

func nodeName(n *document.Node) string {
	if n == nil || n.Name == nil {
		return ""
	}
	return n.Name.NodeNameString()
}

func firstIntArg(n *document.Node) (int, bool) {
	if len(n.Arguments) == 0 {
		return 0, false
	}
	switch v := n.Arguments[0].Value.(type) {
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

func firstStringArg(n *document.Node) (string, bool) {
	if len(n.Arguments) == 0 {
		return "", false
	}
	if s, ok := n.Arguments[0].Value.(string); ok {
		return s, true
	}
	return "", false
}

func firstBoolArg(n *document.Node) (bool, bool) {
	if len(n.Arguments) == 0 {
		return false, false
	}
	if b, ok := n.Arguments[0].Value.(bool); ok {
		return b, true
	}
	return false, false
}

func firstFloatArg(n *document.Node) (float64, bool) {
	if len(n.Arguments) == 0 {
		return 0, false
	}
	switch v := n.Arguments[0].Value.(type) {
	case float64:
		return v, true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}

func collectStringArgs(n *document.Node) []string {
	if n == nil {
		return nil
	}
	out := make([]string, 0, len(n.Arguments))
	for _, a := range n.Arguments {
		if s, ok := a.Value.(string); ok {
			out = append(out, s)
		}
	}
	if len(out) == 0 && len(n.Children) > 0 {
		out = make([]string, 0, len(n.Children))
		for _, child := range n.Children {
			if s, ok := firstStringArg(child); ok {
				out = append(out, s)
			} else if child.Name != nil {
				if s, ok := child.Name.Value.(string); ok {
					out = append(out, s)
				}
			}
		}
	}
	return out
}

func assignSimpleString(n *document.Node, target string, set func(string)) {
	if nodeName(n) == target {
		if s, ok := firstStringArg(n); ok {
			set(s)
		}
	}
}
