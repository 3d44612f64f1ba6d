// Package walk implements the File Walker & Language Router:
// enumerate the repo, apply ignore rules, sniff binaries, and route each
// file to a language tag by extension.
package walk

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gitnexus/gitnexus/internal/config"
)

// File is one routed entry produced by the walker.
type File struct {
	Path     string // repo-relative, forward-slash normalized
	Language string // "" when extension is unknown
	Bytes    []byte
	Binary   bool
}

// Walker enumerates a repository root applying the shared ignore set.
type Walker struct {
	root      string
	cfg       *config.Config
	gitignore *config.GitignoreParser
	detector  *config.BuildArtifactDetector
}

// New returns a Walker rooted at root using cfg's ignore settings.
func New(root string, cfg *config.Config) *Walker {
	w := &Walker{root: root, cfg: cfg}
	w.detector = config.NewBuildArtifactDetector(root)
	if cfg.Index.RespectGitignore {
		gi := config.NewGitignoreParser()
		_ = gi.LoadGitignore(root)
		for _, pat := range DefaultIgnorePatterns {
			gi.AddPattern(pat)
		}
		for _, pat := range cfg.Exclude {
			gi.AddPattern(pat)
		}
		for _, pat := range w.detector.DetectOutputDirectories() {
			gi.AddPattern(pat)
		}
		w.gitignore = gi
	}
	return w
}

// DefaultIgnorePatterns is the shared ignore set: typical VCS,
// build, vendor directories, binary media, and lockfiles. Exposed so
// downstream configuration can extend it.
var DefaultIgnorePatterns = []string{
	".git/", ".svn/", ".hg/",
	"node_modules/", "vendor/", "dist/", "build/", "target/", ".next/",
	"__pycache__/", ".venv/", "venv/", ".gitnexus/",
	"*.png", "*.jpg", "*.jpeg", "*.gif", "*.bmp", "*.ico", "*.pdf", "*.zip",
	"*.tar", "*.gz", "*.woff", "*.woff2", "*.ttf", "*.eot", "*.mp4", "*.mov",
	"package-lock.json", "yarn.lock", "pnpm-lock.yaml", "Cargo.lock", "go.sum",
}

// binarySampleBytes is the prefix sampled for the binary heuristic.
const binarySampleBytes = 1000

// Walk enumerates all regular files under root in deterministic (sorted)
// order, applying ignore rules, size limits, and binary detection. The
// returned slice is ordered so downstream phases are reproducible
// independent of filesystem iteration order.
func (w *Walker) Walk() ([]File, error) {
	var paths []string
	err := filepath.WalkDir(w.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		rel, rerr := filepath.Rel(w.root, path)
		if rerr != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)
		if rel == "." {
			return nil
		}
		isDir := d.IsDir()
		if w.isIgnored(rel, isDir) {
			if isDir {
				return filepath.SkipDir
			}
			return nil
		}
		if isDir {
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		paths = append(paths, rel)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)

	out := make([]File, 0, len(paths))
	for _, rel := range paths {
		f, ferr := w.load(rel)
		if ferr != nil {
			continue
		}
		out = append(out, f)
	}
	return out, nil
}

func (w *Walker) isIgnored(rel string, isDir bool) bool {
	if w.gitignore != nil && w.gitignore.ShouldIgnore(rel, isDir) {
		return true
	}
	return false
}

func (w *Walker) load(rel string) (File, error) {
	abs := filepath.Join(w.root, rel)
	info, err := os.Lstat(abs)
	if err != nil {
		return File{}, err
	}
	if !w.cfg.Index.FollowSymlinks && info.Mode()&os.ModeSymlink != 0 {
		return File{}, errSkip
	}
	if w.cfg.Index.MaxFileSizeBytes > 0 && info.Size() > w.cfg.Index.MaxFileSizeBytes {
		return File{Path: rel, Binary: true}, nil
	}

	data, err := os.ReadFile(abs)
	if err != nil {
		return File{}, err
	}

	if looksBinary(data) {
		return File{Path: rel, Binary: true}, nil
	}

	lang := LanguageForPath(rel)
	return File{Path: rel, Language: lang, Bytes: data}, nil
}

var errSkip = &skipError{}

type skipError struct{}

func (*skipError) Error() string { return "skip" }

// looksBinary samples the first binarySampleBytes bytes; if more than 10%
// are non-printable, non-whitespace, the file is treated as binary.
func looksBinary(data []byte) bool {
	n := len(data)
	if n > binarySampleBytes {
		n = binarySampleBytes
	}
	if n == 0 {
		return false
	}
	bad := 0
	for _, b := range data[:n] {
		if b == '\n' || b == '\r' || b == '\t' {
			continue
		}
		if b < 0x20 || b == 0x7f {
			bad++
		}
	}
	return float64(bad)/float64(n) > 0.10
}

// extToLanguage maps a lowercase file extension (with leading dot) to a
// language tag.
var extToLanguage = map[string]string{
	".ts": "typescript", ".tsx": "typescript",
	".js": "javascript", ".jsx": "javascript", ".mjs": "javascript", ".cjs": "javascript",
	".py": "python", ".pyi": "python",
	".go": "go",
	".java": "java",
	".cs": "csharp",
	".rs": "rust",
	".c": "c", ".h": "c",
	".cpp": "cpp", ".cc": "cpp", ".cxx": "cpp", ".hpp": "cpp", ".hxx": "cpp", ".hh": "cpp",
}

// LanguageForPath returns the routed language tag for path's extension, or
// "" when unknown; files without a known extension are skipped by
// symbol-producing phases but still appear as File/Folder nodes.
func LanguageForPath(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	return extToLanguage[ext]
}
