package config

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// GitignorePattern is one parsed line of a .gitignore file.
type GitignorePattern struct {
	Pattern   string
	Negate    bool
	Directory bool
	Absolute  bool
}

// GitignoreParser accumulates patterns from one or more .gitignore files and
// answers ShouldIgnore queries.
type GitignoreParser struct {
	patterns []GitignorePattern
}

// NewGitignoreParser returns an empty parser.
func NewGitignoreParser() *GitignoreParser {
	return &GitignoreParser{}
}

// LoadGitignore loads patterns from rootPath/.gitignore. A missing file is
// not an error.
func (gp *GitignoreParser) LoadGitignore(rootPath string) error {
	path := filepath.Join(rootPath, ".gitignore")
	file, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		gp.AddPattern(line)
	}
	return scanner.Err()
}

// AddPattern parses and stores a single gitignore line.
func (gp *GitignoreParser) AddPattern(line string) {
	p := GitignorePattern{}
	if strings.HasPrefix(line, "!") {
		p.Negate = true
		line = line[1:]
	}
	if strings.HasSuffix(line, "/") {
		p.Directory = true
		line = strings.TrimSuffix(line, "/")
	}
	if strings.HasPrefix(line, "/") {
		p.Absolute = true
		line = line[1:]
	}
	p.Pattern = line
	gp.patterns = append(gp.patterns, p)
}

// ShouldIgnore reports whether path (relative, forward-slash normalized)
// should be excluded from the walk. Later matching patterns win, and a
// negated pattern un-ignores a path matched by an earlier pattern, mirroring
// real gitignore precedence.
func (gp *GitignoreParser) ShouldIgnore(path string, isDir bool) bool {
	path = filepath.ToSlash(path)
	ignored := false
	for _, p := range gp.patterns {
		if gp.matches(p, path, isDir) {
			ignored = !p.Negate
		}
	}
	return ignored
}

func (gp *GitignoreParser) matches(p GitignorePattern, path string, isDir bool) bool {
	if p.Directory && !isDir {
		// a directory-only pattern still excludes files nested under it
		if !gp.pathUnder(p, path) {
			return false
		}
		return true
	}

	candidate := p.Pattern
	if !strings.Contains(candidate, "/") {
		candidate = "**/" + candidate
	} else if p.Absolute {
		// already root-relative
	} else {
		candidate = "**/" + candidate
	}

	if ok, _ := doublestar.Match(candidate, path); ok {
		return true
	}
	// also allow a bare basename/prefix match against any path segment
	base := filepath.Base(path)
	if ok, _ := doublestar.Match(p.Pattern, base); ok {
		return true
	}
	return gp.pathUnder(p, path)
}

// pathUnder reports whether path has a path segment equal to p.Pattern,
// i.e. path is inside a directory matched by a directory-only pattern.
func (gp *GitignoreParser) pathUnder(p GitignorePattern, path string) bool {
	segments := strings.Split(path, "/")
	for _, seg := range segments {
		if ok, _ := doublestar.Match(p.Pattern, seg); ok {
			return true
		}
	}
	return false
}
