// Build artifact detection: parses language-specific manifests
// (package.json, Cargo.toml, pyproject.toml) to find output directories
// that should be added to the ignore set.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// BuildArtifactDetector finds language-specific build output directories.
type BuildArtifactDetector struct {
	projectRoot string
}

// NewBuildArtifactDetector returns a detector rooted at projectRoot.
func NewBuildArtifactDetector(projectRoot string) *BuildArtifactDetector {
	return &BuildArtifactDetector{projectRoot: projectRoot}
}

// DetectOutputDirectories scans known manifest files and returns glob
// patterns (e.g. "**/dist/**") to exclude from the walk.
func (bad *BuildArtifactDetector) DetectOutputDirectories() []string {
	var patterns []string
	patterns = append(patterns, bad.detectJavaScript()...)
	patterns = append(patterns, bad.detectRust()...)
	patterns = append(patterns, bad.detectPython()...)
	patterns = append(patterns, commonBuildDirs...)
	return patterns
}

var commonBuildDirs = []string{
	"**/node_modules/**", "**/dist/**", "**/build/**", "**/target/**",
	"**/.next/**", "**/vendor/**", "**/__pycache__/**", "**/.venv/**",
}

func (bad *BuildArtifactDetector) detectJavaScript() []string {
	path := filepath.Join(bad.projectRoot, "package.json")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	var pkg map[string]interface{}
	if json.Unmarshal(data, &pkg) != nil {
		return nil
	}
	var out []string
	if build, ok := pkg["build"].(map[string]interface{}); ok {
		if outDir, ok := build["outDir"].(string); ok && outDir != "" {
			out = append(out, "**/"+outDir+"/**")
		}
	}
	return out
}

func (bad *BuildArtifactDetector) detectRust() []string {
	path := filepath.Join(bad.projectRoot, "Cargo.toml")
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	return []string{"**/target/**"}
}

func (bad *BuildArtifactDetector) detectPython() []string {
	path := filepath.Join(bad.projectRoot, "pyproject.toml")
	m, err := parseProjectTOML(path)
	if err != nil {
		return nil
	}
	var out []string
	if tool, ok := m["tool"].(map[string]interface{}); ok {
		if setuptools, ok := tool["setuptools"].(map[string]interface{}); ok {
			if pkgDir, ok := setuptools["package-dir"].(map[string]interface{}); ok {
				for _, v := range pkgDir {
					if s, ok := v.(string); ok && s != "" {
						out = append(out, "**/"+s+"/**")
					}
				}
			}
		}
	}
	return out
}
