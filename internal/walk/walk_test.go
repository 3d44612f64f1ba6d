package walk_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gitnexus/gitnexus/internal/config"
	"github.com/gitnexus/gitnexus/internal/walk"
)

func writeFiles(t *testing.T, root string, files map[string][]byte) {
	t.Helper()
	for rel, content := range files {
		abs := filepath.Join(root, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(abs), 0o755))
		require.NoError(t, os.WriteFile(abs, content, 0o644))
	}
}

func pathsOf(files []walk.File) []string {
	out := make([]string, len(files))
	for i, f := range files {
		out[i] = f.Path
	}
	return out
}

func TestWalkEnumeratesSortedAndRoutesLanguages(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string][]byte{
		"src/b.ts":  []byte("export function b() {}"),
		"src/a.go":  []byte("package src"),
		"README.md": []byte("# readme"),
	})

	w := walk.New(root, config.Default(root))
	files, err := w.Walk()
	require.NoError(t, err)

	assert.Equal(t, []string{"README.md", "src/a.go", "src/b.ts"}, pathsOf(files))

	byPath := map[string]walk.File{}
	for _, f := range files {
		byPath[f.Path] = f
	}
	assert.Equal(t, "go", byPath["src/a.go"].Language)
	assert.Equal(t, "typescript", byPath["src/b.ts"].Language)
	assert.Equal(t, "", byPath["README.md"].Language, "unknown extension still walks, routes to no language")
}

func TestWalkSkipsIgnoredDirectories(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string][]byte{
		"src/a.ts":                  []byte("export function a() {}"),
		"node_modules/pkg/index.js": []byte("module.exports = {}"),
		".git/config":               []byte("[core]"),
	})

	w := walk.New(root, config.Default(root))
	files, err := w.Walk()
	require.NoError(t, err)

	assert.Equal(t, []string{"src/a.ts"}, pathsOf(files))
}

func TestWalkMarksBinaryFiles(t *testing.T) {
	root := t.TempDir()
	binary := make([]byte, 64)
	for i := range binary {
		binary[i] = byte(i % 7) // mostly control bytes
	}
	writeFiles(t, root, map[string][]byte{
		"data.bin": binary,
		"a.go":     []byte("package main"),
	})

	w := walk.New(root, config.Default(root))
	files, err := w.Walk()
	require.NoError(t, err)

	byPath := map[string]walk.File{}
	for _, f := range files {
		byPath[f.Path] = f
	}
	assert.True(t, byPath["data.bin"].Binary)
	assert.Empty(t, byPath["data.bin"].Bytes, "binary files carry no content, only a placeholder downstream")
	assert.False(t, byPath["a.go"].Binary)
}

func TestWalkRespectsMaxFileSize(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string][]byte{
		"big.go":   make([]byte, 2048),
		"small.go": []byte("package small"),
	})

	cfg := config.Default(root)
	cfg.Index.MaxFileSizeBytes = 1024
	w := walk.New(root, cfg)
	files, err := w.Walk()
	require.NoError(t, err)

	byPath := map[string]walk.File{}
	for _, f := range files {
		byPath[f.Path] = f
	}
	assert.True(t, byPath["big.go"].Binary, "oversized files degrade to placeholder entries")
	assert.False(t, byPath["small.go"].Binary)
}

func TestLanguageForPath(t *testing.T) {
	assert.Equal(t, "typescript", walk.LanguageForPath("a/b/c.tsx"))
	assert.Equal(t, "python", walk.LanguageForPath("x.py"))
	assert.Equal(t, "cpp", walk.LanguageForPath("native/impl.cc"))
	assert.Equal(t, "", walk.LanguageForPath("Makefile"))
}
