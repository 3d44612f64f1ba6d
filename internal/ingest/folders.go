package ingest

import (
	"path"
	"sort"

	"github.com/gitnexus/gitnexus/internal/graph"
	"github.com/gitnexus/gitnexus/internal/types"
)

// buildFolderTree materializes Folder nodes for every directory that owns a
// walked file and wires CONTAINS edges so the tree is rooted at the repo
// root and each non-root File/Folder has exactly one parent Folder.
func buildFolderTree(store *graph.Store, filePaths []string) {
	seen := make(map[string]bool)
	var dirs []string
	for _, p := range filePaths {
		dir := path.Dir(p)
		for dir != "." && dir != "/" && !seen[dir] {
			seen[dir] = true
			dirs = append(dirs, dir)
			dir = path.Dir(dir)
		}
	}
	sort.Strings(dirs)

	for _, dir := range dirs {
		store.AddFolder(&types.FolderNode{
			ID:       types.FolderNodeID(dir),
			Name:     path.Base(dir),
			FilePath: dir,
		})
	}

	for _, dir := range dirs {
		parent := path.Dir(dir)
		if parent == "." || parent == "/" {
			continue
		}
		store.AddRelation(types.Relation{
			From: types.FolderNodeID(parent),
			To:   types.FolderNodeID(dir),
			Type: types.RelContains,
		})
	}

	for _, p := range filePaths {
		dir := path.Dir(p)
		if dir == "." || dir == "/" {
			continue
		}
		store.AddRelation(types.Relation{
			From: types.FolderNodeID(dir),
			To:   types.FileNodeID(p),
			Type: types.RelContains,
		})
	}
}
