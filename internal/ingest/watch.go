package ingest

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watch re-runs Run on every debounced batch of filesystem changes under
// the project root until ctx is cancelled. Each tick re-runs the full
// phase-sequential pipeline and honors the same atomic staging swap as a
// one-shot analyze; there is no sub-file incremental reparse.
func (p *Pipeline) Watch(ctx context.Context, onRun func(*Result, error)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	root := p.cfg.Project.Root
	if err := addWatchDirs(watcher, root); err != nil {
		return err
	}

	debounce := time.Duration(p.cfg.Ingest.WatchDebounceMs) * time.Millisecond
	if debounce <= 0 {
		debounce = 500 * time.Millisecond
	}
	timer := time.NewTimer(debounce)
	if !timer.Stop() {
		<-timer.C
	}
	pending := false

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&fsnotify.Chmod != 0 {
				continue
			}
			pending = true
			timer.Reset(debounce)

		case <-watcher.Errors:
			// non-fatal: keep watching

		case <-timer.C:
			if !pending {
				continue
			}
			pending = false
			result, err := p.Run(ctx, Options{})
			if onRun != nil {
				onRun(result, err)
			}
		}
	}
}

// addWatchDirs recursively registers every directory under root with
// watcher, skipping the artifact directories GitNexus itself writes.
func addWatchDirs(watcher *fsnotify.Watcher, root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return nil
		}
		name := info.Name()
		if name == ".git" || name == ".gitnexus" || name == ".gitnexus.staging" || name == ".gitnexus.prev" {
			return filepath.SkipDir
		}
		return watcher.Add(path)
	})
}
