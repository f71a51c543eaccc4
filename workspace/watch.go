package workspace

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"mention-picker/log"
	"mention-picker/ui/debounce"

	"github.com/fsnotify/fsnotify"
)

// invalidateDelay coalesces the burst of events a checkout or build produces.
const invalidateDelay = 50 * time.Millisecond

// Watch invalidates the indexes whenever files are created, removed or renamed
// under the root, and whenever a Go file is written. It returns once the
// watcher is installed; watching stops when ctx is done.
func (w *Workspace) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}

	if err := w.addWatchDirs(watcher, w.root); err != nil {
		watcher.Close()
		return err
	}

	go w.watchLoop(ctx, watcher)
	return nil
}

func (w *Workspace) addWatchDirs(watcher *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return nil
		}
		if p != w.root {
			rel, relErr := filepath.Rel(w.root, p)
			if relErr != nil {
				return nil
			}
			if d.Name() == ".git" || w.excluded(filepath.ToSlash(rel), true) {
				return filepath.SkipDir
			}
		}
		if addErr := watcher.Add(p); addErr != nil {
			return fmt.Errorf("failed to watch %s: %w", p, addErr)
		}
		return nil
	})
}

func (w *Workspace) watchLoop(ctx context.Context, watcher *fsnotify.Watcher) {
	defer watcher.Close()
	everyN := log.NewEvery(60 * time.Second)
	coalesce := debounce.New(invalidateDelay)
	defer coalesce.Cancel()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if !w.affectsIndex(event) {
				continue
			}
			coalesce.Trigger(w.Invalidate)
			if event.Has(fsnotify.Create) {
				if info, statErr := os.Stat(event.Name); statErr == nil && info.IsDir() {
					if addErr := w.addWatchDirs(watcher, event.Name); addErr != nil && everyN.ShouldLog() {
						log.WarningLog.Printf("%v", addErr)
					}
				}
			}
		case watchErr, ok := <-watcher.Errors:
			if !ok {
				return
			}
			if everyN.ShouldLog() {
				log.WarningLog.Printf("workspace watcher error: %v", watchErr)
			}
		}
	}
}

func (w *Workspace) affectsIndex(event fsnotify.Event) bool {
	if event.Has(fsnotify.Create) || event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
		return true
	}
	return event.Has(fsnotify.Write) && filepath.Ext(event.Name) == ".go"
}
