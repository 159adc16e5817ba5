package content

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/epropulse/epropulse/internal/debounce"
	"github.com/epropulse/epropulse/internal/storage"
)

// ReconcileDelay is the quiet period after a removal or rename before the
// directory is reconciled with the store.
const ReconcileDelay = 200 * time.Millisecond

// Watch starts an fsnotify watcher on root and processes file change events
// until ctx is cancelled. Created and written files are imported at once.
// Removals, renames and new directories schedule a debounced Sync, so a
// file replaced through a rename keeps its post.
func Watch(ctx context.Context, st Store, files storage.Provider, root string, logger *slog.Logger, cb EventCallback) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := addDirsRecursive(w, root); err != nil {
		return err
	}

	reconcile := debounce.NewContext(ctx, ReconcileDelay, func(struct{}) {
		rep, err := Sync(ctx, st, files, logger, cb)
		if err != nil {
			logger.Warn("reconcile: sync failed", slog.String("error", err.Error()))
			return
		}
		logger.Debug("reconcile: done", slog.Int("imported", rep.Imported), slog.Int("removed", rep.Removed))
	})
	defer reconcile.Stop()

	logger.Info("watcher: started", slog.String("root", root))

	for {
		select {
		case <-ctx.Done():
			logger.Info("watcher: stopped")
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}

			if ev.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(ev.Name); statErr == nil && info.IsDir() {
					if addErr := addDirsRecursive(w, ev.Name); addErr != nil {
						logger.Warn("watcher: add new dir failed",
							slog.String("path", ev.Name),
							slog.String("error", addErr.Error()))
					}
					reconcile.Call(struct{}{})
					continue
				}
			}

			name := filepath.Base(ev.Name)
			if strings.HasPrefix(name, ".") || !strings.EqualFold(filepath.Ext(name), Ext) {
				continue
			}
			rel, relErr := filepath.Rel(root, ev.Name)
			if relErr != nil {
				continue
			}
			rel = filepath.ToSlash(rel)

			switch {
			case ev.Op&(fsnotify.Create|fsnotify.Write) != 0:
				if err := importPath(ctx, st, files, rel); err != nil {
					logger.Warn("watcher: import failed", slog.String("path", rel), slog.String("error", err.Error()))
					continue
				}
				logger.Debug("watcher: imported", slog.String("path", rel))
				notify(cb, EventImported, rel)

			case ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
				reconcile.Call(struct{}{})
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

// addDirsRecursive adds root and all its subdirectories to the watcher.
func addDirsRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.Add(path)
		}
		return nil
	})
}
