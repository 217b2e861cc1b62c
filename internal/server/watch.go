package server

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// watchSettle coalesces bursts of filesystem events (editors often write a
// file several times in quick succession) into one rebuild.
const watchSettle = 500 * time.Millisecond

// Watch rebuilds the graph whenever the data file changes and publishes a
// reload event. It blocks until the context is cancelled.
func (a *App) Watch(ctx context.Context, path string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the directory: editors that replace the file atomically would
	// otherwise drop the watch on the old inode.
	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	target := filepath.Clean(path)
	a.logger.Info("watching data file", "path", target)

	var settle *time.Timer
	var settleC <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if settle == nil {
				settle = time.NewTimer(watchSettle)
			} else {
				settle.Reset(watchSettle)
			}
			settleC = settle.C

		case <-settleC:
			settleC = nil
			a.logger.Info("data file changed, rebuilding", "path", target)
			if err := a.RebuildFresh(ctx); err != nil {
				a.logger.Error("rebuild failed", "error", err)
				continue
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			a.logger.Error("watch error", "error", err)
		}
	}
}
