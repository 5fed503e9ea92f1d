package manifest

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch monitors the manifest file on the real filesystem and logs a restart
// hint whenever it changes. The module tree is wired at boot, so changes
// never apply live; the watcher exists to tell the operator that what's on
// disk no longer matches what's running.
//
// It returns once the watcher is installed and stops when ctx is canceled.
func Watch(ctx context.Context, path string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating manifest watcher: %w", err)
	}

	// Watch the directory rather than the file: editors that write via
	// rename would otherwise detach the watch on first save.
	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return fmt.Errorf("watching %s: %w", dir, err)
	}

	target := filepath.Clean(path)

	go func() {
		defer watcher.Close()

		for {
			select {
			case <-ctx.Done():
				slog.Debug("Manifest watcher stopped")
				return

			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != target {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
					slog.Info("Module manifest changed on disk; restart to apply", "path", path, "op", event.Op.String())
				}

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				slog.Error("Manifest watcher error", "error", err)
			}
		}
	}()

	slog.Debug("Watching module manifest", "path", path)
	return nil
}
