package config

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// settleDelay collapses the burst of events a single save produces.
const settleDelay = 100 * time.Millisecond

// Watch re-reads cfile after it was written, created or renamed into
// place and passes valid configurations to onChange. Invalid files are
// logged and skipped. Watching ends with ctx.
func Watch(ctx context.Context, cfile string, onChange func(*Config)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	// Editors often replace the file, so watch the directory.
	dir := filepath.Dir(cfile)
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	name := filepath.Clean(cfile)
	go func() {
		defer watcher.Close()
		var settle <-chan time.Time
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != name {
					continue
				}
				if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
					settle = time.After(settleDelay)
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				slog.Error("Config watcher error", "error", err)
			case <-settle:
				settle = nil
				conf, err := ReadConfig(cfile)
				if err != nil {
					slog.Error("Ignoring changed config", "file", cfile, "error", err)
					continue
				}
				slog.Info("Config file changed", "file", cfile)
				onChange(conf)
			}
		}
	}()
	return nil
}
