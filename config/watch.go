package config

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DebounceWindow groups bursts of writes from editors into one reload.
const DebounceWindow = 100 * time.Millisecond

// Watch calls onChange with the re-read config each time filename is
// written. Configs that fail to load are logged and skipped. Watch blocks
// until ctx is done.
func Watch(ctx context.Context, filename string, logger *slog.Logger, onChange func(*Config)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer w.Close()

	// Watch the directory so that editors replacing the file by rename
	// are still seen.
	abs, err := filepath.Abs(filename)
	if err != nil {
		return err
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watch %s: %w", filename, err)
	}

	var timer *time.Timer
	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil
		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(DebounceWindow)
			} else {
				timer.Reset(DebounceWindow)
			}
			fire = timer.C
		case <-fire:
			fire = nil
			c, err := Read(filename)
			if err != nil {
				logger.Warn("config reload failed", "path", filename, "error", err)
				continue
			}
			logger.Info("config reloaded", "path", filename, "events", len(c.Events))
			onChange(c)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn("config watcher error", "error", err)
		}
	}
}
