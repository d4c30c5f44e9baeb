package addrbook

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watch reloads book whenever the file at path is written or replaced,
// until ctx is done. The parent directory is watched so the file may be
// created after Watch starts.
func Watch(ctx context.Context, path string, book *Book, l *zap.Logger) error {
	path, err := filepath.Abs(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("watching %s: %w", path, err)
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watching %s: %w", path, err)
	}
	if err := w.Add(filepath.Dir(path)); err != nil {
		w.Close()
		return fmt.Errorf("watching %s: %w", path, err)
	}
	l = l.With(zap.String("address book", path))

	go func() {
		defer w.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				l.Warn("address book watcher failed", zap.Error(err))
			case event, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != path || !changed(event) {
					continue
				}
				if err := book.Reload(path); err != nil {
					l.Warn("couldn't reload address book", zap.Error(err))
					continue
				}
				l.Debug("address book reloaded", zap.Int("entries", book.Len()))
			}
		}
	}()
	return nil
}

func changed(event fsnotify.Event) bool {
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create)
}
