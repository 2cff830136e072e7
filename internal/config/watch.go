package config

import (
	"context"
	"fmt"
	"log"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch reloads the calibration file whenever it changes and delivers each
// valid result on the returned channel. Only the latest unread calibration
// is kept. Invalid files are logged and skipped. The channel is closed when
// ctx is done.
func Watch(ctx context.Context, path string) (<-chan Calibration, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	// Watch the directory: editors often replace the file instead of
	// writing it in place, which drops a watch on the file itself.
	path = filepath.Clean(path)
	if err := w.Add(filepath.Dir(path)); err != nil {
		w.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(path), err)
	}

	out := make(chan Calibration, 1)
	go func() {
		defer close(out)
		defer w.Close()

		for {
			select {
			case <-ctx.Done():
				return

			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != path || !(ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create)) {
					continue
				}
				c, err := Load(path)
				if err != nil {
					log.Printf("config: reload rejected: %v", err)
					continue
				}
				log.Printf("config: reloaded %s", path)
				select {
				case <-out:
				default:
				}
				out <- c

			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				log.Printf("config: watch error: %v", err)
			}
		}
	}()

	return out, nil
}
