package catalog

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	log "github.com/sirupsen/logrus"
)

const watchSettle = time.Millisecond * 200

// Watch calls reload each time the file at path is written, created or
// replaced. Bursts of changes result in a single call. Watch blocks until the
// context is done.
//
// The parent directory is watched rather than the file itself so editors that
// replace the file on save are noticed.
func Watch(ctx context.Context, path string, reload func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return err
	}
	log.WithField("file", abs).Debugf("Watching catalog")

	var settle <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				settle = time.After(watchSettle)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.WithField("file", abs).Errorf("Catalog watcher: %v", err)
		case <-settle:
			settle = nil
			log.WithField("file", abs).Infof("Catalog changed, reloading")
			reload()
		}
	}
}
