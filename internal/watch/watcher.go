// Package watch keeps the redownload queue in step with the cache directory.
// Files that disappear from under a playlist entry are queued for download.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/rjeczalik/notify"

	"github.com/ytget/mucache/internal/model"
	"github.com/ytget/mucache/internal/platform"
)

// eventBuffer is sized so bursts of deletes are not dropped while the
// handler runs; notify does not block on full channels
const eventBuffer = 64

type (
	fileIndex interface {
		FindByFilename(name string) (model.PlaylistEntry, bool)
	}

	redownloadQueue interface {
		Enqueue(url, title, originalFilename string)
		Contains(url string) bool
	}

	// Watcher listens for Remove and Rename events in the cache directory
	Watcher struct {
		dir    string
		index  fileIndex
		queue  redownloadQueue
		logger *slog.Logger
	}
)

// New creates a Watcher for dir
func New(dir string, index fileIndex, queue redownloadQueue, logger *slog.Logger) *Watcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{
		dir:    dir,
		index:  index,
		queue:  queue,
		logger: logger.With("component", "watch"),
	}
}

// Run watches until ctx is cancelled
func (w *Watcher) Run(ctx context.Context) error {
	events := make(chan notify.EventInfo, eventBuffer)
	if err := notify.Watch(w.dir, events, notify.Remove, notify.Rename); err != nil {
		return fmt.Errorf("failed to watch %s: %w", w.dir, err)
	}
	defer notify.Stop(events)

	w.logger.Info("watching cache directory", "dir", w.dir)
	for {
		select {
		case ei := <-events:
			w.handle(ei.Path())
		case <-ctx.Done():
			return nil
		}
	}
}

// handle queues the playlist entry backed by path once the file is gone.
// Rename events fire for both ends of a move; the destination still exists
// and is ignored.
func (w *Watcher) handle(path string) {
	if platform.FileExists(path) {
		return
	}

	name := filepath.Base(path)
	entry, ok := w.index.FindByFilename(name)
	if !ok {
		return
	}
	if w.queue.Contains(entry.URL) {
		return
	}

	w.logger.Warn("cached file removed", "file", name, "url", entry.URL)
	w.queue.Enqueue(entry.URL, entry.Title, entry.Filename)
}
