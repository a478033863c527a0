package store

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/ytget/mucache/internal/model"
	"github.com/ytget/mucache/internal/platform"
)

// QueueFileName is the redownload queue document
const QueueFileName = "redownload_queue.json"

// Queue tracks indexed videos whose files disappeared, persisted as
// redownload_queue.json
type Queue struct {
	path    string
	mu      sync.Mutex
	entries map[string]model.QueueEntry
	logger  *slog.Logger
}

// NewQueue loads the queue from the cache directory
func NewQueue(cacheDir string, logger *slog.Logger) *Queue {
	if logger == nil {
		logger = slog.Default()
	}
	q := &Queue{
		path:    filepath.Join(cacheDir, QueueFileName),
		entries: map[string]model.QueueEntry{},
		logger:  logger.With("component", "redownload_queue"),
	}

	if err := platform.ReadJSON(q.path, &q.entries); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			q.logger.Error("could not load redownload queue, starting empty", "error", err)
		}
		q.entries = map[string]model.QueueEntry{}
	}
	if q.entries == nil {
		q.entries = map[string]model.QueueEntry{}
	}
	return q
}

// Enqueue records url for a later redownload
func (q *Queue) Enqueue(url, title, originalFilename string) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.entries[url] = model.NewQueueEntry(title, originalFilename)
	q.logger.Info("added to redownload queue", "title", title, "url", url)
	q.persistLocked()
}

// Remove drops url from the queue and reports whether it was present
func (q *Queue) Remove(url string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if _, ok := q.entries[url]; !ok {
		return false
	}
	delete(q.entries, url)
	q.persistLocked()
	return true
}

// Contains reports whether url is queued
func (q *Queue) Contains(url string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	_, ok := q.entries[url]
	return ok
}

// Len returns the number of queued URLs
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.entries)
}

// Entries returns a snapshot ordered by timestamp, then URL
func (q *Queue) Entries() []model.QueueItem {
	q.mu.Lock()
	out := make([]model.QueueItem, 0, len(q.entries))
	for url, e := range q.entries {
		out = append(out, model.QueueItem{URL: url, QueueEntry: e})
	}
	q.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Timestamp != out[j].Timestamp {
			return out[i].Timestamp < out[j].Timestamp
		}
		return out[i].URL < out[j].URL
	})
	return out
}

func (q *Queue) persistLocked() {
	if err := platform.WriteJSONAtomic(q.path, q.entries); err != nil {
		q.logger.Error("could not save redownload queue", "error", err)
	}
}
