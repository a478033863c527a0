package download

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ytget/mucache/internal/model"
	"github.com/ytget/mucache/internal/platform"
	"github.com/ytget/mucache/internal/store"
)

// Result is the outcome of a successful Resolve
type Result struct {
	Filename  string
	FromCache bool
	Site      Site
	Title     string
}

// Options wires a Resolver. Index and a generic Fetcher are required.
type Options struct {
	Index    Index
	Queue    RedownloadQueue
	Fetchers map[Site]Fetcher
	Notifier Notifier
	Recorder Recorder
	Logger   *slog.Logger
	// Status prints a console status line
	Status func(msg string)
}

// Resolver turns URLs into cached files. Concurrent resolves of one URL share
// a single download; different URLs proceed in parallel.
type Resolver struct {
	index    Index
	queue    RedownloadQueue
	fetchers map[Site]Fetcher
	notifier Notifier
	recorder Recorder
	logger   *slog.Logger
	status   func(string)

	mu       sync.Mutex
	inflight map[string]chan struct{}
}

// NewResolver creates a Resolver
func NewResolver(opts Options) *Resolver {
	r := &Resolver{
		index:    opts.Index,
		queue:    opts.Queue,
		fetchers: opts.Fetchers,
		notifier: opts.Notifier,
		recorder: opts.Recorder,
		logger:   opts.Logger,
		status:   opts.Status,
		inflight: make(map[string]chan struct{}),
	}
	if r.fetchers == nil {
		r.fetchers = map[Site]Fetcher{}
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	r.logger = r.logger.With("component", "resolver")
	if r.status == nil {
		r.status = func(string) {}
	}
	return r
}

// Resolve returns the cached file for url, downloading it on a miss
func (r *Resolver) Resolve(ctx context.Context, url string) (*Result, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil, fetchError(SiteGeneric, StageParse, url, errors.New("empty url"))
	}
	site := Classify(url)

	for {
		if res, ok := r.lookup(url, site); ok {
			return res, nil
		}

		r.mu.Lock()
		if wait, busy := r.inflight[url]; busy {
			r.mu.Unlock()
			r.logger.Debug("waiting for in-flight download", "url", url)
			select {
			case <-wait:
				continue
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
		done := make(chan struct{})
		r.inflight[url] = done
		r.mu.Unlock()

		res, err := r.download(ctx, url, site)

		r.mu.Lock()
		delete(r.inflight, url)
		close(done)
		r.mu.Unlock()

		return res, err
	}
}

// Remove drops url from the index and deletes its file
func (r *Resolver) Remove(url string) error {
	if err := r.index.Remove(url); err != nil {
		return err
	}
	if r.queue != nil {
		r.queue.Remove(url)
	}
	return nil
}

// lookup answers from the index. A stale entry is queued for redownload.
func (r *Resolver) lookup(url string, site Site) (*Result, bool) {
	entry, ok := r.index.Get(url)
	if !ok {
		return nil, false
	}

	if platform.FileExists(filepath.Join(r.index.Dir(), entry.Filename)) {
		r.logger.Info("using cached video", "file", entry.Filename)
		r.status(fmt.Sprintf("Video download of '%s' complete (from cache)", entry.Title))
		if r.recorder != nil {
			r.recorder.CacheHit(site.String())
		}

		task := model.NewDownloadTask(uuid.NewString(), url, site.String())
		task.Status = model.TaskStatusCached
		task.Progress, task.Percent = 1, 100
		task.Filename, task.Title, task.FromCache = entry.Filename, entry.Title, true
		task.FinishedAt = time.Now()
		r.notify(task)

		return &Result{Filename: entry.Filename, FromCache: true, Site: site, Title: entry.Title}, true
	}

	r.logger.Warn("cached file not found", "file", entry.Filename, "url", url)
	if r.queue != nil && !r.queue.Contains(url) {
		r.queue.Enqueue(url, entry.Title, entry.Filename)
	}
	return nil, false
}

func (r *Resolver) download(ctx context.Context, url string, site Site) (*Result, error) {
	if r.recorder != nil {
		r.recorder.CacheMiss(site.String())
	}

	fetcher, ok := r.fetchers[site]
	if !ok {
		fetcher, ok = r.fetchers[SiteGeneric]
	}
	if !ok {
		return nil, fetchError(site, StageSelect, url, errors.New("no fetcher configured"))
	}

	r.logger.Info("starting download", "url", url, "site", site)
	r.status("Starting video download...")

	t := newTracker(model.NewDownloadTask(uuid.NewString(), url, site.String()), r.notify)
	t.start()

	started := time.Now()
	fetched, err := fetcher.Fetch(WithProgress(ctx, t.progress), url)
	if r.recorder != nil {
		r.recorder.DownloadFinished(site.String(), err == nil, time.Since(started))
	}

	if err != nil {
		var fe *FetchError
		if !errors.As(err, &fe) {
			fe = fetchError(site, StageFetch, url, err)
		}
		r.logger.Error("download failed", "url", url, "site", site, "stage", fe.Stage, "error", fe.Err)
		t.fail(fe)
		return nil, fe
	}

	filename := r.normalizeName(fetched.Filename)
	title := fetched.Title
	if title == "" {
		title = strings.TrimSuffix(filename, filepath.Ext(filename))
	}

	if len(fetched.Metadata) > 0 {
		if err := store.WriteSidecar(r.index.Dir(), filename, fetched.Metadata); err != nil {
			r.logger.Warn("could not save metadata", "file", filename, "error", err)
		}
	}

	r.index.Add(url, title, filename)
	if r.queue != nil {
		r.queue.Remove(url)
	}

	r.logger.Info("download complete", "url", url, "file", filename, "format", fetched.Format)
	r.status(fmt.Sprintf("Video download of '%s' complete", title))
	t.complete(filename, title, fetched.Format)

	return &Result{Filename: filename, Site: site, Title: title}, nil
}

// normalizeName renames a file whose name contains non-ASCII characters to
// its sanitized form, keeping the extension. On failure the original name is
// kept.
func (r *Resolver) normalizeName(name string) string {
	if !platform.HasNonASCII(name) {
		return name
	}

	safe := platform.SanitizeKeepExt(name)
	dir := r.index.Dir()
	if err := os.Rename(filepath.Join(dir, name), filepath.Join(dir, safe)); err != nil {
		r.logger.Error("could not rename downloaded file", "from", name, "to", safe, "error", err)
		return name
	}
	if err := store.MoveSidecar(dir, name, safe); err != nil {
		r.logger.Warn("could not move metadata", "file", name, "error", err)
	}
	r.logger.Debug("renamed file", "from", name, "to", safe)
	return safe
}

func (r *Resolver) notify(task *model.DownloadTask) {
	if r.notifier != nil {
		r.notifier.Notify(task)
	}
}

// tracker serializes updates to one task. Progress callbacks arrive on the
// extractor's goroutine.
type tracker struct {
	mu     sync.Mutex
	task   *model.DownloadTask
	notify func(*model.DownloadTask)
}

func newTracker(task *model.DownloadTask, notify func(*model.DownloadTask)) *tracker {
	return &tracker{task: task, notify: notify}
}

func (t *tracker) update(fn func(*model.DownloadTask)) {
	t.mu.Lock()
	fn(t.task)
	snapshot := t.task.Clone()
	t.mu.Unlock()
	t.notify(snapshot)
}

func (t *tracker) start() {
	t.update(func(task *model.DownloadTask) {
		task.Status = model.TaskStatusDownloading
	})
}

func (t *tracker) progress(p Progress) {
	t.update(func(task *model.DownloadTask) {
		if task.Status.IsFinished() {
			return
		}
		if p.Total > 0 {
			percent := float64(p.Downloaded) / float64(p.Total) * 100
			task.Percent = int(percent)
			task.Progress = percent / 100.0
		}
		if p.Speed != "" {
			task.Speed = p.Speed
		}
		if p.ETA > 0 {
			task.ETASec = int(p.ETA.Seconds())
		}
		if p.Title != "" && task.Title == "" {
			task.Title = p.Title
		}
	})
}

func (t *tracker) complete(filename, title, format string) {
	t.update(func(task *model.DownloadTask) {
		task.Status = model.TaskStatusCompleted
		task.Progress, task.Percent = 1, 100
		task.ETASec = 0
		task.Filename, task.Title, task.Format = filename, title, format
		task.FinishedAt = time.Now()
	})
}

func (t *tracker) fail(err error) {
	t.update(func(task *model.DownloadTask) {
		task.Status = model.TaskStatusError
		task.LastError = err.Error()
		task.FinishedAt = time.Now()
	})
}

// FormatSpeed renders a transfer rate the way the player shows it
func FormatSpeed(bytes int64, elapsed time.Duration) string {
	if elapsed <= 0 || bytes <= 0 {
		return ""
	}
	bytesPerSecond := float64(bytes) / elapsed.Seconds()
	return fmt.Sprintf("%.1fMB/s", bytesPerSecond/1024/1024)
}
