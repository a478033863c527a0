package download

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/ytget/mucache/internal/config"
	"github.com/ytget/mucache/internal/model"
)

type fakeFetcher struct {
	mu    sync.Mutex
	calls int
	fetch func(ctx context.Context, url string) (*Fetched, error)
}

func (f *fakeFetcher) Fetch(ctx context.Context, url string) (*Fetched, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	return f.fetch(ctx, url)
}

func (f *fakeFetcher) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// writingFetcher writes name into dir and reports it
func writingFetcher(dir, name, title string) *fakeFetcher {
	return &fakeFetcher{fetch: func(ctx context.Context, url string) (*Fetched, error) {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("video"), 0644); err != nil {
			return nil, err
		}
		return &Fetched{Filename: name, Title: title}, nil
	}}
}

type recordingNotifier struct {
	mu    sync.Mutex
	tasks []*model.DownloadTask
}

func (n *recordingNotifier) Notify(task *model.DownloadTask) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.tasks = append(n.tasks, task.Clone())
}

func (n *recordingNotifier) Statuses() []model.TaskStatus {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]model.TaskStatus, 0, len(n.tasks))
	for _, t := range n.tasks {
		out = append(out, t.Status)
	}
	return out
}

type countingRecorder struct {
	mu     sync.Mutex
	hits   int
	misses int
	ok     int
	failed int
}

func (c *countingRecorder) CacheHit(string) {
	c.mu.Lock()
	c.hits++
	c.mu.Unlock()
}

func (c *countingRecorder) CacheMiss(string) {
	c.mu.Lock()
	c.misses++
	c.mu.Unlock()
}

func (c *countingRecorder) DownloadFinished(_ string, ok bool, _ time.Duration) {
	c.mu.Lock()
	if ok {
		c.ok++
	} else {
		c.failed++
	}
	c.mu.Unlock()
}

// fakeExtractor fails every format listed in failing and writes name on success
type fakeExtractor struct {
	dir      string
	name     string
	title    string
	probeErr error
	failing  map[string]bool
	reported string

	mu      sync.Mutex
	formats []string
	merges  []string
}

func (f *fakeExtractor) ProbeTitle(ctx context.Context, url string) (string, error) {
	if f.probeErr != nil {
		return "", f.probeErr
	}
	return f.title, nil
}

func (f *fakeExtractor) Download(ctx context.Context, req ExtractRequest) (string, error) {
	f.mu.Lock()
	f.formats = append(f.formats, req.Format)
	f.merges = append(f.merges, req.MergeFormat)
	f.mu.Unlock()

	if f.failing[req.Format] {
		return "", fmt.Errorf("format %s not available", req.Format)
	}
	if req.Progress != nil {
		req.Progress(Progress{Downloaded: 50, Total: 100, Title: f.title})
	}
	if f.name != "" {
		if err := os.WriteFile(filepath.Join(req.OutputDir, f.name), []byte("video"), 0644); err != nil {
			return "", err
		}
	}
	return f.reported, nil
}

func (f *fakeExtractor) Formats() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.formats...)
}

type staticQuality config.QualityPreset

func (q staticQuality) GetQualityPreset() config.QualityPreset { return config.QualityPreset(q) }

type staticFFmpeg bool

func (f staticFFmpeg) Available() bool { return bool(f) }

// fakeGetter serves pages by URL and writes downloads from a payload map
type fakeGetter struct {
	mu        sync.Mutex
	pages     map[string][]byte
	payloads  map[string][]byte
	requested []string
}

func (g *fakeGetter) GetBytes(ctx context.Context, url string, timeout time.Duration) ([]byte, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.requested = append(g.requested, url)
	page, ok := g.pages[url]
	if !ok {
		return nil, fmt.Errorf("GET %s: unexpected status 404", url)
	}
	return page, nil
}

func (g *fakeGetter) DownloadToFile(ctx context.Context, url, dst string, timeout time.Duration, chunkSize int) (int64, error) {
	g.mu.Lock()
	g.requested = append(g.requested, url)
	data, ok := g.payloads[url]
	g.mu.Unlock()
	if !ok {
		return 0, fmt.Errorf("GET %s: unexpected status 404", url)
	}
	if err := os.WriteFile(dst, data, 0644); err != nil {
		return 0, err
	}
	return int64(len(data)), nil
}

func (g *fakeGetter) Requested() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.requested...)
}
