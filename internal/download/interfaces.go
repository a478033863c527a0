package download

import (
	"context"
	"time"

	"github.com/ytget/mucache/internal/model"
)

// Fetched describes a file a Fetcher placed in the cache directory
type Fetched struct {
	// Filename is relative to the cache directory
	Filename string
	Title    string
	// Metadata is written as a sidecar when non-empty
	Metadata model.Metadata
	// Format is the yt-dlp selector that succeeded, if any
	Format string
}

// Fetcher retrieves one URL into the cache directory
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*Fetched, error)
}

// ExtractRequest is a single yt-dlp invocation
type ExtractRequest struct {
	URL         string
	OutputDir   string
	Format      string
	MergeFormat string
	Progress    ProgressFunc
}

// Extractor wraps the yt-dlp binary
type Extractor interface {
	// ProbeTitle returns the title without downloading anything
	ProbeTitle(ctx context.Context, url string) (string, error)
	// Download runs yt-dlp and returns the output path it reported, which
	// may be empty
	Download(ctx context.Context, req ExtractRequest) (string, error)
}

// Progress is a snapshot of a running transfer
type Progress struct {
	Downloaded int64
	Total      int64
	Speed      string
	ETA        time.Duration
	Title      string
}

// ProgressFunc receives progress snapshots
type ProgressFunc func(Progress)

// Notifier receives task updates. Implementations must not retain the task.
type Notifier interface {
	Notify(task *model.DownloadTask)
}

// Index is the playlist index the Resolver reads and writes
type Index interface {
	Dir() string
	Get(url string) (model.PlaylistEntry, bool)
	Add(url, title, filename string)
	Remove(url string) error
}

// RedownloadQueue records stale entries
type RedownloadQueue interface {
	Enqueue(url, title, originalFilename string)
	Remove(url string) bool
	Contains(url string) bool
}

// Recorder receives resolve outcomes for metrics
type Recorder interface {
	CacheHit(site string)
	CacheMiss(site string)
	DownloadFinished(site string, ok bool, elapsed time.Duration)
}

type progressKey struct{}

// WithProgress attaches fn to ctx so fetchers can report transfer progress
func WithProgress(ctx context.Context, fn ProgressFunc) context.Context {
	return context.WithValue(ctx, progressKey{}, fn)
}

// progressFrom returns the ProgressFunc attached to ctx, or a no-op
func progressFrom(ctx context.Context) ProgressFunc {
	if fn, ok := ctx.Value(progressKey{}).(ProgressFunc); ok && fn != nil {
		return fn
	}
	return func(Progress) {}
}
