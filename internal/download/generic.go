package download

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/lrstanley/go-ytdlp"

	"github.com/ytget/mucache/internal/config"
	"github.com/ytget/mucache/internal/platform"
)

// Generic fetch constants
const (
	OutputTemplate   = "%(title)s.%(ext)s"
	UnknownTitle     = "unknown"
	RecentFileWindow = 2 * time.Minute
	progressInterval = 500 * time.Millisecond
)

// YTDLPExtractor runs the yt-dlp binary through go-ytdlp
type YTDLPExtractor struct{}

// ProbeTitle asks yt-dlp for metadata only
func (YTDLPExtractor) ProbeTitle(ctx context.Context, url string) (string, error) {
	result, err := ytdlp.New().
		SkipDownload().
		PrintJSON().
		NoPlaylist().
		NoWarnings().
		Run(ctx, url)
	if err != nil {
		return "", err
	}

	info, err := result.GetExtractedInfo()
	if err != nil {
		return "", err
	}
	if len(info) == 0 || info[0].Title == nil || *info[0].Title == "" {
		return "", errors.New("yt-dlp reported no title")
	}
	return *info[0].Title, nil
}

// Download runs one yt-dlp download with a single format selector
func (YTDLPExtractor) Download(ctx context.Context, req ExtractRequest) (string, error) {
	dl := ytdlp.New().
		Format(req.Format).
		Output(filepath.Join(req.OutputDir, OutputTemplate)).
		NoPlaylist().
		NoWarnings().
		PrintJSON()

	if req.MergeFormat != "" {
		dl.MergeOutputFormat(req.MergeFormat)
	}

	if req.Progress != nil {
		dl.ProgressFunc(progressInterval, func(update ytdlp.ProgressUpdate) {
			p := Progress{
				Downloaded: int64(update.DownloadedBytes),
				Total:      int64(update.TotalBytes),
				ETA:        update.ETA(),
			}
			if !update.Started.IsZero() {
				p.Speed = FormatSpeed(p.Downloaded, time.Since(update.Started))
			}
			if update.Info != nil && update.Info.Title != nil {
				p.Title = *update.Info.Title
			}
			req.Progress(p)
		})
	}

	result, err := dl.Run(ctx, req.URL)
	if err != nil {
		return "", err
	}

	info, err := result.GetExtractedInfo()
	if err == nil && len(info) > 0 && info[0].Filename != nil {
		return *info[0].Filename, nil
	}
	return "", nil
}

// FFmpegProbe reports whether stream merging is possible
type FFmpegProbe interface {
	Available() bool
}

// QualitySource returns the current quality preference
type QualitySource interface {
	GetQualityPreset() config.QualityPreset
}

// GenericFetcher downloads through yt-dlp, walking the format chain for the
// configured quality until one selector succeeds
type GenericFetcher struct {
	dir       string
	extractor Extractor
	quality   QualitySource
	ffmpeg    FFmpegProbe
	logger    *slog.Logger
	now       func() time.Time
}

// NewGenericFetcher creates a GenericFetcher writing into dir
func NewGenericFetcher(dir string, extractor Extractor, quality QualitySource, ffmpeg FFmpegProbe, logger *slog.Logger) *GenericFetcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &GenericFetcher{
		dir:       dir,
		extractor: extractor,
		quality:   quality,
		ffmpeg:    ffmpeg,
		logger:    logger.With("component", "generic"),
		now:       time.Now,
	}
}

// Fetch implements Fetcher
func (g *GenericFetcher) Fetch(ctx context.Context, url string) (*Fetched, error) {
	title, err := g.extractor.ProbeTitle(ctx, url)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fetchError(SiteGeneric, StageMetadata, url, ctx.Err())
		}
		g.logger.Error("error getting video info", "url", url, "error", err)
		title = UnknownTitle
	}

	before, err := platform.ListFileNames(g.dir)
	if err != nil {
		return nil, fetchError(SiteGeneric, StageList, url, err)
	}

	ffmpegAvailable := g.ffmpeg != nil && g.ffmpeg.Available()
	preset := config.DefaultQualityPreset
	if g.quality != nil {
		preset = g.quality.GetQualityPreset()
	}
	chain := FormatChain(preset, ffmpegAvailable)
	if len(chain) == 0 {
		chain = FallbackFormats()
	}

	merge := ""
	if ffmpegAvailable {
		merge = MergeOutputFormat
	}

	g.logger.Debug("format selection", "quality", preset, "ffmpeg", ffmpegAvailable, "chain", len(chain))

	var reported, used string
	var lastErr error
	for _, format := range chain {
		if ctx.Err() != nil {
			return nil, fetchError(SiteGeneric, StageFetch, url, ctx.Err())
		}

		g.logger.Debug("trying format", "format", format)
		path, err := g.extractor.Download(ctx, ExtractRequest{
			URL:         url,
			OutputDir:   g.dir,
			Format:      format,
			MergeFormat: merge,
			Progress:    progressFrom(ctx),
		})
		if err != nil {
			g.logger.Debug("format failed", "format", format, "error", err)
			lastErr = err
			continue
		}
		reported, used = path, format
		break
	}

	if used == "" {
		return nil, fetchError(SiteGeneric, StageFetch, url, fmt.Errorf("all %d format options failed: %w", len(chain), lastErr))
	}

	filename, err := g.locate(before, reported)
	if err != nil {
		return nil, fetchError(SiteGeneric, StageLocate, url, err)
	}

	return &Fetched{Filename: filename, Title: title, Format: used}, nil
}

// locate finds the file yt-dlp produced: the reported path when it exists,
// else the first new name in the directory, else the newest recent file
func (g *GenericFetcher) locate(before map[string]struct{}, reported string) (string, error) {
	if reported != "" {
		name := filepath.Base(reported)
		if platform.FileExists(filepath.Join(g.dir, name)) {
			return name, nil
		}
		g.logger.Debug("reported file missing, scanning directory", "file", name)
	}

	after, err := platform.ListFileNames(g.dir)
	if err != nil {
		return "", err
	}
	if added := platform.NewFileNames(before, after); len(added) > 0 {
		return added[0], nil
	}

	name, err := platform.NewestFileSince(g.dir, g.now().Add(-RecentFileWindow))
	if err != nil {
		return "", fmt.Errorf("downloaded file not found: %w", err)
	}
	g.logger.Debug("using recent file", "file", name)
	return name, nil
}
