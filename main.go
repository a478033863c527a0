package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"

	"github.com/ytget/mucache/internal/config"
	"github.com/ytget/mucache/internal/download"
	"github.com/ytget/mucache/internal/events"
	"github.com/ytget/mucache/internal/ffmpeg"
	"github.com/ytget/mucache/internal/httpx"
	"github.com/ytget/mucache/internal/logging"
	"github.com/ytget/mucache/internal/metrics"
	"github.com/ytget/mucache/internal/platform"
	"github.com/ytget/mucache/internal/report"
	"github.com/ytget/mucache/internal/server"
	"github.com/ytget/mucache/internal/store"
	"github.com/ytget/mucache/internal/watch"
)

// Version is set during build via -ldflags "-X main.version=X.Y.Z"
var version = "dev"

const (
	AppName = "Mucache Player"

	// BrowserDelay gives the listener time to come up before the page opens
	BrowserDelay = time.Second
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file (default $"+config.ConfigPathEnv+")")
	showVersion := flag.Bool("version", false, "print the version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("%s v%s\n", AppName, version)
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		logging.Fatal(nil, "configuration error", err)
	}
	if err := platform.EnsureWritableDirectory(cfg.CacheDir); err != nil {
		logging.Fatal(nil, "cache directory error", err)
	}

	logger, logFile, err := logging.New(cfg)
	if err != nil {
		logging.Fatal(nil, "logging setup failed", err)
	}
	defer logFile.Close()
	slog.SetDefault(logger)

	if err := checkPortFree(cfg.Addr()); err != nil {
		logging.Fatal(logger, fmt.Sprintf("port %d is already in use", cfg.Port), err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logging.Fatal(logger, "server error", err)
	}
	logging.Status("Mucache Player stopped")
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	logger.Info("starting", "version", version, "cache_dir", cfg.CacheDir, "addr", cfg.Addr())

	playlist := store.NewPlaylist(cfg.CacheDir, logger)
	if fixed := playlist.Repair(); fixed > 0 {
		logging.Status(fmt.Sprintf("Relinked %d playlist entries", fixed))
	}
	for _, e := range playlist.Stale() {
		logger.Warn("playlist entry has no file", "title", e.Title, "file", e.Filename)
	}

	queue := store.NewQueue(cfg.CacheDir, logger)
	settings := config.NewSettings(cfg.SettingsPath(), logger)

	probe := ffmpeg.NewProbe()
	if !probe.Available() {
		color.Yellow("FFmpeg not found: the high quality preset falls back to medium")
	}

	client := httpx.New(httpx.Options{
		RequestsPerSecond: cfg.HTTP.RequestsPerSecond,
		Burst:             cfg.HTTP.Burst,
		Retries:           cfg.HTTP.Retries,
		UserAgent:         cfg.HTTP.UserAgent,
	}, logger)

	hub := events.NewHub(logger)
	recorder := metrics.New()

	resolver := download.NewResolver(download.Options{
		Index: playlist,
		Queue: queue,
		Fetchers: map[download.Site]download.Fetcher{
			download.SiteGeneric: download.NewGenericFetcher(cfg.CacheDir, download.YTDLPExtractor{}, settings, probe, logger),
			download.SiteTwitter: download.NewTwitterFetcher(cfg.CacheDir, client, logger),
			download.SiteArchive: download.NewArchiveFetcher(cfg.CacheDir, client, logger),
		},
		Notifier: hub,
		Recorder: recorder,
		Logger:   logger,
		Status:   logging.Status,
	})

	srv := server.New(server.Options{
		Addr:     cfg.Addr(),
		Resolver: resolver,
		Playlist: playlist,
		Queue:    queue,
		Settings: settings,
		FFmpeg:   probe,
		Parser:   platform.NewYTDLPParserService(),
		Reports:  report.NewGenerator(cfg.CacheDir, probe, logger),
		Events:   hub,
		Metrics:  recorder.Handler(),
		Logger:   logger,
		Status:   logging.Status,
	})

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go hub.Run(ctx)

	if cfg.Watch {
		w := watch.New(cfg.CacheDir, playlist, queue, logger)
		go func() {
			if err := w.Run(ctx); err != nil {
				logger.Warn("cache watcher disabled", "error", err)
			}
		}()
	}

	if cfg.OpenBrowser {
		go func() {
			select {
			case <-time.After(BrowserDelay):
			case <-ctx.Done():
				return
			}
			if err := platform.OpenBrowser(cfg.BaseURL()); err != nil {
				logger.Warn("could not open browser", "url", cfg.BaseURL(), "error", err)
			}
		}()
	}

	logging.Status(fmt.Sprintf("%s v%s running at %s", AppName, version, cfg.BaseURL()))
	return srv.Run(ctx)
}

func checkPortFree(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return ln.Close()
}
