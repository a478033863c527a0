// Package server is the HTTP front door: the player page, the playlist and
// download API, cached file streaming, reports, events and metrics.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/ytget/mucache/internal/config"
	"github.com/ytget/mucache/internal/download"
	"github.com/ytget/mucache/internal/model"
	"github.com/ytget/mucache/internal/report"
)

// ShutdownTimeout bounds the graceful shutdown of in-flight requests
const ShutdownTimeout = 10 * time.Second

type (
	resolver interface {
		Resolve(ctx context.Context, url string) (*download.Result, error)
		Remove(url string) error
	}

	playlist interface {
		Dir() string
		SortedListing() []model.PlaylistEntry
		Get(url string) (model.PlaylistEntry, bool)
	}

	redownloadQueue interface {
		Entries() []model.QueueItem
	}

	settings interface {
		GetQualityPreset() config.QualityPreset
		SetQualityPreset(preset config.QualityPreset) error
	}

	ffmpegProbe interface {
		Available() bool
	}

	playlistParser interface {
		ParsePlaylist(ctx context.Context, url string) (*model.Playlist, error)
	}

	reporter interface {
		Citations(videoURL, filename string, custom map[string]string) (*report.CitationResult, error)
		ListCitations() ([]report.CitationFile, error)
		Evidence(ctx context.Context, videoURL, filename string, caseInfo map[string]any) (*report.EvidenceResult, error)
		ListEvidenceReports() ([]report.EvidenceListing, error)
	}

	// Options wires the server. Events and Metrics are optional.
	Options struct {
		Addr     string
		Resolver resolver
		Playlist playlist
		Queue    redownloadQueue
		Settings settings
		FFmpeg   ffmpegProbe
		Parser   playlistParser
		Reports  reporter
		Events   http.Handler
		Metrics  http.Handler
		Logger   *slog.Logger
		// Status prints a console status line
		Status func(msg string)
	}

	// Server is a thin wrapper around the echo router
	Server struct {
		opts       Options
		ec         *echo.Echo
		validate   *validator.Validate
		logger     *slog.Logger
		status     func(string)
		shutdownCh chan struct{}
		once       sync.Once
	}
)

// New builds the router and registers every route
func New(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "server")

	ec := echo.New()
	ec.HidePort = true
	ec.HideBanner = true
	ec.OnAddRouteHandler = func(_ string, route echo.Route, _ echo.HandlerFunc, _ []echo.MiddlewareFunc) {
		logger.Debug("registered route", "method", route.Method, "path", route.Path)
	}

	s := &Server{
		opts:       opts,
		ec:         ec,
		validate:   newValidator(),
		logger:     logger,
		status:     opts.Status,
		shutdownCh: make(chan struct{}),
	}
	if s.status == nil {
		s.status = func(string) {}
	}

	ec.HTTPErrorHandler = s.errorHandler
	ec.Use(middleware.RequestID())
	ec.Use(middleware.Recover())
	ec.Use(s.requestLogger())

	s.routes()
	return s
}

func (s *Server) routes() {
	ec := s.ec

	ec.GET("/", s.player)
	ec.GET("/manual", s.manual)
	ec.GET("/heartbeat", s.heartbeat)

	ec.GET("/playlist", s.listPlaylist)
	ec.GET("/playlist_items", s.playlistItems)
	ec.GET("/redownload_queue", s.redownloadQueue)
	ec.GET("/download", s.download)
	ec.POST("/remove", s.remove)
	ec.GET("/filestats", s.fileStats)
	ec.GET("/mucache/*", s.serveFile)

	ec.GET("/quality_settings", s.getQuality)
	ec.POST("/quality_settings", s.setQuality)

	ec.POST("/citations", s.createCitations)
	ec.GET("/citations", s.listCitations)
	ec.POST("/evidence_reports", s.createEvidence)
	ec.GET("/evidence_reports", s.listEvidence)

	ec.POST("/shutdown", s.shutdown)

	if s.opts.Events != nil {
		ec.GET("/events", echo.WrapHandler(s.opts.Events))
	}
	if s.opts.Metrics != nil {
		ec.GET("/metrics", echo.WrapHandler(s.opts.Metrics))
	}
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.ec
}

// ShutdownRequested is closed when a client asks the server to stop
func (s *Server) ShutdownRequested() <-chan struct{} {
	return s.shutdownCh
}

// Run serves until ctx is cancelled or /shutdown is called, then drains
// in-flight requests
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		if err := s.ec.Start(s.opts.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()
	s.logger.Info("server listening", "addr", s.opts.Addr)

	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
	case <-s.shutdownCh:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	if err := s.ec.Shutdown(shutdownCtx); err != nil {
		return err
	}
	s.logger.Info("server stopped")
	return nil
}

func (s *Server) requestShutdown() {
	s.once.Do(func() { close(s.shutdownCh) })
}

// requestLogger logs each request with its id. Heartbeats are logged at
// debug level.
func (s *Server) requestLogger() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			level := slog.LevelInfo
			switch {
			case v.Status >= http.StatusInternalServerError:
				level = slog.LevelError
			case v.URI == "/heartbeat":
				level = slog.LevelDebug
			}
			attrs := []any{
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency", v.Latency,
				"request_id", v.RequestID,
			}
			if v.Error != nil {
				attrs = append(attrs, "error", v.Error)
			}
			s.logger.Log(c.Request().Context(), level, "request", attrs...)
			return nil
		},
	})
}

// errorHandler renders errors as {"error": message}
func (s *Server) errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	var msg any = http.StatusText(code)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		msg = he.Message
		if e, ok := msg.(error); ok {
			msg = e.Error()
		}
	} else {
		s.logger.Error("unhandled error", "error", err, "uri", c.Request().RequestURI)
	}

	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(code)
		return
	}
	_ = c.JSON(code, map[string]any{"error": msg})
}
