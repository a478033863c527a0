package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"

	"github.com/labstack/echo/v4"

	"github.com/ytget/mucache/internal/config"
	"github.com/ytget/mucache/internal/model"
	"github.com/ytget/mucache/internal/platform"
	"github.com/ytget/mucache/internal/store"
	"github.com/ytget/mucache/internal/ui"
)

// VideoContentType is sent for every cached file
const VideoContentType = "video/mp4"

const fileTimeLayout = "2006-01-02T15:04:05.000000"

func jsonError(code int, msg string) *echo.HTTPError {
	return echo.NewHTTPError(code, msg)
}

func (s *Server) player(c echo.Context) error {
	return c.HTMLBlob(http.StatusOK, ui.PlayerPage())
}

func (s *Server) manual(c echo.Context) error {
	page, err := ui.ManualPage(c.QueryParam("lang"))
	if err != nil {
		return err
	}
	return c.HTMLBlob(http.StatusOK, page)
}

func (s *Server) heartbeat(c echo.Context) error {
	return c.String(http.StatusOK, "alive")
}

func (s *Server) listPlaylist(c echo.Context) error {
	listing := s.opts.Playlist.SortedListing()
	if listing == nil {
		listing = []model.PlaylistEntry{}
	}
	return c.JSON(http.StatusOK, listing)
}

func (s *Server) redownloadQueue(c echo.Context) error {
	var entries []model.QueueItem
	if s.opts.Queue != nil {
		entries = s.opts.Queue.Entries()
	}
	if entries == nil {
		entries = []model.QueueItem{}
	}
	return c.JSON(http.StatusOK, entries)
}

func (s *Server) playlistItems(c echo.Context) error {
	raw := c.QueryParam("url")
	if raw == "" {
		return jsonError(http.StatusBadRequest, "No URL provided")
	}
	if s.opts.Parser == nil {
		return jsonError(http.StatusNotImplemented, "Playlist expansion is not available")
	}

	pl, err := s.opts.Parser.ParsePlaylist(c.Request().Context(), raw)
	if err != nil {
		s.logger.Warn("playlist expansion failed", "url", raw, "error", err)
		return jsonError(http.StatusBadRequest, err.Error())
	}
	pl.MarkCached(func(u string) (string, bool) {
		entry, ok := s.opts.Playlist.Get(u)
		return entry.Filename, ok
	})
	return c.JSON(http.StatusOK, pl)
}

func (s *Server) download(c echo.Context) error {
	raw := c.QueryParam("url")
	if raw == "" {
		return jsonError(http.StatusBadRequest, "No URL provided")
	}
	s.logger.Info("download request", "url", raw)

	// A started download runs to completion even if the player goes away
	ctx := context.WithoutCancel(c.Request().Context())
	res, err := s.opts.Resolver.Resolve(ctx, raw)
	if err != nil {
		s.logger.Error("download failed", "url", raw, "error", err)
		return c.JSON(http.StatusInternalServerError, downloadFailed)
	}
	return c.JSON(http.StatusOK, DownloadResponse{Filename: res.Filename, FromCache: res.FromCache, Success: true})
}

func (s *Server) remove(c echo.Context) error {
	raw := c.QueryParam("url")
	if raw == "" {
		return jsonError(http.StatusBadRequest, "No URL provided")
	}

	err := s.opts.Resolver.Remove(raw)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return c.JSON(http.StatusOK, map[string]bool{"success": false})
	case err != nil:
		return err
	}
	s.logger.Info("removed from playlist", "url", raw)
	return c.JSON(http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) fileStats(c echo.Context) error {
	name := c.QueryParam("filename")
	if name == "" {
		return jsonError(http.StatusBadRequest, "No filename provided")
	}
	name = filepath.Base(name)

	info, err := os.Stat(filepath.Join(s.opts.Playlist.Dir(), name))
	if err != nil || !info.Mode().IsRegular() {
		return jsonError(http.StatusNotFound, "File not found")
	}

	var enhanced any
	meta, ok, err := store.ReadSidecar(s.opts.Playlist.Dir(), name)
	if err != nil {
		s.logger.Debug("could not load metadata", "file", name, "error", err)
	} else if ok {
		enhanced = meta
	}

	return c.JSON(http.StatusOK, FileStatsResponse{
		Size:             info.Size(),
		Created:          info.ModTime().Format(fileTimeLayout),
		Modified:         info.ModTime().Format(fileTimeLayout),
		EnhancedMetadata: enhanced,
	})
}

func (s *Server) serveFile(c echo.Context) error {
	requested := c.Param("*")
	if unescaped, err := url.PathUnescape(requested); err == nil {
		requested = unescaped
	}

	dir := s.opts.Playlist.Dir()
	name, err := platform.FindCachedFile(dir, requested)
	if err != nil {
		s.logger.Warn("video file not found", "file", requested)
		return jsonError(http.StatusNotFound, "Video file not found")
	}
	if name != requested {
		s.logger.Info("serving similar file", "requested", requested, "file", name)
	}

	f, err := os.Open(filepath.Join(dir, name))
	if err != nil {
		return jsonError(http.StatusNotFound, "Video file not found")
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}

	c.Response().Header().Set(echo.HeaderContentType, VideoContentType)
	http.ServeContent(c.Response(), c.Request(), name, info.ModTime(), f)
	return nil
}

func (s *Server) getQuality(c echo.Context) error {
	options := make(map[string]string)
	for preset, desc := range config.QualityDescriptions() {
		options[string(preset)] = desc
	}
	return c.JSON(http.StatusOK, QualitySettingsResponse{
		QualityPreference: string(s.opts.Settings.GetQualityPreset()),
		FFmpegAvailable:   s.opts.FFmpeg != nil && s.opts.FFmpeg.Available(),
		Options:           options,
	})
}

func (s *Server) setQuality(c echo.Context) error {
	var req QualityRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"success": false, "error": "Invalid request body"})
	}
	if err := s.validate.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"success": false, "error": "Invalid quality preference"})
	}

	preset := config.QualityPreset(req.QualityPreference)
	if err := s.opts.Settings.SetQualityPreset(preset); err != nil {
		s.logger.Error("could not save quality preference", "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]any{"success": false, "error": "Failed to save preference"})
	}

	msg := fmt.Sprintf("Quality preference updated to: %s", preset)
	s.status(msg)
	s.logger.Info(msg)
	return c.JSON(http.StatusOK, map[string]any{"success": true, "quality_preference": preset})
}

func (s *Server) createCitations(c echo.Context) error {
	var req CitationRequest
	if err := s.bindAndValidate(c, &req); err != nil {
		return err
	}

	res, err := s.opts.Reports.Citations(req.VideoURL, req.VideoFilename, req.CustomInfo)
	if err != nil {
		s.logger.Error("citation generation failed", "file", req.VideoFilename, "error", err)
		return c.JSON(http.StatusOK, map[string]any{"success": false, "error": err.Error()})
	}
	return c.JSON(http.StatusOK, res)
}

func (s *Server) listCitations(c echo.Context) error {
	files, err := s.opts.Reports.ListCitations()
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, files)
}

func (s *Server) createEvidence(c echo.Context) error {
	var req EvidenceRequest
	if err := s.bindAndValidate(c, &req); err != nil {
		return err
	}

	res, err := s.opts.Reports.Evidence(c.Request().Context(), req.VideoURL, req.VideoFilename, req.CaseInfo)
	if err != nil {
		s.logger.Error("evidence report failed", "file", req.VideoFilename, "error", err)
		return c.JSON(http.StatusOK, map[string]any{"success": false, "error": err.Error()})
	}
	return c.JSON(http.StatusOK, res)
}

func (s *Server) listEvidence(c echo.Context) error {
	reports, err := s.opts.Reports.ListEvidenceReports()
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, reports)
}

func (s *Server) shutdown(c echo.Context) error {
	s.logger.Info("shutdown requested")
	s.status("Shutting down application...")
	err := c.String(http.StatusOK, "Shutting down...")
	s.requestShutdown()
	return err
}

func (s *Server) bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return jsonError(http.StatusBadRequest, fmt.Sprintf("Invalid body: %s", err.Error()))
	}
	if err := s.validate.Struct(req); err != nil {
		return jsonError(http.StatusBadRequest, fmt.Sprintf("Invalid body: %s", err.Error()))
	}
	return nil
}
