package report

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/ytget/mucache/internal/model"
	"github.com/ytget/mucache/internal/store"
)

// Output directories under the cache directory
const (
	CitationsDirName = "citations"
	EvidenceDirName  = "evidence_reports"
	fileStampLayout  = "20060102_150405"
)

// DurationProbe measures media duration in seconds
type DurationProbe interface {
	Duration(ctx context.Context, path string) (float64, error)
}

// Generator writes citation and evidence documents
type Generator struct {
	cacheDir string
	probe    DurationProbe
	logger   *slog.Logger
	now      func() time.Time
}

// NewGenerator creates a Generator for cacheDir. probe may be nil.
func NewGenerator(cacheDir string, probe DurationProbe, logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{
		cacheDir: cacheDir,
		probe:    probe,
		logger:   logger.With("component", "report"),
		now:      time.Now,
	}
}

// loadMetadata returns the sidecar of filename, or empty metadata
func (g *Generator) loadMetadata(filename string) model.Metadata {
	meta, ok, err := store.ReadSidecar(g.cacheDir, filename)
	if err != nil {
		g.logger.Warn("could not read metadata", "file", filename, "error", err)
	}
	if !ok || meta == nil {
		return model.Metadata{}
	}
	return meta
}

func (g *Generator) citationsDir() string {
	return filepath.Join(g.cacheDir, CitationsDirName)
}

func (g *Generator) evidenceDir() string {
	return filepath.Join(g.cacheDir, EvidenceDirName)
}

func valueOr(meta model.Metadata, key, fallback string) string {
	if v := meta.String(key); v != "" {
		return v
	}
	return fallback
}
