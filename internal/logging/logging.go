// Package logging builds the process logger: a text log file under the log
// directory plus colored console output.
package logging

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fatih/color"

	"github.com/ytget/mucache/internal/config"
	"github.com/ytget/mucache/internal/platform"
)

// LogFileName is the file written inside the configured log directory
const LogFileName = "app.log"

var statusColor = color.New(color.FgHiGreen)

// New returns a logger writing to <logdir>/app.log and the console. The file
// records Info and up, or Debug and up in debug mode. The console only shows
// errors unless debug is on. Close the returned io.Closer on shutdown.
func New(cfg *config.Config) (*slog.Logger, io.Closer, error) {
	fileLevel, consoleLevel := slog.LevelInfo, slog.LevelError
	if cfg.Debug {
		fileLevel, consoleLevel = slog.LevelDebug, slog.LevelInfo
	}

	if err := platform.CreateDirectoryIfNotExists(cfg.LogDir); err != nil {
		return nil, nil, fmt.Errorf("failed to create log directory %s: %w", cfg.LogDir, err)
	}
	f, err := os.OpenFile(filepath.Join(cfg.LogDir, LogFileName), os.O_CREATE|os.O_WRONLY|os.O_APPEND, platform.DefaultFilePermissions)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}

	handler := Fanout(
		slog.NewTextHandler(f, &slog.HandlerOptions{Level: fileLevel}),
		NewConsoleHandler(os.Stderr, consoleLevel),
	)
	return slog.New(handler), f, nil
}

// Status prints a green console status line
func Status(msg string) {
	statusColor.Fprintln(color.Output, msg)
}

// Fatal prints err in red and exits with status 1
func Fatal(logger *slog.Logger, msg string, err error) {
	if logger != nil {
		logger.Error(msg, "error", err)
	}
	color.New(color.FgHiRed, color.Bold).Fprintf(color.Error, "%s: %v\n", msg, err)
	os.Exit(1)
}

type fanout []slog.Handler

// Fanout returns a handler that forwards records to every handler that is
// enabled for their level
func Fanout(handlers ...slog.Handler) slog.Handler {
	return fanout(handlers)
}

func (f fanout) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range f {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (f fanout) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, h := range f {
		if h.Enabled(ctx, r.Level) {
			if err := h.Handle(ctx, r.Clone()); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

func (f fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithAttrs(attrs)
	}
	return out
}

func (f fanout) WithGroup(name string) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithGroup(name)
	}
	return out
}
