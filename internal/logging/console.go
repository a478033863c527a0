package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/fatih/color"
)

// ConsoleHandler renders records as single colored lines:
//
//	[component] (!) message key=value
type ConsoleHandler struct {
	mu     *sync.Mutex
	w      io.Writer
	level  slog.Leveler
	attrs  []slog.Attr
	prefix string
}

// NewConsoleHandler returns a handler writing records at or above level to w
func NewConsoleHandler(w io.Writer, level slog.Leveler) *ConsoleHandler {
	return &ConsoleHandler{mu: &sync.Mutex{}, w: w, level: level}
}

func levelStyle(l slog.Level) (string, *color.Color) {
	switch {
	case l >= slog.LevelError:
		return "!!", color.New(color.FgHiRed, color.Bold)
	case l >= slog.LevelWarn:
		return "!", color.New(color.FgYellow)
	case l >= slog.LevelInfo:
		return "I", color.New(color.FgWhite)
	default:
		return "D", color.New(color.FgWhite, color.Italic)
	}
}

func (h *ConsoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *ConsoleHandler) Handle(_ context.Context, r slog.Record) error {
	symbol, c := levelStyle(r.Level)

	var b strings.Builder
	component := ""
	write := func(a slog.Attr) {
		if a.Key == "component" && h.prefix == "" {
			component = a.Value.String()
			return
		}
		fmt.Fprintf(&b, " %s%s=%v", h.prefix, a.Key, a.Value.Resolve())
	}
	for _, a := range h.attrs {
		write(a)
	}
	r.Attrs(func(a slog.Attr) bool {
		write(a)
		return true
	})

	line := fmt.Sprintf("(%s) %s%s", symbol, r.Message, b.String())
	if component != "" {
		line = "[" + component + "] " + line
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := c.Fprintln(h.w, line)
	return err
}

func (h *ConsoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = append(append([]slog.Attr{}, h.attrs...), attrs...)
	return &clone
}

func (h *ConsoleHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.prefix = h.prefix + name + "."
	return &clone
}
