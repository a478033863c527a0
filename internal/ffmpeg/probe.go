package ffmpeg

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Executable and I/O constants
const (
	FFmpegCommand       = "ffmpeg"
	FFprobeCommand      = "ffprobe"
	FFprobeLogLevel     = "error"
	FFprobeShowEntries  = "format=duration"
	FFprobeOutputFormat = "csv=p=0"
	VersionFlag         = "-version"
	probeTimeout        = 5 * time.Second
)

// ErrNotInstalled is returned when the binary cannot be found on PATH
var ErrNotInstalled = errors.New("ffmpeg is not installed")

// Runner executes a command and returns its standard output
type Runner func(ctx context.Context, name string, args ...string) ([]byte, error)

func execRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

// Probe caches whether ffmpeg is usable. The check runs once.
type Probe struct {
	run Runner

	once      sync.Once
	available bool
	version   string
}

// NewProbe returns a Probe that shells out to the real binaries
func NewProbe() *Probe {
	return &Probe{run: execRunner}
}

// NewProbeWithRunner returns a Probe backed by run, for tests
func NewProbeWithRunner(run Runner) *Probe {
	return &Probe{run: run}
}

// Available reports whether `ffmpeg -version` succeeds
func (p *Probe) Available() bool {
	p.once.Do(p.detect)
	return p.available
}

// Version returns the first line of `ffmpeg -version`, or "" when unavailable
func (p *Probe) Version() string {
	p.once.Do(p.detect)
	return p.version
}

func (p *Probe) detect() {
	ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
	defer cancel()

	out, err := p.run(ctx, FFmpegCommand, VersionFlag)
	if err != nil {
		return
	}
	p.available = true

	sc := bufio.NewScanner(bytes.NewReader(out))
	if sc.Scan() {
		p.version = strings.TrimSpace(sc.Text())
	}
}

// Duration returns the media duration of path in seconds using ffprobe
func (p *Probe) Duration(ctx context.Context, path string) (float64, error) {
	out, err := p.run(ctx, FFprobeCommand, "-v", FFprobeLogLevel, "-show_entries", FFprobeShowEntries, "-of", FFprobeOutputFormat, path)
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return 0, ErrNotInstalled
		}
		return 0, fmt.Errorf("failed to run ffprobe: %w", err)
	}

	durationStr := strings.TrimSpace(string(out))
	duration, err := strconv.ParseFloat(durationStr, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse duration: %w", err)
	}
	return duration, nil
}

// LookPath reports whether name resolves on PATH
func LookPath(name string) (string, bool) {
	path, err := exec.LookPath(name)
	return path, err == nil
}
