// Package doctor runs the startup diagnostics behind mucache-doctor.
package doctor

import (
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"

	"github.com/fatih/color"

	"github.com/ytget/mucache/internal/config"
	"github.com/ytget/mucache/internal/ffmpeg"
	"github.com/ytget/mucache/internal/platform"
	"github.com/ytget/mucache/internal/store"
)

// YTDLPCommand is the extractor binary the generic fetcher shells out to
const YTDLPCommand = "yt-dlp"

// Severity of a finding
type Severity int

const (
	SeverityOK Severity = iota
	SeverityWarn
	SeverityFail
)

// Finding is the outcome of one check
type Finding struct {
	Check    string
	Severity Severity
	Detail   string
}

// Doctor runs checks against a resolved configuration
type Doctor struct {
	cfg      *config.Config
	lookPath func(string) (string, bool)
	listen   func(network, addr string) (net.Listener, error)
}

// New returns a Doctor that inspects the real environment
func New(cfg *config.Config) *Doctor {
	return &Doctor{cfg: cfg, lookPath: ffmpeg.LookPath, listen: net.Listen}
}

// Run executes every check in order
func (d *Doctor) Run() []Finding {
	var findings []Finding
	findings = append(findings, d.checkBinaries()...)
	cacheOK := d.checkCacheDir()
	findings = append(findings, cacheOK)
	findings = append(findings, d.checkPort())
	if cacheOK.Severity != SeverityFail {
		findings = append(findings, d.checkPlaylist()...)
	}
	return findings
}

func (d *Doctor) checkBinaries() []Finding {
	var findings []Finding
	if path, ok := d.lookPath(YTDLPCommand); ok {
		findings = append(findings, Finding{Check: YTDLPCommand, Detail: path})
	} else {
		findings = append(findings, Finding{Check: YTDLPCommand, Severity: SeverityFail, Detail: "not found on PATH"})
	}

	// ffmpeg only gates the high quality preset and the duration probe
	for _, name := range []string{ffmpeg.FFmpegCommand, ffmpeg.FFprobeCommand} {
		if path, ok := d.lookPath(name); ok {
			findings = append(findings, Finding{Check: name, Detail: path})
		} else {
			findings = append(findings, Finding{Check: name, Severity: SeverityWarn, Detail: "not found on PATH"})
		}
	}
	return findings
}

func (d *Doctor) checkCacheDir() Finding {
	if err := platform.EnsureWritableDirectory(d.cfg.CacheDir); err != nil {
		return Finding{Check: "cache directory", Severity: SeverityFail, Detail: err.Error()}
	}
	return Finding{Check: "cache directory", Detail: d.cfg.CacheDir + " is writable"}
}

func (d *Doctor) checkPort() Finding {
	ln, err := d.listen("tcp", d.cfg.Addr())
	if err != nil {
		return Finding{Check: "port", Severity: SeverityFail, Detail: fmt.Sprintf("%s is already in use", d.cfg.Addr())}
	}
	_ = ln.Close()
	return Finding{Check: "port", Detail: d.cfg.Addr() + " is available"}
}

func (d *Doctor) checkPlaylist() []Finding {
	path := filepath.Join(d.cfg.CacheDir, store.PlaylistFileName)
	raw := map[string]map[string]string{}
	if err := platform.ReadJSON(path, &raw); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []Finding{{Check: "playlist", Detail: "no playlist yet"}}
		}
		return []Finding{{Check: "playlist", Severity: SeverityFail, Detail: err.Error()}}
	}

	findings := []Finding{{Check: "playlist", Detail: fmt.Sprintf("%d entries", len(raw))}}

	// Load does not write, so this is read-only against the cache
	stale := store.NewPlaylist(d.cfg.CacheDir, nil).Stale()
	if len(stale) > 0 {
		findings = append(findings, Finding{
			Check:    "stale entries",
			Severity: SeverityWarn,
			Detail:   fmt.Sprintf("%d entries point at missing files", len(stale)),
		})
	}
	return findings
}

// Failed reports whether any finding is fatal
func Failed(findings []Finding) bool {
	for _, f := range findings {
		if f.Severity == SeverityFail {
			return true
		}
	}
	return false
}

// Print renders findings one per line with a colored mark
func Print(w io.Writer, findings []Finding) {
	ok := color.New(color.FgGreen).SprintFunc()
	warn := color.New(color.FgYellow).SprintFunc()
	fail := color.New(color.FgRed).SprintFunc()

	for _, f := range findings {
		var mark string
		switch f.Severity {
		case SeverityOK:
			mark = ok("✓")
		case SeverityWarn:
			mark = warn("!")
		default:
			mark = fail("✗")
		}
		fmt.Fprintf(w, "%s %s: %s\n", mark, f.Check, f.Detail)
	}
}
