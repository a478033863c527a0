package store

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/ytget/mucache/internal/model"
	"github.com/ytget/mucache/internal/platform"
)

// PlaylistFileName is the playlist index document
const PlaylistFileName = "playlist.json"

// ErrNotFound is returned when a URL is not in the index
var ErrNotFound = errors.New("entry not found")

type record struct {
	Title    string `json:"title"`
	Filename string `json:"filename"`
}

// Playlist is the URL to {title, filename} index persisted as playlist.json.
// It is the only writer of that file; every mutation holds the lock across
// the map change and the disk write.
type Playlist struct {
	dir     string
	path    string
	mu      sync.RWMutex
	entries map[string]record
	logger  *slog.Logger
}

// NewPlaylist creates a store rooted at the cache directory and loads it
func NewPlaylist(cacheDir string, logger *slog.Logger) *Playlist {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Playlist{
		dir:     cacheDir,
		path:    filepath.Join(cacheDir, PlaylistFileName),
		entries: map[string]record{},
		logger:  logger.With("component", "playlist"),
	}
	p.Load()
	return p
}

// Dir returns the cache directory the store indexes
func (p *Playlist) Dir() string {
	return p.dir
}

// Load reads playlist.json. A missing or corrupt file leaves an empty index.
func (p *Playlist) Load() {
	entries := map[string]record{}
	if err := platform.ReadJSON(p.path, &entries); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			p.logger.Error("could not load playlist, starting empty", "path", p.path, "error", err)
		}
		entries = map[string]record{}
	}
	if entries == nil {
		entries = map[string]record{}
	}

	p.mu.Lock()
	p.entries = entries
	p.mu.Unlock()
}

// Reload discards in-memory state and reads the file again
func (p *Playlist) Reload() {
	p.Load()
}

// Get returns the entry for url
func (p *Playlist) Get(url string) (model.PlaylistEntry, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	r, ok := p.entries[url]
	if !ok {
		return model.PlaylistEntry{}, false
	}
	return model.PlaylistEntry{URL: url, Title: r.Title, Filename: r.Filename}, true
}

// Len returns the number of indexed entries
func (p *Playlist) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.entries)
}

// Add upserts an entry and persists the index
func (p *Playlist) Add(url, title, filename string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.entries[url] = record{Title: title, Filename: filename}
	p.persistLocked()
}

// Remove deletes the entry for url and persists, then deletes its backing file
// under both the recorded and the sanitized name. A missing file is not an
// error. ErrNotFound is returned only for unknown URLs.
func (p *Playlist) Remove(url string) error {
	p.mu.Lock()
	r, ok := p.entries[url]
	if !ok {
		p.mu.Unlock()
		return ErrNotFound
	}
	delete(p.entries, url)
	p.persistLocked()
	p.mu.Unlock()

	removed := false
	for _, name := range uniqueNames(r.Filename, platform.Sanitize(r.Filename), platform.SanitizeKeepExt(r.Filename)) {
		path := filepath.Join(p.dir, name)
		if !platform.FileExists(path) {
			continue
		}
		if err := os.Remove(path); err != nil {
			p.logger.Error("could not delete video file", "file", name, "error", err)
			continue
		}
		removed = true
		p.logger.Info("deleted video file", "file", name)
		_ = os.Remove(SidecarPath(p.dir, name))
	}

	if !removed {
		p.logger.Warn("video file not found while removing entry", "url", url, "file", r.Filename)
	}
	return nil
}

// Repair relinks entries whose file is missing, first to the sanitized name
// and then to a fuzzy match among existing video files. It returns the number
// of entries relinked.
func (p *Playlist) Repair() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	fixed := 0
	for url, r := range p.entries {
		if platform.FileExists(filepath.Join(p.dir, r.Filename)) {
			continue
		}

		replacement := ""
		for _, name := range uniqueNames(platform.SanitizeKeepExt(r.Filename), platform.Sanitize(r.Filename)) {
			if name != r.Filename && platform.FileExists(filepath.Join(p.dir, name)) {
				replacement = name
				break
			}
		}
		if replacement == "" {
			if match, ok := platform.FuzzyMatch(p.dir, r.Filename); ok {
				replacement = match
			}
		}

		if replacement == "" {
			p.logger.Warn("no file found for playlist entry", "title", r.Title, "file", r.Filename)
			continue
		}

		p.logger.Info("relinked playlist entry", "title", r.Title, "from", r.Filename, "to", replacement)
		r.Filename = replacement
		p.entries[url] = r
		fixed++
	}

	if fixed > 0 {
		p.persistLocked()
	}
	return fixed
}

// SortedListing returns every entry ordered by case-insensitive title
func (p *Playlist) SortedListing() []model.PlaylistEntry {
	p.mu.RLock()
	out := make([]model.PlaylistEntry, 0, len(p.entries))
	for url, r := range p.entries {
		out = append(out, model.PlaylistEntry{URL: url, Title: r.Title, Filename: r.Filename})
	}
	p.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		ti, tj := strings.ToLower(out[i].Title), strings.ToLower(out[j].Title)
		if ti != tj {
			return ti < tj
		}
		return out[i].URL < out[j].URL
	})
	return out
}

// FindByFilename returns the entry whose recorded file is name
func (p *Playlist) FindByFilename(name string) (model.PlaylistEntry, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	for url, r := range p.entries {
		if r.Filename == name {
			return model.PlaylistEntry{URL: url, Title: r.Title, Filename: r.Filename}, true
		}
	}
	return model.PlaylistEntry{}, false
}

// Stale returns the entries whose backing file is missing
func (p *Playlist) Stale() []model.PlaylistEntry {
	var stale []model.PlaylistEntry
	for _, e := range p.SortedListing() {
		if !platform.FileExists(filepath.Join(p.dir, e.Filename)) {
			stale = append(stale, e)
		}
	}
	return stale
}

// persistLocked writes the index; the caller holds p.mu. Failures are logged
// and the in-memory map stays authoritative.
func (p *Playlist) persistLocked() {
	if err := platform.WriteJSONAtomic(p.path, p.entries); err != nil {
		p.logger.Error("could not save playlist", "path", p.path, "error", err)
	}
}

func uniqueNames(names ...string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}
