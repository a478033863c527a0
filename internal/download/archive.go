package download

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	neturl "net/url"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"

	"github.com/ytget/mucache/internal/model"
	"github.com/ytget/mucache/internal/platform"
)

// Archive.org fetch constants
const (
	ArchiveBaseURL         = "https://archive.org"
	ArchiveMetadataTimeout = 15 * time.Second
	ArchiveDownloadTimeout = 60 * time.Second
	ArchiveChunkSize       = 1 << 20
	MinArchiveFileSize     = 1000000
	MaxFileNameLength      = 200
	TruncatedBaseLength    = 190
	ArchivedYouTube        = "YouTube (archived)"
	youTubeWatchURL        = "https://www.youtube.com/watch?v="
)

var (
	archiveIDPattern = regexp.MustCompile(`archive\.org/(?:details|embed)/([^/?#]+)`)
	youTubeIDPattern = regexp.MustCompile(`--([A-Za-z0-9_-]{11})$`)

	archiveSkipWords = []string{"thumb", "screenshot", ".png", ".jpg", ".gif"}
	hdMarkers        = []string{"hd", "720", "1080", "high"}
	otherContainers  = []string{"mkv", "mov", "flv"}

	errNoIdentifier = errors.New("could not extract item identifier")
	errNoVideoFile  = errors.New("no suitable video file found")
)

// archiveFile is one entry of the item files listing. Sizes arrive as strings.
type archiveFile struct {
	Name   string `mapstructure:"name"`
	Format string `mapstructure:"format"`
	Size   int64  `mapstructure:"size"`
	MD5    string `mapstructure:"md5"`
	SHA1   string `mapstructure:"sha1"`
}

type archiveCandidate struct {
	file     archiveFile
	ext      string
	priority int
}

type archiveItem struct {
	Metadata map[string]any `json:"metadata"`
	Files    any            `json:"files"`
}

// ArchiveFetcher downloads the best video file of an Archive.org item and
// records its provenance
type ArchiveFetcher struct {
	dir     string
	client  Getter
	baseURL string
	logger  *slog.Logger
}

// NewArchiveFetcher creates an ArchiveFetcher writing into dir
func NewArchiveFetcher(dir string, client Getter, logger *slog.Logger) *ArchiveFetcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &ArchiveFetcher{
		dir:     dir,
		client:  client,
		baseURL: ArchiveBaseURL,
		logger:  logger.With("component", "archive"),
	}
}

// SetBaseURL points the fetcher at another host
func (a *ArchiveFetcher) SetBaseURL(base string) {
	a.baseURL = strings.TrimRight(base, "/")
}

// Fetch implements Fetcher
func (a *ArchiveFetcher) Fetch(ctx context.Context, url string) (*Fetched, error) {
	match := archiveIDPattern.FindStringSubmatch(url)
	if match == nil {
		return nil, fetchError(SiteArchive, StageParse, url, errNoIdentifier)
	}
	id := match[1]
	a.logger.Debug("processing archive.org item", "identifier", id)

	body, err := a.client.GetBytes(ctx, a.baseURL+"/metadata/"+id, ArchiveMetadataTimeout)
	if err != nil {
		return nil, fetchError(SiteArchive, StageMetadata, url, err)
	}

	var item archiveItem
	if err := json.Unmarshal(body, &item); err != nil {
		a.logger.Warn("could not decode item metadata, using basic info", "identifier", id, "error", err)
		item = archiveItem{}
	}

	title := model.Stringify(item.Metadata["title"])
	if title == "" {
		title = id
	}
	meta := a.itemMetadata(id, title, item.Metadata)

	files := a.listFiles(ctx, id)
	if len(files) == 0 {
		files = decodeArchiveFiles(item.Files)
	}
	a.logger.Debug("found files in archive", "identifier", id, "count", len(files))

	best, ok := selectArchiveFile(files)
	if !ok {
		return nil, fetchError(SiteArchive, StageSelect, url, errNoVideoFile)
	}
	a.logger.Debug("selected video file", "file", best.file.Name, "ext", best.ext, "size", best.file.Size)

	meta[model.MetaFileFormat] = best.ext
	meta[model.MetaFileSize] = best.file.Size
	meta[model.MetaOriginalFilename] = best.file.Name
	meta[model.MetaFileMD5] = best.file.MD5
	meta[model.MetaFileSHA1] = best.file.SHA1

	filename := ArchiveFileName(title, meta.String(model.MetaCreator), meta.String(model.MetaDate), best.ext)
	dst := filepath.Join(a.dir, filename)

	downloadURL := a.baseURL + "/download/" + id + "/" + escapePath(best.file.Name)
	written, err := a.client.DownloadToFile(ctx, downloadURL, dst, ArchiveDownloadTimeout, ArchiveChunkSize)
	if err != nil {
		return nil, fetchError(SiteArchive, StageFetch, url, err)
	}
	if written <= MinVideoSize {
		_ = os.Remove(dst)
		return nil, fetchError(SiteArchive, StageValidate, url, fmt.Errorf("downloaded file too small: %d bytes", written))
	}

	a.logger.Info("downloaded archive.org video", "file", filename)
	return &Fetched{Filename: filename, Title: title, Metadata: meta}, nil
}

// itemMetadata builds the sidecar document for an item
func (a *ArchiveFetcher) itemMetadata(id, title string, raw map[string]any) model.Metadata {
	text := func(key string) string { return model.Stringify(raw[key]) }
	list := func(key string) any {
		if v, ok := raw[key]; ok && v != nil {
			return v
		}
		return []string{}
	}

	meta := model.Metadata{
		model.MetaTitle:          title,
		model.MetaDescription:    text("description"),
		model.MetaCreator:        text("creator"),
		model.MetaDate:           text("date"),
		model.MetaSubject:        list("subject"),
		model.MetaLanguage:       text("language"),
		model.MetaRuntime:        text("runtime"),
		model.MetaSource:         text("source"),
		model.MetaCollection:     list("collection"),
		model.MetaIdentifier:     id,
		model.MetaArchiveURL:     a.baseURL + "/details/" + id,
		model.MetaUploader:       text("uploader"),
		model.MetaUploadDate:     text("addeddate"),
		model.MetaPublicDate:     text("publicdate"),
		model.MetaMediaType:      text("mediatype"),
		model.MetaBackupLocation: a.baseURL + "/download/" + id,
	}

	lowerID := strings.ToLower(id)
	if strings.Contains(lowerID, "youtube") || strings.Contains(lowerID, "yt") {
		meta[model.MetaOriginalPlatform] = ArchivedYouTube
		if m := youTubeIDPattern.FindStringSubmatch(id); m != nil {
			meta[model.MetaOriginalYouTubeID] = m[1]
			meta[model.MetaOriginalYouTubeURL] = youTubeWatchURL + m[1]
		}
	}
	return meta
}

// listFiles fetches the files endpoint. Failures yield nil so the caller can
// fall back to the item document.
func (a *ArchiveFetcher) listFiles(ctx context.Context, id string) []archiveFile {
	body, err := a.client.GetBytes(ctx, a.baseURL+"/metadata/"+id+"/files", ArchiveMetadataTimeout)
	if err != nil {
		a.logger.Warn("could not list item files", "identifier", id, "error", err)
		return nil
	}

	var raw any
	if err := json.Unmarshal(body, &raw); err != nil {
		a.logger.Warn("could not decode item files", "identifier", id, "error", err)
		return nil
	}
	return decodeArchiveFiles(raw)
}

// decodeArchiveFiles accepts a list, an object with a files or result list,
// or an object whose values are file objects
func decodeArchiveFiles(raw any) []archiveFile {
	var entries []any
	switch v := raw.(type) {
	case []any:
		entries = v
	case map[string]any:
		if list, ok := v["files"].([]any); ok {
			entries = list
		} else if list, ok := v["result"].([]any); ok {
			entries = list
		} else {
			keys := make([]string, 0, len(v))
			for k := range v {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				switch item := v[k].(type) {
				case map[string]any:
					if _, ok := item["name"]; ok {
						entries = append(entries, item)
					}
				case []any:
					entries = append(entries, item...)
				}
			}
		}
	}

	files := make([]archiveFile, 0, len(entries))
	for _, entry := range entries {
		m, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		var f archiveFile
		decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			WeaklyTypedInput: true,
			Result:           &f,
		})
		if err != nil {
			continue
		}
		if err := decoder.Decode(m); err != nil {
			// An unparsable size disqualifies the entry
			continue
		}
		files = append(files, f)
	}
	return files
}

// selectArchiveFile picks the preferred video file: mp4 (HD first), then
// webm, avi and other containers, larger files first within a tier
func selectArchiveFile(files []archiveFile) (archiveCandidate, bool) {
	var candidates []archiveCandidate
	for _, f := range files {
		name := strings.ToLower(f.Name)
		if containsAny(name, archiveSkipWords) || f.Size < MinArchiveFileSize {
			continue
		}
		format := strings.ToLower(f.Format)

		switch {
		case format == "mp4" || format == "mpeg4" || strings.HasSuffix(name, ".mp4"):
			priority := 1
			if containsAny(name, hdMarkers) {
				priority = 0
			}
			candidates = append(candidates, archiveCandidate{file: f, ext: "mp4", priority: priority})
		case format == "webm" || strings.HasSuffix(name, ".webm"):
			candidates = append(candidates, archiveCandidate{file: f, ext: "webm", priority: 2})
		case format == "avi" || strings.HasSuffix(name, ".avi"):
			candidates = append(candidates, archiveCandidate{file: f, ext: "avi", priority: 3})
		default:
			for _, c := range otherContainers {
				if format == c || strings.HasSuffix(name, "."+c) {
					candidates = append(candidates, archiveCandidate{file: f, ext: c, priority: 4})
					break
				}
			}
		}
	}

	if len(candidates) == 0 {
		return archiveCandidate{}, false
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].priority != candidates[j].priority {
			return candidates[i].priority < candidates[j].priority
		}
		return candidates[i].file.Size > candidates[j].file.Size
	})
	return candidates[0], true
}

// ArchiveFileName builds the local name for an item file. Creator and date are
// included when both are known. Names over MaxFileNameLength keep their
// extension and a truncated base.
func ArchiveFileName(title, creator, date, ext string) string {
	safeTitle := platform.Sanitize(title)

	name := safeTitle + "." + ext
	if creator != "" && date != "" {
		name = fmt.Sprintf("%s_%s_%s.%s", safeTitle, creator, date, ext)
	}
	name = platform.Sanitize(name)

	if len(name) > MaxFileNameLength {
		base, extPart := name, ext
		if i := strings.LastIndex(name, "."); i >= 0 {
			base, extPart = name[:i], name[i+1:]
		}
		if len(base) > TruncatedBaseLength {
			base = strings.TrimSpace(base[:TruncatedBaseLength])
		}
		name = base + "." + extPart
	}
	return name
}

func escapePath(name string) string {
	parts := strings.Split(name, "/")
	for i, p := range parts {
		parts[i] = neturl.PathEscape(p)
	}
	return strings.Join(parts, "/")
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
