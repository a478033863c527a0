package model

import (
	"fmt"
	"strings"
)

// Sidecar keys written next to downloaded files
const (
	MetaTitle              = "title"
	MetaDescription        = "description"
	MetaCreator            = "creator"
	MetaDate               = "date"
	MetaSubject            = "subject"
	MetaLanguage           = "language"
	MetaRuntime            = "runtime"
	MetaSource             = "source"
	MetaCollection         = "collection"
	MetaIdentifier         = "identifier"
	MetaArchiveURL         = "archive_url"
	MetaUploader           = "uploader"
	MetaUploadDate         = "upload_date"
	MetaPublicDate         = "publicdate"
	MetaMediaType          = "mediatype"
	MetaBackupLocation     = "backup_location"
	MetaFileFormat         = "file_format"
	MetaFileSize           = "file_size"
	MetaOriginalFilename   = "original_filename"
	MetaFileMD5            = "file_md5"
	MetaFileSHA1           = "file_sha1"
	MetaOriginalPlatform   = "original_platform"
	MetaOriginalYouTubeID  = "original_youtube_id"
	MetaOriginalYouTubeURL = "original_youtube_url"
)

// Metadata is the provenance document stored in a sidecar. Values are kept
// as decoded JSON so unknown keys survive a rewrite.
type Metadata map[string]any

// String returns the value under key as text. Lists are joined with ", ".
func (m Metadata) String(key string) string {
	return Stringify(m[key])
}

// Strings returns the value under key as a list
func (m Metadata) Strings(key string) []string {
	switch v := m[key].(type) {
	case nil:
		return nil
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s := Stringify(item); s != "" {
				out = append(out, s)
			}
		}
		return out
	default:
		if s := Stringify(v); s != "" {
			return []string{s}
		}
		return nil
	}
}

// Has reports whether key carries a non-empty value
func (m Metadata) Has(key string) bool {
	return m.String(key) != ""
}

// Stringify renders a decoded JSON value as display text
func Stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []string:
		return strings.Join(t, ", ")
	case []any:
		parts := make([]string, 0, len(t))
		for _, item := range t {
			if s := Stringify(item); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", ")
	case float64:
		if t == float64(int64(t)) {
			return fmt.Sprintf("%d", int64(t))
		}
		return fmt.Sprintf("%g", t)
	default:
		return fmt.Sprint(t)
	}
}
