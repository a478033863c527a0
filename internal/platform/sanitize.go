package platform

import (
	"path/filepath"
	"strings"
	"unicode"
)

// FallbackFileName is returned when sanitizing leaves nothing usable
const FallbackFileName = "sanitized_filename"

// ReservedCharacters are replaced with spaces by Sanitize
const ReservedCharacters = `<>:"|?*\/()`

// Sanitize normalizes an arbitrary title into a filesystem-safe name.
// Non-ASCII and reserved characters become spaces, whitespace runs collapse
// to a single space and the result is trimmed.
func Sanitize(name string) string {
	var b strings.Builder
	b.Grow(len(name))

	for _, r := range name {
		switch {
		case r > unicode.MaxASCII:
			b.WriteByte(' ')
		case strings.ContainsRune(ReservedCharacters, r):
			b.WriteByte(' ')
		case r < 0x20 || r == 0x7f:
			// control characters are not valid in names on every OS
			b.WriteByte(' ')
		default:
			b.WriteRune(r)
		}
	}

	clean := strings.Join(strings.Fields(b.String()), " ")
	if clean == "" {
		return FallbackFileName
	}
	return clean
}

// SanitizeKeepExt sanitizes the base part of a file name and keeps its extension
func SanitizeKeepExt(name string) string {
	ext := filepath.Ext(name)
	if ext == "" || ext == name || Sanitize(ext[1:]) != ext[1:] {
		return Sanitize(name)
	}
	return Sanitize(strings.TrimSuffix(name, ext)) + ext
}

// HasNonASCII reports whether s contains any code point above 127
func HasNonASCII(s string) bool {
	for _, r := range s {
		if r > unicode.MaxASCII {
			return true
		}
	}
	return false
}
