package platform

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"
	"github.com/mitchellh/go-homedir"
)

// Operating system constants
const (
	OSDarwin  = "darwin"
	OSWindows = "windows"
	OSLinux   = "linux"
)

// File permissions
const (
	DefaultDirPermissions  = 0755
	DefaultFilePermissions = 0644
)

// Command constants
const (
	OpenCommand    = "open"
	XDGOpenCommand = "xdg-open"
	CmdCommand     = "cmd"
	StartCommand   = "start"
	WindowsCmdFlag = "/c"
)

// WriteProbeName is the file used to verify a directory is writable
const WriteProbeName = ".mucache_write_test"

// VideoExtensions are the containers considered when relinking or serving files
var (
	VideoExtensions = []string{".mp4", ".webm", ".avi"}
)

// File extensions to skip
var (
	SkippedExtensions = []string{".part", ".ytdl", ".partial", ".tmp"}
)

// ErrEmptyName is returned when a lookup is asked for an empty file name
var ErrEmptyName = errors.New("file name is empty")

// CreateDirectoryIfNotExists creates directory if it doesn't exist
func CreateDirectoryIfNotExists(dirPath string) error {
	if _, err := os.Stat(dirPath); os.IsNotExist(err) {
		return os.MkdirAll(dirPath, DefaultDirPermissions)
	}
	return nil
}

// EnsureWritableDirectory creates dirPath and verifies a file can be written into it
func EnsureWritableDirectory(dirPath string) error {
	if err := CreateDirectoryIfNotExists(dirPath); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dirPath, err)
	}

	probe := filepath.Join(dirPath, WriteProbeName)
	if err := os.WriteFile(probe, []byte("test"), DefaultFilePermissions); err != nil {
		return fmt.Errorf("directory %s is not writable: %w", dirPath, err)
	}
	return os.Remove(probe)
}

// GetHomeDownloadsDir returns the standard Downloads directory for the user
func GetHomeDownloadsDir() (string, error) {
	homeDir, err := homedir.Dir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(homeDir, "Downloads"), nil
}

// FileExists reports whether path names an existing regular file
func FileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// IsVideoFile reports whether name carries one of the known video extensions
func IsVideoFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, v := range VideoExtensions {
		if ext == v {
			return true
		}
	}
	return false
}

// IsTemporaryFile reports whether name looks like an in-progress download
func IsTemporaryFile(name string) bool {
	for _, ext := range SkippedExtensions {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}

// ListFileNames returns the names of regular files directly under dir
func ListFileNames(dir string) (map[string]struct{}, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	names := make(map[string]struct{}, len(entries))
	for _, entry := range entries {
		if entry.Type().IsRegular() {
			names[entry.Name()] = struct{}{}
		}
	}
	return names, nil
}

// NewFileNames returns the files present in after but not in before, sorted,
// skipping temporary and sidecar files
func NewFileNames(before, after map[string]struct{}) []string {
	var added []string
	for name := range after {
		if _, ok := before[name]; ok {
			continue
		}
		if IsTemporaryFile(name) || strings.HasSuffix(name, ".json") {
			continue
		}
		added = append(added, name)
	}
	sort.Strings(added)
	return added
}

// NewestFileSince returns the most recently modified file in dir that changed
// after since. Temporary and JSON files are ignored.
func NewestFileSince(dir string, since time.Time) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	var newest string
	var newestMod time.Time
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		name := entry.Name()
		if IsTemporaryFile(name) || strings.HasSuffix(name, ".json") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(since) && info.ModTime().After(newestMod) {
			newest = name
			newestMod = info.ModTime()
		}
	}

	if newest == "" {
		return "", fmt.Errorf("no file modified since %s in %s", since.Format(time.RFC3339), dir)
	}
	return newest, nil
}

// FindCachedFile resolves a requested file name inside dir, trying in order:
// the exact name, its sanitized form, the sanitized base with the original
// extension, then a case-insensitive fuzzy scan of video files.
func FindCachedFile(dir, name string) (string, error) {
	if name == "" {
		return "", ErrEmptyName
	}

	// Refuse anything that tries to leave the cache directory
	name = filepath.Base(filepath.Clean("/" + name))

	for _, candidate := range []string{name, Sanitize(name), SanitizeKeepExt(name)} {
		if FileExists(filepath.Join(dir, candidate)) {
			return candidate, nil
		}
	}

	if match, ok := FuzzyMatch(dir, name); ok {
		return match, nil
	}

	return "", fmt.Errorf("file not found: %s", name)
}

// FuzzyMatch looks for a video file in dir whose name resembles expected.
// An exact case-insensitive match wins; otherwise candidates whose lowercase
// base names contain each other are ranked by Levenshtein similarity.
func FuzzyMatch(dir, expected string) (string, bool) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", false
	}

	expectedLower := strings.ToLower(expected)
	expectedBase := strings.ToLower(strings.TrimSuffix(expected, filepath.Ext(expected)))
	sanitizedBase := strings.ToLower(Sanitize(strings.TrimSuffix(expected, filepath.Ext(expected))))

	var best string
	bestScore := -1.0
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		entryName := entry.Name()
		if !IsVideoFile(entryName) {
			continue
		}

		entryLower := strings.ToLower(entryName)
		if entryLower == expectedLower {
			return entryName, true
		}

		entryBase := strings.TrimSuffix(entryLower, filepath.Ext(entryLower))
		if !isSimilarFileName(entryBase, expectedBase) && !isSimilarFileName(entryBase, sanitizedBase) {
			continue
		}

		score := strutil.Similarity(entryBase, expectedBase, metrics.NewLevenshtein())
		if score > bestScore || (score == bestScore && entryName < best) {
			best = entryName
			bestScore = score
		}
	}

	return best, best != ""
}

// isSimilarFileName checks whether one name contains the other
func isSimilarFileName(name1, name2 string) bool {
	clean1 := strings.TrimSpace(name1)
	clean2 := strings.TrimSpace(name2)
	if clean1 == "" || clean2 == "" {
		return false
	}
	return strings.Contains(clean1, clean2) || strings.Contains(clean2, clean1)
}

// OpenBrowser opens url with the default system application
func OpenBrowser(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case OSDarwin:
		cmd = exec.Command(OpenCommand, url)
	case OSWindows:
		cmd = exec.Command(CmdCommand, WindowsCmdFlag, StartCommand, "", url)
	case OSLinux:
		cmd = exec.Command(XDGOpenCommand, url)
	default:
		return fmt.Errorf("unsupported operating system: %s", runtime.GOOS)
	}
	return cmd.Start()
}
