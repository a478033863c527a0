package platform

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeFile(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("data"), 0644); err != nil {
		t.Fatalf("Failed to create %s: %v", name, err)
	}
	return path
}

func TestCreateDirectoryIfNotExists(t *testing.T) {
	tempDir := t.TempDir()
	testDir := filepath.Join(tempDir, "test_dir")

	if _, err := os.Stat(testDir); !os.IsNotExist(err) {
		t.Fatalf("Test directory already exists: %s", testDir)
	}

	if err := CreateDirectoryIfNotExists(testDir); err != nil {
		t.Fatalf("Failed to create directory: %v", err)
	}

	if _, err := os.Stat(testDir); os.IsNotExist(err) {
		t.Fatalf("Directory was not created: %s", testDir)
	}

	// Second call should not fail
	if err := CreateDirectoryIfNotExists(testDir); err != nil {
		t.Fatalf("Failed to handle existing directory: %v", err)
	}
}

func TestEnsureWritableDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "mucache", "data")

	if err := EnsureWritableDirectory(dir); err != nil {
		t.Fatalf("Expected writable directory, got %v", err)
	}

	if FileExists(filepath.Join(dir, WriteProbeName)) {
		t.Error("Write probe should be removed after the check")
	}
}

func TestGetHomeDownloadsDir(t *testing.T) {
	downloadsDir, err := GetHomeDownloadsDir()
	if err != nil {
		t.Fatalf("Failed to get downloads directory: %v", err)
	}

	if filepath.Base(downloadsDir) != "Downloads" {
		t.Errorf("Expected directory to end with 'Downloads', got: %s", downloadsDir)
	}
}

func TestIsVideoFile(t *testing.T) {
	tests := map[string]bool{
		"clip.mp4":      true,
		"clip.MP4":      true,
		"clip.webm":     true,
		"clip.avi":      true,
		"clip.mkv":      false,
		"playlist.json": false,
		"noext":         false,
	}

	for name, expected := range tests {
		if got := IsVideoFile(name); got != expected {
			t.Errorf("IsVideoFile(%q) = %v, expected %v", name, got, expected)
		}
	}
}

func TestNewFileNames(t *testing.T) {
	before := map[string]struct{}{"old.mp4": {}, "playlist.json": {}}
	after := map[string]struct{}{
		"old.mp4":                   {},
		"playlist.json":             {},
		"b new.mp4":                 {},
		"a new.webm":                {},
		"a new.webm.part":           {},
		"b new.mp4.metadata.json":   {},
		"partial download.mp4.ytdl": {},
	}

	added := NewFileNames(before, after)
	if len(added) != 2 {
		t.Fatalf("Expected 2 new files, got %v", added)
	}
	if added[0] != "a new.webm" || added[1] != "b new.mp4" {
		t.Errorf("Expected sorted new files, got %v", added)
	}
}

func TestNewestFileSince(t *testing.T) {
	dir := t.TempDir()
	old := writeFile(t, dir, "old.mp4")
	writeFile(t, dir, "fresh.mp4")
	writeFile(t, dir, "fresh.mp4.part")

	past := time.Now().Add(-10 * time.Minute)
	if err := os.Chtimes(old, past, past); err != nil {
		t.Fatalf("Failed to age file: %v", err)
	}

	name, err := NewestFileSince(dir, time.Now().Add(-2*time.Minute))
	if err != nil {
		t.Fatalf("Expected a recent file, got %v", err)
	}
	if name != "fresh.mp4" {
		t.Errorf("Expected fresh.mp4, got %s", name)
	}

	if _, err := NewestFileSince(dir, time.Now().Add(time.Hour)); err == nil {
		t.Error("Expected error when nothing changed in the window")
	}
}

func TestFindCachedFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "Exact Name.mp4")
	writeFile(t, dir, "Caf Song.mp4")
	writeFile(t, dir, "Some Long Lecture Title.webm")
	writeFile(t, dir, "notes.txt")

	tests := []struct {
		name     string
		request  string
		expected string
		wantErr  bool
	}{
		{name: "exact", request: "Exact Name.mp4", expected: "Exact Name.mp4"},
		{name: "sanitized", request: "Café Song.mp4", expected: "Caf Song.mp4"},
		{name: "case insensitive", request: "exact name.MP4", expected: "Exact Name.mp4"},
		{name: "containment", request: "Lecture Title.webm", expected: "Some Long Lecture Title.webm"},
		{name: "path traversal stays in dir", request: "../Exact Name.mp4", expected: "Exact Name.mp4"},
		{name: "non video is not fuzzy matched", request: "note.txt", wantErr: true},
		{name: "missing", request: "Nothing Here.mp4", wantErr: true},
		{name: "empty", request: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FindCachedFile(dir, tt.request)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Expected error, got %q", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if got != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestFuzzyMatch_PrefersClosestName(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "Talk.mp4")
	writeFile(t, dir, "Talk Part 2 Extended Edition.mp4")
	writeFile(t, dir, "Talk Part 2.mp4")

	got, ok := FuzzyMatch(dir, "Talk Part 2 HD.mp4")
	if !ok {
		t.Fatal("Expected a fuzzy match")
	}
	if got != "Talk Part 2.mp4" {
		t.Errorf("Expected closest candidate 'Talk Part 2.mp4', got %q", got)
	}
}

func TestIsSimilarFileName(t *testing.T) {
	tests := []struct {
		a, b     string
		expected bool
	}{
		{"video", "video", true},
		{"my video", "video", true},
		{"video", "my video", true},
		{"other", "video", false},
		{"", "video", false},
	}

	for _, tt := range tests {
		if got := isSimilarFileName(tt.a, tt.b); got != tt.expected {
			t.Errorf("isSimilarFileName(%q, %q) = %v, expected %v", tt.a, tt.b, got, tt.expected)
		}
	}
}
