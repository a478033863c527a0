package platform

import (
	"strings"
	"testing"
	"unicode"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Plain Title", "Plain Title"},
		{"  padded   title  ", "padded title"},
		{"Café del Mar", "Caf del Mar"},
		{`a<b>c:d"e|f?g*h\i/j`, "a b c d e f g h i j"},
		{"Song (Official Video)", "Song Official Video"},
		{"日本語", FallbackFileName},
		{"", FallbackFileName},
		{"tab\tand\nnewline", "tab and newline"},
	}

	for _, tt := range tests {
		if got := Sanitize(tt.input); got != tt.expected {
			t.Errorf("Sanitize(%q) = %q, expected %q", tt.input, got, tt.expected)
		}
	}
}

func TestSanitize_Properties(t *testing.T) {
	inputs := []string{
		"Rammstein - Sonne (Official Video)",
		"Ünïcödé — dash “quotes”",
		"///???***",
		"already clean",
		"mixed\x00control\x1fchars",
		"   ",
	}

	for _, input := range inputs {
		once := Sanitize(input)
		if twice := Sanitize(once); twice != once {
			t.Errorf("Sanitize is not idempotent for %q: %q then %q", input, once, twice)
		}
		if strings.ContainsAny(once, ReservedCharacters) {
			t.Errorf("Sanitize(%q) = %q still contains reserved characters", input, once)
		}
		for _, r := range once {
			if r > unicode.MaxASCII {
				t.Errorf("Sanitize(%q) = %q contains non-ASCII %q", input, once, r)
			}
		}
	}
}

func TestSanitizeKeepExt(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Café (live).mp4", "Caf live.mp4"},
		{"clip.webm", "clip.webm"},
		{"noext", "noext"},
		{"weird.(x)", "weird. x"},
	}

	for _, tt := range tests {
		if got := SanitizeKeepExt(tt.input); got != tt.expected {
			t.Errorf("SanitizeKeepExt(%q) = %q, expected %q", tt.input, got, tt.expected)
		}
	}
}

func TestHasNonASCII(t *testing.T) {
	if HasNonASCII("plain.mp4") {
		t.Error("Expected plain ASCII name to report false")
	}
	if !HasNonASCII("naïve.mp4") {
		t.Error("Expected accented name to report true")
	}
}
