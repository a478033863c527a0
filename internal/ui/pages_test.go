package ui

import (
	"strings"
	"testing"
)

func TestPlayerPageEmbedded(t *testing.T) {
	page := string(PlayerPage())
	for _, want := range []string{"<video", "/playlist", "/download?url=", "/events"} {
		if !strings.Contains(page, want) {
			t.Errorf("player page missing %q", want)
		}
	}
}

func TestManualPageLanguages(t *testing.T) {
	cases := map[string]string{
		"":   "Mucache Player Manual",
		"en": "Mucache Player Manual",
		"ru": "Руководство Mucache Player",
		"pt": "Manual do Mucache Player",
		"de": "Mucache Player Manual",
	}
	for lang, title := range cases {
		page, err := ManualPage(lang)
		if err != nil {
			t.Fatalf("ManualPage(%q): %v", lang, err)
		}
		if !strings.Contains(string(page), "<title>"+title+"</title>") {
			t.Errorf("ManualPage(%q) missing title %q", lang, title)
		}
	}
}
