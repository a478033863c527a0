package model

import "testing"

func TestNewPlaylist(t *testing.T) {
	p := NewPlaylist("https://www.youtube.com/playlist?list=PL1")

	if p.Status != PlaylistStatusParsing {
		t.Errorf("Expected status parsing, got %s", p.Status)
	}
	if len(p.Videos) != 0 || p.TotalVideos != 0 {
		t.Errorf("Expected empty playlist, got %d videos", len(p.Videos))
	}
}

func TestPlaylist_MarkCached(t *testing.T) {
	p := NewPlaylist("https://www.youtube.com/playlist?list=PL1")
	p.AddVideo(&PlaylistVideo{ID: "a", URL: "https://www.youtube.com/watch?v=a"})
	p.AddVideo(&PlaylistVideo{ID: "b", URL: "https://www.youtube.com/watch?v=b"})

	cached := map[string]string{"https://www.youtube.com/watch?v=b": "b.mp4"}
	p.MarkCached(func(url string) (string, bool) {
		f, ok := cached[url]
		return f, ok
	})

	if p.TotalVideos != 2 {
		t.Errorf("Expected 2 videos, got %d", p.TotalVideos)
	}
	if p.Cached != 1 {
		t.Errorf("Expected 1 cached video, got %d", p.Cached)
	}
	if !p.Videos[1].Cached || p.Videos[1].Filename != "b.mp4" {
		t.Errorf("Expected second video to be cached as b.mp4, got %+v", p.Videos[1])
	}

	pending := p.PendingVideos()
	if len(pending) != 1 || pending[0].ID != "a" {
		t.Errorf("Expected only video a pending, got %v", pending)
	}
}
