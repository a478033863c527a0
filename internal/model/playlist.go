package model

import (
	"time"
)

// PlaylistStatus represents the current status of a remote playlist
type PlaylistStatus string

const (
	PlaylistStatusParsing PlaylistStatus = "parsing"
	PlaylistStatusReady   PlaylistStatus = "ready"
	PlaylistStatusError   PlaylistStatus = "error"
)

// PlaylistVideo represents a single video in a remote playlist
type PlaylistVideo struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Duration string `json:"duration"`
	URL      string `json:"url"`
	// Filename is set when the video is already in the local cache
	Filename string `json:"filename,omitempty"`
	Cached   bool   `json:"cached"`
}

// Playlist represents a remote YouTube playlist expanded into its videos.
// It is distinct from the local playlist index, which holds PlaylistEntry values.
type Playlist struct {
	ID          string           `json:"id"`
	Title       string           `json:"title"`
	URL         string           `json:"url"`
	Videos      []*PlaylistVideo `json:"videos"`
	Status      PlaylistStatus   `json:"status"`
	TotalVideos int              `json:"total_videos"`
	Cached      int              `json:"cached"`
	Error       string           `json:"error,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// NewPlaylist creates a new playlist instance
func NewPlaylist(url string) *Playlist {
	now := time.Now()
	return &Playlist{
		URL:       url,
		Status:    PlaylistStatusParsing,
		Videos:    make([]*PlaylistVideo, 0),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// AddVideo adds a video to the playlist
func (p *Playlist) AddVideo(video *PlaylistVideo) {
	p.Videos = append(p.Videos, video)
	p.TotalVideos = len(p.Videos)
	p.UpdatedAt = time.Now()
}

// UpdateStatus updates the playlist status
func (p *Playlist) UpdateStatus(status PlaylistStatus) {
	p.Status = status
	p.UpdatedAt = time.Now()
}

// MarkCached flags videos already present in the local index. lookup returns
// the cached filename for a video URL.
func (p *Playlist) MarkCached(lookup func(url string) (string, bool)) {
	p.Cached = 0
	for _, video := range p.Videos {
		if filename, ok := lookup(video.URL); ok {
			video.Filename = filename
			video.Cached = true
			p.Cached++
		}
	}
	p.UpdatedAt = time.Now()
}

// PendingVideos returns the videos that still need a download
func (p *Playlist) PendingVideos() []*PlaylistVideo {
	var pending []*PlaylistVideo
	for _, video := range p.Videos {
		if !video.Cached {
			pending = append(pending, video)
		}
	}
	return pending
}
