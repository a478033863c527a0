package platform

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/ytget/mucache/internal/model"
	"github.com/ytget/ytdlp/v2"
)

// Timeout constants
const (
	DefaultParseTimeout = 60 * time.Second
)

// URL parameters
const (
	PlaylistParam = "list"
)

// Default values
const (
	DefaultDuration     = "Unknown"
	DefaultPlaylistName = "Unknown Playlist"
)

// URL templates
const (
	YouTubeVideoURLTemplate = "https://www.youtube.com/watch?v=%s"
)

// Playlist title constants
const (
	MinPrefixLength = 10
	PlaylistSuffix  = " Playlist"
)

// Time formatting constants
const (
	SecondsPerHour   = 3600
	SecondsPerMinute = 60
)

// PlaylistItem is a single video reported by the playlist backend
type PlaylistItem struct {
	VideoID string
	Title   string
}

// ItemsFunc fetches every item of a playlist by its ID
type ItemsFunc func(ctx context.Context, playlistID string) ([]PlaylistItem, error)

// YTDLPParserService expands YouTube playlists into their videos
type YTDLPParserService struct {
	timeout    time.Duration
	fetchItems ItemsFunc
}

// NewYTDLPParserService creates a parser backed by github.com/ytget/ytdlp/v2
func NewYTDLPParserService() *YTDLPParserService {
	return &YTDLPParserService{
		timeout:    DefaultParseTimeout,
		fetchItems: fetchLibraryItems,
	}
}

// NewYTDLPParserServiceWithItems creates a parser with a custom item source
func NewYTDLPParserServiceWithItems(fetch ItemsFunc) *YTDLPParserService {
	return &YTDLPParserService{
		timeout:    DefaultParseTimeout,
		fetchItems: fetch,
	}
}

// SetTimeout sets the timeout for parsing operations
func (y *YTDLPParserService) SetTimeout(timeout time.Duration) {
	y.timeout = timeout
}

// ParsePlaylist parses a YouTube playlist and returns video information
func (y *YTDLPParserService) ParsePlaylist(ctx context.Context, rawURL string) (*model.Playlist, error) {
	if !y.isValidPlaylistURL(rawURL) {
		return nil, fmt.Errorf("invalid playlist URL: %s", rawURL)
	}

	playlistID := y.extractPlaylistID(rawURL)
	if playlistID == "" {
		return nil, fmt.Errorf("could not extract playlist ID from URL: %s", rawURL)
	}

	if y.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, y.timeout)
		defer cancel()
	}

	items, err := y.fetchItems(ctx, playlistID)
	if err != nil {
		return nil, fmt.Errorf("failed to get playlist items: %w", err)
	}

	playlist := model.NewPlaylist(rawURL)
	playlist.ID = playlistID
	for _, it := range items {
		if it.VideoID == "" {
			continue
		}
		playlist.AddVideo(&model.PlaylistVideo{
			ID:       it.VideoID,
			Title:    it.Title,
			Duration: DefaultDuration,
			URL:      fmt.Sprintf(YouTubeVideoURLTemplate, it.VideoID),
		})
	}
	playlist.Title = y.extractPlaylistTitle(playlist.Videos)
	playlist.UpdateStatus(model.PlaylistStatusReady)

	return playlist, nil
}

func fetchLibraryItems(ctx context.Context, playlistID string) ([]PlaylistItem, error) {
	d := ytdlp.New()
	items, err := d.GetPlaylistItemsAll(ctx, playlistID, 0)
	if err != nil {
		return nil, err
	}

	out := make([]PlaylistItem, 0, len(items))
	for _, it := range items {
		out = append(out, PlaylistItem{VideoID: it.VideoID, Title: it.Title})
	}
	return out, nil
}

// isValidPlaylistURL checks if the URL carries a playlist parameter
func (y *YTDLPParserService) isValidPlaylistURL(rawURL string) bool {
	return y.extractPlaylistID(rawURL) != ""
}

// extractPlaylistID extracts the playlist ID from watch and playlist URLs
func (y *YTDLPParserService) extractPlaylistID(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(u.Query().Get(PlaylistParam))
}

// formatDuration formats seconds into HH:MM:SS format
func (y *YTDLPParserService) formatDuration(seconds int) string {
	hours := seconds / SecondsPerHour
	minutes := (seconds % SecondsPerHour) / SecondsPerMinute
	secs := seconds % SecondsPerMinute
	if hours > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, secs)
	}
	return fmt.Sprintf("%02d:%02d", minutes, secs)
}

// extractPlaylistTitle generates a title for the playlist based on videos
func (y *YTDLPParserService) extractPlaylistTitle(videos []*model.PlaylistVideo) string {
	if len(videos) == 0 {
		return DefaultPlaylistName
	}
	if len(videos) > 1 {
		commonPrefix := y.findCommonPrefix(videos[0].Title, videos[1].Title)
		if len(commonPrefix) > MinPrefixLength {
			return strings.TrimSpace(commonPrefix) + PlaylistSuffix
		}
	}
	return videos[0].Title + PlaylistSuffix
}

// findCommonPrefix finds the common prefix between two strings
func (y *YTDLPParserService) findCommonPrefix(s1, s2 string) string {
	minLen := min(len(s1), len(s2))
	for i := 0; i < minLen; i++ {
		if s1[i] != s2[i] {
			return s1[:i]
		}
	}
	return s1[:minLen]
}
