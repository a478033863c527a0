package model

import (
	"fmt"
	"strings"
	"time"
)

// DownloadTask represents a single resolve request as seen by the player
type DownloadTask struct {
	ID         string     `json:"id"`
	URL        string     `json:"url"`
	Site       string     `json:"site"`
	Status     TaskStatus `json:"status"`
	Progress   float64    `json:"progress"` // 0.0 to 1.0
	Percent    int        `json:"percent"`  // 0 to 100
	Speed      string     `json:"speed,omitempty"`
	ETASec     int        `json:"eta_sec"` // ETA in seconds, -1 if unknown
	Format     string     `json:"format,omitempty"`
	LastError  string     `json:"last_error,omitempty"`
	Filename   string     `json:"filename,omitempty"`
	FromCache  bool       `json:"from_cache"`
	Title      string     `json:"title,omitempty"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt time.Time  `json:"finished_at,omitempty"`
}

// NewDownloadTask creates a pending task for url
func NewDownloadTask(id, url, site string) *DownloadTask {
	return &DownloadTask{
		ID:        id,
		URL:       url,
		Site:      site,
		Status:    TaskStatusPending,
		ETASec:    -1,
		StartedAt: time.Now(),
	}
}

// Clone returns a copy that is safe to hand to other goroutines
func (dt *DownloadTask) Clone() *DownloadTask {
	c := *dt
	return &c
}

// GetETAString returns ETA formatted as hh:mm:ss, or "—" if unknown
func (dt *DownloadTask) GetETAString() string {
	if dt.ETASec <= 0 {
		return "—"
	}

	hours := dt.ETASec / 3600
	minutes := (dt.ETASec % 3600) / 60
	seconds := dt.ETASec % 60

	if hours > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds)
	}
	return fmt.Sprintf("%02d:%02d", minutes, seconds)
}

// GetDisplayTitle returns title, filename, or URL in order of preference
func (dt *DownloadTask) GetDisplayTitle() string {
	if dt.Title != "" && !strings.HasPrefix(dt.Title, "http") {
		return dt.Title
	}

	if dt.Filename != "" {
		filename := dt.Filename
		if idx := strings.LastIndex(filename, "."); idx > 0 {
			filename = filename[:idx]
		}
		return filename
	}

	return dt.URL
}
