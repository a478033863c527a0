package model

import "time"

// PlaylistEntry is one indexed video, keyed by its source URL
type PlaylistEntry struct {
	URL      string `json:"url"`
	Title    string `json:"title"`
	Filename string `json:"filename"`
}

// QueueEntry records an indexed video whose file went missing
type QueueEntry struct {
	Title            string `json:"title"`
	OriginalFilename string `json:"original_filename"`
	Timestamp        string `json:"timestamp"`
}

// NewQueueEntry stamps a queue entry with the current local time
func NewQueueEntry(title, originalFilename string) QueueEntry {
	return QueueEntry{
		Title:            title,
		OriginalFilename: originalFilename,
		Timestamp:        time.Now().Format(time.RFC3339),
	}
}

// QueueItem pairs a queue entry with its URL for listings
type QueueItem struct {
	URL string `json:"url"`
	QueueEntry
}
