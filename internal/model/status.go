package model

// TaskStatus represents the status of a download task
type TaskStatus string

const (
	// TaskStatusPending means the request was accepted but work has not started
	TaskStatusPending TaskStatus = "Pending"

	// TaskStatusDownloading means a fetcher is running
	TaskStatusDownloading TaskStatus = "Downloading"

	// TaskStatusCompleted means a fresh download finished successfully
	TaskStatusCompleted TaskStatus = "Completed"

	// TaskStatusCached means the request was served from the cache
	TaskStatusCached TaskStatus = "Cached"

	// TaskStatusError means every fetch attempt failed
	TaskStatusError TaskStatus = "Error"
)

// String returns the string representation of TaskStatus
func (ts TaskStatus) String() string {
	return string(ts)
}

// IsActive returns true if the task is still running
func (ts TaskStatus) IsActive() bool {
	return ts == TaskStatusPending || ts == TaskStatusDownloading
}

// IsFinished returns true if the task is in a finished state (completed, cached, or error)
func (ts TaskStatus) IsFinished() bool {
	return ts == TaskStatusCompleted || ts == TaskStatusCached || ts == TaskStatusError
}
