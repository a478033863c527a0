package events

import "github.com/ytget/mucache/internal/model"

// Message types pushed to clients
const (
	TypeTask     = "task"
	TypeSnapshot = "snapshot"
)

// Message is the JSON frame sent over the socket. Task frames carry a single
// task; the snapshot sent on connect carries every active task.
type Message struct {
	Type   string                `json:"type"`
	Client string                `json:"client,omitempty"`
	Task   *model.DownloadTask   `json:"task,omitempty"`
	Tasks  []*model.DownloadTask `json:"tasks,omitempty"`
}
