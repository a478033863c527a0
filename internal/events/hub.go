// Package events pushes download task updates to connected players over a
// websocket.
package events

import (
	"context"
	"log/slog"
	"net/http"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/ytget/mucache/internal/model"
)

const (
	sendBuffer   = 256
	writeTimeout = 5 * time.Second
)

type client struct {
	id   uuid.UUID
	conn *websocket.Conn
}

func (c *client) send(msg *Message) error {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
		return err
	}
	return c.conn.WriteJSON(msg)
}

// Hub manages websocket clients and broadcasts task updates to them. All
// socket writes happen on the Run goroutine.
type Hub struct {
	upgrader     websocket.Upgrader
	logger       *slog.Logger
	registerCh   chan *client
	deregisterCh chan *client
	sendCh       chan *Message
	doneCh       chan struct{}
	running      atomic.Bool

	mu     sync.RWMutex
	active map[string]*model.DownloadTask
}

// NewHub returns a hub ready to Run
func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		upgrader: websocket.Upgrader{
			// the server only listens on loopback
			CheckOrigin: func(*http.Request) bool { return true },
		},
		logger:       logger.With("component", "events"),
		registerCh:   make(chan *client),
		deregisterCh: make(chan *client),
		sendCh:       make(chan *Message, sendBuffer),
		doneCh:       make(chan struct{}),
		active:       make(map[string]*model.DownloadTask),
	}
}

// Run serves the hub until ctx is cancelled, then closes every client
func (h *Hub) Run(ctx context.Context) {
	if !h.running.CompareAndSwap(false, true) {
		h.logger.Warn("event hub already running")
		return
	}

	clients := make(map[uuid.UUID]*client)
	defer func() {
		h.running.Store(false)
		close(h.doneCh)
		for _, c := range clients {
			_ = c.conn.Close()
		}
		h.logger.Info("event hub closed")
	}()

	drop := func(c *client, err error) {
		h.logger.Warn("dropping websocket client", "client", c.id, "error", err)
		delete(clients, c.id)
		_ = c.conn.Close()
	}

	for {
		select {
		case msg := <-h.sendCh:
			for _, c := range clients {
				if err := c.send(msg); err != nil {
					drop(c, err)
				}
			}
		case c := <-h.registerCh:
			clients[c.id] = c
			h.logger.Debug("registered websocket client", "client", c.id)
			if err := c.send(&Message{Type: TypeSnapshot, Client: c.id.String(), Tasks: h.Snapshot()}); err != nil {
				drop(c, err)
			}
		case c := <-h.deregisterCh:
			if _, ok := clients[c.id]; ok {
				delete(clients, c.id)
				h.logger.Debug("deregistered websocket client", "client", c.id)
			}
		case <-ctx.Done():
			return
		}
	}
}

// Notify records task and broadcasts it. Updates are dropped rather than
// blocking the caller when the hub is not keeping up.
func (h *Hub) Notify(task *model.DownloadTask) {
	if task == nil {
		return
	}
	task = task.Clone()

	h.mu.Lock()
	if task.Status.IsFinished() {
		delete(h.active, task.ID)
	} else {
		h.active[task.ID] = task
	}
	h.mu.Unlock()

	if !h.running.Load() {
		return
	}
	select {
	case h.sendCh <- &Message{Type: TypeTask, Task: task}:
	default:
		h.logger.Warn("event buffer full, dropping task update", "task", task.ID)
	}
}

// Snapshot returns the tasks that have not finished, oldest first
func (h *Hub) Snapshot() []*model.DownloadTask {
	h.mu.RLock()
	defer h.mu.RUnlock()

	tasks := make([]*model.DownloadTask, 0, len(h.active))
	for _, t := range h.active {
		tasks = append(tasks, t.Clone())
	}
	sort.Slice(tasks, func(i, j int) bool {
		if tasks[i].StartedAt.Equal(tasks[j].StartedAt) {
			return tasks[i].ID < tasks[j].ID
		}
		return tasks[i].StartedAt.Before(tasks[j].StartedAt)
	})
	return tasks
}

// ServeHTTP upgrades the request to a websocket and keeps the client
// registered until it disconnects
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !h.running.Load() {
		http.Error(w, "event hub not running", http.StatusServiceUnavailable)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", "error", err)
		return
	}

	c := &client{id: uuid.New(), conn: conn}
	select {
	case h.registerCh <- c:
	case <-h.doneCh:
		_ = conn.Close()
		return
	}

	defer func() {
		select {
		case h.deregisterCh <- c:
		case <-h.doneCh:
		}
		_ = conn.Close()
	}()

	// Clients only listen; reading drives ping handling and detects close.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
