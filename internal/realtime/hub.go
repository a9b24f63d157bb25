package realtime

import (
	"sync"

	"github.com/gorilla/websocket"
)

// Event is the wire envelope pushed to connected clients.
type Event struct {
	Kind    string `json:"kind"` // "notification" or "message"
	Payload any    `json:"payload"`
}

// Conn wraps a websocket connection with the write serialization
// gorilla/websocket requires: at most one writer at a time. Reads are
// left to the single read loop and need no locking.
type Conn struct {
	mu sync.Mutex
	ws *websocket.Conn
}

func (c *Conn) WriteJSON(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ws.WriteJSON(v)
}

func (c *Conn) Ping() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ws.WriteMessage(websocket.PingMessage, nil)
}

func (c *Conn) Close() error { return c.ws.Close() }

// Hub tracks one websocket connection per user. A reconnect replaces
// the previous connection.
type Hub struct {
	connections map[int64]*Conn
	mutex       sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		connections: make(map[int64]*Conn),
	}
}

// Register stores the connection and returns the write-serialized
// wrapper every writer (pushes, pings) must go through.
func (h *Hub) Register(userID int64, ws *websocket.Conn) *Conn {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if old, exists := h.connections[userID]; exists && old != nil {
		_ = old.Close()
	}

	c := &Conn{ws: ws}
	h.connections[userID] = c
	return c
}

func (h *Hub) Unregister(userID int64) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if c, exists := h.connections[userID]; exists && c != nil {
		_ = c.Close()
		delete(h.connections, userID)
	}
}

// SendToUser pushes an event to the user's connection. Returns false when
// the user is offline or the write fails (the connection is dropped).
func (h *Hub) SendToUser(userID int64, event Event) bool {
	h.mutex.RLock()
	c, exists := h.connections[userID]
	h.mutex.RUnlock()

	if !exists || c == nil {
		return false
	}

	if err := c.WriteJSON(event); err != nil {
		h.Unregister(userID)
		return false
	}

	return true
}

func (h *Hub) IsOnline(userID int64) bool {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	_, exists := h.connections[userID]
	return exists
}

func (h *Hub) OnlineCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	return len(h.connections)
}

func (h *Hub) Close() {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	for userID, c := range h.connections {
		if c != nil {
			_ = c.Close()
		}
		delete(h.connections, userID)
	}
}
