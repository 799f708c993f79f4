package ws

import (
	"encoding/json"
	"sync"

	"garmentscore/internal/logger"
)

// MessageType defines the type of WebSocket message
type MessageType string

// Feed message types besides the service events
const (
	MsgConnected MessageType = "connected"
	MsgError     MessageType = "error"
)

// Message is the WebSocket envelope format
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Hub fans admin feed messages out to every connected dashboard
type Hub struct {
	conns map[*Connection]bool

	mu  sync.RWMutex
	log *logger.Logger

	// Channels for coordination
	register   chan *Connection
	unregister chan *Connection
	broadcast  chan *Message
	done       chan struct{}
	closeOnce  sync.Once
}

// Connection represents a WebSocket connection of one admin
type Connection struct {
	AdminID string
	Send    chan []byte
	Hub     *Hub
}

// NewHub creates a new WebSocket hub and starts its loop
func NewHub(log *logger.Logger) *Hub {
	h := &Hub{
		conns:      make(map[*Connection]bool),
		log:        log,
		register:   make(chan *Connection),
		unregister: make(chan *Connection),
		broadcast:  make(chan *Message, 256),
		done:       make(chan struct{}),
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	for {
		select {
		case conn := <-h.register:
			h.mu.Lock()
			h.conns[conn] = true
			h.mu.Unlock()
			h.log.Info("admin connected to live feed", "admin_id", conn.AdminID)

		case conn := <-h.unregister:
			h.mu.Lock()
			if h.conns[conn] {
				delete(h.conns, conn)
				close(conn.Send)
				h.log.Info("admin disconnected from live feed", "admin_id", conn.AdminID)
			}
			h.mu.Unlock()

		case msg := <-h.broadcast:
			data, err := json.Marshal(msg)
			if err != nil {
				h.log.Error("encode feed message", "type", msg.Type, "error", err)
				continue
			}
			h.mu.RLock()
			for conn := range h.conns {
				select {
				case conn.Send <- data:
				default:
					// Drop message if buffer full
				}
			}
			h.mu.RUnlock()

		case <-h.done:
			h.mu.Lock()
			for conn := range h.conns {
				delete(h.conns, conn)
				close(conn.Send)
			}
			h.mu.Unlock()
			return
		}
	}
}

// Register adds a connection. It returns false once the hub is closed.
func (h *Hub) Register(conn *Connection) bool {
	select {
	case h.register <- conn:
		return true
	case <-h.done:
		return false
	}
}

// Unregister removes a connection
func (h *Hub) Unregister(conn *Connection) {
	select {
	case h.unregister <- conn:
	case <-h.done:
	}
}

// Count returns the number of connected admins
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

// Close disconnects everyone and stops the hub loop
func (h *Hub) Close() {
	h.closeOnce.Do(func() { close(h.done) })
}

// BroadcastToAdmins sends a message to every admin (implements service.Broadcaster).
// Never blocks the caller; messages are dropped when the hub is saturated.
func (h *Hub) BroadcastToAdmins(msgType string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		h.log.Error("encode feed payload", "type", msgType, "error", err)
		return
	}
	select {
	case h.broadcast <- &Message{Type: MessageType(msgType), Payload: data}:
	default:
		h.log.Warn("live feed saturated, dropping message", "type", msgType)
	}
}
