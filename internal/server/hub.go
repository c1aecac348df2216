package server

import (
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// clientSendBuffer bounds how far a client may fall behind before it is
	// evicted. Count pushes are already throttled, so a healthy page never
	// comes close.
	clientSendBuffer = 16
	writeTimeout     = 5 * time.Second
)

// Hub tracks connected settings-page clients and fans pushed messages out to
// all of them. Each client gets a buffered send channel drained by its own
// writer goroutine, so Broadcast never blocks on a stalled connection: a
// client that stops reading fills its buffer and is evicted.
type Hub struct {
	logger *slog.Logger

	mu      sync.Mutex
	clients map[*websocket.Conn]chan Message
}

// NewHub creates an empty hub.
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		logger:  logger,
		clients: make(map[*websocket.Conn]chan Message),
	}
}

func (h *Hub) register(conn *websocket.Conn) {
	send := make(chan Message, clientSendBuffer)
	h.mu.Lock()
	h.clients[conn] = send
	h.mu.Unlock()
	go h.writeLoop(conn, send)
	h.log("websocket client connected")
}

func (h *Hub) unregister(conn *websocket.Conn) {
	h.mu.Lock()
	send, ok := h.clients[conn]
	if ok {
		delete(h.clients, conn)
		close(send)
		_ = conn.Close()
	}
	h.mu.Unlock()
	if ok {
		h.log("websocket client disconnected")
	}
}

// writeLoop drains one client's send channel. Write deadlines bound how long
// a half-dead connection can hold the goroutine.
func (h *Hub) writeLoop(conn *websocket.Conn, send <-chan Message) {
	for msg := range send {
		_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := conn.WriteJSON(msg); err != nil {
			if h.logger != nil {
				h.logger.Debug("websocket write failed", "error", err.Error())
			}
			h.unregister(conn)
			for range send {
			}
			return
		}
	}
}

// Broadcast queues a message for every connected client, evicting clients
// whose send buffer is full. The channel sends are non-blocking, so this is
// safe to call from notification paths that must not stall.
func (h *Hub) Broadcast(msg Message) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn, send := range h.clients {
		select {
		case send <- msg:
		default:
			delete(h.clients, conn)
			close(send)
			_ = conn.Close()
			if h.logger != nil {
				h.logger.Debug("websocket client evicted, send buffer full")
			}
		}
	}
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn, send := range h.clients {
		delete(h.clients, conn)
		close(send)
		_ = conn.Close()
	}
}

func (h *Hub) log(message string) {
	if h.logger != nil {
		h.logger.Debug(message)
	}
}
