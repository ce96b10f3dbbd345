// Package hub fans dashboard snapshots out to connected WebSocket
// clients. Each snapshot is serialized once and every subscriber gets
// the identical payload; one subscriber's failure never blocks the
// rest.
package hub

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Envelope types pushed to clients.
const (
	// TypeUpdate carries the full snapshot including tailed logs.
	TypeUpdate = "update"

	// TypeState carries the lightweight state-only snapshot.
	TypeState = "statepm2"
)

// Envelope is one outbound server message.
type Envelope struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// DefaultSendBuffer is the per-client outbound queue depth. The
// dashboard is latest-snapshot-wins, so a deep queue only adds staleness.
const DefaultSendBuffer = 16

// writeTimeout bounds a single WebSocket write so one wedged client
// can't hold its writer goroutine forever.
const writeTimeout = 10 * time.Second

// Client is one connected dashboard subscriber. The hub owns the write
// side of the connection; the caller keeps the read side.
type Client struct {
	id   string
	conn *websocket.Conn
	send chan []byte
	hub  *Hub
}

// ID returns the client's connection id (for logging).
func (c *Client) ID() string { return c.id }

// writeLoop drains the send queue to the connection. It exits when the
// hub closes the queue (unregister) or a write fails.
func (c *Client) writeLoop() {
	for msg := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			slog.Warn("dashboard client write failed, dropping",
				"client", c.id,
				"err", err,
			)
			c.hub.Unregister(c)
			break
		}
	}
	_ = c.conn.Close()
}

// Hub maintains the set of connected subscribers.
//
// Membership is the only shared mutable state in the server. Broadcast
// holds the read lock while enqueueing; Unregister closes the send
// queue under the write lock, so an enqueue can never race a close.
type Hub struct {
	mu         sync.RWMutex
	clients    map[*Client]struct{}
	sendBuffer int
}

// New creates an empty hub.
func New() *Hub {
	return &Hub{
		clients:    make(map[*Client]struct{}),
		sendBuffer: DefaultSendBuffer,
	}
}

// Register adds a connection as a subscriber and starts its writer.
// The returned Client is the handle for Unregister.
func (h *Hub) Register(conn *websocket.Conn) *Client {
	c := &Client{
		id:   uuid.NewString(),
		conn: conn,
		send: make(chan []byte, h.sendBuffer),
		hub:  h,
	}

	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	go c.writeLoop()
	return c
}

// Unregister removes a subscriber and closes its connection. Safe to
// call more than once for the same client.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	_, ok := h.clients[c]
	if ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()

	if ok {
		_ = c.conn.Close()
	}
}

// Broadcast serializes the envelope once and enqueues it to every
// current subscriber. A subscriber whose queue is full is treated as
// disconnected and removed — the dashboard is latest-wins, a client
// that can't keep up with snapshots is gone.
func (h *Hub) Broadcast(env Envelope) {
	payload, err := json.Marshal(env)
	if err != nil {
		slog.Error("encoding broadcast envelope", "type", env.Type, "err", err)
		return
	}

	var stalled []*Client
	h.mu.RLock()
	for c := range h.clients {
		select {
		case c.send <- payload:
		default:
			stalled = append(stalled, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range stalled {
		slog.Warn("dropping stalled dashboard client", "client", c.id)
		h.Unregister(c)
	}
}

// Count returns the current number of subscribers.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
