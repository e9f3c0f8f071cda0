// Package relay fans real-time events out to WebSocket subscribers grouped by
// topic, with an optional RabbitMQ mirror for other services.
package relay

import (
	"context"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"ride-share/internal/general/logger"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// conn is the slice of *websocket.Conn the hub needs. Narrowing it keeps the
// hub testable without a network socket.
type conn interface {
	WriteJSON(v any) error
	ReadMessage() (messageType int, p []byte, err error)
	Close() error
}

// subscriber wraps a conn with a write mutex. gorilla/websocket allows one
// concurrent writer; this enforces that.
type subscriber struct {
	mu sync.Mutex
	c  conn
}

func (s *subscriber) writeJSON(v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.c.WriteJSON(v)
}

// Hub tracks WebSocket subscribers per topic.
type Hub struct {
	mu     sync.RWMutex
	rooms  map[string][]*subscriber
	logger *logger.Logger
}

// NewHub creates an empty hub.
func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		rooms:  make(map[string][]*subscriber),
		logger: log,
	}
}

// Attach subscribes a connection to the given topics.
func (h *Hub) Attach(c conn, topics ...string) *subscriber {
	sub := &subscriber{c: c}

	h.mu.Lock()
	for _, t := range topics {
		h.rooms[t] = append(h.rooms[t], sub)
	}
	h.mu.Unlock()

	return sub
}

// Detach unsubscribes a connection from the given topics and closes it.
func (h *Hub) Detach(sub *subscriber, topics ...string) {
	h.mu.Lock()
	for _, t := range topics {
		subs := h.rooms[t]
		for i, s := range subs {
			if s == sub {
				h.rooms[t] = append(subs[:i], subs[i+1:]...)
				break
			}
		}
		if len(h.rooms[t]) == 0 {
			delete(h.rooms, t)
		}
	}
	h.mu.Unlock()

	_ = sub.c.Close()
}

// Broadcast writes payload as JSON to every subscriber of a topic, in attach
// order. Delivery is at-most-once: a failed write drops that subscriber's
// message, never retries it, and evicts the subscriber from every room so a
// dead connection stops eating writes before its read loop notices.
func (h *Hub) Broadcast(topic string, payload any) {
	h.mu.RLock()
	subs := make([]*subscriber, len(h.rooms[topic]))
	copy(subs, h.rooms[topic])
	h.mu.RUnlock()

	for _, s := range subs {
		if err := s.writeJSON(payload); err != nil {
			h.evict(s)
			h.logger.Debug(context.Background(), "ws_write_failed", "Dropped subscriber after failed write", map[string]any{
				"topic": topic,
			})
		}
	}
}

// evict removes a subscriber from every room and closes its connection.
func (h *Hub) evict(sub *subscriber) {
	h.mu.Lock()
	for t, subs := range h.rooms {
		for i, s := range subs {
			if s == sub {
				h.rooms[t] = append(subs[:i], subs[i+1:]...)
				break
			}
		}
		if len(h.rooms[t]) == 0 {
			delete(h.rooms, t)
		}
	}
	h.mu.Unlock()

	_ = sub.c.Close()
}

// Subscribers reports the current subscriber count for a topic.
func (h *Hub) Subscribers(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[topic])
}

// ServeSubscription upgrades the request to a WebSocket, subscribes it to the
// topics, and blocks until the client disconnects.
func (h *Hub) ServeSubscription(w http.ResponseWriter, r *http.Request, topics ...string) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error(r.Context(), "ws_upgrade_failed", "Failed to upgrade to WebSocket", err, nil)
		return
	}

	sub := h.Attach(ws, topics...)
	defer h.Detach(sub, topics...)

	h.logger.Info(r.Context(), "ws_subscribed", "WebSocket subscriber attached", map[string]any{
		"topics": topics,
	})

	// block until the client disconnects
	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			return
		}
	}
}
