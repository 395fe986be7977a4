package visual

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	hubWriteTimeout = 5 * time.Second

	// subscriberBuffer bounds the per-connection outbound queue. A client
	// that falls this far behind is dropped rather than backpressuring the
	// push handlers.
	subscriberBuffer = 8
)

// subscriber owns one connection. All writes go through out and a single
// writer goroutine; gorilla/websocket forbids concurrent writers.
type subscriber struct {
	conn *websocket.Conn
	out  chan []byte
}

// Hub fans now-playing updates out to websocket subscribers. Broadcast only
// marshals and enqueues; each connection's writer goroutine does the network
// writes, so a slow or dead display never stalls a push.
type Hub struct {
	logger   *slog.Logger
	upgrader websocket.Upgrader

	mu   sync.Mutex
	subs map[*subscriber]struct{}
}

func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Display surfaces connect from their own origin.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		subs: make(map[*subscriber]struct{}),
	}
}

// ServeHTTP upgrades the connection and keeps it registered until the peer
// goes away. Subscribers only listen; inbound messages are drained and
// discarded.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	sub := &subscriber{conn: conn, out: make(chan []byte, subscriberBuffer)}
	h.mu.Lock()
	h.subs[sub] = struct{}{}
	n := len(h.subs)
	h.mu.Unlock()
	h.logger.Info("display surface connected", "subscribers", n)

	go h.write(sub)
	go h.drain(sub)
}

func (h *Hub) write(sub *subscriber) {
	for msg := range sub.out {
		_ = sub.conn.SetWriteDeadline(time.Now().Add(hubWriteTimeout))
		if err := sub.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			h.logger.Warn("dropping display subscriber", "error", err)
			h.remove(sub)
			return
		}
	}
}

func (h *Hub) drain(sub *subscriber) {
	defer h.remove(sub)
	for {
		if _, _, err := sub.conn.ReadMessage(); err != nil {
			return
		}
	}
}

// remove is idempotent; out is closed under the same lock that Broadcast
// sends under, so a send on a closed channel cannot happen.
func (h *Hub) remove(sub *subscriber) {
	h.mu.Lock()
	if _, ok := h.subs[sub]; ok {
		delete(h.subs, sub)
		close(sub.out)
		_ = sub.conn.Close()
	}
	h.mu.Unlock()
}

// Broadcast enqueues v as JSON for every subscriber. Subscribers whose queue
// is full are dropped.
func (h *Hub) Broadcast(v any) {
	msg, err := json.Marshal(v)
	if err != nil {
		h.logger.Error("marshal broadcast payload", "error", err)
		return
	}

	var stale []*subscriber
	h.mu.Lock()
	for sub := range h.subs {
		select {
		case sub.out <- msg:
		default:
			stale = append(stale, sub)
		}
	}
	h.mu.Unlock()

	for _, sub := range stale {
		h.logger.Warn("dropping slow display subscriber")
		h.remove(sub)
	}
}

// Subscribers reports the current connection count.
func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}
