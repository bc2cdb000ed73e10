package notify

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

const defaultWriteTimeout = time.Second

// Hub is a WebSocket notifier. Every connected client counts as a
// subscriber with notifications enabled; samples go out as binary
// frames holding the raw record.
type Hub struct {
	mu           sync.Mutex
	clients      map[*websocket.Conn]struct{}
	closed       bool
	upgrader     websocket.Upgrader
	writeTimeout time.Duration
	logger       *zap.Logger
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		clients: make(map[*websocket.Conn]struct{}),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		writeTimeout: defaultWriteTimeout,
		logger:       logger,
	}
}

// ServeHTTP upgrades the request and registers the client until it
// disconnects. Once the hub is closed new subscribers are refused.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.isClosed() {
		http.Error(w, "relay shutting down", http.StatusServiceUnavailable)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("[websocket] upgrade error", zap.Error(err), zap.String("remote", r.RemoteAddr))
		return
	}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		h.sendGoingAway(conn)
		_ = conn.Close()
		return
	}
	h.clients[conn] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()
	h.logger.Info("[websocket] subscriber connected", zap.String("remote", r.RemoteAddr), zap.Int("subscribers", n))

	go h.readLoop(conn)
}

// readLoop drains client frames so close and ping are processed, and
// drops the client when its connection ends.
func (h *Hub) readLoop(conn *websocket.Conn) {
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			h.drop(conn)
			return
		}
	}
}

func (h *Hub) drop(conn *websocket.Conn) {
	h.mu.Lock()
	_, ok := h.clients[conn]
	delete(h.clients, conn)
	n := len(h.clients)
	h.mu.Unlock()

	if ok {
		_ = conn.Close()
		h.logger.Info("[websocket] subscriber gone", zap.String("remote", conn.RemoteAddr().String()), zap.Int("subscribers", n))
	}
}

func (h *Hub) Ready() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients) > 0
}

func (h *Hub) snapshot() []*websocket.Conn {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]*websocket.Conn, 0, len(h.clients))
	for c := range h.clients {
		out = append(out, c)
	}
	return out
}

// Notify writes payload to every subscriber. Clients whose write fails
// are dropped. It fails only when no subscriber received the payload.
func (h *Hub) Notify(ctx context.Context, payload []byte) error {
	clients := h.snapshot()
	if len(clients) == 0 {
		return ErrNoSubscribers
	}

	deadline := time.Now().Add(h.writeTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	var errs error
	delivered := 0
	for _, c := range clients {
		_ = c.SetWriteDeadline(deadline)
		if err := c.WriteMessage(websocket.BinaryMessage, payload); err != nil {
			errs = multierr.Append(errs, err)
			h.drop(c)
			continue
		}
		delivered++
	}

	if delivered == 0 {
		return errs
	}
	return nil
}

func (h *Hub) isClosed() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.closed
}

func (h *Hub) sendGoingAway(conn *websocket.Conn) {
	msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "relay shutting down")
	_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(h.writeTimeout))
}

// Close disconnects every subscriber and refuses later ones.
func (h *Hub) Close() error {
	h.mu.Lock()
	clients := h.clients
	h.clients = make(map[*websocket.Conn]struct{})
	h.closed = true
	h.mu.Unlock()

	var errs error
	for c := range clients {
		h.sendGoingAway(c)
		errs = multierr.Append(errs, c.Close())
	}
	return errs
}
