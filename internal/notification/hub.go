package notification

import (
	"context"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"fertigation.io/farmwatch/internal/pkg/logger"
)

const (
	wsWriteWait   = 5 * time.Second
	wsReadLimit   = 512
	wsPongWait    = 60 * time.Second
	wsPingPeriod  = wsPongWait * 9 / 10
	wsCloseReason = "server shutting down"
)

type wsClient struct {
	conn   *websocket.Conn
	userID string
	// mu serializes writes; gorilla connections allow one writer at a time.
	mu sync.Mutex
}

func (c *wsClient) write(msgType int, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
	return c.conn.WriteMessage(msgType, data)
}

// Hub keeps the websocket subscribers of the alert stream and broadcasts
// events to them. It is a Sink.
type Hub struct {
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	clients map[*wsClient]struct{}
}

// NewHub creates a hub accepting upgrades from allowedOrigins. An empty
// list accepts same-origin requests only; allowAll skips the check.
func NewHub(allowedOrigins []string, allowAll bool) *Hub {
	h := &Hub{clients: make(map[*wsClient]struct{})}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
	}
	switch {
	case allowAll:
		h.upgrader.CheckOrigin = func(*http.Request) bool { return true }
	case len(allowedOrigins) > 0:
		h.upgrader.CheckOrigin = func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || slices.Contains(allowedOrigins, origin)
		}
	}
	return h
}

func (h *Hub) Name() string { return "websocket" }

// Serve upgrades the request and blocks until the subscriber disconnects.
// Subscribers only receive; anything they send is discarded.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, userID string) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	client := &wsClient{conn: conn, userID: userID}
	h.add(client)
	logger.Debug("alert stream subscriber connected",
		zap.String("user_id", userID),
		zap.Int("subscribers", h.Count()),
	)
	defer func() {
		h.remove(client)
		logger.Debug("alert stream subscriber disconnected",
			zap.String("user_id", userID),
			zap.Int("subscribers", h.Count()),
		)
	}()

	conn.SetReadLimit(wsReadLimit)
	_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Debug("alert stream read error", zap.Error(err))
			}
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
	}
}

// Send broadcasts e to every subscriber. Subscribers whose write fails are
// dropped rather than reported.
func (h *Hub) Send(ctx context.Context, e Event) error {
	payload, err := e.Encode()
	if err != nil {
		return err
	}
	for _, c := range h.snapshot() {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := c.write(websocket.TextMessage, payload); err != nil {
			logger.Debug("dropping alert stream subscriber", zap.String("user_id", c.userID), zap.Error(err))
			h.remove(c)
		}
	}
	return nil
}

// Ping sends a keepalive to every subscriber, dropping dead ones.
func (h *Hub) Ping() {
	for _, c := range h.snapshot() {
		if err := c.write(websocket.PingMessage, nil); err != nil {
			h.remove(c)
		}
	}
}

// Keepalive pings subscribers until ctx is done. Without it idle
// subscribers hit the read deadline and are dropped.
func (h *Hub) Keepalive(ctx context.Context) {
	ticker := time.NewTicker(wsPingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			h.Ping()
		}
	}
}

// Close disconnects every subscriber.
func (h *Hub) Close() {
	msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, wsCloseReason)
	for _, c := range h.snapshot() {
		_ = c.write(websocket.CloseMessage, msg)
		h.remove(c)
	}
}

// Count returns the number of connected subscribers.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) add(c *wsClient) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

func (h *Hub) remove(c *wsClient) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		_ = c.conn.Close()
	}
	h.mu.Unlock()
}

func (h *Hub) snapshot() []*wsClient {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]*wsClient, 0, len(h.clients))
	for c := range h.clients {
		out = append(out, c)
	}
	return out
}
