package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"waypost/internal/service/notify"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period
	pingPeriod = (pongWait * 9) / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// The gateway serves its own UI on localhost
		return true
	},
}

// wsClient represents one connected UI client.
type wsClient struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub pushes notifications to connected UI clients over WebSocket. It is
// the in-app fallback channel: the dispatcher reaches for it when the
// platform notification surface is unavailable.
type Hub struct {
	logger *zap.Logger

	mu      sync.Mutex
	clients map[*wsClient]struct{}
}

// NewHub creates a new hub.
func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		logger:  logger,
		clients: make(map[*wsClient]struct{}),
	}
}

// Notify implements notify.Notifier by broadcasting the notification to
// every connected client. With no client connected there is nothing to
// show the user, so the error surfaces and the dispatcher records a drop.
func (h *Hub) Notify(ctx context.Context, req notify.NotificationRequest) error {
	frame, err := json.Marshal(map[string]interface{}{
		"type":    "notification",
		"payload": req,
		"time":    time.Now(),
	})
	if err != nil {
		return fmt.Errorf("error marshaling notification frame: %w", err)
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.clients) == 0 {
		return fmt.Errorf("no connected clients")
	}

	for client := range h.clients {
		select {
		case client.send <- frame:
		default:
			// Slow consumer; drop the connection rather than block.
			h.removeLocked(client)
		}
	}
	return nil
}

// ServeWS upgrades the connection and keeps it registered until it
// closes.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	client := &wsClient{
		conn: conn,
		send: make(chan []byte, 256),
	}

	h.mu.Lock()
	h.clients[client] = struct{}{}
	h.mu.Unlock()

	h.logger.Debug("websocket client connected", zap.String("remote", r.RemoteAddr))

	go h.writePump(client)
	go h.readPump(client)
}

// Close disconnects all clients.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients {
		h.removeLocked(client)
	}
}

func (h *Hub) remove(client *wsClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(client)
}

func (h *Hub) removeLocked(client *wsClient) {
	if _, ok := h.clients[client]; !ok {
		return
	}
	delete(h.clients, client)
	close(client.send)
	client.conn.Close()
}

// writePump forwards queued frames to the peer and keeps the connection
// alive with pings.
func (h *Hub) writePump(client *wsClient) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		h.remove(client)
	}()

	for {
		select {
		case frame, ok := <-client.send:
			client.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				client.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := client.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		case <-ticker.C:
			client.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := client.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump drains the connection so close frames and pongs are
// processed. The hub is push-only; inbound payloads are discarded.
func (h *Hub) readPump(client *wsClient) {
	defer h.remove(client)

	client.conn.SetReadLimit(1024)
	client.conn.SetReadDeadline(time.Now().Add(pongWait))
	client.conn.SetPongHandler(func(string) error {
		client.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := client.conn.ReadMessage(); err != nil {
			return
		}
	}
}

var _ notify.Notifier = (*Hub)(nil)
