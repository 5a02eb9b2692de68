package server

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const writeTimeout = 5 * time.Second

// hub tracks connected websocket clients and broadcasts snapshot-reload
// notifications to them. Clients only listen; inbound messages are drained
// and discarded.
type hub struct {
	logger   *slog.Logger
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[string]*websocket.Conn
}

func newHub(logger *slog.Logger) *hub {
	return &hub{
		logger: logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // dashboards connect from anywhere
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		clients: make(map[string]*websocket.Conn),
	}
}

// handle upgrades the connection and keeps it registered until it closes.
func (h *hub) handle(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	id := uuid.NewString()
	h.mu.Lock()
	h.clients[id] = conn
	h.mu.Unlock()
	wsClients.Inc()
	h.logger.Debug("websocket client connected", "client", id)

	// Drain inbound frames so pings and close handshakes are processed.
	go func() {
		defer h.drop(id)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// drop unregisters and closes a client.
func (h *hub) drop(id string) {
	h.mu.Lock()
	conn, ok := h.clients[id]
	if ok {
		delete(h.clients, id)
	}
	h.mu.Unlock()

	if ok {
		_ = conn.Close()
		wsClients.Dec()
		h.logger.Debug("websocket client disconnected", "client", id)
	}
}

// broadcast sends a JSON payload to every client, dropping clients whose
// writes fail.
func (h *hub) broadcast(v any) {
	h.mu.Lock()
	conns := make(map[string]*websocket.Conn, len(h.clients))
	for id, c := range h.clients {
		conns[id] = c
	}
	h.mu.Unlock()

	for id, conn := range conns {
		_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := conn.WriteJSON(v); err != nil {
			h.logger.Warn("websocket write failed, dropping client", "client", id, "error", err)
			h.drop(id)
		}
	}
}

// close disconnects all clients.
func (h *hub) close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, conn := range h.clients {
		_ = conn.Close()
		delete(h.clients, id)
		wsClients.Dec()
	}
}
