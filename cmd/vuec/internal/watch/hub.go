package watch

import (
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/gorilla/websocket"
)

// Message types sent to clients.
const (
	TypeAck         = "ACK"
	TypeDiagnostics = "DIAGNOSTICS"
	TypeRemoved     = "REMOVED"
	TypeError       = "ERROR"
)

// Message is one websocket frame.
type Message struct {
	Type     string   `json:"type"`
	File     string   `json:"file,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
	Error    string   `json:"error,omitempty"`
}

// Hub tracks websocket clients and broadcasts diagnostics to them.
type Hub struct {
	mu       sync.Mutex
	clients  map[*websocket.Conn]bool
	upgrader websocket.Upgrader
	log      *slog.Logger
}

// NewHub creates a hub that accepts connections from any origin.
func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		clients: make(map[*websocket.Conn]bool),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		log: logger.With(slog.String("component", "hub")),
	}
}

// ServeHTTP upgrades the request and serves the client until it disconnects.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", slog.String("error", err.Error()))
		return
	}
	defer conn.Close()

	h.mu.Lock()
	h.clients[conn] = true
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		delete(h.clients, conn)
		h.mu.Unlock()
	}()

	for {
		var msg Message
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Debug("websocket closed", slog.String("error", err.Error()))
			}
			return
		}

		switch strings.ToUpper(msg.Type) {
		case "HELLO":
			h.mu.Lock()
			err := conn.WriteJSON(Message{Type: TypeAck})
			h.mu.Unlock()
			if err != nil {
				return
			}
		default:
			h.log.Debug("unknown websocket message", slog.String("type", msg.Type))
		}
	}
}

// Broadcast sends msg to every connected client.
func (h *Hub) Broadcast(msg Message) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients {
		if err := client.WriteJSON(msg); err != nil {
			h.log.Warn("failed to send message to client", slog.String("error", err.Error()))
		}
	}
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}
