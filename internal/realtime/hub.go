package realtime

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/Silexemple/satoshi-casino21/internal/auth"
	"github.com/Silexemple/satoshi-casino21/internal/blackjack"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Auth happens via the session token, not the origin.
		return true
	},
}

// TableEvent is the lightweight update pushed to every subscriber of a
// table. Clients re-fetch their own filtered view over HTTP; the event never
// carries hidden cards or other players' balances.
type TableEvent struct {
	Type    string           `json:"type"`
	TableID string           `json:"table_id"`
	Status  blackjack.Status `json:"status"`
	Round   int              `json:"round"`
}

// Hub fans table update events out to connected websocket clients. Each
// client subscribes to one table at a time.
type Hub struct {
	mu         sync.RWMutex
	clients    map[*client]struct{}
	jwtManager *auth.JWTManager
}

func NewHub(jwtManager *auth.JWTManager) *Hub {
	return &Hub{
		clients:    make(map[*client]struct{}),
		jwtManager: jwtManager,
	}
}

// TableUpdated broadcasts a table change to every subscriber of that table.
func (h *Hub) TableUpdated(tableID string, status blackjack.Status, round int) {
	event := TableEvent{
		Type:    "table_updated",
		TableID: tableID,
		Status:  status,
		Round:   round,
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		if c.tableID() != tableID {
			continue
		}
		select {
		case c.send <- event:
		default:
			// Slow consumer; drop the event rather than block the hub.
		}
	}
}

// ServeWS handles GET /ws?token=...&table=... and upgrades the connection.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	claims, err := h.jwtManager.ValidateToken(token)
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("Websocket upgrade failed", "error", err)
		return
	}

	c := &client{
		hub:      h,
		conn:     conn,
		send:     make(chan TableEvent, 16),
		playerID: claims.PlayerID,
	}
	c.table.Store(r.URL.Query().Get("table"))

	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	slog.Info("Websocket client connected", "player", claims.PlayerID, "table", c.tableID())

	go c.writePump()
	go c.readPump()
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
}

// ClientCount reports the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
