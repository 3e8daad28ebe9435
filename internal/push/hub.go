// Package push delivers real-time notifications over websockets.
package push

import (
	"fmt"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Hub tracks open websocket connections per user. A user may hold
// several connections at once (multiple tabs, phone plus laptop).
type Hub struct {
	mu     sync.Mutex
	conns  map[int64]map[*websocket.Conn]bool
	logger *zap.Logger
}

// NewHub creates an empty connection hub.
func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		conns:  make(map[int64]map[*websocket.Conn]bool),
		logger: logger,
	}
}

// Register adds a connection for a user.
func (h *Hub) Register(userID int64, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.conns[userID] == nil {
		h.conns[userID] = make(map[*websocket.Conn]bool)
	}
	h.conns[userID][conn] = true
	h.logger.Debug("Websocket connected",
		zap.Int64("user_id", userID),
		zap.Int("connections", len(h.conns[userID])),
	)
}

// Unregister removes a connection for a user and closes it.
func (h *Hub) Unregister(userID int64, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.dropLocked(userID, conn)
}

// Send writes the payload as JSON to every open connection the user
// has. Connections that fail to write are dropped. Having no open
// connection is not an error; there is simply nobody to deliver to.
func (h *Hub) Send(userID int64, payload any) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	conns := h.conns[userID]
	total := len(conns)
	if total == 0 {
		return nil
	}

	var failed int
	for conn := range conns {
		if err := conn.WriteJSON(payload); err != nil {
			h.logger.Debug("Websocket write failed, dropping connection",
				zap.Int64("user_id", userID),
				zap.Error(err),
			)
			h.dropLocked(userID, conn)
			failed++
		}
	}
	if failed == total {
		return fmt.Errorf("all %d websocket writes failed for user %d", failed, userID)
	}
	return nil
}

// Close shuts down every tracked connection.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for userID, conns := range h.conns {
		for conn := range conns {
			conn.Close()
		}
		delete(h.conns, userID)
	}
}

func (h *Hub) dropLocked(userID int64, conn *websocket.Conn) {
	if conns := h.conns[userID]; conns != nil {
		delete(conns, conn)
		if len(conns) == 0 {
			delete(h.conns, userID)
		}
	}
	conn.Close()
}
