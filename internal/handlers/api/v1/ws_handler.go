package v1

import (
	"net/http"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"failfeed/internal/middleware"
	"failfeed/internal/push"
)

// WSHandler upgrades authenticated clients to a websocket for
// real-time notifications.
type WSHandler struct {
	hub      *push.Hub
	upgrader websocket.Upgrader
	logger   *zap.Logger
}

// NewWSHandler creates a websocket handler.
func NewWSHandler(hub *push.Hub, logger *zap.Logger) *WSHandler {
	return &WSHandler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		logger: logger,
	}
}

// Connect handles GET /ws. The connection is held open for server
// pushes; client frames are read only to detect disconnects.
func (h *WSHandler) Connect(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFrom(r.Context())

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("Websocket upgrade failed",
			zap.Int64("user_id", userID),
			zap.Error(err),
		)
		return
	}

	h.hub.Register(userID, conn)
	go h.readLoop(userID, conn)
}

func (h *WSHandler) readLoop(userID int64, conn *websocket.Conn) {
	defer h.hub.Unregister(userID, conn)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
