package ws

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"outfox/internal/app"
)

// Handler handles WebSocket connections
type Handler struct {
	hub      *app.TableHub
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// NewHandler creates a new WebSocket handler
func NewHandler(hub *app.TableHub, logger *slog.Logger) *Handler {
	return &Handler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				// Shared-device screens join by QR code from any origin
				return true
			},
		},
		logger: logger,
	}
}

// ServeHTTP handles WebSocket upgrade requests
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	code := strings.ToUpper(r.URL.Query().Get("table"))
	if code == "" {
		http.Error(w, "table is required", http.StatusBadRequest)
		return
	}

	session, err := h.hub.GetTable(code)
	if err != nil {
		http.Error(w, "Table not found", http.StatusNotFound)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", "error", err)
		return
	}

	clientID := uuid.NewString()
	client := NewClient(conn, session, clientID, h.logger)
	client.sendConnected()
	session.RegisterClient(client)

	h.logger.Info("websocket connected", "tableCode", code, "clientID", clientID)

	client.Run()
}
