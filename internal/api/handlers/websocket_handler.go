package handlers

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/rajeshwarchowhan1992/task-manager-web-app/internal/auth"
	ws "github.com/rajeshwarchowhan1992/task-manager-web-app/internal/websocket"
	"github.com/rs/zerolog/log"
)

// WebSocketHandler handles upgrading HTTP connections to WebSocket connections.
type WebSocketHandler struct {
	hub *ws.Hub
}

// NewWebSocketHandler creates a new WebSocketHandler.
func NewWebSocketHandler(hub *ws.Hub) *WebSocketHandler {
	return &WebSocketHandler{hub: hub}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Allow all origins (consider tightening this in production).
		return true
	},
}

// Serve handles the WebSocket connection request. Browsers cannot set headers
// on websocket upgrades, so the token travels in the query string.
func (h *WebSocketHandler) Serve(w http.ResponseWriter, r *http.Request) {
	tokenStr := r.URL.Query().Get("token")
	if tokenStr == "" {
		respondError(w, http.StatusUnauthorized, "Missing auth token")
		return
	}

	claims, err := auth.ValidateJWT(tokenStr)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "Invalid auth token")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("Failed to upgrade websocket connection")
		return
	}

	client := ws.NewClient(h.hub, conn, claims.UserID)
	h.hub.Register <- client

	go client.WritePump()
	go func() {
		// Inbound messages are ignored; the socket is push-only. ReadPump
		// still runs to process control frames and detect disconnects.
		client.ReadPump(nil)
		h.hub.Unregister <- client
	}()
}
