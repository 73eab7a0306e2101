package handlers

import (
	"net/http"

	"soulsync-backend/internal/middleware"
	"soulsync-backend/internal/services"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // CORS is open for now, same as the REST surface
	},
}

// WebSocketHandler handles live-subscription connections
type WebSocketHandler struct {
	hub           *services.LiveHub
	coupleService *services.CoupleService
}

// NewWebSocketHandler creates a new WebSocket handler
func NewWebSocketHandler(hub *services.LiveHub, coupleService *services.CoupleService) *WebSocketHandler {
	return &WebSocketHandler{hub: hub, coupleService: coupleService}
}

// HandleWebSocket handles GET /ws?token=...
func (h *WebSocketHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	sess, err := middleware.ValidateWebSocketToken(r.URL.Query().Get("token"), h.coupleService)
	if err != nil {
		respondError(w, "invalid token", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("Failed to upgrade WebSocket connection")
		return
	}

	h.hub.Register(sess.CoupleCode, sess.UserID, conn)
	defer h.hub.Unregister(sess.CoupleCode, sess.UserID)

	// Connecting counts as presence
	if err := h.coupleService.Heartbeat(r.Context(), sess); err != nil {
		log.Debug().Err(err).Str("user_id", sess.UserID).Msg("Failed to update last seen")
	}

	log.Info().
		Str("user_id", sess.UserID).
		Str("couple_code", sess.CoupleCode).
		Msg("WebSocket connection established")

	// The hub only pushes; drain reads until the peer goes away
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Error().Err(err).Str("user_id", sess.UserID).Msg("WebSocket error")
			}
			return
		}
	}
}
