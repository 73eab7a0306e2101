package services

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// Live message types pushed to connected clients
const (
	LivePartnerStatus     = "partner_status"
	LiveDateChanged       = "date_changed"
	LiveBucketListChanged = "bucket_list_changed"
	LiveMoodLogged        = "mood_logged"
	LiveError             = "error"
)

// LiveMessage is a message pushed over a live connection. Clients
// re-query on change messages; the payload carries just enough to know
// what changed.
type LiveMessage struct {
	Type    string      `json:"type"`
	Online  *bool       `json:"online,omitempty"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// LiveHub manages WebSocket connections per user and broadcasts
// change notifications within a couple
type LiveHub struct {
	mu      sync.RWMutex
	conns   map[string]*websocket.Conn
	couples map[string]map[string]struct{}
}

// NewLiveHub creates a new live hub
func NewLiveHub() *LiveHub {
	return &LiveHub{
		conns:   make(map[string]*websocket.Conn),
		couples: make(map[string]map[string]struct{}),
	}
}

// Register registers a connection for a couple member. An existing
// connection for the same user is replaced.
func (h *LiveHub) Register(coupleCode, userID string, conn *websocket.Conn) {
	h.mu.Lock()
	if existing, ok := h.conns[userID]; ok {
		existing.Close()
	}
	h.conns[userID] = conn
	members, ok := h.couples[coupleCode]
	if !ok {
		members = make(map[string]struct{})
		h.couples[coupleCode] = members
	}
	members[userID] = struct{}{}
	h.mu.Unlock()

	log.Info().Str("user_id", userID).Str("couple_code", coupleCode).Msg("Live connection registered")

	h.notifyPartnerStatus(coupleCode, userID, true)
}

// Unregister removes a connection for a couple member
func (h *LiveHub) Unregister(coupleCode, userID string) {
	h.mu.Lock()
	if conn, ok := h.conns[userID]; ok {
		conn.Close()
		delete(h.conns, userID)
	}
	if members, ok := h.couples[coupleCode]; ok {
		delete(members, userID)
		if len(members) == 0 {
			delete(h.couples, coupleCode)
		}
	}
	h.mu.Unlock()

	log.Info().Str("user_id", userID).Str("couple_code", coupleCode).Msg("Live connection unregistered")

	h.notifyPartnerStatus(coupleCode, userID, false)
}

// SendToUser sends a message to a specific user
func (h *LiveHub) SendToUser(userID string, message LiveMessage) error {
	h.mu.RLock()
	conn, ok := h.conns[userID]
	h.mu.RUnlock()

	if !ok {
		return fmt.Errorf("user %s is not connected", userID)
	}

	data, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}

// IsOnline checks whether a user has a live connection
func (h *LiveHub) IsOnline(userID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.conns[userID]
	return ok
}

// BroadcastToCouple sends a message to every connected member of a
// couple. Delivery failures are logged and swallowed; live updates are
// best effort.
func (h *LiveHub) BroadcastToCouple(coupleCode string, message LiveMessage) {
	h.mu.RLock()
	var targets []string
	for userID := range h.couples[coupleCode] {
		targets = append(targets, userID)
	}
	h.mu.RUnlock()

	for _, userID := range targets {
		if err := h.SendToUser(userID, message); err != nil {
			log.Debug().
				Err(err).
				Str("user_id", userID).
				Str("couple_code", coupleCode).
				Msg("Failed to push live message")
		}
	}
}

// notifyPartnerStatus tells the other connected members of the couple
// that this user went online or offline
func (h *LiveHub) notifyPartnerStatus(coupleCode, userID string, online bool) {
	h.mu.RLock()
	var targets []string
	for member := range h.couples[coupleCode] {
		if member != userID {
			targets = append(targets, member)
		}
	}
	h.mu.RUnlock()

	for _, member := range targets {
		msg := LiveMessage{Type: LivePartnerStatus, Online: &online}
		if err := h.SendToUser(member, msg); err != nil {
			log.Debug().
				Err(err).
				Str("user_id", member).
				Msg("Failed to notify partner status")
		}
	}
}
