package handlers

import (
	"encoding/json"
	"net/http"

	"soulsync-backend/internal/middleware"
	"soulsync-backend/internal/services"

	"github.com/rs/zerolog/log"
)

// MoodHandler handles mood-related HTTP requests
type MoodHandler struct {
	moodService *services.MoodService
	hub         *services.LiveHub
}

// NewMoodHandler creates a new mood handler
func NewMoodHandler(moodService *services.MoodService, hub *services.LiveHub) *MoodHandler {
	return &MoodHandler{moodService: moodService, hub: hub}
}

// LogMoodRequest represents the request body for logging a mood
type LogMoodRequest struct {
	DateID string `json:"date_id"`
	Mood   string `json:"mood"`
	Notes  string `json:"notes"`
}

// LogMood handles POST /api/v1/moods
func (h *MoodHandler) LogMood(w http.ResponseWriter, r *http.Request) {
	sess := middleware.GetSession(r.Context())

	var req LogMoodRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.DateID == "" || req.Mood == "" {
		respondError(w, "date_id and mood are required", http.StatusBadRequest)
		return
	}

	entry, err := h.moodService.LogMood(r.Context(), sess, req.DateID, req.Mood, req.Notes)
	if err != nil {
		log.Error().
			Err(err).
			Str("user_id", sess.UserID).
			Str("date_id", req.DateID).
			Msg("Failed to log mood")
		respondError(w, err.Error(), statusForError(err))
		return
	}

	if h.hub != nil {
		h.hub.BroadcastToCouple(sess.CoupleCode, services.LiveMessage{
			Type: services.LiveMoodLogged,
			Data: map[string]interface{}{"date_id": req.DateID},
		})
	}

	respondJSON(w, http.StatusCreated, entry)
}

// ListMoods handles GET /api/v1/moods
func (h *MoodHandler) ListMoods(w http.ResponseWriter, r *http.Request) {
	sess := middleware.GetSession(r.Context())
	dateID := r.URL.Query().Get("date_id")

	entries, err := h.moodService.ListMoods(r.Context(), sess, dateID)
	if err != nil {
		log.Error().Err(err).Str("couple_code", sess.CoupleCode).Msg("Failed to list moods")
		respondError(w, err.Error(), statusForError(err))
		return
	}
	respondJSON(w, http.StatusOK, entries)
}
