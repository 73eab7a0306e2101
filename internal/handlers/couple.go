package handlers

import (
	"encoding/json"
	"net/http"

	"soulsync-backend/internal/middleware"
	"soulsync-backend/internal/services"

	"github.com/rs/zerolog/log"
)

// CoupleHandler handles couple-related HTTP requests
type CoupleHandler struct {
	coupleService *services.CoupleService
}

// NewCoupleHandler creates a new couple handler
func NewCoupleHandler(coupleService *services.CoupleService) *CoupleHandler {
	return &CoupleHandler{coupleService: coupleService}
}

// CreateCoupleRequest represents the request body for creating a couple
type CreateCoupleRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Timezone string `json:"timezone"`
}

// CreateCouple handles POST /api/v1/couples
func (h *CoupleHandler) CreateCouple(w http.ResponseWriter, r *http.Request) {
	var req CreateCoupleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Email == "" || req.Name == "" {
		respondError(w, "email and name are required", http.StatusBadRequest)
		return
	}

	result, err := h.coupleService.CreateCouple(r.Context(), req.Email, req.Name, req.Timezone)
	if err != nil {
		log.Error().Err(err).Msg("Failed to create couple")
		respondError(w, err.Error(), statusForError(err))
		return
	}

	log.Info().
		Str("couple_code", result.CoupleCode).
		Str("user_id", result.UserID).
		Msg("Couple created")

	respondJSON(w, http.StatusOK, result)
}

// JoinCoupleRequest represents the request body for joining a couple
type JoinCoupleRequest struct {
	CoupleCode string `json:"couple_code"`
	Email      string `json:"email"`
	Name       string `json:"name"`
	Timezone   string `json:"timezone"`
}

// JoinCouple handles POST /api/v1/couples/join
func (h *CoupleHandler) JoinCouple(w http.ResponseWriter, r *http.Request) {
	var req JoinCoupleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.CoupleCode == "" {
		respondError(w, "couple_code is required", http.StatusBadRequest)
		return
	}
	if req.Email == "" || req.Name == "" {
		respondError(w, "email and name are required", http.StatusBadRequest)
		return
	}

	result, err := h.coupleService.JoinCouple(r.Context(), req.CoupleCode, req.Email, req.Name, req.Timezone)
	if err != nil {
		log.Error().
			Err(err).
			Str("couple_code", req.CoupleCode).
			Msg("Failed to join couple")
		respondError(w, err.Error(), statusForError(err))
		return
	}

	log.Info().
		Str("couple_code", result.CoupleCode).
		Str("user_id", result.UserID).
		Msg("Partner joined couple")

	respondJSON(w, http.StatusOK, result)
}

// RecoverRequest represents the request body for session recovery
type RecoverRequest struct {
	RecoveryCode string `json:"recovery_code"`
	Email        string `json:"email"`
}

// Recover handles POST /api/v1/couples/recover
func (h *CoupleHandler) Recover(w http.ResponseWriter, r *http.Request) {
	var req RecoverRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.RecoveryCode == "" || req.Email == "" {
		respondError(w, "recovery_code and email are required", http.StatusBadRequest)
		return
	}

	result, err := h.coupleService.RecoverSession(r.Context(), req.RecoveryCode, req.Email)
	if err != nil {
		log.Error().Err(err).Msg("Failed to recover session")
		// Do not distinguish unknown codes from unknown emails
		respondError(w, "recovery code or email not found", http.StatusNotFound)
		return
	}

	log.Info().
		Str("couple_code", result.CoupleCode).
		Str("user_id", result.UserID).
		Msg("Session recovered")

	respondJSON(w, http.StatusOK, result)
}

// Me handles GET /api/v1/couples/me
func (h *CoupleHandler) Me(w http.ResponseWriter, r *http.Request) {
	sess := middleware.GetSession(r.Context())

	couple, err := h.coupleService.GetCouple(r.Context(), sess.CoupleCode)
	if err != nil {
		log.Error().Err(err).Str("couple_code", sess.CoupleCode).Msg("Failed to get couple")
		respondError(w, err.Error(), statusForError(err))
		return
	}

	type memberView struct {
		UserID   string `json:"user_id"`
		Name     string `json:"name"`
		Email    string `json:"email"`
		Timezone string `json:"timezone"`
		Online   bool   `json:"online"`
		IsMe     bool   `json:"is_me"`
	}
	members := make([]memberView, 0, len(couple.Users))
	for _, u := range couple.Users {
		members = append(members, memberView{
			UserID:   u.UserID,
			Name:     u.Name,
			Email:    u.Email,
			Timezone: u.Timezone,
			Online:   h.coupleService.IsOnline(u),
			IsMe:     u.UserID == sess.UserID,
		})
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"couple_code": couple.Code,
		"created_at":  couple.CreatedAt,
		"members":     members,
	})
}

// Heartbeat handles POST /api/v1/couples/heartbeat
func (h *CoupleHandler) Heartbeat(w http.ResponseWriter, r *http.Request) {
	sess := middleware.GetSession(r.Context())

	if err := h.coupleService.Heartbeat(r.Context(), sess); err != nil {
		log.Error().Err(err).Str("user_id", sess.UserID).Msg("Failed to update last seen")
		respondError(w, err.Error(), statusForError(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SavePushTokenRequest represents the request body for saving a push token
type SavePushTokenRequest struct {
	PushToken string `json:"push_token"`
}

// SavePushToken handles PUT /api/v1/couples/push-token
func (h *CoupleHandler) SavePushToken(w http.ResponseWriter, r *http.Request) {
	sess := middleware.GetSession(r.Context())

	var req SavePushTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.coupleService.SavePushToken(r.Context(), sess, req.PushToken); err != nil {
		log.Error().Err(err).Str("user_id", sess.UserID).Msg("Failed to save push token")
		respondError(w, err.Error(), statusForError(err))
		return
	}

	log.Info().Str("user_id", sess.UserID).Msg("Push token saved")
	w.WriteHeader(http.StatusNoContent)
}
