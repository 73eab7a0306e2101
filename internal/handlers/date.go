package handlers

import (
	"encoding/json"
	"net/http"

	"soulsync-backend/internal/middleware"
	"soulsync-backend/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// DateHandler handles date-related HTTP requests
type DateHandler struct {
	dateService *services.DateService
}

// NewDateHandler creates a new date handler
func NewDateHandler(dateService *services.DateService) *DateHandler {
	return &DateHandler{dateService: dateService}
}

// CreateDateRequest handles POST /api/v1/dates/requests
func (h *DateHandler) CreateDateRequest(w http.ResponseWriter, r *http.Request) {
	h.create(w, r, true)
}

// CreateDate handles POST /api/v1/dates
func (h *DateHandler) CreateDate(w http.ResponseWriter, r *http.Request) {
	h.create(w, r, false)
}

func (h *DateHandler) create(w http.ResponseWriter, r *http.Request, asRequest bool) {
	sess := middleware.GetSession(r.Context())

	var input services.DateInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if input.Title == "" {
		respondError(w, "title is required", http.StatusBadRequest)
		return
	}
	if input.DateTime.IsZero() {
		respondError(w, "date_time is required", http.StatusBadRequest)
		return
	}

	var created interface{}
	var err error
	if asRequest {
		created, err = h.dateService.CreateDateRequest(r.Context(), sess, input)
	} else {
		created, err = h.dateService.CreateDate(r.Context(), sess, input)
	}
	if err != nil {
		log.Error().
			Err(err).
			Str("user_id", sess.UserID).
			Str("title", input.Title).
			Msg("Failed to create date")
		respondError(w, err.Error(), statusForError(err))
		return
	}

	respondJSON(w, http.StatusCreated, created)
}

// ListDates handles GET /api/v1/dates
func (h *DateHandler) ListDates(w http.ResponseWriter, r *http.Request) {
	sess := middleware.GetSession(r.Context())

	lists, err := h.dateService.ListDates(r.Context(), sess)
	if err != nil {
		log.Error().Err(err).Str("couple_code", sess.CoupleCode).Msg("Failed to list dates")
		respondError(w, err.Error(), statusForError(err))
		return
	}

	switch view := r.URL.Query().Get("view"); view {
	case "upcoming":
		respondJSON(w, http.StatusOK, lists.Upcoming)
	case "past":
		respondJSON(w, http.StatusOK, lists.Past)
	case "pending":
		respondJSON(w, http.StatusOK, lists.PendingForMe)
	case "my-pending":
		respondJSON(w, http.StatusOK, lists.MyPending)
	case "declined":
		respondJSON(w, http.StatusOK, lists.Declined)
	case "":
		respondJSON(w, http.StatusOK, lists)
	default:
		respondError(w, "unknown view", http.StatusBadRequest)
	}
}

// GetDate handles GET /api/v1/dates/{date_id}
func (h *DateHandler) GetDate(w http.ResponseWriter, r *http.Request) {
	sess := middleware.GetSession(r.Context())
	dateID := chi.URLParam(r, "date_id")

	date, err := h.dateService.GetDate(r.Context(), sess, dateID)
	if err != nil {
		respondError(w, err.Error(), statusForError(err))
		return
	}
	respondJSON(w, http.StatusOK, date)
}

// AcceptDate handles POST /api/v1/dates/{date_id}/accept
func (h *DateHandler) AcceptDate(w http.ResponseWriter, r *http.Request) {
	sess := middleware.GetSession(r.Context())
	dateID := chi.URLParam(r, "date_id")

	date, err := h.dateService.AcceptDateRequest(r.Context(), sess, dateID)
	if err != nil {
		log.Error().
			Err(err).
			Str("user_id", sess.UserID).
			Str("date_id", dateID).
			Msg("Failed to accept date request")
		respondError(w, err.Error(), statusForError(err))
		return
	}

	log.Info().
		Str("user_id", sess.UserID).
		Str("date_id", dateID).
		Msg("Date request accepted")

	respondJSON(w, http.StatusOK, date)
}

// DeclineDateRequest represents the request body for declining a date
type DeclineDateRequest struct {
	Reason string `json:"reason"`
}

// DeclineDate handles POST /api/v1/dates/{date_id}/decline
func (h *DateHandler) DeclineDate(w http.ResponseWriter, r *http.Request) {
	sess := middleware.GetSession(r.Context())
	dateID := chi.URLParam(r, "date_id")

	var req DeclineDateRequest
	if r.Body != nil {
		// Reason is optional; ignore decode errors from an empty body
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	date, err := h.dateService.DeclineDateRequest(r.Context(), sess, dateID, req.Reason)
	if err != nil {
		log.Error().
			Err(err).
			Str("user_id", sess.UserID).
			Str("date_id", dateID).
			Msg("Failed to decline date request")
		respondError(w, err.Error(), statusForError(err))
		return
	}

	log.Info().
		Str("user_id", sess.UserID).
		Str("date_id", dateID).
		Msg("Date request declined")

	respondJSON(w, http.StatusOK, date)
}

// CompleteDate handles POST /api/v1/dates/{date_id}/complete
func (h *DateHandler) CompleteDate(w http.ResponseWriter, r *http.Request) {
	sess := middleware.GetSession(r.Context())
	dateID := chi.URLParam(r, "date_id")

	date, err := h.dateService.CompleteDate(r.Context(), sess, dateID)
	if err != nil {
		respondError(w, err.Error(), statusForError(err))
		return
	}
	respondJSON(w, http.StatusOK, date)
}

// UpdateDate handles PUT /api/v1/dates/{date_id}
func (h *DateHandler) UpdateDate(w http.ResponseWriter, r *http.Request) {
	sess := middleware.GetSession(r.Context())
	dateID := chi.URLParam(r, "date_id")

	var input services.DateInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	date, err := h.dateService.UpdateDate(r.Context(), sess, dateID, input)
	if err != nil {
		log.Error().
			Err(err).
			Str("user_id", sess.UserID).
			Str("date_id", dateID).
			Msg("Failed to update date")
		respondError(w, err.Error(), statusForError(err))
		return
	}
	respondJSON(w, http.StatusOK, date)
}

// DeleteDate handles DELETE /api/v1/dates/{date_id}
func (h *DateHandler) DeleteDate(w http.ResponseWriter, r *http.Request) {
	sess := middleware.GetSession(r.Context())
	dateID := chi.URLParam(r, "date_id")

	if err := h.dateService.DeleteDate(r.Context(), sess, dateID); err != nil {
		log.Error().
			Err(err).
			Str("user_id", sess.UserID).
			Str("date_id", dateID).
			Msg("Failed to delete date")
		respondError(w, err.Error(), statusForError(err))
		return
	}

	log.Info().
		Str("user_id", sess.UserID).
		Str("date_id", dateID).
		Msg("Date deleted")

	w.WriteHeader(http.StatusNoContent)
}
