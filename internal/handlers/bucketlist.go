package handlers

import (
	"encoding/json"
	"net/http"

	"soulsync-backend/internal/middleware"
	"soulsync-backend/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// BucketListHandler handles bucket-list HTTP requests
type BucketListHandler struct {
	bucketService *services.BucketListService
	hub           *services.LiveHub
}

// NewBucketListHandler creates a new bucket list handler
func NewBucketListHandler(bucketService *services.BucketListService, hub *services.LiveHub) *BucketListHandler {
	return &BucketListHandler{bucketService: bucketService, hub: hub}
}

// CreateItem handles POST /api/v1/bucket-list
func (h *BucketListHandler) CreateItem(w http.ResponseWriter, r *http.Request) {
	sess := middleware.GetSession(r.Context())

	var input services.BucketListInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if input.Title == "" {
		respondError(w, "title is required", http.StatusBadRequest)
		return
	}

	item, err := h.bucketService.CreateItem(r.Context(), sess, input)
	if err != nil {
		log.Error().
			Err(err).
			Str("user_id", sess.UserID).
			Str("title", input.Title).
			Msg("Failed to create bucket list item")
		respondError(w, err.Error(), statusForError(err))
		return
	}

	h.broadcastChange(sess.CoupleCode, item.ID)
	respondJSON(w, http.StatusCreated, item)
}

// ListItems handles GET /api/v1/bucket-list
func (h *BucketListHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	sess := middleware.GetSession(r.Context())

	lists, err := h.bucketService.ListItems(r.Context(), sess)
	if err != nil {
		log.Error().Err(err).Str("couple_code", sess.CoupleCode).Msg("Failed to list bucket list items")
		respondError(w, err.Error(), statusForError(err))
		return
	}
	respondJSON(w, http.StatusOK, lists)
}

// UpdateItem handles PUT /api/v1/bucket-list/{item_id}
func (h *BucketListHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	sess := middleware.GetSession(r.Context())
	itemID := chi.URLParam(r, "item_id")

	var input services.BucketListInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	item, err := h.bucketService.UpdateItem(r.Context(), sess, itemID, input)
	if err != nil {
		log.Error().
			Err(err).
			Str("user_id", sess.UserID).
			Str("item_id", itemID).
			Msg("Failed to update bucket list item")
		respondError(w, err.Error(), statusForError(err))
		return
	}

	h.broadcastChange(sess.CoupleCode, itemID)
	respondJSON(w, http.StatusOK, item)
}

// ToggleRequest represents the request body for toggling completion
type ToggleRequest struct {
	Completed bool `json:"completed"`
}

// ToggleItem handles POST /api/v1/bucket-list/{item_id}/toggle
func (h *BucketListHandler) ToggleItem(w http.ResponseWriter, r *http.Request) {
	sess := middleware.GetSession(r.Context())
	itemID := chi.URLParam(r, "item_id")

	var req ToggleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	item, err := h.bucketService.ToggleComplete(r.Context(), sess, itemID, req.Completed)
	if err != nil {
		log.Error().
			Err(err).
			Str("user_id", sess.UserID).
			Str("item_id", itemID).
			Msg("Failed to toggle bucket list item")
		respondError(w, err.Error(), statusForError(err))
		return
	}

	h.broadcastChange(sess.CoupleCode, itemID)
	respondJSON(w, http.StatusOK, item)
}

// DeleteItem handles DELETE /api/v1/bucket-list/{item_id}
func (h *BucketListHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	sess := middleware.GetSession(r.Context())
	itemID := chi.URLParam(r, "item_id")

	if err := h.bucketService.DeleteItem(r.Context(), sess, itemID); err != nil {
		log.Error().
			Err(err).
			Str("user_id", sess.UserID).
			Str("item_id", itemID).
			Msg("Failed to delete bucket list item")
		respondError(w, err.Error(), statusForError(err))
		return
	}

	h.broadcastChange(sess.CoupleCode, itemID)
	w.WriteHeader(http.StatusNoContent)
}

func (h *BucketListHandler) broadcastChange(coupleCode, itemID string) {
	if h.hub == nil {
		return
	}
	h.hub.BroadcastToCouple(coupleCode, services.LiveMessage{
		Type: services.LiveBucketListChanged,
		Data: map[string]interface{}{"item_id": itemID},
	})
}
