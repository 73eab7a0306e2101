package handlers

import (
	"fmt"
	"net/http"

	"soulsync-backend/internal/middleware"
	"soulsync-backend/internal/services"

	"github.com/go-chi/chi/v5"
)

// CalendarHandler exports dates to external calendars
type CalendarHandler struct {
	dateService *services.DateService
}

// NewCalendarHandler creates a new calendar handler
func NewCalendarHandler(dateService *services.DateService) *CalendarHandler {
	return &CalendarHandler{dateService: dateService}
}

// DownloadICS handles GET /api/v1/dates/{date_id}/calendar.ics
func (h *CalendarHandler) DownloadICS(w http.ResponseWriter, r *http.Request) {
	sess := middleware.GetSession(r.Context())
	dateID := chi.URLParam(r, "date_id")

	date, err := h.dateService.GetDate(r.Context(), sess, dateID)
	if err != nil {
		respondError(w, err.Error(), statusForError(err))
		return
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="soulsync-date-%s.ics"`, date.ID))
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(services.ICalendar(*date)))
}

// GoogleLink handles GET /api/v1/dates/{date_id}/calendar-link
func (h *CalendarHandler) GoogleLink(w http.ResponseWriter, r *http.Request) {
	sess := middleware.GetSession(r.Context())
	dateID := chi.URLParam(r, "date_id")

	date, err := h.dateService.GetDate(r.Context(), sess, dateID)
	if err != nil {
		respondError(w, err.Error(), statusForError(err))
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"url": services.GoogleCalendarLink(*date),
	})
}
