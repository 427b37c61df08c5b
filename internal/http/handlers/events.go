package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"posterforge/internal/domain"
	"posterforge/internal/ics"
)

type exportRequest struct {
	Events []domain.ExtractedEvent `json:"events" validate:"required,min=1"`
}

// ExportEvents serializes the supplied events as an iCalendar feed so the
// detected dates can be imported into any calendar client.
func (a *App) ExportEvents(w http.ResponseWriter, r *http.Request) {
	var req exportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "validation", "invalid payload")
		return
	}
	if err := a.Validate.Struct(req); err != nil {
		a.error(w, http.StatusBadRequest, "validation", "at least one event is required")
		return
	}

	calendar := ics.BuildCalendar(req.Events, time.Now().UTC())

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="events.ics"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(calendar))
}
