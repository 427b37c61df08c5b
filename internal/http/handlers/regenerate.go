package handlers

import (
	"encoding/json"
	"net/http"

	"posterforge/internal/domain"
	"posterforge/internal/metrics"
)

type regenerateRequest struct {
	Event            domain.ExtractedEvent `json:"event" validate:"required"`
	OrganizationType string                `json:"organizationType"`
}

type regenerateResponse struct {
	Success bool                  `json:"success"`
	Event   domain.ProcessedEvent `json:"event"`
}

// RegenerateEvent re-runs prompt synthesis and rendering for one event the
// client already holds. Extraction fields are taken as-is from the request.
func (a *App) RegenerateEvent(w http.ResponseWriter, r *http.Request) {
	if a.Pipeline == nil {
		a.error(w, http.StatusServiceUnavailable, "unavailable", "processing is not configured")
		return
	}

	var req regenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "validation", "invalid payload")
		return
	}
	if err := a.Validate.Struct(req.Event); err != nil {
		a.error(w, http.StatusBadRequest, "validation", "event id, name, date, day and type are required")
		return
	}
	if !domain.ValidEventType(string(req.Event.Type)) {
		a.error(w, http.StatusBadRequest, "validation", "unknown event type")
		return
	}

	orgType := req.OrganizationType
	if orgType == "" {
		orgType = "business"
	}

	record := a.Pipeline.Regenerate(r.Context(), req.Event, orgType)
	status := "ok"
	if record.Status == domain.StatusFailed {
		status = "failed"
	}
	metrics.PostersGenerated.WithLabelValues("regenerate", status).Inc()

	a.json(w, http.StatusOK, regenerateResponse{
		Success: record.Status == domain.StatusImageGenerated,
		Event:   record,
	})
}
