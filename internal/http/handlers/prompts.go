package handlers

import (
	"encoding/json"
	"net/http"

	"posterforge/internal/domain"
)

type promptRequest struct {
	Event            domain.ExtractedEvent `json:"event" validate:"required"`
	OrganizationType string                `json:"organizationType"`
}

type promptResponse struct {
	Success bool   `json:"success"`
	Prompt  string `json:"prompt"`
}

// GeneratePrompt synthesizes a poster design prompt without rendering, so
// clients can preview or hand-edit it before committing render credits.
func (a *App) GeneratePrompt(w http.ResponseWriter, r *http.Request) {
	if a.Synthesizer == nil {
		a.error(w, http.StatusServiceUnavailable, "unavailable", "prompt synthesis is not configured")
		return
	}

	var req promptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "validation", "invalid payload")
		return
	}
	if err := a.Validate.Struct(req.Event); err != nil {
		a.error(w, http.StatusBadRequest, "validation", "event id, name, date, day and type are required")
		return
	}

	orgType := req.OrganizationType
	if orgType == "" {
		orgType = "business"
	}

	generated, err := a.Synthesizer.SynthesizePrompt(r.Context(), req.Event, orgType)
	if err != nil {
		a.Logger.Warn().Err(err).Str("event_id", req.Event.ID).Msg("handlers: prompt synthesis failed")
		a.error(w, http.StatusBadGateway, "prompt", "prompt synthesis failed")
		return
	}

	a.json(w, http.StatusOK, promptResponse{Success: true, Prompt: generated})
}
