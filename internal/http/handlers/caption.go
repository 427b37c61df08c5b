package handlers

import (
	"encoding/json"
	"net/http"

	"posterforge/internal/middleware"
	"posterforge/internal/providers/prompt"
)

type captionRequest struct {
	EventDescription string `json:"eventDescription" validate:"required"`
	Platform         string `json:"platform"`
}

type captionResponse struct {
	Success bool   `json:"success"`
	Caption string `json:"caption"`
}

// GenerateCaption produces a social media caption for an event description.
// The request locale, resolved by the i18n middleware, steers the language.
func (a *App) GenerateCaption(w http.ResponseWriter, r *http.Request) {
	if a.Captioner == nil {
		a.error(w, http.StatusServiceUnavailable, "unavailable", "captioning is not configured")
		return
	}

	var req captionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "validation", "invalid payload")
		return
	}
	if err := a.Validate.Struct(req); err != nil {
		a.error(w, http.StatusBadRequest, "validation", "eventDescription is required")
		return
	}
	platform := req.Platform
	if platform == "" {
		platform = "instagram"
	}

	caption, err := a.Captioner.Caption(r.Context(), prompt.CaptionRequest{
		EventDescription: req.EventDescription,
		Platform:         platform,
		Locale:           middleware.LocaleFromContext(r.Context()),
	})
	if err != nil {
		a.Logger.Warn().Err(err).Msg("handlers: caption generation failed")
		a.error(w, http.StatusBadGateway, "caption", "caption generation failed")
		return
	}

	a.json(w, http.StatusOK, captionResponse{Success: true, Caption: caption})
}
