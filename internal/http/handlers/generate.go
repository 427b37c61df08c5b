package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"posterforge/internal/domain"
	"posterforge/internal/metrics"
	"posterforge/internal/providers/render"
)

type generateRequest struct {
	Prompt         string `json:"prompt" validate:"required"`
	Engine         string `json:"engine"`
	AspectRatio    string `json:"aspectRatio"`
	Style          string `json:"style"`
	Quality        string `json:"quality"`
	OrganizationID string `json:"organizationId"`
}

type generateResponse struct {
	Success  bool   `json:"success"`
	Engine   string `json:"engine"`
	ImageURL string `json:"imageUrl"`
}

// GeneratePoster renders a caller-supplied prompt directly, skipping
// extraction and synthesis. This is the submit side of GeneratePrompt: a
// client previews or hand-edits a prompt, then sends the final text here
// with an engine and aspect ratio of its choosing.
func (a *App) GeneratePoster(w http.ResponseWriter, r *http.Request) {
	if len(a.Renderers) == 0 {
		a.error(w, http.StatusServiceUnavailable, "unavailable", "rendering is not configured")
		return
	}

	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "validation", "invalid payload")
		return
	}
	if err := a.Validate.Struct(req); err != nil {
		a.error(w, http.StatusBadRequest, "validation", "prompt is required")
		return
	}

	engine := strings.ToLower(strings.TrimSpace(req.Engine))
	if engine == "" {
		engine = a.DefaultEngine
	}
	factory, ok := a.Renderers[engine]
	if !ok {
		a.error(w, http.StatusBadRequest, "validation", fmt.Sprintf("unknown engine %q", engine))
		return
	}

	aspect := strings.ToLower(strings.TrimSpace(req.AspectRatio))
	if aspect != "" && !render.ValidAspectRatio(aspect) {
		a.error(w, http.StatusBadRequest, "validation", "aspectRatio must be square, portrait or landscape")
		return
	}

	renderer, err := factory(aspect)
	if err != nil {
		a.Logger.Error().Err(err).Str("engine", engine).Msg("renderer construction failed")
		a.error(w, http.StatusInternalServerError, "render", "renderer unavailable")
		return
	}

	imageURL, err := renderer.RenderPoster(r.Context(), stylePrompt(req.Prompt, req.Style, req.Quality), domain.ExtractedEvent{})
	if err != nil {
		a.Logger.Error().Err(err).Str("engine", engine).Msg("direct generation failed")
		metrics.PostersGenerated.WithLabelValues(engine, "failed").Inc()
		a.error(w, http.StatusBadGateway, "render", err.Error())
		return
	}
	metrics.PostersGenerated.WithLabelValues(engine, "ok").Inc()

	a.json(w, http.StatusOK, generateResponse{
		Success:  true,
		Engine:   engine,
		ImageURL: imageURL,
	})
}

// stylePrompt folds the optional style and quality hints into the prompt
// text, since not every backend takes them as parameters.
func stylePrompt(prompt, style, quality string) string {
	sb := &strings.Builder{}
	sb.WriteString(strings.TrimSpace(prompt))
	if s := strings.TrimSpace(style); s != "" {
		fmt.Fprintf(sb, "\nStyle: %s.", s)
	}
	if q := strings.TrimSpace(quality); q != "" {
		fmt.Fprintf(sb, "\nQuality: %s.", q)
	}
	return sb.String()
}
