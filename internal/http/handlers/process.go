package handlers

import (
	"io"
	"net/http"
	"strings"

	"posterforge/internal/domain"
	"posterforge/internal/metrics"
)

// ProcessImage accepts a multipart calendar/schedule image and runs the full
// extraction and poster generation batch synchronously. The response carries
// every event with its final status; a partial batch is still a 200.
func (a *App) ProcessImage(w http.ResponseWriter, r *http.Request) {
	if a.Pipeline == nil {
		a.error(w, http.StatusServiceUnavailable, "unavailable", "processing is not configured")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, a.MaxUploadBytes)
	if err := r.ParseMultipartForm(a.MaxUploadBytes); err != nil {
		a.error(w, http.StatusBadRequest, "validation", "image exceeds the upload limit or the form is malformed")
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		a.error(w, http.StatusBadRequest, "validation", "image file is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		a.error(w, http.StatusBadRequest, "validation", "could not read the uploaded image")
		return
	}

	mime := header.Header.Get("Content-Type")
	if mime == "" || mime == "application/octet-stream" {
		mime = http.DetectContentType(data)
	}
	if !strings.HasPrefix(mime, "image/") {
		a.error(w, http.StatusBadRequest, "validation", "uploaded file must be an image")
		return
	}

	orgType := r.FormValue("organizationType")
	if orgType == "" {
		orgType = "business"
	}
	orgID := r.FormValue("organizationId")

	result := a.Pipeline.ProcessImage(r.Context(), data, mime, orgType, orgID, func(p domain.Progress) {
		a.Logger.Info().
			Int("current", p.Current).
			Int("total", p.Total).
			Str("event", p.Event).
			Msg("handlers: processing event")
	})

	if !result.Success {
		metrics.BatchesProcessed.WithLabelValues("extraction_failed").Inc()
		a.json(w, http.StatusUnprocessableEntity, result)
		return
	}

	metrics.BatchesProcessed.WithLabelValues("ok").Inc()
	metrics.EventsExtracted.Add(float64(result.TotalEvents))
	metrics.BatchDuration.Observe(float64(result.ProcessingTime) / 1000)
	for _, event := range result.Events {
		status := "failed"
		if event.Status == domain.StatusImageGenerated {
			status = "ok"
		}
		metrics.PostersGenerated.WithLabelValues("pipeline", status).Inc()
	}

	if a.Posters != nil && orgID != "" {
		if err := a.Posters.SaveAll(r.Context(), orgID, result.Events); err != nil {
			a.Logger.Warn().Err(err).Str("org_id", orgID).Msg("handlers: poster persistence failed")
		}
	}

	a.json(w, http.StatusOK, result)
}
