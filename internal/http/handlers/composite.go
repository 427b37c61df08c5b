package handlers

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"posterforge/internal/compositor"
	"posterforge/internal/metrics"
)

type compositeResponse struct {
	Success bool   `json:"success"`
	Key     string `json:"key,omitempty"`
	URL     string `json:"url,omitempty"`
}

// CompositeLogo overlays an uploaded brand logo onto an uploaded poster and
// returns the stored composite. Form fields: poster, logo (files), position,
// size, opacity, customWidth, customHeight.
func (a *App) CompositeLogo(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 2*a.MaxUploadBytes)
	if err := r.ParseMultipartForm(2 * a.MaxUploadBytes); err != nil {
		a.error(w, http.StatusBadRequest, "validation", "upload exceeds the limit or the form is malformed")
		return
	}

	posterData, err := readFormFile(r, "poster")
	if err != nil {
		a.error(w, http.StatusBadRequest, "validation", "poster file is required")
		return
	}
	logoData, err := readFormFile(r, "logo")
	if err != nil {
		a.error(w, http.StatusBadRequest, "validation", "logo file is required")
		return
	}

	spec := compositor.PlacementSpec{
		Anchor:  compositor.ParseAnchor(r.FormValue("position")),
		Size:    compositor.ParseSizeMode(r.FormValue("size")),
		Opacity: 1,
	}
	if v := r.FormValue("opacity"); v != "" {
		opacity, err := strconv.ParseFloat(v, 64)
		if err != nil || opacity <= 0 || opacity > 1 {
			a.error(w, http.StatusBadRequest, "validation", "opacity must be in (0, 1]")
			return
		}
		spec.Opacity = opacity
	}
	if spec.Size == compositor.SizeCustom {
		width, werr := strconv.Atoi(r.FormValue("customWidth"))
		height, herr := strconv.Atoi(r.FormValue("customHeight"))
		if werr != nil || herr != nil || width <= 0 || height <= 0 {
			a.error(w, http.StatusBadRequest, "validation", "custom size requires positive customWidth and customHeight")
			return
		}
		spec.CustomSize = &compositor.Dimensions{Width: width, Height: height}
	}

	out, err := compositor.Composite(posterData, logoData, spec)
	if err != nil {
		var ce *compositor.CompositeError
		if errors.As(err, &ce) && ce.Image != "" {
			a.error(w, http.StatusBadRequest, "composite", "could not decode the "+ce.Image+" image")
			return
		}
		a.Logger.Error().Err(err).Msg("handlers: compositing failed")
		a.error(w, http.StatusInternalServerError, "composite", "compositing failed")
		return
	}
	metrics.LogosComposited.Inc()

	if a.Store == nil {
		w.Header().Set("Content-Type", "image/png")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(out)
		return
	}

	key, err := a.Store.SaveComposite(r.Context(), r.FormValue("organizationId"), out)
	if err != nil {
		a.Logger.Error().Err(err).Msg("handlers: composite store failed")
		a.error(w, http.StatusInternalServerError, "composite", "could not store the composite")
		return
	}

	a.json(w, http.StatusOK, compositeResponse{
		Success: true,
		Key:     key,
		URL:     a.StorageBaseURL + "/" + key,
	})
}

func readFormFile(r *http.Request, field string) ([]byte, error) {
	file, _, err := r.FormFile(field)
	if err != nil {
		return nil, err
	}
	defer func(f multipart.File) { _ = f.Close() }(file)
	return io.ReadAll(file)
}
