package handlers

import (
	"net/http"

	"posterforge/pkg/zip"
)

// ArchiveComposites bundles every stored composite for an organization into
// one ZIP download.
func (a *App) ArchiveComposites(w http.ResponseWriter, r *http.Request) {
	if a.Store == nil {
		a.error(w, http.StatusServiceUnavailable, "unavailable", "storage is not configured")
		return
	}
	orgID := r.URL.Query().Get("organizationId")
	if orgID == "" {
		a.error(w, http.StatusBadRequest, "validation", "organizationId is required")
		return
	}

	keys, err := a.Store.ListComposites(r.Context(), orgID)
	if err != nil {
		a.Logger.Error().Err(err).Str("org_id", orgID).Msg("handlers: composite listing failed")
		a.error(w, http.StatusInternalServerError, "internal", "could not list composites")
		return
	}
	if len(keys) == 0 {
		a.error(w, http.StatusNotFound, "not_found", "no composites stored for this organization")
		return
	}

	entries := make([]zip.Entry, 0, len(keys))
	for _, key := range keys {
		data, err := a.Store.Read(r.Context(), key)
		if err != nil {
			a.Logger.Warn().Err(err).Str("key", key).Msg("handlers: skipping unreadable composite")
			continue
		}
		entries = append(entries, zip.Entry{Name: key, Data: data})
	}

	archive, err := zip.Archive(entries)
	if err != nil {
		a.Logger.Error().Err(err).Str("org_id", orgID).Msg("handlers: archive build failed")
		a.error(w, http.StatusInternalServerError, "internal", "could not build the archive")
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", `attachment; filename="posters.zip"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(archive)
}
