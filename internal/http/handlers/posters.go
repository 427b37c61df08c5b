package handlers

import (
	"net/http"
	"strconv"

	"posterforge/internal/domain"
)

// ListPosters returns the most recently generated posters for an
// organization, newest first.
func (a *App) ListPosters(w http.ResponseWriter, r *http.Request) {
	if a.Posters == nil {
		a.error(w, http.StatusServiceUnavailable, "unavailable", "poster storage is not configured")
		return
	}

	orgID := r.URL.Query().Get("organizationId")
	if orgID == "" {
		a.error(w, http.StatusBadRequest, "validation", "organizationId is required")
		return
	}
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > 200 {
			a.error(w, http.StatusBadRequest, "validation", "limit must be between 1 and 200")
			return
		}
		limit = n
	}

	posters, err := a.Posters.ListByOrganization(r.Context(), orgID, limit)
	if err != nil {
		a.Logger.Error().Err(err).Str("org_id", orgID).Msg("handlers: poster list failed")
		a.error(w, http.StatusInternalServerError, "internal", "could not list posters")
		return
	}
	if posters == nil {
		posters = []domain.Poster{}
	}

	a.json(w, http.StatusOK, map[string]any{"items": posters, "count": len(posters)})
}
