package handlers

import (
	"net/http"
)

// CreditsRemaining reports the render account's remaining generation budget.
func (a *App) CreditsRemaining(w http.ResponseWriter, r *http.Request) {
	if a.Credits == nil {
		a.error(w, http.StatusServiceUnavailable, "unavailable", "credits lookup is not configured")
		return
	}
	a.json(w, http.StatusOK, a.Credits.Remaining(r.Context()))
}
