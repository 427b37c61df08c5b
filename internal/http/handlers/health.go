package handlers

import (
	"net/http"
	"time"
)

var startedAt = time.Now()

// Health reports liveness plus coarse uptime for probes and dashboards.
func (a *App) Health(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": "posterforge",
		"uptime":  time.Since(startedAt).Round(time.Second).String(),
	})
}
