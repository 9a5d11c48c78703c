package http

import (
	"net/http"
	"time"
)

type healthResponse struct {
	Status    string  `json:"status"`
	Uptime    float64 `json:"uptime"`
	Timestamp string  `json:"timestamp"`
}

// HealthHandler reports process status and uptime since the worker started.
func HealthHandler(startedAt time.Time) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		WriteJSON(w, http.StatusOK, healthResponse{
			Status:    "OK",
			Uptime:    time.Since(startedAt).Seconds(),
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		})
	}
}
