package handler

import "net/http"

// HealthHandler serves GET /health.
type HealthHandler struct{}

func (HealthHandler) Route() (method, pattern string) {
	return http.MethodGet, "/health"
}

func (HealthHandler) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "OK",
		"message": "YouTube Downloader API is running",
	})
}
