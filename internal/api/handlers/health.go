package handlers

import (
	"net/http"

	"github.com/amaumene/cinetrack/internal/library"
	"github.com/sirupsen/logrus"
)

// HealthHandler handles health check requests
type HealthHandler struct {
	lib    *library.Library
	logger *logrus.Logger
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(lib *library.Library, logger *logrus.Logger) *HealthHandler {
	return &HealthHandler{lib: lib, logger: logger}
}

// ServeHTTP handles the health check endpoint. It reports 503 until the
// initial library load has completed.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if !h.lib.Loaded() {
		writeJSON(w, h.logger, http.StatusServiceUnavailable, map[string]string{
			"status": "loading",
		})
		return
	}

	writeJSON(w, h.logger, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}
