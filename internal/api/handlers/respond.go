package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/sirupsen/logrus"
)

// ErrorResponse is the body of every non-2xx JSON response
type ErrorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, logger *logrus.Logger, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.WithError(err).Error("Failed to encode response")
	}
}

func writeError(w http.ResponseWriter, logger *logrus.Logger, status int, message string) {
	writeJSON(w, logger, status, ErrorResponse{Error: message})
}
