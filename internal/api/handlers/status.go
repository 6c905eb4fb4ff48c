package handlers

import (
	"net/http"

	"github.com/amaumene/cinetrack/internal/controllers"
	"github.com/amaumene/cinetrack/internal/queue"
	"github.com/sirupsen/logrus"
)

// StatusHandler handles status requests
type StatusHandler struct {
	searchCtrl *controllers.SearchController
	queue      *queue.Queue
	logger     *logrus.Logger
}

// NewStatusHandler creates a new status handler
func NewStatusHandler(searchCtrl *controllers.SearchController, q *queue.Queue, logger *logrus.Logger) *StatusHandler {
	return &StatusHandler{
		searchCtrl: searchCtrl,
		queue:      q,
		logger:     logger,
	}
}

// StatusResponse represents the status response
type StatusResponse struct {
	TotalRecords   int            `json:"total_records"`
	WithCommentary int            `json:"with_commentary"`
	Checked        int            `json:"checked"`
	Unchecked      int            `json:"unchecked"`
	Queue          queue.Progress `json:"queue"`
}

// ServeHTTP handles the status endpoint
func (h *StatusHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	summary := h.searchCtrl.Summary()
	response := StatusResponse{
		TotalRecords:   summary.Total,
		WithCommentary: summary.WithCommentary,
		Checked:        summary.Checked,
		Unchecked:      summary.Total - summary.Checked,
		Queue:          h.queue.Progress(),
	}

	writeJSON(w, h.logger, http.StatusOK, response)
}
