package handlers

import (
	"net/http"

	"github.com/amaumene/cinetrack/internal/models"
	"github.com/amaumene/cinetrack/internal/queue"
	"github.com/sirupsen/logrus"
)

// QueueHandler exposes the enrichment queue
type QueueHandler struct {
	queue  *queue.Queue
	logger *logrus.Logger
}

// NewQueueHandler creates a new queue handler
func NewQueueHandler(q *queue.Queue, logger *logrus.Logger) *QueueHandler {
	return &QueueHandler{queue: q, logger: logger}
}

// QueueResponse is the body of the queue endpoints
type QueueResponse struct {
	Items    []models.WorkItem `json:"items"`
	Progress queue.Progress    `json:"progress"`
}

// Get handles GET /api/queue
func (h *QueueHandler) Get(w http.ResponseWriter, r *http.Request) {
	h.respond(w)
}

// Pause handles POST /api/queue/pause
func (h *QueueHandler) Pause(w http.ResponseWriter, r *http.Request) {
	h.queue.Pause()
	h.respond(w)
}

// Resume handles POST /api/queue/resume
func (h *QueueHandler) Resume(w http.ResponseWriter, r *http.Request) {
	h.queue.Resume()
	h.respond(w)
}

func (h *QueueHandler) respond(w http.ResponseWriter) {
	items := h.queue.Items()
	if items == nil {
		items = []models.WorkItem{}
	}
	writeJSON(w, h.logger, http.StatusOK, QueueResponse{
		Items:    items,
		Progress: h.queue.Progress(),
	})
}
