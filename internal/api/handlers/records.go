package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/amaumene/cinetrack/internal/controllers"
	"github.com/amaumene/cinetrack/internal/library"
	"github.com/amaumene/cinetrack/internal/models"
	"github.com/amaumene/cinetrack/internal/queue"
	"github.com/sirupsen/logrus"
)

const suggestionCount = 5

// RecordsHandler serves the record browse and trigger endpoints
type RecordsHandler struct {
	lib        *library.Library
	searchCtrl *controllers.SearchController
	enrichCtrl *controllers.EnrichController
	queue      *queue.Queue
	logger     *logrus.Logger
}

// NewRecordsHandler creates a new records handler
func NewRecordsHandler(lib *library.Library, searchCtrl *controllers.SearchController, enrichCtrl *controllers.EnrichController, q *queue.Queue, logger *logrus.Logger) *RecordsHandler {
	return &RecordsHandler{
		lib:        lib,
		searchCtrl: searchCtrl,
		enrichCtrl: enrichCtrl,
		queue:      q,
		logger:     logger,
	}
}

// RecordListResponse is the body of GET /api/records
type RecordListResponse struct {
	Total       int                     `json:"total"`
	Records     []models.Record         `json:"records,omitempty"`
	Groups      []controllers.YearGroup `json:"groups,omitempty"`
	Queued      []string                `json:"queued"`
	Suggestions []string                `json:"suggestions,omitempty"`
}

// AddRecordRequest is the body of POST /api/records
type AddRecordRequest struct {
	Title string `json:"title"`
	Year  string `json:"year"`
	Notes string `json:"notes"`
}

// List handles GET /api/records?q=&year=&commentary=&group=year
func (h *RecordsHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	filter := controllers.Filter{
		Query: query.Get("q"),
		Year:  query.Get("year"),
	}
	if v := query.Get("commentary"); v != "" {
		commentaryOnly, err := strconv.ParseBool(v)
		if err != nil {
			writeError(w, h.logger, http.StatusBadRequest, "commentary must be a boolean")
			return
		}
		filter.CommentaryOnly = commentaryOnly
	}

	records := h.searchCtrl.Search(filter)

	queued := make([]string, 0)
	for _, item := range h.queue.Items() {
		queued = append(queued, item.ID)
	}

	response := RecordListResponse{
		Total:  len(records),
		Queued: queued,
	}
	if query.Get("group") == "year" {
		response.Groups = controllers.GroupByYear(records)
	} else {
		response.Records = records
	}
	if len(records) == 0 && filter.Query != "" {
		response.Suggestions = h.searchCtrl.Suggest(filter.Query, suggestionCount)
	}

	writeJSON(w, h.logger, http.StatusOK, response)
}

// Get handles GET /api/records/{id}
func (h *RecordsHandler) Get(w http.ResponseWriter, r *http.Request) {
	record, ok := h.lib.Get(r.PathValue("id"))
	if !ok {
		writeError(w, h.logger, http.StatusNotFound, controllers.ErrRecordNotFound.Error())
		return
	}
	writeJSON(w, h.logger, http.StatusOK, record)
}

// Create handles POST /api/records
func (h *RecordsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req AddRecordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WithError(err).Debug("Failed to decode add-record request")
		writeError(w, h.logger, http.StatusBadRequest, "invalid request body")
		return
	}

	record, err := h.enrichCtrl.AddRecord(r.Context(), req.Title, req.Year, req.Notes)
	if err != nil {
		h.writeControllerError(w, err)
		return
	}

	writeJSON(w, h.logger, http.StatusCreated, record)
}

// Check handles POST /api/records/{id}/check
func (h *RecordsHandler) Check(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.enrichCtrl.ManualCheck(id); err != nil {
		h.writeControllerError(w, err)
		return
	}
	writeJSON(w, h.logger, http.StatusAccepted, map[string]string{"id": id, "status": "checking"})
}

// Details handles POST /api/records/{id}/details
func (h *RecordsHandler) Details(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.enrichCtrl.FetchDetails(r.Context(), id); err != nil {
		h.writeControllerError(w, err)
		return
	}
	writeJSON(w, h.logger, http.StatusAccepted, map[string]string{"id": id, "status": "loading"})
}

func (h *RecordsHandler) writeControllerError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, controllers.ErrRecordNotFound):
		writeError(w, h.logger, http.StatusNotFound, err.Error())
	case errors.Is(err, controllers.ErrInvalidRecord):
		writeError(w, h.logger, http.StatusBadRequest, err.Error())
	default:
		h.logger.WithError(err).Error("Record request failed")
		writeError(w, h.logger, http.StatusInternalServerError, "internal server error")
	}
}
