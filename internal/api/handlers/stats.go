package handlers

import (
	"net/http"
	"strconv"

	"github.com/amaumene/cinetrack/internal/controllers"
	"github.com/amaumene/cinetrack/internal/models"
	"github.com/sirupsen/logrus"
)

// StatsHandler serves the catalogue statistics
type StatsHandler struct {
	searchCtrl *controllers.SearchController
	logger     *logrus.Logger
}

// NewStatsHandler creates a new stats handler
func NewStatsHandler(searchCtrl *controllers.SearchController, logger *logrus.Logger) *StatsHandler {
	return &StatsHandler{searchCtrl: searchCtrl, logger: logger}
}

// StatsResponse is the body of GET /api/stats
type StatsResponse struct {
	Years   []string                `json:"years"`
	ByYear  []controllers.YearCount `json:"byYear"`
	Summary controllers.Summary     `json:"summary"`
}

// Stats handles GET /api/stats
func (h *StatsHandler) Stats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.logger, http.StatusOK, StatsResponse{
		Years:   h.searchCtrl.Years(),
		ByYear:  h.searchCtrl.StatsByYear(),
		Summary: h.searchCtrl.Summary(),
	})
}

// Featured handles GET /api/featured?n=
func (h *StatsHandler) Featured(w http.ResponseWriter, r *http.Request) {
	n := controllers.DefaultFeaturedCount
	if v := r.URL.Query().Get("n"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 {
			writeError(w, h.logger, http.StatusBadRequest, "n must be a positive integer")
			return
		}
		n = parsed
	}

	featured := h.searchCtrl.Featured(n)
	writeJSON(w, h.logger, http.StatusOK, map[string][]models.Record{"records": featured})
}
