package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/rondoninha/leitura/internal/cache"
	"github.com/rondoninha/leitura/internal/plan"
	"github.com/rondoninha/leitura/internal/store"
)

// DashboardHandler serves the congregation-wide progress board.
type DashboardHandler struct {
	readings *store.ReadingStore
	cache    *cache.PlanCache
	loc      *time.Location
	logger   *slog.Logger
}

func NewDashboardHandler(rs *store.ReadingStore, pc *cache.PlanCache, loc *time.Location, logger *slog.Logger) *DashboardHandler {
	return &DashboardHandler{readings: rs, cache: pc, loc: loc, logger: logger}
}

type dashboardResponse struct {
	HasData bool                  `json:"has_data"`
	Summary *plan.DashboardSummary `json:"summary,omitempty"`
	Rows    []plan.DashboardRow    `json:"rows,omitempty"`
}

// Show computes the dashboard as of now in the configured timezone. When
// nobody has recorded anything yet, the response says so explicitly rather
// than rendering an all-zero board.
func (h *DashboardHandler) Show(w http.ResponseWriter, r *http.Request) {
	plans, err := h.cache.Get()
	if err != nil {
		h.logger.Error("load plans", "error", err)
		writeJSON(w, http.StatusOK, dashboardResponse{HasData: false})
		return
	}

	tallies, err := h.readings.ListTallies()
	if err != nil {
		h.logger.Error("list reading tallies", "error", err)
		writeJSON(w, http.StatusOK, dashboardResponse{HasData: false})
		return
	}

	summary, rows := plan.ComputeDashboard(tallies, plans, time.Now().In(h.loc))
	if summary == nil {
		writeJSON(w, http.StatusOK, dashboardResponse{HasData: false})
		return
	}
	writeJSON(w, http.StatusOK, dashboardResponse{HasData: true, Summary: summary, Rows: rows})
}
