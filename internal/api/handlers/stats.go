package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/narvanalabs/grid-explorer/internal/liveness"
	"github.com/narvanalabs/grid-explorer/internal/models"
)

// StatsHandler serves fleet-wide statistics.
type StatsHandler struct {
	store  CapacityStore
	logger *slog.Logger
}

// NewStatsHandler creates a new stats handler.
func NewStatsHandler(st CapacityStore, logger *slog.Logger) *StatsHandler {
	return &StatsHandler{store: st, logger: logger}
}

// StatsResponse is the body of GET /v1/stats.
type StatsResponse struct {
	models.FleetStats
	Loaded            bool                    `json:"loaded"`
	LastRefresh       *time.Time              `json:"last_refresh,omitempty"`
	NodesDistribution map[string]int          `json:"nodes_distribution"`
	Status            map[liveness.Status]int `json:"status"`
}

// Get handles GET /v1/stats.
func (h *StatsHandler) Get(w http.ResponseWriter, r *http.Request) {
	ov := h.store.CurrentOverview()
	resp := StatsResponse{
		FleetStats:        ov.Stats,
		Loaded:            ov.Loaded,
		NodesDistribution: ov.Distribution,
		Status:            ov.Status,
	}
	if !ov.LastRefresh.IsZero() {
		resp.LastRefresh = &ov.LastRefresh
	}

	WriteJSON(w, http.StatusOK, resp)
}

// Countries handles GET /v1/countries - node counts per country in first-seen order.
func (h *StatsHandler) Countries(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, h.store.CountryGroups())
}
