package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/narvanalabs/grid-explorer/pkg/logger"
)

// RefreshHandler triggers an on-demand registry pull.
type RefreshHandler struct {
	store  CapacityStore
	logger *slog.Logger
}

// NewRefreshHandler creates a new refresh handler.
func NewRefreshHandler(st CapacityStore, logger *slog.Logger) *RefreshHandler {
	return &RefreshHandler{store: st, logger: logger}
}

// RefreshResponse is the body of POST /v1/refresh.
type RefreshResponse struct {
	Sequence    uint64 `json:"sequence"`
	Nodes       int    `json:"nodes"`
	Farms       int    `json:"farms"`
	Rejected    int    `json:"rejected"`
	Duration    string `json:"duration"`
	CompletedAt int64  `json:"completed_at"`
}

// Refresh handles POST /v1/refresh. Concurrent callers share one pull.
func (h *RefreshHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	ctx := logger.ContextWithRequestID(r.Context(), middleware.GetReqID(r.Context()))
	result, err := h.store.Refresh(ctx)
	if err != nil {
		h.logger.Error("on-demand refresh failed", "error", err)
		WriteError(w, r, err)
		return
	}

	WriteJSON(w, http.StatusOK, RefreshResponse{
		Sequence:    result.Sequence,
		Nodes:       result.Nodes.Accepted,
		Farms:       result.Farms.Accepted,
		Rejected:    result.Nodes.Rejected + result.Farms.Rejected,
		Duration:    result.Duration.Round(time.Millisecond).String(),
		CompletedAt: h.store.LastRefresh().Unix(),
	})
}
