package handlers

import (
	"log/slog"
	"net/http"

	"github.com/narvanalabs/grid-explorer/internal/models"
)

// FarmHandler handles farm listing requests.
type FarmHandler struct {
	store  CapacityStore
	logger *slog.Logger
}

// NewFarmHandler creates a new farm handler.
func NewFarmHandler(st CapacityStore, logger *slog.Logger) *FarmHandler {
	return &FarmHandler{store: st, logger: logger}
}

// List handles GET /v1/farms.
func (h *FarmHandler) List(w http.ResponseWriter, r *http.Request) {
	farms, loaded := h.store.Farms()
	if !loaded {
		WriteNotLoaded(w, r)
		return
	}
	if farms == nil {
		farms = []models.FarmRecord{}
	}
	WriteJSON(w, http.StatusOK, farms)
}
