package handlers

import (
	"net/http"

	"github.com/narvanalabs/grid-explorer/pkg/config"
)

// ConfigHandler serves explorer configuration that clients render from,
// such as the slider bounds for each resource kind.
type ConfigHandler struct {
	ranges config.Ranges
}

// NewConfigHandler creates a new config handler. A nil ranges map falls
// back to the defaults.
func NewConfigHandler(ranges config.Ranges) *ConfigHandler {
	if ranges == nil {
		ranges = config.DefaultRanges()
	}
	return &ConfigHandler{ranges: ranges}
}

// Ranges handles GET /v1/ranges.
func (h *ConfigHandler) Ranges(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, h.ranges)
}
