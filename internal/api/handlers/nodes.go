package handlers

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/narvanalabs/grid-explorer/internal/capacity"
	"github.com/narvanalabs/grid-explorer/internal/filter"
)

// NodeHandler handles node listing requests.
type NodeHandler struct {
	store  CapacityStore
	logger *slog.Logger
}

// NewNodeHandler creates a new node handler.
func NewNodeHandler(st CapacityStore, logger *slog.Logger) *NodeHandler {
	return &NodeHandler{
		store:  st,
		logger: logger,
	}
}

// NodeListResponse is the body of GET /v1/nodes.
type NodeListResponse struct {
	Count int                 `json:"count"`
	Nodes []capacity.NodeView `json:"nodes"`
}

// List handles GET /v1/nodes - lists nodes matching the query selection.
//
// Query parameters:
//   - farm: farm id, or "All" (default)
//   - cru, mru, sru, hru: inclusive "min,max" bounds
//   - hide_down: "true" to drop nodes classified as down
func (h *NodeHandler) List(w http.ResponseWriter, r *http.Request) {
	sel, err := ParseSelection(r)
	if err != nil {
		WriteBadRequest(w, r, err.Error())
		return
	}

	if !h.store.Loaded() {
		if err := sel.Validate(); err != nil {
			WriteError(w, r, err)
			return
		}
		WriteNotLoaded(w, r)
		return
	}

	views, err := h.store.CurrentViews(sel)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	if views == nil {
		views = []capacity.NodeView{}
	}

	WriteJSON(w, http.StatusOK, NodeListResponse{Count: len(views), Nodes: views})
}

// ParseSelection builds a filter selection from request query parameters.
func ParseSelection(r *http.Request) (filter.Selection, error) {
	q := r.URL.Query()

	sel, err := filter.ParseSelection(q.Get)
	if err != nil {
		return filter.Selection{}, err
	}

	if raw := q.Get("hide_down"); raw != "" {
		hide, err := strconv.ParseBool(raw)
		if err != nil {
			return filter.Selection{}, fmt.Errorf("hide_down: invalid boolean %q", raw)
		}
		sel.HideDown = hide
	}

	return sel, nil
}
