// Package handlers provides HTTP request handlers for the explorer API.
package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	apierrors "github.com/narvanalabs/grid-explorer/internal/api/errors"
	"github.com/narvanalabs/grid-explorer/internal/capacity"
	"github.com/narvanalabs/grid-explorer/internal/filter"
	"github.com/narvanalabs/grid-explorer/internal/models"
)

// CapacityStore is the subset of the capacity store the handlers read.
type CapacityStore interface {
	CurrentOverview() capacity.Overview
	CurrentViews(sel filter.Selection) ([]capacity.NodeView, error)
	CountryGroups() []models.CountryCount
	Farms() ([]models.FarmRecord, bool)
	Loaded() bool
	LastRefresh() time.Time
	Refresh(ctx context.Context) (capacity.RefreshResult, error)
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	apierrors.WriteJSON(w, status, data)
}

// WriteError maps err to a structured API error carrying the request ID.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	apierrors.WriteErrorWithRequestID(w, apierrors.FromError(err), middleware.GetReqID(r.Context()))
}

// WriteBadRequest writes a 400 validation error.
func WriteBadRequest(w http.ResponseWriter, r *http.Request, message string) {
	apierrors.WriteErrorWithRequestID(w, apierrors.NewValidationError(message), middleware.GetReqID(r.Context()))
}

// WriteNotLoaded writes a 503 telling the caller the registry has not been pulled yet.
func WriteNotLoaded(w http.ResponseWriter, r *http.Request) {
	apierrors.WriteErrorWithRequestID(w,
		apierrors.NewNotLoadedError("registry data has not been loaded yet"),
		middleware.GetReqID(r.Context()))
}
