package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/narvanalabs/grid-explorer/internal/capacity"
	"github.com/narvanalabs/grid-explorer/internal/filter"
	"github.com/narvanalabs/grid-explorer/internal/models"
	"github.com/narvanalabs/grid-explorer/internal/registry"
)

// **Feature: grid-explorer, Property 7: Structured Error Responses**
// *For any* API error written to a response, the body SHALL decode to the
// same code, message and request id, with the HTTP status mapped from the code.
// **Validates: Requirements 7.3**
func TestPropertyStructuredErrorResponse(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	genCode := gen.OneConstOf(CodeValidationError, CodeNotFound, CodeNotLoaded, CodeUpstreamError, CodeInternalError)
	statusFor := map[string]int{
		CodeValidationError: http.StatusBadRequest,
		CodeNotFound:        http.StatusNotFound,
		CodeNotLoaded:       http.StatusServiceUnavailable,
		CodeUpstreamError:   http.StatusBadGateway,
		CodeInternalError:   http.StatusInternalServerError,
	}

	properties.Property("written errors round-trip with mapped status", prop.ForAll(
		func(code, message, requestID string) bool {
			rr := httptest.NewRecorder()
			WriteErrorWithRequestID(rr, New(code, message), requestID)

			if rr.Code != statusFor[code] {
				t.Logf("code %s: status %d, want %d", code, rr.Code, statusFor[code])
				return false
			}
			if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
				return false
			}

			var body APIError
			if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
				return false
			}
			return body.Code == code && body.Message == message && body.RequestID == requestID
		},
		genCode,
		gen.AlphaString(),
		gen.Identifier(),
	))

	properties.TestingRun(t)
}

func TestFromError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"invalid range", fmt.Errorf("cru: %w", filter.ErrInvalidRange), CodeValidationError},
		{"unknown kind", models.ErrUnknownKind, CodeValidationError},
		{"no fetcher", capacity.ErrNoFetcher, CodeNotLoaded},
		{"closed", capacity.ErrClosed, CodeNotLoaded},
		{"registry status", fmt.Errorf("%w: nodes: %w", capacity.ErrFetch, &registry.HTTPError{StatusCode: 500, Message: "boom"}), CodeUpstreamError},
		{"registry endpoint missing", fmt.Errorf("%w: nodes: %w", capacity.ErrFetch, &registry.HTTPError{StatusCode: 404, Message: "not found"}), CodeUpstreamError},
		{"registry unreachable", fmt.Errorf("%w: farms: %w", capacity.ErrFetch, errors.New("dial tcp")), CodeUpstreamError},
		{"api error passthrough", NewNotFoundError("x"), CodeNotFound},
		{"unknown", errors.New("secret detail"), CodeInternalError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FromError(tt.err)
			if got.Code != tt.want {
				t.Errorf("FromError() code = %s, want %s", got.Code, tt.want)
			}
		})
	}

	missing := FromError(fmt.Errorf("listing /nodes page 1: %w", &registry.HTTPError{StatusCode: 404, Message: "not found"}))
	if missing.Details["registry_status"] != 404 || !strings.Contains(missing.Message, "registry URL") {
		t.Errorf("FromError(registry 404) = %+v", missing)
	}

	if got := FromError(errors.New("secret detail")); got.Message == "secret detail" {
		t.Error("internal error leaked its message")
	}
}

func TestWithDetailsCopies(t *testing.T) {
	base := NewValidationError("bad")
	withDetails := base.WithDetails(map[string]any{"field": "cru"})
	if base.Details != nil {
		t.Error("WithDetails mutated the receiver")
	}
	if withDetails.Details["field"] != "cru" || withDetails.Error() != "VALIDATION_ERROR: bad" {
		t.Errorf("WithDetails() = %+v", withDetails)
	}

	rr := httptest.NewRecorder()
	WriteError(rr, NewUpstreamError("registry down"))
	if rr.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", rr.Code)
	}
}
