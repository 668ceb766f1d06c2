package handlers

import (
	"fmt"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/narvanalabs/grid-explorer/internal/models"
)

// **Feature: grid-explorer, Property 8: Query Selection Parsing**
// *For any* farm id, resource kind and bounds, the query string SHALL parse
// into a selection carrying exactly that farm and range.
// **Validates: Requirements 7.2**
func TestPropertyParseSelection(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	genKind := gen.OneConstOf(models.ResourceCRU, models.ResourceMRU, models.ResourceSRU, models.ResourceHRU)

	properties.Property("query parameters map onto the selection", prop.ForAll(
		func(farm int64, kind models.ResourceKind, lo, hi int64, hide bool) bool {
			target := fmt.Sprintf("/v1/nodes?farm=%d&%s=%d,%d&hide_down=%t", farm, kind, lo, hi, hide)
			sel, err := ParseSelection(httptest.NewRequest("GET", target, nil))
			if err != nil {
				t.Logf("%s: %v", target, err)
				return false
			}
			if sel.Farm.IsAll() || sel.Farm.ID() != models.FarmID(fmt.Sprint(farm)) {
				return false
			}
			r, ok := sel.Ranges[kind]
			if !ok || len(sel.Ranges) != 1 {
				return false
			}
			return r.Min == float64(lo) && r.Max == float64(hi) && sel.HideDown == hide
		},
		gen.Int64Range(1, 100000),
		genKind,
		gen.Int64Range(0, 5000),
		gen.Int64Range(0, 5000),
		gen.Bool(),
	))

	properties.TestingRun(t)
}

func TestParseSelectionDefaults(t *testing.T) {
	sel, err := ParseSelection(httptest.NewRequest("GET", "/v1/nodes", nil))
	if err != nil {
		t.Fatalf("ParseSelection() error = %v", err)
	}
	if !sel.Farm.IsAll() || sel.Ranges != nil || sel.HideDown {
		t.Errorf("ParseSelection() = %+v, want empty selection", sel)
	}
}
