// Package filter narrows node collections by farm, resource capacity band
// and liveness. All filters are pure predicates over disjoint fields, so
// they compose in any order.
package filter

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/narvanalabs/grid-explorer/internal/liveness"
	"github.com/narvanalabs/grid-explorer/internal/models"
)

// ErrInvalidRange is returned when a range filter is given min > max.
var ErrInvalidRange = errors.New("invalid range")

// AllFarms is the textual sentinel for "no farm filter".
const AllFarms = "All"

// FarmSelection is either All (the zero value) or a single farm.
type FarmSelection struct {
	id models.FarmID
}

// All selects every farm.
var All = FarmSelection{}

// Farm selects the farm with the given id.
func Farm(id models.FarmID) FarmSelection {
	return FarmSelection{id: models.NormalizeFarmID(string(id))}
}

// FarmOf selects the given farm record.
func FarmOf(f models.FarmRecord) FarmSelection {
	return Farm(f.ID)
}

// ParseFarmSelection maps "", "All" (any case) to All and anything else to a farm id.
func ParseFarmSelection(s string) FarmSelection {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, AllFarms) {
		return All
	}
	return Farm(models.FarmID(s))
}

// IsAll reports whether the selection applies no farm filter.
func (s FarmSelection) IsAll() bool {
	return s.id == ""
}

// ID returns the selected farm id, empty for All.
func (s FarmSelection) ID() models.FarmID {
	return s.id
}

func (s FarmSelection) String() string {
	if s.IsAll() {
		return AllFarms
	}
	return string(s.id)
}

// ByFarm returns the nodes owned by the selected farm. All returns nodes
// itself, unmodified.
func ByFarm(nodes []models.NodeRecord, sel FarmSelection) []models.NodeRecord {
	if sel.IsAll() {
		return nodes
	}

	out := make([]models.NodeRecord, 0)
	for i := range nodes {
		if models.NormalizeFarmID(string(nodes[i].FarmID)) == sel.id {
			out = append(out, nodes[i])
		}
	}
	return out
}

// Range is an inclusive [Min, Max] capacity band.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Validate rejects inverted ranges.
func (r Range) Validate() error {
	if r.Min > r.Max {
		return fmt.Errorf("%w: min %v > max %v", ErrInvalidRange, r.Min, r.Max)
	}
	return nil
}

// ParseRange parses an inclusive "min,max" pair. Bound ordering is left to
// Validate.
func ParseRange(s string) (Range, error) {
	lo, hi, ok := strings.Cut(s, ",")
	if !ok {
		return Range{}, fmt.Errorf("%w: expected min,max, got %q", ErrInvalidRange, s)
	}
	minV, err := strconv.ParseFloat(strings.TrimSpace(lo), 64)
	if err != nil {
		return Range{}, fmt.Errorf("%w: bad min %q", ErrInvalidRange, lo)
	}
	maxV, err := strconv.ParseFloat(strings.TrimSpace(hi), 64)
	if err != nil {
		return Range{}, fmt.Errorf("%w: bad max %q", ErrInvalidRange, hi)
	}
	return Range{Min: minV, Max: maxV}, nil
}

// Contains reports whether v lies in the band.
func (r Range) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// ByRange returns the nodes whose total capacity for kind lies in [min, max].
func ByRange(nodes []models.NodeRecord, kind models.ResourceKind, min, max float64) ([]models.NodeRecord, error) {
	if _, err := models.ParseResourceKind(string(kind)); err != nil {
		return nil, err
	}
	r := Range{Min: min, Max: max}
	if err := r.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", kind, err)
	}

	out := make([]models.NodeRecord, 0)
	for i := range nodes {
		if r.Contains(float64(nodes[i].TotalResources.Get(kind))) {
			out = append(out, nodes[i])
		}
	}
	return out, nil
}

// HideDown drops nodes classified down at now.
func HideDown(nodes []models.NodeRecord, now int64) []models.NodeRecord {
	out := make([]models.NodeRecord, 0)
	for i := range nodes {
		if liveness.Classify(nodes[i].Updated, now) != liveness.StatusDown {
			out = append(out, nodes[i])
		}
	}
	return out
}

// Selection is the complete filter state of a consumer.
type Selection struct {
	Farm     FarmSelection
	Ranges   map[models.ResourceKind]Range
	HideDown bool
}

// Validate checks every range in the selection.
func (s Selection) Validate() error {
	for kind, r := range s.Ranges {
		if _, err := models.ParseResourceKind(string(kind)); err != nil {
			return err
		}
		if err := r.Validate(); err != nil {
			return fmt.Errorf("%s: %w", kind, err)
		}
	}
	return nil
}

// ParseSelection builds the farm and range parts of a selection from named
// string parameters: "farm" plus one "min,max" value per resource kind. get
// returns "" for parameters that are absent. Bound ordering is left to
// Validate and HideDown is left to the caller.
func ParseSelection(get func(name string) string) (Selection, error) {
	sel := Selection{Farm: ParseFarmSelection(get("farm"))}

	for _, kind := range models.ResourceKinds() {
		raw := get(string(kind))
		if raw == "" {
			continue
		}
		rng, err := ParseRange(raw)
		if err != nil {
			return Selection{}, fmt.Errorf("%s: %w", kind, err)
		}
		if sel.Ranges == nil {
			sel.Ranges = make(map[models.ResourceKind]Range)
		}
		sel.Ranges[kind] = rng
	}
	return sel, nil
}

// Apply runs the farm filter, each range filter in resource order and
// finally the liveness filter. The input slice is never modified.
func Apply(nodes []models.NodeRecord, sel Selection, now int64) ([]models.NodeRecord, error) {
	if err := sel.Validate(); err != nil {
		return nil, err
	}

	out := ByFarm(nodes, sel.Farm)
	for _, kind := range models.ResourceKinds() {
		r, ok := sel.Ranges[kind]
		if !ok {
			continue
		}
		var err error
		out, err = ByRange(out, kind, r.Min, r.Max)
		if err != nil {
			return nil, err
		}
	}
	if sel.HideDown {
		out = HideDown(out, now)
	}
	return out, nil
}
