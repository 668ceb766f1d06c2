package config

import (
	"fmt"
	"os"

	"github.com/narvanalabs/grid-explorer/internal/models"
	"gopkg.in/yaml.v3"
)

// ResourceRange holds the selector defaults for one resource kind: the
// slider ceiling and the range suggested on first render.
type ResourceRange struct {
	Max float64 `yaml:"max" json:"max"`
	Min float64 `yaml:"min" json:"min"`
	// Suggested is the [low, high] pair preselected by the UI.
	Suggested [2]float64 `yaml:"range" json:"range"`
}

// Validate checks the range is internally consistent.
func (r ResourceRange) Validate() error {
	if r.Min > r.Max {
		return fmt.Errorf("min %v exceeds max %v", r.Min, r.Max)
	}
	low, high := r.Suggested[0], r.Suggested[1]
	if low > high {
		return fmt.Errorf("suggested range [%v,%v] is inverted", low, high)
	}
	if low < r.Min || high > r.Max {
		return fmt.Errorf("suggested range [%v,%v] outside [%v,%v]", low, high, r.Min, r.Max)
	}
	return nil
}

// Ranges maps every resource kind to its selector defaults.
type Ranges map[models.ResourceKind]ResourceRange

// DefaultRanges returns the built-in selector defaults.
func DefaultRanges() Ranges {
	return Ranges{
		models.ResourceCRU: {Max: 64, Suggested: [2]float64{0, 58}},
		models.ResourceMRU: {Max: 512, Suggested: [2]float64{0, 460}},
		models.ResourceSRU: {Max: 5000, Suggested: [2]float64{0, 4500}},
		models.ResourceHRU: {Max: 5000, Suggested: [2]float64{0, 4500}},
	}
}

// Validate checks that every resource kind has a consistent range.
func (r Ranges) Validate() error {
	for _, kind := range models.ResourceKinds() {
		rr, ok := r[kind]
		if !ok {
			return fmt.Errorf("%w: %s", ErrMissingRange, kind)
		}
		if err := rr.Validate(); err != nil {
			return fmt.Errorf("%s: %w", kind, err)
		}
	}
	return nil
}

// LoadRanges reads resource ranges from a YAML file. Kinds absent from the
// file keep their built-in defaults; unknown kinds are rejected.
//
//	cru:
//	  max: 64
//	  range: [0, 58]
func LoadRanges(path string) (Ranges, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading ranges file: %w", err)
	}
	return ParseRanges(data)
}

// ParseRanges decodes YAML range overrides on top of DefaultRanges.
func ParseRanges(data []byte) (Ranges, error) {
	var raw map[string]ResourceRange
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing ranges: %w", err)
	}

	ranges := DefaultRanges()
	for key, rr := range raw {
		kind, err := models.ParseResourceKind(key)
		if err != nil {
			return nil, err
		}
		ranges[kind] = rr
	}

	if err := ranges.Validate(); err != nil {
		return nil, err
	}
	return ranges, nil
}
