package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrMalformedRecord is returned for records missing their identity fields.
var ErrMalformedRecord = errors.New("malformed record")

// FarmID is a farm identifier normalized to its decimal string form. The
// registry sends it as a number on nodes and farms, but hand-written
// payloads and older clients send strings; both decode to the same value.
type FarmID string

// UnmarshalJSON accepts a JSON number, a JSON string or null.
func (f *FarmID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = NormalizeFarmID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("farm id: %w", err)
	}
	*f = NormalizeFarmID(n.String())
	return nil
}

// MarshalJSON emits numeric ids as JSON numbers and anything else as a string.
func (f FarmID) MarshalJSON() ([]byte, error) {
	if n, err := strconv.ParseInt(string(f), 10, 64); err == nil {
		return []byte(strconv.FormatInt(n, 10)), nil
	}
	return json.Marshal(string(f))
}

// String returns the normalized id.
func (f FarmID) String() string {
	return string(f)
}

// NormalizeFarmID trims whitespace and canonicalizes integer ids so that
// "007", " 7" and 7 compare equal.
func NormalizeFarmID(s string) FarmID {
	s = strings.TrimSpace(s)
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return FarmID(strconv.FormatInt(n, 10))
	}
	return FarmID(s)
}

// Location describes where a node or farm is located.
type Location struct {
	City      string  `json:"city"`
	Country   string  `json:"country"`
	Continent string  `json:"continent"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// NodeRecord is a compute node as reported by the registry.
type NodeRecord struct {
	ID                int64          `json:"id"`
	NodeID            string         `json:"node_id"`
	FarmID            FarmID         `json:"farm_id"`
	OSVersion         string         `json:"os_version"`
	Created           int64          `json:"created"`
	Updated           int64          `json:"updated"`
	Uptime            int64          `json:"uptime"`
	Address           string         `json:"address,omitempty"`
	Location          Location       `json:"location"`
	TotalResources    ResourceAmount `json:"total_resources"`
	UsedResources     ResourceAmount `json:"used_resources"`
	ReservedResources ResourceAmount `json:"reserved_resources"`
	Workloads         WorkloadAmount `json:"workloads"`
	FreeToUse         bool           `json:"free_to_use"`
	Approved          bool           `json:"approved"`
}

// Validate checks the identity fields required to place a node in the fleet.
func (n *NodeRecord) Validate() error {
	if strings.TrimSpace(n.NodeID) == "" {
		return fmt.Errorf("%w: node_id is required", ErrMalformedRecord)
	}
	if n.FarmID == "" {
		return fmt.Errorf("%w: farm_id is required for node %s", ErrMalformedRecord, n.NodeID)
	}
	return nil
}
