package capacity

import (
	"fmt"
	"time"

	"github.com/narvanalabs/grid-explorer/internal/filter"
	"github.com/narvanalabs/grid-explorer/internal/liveness"
	"github.com/narvanalabs/grid-explorer/internal/models"
)

// NodeView is a node record prepared for display: farm name resolved,
// liveness evaluated and timestamps converted.
type NodeView struct {
	ID                string                `json:"id"`
	Name              string                `json:"name"`
	FarmID            models.FarmID         `json:"farm_id"`
	FarmName          string                `json:"farm_name"`
	Version           string                `json:"version"`
	Uptime            string                `json:"uptime"`
	Updated           time.Time             `json:"updated"`
	Status            liveness.Status       `json:"status"`
	StatusColor       string                `json:"status_color"`
	Location          models.Location       `json:"location"`
	TotalResources    models.ResourceAmount `json:"total_resources"`
	ReservedResources models.ResourceAmount `json:"reserved_resources"`
	UsedResources     models.ResourceAmount `json:"used_resources"`
	Workloads         models.WorkloadAmount `json:"workloads"`
	FreeToUse         bool                  `json:"free_to_use"`
}

// BuildViews resolves farm names and liveness for nodes at now. A node
// whose farm is unknown shows its raw farm id as the farm name.
func BuildViews(nodes []models.NodeRecord, farms []models.FarmRecord, now time.Time) []NodeView {
	names := make(map[models.FarmID]string, len(farms))
	for i := range farms {
		names[models.NormalizeFarmID(string(farms[i].ID))] = farms[i].Name
	}

	views := make([]NodeView, 0, len(nodes))
	for i := range nodes {
		n := &nodes[i]
		farmName, ok := names[models.NormalizeFarmID(string(n.FarmID))]
		if !ok {
			farmName = string(n.FarmID)
		}
		status := liveness.ClassifyAt(n.Updated, now)

		views = append(views, NodeView{
			ID:                n.NodeID,
			Name:              "node " + n.NodeID,
			FarmID:            n.FarmID,
			FarmName:          farmName,
			Version:           n.OSVersion,
			Uptime:            FormatUptime(n.Uptime),
			Updated:           time.Unix(n.Updated, 0).UTC(),
			Status:            status,
			StatusColor:       status.Color(),
			Location:          n.Location,
			TotalResources:    n.TotalResources,
			ReservedResources: n.ReservedResources,
			UsedResources:     n.UsedResources,
			Workloads:         n.Workloads,
			FreeToUse:         n.FreeToUse,
		})
	}
	return views
}

// CurrentViews applies sel to the held nodes and builds their views. Filtering
// and status evaluation share one instant.
func (s *Store) CurrentViews(sel filter.Selection) ([]NodeView, error) {
	now := s.now()
	nodes, err := s.currentNodes(sel, now)
	if err != nil {
		return nil, err
	}
	if nodes == nil {
		return nil, nil
	}
	_, _, farms := s.snapshot()
	return BuildViews(nodes, farms, now), nil
}

// FormatUptime renders seconds as "1d 2h 3m 4s", omitting leading zero units.
func FormatUptime(seconds int64) string {
	if seconds <= 0 {
		return "0s"
	}
	d := seconds / 86400
	h := (seconds % 86400) / 3600
	m := (seconds % 3600) / 60
	sec := seconds % 60

	switch {
	case d > 0:
		return fmt.Sprintf("%dd %dh %dm %ds", d, h, m, sec)
	case h > 0:
		return fmt.Sprintf("%dh %dm %ds", h, m, sec)
	case m > 0:
		return fmt.Sprintf("%dm %ds", m, sec)
	default:
		return fmt.Sprintf("%ds", sec)
	}
}
