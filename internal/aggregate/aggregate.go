// Package aggregate reduces a node collection into fleet-wide statistics.
package aggregate

import (
	"github.com/narvanalabs/grid-explorer/internal/liveness"
	"github.com/narvanalabs/grid-explorer/internal/models"
)

// Aggregate computes FleetStats over nodes. now (Unix seconds) is used for
// every liveness evaluation in the pass. farms only contributes its length.
//
// Countries are counted by exact, case-sensitive value; nodes without a
// country share the "" bucket, which counts as one distinct country.
func Aggregate(nodes []models.NodeRecord, farms []models.FarmRecord, now int64) models.FleetStats {
	stats := models.FleetStats{
		Nodes: len(nodes),
		Farms: len(farms),
	}

	countries := make(map[string]struct{})
	var resources models.ResourceAmount
	var workloads models.WorkloadAmount

	for i := range nodes {
		node := &nodes[i]
		countries[node.Location.Country] = struct{}{}

		if liveness.Classify(node.Updated, now) == liveness.StatusUp {
			stats.OnlineNodes++
		}

		resources = resources.Add(node.TotalResources)
		workloads = workloads.Add(node.Workloads)
	}

	stats.Countries = len(countries)

	stats.Cru = resources.Cru
	stats.Mru = resources.Mru
	stats.Sru = resources.Sru
	stats.Hru = resources.Hru

	stats.Network = workloads.Network
	stats.Volume = workloads.Volume
	stats.Container = workloads.Container
	stats.ZDBNamespace = workloads.ZDBNamespace
	stats.K8sVM = workloads.K8sVM

	return stats
}

// GroupByCountry counts nodes per country, in the order each country is
// first seen.
func GroupByCountry(nodes []models.NodeRecord) []models.CountryCount {
	index := make(map[string]int)
	groups := make([]models.CountryCount, 0)

	for i := range nodes {
		country := nodes[i].Location.Country
		if pos, ok := index[country]; ok {
			groups[pos].Count++
			continue
		}
		index[country] = len(groups)
		groups = append(groups, models.CountryCount{Country: country, Count: 1})
	}

	return groups
}

// Distribution returns GroupByCountry as a map.
func Distribution(nodes []models.NodeRecord) map[string]int {
	dist := make(map[string]int)
	for i := range nodes {
		dist[nodes[i].Location.Country]++
	}
	return dist
}

// StatusCounts tallies nodes per liveness status at now.
func StatusCounts(nodes []models.NodeRecord, now int64) map[liveness.Status]int {
	counts := map[liveness.Status]int{
		liveness.StatusUp:         0,
		liveness.StatusLikelyDown: 0,
		liveness.StatusDown:       0,
	}
	for i := range nodes {
		counts[liveness.Classify(nodes[i].Updated, now)]++
	}
	return counts
}
