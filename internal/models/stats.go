package models

// FleetStats is the aggregate snapshot over the node collection currently held.
type FleetStats struct {
	Nodes       int `json:"nodes"`
	Farms       int `json:"farms"`
	Countries   int `json:"countries"`
	OnlineNodes int `json:"online_nodes"`

	Cru int64 `json:"cru"`
	Mru int64 `json:"mru"`
	Sru int64 `json:"sru"`
	Hru int64 `json:"hru"`

	Network      int64 `json:"network"`
	Volume       int64 `json:"volume"`
	Container    int64 `json:"container"`
	ZDBNamespace int64 `json:"zdb_namespace"`
	K8sVM        int64 `json:"k8s_vm"`
}

// Resources returns the resource sums as a ResourceAmount.
func (s FleetStats) Resources() ResourceAmount {
	return ResourceAmount{Cru: s.Cru, Mru: s.Mru, Sru: s.Sru, Hru: s.Hru}
}

// Workloads returns the workload sums as a WorkloadAmount.
func (s FleetStats) Workloads() WorkloadAmount {
	return WorkloadAmount{
		Network:      s.Network,
		Volume:       s.Volume,
		Container:    s.Container,
		ZDBNamespace: s.ZDBNamespace,
		K8sVM:        s.K8sVM,
	}
}

// CountryCount is one bucket of the geographic grouping.
type CountryCount struct {
	Country string `json:"country"`
	Count   int    `json:"count"`
}
