// Package models provides the record types exchanged with the node registry
// and the derived views computed from them.
package models

import (
	"errors"
	"fmt"
)

// ResourceKind identifies one capacity dimension of a node.
type ResourceKind string

const (
	// ResourceCRU is compute capacity (virtual cores).
	ResourceCRU ResourceKind = "cru"
	// ResourceMRU is memory capacity.
	ResourceMRU ResourceKind = "mru"
	// ResourceSRU is SSD storage capacity.
	ResourceSRU ResourceKind = "sru"
	// ResourceHRU is HDD storage capacity.
	ResourceHRU ResourceKind = "hru"
)

// ErrUnknownKind is returned when a resource or workload key is not part of
// the closed set.
var ErrUnknownKind = errors.New("unknown kind")

// ResourceKinds returns every resource kind in display order.
func ResourceKinds() []ResourceKind {
	return []ResourceKind{ResourceCRU, ResourceMRU, ResourceSRU, ResourceHRU}
}

// ParseResourceKind validates a resource key.
func ParseResourceKind(s string) (ResourceKind, error) {
	switch k := ResourceKind(s); k {
	case ResourceCRU, ResourceMRU, ResourceSRU, ResourceHRU:
		return k, nil
	}
	return "", fmt.Errorf("%w: resource %q", ErrUnknownKind, s)
}

// ResourceAmount is a capacity vector. Missing JSON keys decode as zero.
type ResourceAmount struct {
	Cru int64 `json:"cru"`
	Mru int64 `json:"mru"`
	Sru int64 `json:"sru"`
	Hru int64 `json:"hru"`
}

// Get returns the amount for kind. It panics on a kind outside the closed
// set, which can only be produced by an unchecked conversion.
func (r ResourceAmount) Get(kind ResourceKind) int64 {
	switch kind {
	case ResourceCRU:
		return r.Cru
	case ResourceMRU:
		return r.Mru
	case ResourceSRU:
		return r.Sru
	case ResourceHRU:
		return r.Hru
	}
	panic(fmt.Sprintf("models: unhandled resource kind %q", string(kind)))
}

// Add returns the element-wise sum of r and o.
func (r ResourceAmount) Add(o ResourceAmount) ResourceAmount {
	return ResourceAmount{
		Cru: r.Cru + o.Cru,
		Mru: r.Mru + o.Mru,
		Sru: r.Sru + o.Sru,
		Hru: r.Hru + o.Hru,
	}
}

// WorkloadKind identifies a deployment type counted on a node.
type WorkloadKind string

const (
	WorkloadNetwork   WorkloadKind = "network"
	WorkloadVolume    WorkloadKind = "volume"
	WorkloadContainer WorkloadKind = "container"
	WorkloadZDB       WorkloadKind = "zdb_namespace"
	WorkloadK8sVM     WorkloadKind = "k8s_vm"
)

// WorkloadKinds returns every workload kind in display order.
func WorkloadKinds() []WorkloadKind {
	return []WorkloadKind{WorkloadNetwork, WorkloadVolume, WorkloadContainer, WorkloadZDB, WorkloadK8sVM}
}

// ParseWorkloadKind validates a workload key.
func ParseWorkloadKind(s string) (WorkloadKind, error) {
	switch k := WorkloadKind(s); k {
	case WorkloadNetwork, WorkloadVolume, WorkloadContainer, WorkloadZDB, WorkloadK8sVM:
		return k, nil
	}
	return "", fmt.Errorf("%w: workload %q", ErrUnknownKind, s)
}

// WorkloadAmount counts deployments per workload kind.
type WorkloadAmount struct {
	Network      int64 `json:"network"`
	Volume       int64 `json:"volume"`
	Container    int64 `json:"container"`
	ZDBNamespace int64 `json:"zdb_namespace"`
	K8sVM        int64 `json:"k8s_vm"`
}

// Get returns the count for kind. Like ResourceAmount.Get it panics outside
// the closed set.
func (w WorkloadAmount) Get(kind WorkloadKind) int64 {
	switch kind {
	case WorkloadNetwork:
		return w.Network
	case WorkloadVolume:
		return w.Volume
	case WorkloadContainer:
		return w.Container
	case WorkloadZDB:
		return w.ZDBNamespace
	case WorkloadK8sVM:
		return w.K8sVM
	}
	panic(fmt.Sprintf("models: unhandled workload kind %q", string(kind)))
}

// Add returns the element-wise sum of w and o.
func (w WorkloadAmount) Add(o WorkloadAmount) WorkloadAmount {
	return WorkloadAmount{
		Network:      w.Network + o.Network,
		Volume:       w.Volume + o.Volume,
		Container:    w.Container + o.Container,
		ZDBNamespace: w.ZDBNamespace + o.ZDBNamespace,
		K8sVM:        w.K8sVM + o.K8sVM,
	}
}
