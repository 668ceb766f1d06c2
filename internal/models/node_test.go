package models

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestFarmIDUnmarshal(t *testing.T) {
	tests := []struct {
		in   string
		want FarmID
	}{
		{`1`, "1"},
		{`"1"`, "1"},
		{`" 007 "`, "7"},
		{`null`, ""},
		{`"farm-x"`, "farm-x"},
	}
	for _, tt := range tests {
		var got FarmID
		if err := json.Unmarshal([]byte(tt.in), &got); err != nil {
			t.Errorf("Unmarshal(%s) error = %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("Unmarshal(%s) = %q, want %q", tt.in, got, tt.want)
		}
	}

	var bad FarmID
	if err := json.Unmarshal([]byte(`{}`), &bad); err == nil {
		t.Error("Unmarshal({}) expected error")
	}
}

func TestFarmIDMarshal(t *testing.T) {
	tests := map[FarmID]string{
		"1":      `1`,
		"farm-x": `"farm-x"`,
	}
	for in, want := range tests {
		got, err := json.Marshal(in)
		if err != nil {
			t.Fatalf("Marshal(%q) error = %v", in, err)
		}
		if string(got) != want {
			t.Errorf("Marshal(%q) = %s, want %s", in, got, want)
		}
	}
}

func TestNodeRecordDecodeRegistryPayload(t *testing.T) {
	payload := `{
		"id": 12,
		"node_id": "2anfZwrzskXiUHPLTqH1veJQ3sJGvCYcHq",
		"farm_id": 1,
		"os_version": "v2.1.0",
		"updated": 1700000000,
		"uptime": 93784,
		"location": {"city": "Ghent", "country": "Belgium", "continent": "Europe"},
		"total_resources": {"cru": 8, "mru": 32},
		"workloads": {"container": 3, "k8s_vm": 1},
		"unknown_field": true
	}`

	var node NodeRecord
	if err := json.Unmarshal([]byte(payload), &node); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if err := node.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
	if node.FarmID != "1" {
		t.Errorf("FarmID = %q, want 1", node.FarmID)
	}
	if node.TotalResources.Get(ResourceSRU) != 0 || node.TotalResources.Get(ResourceMRU) != 32 {
		t.Errorf("TotalResources = %+v", node.TotalResources)
	}
	if node.Workloads.Get(WorkloadK8sVM) != 1 {
		t.Errorf("Workloads = %+v", node.Workloads)
	}
}

func TestRecordValidate(t *testing.T) {
	if err := (&NodeRecord{FarmID: "1"}).Validate(); !errors.Is(err, ErrMalformedRecord) {
		t.Errorf("node without id: error = %v, want ErrMalformedRecord", err)
	}
	if err := (&NodeRecord{NodeID: "n"}).Validate(); !errors.Is(err, ErrMalformedRecord) {
		t.Errorf("node without farm: error = %v, want ErrMalformedRecord", err)
	}
	if err := (&FarmRecord{Name: "f"}).Validate(); !errors.Is(err, ErrMalformedRecord) {
		t.Errorf("farm without id: error = %v, want ErrMalformedRecord", err)
	}
}

func TestParseKinds(t *testing.T) {
	for _, k := range ResourceKinds() {
		if got, err := ParseResourceKind(string(k)); err != nil || got != k {
			t.Errorf("ParseResourceKind(%q) = %q, %v", k, got, err)
		}
	}
	if _, err := ParseResourceKind("gpu"); !errors.Is(err, ErrUnknownKind) {
		t.Errorf("ParseResourceKind(gpu) error = %v, want ErrUnknownKind", err)
	}
	for _, k := range WorkloadKinds() {
		if got, err := ParseWorkloadKind(string(k)); err != nil || got != k {
			t.Errorf("ParseWorkloadKind(%q) = %q, %v", k, got, err)
		}
	}
	if _, err := ParseWorkloadKind("vm"); !errors.Is(err, ErrUnknownKind) {
		t.Errorf("ParseWorkloadKind(vm) error = %v, want ErrUnknownKind", err)
	}
}
