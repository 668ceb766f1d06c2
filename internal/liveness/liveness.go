// Package liveness classifies nodes from the recency of their last heartbeat.
package liveness

import "time"

// Status is the derived liveness of a node. It is never stored: it depends on
// the wall clock at evaluation time.
type Status string

const (
	StatusUp         Status = "up"
	StatusLikelyDown Status = "likely-down"
	StatusDown       Status = "down"
)

// Thresholds in whole elapsed minutes.
const (
	UpBelowMinutes         = 15
	LikelyDownAboveMinutes = 16
	DownFromMinutes        = 20
)

// Color returns the display hint associated with the status.
func (s Status) Color() string {
	switch s {
	case StatusUp:
		return "green"
	case StatusLikelyDown:
		return "orange"
	default:
		return "red"
	}
}

// ElapsedMinutes returns floor((now - updated) / 60).
func ElapsedMinutes(updated, now int64) int64 {
	d := now - updated
	m := d / 60
	if d%60 != 0 && d < 0 {
		m--
	}
	return m
}

// Classify maps a heartbeat timestamp to a Status, both in Unix seconds.
//
// A node whose elapsed time falls in [15,16] minutes is reported down, not
// likely-down: the likely-down band is strictly (16,20).
func Classify(updated, now int64) Status {
	elapsed := ElapsedMinutes(updated, now)
	switch {
	case elapsed < UpBelowMinutes:
		return StatusUp
	case elapsed > LikelyDownAboveMinutes && elapsed < DownFromMinutes:
		return StatusLikelyDown
	default:
		return StatusDown
	}
}

// ClassifyAt is Classify against a time.Time instant.
func ClassifyAt(updated int64, now time.Time) Status {
	return Classify(updated, now.Unix())
}
