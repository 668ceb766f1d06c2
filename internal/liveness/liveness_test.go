package liveness

import (
	"testing"
	"time"
)

func TestClassifyBoundaries(t *testing.T) {
	const now int64 = 1_700_000_000

	tests := []struct {
		name    string
		elapsed int64
		want    Status
	}{
		{"just now", 0, StatusUp},
		{"fourteen minutes 59s", 14*60 + 59, StatusUp},
		{"exactly fifteen minutes", 15 * 60, StatusDown},
		{"sixteen minutes", 16 * 60, StatusDown},
		{"sixteen minutes 59s", 16*60 + 59, StatusDown},
		{"seventeen minutes", 17 * 60, StatusLikelyDown},
		{"nineteen minutes 59s", 19*60 + 59, StatusLikelyDown},
		{"twenty minutes", 20 * 60, StatusDown},
		{"twenty five minutes", 25 * 60, StatusDown},
		{"a day", 24 * 60 * 60, StatusDown},
		{"never reported", now, StatusDown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(now-tt.elapsed, now); got != tt.want {
				t.Errorf("Classify(elapsed=%ds) = %q, want %q", tt.elapsed, got, tt.want)
			}
		})
	}
}

func TestClassifyFutureHeartbeatIsUp(t *testing.T) {
	// Clock skew can put a heartbeat slightly ahead of the evaluator.
	if got := Classify(1000+90, 1000); got != StatusUp {
		t.Errorf("Classify(future) = %q, want %q", got, StatusUp)
	}
}

func TestElapsedMinutesFloors(t *testing.T) {
	tests := []struct {
		updated, now int64
		want         int64
	}{
		{0, 59, 0},
		{0, 60, 1},
		{0, 119, 1},
		{60, 0, -1},
		{61, 0, -2},
	}
	for _, tt := range tests {
		if got := ElapsedMinutes(tt.updated, tt.now); got != tt.want {
			t.Errorf("ElapsedMinutes(%d, %d) = %d, want %d", tt.updated, tt.now, got, tt.want)
		}
	}
}

func TestStatusColor(t *testing.T) {
	tests := map[Status]string{
		StatusUp:         "green",
		StatusLikelyDown: "orange",
		StatusDown:       "red",
	}
	for status, want := range tests {
		if got := status.Color(); got != want {
			t.Errorf("%s.Color() = %q, want %q", status, got, want)
		}
	}
}

func TestClassifyAt(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	if got := ClassifyAt(now.Add(-5*time.Minute).Unix(), now); got != StatusUp {
		t.Errorf("ClassifyAt = %q, want %q", got, StatusUp)
	}
}
