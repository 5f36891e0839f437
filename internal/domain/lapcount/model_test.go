package lapcount_test

import (
	"testing"
	"time"

	"swimtrack/internal/domain/lapcount"
)

func TestCanCountLap(t *testing.T) {
	base := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)
	last := &lapcount.LapCount{Timestamp: base}

	tests := []struct {
		name     string
		last     *lapcount.LapCount
		now      time.Time
		interval int
		want     bool
	}{
		{"first lap always counts", nil, base, 15, true},
		{"one millisecond early", last, base.Add(15*time.Second - time.Millisecond), 15, false},
		{"exactly at the boundary", last, base.Add(15 * time.Second), 15, true},
		{"well after", last, base.Add(40 * time.Second), 15, true},
		{"immediate second tap", last, base.Add(200 * time.Millisecond), 15, false},
		{"zero interval disables the guard", last, base, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := lapcount.CanCountLap(tt.last, tt.now, tt.interval); got != tt.want {
				t.Errorf("CanCountLap() = %v, want %v", got, tt.want)
			}
		})
	}
}

// TestCanCountLap_Sweep checks every offset either side of the interval.
func TestCanCountLap_Sweep(t *testing.T) {
	base := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)
	last := &lapcount.LapCount{Timestamp: base}
	for interval := 1; interval <= 30; interval++ {
		for ms := 0; ms <= 40000; ms += 250 {
			now := base.Add(time.Duration(ms) * time.Millisecond)
			want := ms >= interval*1000
			if got := lapcount.CanCountLap(last, now, interval); got != want {
				t.Fatalf("interval=%ds delta=%dms: got %v, want %v", interval, ms, got, want)
			}
		}
	}
}

func TestRetryAfter(t *testing.T) {
	base := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)
	last := &lapcount.LapCount{Timestamp: base}

	if got := lapcount.RetryAfter(nil, base, 15); got != 0 {
		t.Errorf("RetryAfter(nil) = %d, want 0", got)
	}
	if got := lapcount.RetryAfter(last, base.Add(5*time.Second), 15); got != 10 {
		t.Errorf("RetryAfter(5s) = %d, want 10", got)
	}
	if got := lapcount.RetryAfter(last, base.Add(5500*time.Millisecond), 15); got != 10 {
		t.Errorf("RetryAfter(5.5s) = %d, want 10", got)
	}
	if got := lapcount.RetryAfter(last, base.Add(15*time.Second), 15); got != 0 {
		t.Errorf("RetryAfter(boundary) = %d, want 0", got)
	}
}

func TestLatestOf(t *testing.T) {
	base := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)
	laps := []lapcount.LapCount{
		{ID: "a", Timestamp: base.Add(time.Minute)},
		{ID: "b", Timestamp: base.Add(3 * time.Minute)},
		{ID: "c", Timestamp: base},
	}
	if got := lapcount.LatestOf(laps); got == nil || got.ID != "b" {
		t.Errorf("LatestOf() = %+v, want b", got)
	}
	if got := lapcount.LatestOf(nil); got != nil {
		t.Errorf("LatestOf(nil) = %+v, want nil", got)
	}
}

func TestLapCount_Validate(t *testing.T) {
	ok := lapcount.LapCount{CompetitionID: "c", TeamID: "t", SwimmerID: "s", LaneNumber: 1}
	if err := ok.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
	bad := ok
	bad.LaneNumber = 0
	if err := bad.Validate(); err != lapcount.ErrMissingFields {
		t.Errorf("Validate(lane 0) error = %v", err)
	}
}
