package model

import "testing"

// defaultThresholds mirrors the config defaults for use in pure-model tests.
var defaultThresholds = Thresholds{
	TrackerHigh:      5,
	TrackerMedium:    2,
	PermissionHigh:   10,
	PermissionMedium: 5,
}

func TestRiskLevelString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		level RiskLevel
		want  string
	}{
		{name: "low", level: RiskLow, want: "low"},
		{name: "medium", level: RiskMedium, want: "medium"},
		{name: "high", level: RiskHigh, want: "high"},
		{name: "unknown", level: RiskUnknown, want: "unknown"},
		{name: "out of range", level: RiskLevel(42), want: "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.level.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseRiskLevel(t *testing.T) {
	t.Parallel()

	// Parse must be the inverse of String for every real level.
	for _, level := range Levels() {
		if got := ParseRiskLevel(level.String()); got != level {
			t.Errorf("ParseRiskLevel(%q) = %v, want %v", level.String(), got, level)
		}
	}

	if got := ParseRiskLevel("critical"); got != RiskUnknown {
		t.Errorf("ParseRiskLevel(critical) = %v, want RiskUnknown", got)
	}
}

func TestThresholdsClassify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		permissions int
		trackers    int
		want        RiskLevel
	}{
		{name: "no permissions or trackers", permissions: 0, trackers: 0, want: RiskLow},
		{name: "below all thresholds", permissions: 2, trackers: 0, want: RiskLow},
		{name: "just below medium", permissions: 4, trackers: 1, want: RiskLow},
		{name: "medium by trackers", permissions: 0, trackers: 2, want: RiskMedium},
		{name: "medium by permissions", permissions: 5, trackers: 0, want: RiskMedium},
		{name: "high by trackers", permissions: 0, trackers: 5, want: RiskHigh},
		{name: "high by permissions", permissions: 10, trackers: 0, want: RiskHigh},
		{name: "high beats medium", permissions: 12, trackers: 5, want: RiskHigh},
		{name: "both exactly at medium", permissions: 5, trackers: 2, want: RiskMedium},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := defaultThresholds.Classify(tt.permissions, tt.trackers)
			if got != tt.want {
				t.Errorf("Classify(%d, %d) = %v, want %v",
					tt.permissions, tt.trackers, got, tt.want)
			}
		})
	}
}

// TestClassifyIsPure re-derives the classification repeatedly and checks the
// result never changes: risk must be a pure function of the two counts.
func TestClassifyIsPure(t *testing.T) {
	t.Parallel()

	first := defaultThresholds.Classify(7, 3)
	for i := 0; i < 100; i++ {
		if got := defaultThresholds.Classify(7, 3); got != first {
			t.Fatalf("Classify not stable: run %d got %v, first run got %v", i, got, first)
		}
	}
}
