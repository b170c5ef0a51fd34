package model

import "testing"

func TestTableEmpty(t *testing.T) {
	t.Parallel()

	empty := &Table{}
	if !empty.Empty() {
		t.Error("expected empty table to report Empty() = true")
	}

	populated := &Table{Rows: []AppRecord{{AppName: "TransitApp"}}}
	if populated.Empty() {
		t.Error("expected populated table to report Empty() = false")
	}
}

func TestTableRiskSummary(t *testing.T) {
	t.Parallel()

	table := &Table{
		Rows: []AppRecord{
			{AppName: "TransitApp", Risk: RiskHigh},
			{AppName: "BikeShareX", Risk: RiskLow},
			{AppName: "ScooterGo", Risk: RiskLow},
			{AppName: "CarPoolNow", Risk: RiskMedium},
		},
	}

	summary := table.RiskSummary()
	if summary["low"] != 2 {
		t.Errorf("low = %d, want 2", summary["low"])
	}
	if summary["medium"] != 1 {
		t.Errorf("medium = %d, want 1", summary["medium"])
	}
	if summary["high"] != 1 {
		t.Errorf("high = %d, want 1", summary["high"])
	}
}

// TestTableRiskSummaryIncludesZeroCounts ensures the summary always carries an
// entry per class so downstream consumers can iterate over Levels() safely.
func TestTableRiskSummaryIncludesZeroCounts(t *testing.T) {
	t.Parallel()

	summary := (&Table{}).RiskSummary()
	for _, level := range Levels() {
		if _, ok := summary[level.String()]; !ok {
			t.Errorf("summary missing entry for %q", level.String())
		}
	}
}
