package main

import (
	"context"
	"testing"
	"time"

	"github.com/appaudit/appaudit/internal/history"
	"github.com/appaudit/appaudit/internal/model"
)

// TestNewCompareCmd tests the compare command creation.
func TestNewCompareCmd(t *testing.T) {
	t.Parallel()

	cmd := NewCompareCmd()

	t.Run("has correct use", func(t *testing.T) {
		t.Parallel()
		if cmd.Use != "compare [xlsx-file]" {
			t.Errorf("expected use 'compare [xlsx-file]', got %q", cmd.Use)
		}
	})

	t.Run("has list flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("list")
		if flag == nil {
			t.Fatal("expected list flag")
		}
		if flag.Shorthand != "l" {
			t.Errorf("expected shorthand 'l', got %q", flag.Shorthand)
		}
	})

	t.Run("has list-sources flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("list-sources")
		if flag == nil {
			t.Fatal("expected list-sources flag")
		}
		if flag.Shorthand != "L" {
			t.Errorf("expected shorthand 'L', got %q", flag.Shorthand)
		}
	})

	t.Run("has with-run-id flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("with-run-id")
		if flag == nil {
			t.Fatal("expected with-run-id flag")
		}
		if flag.Shorthand != "i" {
			t.Errorf("expected shorthand 'i', got %q", flag.Shorthand)
		}
	})

	t.Run("has since flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("since")
		if flag == nil {
			t.Fatal("expected since flag")
		}
		if flag.Shorthand != "s" {
			t.Errorf("expected shorthand 's', got %q", flag.Shorthand)
		}
	})

	t.Run("has output format flags", func(t *testing.T) {
		t.Parallel()
		if cmd.Flags().Lookup("json") == nil {
			t.Error("expected json flag")
		}
		if cmd.Flags().Lookup("markdown") == nil {
			t.Error("expected markdown flag")
		}
	})
}

// savedRun persists a run report with the given risk summary and returns
// its database ID.
func savedRun(t *testing.T, db *history.DB, source string, rows int, summary map[string]int) int64 {
	t.Helper()

	run := model.NewRunReport(source)
	run.RowCount = rows
	run.RiskSummary = summary

	id, err := db.SaveRun(context.Background(), run)
	if err != nil {
		t.Fatal(err)
	}
	return id
}

// TestRunComparison tests the comparison logic against a real database.
func TestRunComparison(t *testing.T) {
	t.Parallel()

	t.Run("no history", func(t *testing.T) {
		t.Parallel()

		db, err := history.Open(t.TempDir(), history.DefaultOptions())
		if err != nil {
			t.Fatal(err)
		}
		defer db.Close()

		if err := runComparison(context.Background(), db, "apps.xlsx", 0, "", false, false); err == nil {
			t.Fatal("expected error for empty history")
		}
	})

	t.Run("single run is not comparable", func(t *testing.T) {
		t.Parallel()

		db, err := history.Open(t.TempDir(), history.DefaultOptions())
		if err != nil {
			t.Fatal(err)
		}
		defer db.Close()

		savedRun(t, db, "apps.xlsx", 3, map[string]int{"low": 3})

		if err := runComparison(context.Background(), db, "apps.xlsx", 0, "", false, false); err == nil {
			t.Fatal("expected error for single run")
		}
	})

	t.Run("compares latest two runs", func(t *testing.T) {
		t.Parallel()

		db, err := history.Open(t.TempDir(), history.DefaultOptions())
		if err != nil {
			t.Fatal(err)
		}
		defer db.Close()

		savedRun(t, db, "apps.xlsx", 3, map[string]int{"low": 2, "high": 1})
		savedRun(t, db, "apps.xlsx", 4, map[string]int{"low": 3, "high": 1})

		if err := runComparison(context.Background(), db, "apps.xlsx", 0, "", true, false); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("with-run-id from other source errors", func(t *testing.T) {
		t.Parallel()

		db, err := history.Open(t.TempDir(), history.DefaultOptions())
		if err != nil {
			t.Fatal(err)
		}
		defer db.Close()

		otherID := savedRun(t, db, "other.xlsx", 1, map[string]int{"low": 1})
		savedRun(t, db, "apps.xlsx", 3, map[string]int{"low": 3})

		if err := runComparison(context.Background(), db, "apps.xlsx", otherID, "", false, false); err == nil {
			t.Fatal("expected error for run ID of another workbook")
		}
	})

	t.Run("unknown run id errors", func(t *testing.T) {
		t.Parallel()

		db, err := history.Open(t.TempDir(), history.DefaultOptions())
		if err != nil {
			t.Fatal(err)
		}
		defer db.Close()

		savedRun(t, db, "apps.xlsx", 3, map[string]int{"low": 3})

		if err := runComparison(context.Background(), db, "apps.xlsx", 999, "", false, false); err == nil {
			t.Fatal("expected error for unknown run ID")
		}
	})

	t.Run("invalid since date errors", func(t *testing.T) {
		t.Parallel()

		db, err := history.Open(t.TempDir(), history.DefaultOptions())
		if err != nil {
			t.Fatal(err)
		}
		defer db.Close()

		savedRun(t, db, "apps.xlsx", 3, map[string]int{"low": 3})
		savedRun(t, db, "apps.xlsx", 3, map[string]int{"low": 3})

		if err := runComparison(context.Background(), db, "apps.xlsx", 0, "not-a-date", false, false); err == nil {
			t.Fatal("expected error for invalid date")
		}
	})
}

// TestCompareRuns tests the comparison result construction.
func TestCompareRuns(t *testing.T) {
	t.Parallel()

	previous := &history.StoredRun{
		Source:      "apps.xlsx",
		Timestamp:   time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC),
		RowCount:    10,
		RiskSummary: map[string]int{"low": 5, "medium": 3, "high": 2},
	}
	current := &history.StoredRun{
		Source:      "apps.xlsx",
		Timestamp:   time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC),
		RowCount:    11,
		RiskSummary: map[string]int{"low": 7, "medium": 3, "high": 1},
	}

	result := compareRuns(previous, current)

	if result.Source != "apps.xlsx" {
		t.Errorf("Source = %q, want apps.xlsx", result.Source)
	}
	if result.RiskChange.HighDelta != -1 {
		t.Errorf("HighDelta = %d, want -1", result.RiskChange.HighDelta)
	}
	if result.RiskChange.LowDelta != 2 {
		t.Errorf("LowDelta = %d, want 2", result.RiskChange.LowDelta)
	}
	if result.RiskChange.TotalDelta != 1 {
		t.Errorf("TotalDelta = %d, want 1", result.RiskChange.TotalDelta)
	}
	if result.RiskChange.Direction != riskDirectionImproved {
		t.Errorf("Direction = %q, want improved", result.RiskChange.Direction)
	}
}

// TestCalculateRiskChange tests the direction classification.
func TestCalculateRiskChange(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		previous RunMetadata
		current  RunMetadata
		want     string
	}{
		{
			name:     "fewer high risk apps improves",
			previous: RunMetadata{HighCount: 2, MediumCount: 1},
			current:  RunMetadata{HighCount: 1, MediumCount: 1},
			want:     riskDirectionImproved,
		},
		{
			name:     "more medium risk apps worsens",
			previous: RunMetadata{MediumCount: 1},
			current:  RunMetadata{MediumCount: 3},
			want:     riskDirectionWorsened,
		},
		{
			name:     "low risk growth is unchanged",
			previous: RunMetadata{LowCount: 2},
			current:  RunMetadata{LowCount: 9},
			want:     riskDirectionUnchanged,
		},
		{
			name:     "one high outweighs three medium resolved",
			previous: RunMetadata{MediumCount: 3},
			current:  RunMetadata{HighCount: 1},
			want:     riskDirectionWorsened,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			change := calculateRiskChange(tt.previous, tt.current)
			if change.Direction != tt.want {
				t.Errorf("Direction = %q, want %q", change.Direction, tt.want)
			}
		})
	}
}

// TestFormatSummaryCounts tests the compact risk summary format.
func TestFormatSummaryCounts(t *testing.T) {
	t.Parallel()

	if got := formatSummaryCounts(nil); got != "N/A" {
		t.Errorf("formatSummaryCounts(nil) = %q, want N/A", got)
	}
	if got := formatSummaryCounts(map[string]int{}); got != noAppsMessage {
		t.Errorf("formatSummaryCounts(empty) = %q, want %q", got, noAppsMessage)
	}
	if got := formatSummaryCounts(map[string]int{"high": 2, "low": 1}); got != "H:2 L:1" {
		t.Errorf("formatSummaryCounts = %q, want 'H:2 L:1'", got)
	}
}

// TestFormatDelta tests signed delta formatting.
func TestFormatDelta(t *testing.T) {
	t.Parallel()

	tests := []struct {
		delta int
		want  string
	}{
		{3, "+3"},
		{-2, "-2"},
		{0, "0"},
	}
	for _, tt := range tests {
		if got := formatDelta(tt.delta); got != tt.want {
			t.Errorf("formatDelta(%d) = %q, want %q", tt.delta, got, tt.want)
		}
	}
}
