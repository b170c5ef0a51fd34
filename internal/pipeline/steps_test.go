package pipeline

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/appaudit/appaudit/internal/artifact"
	"github.com/appaudit/appaudit/internal/config"
	"github.com/appaudit/appaudit/internal/model"
	"github.com/appaudit/appaudit/internal/plot"
)

// writeSource writes rows into a fresh source workbook under dir and
// returns its path.
func writeSource(t *testing.T, dir string, rows [][]string) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close() //nolint:errcheck

	for r, row := range rows {
		for c, value := range row {
			cellName, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				t.Fatal(err)
			}
			if err := f.SetCellValue("Sheet1", cellName, value); err != nil {
				t.Fatal(err)
			}
		}
	}

	path := filepath.Join(dir, "apps.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatal(err)
	}
	return path
}

// testConfig returns a Config whose artifact paths all live under dir.
func testConfig(dir string) *config.Config {
	cfg := config.NewConfig()
	cfg.HTMLPath = filepath.Join(dir, "report.html")
	cfg.WorkbookPath = filepath.Join(dir, "clean.xlsx")
	cfg.MarkdownPath = filepath.Join(dir, "report.md")
	cfg.PlotsDir = filepath.Join(dir, "plots")
	return cfg
}

// normalizedRun loads and normalizes the given rows into a run report.
func normalizedRun(t *testing.T, cfg *config.Config, rows [][]string) *model.RunReport {
	t.Helper()

	source := writeSource(t, t.TempDir(), rows)
	run := model.NewRunReport(source)

	load := NewLoadStep(discardLogger())
	if err := load.Do(context.Background(), run); err != nil {
		t.Fatalf("load: %v", err)
	}
	normalize := NewNormalizeStep(cfg, discardLogger(), load)
	if err := normalize.Do(context.Background(), run); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	return run
}

var sampleRows = [][]string{
	{"App_Name", "Category", "Nb_Permissions", "Nb_Trackers", "Notes"},
	{"TransitApp", "transit", "12", "5", "shares location"},
	{"BikeShareX", "bike sharing", "2", "0", ""},
}

func TestLoadAndNormalizeSteps(t *testing.T) {
	t.Parallel()

	t.Run("populate run report", func(t *testing.T) {
		t.Parallel()

		cfg := testConfig(t.TempDir())
		run := normalizedRun(t, cfg, sampleRows)

		if run.Table == nil {
			t.Fatal("Table is nil after normalize")
		}
		if run.RowCount != 2 {
			t.Errorf("RowCount = %d, want 2", run.RowCount)
		}
		if run.RiskSummary["high"] != 1 || run.RiskSummary["low"] != 1 {
			t.Errorf("RiskSummary = %v, want one high and one low", run.RiskSummary)
		}
	})

	t.Run("load failure is fatal", func(t *testing.T) {
		t.Parallel()

		run := model.NewRunReport(filepath.Join(t.TempDir(), "absent.xlsx"))
		load := NewLoadStep(discardLogger())
		if err := load.Do(context.Background(), run); err == nil {
			t.Fatal("expected error for missing source")
		}
	})

	t.Run("normalize without load is fatal", func(t *testing.T) {
		t.Parallel()

		cfg := testConfig(t.TempDir())
		run := model.NewRunReport("apps.xlsx")
		normalize := NewNormalizeStep(cfg, discardLogger(), NewLoadStep(discardLogger()))
		if err := normalize.Do(context.Background(), run); err == nil {
			t.Fatal("expected error when no raw table is loaded")
		}
	})

	t.Run("schema mismatch is fatal", func(t *testing.T) {
		t.Parallel()

		cfg := testConfig(t.TempDir())
		source := writeSource(t, t.TempDir(), [][]string{
			{"Name", "Kind"},
			{"TransitApp", "transit"},
		})
		run := model.NewRunReport(source)

		load := NewLoadStep(discardLogger())
		if err := load.Do(context.Background(), run); err != nil {
			t.Fatalf("load: %v", err)
		}
		normalize := NewNormalizeStep(cfg, discardLogger(), load)
		if err := normalize.Do(context.Background(), run); err == nil {
			t.Fatal("expected schema mismatch error")
		}
	})
}

func TestArtifactSteps(t *testing.T) {
	t.Parallel()

	t.Run("html written", func(t *testing.T) {
		t.Parallel()

		cfg := testConfig(t.TempDir())
		run := normalizedRun(t, cfg, sampleRows)

		step := NewHTMLStep(cfg, discardLogger(), artifact.AllCapabilities())
		if err := step.Do(context.Background(), run); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		result, ok := run.Artifact(model.ArtifactHTML)
		if !ok || !result.Written {
			t.Fatalf("html artifact = %+v, want written", result)
		}
		data, err := os.ReadFile(cfg.HTMLPath)
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Contains(data, []byte("TransitApp")) {
			t.Error("html output does not contain app name")
		}
	})

	t.Run("workbook written", func(t *testing.T) {
		t.Parallel()

		cfg := testConfig(t.TempDir())
		run := normalizedRun(t, cfg, sampleRows)

		step := NewWorkbookStep(cfg, discardLogger(), artifact.AllCapabilities())
		if err := step.Do(context.Background(), run); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		result, ok := run.Artifact(model.ArtifactWorkbook)
		if !ok || !result.Written {
			t.Fatalf("workbook artifact = %+v, want written", result)
		}
		if _, err := os.Stat(cfg.WorkbookPath); err != nil {
			t.Errorf("workbook not on disk: %v", err)
		}
	})

	t.Run("plots written", func(t *testing.T) {
		t.Parallel()

		cfg := testConfig(t.TempDir())
		run := normalizedRun(t, cfg, sampleRows)

		step := NewPlotStep(cfg, discardLogger(), artifact.AllCapabilities())
		if err := step.Do(context.Background(), run); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		result, ok := run.Artifact(model.ArtifactPlots)
		if !ok || !result.Written {
			t.Fatalf("plots artifact = %+v, want written", result)
		}
		for _, name := range []string{
			plot.RiskDistributionFile,
			plot.PermissionsFile,
			plot.TrackersFile,
		} {
			if _, err := os.Stat(filepath.Join(cfg.PlotsDir, name)); err != nil {
				t.Errorf("chart %s not on disk: %v", name, err)
			}
		}
	})

	t.Run("markdown written", func(t *testing.T) {
		t.Parallel()

		cfg := testConfig(t.TempDir())
		run := normalizedRun(t, cfg, sampleRows)

		step := NewMarkdownStep(cfg, discardLogger(), artifact.AllCapabilities())
		if err := step.Do(context.Background(), run); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		result, ok := run.Artifact(model.ArtifactMarkdown)
		if !ok || !result.Written {
			t.Fatalf("markdown artifact = %+v, want written", result)
		}
	})

	t.Run("skip flags record skips", func(t *testing.T) {
		t.Parallel()

		cfg := testConfig(t.TempDir())
		run := normalizedRun(t, cfg, sampleRows)
		caps := artifact.Capabilities{}

		steps := []Step{
			NewHTMLStep(cfg, discardLogger(), caps),
			NewWorkbookStep(cfg, discardLogger(), caps),
			NewPlotStep(cfg, discardLogger(), caps),
			NewMarkdownStep(cfg, discardLogger(), caps),
		}
		for _, step := range steps {
			if err := step.Do(context.Background(), run); err != nil {
				t.Fatalf("%s: unexpected error: %v", step.Name(), err)
			}
		}

		if len(run.Artifacts) != 4 {
			t.Fatalf("got %d artifacts, want 4", len(run.Artifacts))
		}
		for _, a := range run.Artifacts {
			if !a.Skipped || a.Reason == "" {
				t.Errorf("artifact %s = %+v, want skipped with reason", a.Name, a)
			}
		}
	})

	t.Run("empty dataset skips plots", func(t *testing.T) {
		t.Parallel()

		cfg := testConfig(t.TempDir())
		run := normalizedRun(t, cfg, sampleRows[:1])

		step := NewPlotStep(cfg, discardLogger(), artifact.AllCapabilities())
		if err := step.Do(context.Background(), run); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		result, ok := run.Artifact(model.ArtifactPlots)
		if !ok {
			t.Fatal("plots artifact not recorded")
		}
		if !result.Skipped || result.Failed() {
			t.Errorf("plots artifact = %+v, want skipped without failure", result)
		}
	})

	t.Run("write failure is isolated", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		cfg := testConfig(dir)
		// Occupy the html path with a directory so the write fails.
		cfg.HTMLPath = dir
		run := normalizedRun(t, cfg, sampleRows)

		step := NewHTMLStep(cfg, discardLogger(), artifact.AllCapabilities())
		if err := step.Do(context.Background(), run); err != nil {
			t.Fatalf("artifact failure must not abort the run, got %v", err)
		}

		result, ok := run.Artifact(model.ArtifactHTML)
		if !ok || !result.Failed() {
			t.Errorf("html artifact = %+v, want failed", result)
		}
	})
}

func TestCapabilitiesFromConfig(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t.TempDir())
	cfg.SkipHTML = true
	cfg.SkipPlots = true

	caps := CapabilitiesFromConfig(cfg)
	if caps.HTML || caps.Plots {
		t.Errorf("caps = %+v, want html and plots disabled", caps)
	}
	if !caps.Workbook || !caps.Markdown {
		t.Errorf("caps = %+v, want workbook and markdown enabled", caps)
	}
}
