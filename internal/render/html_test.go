package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/appaudit/appaudit/internal/config"
	"github.com/appaudit/appaudit/internal/model"
)

// testTable builds a small normalized table with one row per risk class.
func testTable() *model.Table {
	cols := config.DefaultColumns()
	return &model.Table{
		Columns: []model.Column{
			{Name: cols.AppName, Kind: model.KindString},
			{Name: cols.Category, Kind: model.KindString},
			{Name: cols.Permissions, Kind: model.KindInt},
			{Name: cols.Trackers, Kind: model.KindInt},
			{Name: "Risk", Kind: model.KindRisk},
			{Name: cols.Notes, Kind: model.KindString},
		},
		Rows: []model.AppRecord{
			{AppName: "TransitApp", Category: "Transit", Permissions: 12, Trackers: 5, Risk: model.RiskHigh, Notes: "shares location"},
			{AppName: "CarPoolNow", Category: "Car Pooling", Permissions: 6, Trackers: 1, Risk: model.RiskMedium, Notes: "unknown"},
			{AppName: "BikeShareX", Category: "Bike Sharing", Permissions: 2, Trackers: 0, Risk: model.RiskLow, Notes: "minimal data"},
		},
	}
}

func TestHTMLRendererRender(t *testing.T) {
	t.Parallel()

	cfg := config.NewConfig()
	out, err := NewHTMLRenderer(cfg).Render(testTable())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	html := string(out)

	t.Run("self-contained document", func(t *testing.T) {
		t.Parallel()

		if !strings.HasPrefix(html, "<!DOCTYPE html>") {
			t.Error("expected document to start with a doctype")
		}
		if strings.Contains(html, "<link") || strings.Contains(html, "stylesheet") {
			t.Error("document must not reference external stylesheets")
		}
		if !strings.Contains(html, DefaultCaption) {
			t.Error("expected document to contain the table caption")
		}
	})

	t.Run("one row per record", func(t *testing.T) {
		t.Parallel()

		// Header row plus three data rows.
		if got := strings.Count(html, "<tr>"); got != 4 {
			t.Errorf("got %d <tr> elements, want 4", got)
		}
		for _, app := range []string{"TransitApp", "CarPoolNow", "BikeShareX"} {
			if !strings.Contains(html, app) {
				t.Errorf("expected document to contain %q", app)
			}
		}
	})

	t.Run("row color follows risk class", func(t *testing.T) {
		t.Parallel()

		for _, level := range model.Levels() {
			color := cfg.ColorFor(level)
			if !strings.Contains(html, "background-color:"+color) {
				t.Errorf("expected a row colored %s for %s risk", color, level)
			}
		}
	})
}

// TestHTMLRendererScenarios pins the canonical classification scenarios:
// a high-risk app renders with the high color, a low-risk app with the low
// color, and the colors differ.
func TestHTMLRendererScenarios(t *testing.T) {
	t.Parallel()

	cfg := config.NewConfig()
	table := testTable()
	out, err := NewHTMLRenderer(cfg).Render(table)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	highColor := cfg.ColorFor(model.RiskHigh)
	lowColor := cfg.ColorFor(model.RiskLow)
	if highColor == lowColor {
		t.Fatal("high and low colors must differ")
	}

	// The TransitApp row (12 permissions, 5 trackers) carries the high color.
	html := string(out)
	idx := strings.Index(html, "TransitApp")
	if idx < 0 {
		t.Fatal("TransitApp missing from document")
	}
	start := idx - 400
	if start < 0 {
		start = 0
	}
	if !strings.Contains(html[start:idx], highColor) {
		t.Errorf("TransitApp row not colored %s", highColor)
	}
}

func TestHTMLRendererDeterminism(t *testing.T) {
	t.Parallel()

	r := NewHTMLRenderer(config.NewConfig())
	table := testTable()

	first, err := r.Render(table)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := r.Render(table)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !bytes.Equal(first, second) {
		t.Error("rendering the same table twice produced different bytes")
	}
}

func TestHTMLRendererEmptyTable(t *testing.T) {
	t.Parallel()

	table := testTable()
	table.Rows = nil

	out, err := NewHTMLRenderer(config.NewConfig()).Render(table)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	html := string(out)
	if !strings.Contains(html, "<thead>") || !strings.Contains(html, "</table>") {
		t.Error("empty table must still render a valid document with headers")
	}
	if strings.Count(html, "<tr>") != 1 {
		t.Error("empty table must render exactly the header row")
	}
}
