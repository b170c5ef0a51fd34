package plot

import (
	"bytes"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/appaudit/appaudit/internal/config"
	"github.com/appaudit/appaudit/internal/model"
)

// Deterministic chart filenames, one per aggregate metric.
const (
	RiskDistributionFile = "risk_distribution.png"
	PermissionsFile      = "permissions_by_app.png"
	TrackersFile         = "trackers_by_app.png"
)

// ErrEmptyDataset is returned when the table has zero rows: there is
// nothing to aggregate. This is a reported, non-fatal condition; callers
// skip the plot artifact and continue producing the others.
var ErrEmptyDataset = errors.New("empty dataset: nothing to aggregate")

// Chart is one rendered PNG image with its destination filename.
type Chart struct {
	// Filename is the image name under the configured plots directory.
	Filename string

	// PNG holds the encoded image bytes.
	PNG []byte
}

// Plotter renders the summary charts for a normalized table.
type Plotter struct {
	cfg *config.Config
}

// NewPlotter creates a Plotter using the configured risk colors for the
// distribution chart.
func NewPlotter(cfg *config.Config) *Plotter {
	return &Plotter{cfg: cfg}
}

// Render computes the aggregates and renders all charts.
// It fails with ErrEmptyDataset when the table has no rows.
func (p *Plotter) Render(table *model.Table) ([]Chart, error) {
	if table.Empty() {
		return nil, ErrEmptyDataset
	}

	riskChart, err := p.renderRiskDistribution(table)
	if err != nil {
		return nil, err
	}
	permChart, err := p.renderPerApp(table, PermissionsFile,
		"Declared permissions per mobility app",
		func(r model.AppRecord) int { return r.Permissions })
	if err != nil {
		return nil, err
	}
	trackerChart, err := p.renderPerApp(table, TrackersFile,
		"Tracker count per mobility app",
		func(r model.AppRecord) int { return r.Trackers })
	if err != nil {
		return nil, err
	}

	return []Chart{riskChart, permChart, trackerChart}, nil
}

// renderRiskDistribution renders apps-per-risk-class as a bar chart, with
// each bar filled in the class's configured color.
func (p *Plotter) renderRiskDistribution(table *model.Table) (Chart, error) {
	summary := table.RiskSummary()

	bars := make([]chart.Value, 0, len(model.Levels()))
	maxCount := 0
	for _, level := range model.Levels() {
		count := summary[level.String()]
		if count > maxCount {
			maxCount = count
		}
		bars = append(bars, chart.Value{
			Label: level.String(),
			Value: float64(count),
			Style: chart.Style{
				FillColor:   hexColor(p.cfg.ColorFor(level)),
				StrokeColor: hexColor(p.cfg.ColorFor(level)),
			},
		})
	}

	graph := chart.BarChart{
		Title:      "Apps per risk class",
		Width:      640,
		Height:     480,
		BarWidth:   80,
		Background: chart.Style{Padding: chart.Box{Top: 40}},
		YAxis:      countAxis(maxCount),
		Bars:       bars,
	}

	return renderPNG(RiskDistributionFile, graph)
}

// renderPerApp renders one bar per app for the given metric.
// Apps are ordered by value descending, then name, so the chart layout is
// deterministic even when counts tie.
func (p *Plotter) renderPerApp(table *model.Table, filename, title string, metric func(model.AppRecord) int) (Chart, error) {
	records := make([]model.AppRecord, len(table.Rows))
	copy(records, table.Rows)
	sort.SliceStable(records, func(i, j int) bool {
		vi, vj := metric(records[i]), metric(records[j])
		if vi != vj {
			return vi > vj
		}
		return records[i].AppName < records[j].AppName
	})

	bars := make([]chart.Value, 0, len(records))
	maxValue := 0
	for _, record := range records {
		value := metric(record)
		if value > maxValue {
			maxValue = value
		}
		bars = append(bars, chart.Value{
			Label: record.AppName,
			Value: float64(value),
		})
	}

	graph := chart.BarChart{
		Title:      title,
		Width:      chartWidth(len(bars)),
		Height:     480,
		BarWidth:   40,
		Background: chart.Style{Padding: chart.Box{Top: 40}},
		YAxis:      countAxis(maxValue),
		Bars:       bars,
	}

	return renderPNG(filename, graph)
}

// countAxis builds a Y axis anchored at zero. The upper bound is at least
// one so a chart of all-zero counts still has a valid range.
func countAxis(maxCount int) chart.YAxis {
	upper := float64(maxCount)
	if upper < 1 {
		upper = 1
	}
	return chart.YAxis{
		Range: &chart.ContinuousRange{Min: 0, Max: upper * 1.1},
	}
}

// chartWidth scales the image with the number of bars so labels stay legible.
func chartWidth(bars int) int {
	width := bars * 70
	if width < 640 {
		return 640
	}
	return width
}

// renderPNG encodes a bar chart as PNG bytes.
func renderPNG(filename string, graph chart.BarChart) (Chart, error) {
	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return Chart{}, fmt.Errorf("failed to render %s: %w", filename, err)
	}
	return Chart{Filename: filename, PNG: buf.Bytes()}, nil
}

// hexColor converts a "#rrggbb" config color into a drawing color.
func hexColor(hex string) drawing.Color {
	return drawing.ColorFromHex(strings.TrimPrefix(hex, "#"))
}
