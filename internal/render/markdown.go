package render

import (
	"bytes"
	"fmt"
	"io"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/appaudit/appaudit/internal/config"
	"github.com/appaudit/appaudit/internal/model"
)

// MarkdownRenderer produces a Markdown summary of the normalized table.
// This format is designed for documentation and sharing alongside the
// HTML artifact.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides:
// 1. Type-safe markdown generation
// 2. Support for tables, lists, and code blocks
// 3. Mermaid pie charts for the risk distribution
type MarkdownRenderer struct {
	cfg *config.Config
}

// NewMarkdownRenderer creates a MarkdownRenderer.
func NewMarkdownRenderer(cfg *config.Config) *MarkdownRenderer {
	return &MarkdownRenderer{cfg: cfg}
}

// Render produces the Markdown summary document.
func (r *MarkdownRenderer) Render(table *model.Table) ([]byte, error) {
	var buf bytes.Buffer
	md := markdown.NewMarkdown(&buf)

	md.H1("Mobility App Privacy Report")
	md.PlainText("")

	r.writeSummary(md, table)
	r.writePieChart(md, table)
	r.writeTable(md, table)

	if err := md.Build(); err != nil {
		return nil, fmt.Errorf("failed to render markdown report: %w", err)
	}
	return buf.Bytes(), nil
}

// writeSummary writes the per-class app counts.
func (r *MarkdownRenderer) writeSummary(md *markdown.Markdown, table *model.Table) {
	summary := table.RiskSummary()

	md.H2("Risk Summary")
	md.PlainText("")

	rows := make([][]string, 0, len(model.Levels())+1)
	for _, level := range model.Levels() {
		rows = append(rows, []string{level.String(), strconv.Itoa(summary[level.String()])})
	}
	rows = append(rows, []string{"total", strconv.Itoa(len(table.Rows))})

	md.Table(markdown.TableSet{
		Header: []string{"Risk", "Apps"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writePieChart writes a mermaid pie chart of the risk distribution.
// Empty tables get no chart; an all-zero pie renders as a broken diagram.
func (r *MarkdownRenderer) writePieChart(md *markdown.Markdown, table *model.Table) {
	if table.Empty() {
		return
	}

	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Risk Distribution"),
		piechart.WithShowData(true),
	)

	summary := table.RiskSummary()
	for _, level := range model.Levels() {
		if count := summary[level.String()]; count > 0 {
			chart.LabelAndIntValue(level.String(), uint64(count))
		}
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeTable writes the full normalized table.
func (r *MarkdownRenderer) writeTable(md *markdown.Markdown, table *model.Table) {
	md.H2("Applications")
	md.PlainText("")

	if table.Empty() {
		md.PlainText("No applications in the source sheet.")
		md.PlainText("")
		return
	}

	headers := make([]string, len(table.Columns))
	for i, col := range table.Columns {
		headers[i] = col.Name
	}

	rows := make([][]string, 0, len(table.Rows))
	for _, record := range table.Rows {
		rows = append(rows, rowCells(r.cfg.Columns, table.Columns, record))
	}

	md.Table(markdown.TableSet{
		Header: headers,
		Rows:   rows,
	})
	md.PlainText("")
}
