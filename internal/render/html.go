package render

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/appaudit/appaudit/internal/config"
	"github.com/appaudit/appaudit/internal/model"
)

// htmlDocument is the complete report page. All styling is inline so the
// document renders identically when opened standalone, with no external
// stylesheet dependency. No timestamp is embedded: the same table always
// produces byte-identical output.
const htmlDocument = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Caption}}</title>
</head>
<body>
<table style="border-collapse:collapse;font-family:sans-serif;font-size:14px">
<caption style="caption-side:top;font-size:16px;font-weight:bold;padding:8px">{{.Caption}}</caption>
<thead>
<tr>
{{- range .Headers}}
<th style="text-align:center;border:1px solid #ccc;padding:6px;background-color:#f2f2f2">{{.}}</th>
{{- end}}
</tr>
</thead>
<tbody>
{{- range .Rows}}
<tr>
{{- $color := .Color}}
{{- range .Cells}}
<td style="text-align:center;border:1px solid #ccc;padding:6px;background-color:{{$color}}">{{.}}</td>
{{- end}}
</tr>
{{- end}}
</tbody>
</table>
</body>
</html>
`

// DefaultCaption is the table caption, kept from the original study sheet.
const DefaultCaption = "Mobility Apps - Tracker & Permission Overview"

// htmlRow is the per-record view passed to the template.
type htmlRow struct {
	// Color is the row background derived solely from the risk class.
	Color template.CSS

	// Cells are the display values in declared column order.
	Cells []string
}

// htmlPage is the root template context.
type htmlPage struct {
	Caption string
	Headers []string
	Rows    []htmlRow
}

// HTMLRenderer renders the normalized table as a styled HTML document.
// Cell background color is determined solely by the row's risk class via
// the configured color mapping.
type HTMLRenderer struct {
	cfg  *config.Config
	tmpl *template.Template
}

// NewHTMLRenderer creates an HTMLRenderer using the given configuration
// for the color mapping and column headers.
func NewHTMLRenderer(cfg *config.Config) *HTMLRenderer {
	return &HTMLRenderer{
		cfg:  cfg,
		tmpl: template.Must(template.New("report").Parse(htmlDocument)),
	}
}

// Render produces the HTML document for the table.
// An empty table still renders as a valid document with a header row and an
// empty body, so the artifact remains useful when the source sheet is empty.
func (r *HTMLRenderer) Render(table *model.Table) ([]byte, error) {
	page := htmlPage{
		Caption: DefaultCaption,
		Headers: make([]string, len(table.Columns)),
	}
	for i, col := range table.Columns {
		page.Headers[i] = col.Name
	}

	for _, record := range table.Rows {
		page.Rows = append(page.Rows, htmlRow{
			Color: template.CSS(r.cfg.ColorFor(record.Risk)), //nolint:gosec // Colors come from validated config, not user data
			Cells: rowCells(r.cfg.Columns, table.Columns, record),
		})
	}

	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, page); err != nil {
		return nil, fmt.Errorf("failed to render HTML report: %w", err)
	}
	return buf.Bytes(), nil
}
