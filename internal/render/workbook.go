package render

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/appaudit/appaudit/internal/config"
	"github.com/appaudit/appaudit/internal/model"
)

// WorkbookSheet is the sheet name of the cleaned workbook copy.
const WorkbookSheet = "Sheet1"

// WorkbookRenderer writes the normalized table back into workbook form:
// the same tabular format as the input, but with coerced counts, sentinel
// fills, and the derived risk column included.
type WorkbookRenderer struct {
	cfg *config.Config
}

// NewWorkbookRenderer creates a WorkbookRenderer.
func NewWorkbookRenderer(cfg *config.Config) *WorkbookRenderer {
	return &WorkbookRenderer{cfg: cfg}
}

// Render produces the .xlsx bytes of the cleaned workbook.
// Integer columns are written as numbers so spreadsheet tools sort and
// aggregate them correctly; everything else is written as text.
func (r *WorkbookRenderer) Render(table *model.Table) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close() //nolint:errcheck // In-memory workbook; close failure is harmless

	for i, col := range table.Columns {
		cellName, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, fmt.Errorf("failed to address header cell: %w", err)
		}
		if err := f.SetCellValue(WorkbookSheet, cellName, col.Name); err != nil {
			return nil, fmt.Errorf("failed to write header %q: %w", col.Name, err)
		}
	}

	for rowIdx, record := range table.Rows {
		cells := rowCells(r.cfg.Columns, table.Columns, record)
		for colIdx, col := range table.Columns {
			cellName, err := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			if err != nil {
				return nil, fmt.Errorf("failed to address cell: %w", err)
			}

			var value any = cells[colIdx]
			if col.Kind == model.KindInt {
				value = intCell(table.Columns[colIdx], r.cfg, record)
			}
			if err := f.SetCellValue(WorkbookSheet, cellName, value); err != nil {
				return nil, fmt.Errorf("failed to write cell %s: %w", cellName, err)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to encode workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// intCell returns the integer value behind a KindInt column.
func intCell(col model.Column, cfg *config.Config, record model.AppRecord) int {
	switch col.Name {
	case cfg.Columns.Permissions:
		return record.Permissions
	case cfg.Columns.DangerousPermissions:
		return record.DangerousPermissions
	case cfg.Columns.Trackers:
		return record.Trackers
	default:
		return 0
	}
}
