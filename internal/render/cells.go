package render

import (
	"strconv"

	"github.com/appaudit/appaudit/internal/config"
	"github.com/appaudit/appaudit/internal/model"
)

// cellValue extracts the display value of one declared column from a record.
// The column metadata uses configurable header names, so the mapping back to
// record fields goes through the configured column set.
func cellValue(cols config.Columns, col model.Column, record model.AppRecord) string {
	if col.Kind == model.KindRisk {
		return record.Risk.String()
	}

	switch col.Name {
	case cols.AppName:
		return record.AppName
	case cols.Category:
		return record.Category
	case cols.Permissions:
		return strconv.Itoa(record.Permissions)
	case cols.DangerousPermissions:
		return strconv.Itoa(record.DangerousPermissions)
	case cols.Trackers:
		return strconv.Itoa(record.Trackers)
	case cols.Notes:
		return record.Notes
	default:
		return ""
	}
}

// rowCells extracts the values of all declared columns in render order.
func rowCells(cols config.Columns, columns []model.Column, record model.AppRecord) []string {
	cells := make([]string, len(columns))
	for i, col := range columns {
		cells[i] = cellValue(cols, col, record)
	}
	return cells
}
