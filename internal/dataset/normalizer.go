package dataset

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/appaudit/appaudit/internal/config"
	"github.com/appaudit/appaudit/internal/model"
)

// RiskColumnName is the header of the derived risk column that the
// Normalizer appends to the table. It never comes from the source sheet.
const RiskColumnName = "Risk"

// Normalizer transforms a RawTable into the fully-populated model.Table.
//
// Normalization is a pure function of the raw table and the configuration:
// the same input always produces the same table, which is what makes the
// downstream artifacts byte-identical across re-runs.
type Normalizer struct {
	// columns maps dataset fields to source header names.
	columns config.Columns

	// thresholds are the risk-classification cutoffs.
	thresholds model.Thresholds

	// sentinel replaces empty text cells.
	sentinel string

	// logger reports recoverable oddities (unparsable counts) at Warn level.
	logger *slog.Logger

	// titleCaser canonicalizes all-lowercase category labels.
	titleCaser cases.Caser
}

// NewNormalizer creates a Normalizer from the given configuration.
// If logger is nil, slog.Default() is used.
func NewNormalizer(cfg *config.Config, logger *slog.Logger) *Normalizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Normalizer{
		columns:    cfg.Columns,
		thresholds: cfg.Thresholds,
		sentinel:   cfg.Sentinel,
		logger:     logger,
		titleCaser: cases.Title(language.English),
	}
}

// columnIndex locates a header in the raw table, returning -1 when absent.
// Matching is exact after whitespace trimming; header spelling is a
// configuration concern, not something we guess at.
func columnIndex(headers []string, name string) int {
	for i, h := range headers {
		if h == name {
			return i
		}
	}
	return -1
}

// Normalize converts the raw table into a model.Table.
//
// For each row it coerces the permission and tracker cells to non-negative
// integers (missing cells count as zero, list-valued cells are counted),
// derives the risk classification, and substitutes the configured sentinel
// for empty text cells. It fails with ErrSchemaMismatch if a required column
// is absent or an app name appears twice.
func (n *Normalizer) Normalize(raw *RawTable) (*model.Table, error) {
	idx, err := n.resolveColumns(raw.Headers)
	if err != nil {
		return nil, err
	}

	table := &model.Table{
		Columns: n.tableColumns(idx.dangerous >= 0),
	}

	seen := make(map[string]struct{}, len(raw.Rows))
	for rowNum, row := range raw.Rows {
		if rowEmpty(row) {
			continue
		}

		record := model.AppRecord{
			AppName:     n.textCell(row, idx.appName),
			Category:    n.categoryCell(row, idx.category),
			Permissions: n.countCell(row, idx.permissions, rowNum, n.columns.Permissions),
			Trackers:    n.countCell(row, idx.trackers, rowNum, n.columns.Trackers),
			Notes:       n.textCell(row, idx.notes),
		}
		if idx.dangerous >= 0 {
			record.DangerousPermissions = n.countCell(row, idx.dangerous, rowNum, n.columns.DangerousPermissions)
		}
		record.Risk = n.thresholds.Classify(record.Permissions, record.Trackers)

		if _, dup := seen[record.AppName]; dup {
			return nil, fmt.Errorf("%w: duplicate app name %q (row %d)",
				ErrSchemaMismatch, record.AppName, rowNum+2)
		}
		seen[record.AppName] = struct{}{}

		table.Rows = append(table.Rows, record)
	}

	return table, nil
}

// columnIndexes holds the resolved positions of the dataset columns.
type columnIndexes struct {
	appName     int
	category    int
	permissions int
	dangerous   int
	trackers    int
	notes       int
}

// resolveColumns maps configured header names to sheet positions.
// Every required column must be present; the dangerous-permission column is
// optional and resolves to -1 when absent.
func (n *Normalizer) resolveColumns(headers []string) (columnIndexes, error) {
	var idx columnIndexes

	required := map[string]*int{
		n.columns.AppName:     &idx.appName,
		n.columns.Category:    &idx.category,
		n.columns.Permissions: &idx.permissions,
		n.columns.Trackers:    &idx.trackers,
		n.columns.Notes:       &idx.notes,
	}
	for name, dst := range required {
		pos := columnIndex(headers, name)
		if pos < 0 {
			return idx, fmt.Errorf("%w: required column %q not found", ErrSchemaMismatch, name)
		}
		*dst = pos
	}

	idx.dangerous = -1
	if n.columns.DangerousPermissions != "" {
		idx.dangerous = columnIndex(headers, n.columns.DangerousPermissions)
	}

	return idx, nil
}

// tableColumns builds the declared column metadata in render order.
func (n *Normalizer) tableColumns(hasDangerous bool) []model.Column {
	cols := []model.Column{
		{Name: n.columns.AppName, Kind: model.KindString},
		{Name: n.columns.Category, Kind: model.KindString},
		{Name: n.columns.Permissions, Kind: model.KindInt},
	}
	if hasDangerous {
		cols = append(cols, model.Column{Name: n.columns.DangerousPermissions, Kind: model.KindInt})
	}
	cols = append(cols,
		model.Column{Name: n.columns.Trackers, Kind: model.KindInt},
		model.Column{Name: RiskColumnName, Kind: model.KindRisk},
		model.Column{Name: n.columns.Notes, Kind: model.KindString},
	)
	return cols
}

// cell returns the trimmed cell at position i, or "" when the row is short.
func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// rowEmpty reports whether every cell of the row is blank.
func rowEmpty(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// textCell normalizes a free-text cell, substituting the sentinel for
// empty values so the table never contains ragged rows.
func (n *Normalizer) textCell(row []string, i int) string {
	v := cell(row, i)
	if v == "" {
		return n.sentinel
	}
	return v
}

// categoryCell normalizes a category label. All-lowercase labels are
// title-cased so "ride hailing" and "Ride Hailing" aggregate together;
// mixed-case labels are kept as the analyst wrote them.
func (n *Normalizer) categoryCell(row []string, i int) string {
	v := cell(row, i)
	if v == "" {
		return n.sentinel
	}
	if v == strings.ToLower(v) {
		return n.titleCaser.String(v)
	}
	return v
}

// countCell coerces a cell to a non-negative integer count.
//
// Accepted forms: an integer string, a blank cell (zero), or a comma or
// semicolon separated list whose items are counted. Anything else, and any
// negative value, normalizes to zero with a warning rather than failing the
// run: a single odd cell should not discard an otherwise usable sheet.
func (n *Normalizer) countCell(row []string, i, rowNum int, column string) int {
	v := cell(row, i)
	if v == "" {
		return 0
	}

	if count, err := strconv.Atoi(v); err == nil {
		if count < 0 {
			n.logger.Warn("negative count treated as zero",
				"column", column,
				"row", rowNum+2,
				"value", v,
			)
			return 0
		}
		return count
	}

	if strings.ContainsAny(v, ",;") {
		return countListItems(v)
	}

	n.logger.Warn("unparsable count treated as zero",
		"column", column,
		"row", rowNum+2,
		"value", v,
	)
	return 0
}

// countListItems counts the non-empty items of a comma or semicolon
// separated list, e.g. "CAMERA, CONTACTS; LOCATION" counts as three.
func countListItems(v string) int {
	items := strings.FieldsFunc(v, func(r rune) bool {
		return r == ',' || r == ';'
	})
	count := 0
	for _, item := range items {
		if strings.TrimSpace(item) != "" {
			count++
		}
	}
	return count
}
