package dataset

import (
	"fmt"
	"os"
	"strings"

	"github.com/xuri/excelize/v2"
)

// RawTable is the unprocessed tabular content of one worksheet.
// Cells are kept as strings exactly as excelize reads them; all coercion
// happens in the Normalizer so the two stages stay independently testable.
type RawTable struct {
	// Sheet is the name of the worksheet the data came from.
	Sheet string

	// Headers holds the first row of the sheet, trimmed of whitespace.
	Headers []string

	// Rows holds the remaining rows. Rows may be shorter than Headers
	// because excelize drops trailing empty cells; the Normalizer treats
	// absent cells as empty.
	Rows [][]string
}

// Load reads the first worksheet of the workbook at path into a RawTable.
//
// It fails with ErrSourceNotFound if the file is missing and ErrSourceFormat
// if the file cannot be parsed as a workbook or the sheet has no header row.
// The source file is only ever read, never mutated.
func Load(path string) (*RawTable, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrSourceNotFound, path)
		}
		return nil, fmt.Errorf("failed to stat source workbook %s: %w", path, err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrSourceFormat, path, err)
	}
	defer f.Close() //nolint:errcheck // Read-only handle; close failure is harmless

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: %s: workbook has no sheets", ErrSourceFormat, path)
	}
	sheet := sheets[0]

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrSourceFormat, path, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: %s: sheet %q has no header row", ErrSourceFormat, path, sheet)
	}

	headers := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		headers[i] = strings.TrimSpace(h)
	}

	return &RawTable{
		Sheet:   sheet,
		Headers: headers,
		Rows:    rows[1:],
	}, nil
}
