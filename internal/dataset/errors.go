package dataset

import "errors"

// Ingestion and normalization errors.
//
// Design decision: We use package-level sentinel errors so callers can
// distinguish the fatal ingestion conditions with errors.Is() while the
// wrapped message still carries the offending path or column name.
var (
	// ErrSourceNotFound is returned when the source workbook does not exist.
	ErrSourceNotFound = errors.New("source workbook not found")

	// ErrSourceFormat is returned when the source file exists but cannot be
	// parsed as tabular spreadsheet data (corrupt file, no sheets, or a
	// sheet without a header row).
	ErrSourceFormat = errors.New("source workbook is not valid tabular data")

	// ErrSchemaMismatch is returned when a required column is absent from
	// the source sheet or a structural invariant (unique app names) is
	// violated.
	ErrSchemaMismatch = errors.New("source sheet does not match the expected schema")
)
