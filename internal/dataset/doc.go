// Package dataset ingests and normalizes the source workbook.
//
// The package has two stages:
//   - Loader: reads an .xlsx workbook into a raw string table
//   - Normalizer: coerces cell values, fills missing fields, and derives the
//     per-app risk classification
//
// Loader failures (missing or unparsable source) and normalizer failures
// (required columns absent) are fatal to a run: without data there is nothing
// for any downstream artifact to render. Both stages are pure with respect to
// their inputs; re-running on the same workbook yields an identical table.
package dataset
