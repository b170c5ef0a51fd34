// Package history provides SQLite-based storage of past report runs.
//
// Each pipeline run saves its row count, per-class risk summary, and full
// run report. The compare subcommand reads this history to show how a
// source workbook's risk distribution changed between runs.
//
// The database lives in the XDG data directory by default and is entirely
// optional: disabling history never affects artifact production.
package history
