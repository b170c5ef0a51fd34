package model

// ColumnKind describes the semantic type of a table column.
// The normalizer uses it to decide how to coerce raw cell values, and the
// renderers use it to decide alignment and formatting.
type ColumnKind int

const (
	// KindString is free-form text. Missing values become the configured
	// "unknown" sentinel, never the empty string.
	KindString ColumnKind = iota

	// KindInt is a non-negative integer count. Missing values become zero.
	KindInt

	// KindRisk is the derived categorical risk class.
	KindRisk
)

// String returns a human-readable name for the column kind.
func (k ColumnKind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindRisk:
		return "risk"
	default:
		return "unknown"
	}
}

// Column describes one column of the normalized table.
type Column struct {
	// Name is the display name of the column, e.g. "App_Name".
	Name string `json:"name"`

	// Kind is the semantic type of the column's values.
	Kind ColumnKind `json:"kind"`
}

// AppRecord is one row of the normalized table: a single analyzed mobile
// application. After normalization every field holds a defined value --
// counts default to zero and text fields to the "unknown" sentinel, so
// downstream consumers never see ragged rows.
type AppRecord struct {
	// AppName is the application's display name. Unique within a run.
	AppName string `json:"app_name"`

	// Category is the mobility category, e.g. "Ride Hailing" or "Transit".
	Category string `json:"category"`

	// Permissions is the number of permissions the app requests.
	Permissions int `json:"permissions"`

	// DangerousPermissions is the subset of Permissions classified as
	// dangerous by the platform. Zero when the source sheet lacks the column.
	DangerousPermissions int `json:"dangerous_permissions"`

	// Trackers is the number of third-party trackers detected in the app.
	Trackers int `json:"trackers"`

	// Risk is the classification derived from Permissions and Trackers.
	// It is computed exactly once by the normalizer and never mutated.
	Risk RiskLevel `json:"risk"`

	// Notes holds free-text analyst observations.
	Notes string `json:"notes"`
}

// Table is the normalized, fully-populated tabular representation consumed
// by all downstream stages. Rows preserve source order.
type Table struct {
	// Columns describes the declared columns, in render order.
	Columns []Column `json:"columns"`

	// Rows holds one AppRecord per analyzed application.
	Rows []AppRecord `json:"rows"`
}

// Empty reports whether the table has no rows.
func (t *Table) Empty() bool {
	return len(t.Rows) == 0
}

// RiskSummary counts the apps per risk class.
// The returned map uses the canonical lowercase labels as keys and contains
// an entry for every real class, including zero counts, so that consumers
// can iterate deterministically over Levels().
func (t *Table) RiskSummary() map[string]int {
	summary := make(map[string]int, len(Levels()))
	for _, level := range Levels() {
		summary[level.String()] = 0
	}
	for _, row := range t.Rows {
		summary[row.Risk.String()]++
	}
	return summary
}
