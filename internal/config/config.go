package config

import (
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/appaudit/appaudit/internal/model"
)

// Default configuration values.
// The thresholds and colors follow the conventions of the original study
// sheet where applicable; all of them can be overridden via the .appaudit
// configuration file.
const (
	// DefaultSourcePath is the workbook read when no --excel-in is given.
	DefaultSourcePath = "mobility_apps.xlsx"

	// DefaultHTMLPath is the default destination of the styled HTML table.
	DefaultHTMLPath = "mobility_apps.html"

	// DefaultWorkbookPath is the default destination of the cleaned workbook.
	// It deliberately differs from DefaultSourcePath so a default run never
	// overwrites its own input.
	DefaultWorkbookPath = "mobility_apps_clean.xlsx"

	// DefaultMarkdownPath is the default destination of the Markdown summary.
	DefaultMarkdownPath = "mobility_apps.md"

	// DefaultPlotsDir is the default directory for generated PNG charts.
	DefaultPlotsDir = "plots"

	// DefaultSentinel is the value written into text cells that are empty in
	// the source sheet. Using an explicit sentinel instead of the empty
	// string keeps the normalized table free of ragged rows.
	DefaultSentinel = "unknown"

	// DefaultBatchSize is the number of source workbooks processed
	// concurrently when multiple --excel-in paths are given. Each individual
	// pipeline run remains strictly sequential.
	DefaultBatchSize = 4

	// AppName is the application name used for XDG directory paths.
	AppName = "appaudit"
)

// DefaultThresholds returns the default risk-classification cutoffs.
// An app is high risk with 5+ trackers or 10+ permissions, medium risk with
// 2+ trackers or 5+ permissions, and low risk otherwise. The original study
// does not document exact cutoffs, so these are deliberate, overridable
// defaults rather than a guess at the study's values.
func DefaultThresholds() model.Thresholds {
	return model.Thresholds{
		TrackerHigh:      5,
		TrackerMedium:    2,
		PermissionHigh:   10,
		PermissionMedium: 5,
	}
}

// DefaultColors returns the default row background colors per risk class,
// keyed by the canonical lowercase risk label. The pastel green/yellow/red
// hues match the yes/no palette of the original study sheet.
func DefaultColors() map[string]string {
	return map[string]string{
		"low":    "#b7f4c7",
		"medium": "#ffe8a1",
		"high":   "#ffd6cf",
	}
}

// Columns maps the semantic dataset fields to the header names used in the
// source sheet. Header names vary between exported sheets, so they are a
// configuration concern, not part of the core.
type Columns struct {
	// AppName is the header of the application-name column. Required.
	AppName string `yaml:"app_name"`

	// Category is the header of the category column. Required.
	Category string `yaml:"category"`

	// Permissions is the header of the permission count/list column. Required.
	Permissions string `yaml:"permissions"`

	// DangerousPermissions is the header of the dangerous-permission subset
	// column. Optional; records default to zero when it is absent.
	DangerousPermissions string `yaml:"dangerous_permissions"`

	// Trackers is the header of the tracker count/list column. Required.
	Trackers string `yaml:"trackers"`

	// Notes is the header of the free-text notes column. Required.
	Notes string `yaml:"notes"`
}

// DefaultColumns returns the header names of the original study sheet.
func DefaultColumns() Columns {
	return Columns{
		AppName:              "App_Name",
		Category:             "Category",
		Permissions:          "Nb_Permissions",
		DangerousPermissions: "Nb_Dangerous_Permissions",
		Trackers:             "Nb_Trackers",
		Notes:                "Notes",
	}
}

// Config holds all configuration options for appaudit.
// This struct is populated from CLI flags and the optional .appaudit file
// and passed through the application via dependency injection rather than
// global state, so runs are reproducible and testable in isolation.
type Config struct {
	// Sources are the source workbook paths. One pipeline run is executed
	// per source. With several sources, outputs are nested under a
	// per-source subdirectory named after the workbook base name.
	Sources []string

	// HTMLPath is the destination of the styled HTML table.
	HTMLPath string

	// WorkbookPath is the destination of the cleaned workbook copy.
	WorkbookPath string

	// MarkdownPath is the destination of the Markdown summary report.
	MarkdownPath string

	// PlotsDir is the directory that receives the generated PNG charts.
	PlotsDir string

	// SkipHTML suppresses production of the HTML artifact.
	SkipHTML bool

	// SkipWorkbook suppresses production of the workbook artifact.
	SkipWorkbook bool

	// SkipPlots suppresses production of the PNG chart artifacts.
	SkipPlots bool

	// SkipMarkdown suppresses production of the Markdown summary.
	SkipMarkdown bool

	// NoHistory disables recording the run in the history database.
	NoHistory bool

	// HistoryDir is the directory holding the history database.
	// Defaults to the XDG data directory.
	HistoryDir string

	// BatchSize is the number of source workbooks processed concurrently.
	BatchSize int

	// Verbose enables detailed log output using slog.LevelDebug.
	// When false, only warnings and errors are logged.
	Verbose bool

	// ConfigFilePath is the path to the configuration file. If empty, the
	// tool searches for .appaudit in the current directory and then in the
	// user's home directory.
	ConfigFilePath string

	// Columns maps dataset fields to source sheet header names.
	Columns Columns

	// Thresholds are the risk-classification cutoffs.
	Thresholds model.Thresholds

	// Colors maps lowercase risk labels to HTML background colors.
	Colors map[string]string

	// Sentinel is the value substituted for empty text cells.
	Sentinel string
}

// NewConfig creates a new Config with default values.
// All fields are set to safe, sensible defaults that work for most use cases.
// Users can override specific values after creation.
//
// Design decision: We use a constructor function instead of relying on
// zero values because most defaults are non-zero (paths, thresholds, colors).
// This also serves as documentation of what the defaults are.
func NewConfig() *Config {
	return &Config{
		Sources:      []string{DefaultSourcePath},
		HTMLPath:     DefaultHTMLPath,
		WorkbookPath: DefaultWorkbookPath,
		MarkdownPath: DefaultMarkdownPath,
		PlotsDir:     DefaultPlotsDir,
		HistoryDir:   XDGDataDir(),
		BatchSize:    DefaultBatchSize,
		Columns:      DefaultColumns(),
		Thresholds:   DefaultThresholds(),
		Colors:       DefaultColors(),
		Sentinel:     DefaultSentinel,
	}
}

// XDGDataDir returns the XDG data directory for appaudit.
// This follows the XDG Base Directory Specification.
// On Linux: ~/.local/share/appaudit
// On macOS: ~/Library/Application Support/appaudit
// On Windows: %LOCALAPPDATA%\appaudit
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// ColorFor returns the configured background color for a risk class,
// falling back to the built-in default when the mapping lacks an entry.
func (c *Config) ColorFor(level model.RiskLevel) string {
	if color, ok := c.Colors[level.String()]; ok && color != "" {
		return color
	}
	return DefaultColors()[level.String()]
}

// Validate checks if the configuration is valid.
// It returns a specific error describing what is invalid.
//
// Design decision: We validate at the config level rather than at each
// point of use to fail fast and provide clear error messages upfront.
// This is called once after CLI parsing, before any ingestion begins.
//
// We chose to return the first error found rather than collecting all errors
// because fixing one error often makes others irrelevant.
func (c *Config) Validate() error {
	// We must have at least one source workbook to ingest
	if len(c.Sources) == 0 {
		return ErrNoSource
	}

	// BatchSize must be positive; zero would mean no runs at all
	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}

	// Thresholds must be positive and ordered medium <= high, otherwise
	// the classification rule degenerates (e.g. everything high)
	t := c.Thresholds
	if t.TrackerMedium <= 0 || t.TrackerHigh <= 0 ||
		t.PermissionMedium <= 0 || t.PermissionHigh <= 0 {
		return ErrInvalidThresholds
	}
	if t.TrackerMedium > t.TrackerHigh || t.PermissionMedium > t.PermissionHigh {
		return ErrInvalidThresholds
	}

	// Every real risk class needs a color, or HTML rows would render unstyled
	for _, level := range model.Levels() {
		if c.ColorFor(level) == "" {
			return ErrMissingColor
		}
	}

	// The sentinel must be non-empty; an empty sentinel would reintroduce
	// the ragged rows that normalization exists to remove
	if c.Sentinel == "" {
		return ErrEmptySentinel
	}

	// Required column headers must be configured
	cols := c.Columns
	if cols.AppName == "" || cols.Category == "" || cols.Permissions == "" ||
		cols.Trackers == "" || cols.Notes == "" {
		return ErrMissingColumn
	}

	return nil
}
