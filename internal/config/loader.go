package config

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/appaudit/appaudit/internal/model"
)

// DefaultConfigFile is the default configuration file name.
const DefaultConfigFile = ".appaudit"

// ErrConfigNotFound is returned when the configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// File represents the structure of the .appaudit configuration file.
// Every field is optional; zero values leave the corresponding Config
// default untouched.
type File struct {
	// Columns overrides the source sheet header names.
	Columns *Columns `yaml:"columns,omitempty"`

	// Thresholds overrides the risk-classification cutoffs.
	Thresholds *model.Thresholds `yaml:"thresholds,omitempty"`

	// Colors overrides the per-risk-class background colors.
	// Keys are the lowercase risk labels: low, medium, high.
	Colors map[string]string `yaml:"colors,omitempty"`

	// Sentinel overrides the unknown-value placeholder.
	Sentinel string `yaml:"sentinel,omitempty"`

	// Outputs overrides the default artifact destinations.
	Outputs OutputPaths `yaml:"outputs,omitempty"`
}

// OutputPaths holds artifact destination overrides from the config file.
// CLI flags take precedence over these values, which take precedence over
// the built-in defaults.
type OutputPaths struct {
	// HTML is the destination of the styled HTML table.
	HTML string `yaml:"html,omitempty"`

	// Workbook is the destination of the cleaned workbook copy.
	Workbook string `yaml:"workbook,omitempty"`

	// Markdown is the destination of the Markdown summary.
	Markdown string `yaml:"markdown,omitempty"`

	// PlotsDir is the directory receiving the PNG charts.
	PlotsDir string `yaml:"plots_dir,omitempty"`
}

// LoadConfigFile loads configuration overrides from a YAML file.
// If the file does not exist, it returns ErrConfigNotFound.
// Callers should handle this error appropriately based on whether
// the config file path was explicitly specified by the user.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cf File
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, err
	}

	return &cf, nil
}

// FindConfigFile searches for the configuration file in the following order:
// 1. If configPath is specified, use it directly
// 2. Look for .appaudit in the current directory
// 3. Look for .appaudit in the user's home directory
//
// Returns the path to the configuration file if found, or empty string if not found.
func FindConfigFile(configPath string) string {
	// If explicit path is provided, use it
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	// Check current directory
	cwd, err := os.Getwd()
	if err == nil {
		cwdConfig := filepath.Join(cwd, DefaultConfigFile)
		if _, err := os.Stat(cwdConfig); err == nil {
			return cwdConfig
		}
	}

	// Check home directory
	home, err := os.UserHomeDir()
	if err == nil {
		homeConfig := filepath.Join(home, DefaultConfigFile)
		if _, err := os.Stat(homeConfig); err == nil {
			return homeConfig
		}
	}

	return ""
}

// Apply merges file overrides into the given Config.
// Only fields that are set in the file replace Config values, so defaults
// and CLI flags survive a sparse config file.
func (f *File) Apply(cfg *Config) {
	if f.Columns != nil {
		cols := *f.Columns
		// Unset headers fall back to the configured (default) mapping.
		defaults := cfg.Columns
		if cols.AppName == "" {
			cols.AppName = defaults.AppName
		}
		if cols.Category == "" {
			cols.Category = defaults.Category
		}
		if cols.Permissions == "" {
			cols.Permissions = defaults.Permissions
		}
		if cols.DangerousPermissions == "" {
			cols.DangerousPermissions = defaults.DangerousPermissions
		}
		if cols.Trackers == "" {
			cols.Trackers = defaults.Trackers
		}
		if cols.Notes == "" {
			cols.Notes = defaults.Notes
		}
		cfg.Columns = cols
	}

	if f.Thresholds != nil {
		th := *f.Thresholds
		// Unset cutoffs fall back to the configured (default) thresholds.
		// Zero is never a valid cutoff, so it marks an absent field.
		defaults := cfg.Thresholds
		if th.TrackerHigh == 0 {
			th.TrackerHigh = defaults.TrackerHigh
		}
		if th.TrackerMedium == 0 {
			th.TrackerMedium = defaults.TrackerMedium
		}
		if th.PermissionHigh == 0 {
			th.PermissionHigh = defaults.PermissionHigh
		}
		if th.PermissionMedium == 0 {
			th.PermissionMedium = defaults.PermissionMedium
		}
		cfg.Thresholds = th
	}

	for label, color := range f.Colors {
		if color != "" {
			cfg.Colors[label] = color
		}
	}

	if f.Sentinel != "" {
		cfg.Sentinel = f.Sentinel
	}

	if f.Outputs.HTML != "" {
		cfg.HTMLPath = f.Outputs.HTML
	}
	if f.Outputs.Workbook != "" {
		cfg.WorkbookPath = f.Outputs.Workbook
	}
	if f.Outputs.Markdown != "" {
		cfg.MarkdownPath = f.Outputs.Markdown
	}
	if f.Outputs.PlotsDir != "" {
		cfg.PlotsDir = f.Outputs.PlotsDir
	}
}
