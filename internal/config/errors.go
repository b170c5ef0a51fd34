package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and provide specific
// information about what is wrong with the configuration.
//
// Design decision: We use package-level sentinel errors rather than
// creating new error instances in Validate(). This allows callers to use
// errors.Is() for programmatic error handling while still providing
// human-readable messages. Using errors.New() here rather than fmt.Errorf()
// because we don't need to include dynamic values in these messages.
var (
	// ErrNoSource is returned when no source workbook path is configured.
	ErrNoSource = errors.New("no source workbook specified: provide --excel-in or keep the default")

	// ErrInvalidBatchSize is returned when the batch size is not positive.
	// A batch size of zero would mean no runs are executed at all.
	ErrInvalidBatchSize = errors.New("invalid batch size: must be positive")

	// ErrInvalidThresholds is returned when a risk threshold is not positive
	// or a medium cutoff exceeds the corresponding high cutoff.
	ErrInvalidThresholds = errors.New("invalid risk thresholds: values must be positive and medium must not exceed high")

	// ErrMissingColor is returned when a risk class has no background color
	// configured and no built-in default applies.
	ErrMissingColor = errors.New("missing color: every risk class needs a background color")

	// ErrEmptySentinel is returned when the unknown-value sentinel is empty.
	// Empty text cells must normalize to a visible sentinel, never to "".
	ErrEmptySentinel = errors.New("empty sentinel: the unknown-value placeholder must be non-empty")

	// ErrMissingColumn is returned when a required column header is not
	// configured. Without the header mapping the loader cannot locate the
	// column in the source sheet.
	ErrMissingColumn = errors.New("missing column header: app name, category, permissions, trackers, and notes headers are required")
)
