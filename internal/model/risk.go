package model

// RiskLevel represents the derived risk classification of an application.
// It is computed once by the normalizer from permission and tracker counts
// and consumed read-only by the HTML, workbook, plot, and markdown renderers.
//
// Design decision: We use iota-based constants rather than string constants
// for efficiency in comparisons and sorting. The String() method provides
// the canonical lowercase label used in config color maps and report output.
type RiskLevel int

const (
	// RiskUnknown indicates the classification has not been derived yet.
	// Records never leave the normalizer with this value; it exists so that
	// the zero value of RiskLevel is distinguishable from a real class.
	RiskUnknown RiskLevel = iota

	// RiskLow indicates an app below all permission and tracker thresholds.
	RiskLow

	// RiskMedium indicates an app above the lower threshold for either
	// trackers or permissions, but below the high-risk cutoffs.
	RiskMedium

	// RiskHigh indicates an app at or above the high-risk cutoff for
	// trackers or permissions.
	RiskHigh
)

// Levels returns the real risk classes in ascending order of severity.
// RiskUnknown is intentionally excluded; it never appears in normalized data.
func Levels() []RiskLevel {
	return []RiskLevel{RiskLow, RiskMedium, RiskHigh}
}

// String returns the canonical lowercase label of the risk level.
// These labels are also the keys of the color mapping in the configuration
// and the risk summary columns in the history database.
func (r RiskLevel) String() string {
	switch r {
	case RiskLow:
		return "low"
	case RiskMedium:
		return "medium"
	case RiskHigh:
		return "high"
	default:
		return "unknown"
	}
}

// ParseRiskLevel converts a label back into a RiskLevel.
// Unrecognized labels map to RiskUnknown, mirroring String().
func ParseRiskLevel(s string) RiskLevel {
	switch s {
	case "low":
		return RiskLow
	case "medium":
		return RiskMedium
	case "high":
		return RiskHigh
	default:
		return RiskUnknown
	}
}

// Thresholds holds the fixed cutoffs used to derive a RiskLevel from
// permission and tracker counts. The exact values are a configuration
// concern; see config.DefaultThresholds for the defaults.
type Thresholds struct {
	// TrackerHigh is the tracker count at or above which an app is high risk.
	TrackerHigh int `yaml:"tracker_high" json:"tracker_high"`

	// TrackerMedium is the tracker count at or above which an app is at
	// least medium risk.
	TrackerMedium int `yaml:"tracker_medium" json:"tracker_medium"`

	// PermissionHigh is the permission count at or above which an app is
	// high risk.
	PermissionHigh int `yaml:"permission_high" json:"permission_high"`

	// PermissionMedium is the permission count at or above which an app is
	// at least medium risk.
	PermissionMedium int `yaml:"permission_medium" json:"permission_medium"`
}

// Classify derives the risk class for the given permission and tracker
// counts. It is a pure function: the same inputs always produce the same
// class, with no external state involved.
//
// The rule is evaluated strictly from most to least severe so that an app
// crossing both a high and a medium cutoff is classified high.
func (t Thresholds) Classify(permissions, trackers int) RiskLevel {
	if trackers >= t.TrackerHigh || permissions >= t.PermissionHigh {
		return RiskHigh
	}
	if trackers >= t.TrackerMedium || permissions >= t.PermissionMedium {
		return RiskMedium
	}
	return RiskLow
}
