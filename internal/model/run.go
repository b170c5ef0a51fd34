package model

import "time"

// Artifact names used in RunReport results and the history database.
// Each run produces at most one artifact per name.
const (
	ArtifactHTML     = "html"
	ArtifactWorkbook = "workbook"
	ArtifactPlots    = "plots"
	ArtifactMarkdown = "markdown"
)

// ArtifactResult records the outcome of producing one artifact.
type ArtifactResult struct {
	// Name identifies the artifact (one of the Artifact* constants).
	Name string `json:"name"`

	// Path is the destination the artifact was (or would have been)
	// written to. For plots this is the plot directory.
	Path string `json:"path"`

	// Written is true when the artifact was persisted successfully.
	Written bool `json:"written"`

	// Skipped is true when the artifact was not attempted, either because
	// the corresponding skip flag disabled it or because a reported,
	// non-fatal condition (an empty dataset for plots) made it moot.
	Skipped bool `json:"skipped"`

	// Reason explains a skip in human-readable terms. Empty otherwise.
	Reason string `json:"reason,omitempty"`

	// Err holds the failure when the artifact could not be produced.
	// A failed artifact never prevents the others from being attempted.
	Err error `json:"-"`

	// ErrMessage mirrors Err for serialization into the history database.
	ErrMessage string `json:"error,omitempty"`
}

// Failed reports whether this artifact was attempted and could not be
// produced. Skipped artifacts never count as failures.
func (a ArtifactResult) Failed() bool {
	return a.Err != nil && !a.Skipped
}

// RunReport is the outcome of one pipeline run over a single source workbook.
//
// Design decision: We use a single struct that accumulates state as the
// pipeline executes rather than returning values from each step. This keeps
// the Step interface uniform and lets artifact steps record isolated
// failures without aborting the run.
type RunReport struct {
	// Source is the path of the source workbook this run ingested.
	Source string `json:"source"`

	// StartedAt is the timestamp when the run began.
	StartedAt time.Time `json:"started_at"`

	// Table is the normalized table. Nil until the normalize step has run.
	Table *Table `json:"-"`

	// RowCount is the number of normalized rows.
	RowCount int `json:"row_count"`

	// RiskSummary counts apps per risk class, keyed by lowercase label.
	RiskSummary map[string]int `json:"risk_summary"`

	// Artifacts records per-artifact outcomes in production order.
	Artifacts []ArtifactResult `json:"artifacts"`

	// PerformedSteps lists pipeline step names in execution order.
	PerformedSteps []string `json:"performed_steps"`
}

// NewRunReport creates a RunReport for the given source workbook.
func NewRunReport(source string) *RunReport {
	return &RunReport{
		Source:    source,
		StartedAt: time.Now(),
	}
}

// AddArtifact appends an artifact outcome to the run.
func (r *RunReport) AddArtifact(result ArtifactResult) {
	if result.Err != nil && result.ErrMessage == "" {
		result.ErrMessage = result.Err.Error()
	}
	r.Artifacts = append(r.Artifacts, result)
}

// FailedArtifacts returns the artifacts that were attempted but could not
// be produced. The run's exit status is non-zero when this is non-empty.
func (r *RunReport) FailedArtifacts() []ArtifactResult {
	var failed []ArtifactResult
	for _, a := range r.Artifacts {
		if a.Failed() {
			failed = append(failed, a)
		}
	}
	return failed
}

// Artifact returns the result for the named artifact and whether it exists.
func (r *RunReport) Artifact(name string) (ArtifactResult, bool) {
	for _, a := range r.Artifacts {
		if a.Name == name {
			return a, true
		}
	}
	return ArtifactResult{}, false
}
