// Package model defines the core data structures used throughout appaudit.
//
// This package contains the following main types:
//   - AppRecord: One analyzed mobile application with its derived risk class
//   - Table: The ordered, fully-populated table consumed by all renderers
//   - RiskLevel: The low/medium/high risk classification
//   - RunReport: Per-run outcome including the status of every artifact
//
// Design decision: We separate models into their own package to avoid circular
// dependencies. Multiple packages (dataset, render, plot, history) need to use
// these types, so centralizing them prevents import cycles.
//
// The models are designed to be serializable to JSON for history storage and
// the compare subcommand.
package model
