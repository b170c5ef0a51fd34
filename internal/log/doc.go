// Package log provides slog construction helpers and a stage-annotating
// handler for appaudit.
//
// Every failure the pipeline reports should identify the stage it came from.
// Rather than threading a stage string through each call site, the pipeline
// stores the current stage in the context and StageHandler stamps it onto
// every record.
package log
