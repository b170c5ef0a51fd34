// Package pipeline provides a framework for executing report stages in
// sequence.
//
// A run processes one source workbook through loading, normalization, and
// the artifact stages (HTML, workbook copy, plots, markdown summary,
// history). Each stage is implemented as a Step that receives the
// accumulating run report.
//
// Failure policy: the ingestion stages (load, normalize) are fatal -- with
// no data there is nothing to render, so their errors abort the run. The
// artifact stages isolate failures: they record the error in the run report
// and return nil, so one unwritable destination never prevents the other
// artifacts from being attempted.
//
// The pipeline supports processing several source workbooks with bounded
// concurrency via BatchProcessor; each individual run stays strictly
// sequential.
package pipeline
