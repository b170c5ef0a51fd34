// Package plot derives aggregate statistics from the normalized table and
// renders them as PNG chart images.
//
// Three charts are produced, each with a deterministic filename derived from
// its metric name:
//   - risk_distribution.png: apps per risk class
//   - permissions_by_app.png: permission count per app
//   - trackers_by_app.png: tracker count per app
//
// A zero-row table yields ErrEmptyDataset. That condition is reported and
// the plots are skipped; it never prevents the other artifacts from being
// produced.
package plot
