// Package config provides configuration structures and utilities for appaudit.
// It defines the main configuration options for dataset ingestion, risk
// classification thresholds, the artifact color mapping, and output paths.
package config
