package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/appaudit/appaudit/internal/config"
	"github.com/appaudit/appaudit/internal/history"
)

// Constants for risk direction and summary messages.
const (
	riskDirectionWorsened  = "worsened"
	riskDirectionImproved  = "improved"
	riskDirectionUnchanged = "unchanged"
	noAppsMessage          = "No apps"
)

// NewCompareCmd creates the compare command.
// This command compares report runs with historical data stored in the database.
func NewCompareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare [xlsx-file]",
		Short: "Compare report runs with historical data",
		Long: `Compare displays differences between the current and previous report runs.

This command retrieves historical run data from the database and shows:
- Changes in the number of apps per privacy-risk class
- Changes in the total number of apps
- Whether the dataset's overall risk improved or worsened

The comparison requires at least two recorded runs for the specified source
workbook. Use 'appaudit report' to generate reports and record runs.

Examples:
  # Compare the latest two runs for a workbook
  appaudit compare apps.xlsx

  # List all recorded runs for a workbook
  appaudit compare --list apps.xlsx

  # Compare with a specific historical run by ID
  appaudit compare --with-run-id 5 apps.xlsx

  # Compare runs since a specific date
  appaudit compare --since "2026-01-01" apps.xlsx

  # Output comparison in JSON format
  appaudit compare --json apps.xlsx

  # List all source workbooks in the database
  appaudit compare --list-sources`,
		Args: cobra.MaximumNArgs(1),
		RunE: runCompareCmd,
	}

	// History listing flags
	cmd.Flags().BoolP("list", "l", false,
		"List run history for the specified source workbook")
	cmd.Flags().BoolP("list-sources", "L", false,
		"List all source workbooks in the database")

	// Comparison target flags
	cmd.Flags().Int64P("with-run-id", "i", 0,
		"Compare with a specific run by ID (use --list to see available IDs)")
	cmd.Flags().StringP("since", "s", "",
		"Compare with the first run after this date (format: YYYY-MM-DD)")

	// Output format flags
	cmd.Flags().BoolP("json", "j", false,
		"Output comparison result in JSON format")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output comparison result in Markdown format")

	return cmd
}

// runCompareCmd executes the compare command.
func runCompareCmd(cmd *cobra.Command, args []string) error {
	// Handle --list-sources flag first (requires database but no source)
	listSources, err := cmd.Flags().GetBool("list-sources")
	if err != nil {
		return err
	}

	// Validate arguments before opening the database (unless --list-sources)
	var source string
	if !listSources {
		if len(args) == 0 {
			return errors.New("source workbook is required (use --list-sources to see recorded workbooks)")
		}
		source = args[0]
	}

	// Use XDG data directory for the database
	dbDir := config.XDGDataDir()

	db, err := history.Open(dbDir, history.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	ctx := context.Background()

	// Handle --list-sources flag
	if listSources {
		return listRecordedSources(ctx, db)
	}

	// Handle --list flag
	listHistory, err := cmd.Flags().GetBool("list")
	if err != nil {
		return err
	}
	if listHistory {
		return listRunHistory(ctx, db, source)
	}

	// Get output format flags
	jsonOutput, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}
	markdownOutput, err := cmd.Flags().GetBool("markdown")
	if err != nil {
		return err
	}

	// Get comparison target flags
	withRunID, err := cmd.Flags().GetInt64("with-run-id")
	if err != nil {
		return err
	}
	sinceDate, err := cmd.Flags().GetString("since")
	if err != nil {
		return err
	}

	// Perform comparison
	return runComparison(ctx, db, source, withRunID, sinceDate, jsonOutput, markdownOutput)
}

// listRecordedSources lists all source workbooks with recorded runs.
func listRecordedSources(ctx context.Context, db *history.DB) error {
	sources, err := db.ListSources(ctx)
	if err != nil {
		return fmt.Errorf("failed to list sources: %w", err)
	}

	if len(sources) == 0 {
		fmt.Println("No recorded runs found in the database.")
		fmt.Println("\nUse 'appaudit report <xlsx-file>' to generate a report.")
		return nil
	}

	fmt.Printf("Recorded workbooks (%d):\n\n", len(sources))
	for _, s := range sources {
		fmt.Printf("  • %s\n", s)
	}
	fmt.Println("\nUse 'appaudit compare --list <xlsx-file>' to see run history for a workbook.")

	return nil
}

// listRunHistory lists all recorded runs for a specific source workbook.
func listRunHistory(ctx context.Context, db *history.DB, source string) error {
	runs, err := db.GetRunHistory(ctx, source)
	if err != nil {
		return fmt.Errorf("failed to get run history: %w", err)
	}

	if len(runs) == 0 {
		fmt.Printf("No run history found for %s\n", source)
		fmt.Println("\nUse 'appaudit report' to generate a report for this workbook.")
		return nil
	}

	fmt.Printf("Run history for %s (%d runs):\n\n", source, len(runs))
	fmt.Printf("  %-6s  %-20s  %-6s  %s\n", "ID", "Date", "Apps", "Risk Summary")
	fmt.Println("  " + strings.Repeat("-", 60))

	for _, run := range runs {
		fmt.Printf("  %-6d  %-20s  %-6d  %s\n",
			run.ID,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.RowCount,
			formatSummaryCounts(run.RiskSummary),
		)
	}

	fmt.Println("\nUse 'appaudit compare <xlsx-file>' to compare the latest two runs.")
	fmt.Println("Use 'appaudit compare --with-run-id <id> <xlsx-file>' to compare with a specific run.")

	return nil
}

// formatSummaryCounts formats the risk summary map into a compact string.
func formatSummaryCounts(summary map[string]int) string {
	if summary == nil {
		return "N/A"
	}

	var parts []string
	if v := summary["high"]; v > 0 {
		parts = append(parts, fmt.Sprintf("H:%d", v))
	}
	if v := summary["medium"]; v > 0 {
		parts = append(parts, fmt.Sprintf("M:%d", v))
	}
	if v := summary["low"]; v > 0 {
		parts = append(parts, fmt.Sprintf("L:%d", v))
	}
	if v := summary["unknown"]; v > 0 {
		parts = append(parts, fmt.Sprintf("U:%d", v))
	}

	if len(parts) == 0 {
		return noAppsMessage
	}
	return strings.Join(parts, " ")
}

// runComparison performs the actual comparison between recorded runs.
func runComparison(ctx context.Context, db *history.DB, source string, withRunID int64, sinceDate string, jsonOutput, markdownOutput bool) error {
	// Get the run history
	runs, err := db.GetRunHistory(ctx, source)
	if err != nil {
		return fmt.Errorf("failed to get run history: %w", err)
	}

	if len(runs) == 0 {
		return fmt.Errorf("no run history found for %s", source)
	}

	if len(runs) < 2 && withRunID == 0 && sinceDate == "" {
		return fmt.Errorf("at least 2 runs are required for comparison (found %d)", len(runs))
	}

	// Determine which runs to compare
	var currentRun, previousRun *history.StoredRun

	// Latest run is always the current one
	currentRun = runs[0]

	if withRunID > 0 {
		// Find the run with the specified ID
		previousRun, err = db.GetRunByID(ctx, withRunID)
		if err != nil {
			return fmt.Errorf("failed to get run with ID %d: %w", withRunID, err)
		}
		if previousRun == nil {
			return fmt.Errorf("run with ID %d not found", withRunID)
		}
		// Validate that the run ID belongs to the same workbook
		if previousRun.Source != source {
			return fmt.Errorf("run ID %d belongs to %s, not %s", withRunID, previousRun.Source, source)
		}
	} else if sinceDate != "" {
		// Parse the date and find the first (oldest) run at or after it
		parsedDate, err := time.Parse("2006-01-02", sinceDate)
		if err != nil {
			return fmt.Errorf("invalid date format (use YYYY-MM-DD): %w", err)
		}

		// Runs are sorted by timestamp DESC (newest first), so iterate in
		// reverse to find the oldest run at or after the date.
		for i := len(runs) - 1; i >= 0; i-- {
			r := runs[i]
			if r.Timestamp.After(parsedDate) || r.Timestamp.Equal(parsedDate) {
				previousRun = r
				break
			}
		}
		if previousRun == nil {
			return fmt.Errorf("no runs found since %s", sinceDate)
		}
		if previousRun == currentRun {
			return fmt.Errorf("only one run found since %s; at least 2 runs are required for comparison", sinceDate)
		}
	} else {
		// Default: compare with the previous run
		previousRun = runs[1]
	}

	// Generate comparison result
	comparison := compareRuns(previousRun, currentRun)

	// Output the result
	if jsonOutput {
		return outputComparisonJSON(comparison)
	}
	if markdownOutput {
		return outputComparisonMarkdown(comparison)
	}
	return outputComparisonText(comparison)
}

// ComparisonResult holds the result of comparing two recorded runs.
type ComparisonResult struct {
	// Source is the source workbook path.
	Source string `json:"source"`

	// PreviousRun contains metadata about the previous run.
	PreviousRun RunMetadata `json:"previous_run"`

	// CurrentRun contains metadata about the current run.
	CurrentRun RunMetadata `json:"current_run"`

	// RiskChange describes the overall change in risk between runs.
	RiskChange RiskChange `json:"risk_change"`
}

// RunMetadata contains metadata about a run for comparison display.
type RunMetadata struct {
	// Timestamp is when the run was recorded.
	Timestamp time.Time `json:"timestamp"`

	// TotalApps is the number of apps in the dataset.
	TotalApps int `json:"total_apps"`

	// HighCount is the number of high-risk apps.
	HighCount int `json:"high_count"`

	// MediumCount is the number of medium-risk apps.
	MediumCount int `json:"medium_count"`

	// LowCount is the number of low-risk apps.
	LowCount int `json:"low_count"`
}

// RiskChange describes the change in risk between runs.
type RiskChange struct {
	// Direction is "improved", "worsened", or "unchanged".
	Direction string `json:"direction"`

	// HighDelta is the change in high-risk app count.
	HighDelta int `json:"high_delta"`

	// MediumDelta is the change in medium-risk app count.
	MediumDelta int `json:"medium_delta"`

	// LowDelta is the change in low-risk app count.
	LowDelta int `json:"low_delta"`

	// TotalDelta is the change in total app count.
	TotalDelta int `json:"total_delta"`
}

// compareRuns compares two recorded runs and generates a comparison result.
func compareRuns(previous, current *history.StoredRun) *ComparisonResult {
	return &ComparisonResult{
		Source:      current.Source,
		PreviousRun: runMetadata(previous),
		CurrentRun:  runMetadata(current),
		RiskChange:  calculateRiskChange(runMetadata(previous), runMetadata(current)),
	}
}

// runMetadata extracts the comparison metadata from a stored run.
func runMetadata(run *history.StoredRun) RunMetadata {
	meta := RunMetadata{
		Timestamp: run.Timestamp,
		TotalApps: run.RowCount,
	}
	if run.RiskSummary != nil {
		meta.HighCount = run.RiskSummary["high"]
		meta.MediumCount = run.RiskSummary["medium"]
		meta.LowCount = run.RiskSummary["low"]
	}
	return meta
}

// calculateRiskChange calculates the change in risk between two runs.
func calculateRiskChange(previous, current RunMetadata) RiskChange {
	change := RiskChange{
		HighDelta:   current.HighCount - previous.HighCount,
		MediumDelta: current.MediumCount - previous.MediumCount,
		LowDelta:    current.LowCount - previous.LowCount,
		TotalDelta:  current.TotalApps - previous.TotalApps,
	}

	// Determine overall direction based on weighted score.
	// High-risk changes have more weight than medium, low apps carry none.
	previousScore := previous.HighCount*10 + previous.MediumCount*3
	currentScore := current.HighCount*10 + current.MediumCount*3

	if currentScore < previousScore {
		change.Direction = riskDirectionImproved
	} else if currentScore > previousScore {
		change.Direction = riskDirectionWorsened
	} else {
		change.Direction = riskDirectionUnchanged
	}

	return change
}

// outputComparisonJSON outputs the comparison result in JSON format.
func outputComparisonJSON(result *ComparisonResult) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

// outputComparisonMarkdown outputs the comparison result in Markdown format.
func outputComparisonMarkdown(result *ComparisonResult) error {
	fmt.Printf("# Run Comparison: %s\n\n", result.Source)

	// Risk change summary
	fmt.Println("## Summary")
	fmt.Printf("\n**Risk Status:** %s\n\n", formatRiskDirection(result.RiskChange.Direction))

	// Run metadata table
	fmt.Println("| Metric | Previous | Current | Change |")
	fmt.Println("|--------|----------|---------|--------|")
	fmt.Printf("| Date | %s | %s | - |\n",
		result.PreviousRun.Timestamp.Format("2006-01-02 15:04"),
		result.CurrentRun.Timestamp.Format("2006-01-02 15:04"))
	fmt.Printf("| High | %d | %d | %s |\n",
		result.PreviousRun.HighCount,
		result.CurrentRun.HighCount,
		formatDelta(result.RiskChange.HighDelta))
	fmt.Printf("| Medium | %d | %d | %s |\n",
		result.PreviousRun.MediumCount,
		result.CurrentRun.MediumCount,
		formatDelta(result.RiskChange.MediumDelta))
	fmt.Printf("| Low | %d | %d | %s |\n",
		result.PreviousRun.LowCount,
		result.CurrentRun.LowCount,
		formatDelta(result.RiskChange.LowDelta))
	fmt.Printf("| **Total** | **%d** | **%d** | **%s** |\n",
		result.PreviousRun.TotalApps,
		result.CurrentRun.TotalApps,
		formatDelta(result.RiskChange.TotalDelta))

	return nil
}

// outputComparisonText outputs the comparison result in human-readable text.
func outputComparisonText(result *ComparisonResult) error {
	fmt.Printf("Run Comparison: %s\n", result.Source)
	fmt.Println(strings.Repeat("=", 60))

	// Risk change summary
	fmt.Printf("\nRisk Status: %s\n", formatRiskDirection(result.RiskChange.Direction))

	// Run dates
	fmt.Printf("\nPrevious run: %s\n", result.PreviousRun.Timestamp.Format("2006-01-02 15:04:05"))
	fmt.Printf("Current run:  %s\n", result.CurrentRun.Timestamp.Format("2006-01-02 15:04:05"))

	// Summary table
	fmt.Println("\nRisk Summary:")
	fmt.Printf("  %-10s  %-10s  %-10s  %-10s\n", "Class", "Previous", "Current", "Change")
	fmt.Println("  " + strings.Repeat("-", 45))
	fmt.Printf("  %-10s  %-10d  %-10d  %-10s\n", "High",
		result.PreviousRun.HighCount, result.CurrentRun.HighCount,
		formatDelta(result.RiskChange.HighDelta))
	fmt.Printf("  %-10s  %-10d  %-10d  %-10s\n", "Medium",
		result.PreviousRun.MediumCount, result.CurrentRun.MediumCount,
		formatDelta(result.RiskChange.MediumDelta))
	fmt.Printf("  %-10s  %-10d  %-10d  %-10s\n", "Low",
		result.PreviousRun.LowCount, result.CurrentRun.LowCount,
		formatDelta(result.RiskChange.LowDelta))
	fmt.Println("  " + strings.Repeat("-", 45))
	fmt.Printf("  %-10s  %-10d  %-10d  %-10s\n", "Total",
		result.PreviousRun.TotalApps, result.CurrentRun.TotalApps,
		formatDelta(result.RiskChange.TotalDelta))

	return nil
}

// formatRiskDirection formats the risk change direction for display.
func formatRiskDirection(direction string) string {
	switch direction {
	case riskDirectionImproved:
		return "IMPROVED (risk decreased)"
	case riskDirectionWorsened:
		return "WORSENED (risk increased)"
	default:
		return "UNCHANGED"
	}
}

// formatDelta formats a numeric delta with sign for display.
func formatDelta(delta int) string {
	if delta > 0 {
		return "+" + strconv.Itoa(delta)
	} else if delta < 0 {
		return strconv.Itoa(delta)
	}
	return "0"
}
