// Package main provides the entry point for the appaudit CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for appaudit.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "appaudit",
		Short: "Privacy report generator for mobility app datasets",
		Long: `appaudit turns a spreadsheet of mobility applications into privacy reports.

It reads an Excel workbook listing apps with their permission and tracker
counts, classifies each app into a low, medium, or high privacy-risk class,
and produces a color-coded HTML table, a cleaned workbook copy, a Markdown
summary, and PNG charts of the aggregates.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewReportCmd())
	cmd.AddCommand(NewCompareCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
