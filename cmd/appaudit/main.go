// Package main provides the entry point for the appaudit CLI.
//
// appaudit generates privacy reports for mobility applications from
// spreadsheet datasets. It reads an Excel workbook of apps with their
// permission and tracker counts, classifies each app's privacy risk,
// and produces a styled HTML table, a cleaned workbook copy, a Markdown
// summary, and PNG charts.
//
// Usage:
//
//	appaudit report --excel-in apps.xlsx
//	appaudit compare --list apps.xlsx
//
// See --help for all available options.
package main

// main is the entry point for appaudit.
func main() {
	Execute()
}
