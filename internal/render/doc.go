// Package render turns the normalized table into report artifacts.
//
// Three renderers live here:
//   - HTMLRenderer: the styled, self-contained HTML table with per-row
//     risk coloring
//   - WorkbookRenderer: the cleaned workbook copy in the source format
//   - MarkdownRenderer: a summary report with tables and a mermaid pie chart
//
// Each renderer produces bytes; persistence is the artifact package's job.
// Renderers embed no timestamps, so identical input tables always produce
// byte-identical artifacts.
package render
