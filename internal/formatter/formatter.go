// package formatter provides functions to export watchlist data and run summaries to various formats (CSV, Markdown, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"arrsync/internal/models"
	"arrsync/internal/tasks"
)

// yearString renders a watchlist item's year, using "?" when it is unknown
func yearString(year int) string {
	if year <= 0 {
		return "?"
	}
	return strconv.Itoa(year)
}

// ExportToCSV converts a watchlist to CSV format with columns: Title, Type, Year
func ExportToCSV(items []models.WatchlistItem) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Title", "Type", "Year"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, item := range items {
		year := ""
		if item.Year > 0 {
			year = strconv.Itoa(item.Year)
		}
		record := []string{item.Title, string(item.Kind), year}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts a watchlist to Markdown format
func ExportToMarkdown(source string, items []models.WatchlistItem) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("# %s watchlist\n\n", source))
	buf.WriteString(fmt.Sprintf("**Items**: %d\n\n", len(items)))

	buf.WriteString("| # | Title | Type | Year |\n")
	buf.WriteString("|---|-------|------|------|\n")
	for i, item := range items {
		buf.WriteString(fmt.Sprintf("| %d | %s | %s | %s |\n", i+1, item.Title, item.Kind, yearString(item.Year)))
	}

	return buf.Bytes(), nil
}

// ExportToText converts a watchlist to plain text format
func ExportToText(source string, items []models.WatchlistItem) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Watchlist: %s\n", source))
	buf.WriteString(fmt.Sprintf("Items: %d\n\n", len(items)))

	for i, item := range items {
		buf.WriteString(fmt.Sprintf("%d. %s (%s) - %s\n", i+1, item.Title, yearString(item.Year), item.Kind))
	}

	return buf.Bytes(), nil
}

// FormatRunSummary renders a run's counters as aligned plain text for CLI output
func FormatRunSummary(result *tasks.RunResult) string {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Mode:           %s\n", result.Mode))
	buf.WriteString(fmt.Sprintf("Watchlist size: %d\n", result.Total()))
	buf.WriteString(fmt.Sprintf("Already synced: %d\n", result.Skipped))
	buf.WriteString(fmt.Sprintf("New movies:     %d\n", result.Movies))
	buf.WriteString(fmt.Sprintf("New shows:      %d\n", result.Shows))
	if result.Unknown > 0 {
		buf.WriteString(fmt.Sprintf("Unknown types:  %d\n", result.Unknown))
	}
	switch {
	case result.Planned > 0:
		buf.WriteString(fmt.Sprintf("Would sync:     %d\n", result.Planned))
	default:
		buf.WriteString(fmt.Sprintf("Synced:         %d\n", result.Synced))
	}
	buf.WriteString(fmt.Sprintf("Failed:         %d\n", result.Failed))
	buf.WriteString(fmt.Sprintf("Cache records:  %d\n", result.CachedTotal))

	return buf.String()
}

// FormatRunHistory renders persisted runs as an aligned plain text table,
// newest first
func FormatRunHistory(runs []*models.RunRecord) string {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("%-4s %-14s %-20s %6s %7s %7s %7s\n", "#", "MODE", "FINISHED", "TOTAL", "SYNCED", "FAILED", "SKIPPED"))
	for _, run := range runs {
		buf.WriteString(fmt.Sprintf("%-4d %-14s %-20s %6d %7d %7d %7d\n",
			run.Sequence,
			run.Mode,
			run.FinishedAt.Format("2006-01-02 15:04:05"),
			run.Total,
			run.Synced,
			run.Failed,
			run.Skipped,
		))
	}

	return buf.String()
}

// WriteCSVExport exports a watchlist to a CSV file.
//
// Defaults to watchlist.csv as the filename.
func WriteCSVExport(items []models.WatchlistItem, filepath string) (string, error) {
	if filepath == "" {
		filepath = "watchlist.csv"
	}

	csvData, err := ExportToCSV(items)
	if err != nil {
		return "", fmt.Errorf("failed to generate CSV: %w", err)
	}

	if err := os.WriteFile(filepath, csvData, 0644); err != nil {
		return "", fmt.Errorf("failed to write CSV file: %w", err)
	}

	return filepath, nil
}

// WriteMarkdownExport exports a watchlist to a Markdown file.
//
// Defaults to watchlist.md as the filename.
func WriteMarkdownExport(source string, items []models.WatchlistItem, filepath string) (string, error) {
	if filepath == "" {
		filepath = "watchlist.md"
	}

	mdData, err := ExportToMarkdown(source, items)
	if err != nil {
		return "", fmt.Errorf("failed to generate Markdown: %w", err)
	}

	if err := os.WriteFile(filepath, mdData, 0644); err != nil {
		return "", fmt.Errorf("failed to write Markdown file: %w", err)
	}

	return filepath, nil
}

// WriteTextExport exports a watchlist to a plain text file.
//
// Defaults to watchlist.txt as the filename.
func WriteTextExport(source string, items []models.WatchlistItem, filepath string) (string, error) {
	if filepath == "" {
		filepath = "watchlist.txt"
	}

	textData, err := ExportToText(source, items)
	if err != nil {
		return "", fmt.Errorf("failed to generate text: %w", err)
	}

	if err := os.WriteFile(filepath, textData, 0644); err != nil {
		return "", fmt.Errorf("failed to write text file: %w", err)
	}

	return filepath, nil
}
