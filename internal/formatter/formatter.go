// Package formatter exports run history to various formats (CSV, Markdown, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/iptvx/internal/models"
	"github.com/desertthunder/iptvx/internal/shared"
)

// Format names an export format.
type Format string

const (
	CSV      Format = "csv"
	Markdown Format = "md"
	Text     Format = "txt"
)

// ParseFormat accepts csv, md/markdown and txt/text.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "csv":
		return CSV, nil
	case "md", "markdown":
		return Markdown, nil
	case "txt", "text", "":
		return Text, nil
	default:
		return "", fmt.Errorf("%w: unknown export format %q", shared.ErrInvalidArgument, name)
	}
}

const timeLayout = "2006-01-02 15:04:05"

// ExportToCSV converts runs to CSV with columns: Sequence, ID, Command, Status, Source, Keywords, Settings, Categories, Output, Lines, Error, Created
func ExportToCSV(runs []*models.Run) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Sequence", "ID", "Command", "Status", "Source", "Keywords", "Settings", "Categories", "Output", "Lines", "Error", "Created"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, run := range runs {
		record := []string{
			strconv.Itoa(run.Sequence()),
			run.ID(),
			run.Command(),
			string(run.Status()),
			run.Source(),
			run.KeywordList(),
			run.SettingsPath(),
			strconv.Itoa(run.Categories()),
			run.OutputPath(),
			strconv.Itoa(run.LinesWritten()),
			run.Error(),
			run.CreatedAt().UTC().Format(time.RFC3339),
		}
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

// ExportToMarkdown converts runs to a Markdown table
func ExportToMarkdown(runs []*models.Run) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString("# Run History\n\n")
	buf.WriteString(fmt.Sprintf("**Runs**: %d\n\n", len(runs)))
	if len(runs) == 0 {
		return buf.Bytes(), nil
	}

	buf.WriteString("| # | Command | Status | Source | Result | Created |\n")
	buf.WriteString("|---|---|---|---|---|---|\n")
	for _, run := range runs {
		buf.WriteString(fmt.Sprintf("| %d | %s | %s | %s | %s | %s |\n",
			run.Sequence(),
			run.Command(),
			run.Status(),
			escapeCell(run.Source()),
			escapeCell(summary(run)),
			run.CreatedAt().Local().Format(timeLayout),
		))
	}

	return buf.Bytes(), nil
}

// ExportToText converts runs to plain text format
func ExportToText(runs []*models.Run) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Runs: %d\n\n", len(runs)))
	for _, run := range runs {
		buf.WriteString(fmt.Sprintf("%d. %s %s (%s) - %s\n",
			run.Sequence(), run.Command(), run.Source(), run.Status(), summary(run)))
	}

	return buf.Bytes(), nil
}

// Export renders runs in format f.
func Export(runs []*models.Run, f Format) ([]byte, error) {
	switch f {
	case CSV:
		return ExportToCSV(runs)
	case Markdown:
		return ExportToMarkdown(runs)
	case Text:
		return ExportToText(runs)
	default:
		return nil, fmt.Errorf("%w: unknown export format %q", shared.ErrInvalidArgument, f)
	}
}

// WriteExport renders runs in format f to path.
//
// Defaults to history.{format} as the filename.
func WriteExport(runs []*models.Run, f Format, path string) (string, error) {
	if path == "" {
		path = "history." + string(f)
	}

	data, err := Export(runs, f)
	if err != nil {
		return "", err
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("%w: failed to write export file: %v", shared.ErrSinkUnavailable, err)
	}

	return path, nil
}

func summary(run *models.Run) string {
	if run.Status() == models.RunFailed {
		return "error: " + run.Error()
	}
	switch run.Command() {
	case models.CommandParse:
		return fmt.Sprintf("%d lines to %s", run.LinesWritten(), run.OutputPath())
	default:
		return fmt.Sprintf("%d categories to %s", run.Categories(), run.SettingsPath())
	}
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
