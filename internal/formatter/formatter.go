// Package formatter renders sync run reports as CSV, Markdown or plain text.
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/duesync/internal/models"
	"github.com/desertthunder/duesync/internal/shared"
)

// Report is the printable summary of one sync run.
type Report struct {
	RunID     string
	StartedAt time.Time
	DryRun    bool
	Created   int
	Updated   int
	Skipped   int
	Failed    int
	Actions   []models.RunAction
}

// ReportFromRun builds a [Report] from a journal entry.
func ReportFromRun(run *models.Run) Report {
	return Report{
		RunID:     run.ID(),
		StartedAt: run.StartedAt(),
		DryRun:    run.DryRun(),
		Created:   run.Created(),
		Updated:   run.Updated(),
		Skipped:   run.Skipped(),
		Failed:    run.Failed(),
		Actions:   run.Actions(),
	}
}

// ActionsToCSV converts run actions to CSV with columns: Position, Action, Course ID, Course Code, Assignment, Content, Task ID, Due, Error
func ActionsToCSV(actions []models.RunAction) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Position", "Action", "Course ID", "Course Code", "Assignment", "Content", "Task ID", "Due", "Error"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, a := range actions {
		record := []string{
			strconv.Itoa(a.Position),
			string(a.Kind),
			strconv.FormatInt(a.CourseID, 10),
			a.CourseCode,
			a.Assignment,
			a.Content,
			a.TaskID,
			a.Due,
			a.Error,
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

// ReportToMarkdown renders a report as a Markdown document with a table of actions
func ReportToMarkdown(r Report) ([]byte, error) {
	var buf bytes.Buffer

	title := "Sync run"
	if r.RunID != "" {
		title = fmt.Sprintf("Sync run %s", r.RunID)
	}
	buf.WriteString(fmt.Sprintf("# %s\n\n", title))

	if !r.StartedAt.IsZero() {
		buf.WriteString(fmt.Sprintf("**Started**: %s\n", r.StartedAt.Format(time.RFC3339)))
	}
	if r.DryRun {
		buf.WriteString("**Mode**: dry run\n")
	}
	buf.WriteString(fmt.Sprintf("**Created**: %d\n", r.Created))
	buf.WriteString(fmt.Sprintf("**Updated**: %d\n", r.Updated))
	buf.WriteString(fmt.Sprintf("**Skipped**: %d\n", r.Skipped))
	buf.WriteString(fmt.Sprintf("**Failed**: %d\n\n", r.Failed))

	buf.WriteString("## Actions\n\n")
	if len(r.Actions) == 0 {
		buf.WriteString("No assignments were synced.\n")
		return buf.Bytes(), nil
	}

	buf.WriteString("| # | Action | Task | Due | Result |\n")
	buf.WriteString("|---|--------|------|-----|--------|\n")
	for _, a := range r.Actions {
		result := "ok"
		if a.Failed() {
			result = "failed: " + a.Error
		}
		buf.WriteString(fmt.Sprintf("| %d | %s | %s | %s | %s |\n",
			a.Position+1, a.Kind, escapeCell(a.Content), a.Due, escapeCell(result)))
	}

	return buf.Bytes(), nil
}

// ReportToText renders a report as plain text, one action per line
func ReportToText(r Report) ([]byte, error) {
	var buf bytes.Buffer

	if r.RunID != "" {
		buf.WriteString(fmt.Sprintf("Run: %s\n", r.RunID))
	}
	if r.DryRun {
		buf.WriteString("Mode: dry run\n")
	}
	buf.WriteString(fmt.Sprintf("Created: %d, Updated: %d, Skipped: %d, Failed: %d\n\n", r.Created, r.Updated, r.Skipped, r.Failed))

	for _, a := range r.Actions {
		line := fmt.Sprintf("%d. %s %s (due %s)", a.Position+1, a.Kind, a.Content, a.Due)
		if a.Failed() {
			line += " - " + a.Error
		}
		buf.WriteString(line + "\n")
	}

	return buf.Bytes(), nil
}

// WriteReport writes the report to path, choosing the format from the extension:
// .csv writes the actions table, .md or .markdown a Markdown document, anything else plain text.
func WriteReport(r Report, path string) error {
	if path == "" {
		return fmt.Errorf("%w: report path is empty", shared.ErrInvalidArgument)
	}

	var (
		data []byte
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		data, err = ActionsToCSV(r.Actions)
	case ".md", ".markdown":
		data, err = ReportToMarkdown(r)
	default:
		data, err = ReportToText(r)
	}
	if err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
