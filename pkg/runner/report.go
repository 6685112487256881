package runner

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/afero"
)

// ReportWriter writes the end-of-run artifacts.
type ReportWriter struct {
	fs        afero.Fs
	outputDir string
}

// NewReportWriter creates a writer rooted at outputDir on fs.
func NewReportWriter(fs afero.Fs, outputDir string) *ReportWriter {
	return &ReportWriter{
		fs:        fs,
		outputDir: outputDir,
	}
}

// Dir is the directory the current run's artifacts go to.
func (w *ReportWriter) Dir(summary *Summary) string {
	name := summary.StartTime.Format("20060102_150405")
	if len(summary.RunID) >= 8 {
		name += "-" + summary.RunID[:8]
	}
	return filepath.Join(w.outputDir, name)
}

// WriteAll writes run.json and summary.md.
func (w *ReportWriter) WriteAll(summary *Summary) error {
	dir := w.Dir(summary)
	if err := w.fs.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if err := w.WriteRunJSON(dir, summary); err != nil {
		return err
	}
	if err := w.WriteSummaryMarkdown(dir, summary); err != nil {
		return err
	}
	return nil
}

// WriteRunJSON writes the full summary as JSON
func (w *ReportWriter) WriteRunJSON(dir string, summary *Summary) error {
	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal run summary: %w", err)
	}

	if err := afero.WriteFile(w.fs, filepath.Join(dir, "run.json"), data, 0600); err != nil {
		return fmt.Errorf("failed to write run JSON: %w", err)
	}
	return nil
}

// WriteSummaryMarkdown writes a human-readable summary
func (w *ReportWriter) WriteSummaryMarkdown(dir string, summary *Summary) error {
	var md strings.Builder

	md.WriteString("# Viewbot Run Summary\n\n")
	md.WriteString(fmt.Sprintf("**Run:** %s\n\n", summary.RunID))
	md.WriteString(fmt.Sprintf("**Status:** %s\n\n", summary.Status))
	md.WriteString(fmt.Sprintf("**Started:** %s\n\n", summary.StartTime.Format(time.RFC3339)))
	md.WriteString(fmt.Sprintf("**Completed:** %s\n\n", summary.EndTime.Format(time.RFC3339)))
	md.WriteString(fmt.Sprintf("**Duration:** %s\n\n", summary.Duration.Round(time.Second)))

	if summary.Error != "" {
		md.WriteString(fmt.Sprintf("❌ **Error:** %s\n\n", summary.Error))
	}

	if len(summary.Outcomes) > 0 {
		md.WriteString("## Videos\n\n")
		for _, o := range summary.Outcomes {
			mark := "✅"
			if !o.Succeeded {
				mark = "❌"
			}
			md.WriteString(fmt.Sprintf("- %s %s (%d attempt", mark, o.URL, o.Attempts))
			if o.Attempts != 1 {
				md.WriteString("s")
			}
			md.WriteString(")\n")
		}
		md.WriteString("\n")
	}

	md.WriteString("## Metrics\n\n")
	md.WriteString(fmt.Sprintf("- **Videos:** %d\n", summary.Metrics.Total))
	md.WriteString(fmt.Sprintf("- **Watched:** %d\n", summary.Metrics.Succeeded))
	md.WriteString(fmt.Sprintf("- **Failed:** %d\n", summary.Metrics.Failed))
	md.WriteString(fmt.Sprintf("- **Not reached:** %d\n", summary.Metrics.Skipped))
	md.WriteString(fmt.Sprintf("- **Attempts:** %d\n", summary.Metrics.Attempts))

	if err := afero.WriteFile(w.fs, filepath.Join(dir, "summary.md"), []byte(md.String()), 0600); err != nil {
		return fmt.Errorf("failed to write summary markdown: %w", err)
	}
	return nil
}
