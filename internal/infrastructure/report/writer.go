// Package report persists the batch run summary as a JSON document.
package report

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"CompanyTracker/internal/domain"
	"CompanyTracker/internal/ports"
)

// FileWriter overwrites a single JSON report file on every run.
type FileWriter struct {
	path string
}

var _ ports.ReportWriter = (*FileWriter)(nil)

// NewFileWriter targets the given report path.
func NewFileWriter(path string) *FileWriter {
	return &FileWriter{path: path}
}

// Write marshals the summary and replaces the previous report.
func (w *FileWriter) Write(_ context.Context, summary domain.RunSummary) error {
	payload, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal summary: %w", err)
	}

	if dir := filepath.Dir(w.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create report dir: %w", err)
		}
	}

	if err := os.WriteFile(w.path, payload, 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}
