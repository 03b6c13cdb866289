// Package export writes the per-day JSON snapshot of an aggregate.
package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/0xEljh/timesync/internal/model"
	"github.com/0xEljh/timesync/internal/pipeline"
)

// Writer writes one JSON file per synced day into Dir.
type Writer struct {
	Dir string
}

// NewWriter creates a writer rooted at dir.
func NewWriter(dir string) *Writer {
	return &Writer{Dir: dir}
}

// Path returns the export file path for a date.
func (w *Writer) Path(date string) string {
	return filepath.Join(w.Dir, fmt.Sprintf("time_accounting_%s.json", date))
}

// Write serializes the aggregate to <dir>/time_accounting_<date>.json and
// returns the written path. The file is written to a temp name and renamed so
// readers never observe a partial snapshot; identical input produces an
// identical file.
func (w *Writer) Write(agg model.DailyAggregate) (string, error) {
	if err := os.MkdirAll(w.Dir, 0o755); err != nil {
		return "", fmt.Errorf("%w: creating export dir: %v", pipeline.ErrExportWriteFailed, err)
	}

	data, err := json.MarshalIndent(agg, "", "  ")
	if err != nil {
		return "", fmt.Errorf("%w: encoding aggregate: %v", pipeline.ErrExportWriteFailed, err)
	}
	data = append(data, '\n')

	path := w.Path(agg.Date)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return "", fmt.Errorf("%w: writing export file: %v", pipeline.ErrExportWriteFailed, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("%w: finalizing export file: %v", pipeline.ErrExportWriteFailed, err)
	}
	return path, nil
}
