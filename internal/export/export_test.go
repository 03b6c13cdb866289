package export_test

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/0xEljh/timesync/internal/export"
	"github.com/0xEljh/timesync/internal/model"
	"github.com/0xEljh/timesync/internal/pipeline"
)

func sampleAggregate() model.DailyAggregate {
	return model.DailyAggregate{
		Date: "2024-01-01",
		MinutesByCategory: map[model.Category]int{
			model.CategoryCoding:   90,
			model.CategoryDevTools: 45,
			model.CategoryPlanning: 20,
			model.CategoryAIChat:   0,
			model.CategoryScreen:   30,
		},
		Breakdown: map[model.Category]map[string]int{
			model.CategoryDevTools: {"Neovim": 45},
		},
		TaskLinks: []string{"task-a"},
	}
}

func TestWriteCreatesDatedFile(t *testing.T) {
	dir := t.TempDir()
	w := export.NewWriter(filepath.Join(dir, "export"))

	path, err := w.Write(sampleAggregate())
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if want := filepath.Join(dir, "export", "time_accounting_2024-01-01.json"); path != want {
		t.Errorf("path = %q, want %q", path, want)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading export: %v", err)
	}
	if !bytes.Contains(data, []byte(`"date": "2024-01-01"`)) {
		t.Errorf("export missing date field:\n%s", data)
	}
	if data[len(data)-1] != '\n' {
		t.Error("export file should end with a newline")
	}
}

func TestWriteIsDeterministic(t *testing.T) {
	w := export.NewWriter(t.TempDir())

	path, err := w.Write(sampleAggregate())
	if err != nil {
		t.Fatalf("first Write failed: %v", err)
	}
	first, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := w.Write(sampleAggregate()); err != nil {
		t.Fatalf("second Write failed: %v", err)
	}
	second, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	if !bytes.Equal(first, second) {
		t.Error("re-export of identical aggregate produced different bytes")
	}
}

func TestWriteLeavesNoTempFile(t *testing.T) {
	dir := t.TempDir()
	w := export.NewWriter(dir)
	if _, err := w.Write(sampleAggregate()); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("export dir has %d entries, want 1", len(entries))
	}
}

func TestWriteFailureIsExportWriteFailed(t *testing.T) {
	// A file standing where the export dir should be makes MkdirAll fail.
	dir := t.TempDir()
	blocked := filepath.Join(dir, "not-a-dir")
	if err := os.WriteFile(blocked, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	w := export.NewWriter(blocked)
	_, err := w.Write(sampleAggregate())
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, pipeline.ErrExportWriteFailed) {
		t.Errorf("error %v does not wrap ErrExportWriteFailed", err)
	}
}
