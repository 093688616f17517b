package vevr

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadRecordFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vevr.bin")
	if err := os.WriteFile(path, sampleFileBytes(), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	rec, err := LoadRecordFile(path)
	if err != nil {
		t.Fatalf("LoadRecordFile() error = %v", err)
	}
	if rec.DataObject.Tag() != tagDataObject || !rec.DataObject.Constructed() {
		t.Error("LoadRecordFile() returned an unexpected data object block")
	}
}

func TestLoadRecordFile_MissingFile(t *testing.T) {
	_, err := LoadRecordFile(filepath.Join(t.TempDir(), "missing.bin"))
	if err == nil {
		t.Fatal("LoadRecordFile() expected error for missing file, got nil")
	}
}
