package fsstore

import (
	"os"
	"path/filepath"
	"testing"
)

type testRecord struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestWriteAndReadJSONRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "record.json")

	in := testRecord{Name: "alpha", Count: 3}
	if err := WriteJSONAtomic(path, in, FileOptions{}); err != nil {
		t.Fatalf("WriteJSONAtomic: %v", err)
	}

	var out testRecord
	found, err := ReadJSON(path, &out)
	if err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	if !found {
		t.Fatal("expected record to be found")
	}
	if out != in {
		t.Errorf("round trip mismatch: got %+v, want %+v", out, in)
	}
}

func TestReadJSONMissingFile(t *testing.T) {
	var out testRecord
	found, err := ReadJSON(filepath.Join(t.TempDir(), "absent.json"), &out)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if found {
		t.Error("expected found=false for missing file")
	}
}

func TestWriteJSONAtomicLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "record.json")
	if err := WriteJSONAtomic(path, testRecord{Name: "x"}, FileOptions{}); err != nil {
		t.Fatalf("WriteJSONAtomic: %v", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("expected only the target file, got %d entries", len(entries))
	}
}

func TestListJSONFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.json", "a.json"} {
		if err := WriteJSONAtomic(filepath.Join(dir, name), testRecord{}, FileOptions{}); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}

	names, err := ListJSONFiles(dir)
	if err != nil {
		t.Fatalf("ListJSONFiles: %v", err)
	}
	if len(names) != 2 || names[0] != "a.json" || names[1] != "b.json" {
		t.Errorf("unexpected names: %v", names)
	}
}

func TestListJSONFilesMissingDir(t *testing.T) {
	names, err := ListJSONFiles(filepath.Join(t.TempDir(), "absent"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if names != nil {
		t.Errorf("expected nil, got %v", names)
	}
}
