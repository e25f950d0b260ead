package services

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFileStore_New(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "uploads")
	store, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore returned error: %v", err)
	}
	if store == nil {
		t.Fatal("NewFileStore should not return nil")
	}

	info, err := os.Stat(dir)
	if err != nil {
		t.Fatalf("storage dir was not created: %v", err)
	}
	if !info.IsDir() {
		t.Error("storage path should be a directory")
	}
}

func TestFileStore_Path(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore returned error: %v", err)
	}

	path, err := store.Path("abc123.mp4")
	if err != nil {
		t.Fatalf("Path returned error for valid key: %v", err)
	}
	if path != filepath.Join(dir, "abc123.mp4") {
		t.Errorf("Path = %q, expected key joined under storage dir", path)
	}
}

func TestFileStore_PathRejectsTraversal(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore returned error: %v", err)
	}

	invalid := []string{
		"",
		"../secret",
		"..",
		"a/b",
		"a\\b",
		"nested/../../etc/passwd",
	}
	for _, key := range invalid {
		if _, err := store.Path(key); err == nil {
			t.Errorf("Path(%q) should be rejected", key)
		}
	}
}

func TestFileStore_RemoveMissingFile(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore returned error: %v", err)
	}

	if err := store.Remove("does-not-exist.bin"); err != nil {
		t.Errorf("Remove of a missing file should not error, got %v", err)
	}
}

func TestFileStore_Remove(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore returned error: %v", err)
	}

	key := "stored.txt"
	if err := os.WriteFile(filepath.Join(dir, key), []byte("data"), 0o644); err != nil {
		t.Fatalf("failed to seed file: %v", err)
	}

	if err := store.Remove(key); err != nil {
		t.Fatalf("Remove returned error: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, key)); !os.IsNotExist(err) {
		t.Error("file should be gone after Remove")
	}
}

func TestFileMeta_Structure(t *testing.T) {
	meta := FileMeta{
		FileName:    "rough_cut_v2.mp4",
		StorageKey:  "2f9c.mp4",
		ContentType: "video/mp4",
		Size:        1024,
	}

	if meta.FileName != "rough_cut_v2.mp4" {
		t.Errorf("FileName = %q, expected %q", meta.FileName, "rough_cut_v2.mp4")
	}
	if meta.StorageKey != "2f9c.mp4" {
		t.Errorf("StorageKey = %q, expected %q", meta.StorageKey, "2f9c.mp4")
	}
	if meta.Size != 1024 {
		t.Errorf("Size = %d, expected 1024", meta.Size)
	}
}
