package testutil

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// TempWorkspace is a temporary workspace directory for seeding tests
type TempWorkspace struct {
	Path string
	T    *testing.T
}

// NewTempWorkspace creates a new empty workspace directory
func NewTempWorkspace(t *testing.T) *TempWorkspace {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "notes-seed-test-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}

	return &TempWorkspace{
		Path: tmpDir,
		T:    t,
	}
}

// Cleanup removes the temporary workspace
func (w *TempWorkspace) Cleanup() {
	w.T.Helper()
	if err := os.RemoveAll(w.Path); err != nil {
		w.T.Errorf("failed to cleanup temp workspace: %v", err)
	}
}

// StorePath returns the store directory inside the workspace
func (w *TempWorkspace) StorePath() string {
	return filepath.Join(w.Path, ".codex-notes")
}

// CreateFile creates a file relative to the workspace
func (w *TempWorkspace) CreateFile(name, content string) string {
	w.T.Helper()
	path := filepath.Join(w.Path, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		w.T.Fatalf("failed to create directory: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		w.T.Fatalf("failed to create file: %v", err)
	}
	return path
}

// FileExists checks if a file exists relative to the store directory
func (w *TempWorkspace) FileExists(rel string) bool {
	w.T.Helper()
	_, err := os.Stat(filepath.Join(w.StorePath(), rel))
	return err == nil
}

// ReadFile returns the raw content of a store file
func (w *TempWorkspace) ReadFile(rel string) string {
	w.T.Helper()
	data, err := os.ReadFile(filepath.Join(w.StorePath(), rel))
	if err != nil {
		w.T.Fatalf("failed to read store file: %v", err)
	}
	return string(data)
}

// ReadJSON parses a store file into a generic value
func (w *TempWorkspace) ReadJSON(rel string) map[string]any {
	w.T.Helper()
	var v map[string]any
	if err := json.Unmarshal([]byte(w.ReadFile(rel)), &v); err != nil {
		w.T.Fatalf("failed to parse %s: %v", rel, err)
	}
	return v
}

// CountJSON counts *.json files directly inside a store subdirectory.
// A missing directory counts as zero.
func (w *TempWorkspace) CountJSON(dir string) int {
	w.T.Helper()
	entries, err := os.ReadDir(filepath.Join(w.StorePath(), dir))
	if err != nil {
		if os.IsNotExist(err) {
			return 0
		}
		w.T.Fatalf("failed to read store dir: %v", err)
	}

	count := 0
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".json") {
			count++
		}
	}
	return count
}

// StoreExists checks whether the store directory exists at all
func (w *TempWorkspace) StoreExists() bool {
	w.T.Helper()
	info, err := os.Stat(w.StorePath())
	return err == nil && info.IsDir()
}
