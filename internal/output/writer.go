package output

import (
	"fmt"
	"os"
	"path/filepath"
)

// File is one rendered artifact.
type File struct {
	Name string
	Data []byte
}

// AtomicWriter handles atomic file writing using temp → rename pattern.
type AtomicWriter struct {
	outputDir string
	tempDir   string
}

// NewAtomicWriter creates a new atomic writer.
func NewAtomicWriter(outputDir string) (*AtomicWriter, error) {
	tempDir := filepath.Join(outputDir, ".tmp")

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	// Clean up stale temp files
	if err := os.RemoveAll(tempDir); err != nil {
		return nil, fmt.Errorf("failed to clean temp directory: %w", err)
	}

	if err := os.MkdirAll(tempDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create temp directory: %w", err)
	}

	return &AtomicWriter{
		outputDir: outputDir,
		tempDir:   tempDir,
	}, nil
}

// WriteFile writes a single file atomically.
func (w *AtomicWriter) WriteFile(name string, data []byte) error {
	return w.WriteAll([]File{{Name: name, Data: data}})
}

// WriteAll stages every file in the temp directory before renaming any of
// them, so a failed write leaves the previous outputs in place.
func (w *AtomicWriter) WriteAll(files []File) error {
	staged := make([]string, 0, len(files))
	cleanup := func() {
		for _, p := range staged {
			os.Remove(p)
		}
	}

	for _, f := range files {
		tempPath := filepath.Join(w.tempDir, f.Name)
		if err := os.WriteFile(tempPath, f.Data, 0644); err != nil {
			cleanup()
			return fmt.Errorf("failed to write temp file %s: %w", f.Name, err)
		}
		staged = append(staged, tempPath)
	}

	for i, f := range files {
		finalPath := filepath.Join(w.outputDir, f.Name)
		if err := os.Rename(staged[i], finalPath); err != nil {
			cleanup()
			return fmt.Errorf("failed to rename temp file %s: %w", f.Name, err)
		}
	}

	return nil
}

// Close removes the temp directory.
func (w *AtomicWriter) Close() error {
	return os.RemoveAll(w.tempDir)
}
