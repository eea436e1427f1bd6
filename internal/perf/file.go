package perf

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// File persists a serialized store as a JSON document on disk.
type File struct {
	Path string
}

// SavePerformance overwrites the file with data. The write goes through a
// temporary file in the same directory so readers never see a partial file.
func (f File) SavePerformance(_ context.Context, data []byte) error {
	dir := filepath.Dir(f.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create performance dir: %w", err)
	}
	tmpFile, err := os.CreateTemp(dir, "performance-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp performance file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("failed to write performance file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close performance file: %w", err)
	}
	if err := os.Rename(tmpPath, f.Path); err != nil {
		return fmt.Errorf("failed to write performance file: %w", err)
	}
	return nil
}

// LoadPerformance reads the file. A missing file reads as empty.
func (f File) LoadPerformance(_ context.Context) ([]byte, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read performance file: %w", err)
	}
	return data, nil
}
