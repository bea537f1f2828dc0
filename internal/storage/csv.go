// ABOUTME: Local CSV file backend for the record store.
// ABOUTME: Reloads and atomically rewrites health_data.csv on every mutation.
package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// CSVFileName is the flat file name inside the data directory.
const CSVFileName = "health_data.csv"

// CSVStore keeps all records in a single CSV file.
type CSVStore struct {
	*flatStore
	path string
}

// Compile-time checks that CSVStore implements Repository and Watchable.
var (
	_ Repository = (*CSVStore)(nil)
	_ Watchable  = (*CSVStore)(nil)
)

// NewCSVStore creates a CSV-backed store at path. The file is created on the
// first write; a missing file reads as an empty collection.
func NewCSVStore(path string) (*CSVStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	s := &CSVStore{path: path}
	s.flatStore = &flatStore{doc: fileDocument{path: path}}
	return s, nil
}

// WatchPath returns the CSV file path.
func (s *CSVStore) WatchPath() string {
	return s.path
}

// Close releases resources. For CSVStore this is a no-op.
func (s *CSVStore) Close() error {
	return nil
}

// fileDocument reads and writes a local file.
type fileDocument struct {
	path string
}

func (f fileDocument) read(_ context.Context) ([]byte, bool, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return data, true, nil
}

// write replaces the file via a temp file and rename so readers never see a
// partially written collection.
func (f fileDocument) write(_ context.Context, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(f.path), ".health_data-*.csv")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Chmod(0600); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("set file permissions: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		return fmt.Errorf("replace %s: %w", f.path, err)
	}
	return nil
}
