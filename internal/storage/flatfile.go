// ABOUTME: Whole-document store shared by the CSV file and S3 object backends.
// ABOUTME: Every mutation reloads the full collection, applies it, and rewrites it.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/harperreed/healthlog/internal/models"
)

// document is a single blob holding the whole collection as CSV.
type document interface {
	// read returns the blob, or ok=false when it does not exist yet.
	read(ctx context.Context) (data []byte, ok bool, err error)
	write(ctx context.Context, data []byte) error
}

// flatStore implements Repository over a document.
type flatStore struct {
	doc document
	mu  sync.Mutex
}

// LoadAll reads the document and returns its records sorted by date.
func (s *flatStore) LoadAll(ctx context.Context) ([]models.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

// Upsert reloads the collection, replaces r's date, and rewrites it.
func (s *flatStore) Upsert(ctx context.Context, r models.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load(ctx)
	if err != nil {
		return fmt.Errorf("upsert record: %w", err)
	}
	if err := s.save(ctx, upsertRecord(records, r)); err != nil {
		return fmt.Errorf("upsert record: %w", err)
	}
	return nil
}

// DeleteByDate reloads the collection and rewrites it without date.
func (s *flatStore) DeleteByDate(ctx context.Context, date time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load(ctx)
	if err != nil {
		return fmt.Errorf("delete record: %w", err)
	}
	remaining := deleteRecord(records, date)
	if len(remaining) == len(records) {
		return nil
	}
	if err := s.save(ctx, remaining); err != nil {
		return fmt.Errorf("delete record: %w", err)
	}
	return nil
}

func (s *flatStore) load(ctx context.Context) ([]models.Record, error) {
	data, ok, err := s.doc.read(ctx)
	if err != nil {
		return nil, fmt.Errorf("read records: %w", err)
	}
	if !ok || len(bytes.TrimSpace(data)) == 0 {
		return []models.Record{}, nil
	}

	records, err := DecodeCSV(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode records: %w", err)
	}
	return collapseDuplicates(records), nil
}

func (s *flatStore) save(ctx context.Context, records []models.Record) error {
	data, err := ExportCSV(records)
	if err != nil {
		return err
	}
	return s.doc.write(ctx, data)
}
