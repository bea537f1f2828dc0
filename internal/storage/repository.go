// ABOUTME: Repository interface for the daily health record store.
// ABOUTME: Defines the upsert/delete/load contract shared by every backend.
package storage

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/harperreed/healthlog/internal/models"
)

// ErrUnknownBackend is returned when a backend name is not recognized.
var ErrUnknownBackend = errors.New("unknown backend")

// Repository defines the storage interface for daily records.
// This interface allows swapping implementations (e.g., for testing).
type Repository interface {
	// LoadAll returns every record ordered ascending by date.
	// A store with no backing data yet returns an empty slice, not an error.
	LoadAll(ctx context.Context) ([]models.Record, error)

	// Upsert removes any record with the same date, then inserts r.
	Upsert(ctx context.Context, r models.Record) error

	// DeleteByDate removes the record for date. Missing dates are a no-op.
	DeleteByDate(ctx context.Context, date time.Time) error

	// Close releases backend resources.
	Close() error
}

// Watchable is implemented by backends whose data lives in a single local
// file that can be edited outside the process.
type Watchable interface {
	WatchPath() string
}

// sortByDate orders records ascending by date.
func sortByDate(records []models.Record) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Date.Before(records[j].Date)
	})
}

// upsertRecord returns records with any entry for r's date replaced by r.
func upsertRecord(records []models.Record, r models.Record) []models.Record {
	out := deleteRecord(records, r.Date)
	out = append(out, r)
	sortByDate(out)
	return out
}

// deleteRecord returns records without the entry for date.
func deleteRecord(records []models.Record, date time.Time) []models.Record {
	key := models.FormatDate(date)
	out := make([]models.Record, 0, len(records)+1)
	for _, r := range records {
		if r.DateKey() != key {
			out = append(out, r)
		}
	}
	return out
}

// collapseDuplicates keeps the last record seen for each date.
// Older flat files may contain repeated dates written by plain appends.
func collapseDuplicates(records []models.Record) []models.Record {
	index := make(map[string]int, len(records))
	out := make([]models.Record, 0, len(records))
	for _, r := range records {
		if i, ok := index[r.DateKey()]; ok {
			out[i] = r
			continue
		}
		index[r.DateKey()] = len(out)
		out = append(out, r)
	}
	sortByDate(out)
	return out
}
