// ABOUTME: Data migration between healthlog storage backends.
// ABOUTME: Copies every record from a source repository into a destination.

package storage

import (
	"context"
	"fmt"
)

// MigrateSummary holds counts of migrated entities.
type MigrateSummary struct {
	Records int
	// Replaced counts destination dates that already held a record.
	Replaced int
}

// MigrateData copies all records from src to dst. Records already present in
// dst for the same date are replaced, so migrating twice is harmless.
func MigrateData(ctx context.Context, src, dst Repository) (*MigrateSummary, error) {
	summary := &MigrateSummary{}

	records, err := src.LoadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list source records: %w", err)
	}

	existing, err := dst.LoadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list destination records: %w", err)
	}
	seen := make(map[string]bool, len(existing))
	for _, r := range existing {
		seen[r.DateKey()] = true
	}

	for _, r := range records {
		if err := dst.Upsert(ctx, r); err != nil {
			return nil, fmt.Errorf("upsert record %s: %w", r.DateKey(), err)
		}
		summary.Records++
		if seen[r.DateKey()] {
			summary.Replaced++
		}
	}

	return summary, nil
}
