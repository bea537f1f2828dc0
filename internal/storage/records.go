// ABOUTME: Record operations for SQL table storage.
// ABOUTME: Implements Repository methods with delete-then-insert upserts.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/harperreed/healthlog/internal/models"
)

// LoadAll retrieves every record sorted by date ascending.
func (d *DB) LoadAll(ctx context.Context) ([]models.Record, error) {
	query := fmt.Sprintf(`
		SELECT %s, exercise, sleep, mood, memo
		FROM health_data
		ORDER BY date ASC
	`, d.dialect.dateColumn)

	rows, err := d.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("load records: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// Upsert replaces the record for r's date inside a single transaction.
func (d *DB) Upsert(ctx context.Context, r models.Record) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("upsert record: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	del := fmt.Sprintf("DELETE FROM health_data WHERE date = %s", d.dialect.dateParam(1))
	if _, err := tx.ExecContext(ctx, del, r.DateKey()); err != nil {
		return fmt.Errorf("upsert record: %w", err)
	}

	ins := fmt.Sprintf(`
		INSERT INTO health_data (date, exercise, sleep, mood, memo)
		VALUES (%s, %s, %s, %s, %s)
	`, d.dialect.dateParam(1), d.dialect.param(2), d.dialect.param(3), d.dialect.param(4), d.dialect.param(5))
	if _, err := tx.ExecContext(ctx, ins,
		r.DateKey(),
		r.ExerciseMinutes,
		r.SleepHours,
		string(r.Mood),
		r.Memo,
	); err != nil {
		return fmt.Errorf("upsert record: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("upsert record: %w", err)
	}
	return nil
}

// DeleteByDate removes the record for date if present.
func (d *DB) DeleteByDate(ctx context.Context, date time.Time) error {
	query := fmt.Sprintf("DELETE FROM health_data WHERE date = %s", d.dialect.dateParam(1))
	if _, err := d.db.ExecContext(ctx, query, models.FormatDate(date)); err != nil {
		return fmt.Errorf("delete record: %w", err)
	}
	return nil
}

// scanRecords scans rows into a slice of Records.
func scanRecords(rows *sql.Rows) ([]models.Record, error) {
	records := []models.Record{}

	for rows.Next() {
		var dateStr, mood, memo string
		var exercise int
		var sleep float64

		if err := rows.Scan(&dateStr, &exercise, &sleep, &mood, &memo); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}

		date, err := models.ParseDate(dateStr)
		if err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}

		records = append(records, models.Record{
			Date:            date,
			ExerciseMinutes: exercise,
			SleepHours:      sleep,
			Mood:            models.Mood(mood),
			Memo:            models.NormalizeMemo(memo),
		})
	}

	return records, rows.Err()
}
