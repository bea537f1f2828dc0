// ABOUTME: SQL schema and dialect differences for the health_data table.
// ABOUTME: SQLite stores the date as text; Postgres uses a native DATE column.
package storage

import (
	"context"
	"strconv"
)

// dialect captures the few places where SQLite and Postgres SQL differ.
type dialect struct {
	name   string
	driver string
	schema string
	// dateColumn selects the date as YYYY-MM-DD text.
	dateColumn string
	// param renders the n-th (1-based) bind parameter.
	param func(n int) string
	// dateParam renders the n-th bind parameter as a date.
	dateParam func(n int) string
}

var sqliteDialect = dialect{
	name:   "sqlite",
	driver: "sqlite",
	schema: `
	CREATE TABLE IF NOT EXISTS health_data (
		date TEXT PRIMARY KEY,
		exercise INTEGER NOT NULL,
		sleep REAL NOT NULL,
		mood TEXT NOT NULL,
		memo TEXT NOT NULL DEFAULT ''
	);
	`,
	dateColumn: "date",
	param:      func(int) string { return "?" },
	dateParam:  func(int) string { return "?" },
}

var postgresDialect = dialect{
	name:   "postgres",
	driver: "pgx",
	schema: `
	CREATE TABLE IF NOT EXISTS health_data (
		date DATE PRIMARY KEY,
		exercise INTEGER NOT NULL,
		sleep DOUBLE PRECISION NOT NULL,
		mood TEXT NOT NULL,
		memo TEXT NOT NULL DEFAULT ''
	)`,
	dateColumn: "to_char(date, 'YYYY-MM-DD')",
	param:      func(n int) string { return "$" + strconv.Itoa(n) },
	dateParam:  func(n int) string { return "$" + strconv.Itoa(n) + "::date" },
}

// initSchema creates the health_data table if needed.
func (d *DB) initSchema(ctx context.Context) error {
	_, err := d.db.ExecContext(ctx, d.dialect.schema)
	return err
}
