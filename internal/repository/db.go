package repository

import (
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// InitDB opens (or creates) a SQLite database at the given path and ensures
// all required tables exist. Pass ":memory:" for an in-memory database.
func InitDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	// Every pooled connection to :memory: would get its own empty database.
	if dsn == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set wal mode: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	if err := createTables(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}

	return db, nil
}

func createTables(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS datasets (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			format TEXT NOT NULL,
			file_hash TEXT UNIQUE NOT NULL,
			seller_count INTEGER NOT NULL,
			product_count INTEGER NOT NULL,
			record_count INTEGER NOT NULL,
			ingested_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_datasets_ingested_at ON datasets(ingested_at)`,

		`CREATE TABLE IF NOT EXISTS sellers (
			dataset_id TEXT NOT NULL,
			position INTEGER NOT NULL,
			id TEXT NOT NULL,
			first_name TEXT NOT NULL,
			last_name TEXT NOT NULL,
			start_date TEXT NOT NULL DEFAULT '',
			job_title TEXT NOT NULL DEFAULT '',
			PRIMARY KEY (dataset_id, position),
			FOREIGN KEY (dataset_id) REFERENCES datasets(id)
		)`,

		`CREATE TABLE IF NOT EXISTS products (
			dataset_id TEXT NOT NULL,
			position INTEGER NOT NULL,
			sku TEXT NOT NULL,
			name TEXT NOT NULL DEFAULT '',
			category TEXT NOT NULL DEFAULT '',
			purchase_price REAL NOT NULL,
			sale_price REAL NOT NULL DEFAULT 0,
			PRIMARY KEY (dataset_id, position),
			FOREIGN KEY (dataset_id) REFERENCES datasets(id)
		)`,

		`CREATE TABLE IF NOT EXISTS purchase_records (
			dataset_id TEXT NOT NULL,
			position INTEGER NOT NULL,
			receipt_id TEXT NOT NULL,
			date TEXT NOT NULL DEFAULT '',
			seller_id TEXT NOT NULL,
			customer_id TEXT NOT NULL DEFAULT '',
			total_amount REAL NOT NULL,
			total_discount REAL NOT NULL DEFAULT 0,
			PRIMARY KEY (dataset_id, position),
			FOREIGN KEY (dataset_id) REFERENCES datasets(id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_purchase_records_seller ON purchase_records(dataset_id, seller_id)`,

		`CREATE TABLE IF NOT EXISTS line_items (
			dataset_id TEXT NOT NULL,
			record_position INTEGER NOT NULL,
			position INTEGER NOT NULL,
			sku TEXT NOT NULL,
			quantity INTEGER NOT NULL,
			sale_price REAL NOT NULL,
			discount REAL NOT NULL,
			PRIMARY KEY (dataset_id, record_position, position),
			FOREIGN KEY (dataset_id, record_position) REFERENCES purchase_records(dataset_id, position)
		)`,

		`CREATE TABLE IF NOT EXISTS reports (
			id TEXT PRIMARY KEY,
			dataset_id TEXT NOT NULL,
			revenue_strategy TEXT NOT NULL,
			bonus_strategy TEXT NOT NULL,
			seller_count INTEGER NOT NULL,
			generated_at TEXT NOT NULL,
			FOREIGN KEY (dataset_id) REFERENCES datasets(id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_reports_dataset ON reports(dataset_id, generated_at)`,

		`CREATE TABLE IF NOT EXISTS report_rows (
			report_id TEXT NOT NULL,
			position INTEGER NOT NULL,
			seller_id TEXT NOT NULL,
			name TEXT NOT NULL,
			revenue REAL NOT NULL,
			profit REAL NOT NULL,
			sales_count INTEGER NOT NULL,
			bonus TEXT NOT NULL,
			top_products TEXT NOT NULL,
			PRIMARY KEY (report_id, position),
			FOREIGN KEY (report_id) REFERENCES reports(id)
		)`,
	}

	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("exec %q: %w", stmt[:40], err)
		}
	}

	return nil
}
