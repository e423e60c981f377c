package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/squeegeesoft/pressworks/server/internal/platform/optimization"
)

// InitSQLite initializes the local SQLite database and creates the schemas
// for persisting the shop ledger, jobs, screens, and the immutable event log.
func InitSQLite(dbPath string) (*sql.DB, error) {
	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	tuning := optimization.DefaultConfig()
	db.SetMaxOpenConns(tuning.DBMaxOpenConns)
	db.SetMaxIdleConns(tuning.DBMaxIdleConns)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	if err := createSchemas(db); err != nil {
		return nil, fmt.Errorf("failed to create schemas: %w", err)
	}

	return db, nil
}

func createSchemas(db *sql.DB) error {
	schemas := []string{
		`CREATE TABLE IF NOT EXISTS shop_state (
			shop_id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			money_cents INTEGER NOT NULL DEFAULT 0,
			daily_earnings_cents INTEGER NOT NULL DEFAULT 0,
			staff INTEGER NOT NULL DEFAULT 1,
			day INTEGER NOT NULL DEFAULT 1,
			bankrupt BOOLEAN NOT NULL DEFAULT 0,
			last_updated DATETIME NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS jobs (
			job_id TEXT PRIMARY KEY,
			shop_id TEXT NOT NULL,
			customer TEXT NOT NULL,
			garment TEXT NOT NULL,
			prints_json TEXT NOT NULL,
			quantity INTEGER NOT NULL,
			due_day INTEGER NOT NULL,
			payment_cents INTEGER NOT NULL,
			status TEXT NOT NULL,
			overdue BOOLEAN NOT NULL DEFAULT 0,
			offered_day INTEGER NOT NULL,
			printed_shirts INTEGER NOT NULL DEFAULT 0,
			last_updated DATETIME NOT NULL,
			FOREIGN KEY (shop_id) REFERENCES shop_state(shop_id)
		);`,
		`CREATE TABLE IF NOT EXISTS screens (
			screen_id TEXT PRIMARY KEY,
			shop_id TEXT NOT NULL,
			job_id TEXT NOT NULL,
			location TEXT NOT NULL,
			color_index INTEGER NOT NULL,
			burned BOOLEAN NOT NULL DEFAULT 1,
			FOREIGN KEY (shop_id) REFERENCES shop_state(shop_id),
			FOREIGN KEY (job_id) REFERENCES jobs(job_id)
		);`,
		`CREATE TABLE IF NOT EXISTS events (
			id TEXT PRIMARY KEY,
			shop_id TEXT NOT NULL,
			timestamp DATETIME NOT NULL,
			event_type TEXT NOT NULL,
			actor_id TEXT NOT NULL,
			target_id TEXT NOT NULL,
			payload TEXT NOT NULL,
			game_day INTEGER NOT NULL,
			FOREIGN KEY (shop_id) REFERENCES shop_state(shop_id)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_events_shop_id ON events(shop_id);`,
		`CREATE INDEX IF NOT EXISTS idx_events_event_type ON events(event_type);`,
		`CREATE INDEX IF NOT EXISTS idx_events_game_day ON events(game_day);`,
		`CREATE INDEX IF NOT EXISTS idx_jobs_shop_id ON jobs(shop_id);`,
		`CREATE INDEX IF NOT EXISTS idx_screens_job_id ON screens(job_id);`,
	}

	for _, query := range schemas {
		if _, err := db.Exec(query); err != nil {
			return err
		}
	}

	return nil
}
