package db

import (
	"database/sql"
)

func init() {
	RegisterMigration(Migration{
		Version:     1,
		Description: "Add session_values table for browser session state",
		Up:          migration001_sessionValues,
	})
}

func migration001_sessionValues(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS session_values (
			session_id TEXT NOT NULL,
			key TEXT NOT NULL,
			value TEXT NOT NULL,
			updated_at INTEGER NOT NULL,
			PRIMARY KEY (session_id, key)
		);
		CREATE INDEX IF NOT EXISTS idx_session_values_updated_at ON session_values(updated_at);
	`)
	return err
}
