package storage

import (
	"database/sql"
	"fmt"
)

var migrations = []string{
	// Migration 1: generation history
	`CREATE TABLE IF NOT EXISTS generations (
		id            TEXT PRIMARY KEY,
		run_id        TEXT NOT NULL,
		app           TEXT NOT NULL,
		model         TEXT NOT NULL,
		provider      TEXT NOT NULL,
		llm_model     TEXT NOT NULL,
		status        TEXT NOT NULL CHECK(status IN ('written', 'empty', 'failed')),
		input_tokens  INTEGER NOT NULL DEFAULT 0,
		output_tokens INTEGER NOT NULL DEFAULT 0,
		cost_usd      REAL NOT NULL DEFAULT 0.0,
		file_path     TEXT NOT NULL DEFAULT '',
		error         TEXT NOT NULL DEFAULT '',
		created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_generations_run ON generations(run_id);
	CREATE INDEX IF NOT EXISTS idx_generations_app ON generations(app);
	CREATE INDEX IF NOT EXISTS idx_generations_created ON generations(created_at);`,
}

// runMigrations applies pending schema migrations.
func runMigrations(db *sql.DB) error {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (
		version    INTEGER PRIMARY KEY,
		applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`)
	if err != nil {
		return fmt.Errorf("create migration table: %w", err)
	}

	var currentVersion int
	row := db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("check migration version: %w", err)
	}

	for i := currentVersion; i < len(migrations); i++ {
		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", i+1, err)
		}

		if _, err := tx.Exec(migrations[i]); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("run migration %d: %w", i+1, err)
		}

		if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", i+1); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record migration %d: %w", i+1, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %d: %w", i+1, err)
		}
	}

	return nil
}
