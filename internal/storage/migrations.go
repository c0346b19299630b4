package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// ExpectedSchemaVersion is the latest schema version that the application expects.
// If the database cannot be migrated to this version, it's a fatal error.
const ExpectedSchemaVersion = 3

// Migration represents a database schema migration.
type Migration struct {
	Up          func(*sql.Tx) error
	Description string
	Version     int
}

var migrations = []Migration{
	{
		Version:     1,
		Description: "Game metadata",
		Up: func(tx *sql.Tx) error {
			return execAll(tx,
				`CREATE TABLE IF NOT EXISTS games (
					id INTEGER PRIMARY KEY,
					name TEXT NOT NULL DEFAULT '',
					app_type TEXT NOT NULL DEFAULT '',
					steam_release_date TEXT NOT NULL DEFAULT '',
					genres TEXT,
					flags TEXT,
					tags TEXT,
					developers TEXT,
					publishers TEXT,
					review_total INTEGER NOT NULL DEFAULT 0,
					review_positive_percentage INTEGER NOT NULL DEFAULT 0,
					hltb_main INTEGER NOT NULL DEFAULT 0,
					hltb_extras INTEGER NOT NULL DEFAULT 0,
					hltb_completionist INTEGER NOT NULL DEFAULT 0,
					last_store_scrape INTEGER NOT NULL DEFAULT 0,
					last_app_info_update INTEGER NOT NULL DEFAULT 0,
					updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE INDEX IF NOT EXISTS idx_games_last_store_scrape ON games(last_store_scrape)`,
			)
		},
	},
	{
		Version:     2,
		Description: "Language and VR support columns",
		Up: func(tx *sql.Tx) error {
			return execAll(tx,
				`ALTER TABLE games ADD COLUMN languages TEXT`,
				`ALTER TABLE games ADD COLUMN vr_support TEXT`,
			)
		},
	},
	{
		Version:     3,
		Description: "Curator recommendation cache",
		Up: func(tx *sql.Tx) error {
			return execAll(tx,
				`CREATE TABLE IF NOT EXISTS curator_recommendations (
					curator_id INTEGER NOT NULL,
					app_id INTEGER NOT NULL,
					recommendation TEXT NOT NULL,
					fetched_at DATETIME DEFAULT CURRENT_TIMESTAMP,
					PRIMARY KEY (curator_id, app_id)
				)`,
			)
		},
	},
}

func execAll(tx *sql.Tx, queries ...string) error {
	for _, query := range queries {
		if _, err := tx.Exec(query); err != nil {
			return fmt.Errorf("failed to execute query: %w", err)
		}
	}
	return nil
}

// Migrate applies all pending database migrations.
func (s *SQLiteStorage) Migrate(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	currentVersion, err := s.SchemaVersion(ctx)
	if err != nil {
		return err
	}

	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		tx, txErr := s.db.BeginTx(ctx, nil)
		if txErr != nil {
			return fmt.Errorf("failed to begin transaction: %w", txErr)
		}

		if upErr := migration.Up(tx); upErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", migration.Version, upErr)
		}

		if _, execErr := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", migration.Version)); execErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to update schema version: %w", execErr)
		}

		if commitErr := tx.Commit(); commitErr != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, commitErr)
		}

		slog.Info("Applied migration",
			"version", migration.Version,
			"description", migration.Description)
	}

	finalVersion, err := s.SchemaVersion(ctx)
	if err != nil {
		return fmt.Errorf("failed to verify final schema version: %w", err)
	}
	if finalVersion != ExpectedSchemaVersion {
		return fmt.Errorf("database schema version mismatch: expected %d, got %d", ExpectedSchemaVersion, finalVersion)
	}
	return nil
}
