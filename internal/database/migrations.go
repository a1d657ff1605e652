// Favefeed - Self-hosted Short Video Archive and Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/favefeed

package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/tomtom215/favefeed/internal/logging"
)

// migration is one schema change applied after the base tables exist.
type migration struct {
	version int
	name    string
	stmt    string
}

// migrations is append-only and ordered by version. Statements must be
// idempotent: a database created from the current CREATE TABLE statements
// still records them as applied.
var migrations = []migration{
	{
		version: 1,
		name:    "add_sync_logs_videos_skipped",
		stmt:    `ALTER TABLE sync_logs ADD COLUMN IF NOT EXISTS videos_skipped INTEGER DEFAULT 0`,
	},
}

const schemaMigrationsTable = `CREATE TABLE IF NOT EXISTS schema_migrations (
	version INTEGER PRIMARY KEY,
	name VARCHAR NOT NULL,
	applied_at TIMESTAMP NOT NULL
)`

// runVersionedMigrations applies every migration newer than the recorded
// schema version, each in its own transaction.
func (db *DB) runVersionedMigrations() error {
	ctx, cancel := schemaContext()
	defer cancel()

	if _, err := db.conn.ExecContext(ctx, schemaMigrationsTable); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	current, err := db.GetCurrentSchemaVersion(ctx)
	if err != nil {
		return err
	}

	applied := 0
	for _, m := range migrations {
		if m.version <= current {
			continue
		}
		if err := db.applyMigration(ctx, m); err != nil {
			return err
		}
		applied++
	}

	if applied > 0 {
		logging.Info().Int("count", applied).Int("version", migrations[len(migrations)-1].version).Msg("Applied database migrations")
	}
	return nil
}

func (db *DB) applyMigration(ctx context.Context, m migration) (err error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("migration v%d: begin: %w", m.version, err)
	}
	defer func() {
		if err != nil {
			rollbackQuietly(tx)
		}
	}()

	if _, err = tx.ExecContext(ctx, m.stmt); err != nil {
		return fmt.Errorf("migration v%d (%s): %w", m.version, m.name, err)
	}
	if _, err = tx.ExecContext(ctx,
		`INSERT INTO schema_migrations (version, name, applied_at) VALUES (?, ?, ?)`,
		m.version, m.name, db.now()); err != nil {
		return fmt.Errorf("migration v%d: record: %w", m.version, err)
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("migration v%d: commit: %w", m.version, err)
	}
	return nil
}

// GetCurrentSchemaVersion returns the highest applied migration version.
func (db *DB) GetCurrentSchemaVersion(ctx context.Context) (int, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var version sql.NullInt64
	err := db.conn.QueryRowContext(ctx, `SELECT MAX(version) FROM schema_migrations`).Scan(&version)
	if err != nil {
		return 0, fmt.Errorf("failed to get schema version: %w", err)
	}
	return int(version.Int64), nil
}
