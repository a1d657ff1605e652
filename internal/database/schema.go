// Favefeed - Self-hosted Short Video Archive and Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/favefeed

package database

import "fmt"

// Timestamps are stored as UTC TIMESTAMP; TIMESTAMPTZ would need the ICU
// extension. History lists are JSON arrays in VARCHAR columns.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS authors (
		id VARCHAR PRIMARY KEY,
		unique_id VARCHAR NOT NULL,
		unique_ids VARCHAR NOT NULL DEFAULT '[]',
		nickname VARCHAR NOT NULL,
		nicknames VARCHAR NOT NULL DEFAULT '[]',
		follower_count BIGINT,
		heart_count BIGINT,
		video_count BIGINT,
		signature VARCHAR,
		avatar_path VARCHAR,
		is_private BOOLEAN NOT NULL DEFAULT false,
		is_following BOOLEAN NOT NULL DEFAULT false,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS videos (
		id VARCHAR PRIMARY KEY,
		author_id VARCHAR NOT NULL,
		description VARCHAR,
		create_time TIMESTAMP NOT NULL,
		digg_count BIGINT,
		play_count BIGINT,
		audio_id VARCHAR,
		size VARCHAR,
		video_path VARCHAR NOT NULL,
		cover_path VARCHAR,
		is_liked BOOLEAN NOT NULL DEFAULT false,
		is_favorite BOOLEAN NOT NULL DEFAULT false,
		is_following BOOLEAN NOT NULL DEFAULT false,
		is_hidden BOOLEAN NOT NULL DEFAULT false,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,
	`CREATE SEQUENCE IF NOT EXISTS sync_logs_id_seq START 1`,
	`CREATE TABLE IF NOT EXISTS sync_logs (
		id BIGINT PRIMARY KEY DEFAULT nextval('sync_logs_id_seq'),
		type VARCHAR NOT NULL,
		status VARCHAR NOT NULL,
		videos_added INTEGER NOT NULL DEFAULT 0,
		videos_updated INTEGER NOT NULL DEFAULT 0,
		videos_skipped INTEGER DEFAULT 0,
		authors_added INTEGER NOT NULL DEFAULT 0,
		authors_updated INTEGER NOT NULL DEFAULT 0,
		errors VARCHAR,
		started_at TIMESTAMP NOT NULL,
		completed_at TIMESTAMP
	)`,
}

// Indexes only cover columns that are never updated in place.
var indexStatements = []string{
	`CREATE INDEX IF NOT EXISTS idx_sync_logs_started_at ON sync_logs(started_at)`,
	`CREATE INDEX IF NOT EXISTS idx_videos_create_time ON videos(create_time)`,
}

func (db *DB) createTables() error {
	ctx, cancel := schemaContext()
	defer cancel()

	for _, stmt := range schemaStatements {
		if _, err := db.conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}
	return nil
}

func (db *DB) createIndexes() error {
	ctx, cancel := schemaContext()
	defer cancel()

	for _, stmt := range indexStatements {
		if _, err := db.conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}
	return nil
}
