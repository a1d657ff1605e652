// Favefeed - Self-hosted Short Video Archive and Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/favefeed

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/tomtom215/favefeed/internal/database/query"
	"github.com/tomtom215/favefeed/internal/metrics"
	"github.com/tomtom215/favefeed/internal/models"
)

// DefaultSyncLogLimit is the page size used when a filter sets no limit.
const DefaultSyncLogLimit = 10

const syncLogColumns = `id, type, status, videos_added, videos_updated,
	COALESCE(videos_skipped, 0), authors_added, authors_updated, errors,
	started_at, completed_at`

// SyncLogFilter narrows ListSyncLogs. Zero values match everything.
type SyncLogFilter struct {
	Limit    int
	Type     models.SyncType
	Statuses []models.SyncStatus
	Since    *time.Time
}

// CreateSyncLog inserts a started sync log and returns it with its id.
func (db *DB) CreateSyncLog(ctx context.Context, syncType models.SyncType) (log *models.SyncLog, err error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("create", "sync_logs", time.Since(start), err) }()

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	log = &models.SyncLog{
		Type:      syncType,
		Status:    models.SyncStatusStarted,
		StartedAt: db.now(),
	}
	err = db.conn.QueryRowContext(ctx,
		`INSERT INTO sync_logs (type, status, started_at) VALUES (?, ?, ?) RETURNING id`,
		string(log.Type), string(log.Status), log.StartedAt,
	).Scan(&log.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to create sync log: %w", err)
	}
	return log, nil
}

// FinishSyncLog records the terminal status and counts of a started log.
// A log can be finished only once; a second call returns ErrSyncLogFinished.
func (db *DB) FinishSyncLog(ctx context.Context, log *models.SyncLog) (err error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("finish", "sync_logs", time.Since(start), err) }()

	if !log.Finished() {
		return fmt.Errorf("sync log %d: invalid terminal status %q", log.ID, log.Status)
	}

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	completedAt := db.now()
	result, err := db.conn.ExecContext(ctx, `UPDATE sync_logs SET
		status = ?, videos_added = ?, videos_updated = ?, videos_skipped = ?,
		authors_added = ?, authors_updated = ?, errors = ?, completed_at = ?
		WHERE id = ? AND status = ?`,
		string(log.Status), log.VideosAdded, log.VideosUpdated, log.VideosSkipped,
		log.AuthorsAdded, log.AuthorsUpdated, nullString(log.Errors), completedAt,
		log.ID, string(models.SyncStatusStarted),
	)
	if err != nil {
		return fmt.Errorf("failed to finish sync log %d: %w", log.ID, err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to finish sync log %d: %w", log.ID, err)
	}
	if n == 0 {
		if _, getErr := db.GetSyncLog(ctx, log.ID); getErr != nil {
			return getErr
		}
		return fmt.Errorf("sync log %d: %w", log.ID, ErrSyncLogFinished)
	}

	log.CompletedAt = &completedAt
	return nil
}

// GetSyncLog retrieves a sync log by id. Returns ErrNotFound if absent.
func (db *DB) GetSyncLog(ctx context.Context, id int64) (*models.SyncLog, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	row := db.conn.QueryRowContext(ctx, `SELECT `+syncLogColumns+` FROM sync_logs WHERE id = ?`, id)
	log, err := scanSyncLog(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("sync log %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get sync log %d: %w", id, err)
	}
	return log, nil
}

// ListSyncLogs returns sync logs newest first.
func (db *DB) ListSyncLogs(ctx context.Context, filter SyncLogFilter) (logs []models.SyncLog, err error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("list", "sync_logs", time.Since(start), err) }()

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	limit := filter.Limit
	if limit <= 0 {
		limit = DefaultSyncLogLimit
	}

	statuses := make([]string, len(filter.Statuses))
	for i, s := range filter.Statuses {
		statuses[i] = string(s)
	}
	where, args := query.NewWhereBuilder().
		AddEquals("type", string(filter.Type)).
		AddIn("status", statuses).
		AddSince("started_at", filter.Since).
		BuildWithPrefix()

	args = append(args, limit)
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+syncLogColumns+` FROM sync_logs `+where+` ORDER BY started_at DESC, id DESC LIMIT ?`,
		args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list sync logs: %w", err)
	}
	defer rows.Close()

	logs = make([]models.SyncLog, 0, limit)
	for rows.Next() {
		log, err := scanSyncLog(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan sync log: %w", err)
		}
		logs = append(logs, *log)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sync logs: %w", err)
	}
	return logs, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSyncLog(row rowScanner) (*models.SyncLog, error) {
	var (
		l           models.SyncLog
		syncType    string
		status      string
		errorsText  sql.NullString
		completedAt sql.NullTime
	)
	err := row.Scan(&l.ID, &syncType, &status, &l.VideosAdded, &l.VideosUpdated,
		&l.VideosSkipped, &l.AuthorsAdded, &l.AuthorsUpdated, &errorsText,
		&l.StartedAt, &completedAt)
	if err != nil {
		return nil, err
	}

	l.Type = models.SyncType(syncType)
	l.Status = models.SyncStatus(status)
	l.Errors = stringPtr(errorsText)
	if completedAt.Valid {
		t := completedAt.Time
		l.CompletedAt = &t
	}
	return &l, nil
}
