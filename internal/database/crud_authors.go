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

	"github.com/tomtom215/favefeed/internal/metrics"
	"github.com/tomtom215/favefeed/internal/models"
)

const authorColumns = `id, unique_id, unique_ids, nickname, nicknames,
	follower_count, heart_count, video_count, signature, avatar_path,
	is_private, is_following, created_at, updated_at`

// GetAuthor retrieves an author by id. Returns ErrNotFound if absent.
func (db *DB) GetAuthor(ctx context.Context, id string) (author *models.Author, err error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("get", "authors", time.Since(start), ignoreNotFound(err)) }()

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	row := db.conn.QueryRowContext(ctx, `SELECT `+authorColumns+` FROM authors WHERE id = ?`, id)
	author, err = scanAuthor(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("author %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get author %s: %w", id, err)
	}
	return author, nil
}

// CreateAuthor inserts a new author and sets its timestamps.
func (db *DB) CreateAuthor(ctx context.Context, author *models.Author) (err error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("create", "authors", time.Since(start), err) }()

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	uniqueIDs, err := encodeList(author.UniqueIDs)
	if err != nil {
		return err
	}
	nicknames, err := encodeList(author.Nicknames)
	if err != nil {
		return err
	}

	now := db.now()
	_, err = db.conn.ExecContext(ctx, `INSERT INTO authors (`+authorColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		author.ID, author.UniqueID, uniqueIDs, author.Nickname, nicknames,
		nullInt64(author.FollowerCount), nullInt64(author.HeartCount), nullInt64(author.VideoCount),
		nullString(author.Signature), nullString(author.AvatarPath),
		author.IsPrivate, author.IsFollowing, now, now,
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return fmt.Errorf("author %s: %w", author.ID, ErrAlreadyExists)
		}
		return fmt.Errorf("failed to create author %s: %w", author.ID, err)
	}

	author.CreatedAt = now
	author.UpdatedAt = now
	return nil
}

// UpdateAuthor overwrites every mutable column of an existing author.
func (db *DB) UpdateAuthor(ctx context.Context, author *models.Author) (err error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("update", "authors", time.Since(start), ignoreNotFound(err)) }()

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	uniqueIDs, err := encodeList(author.UniqueIDs)
	if err != nil {
		return err
	}
	nicknames, err := encodeList(author.Nicknames)
	if err != nil {
		return err
	}

	now := db.now()
	result, err := db.conn.ExecContext(ctx, `UPDATE authors SET
		unique_id = ?, unique_ids = ?, nickname = ?, nicknames = ?,
		follower_count = ?, heart_count = ?, video_count = ?,
		signature = ?, avatar_path = ?, is_private = ?, is_following = ?,
		updated_at = ?
		WHERE id = ?`,
		author.UniqueID, uniqueIDs, author.Nickname, nicknames,
		nullInt64(author.FollowerCount), nullInt64(author.HeartCount), nullInt64(author.VideoCount),
		nullString(author.Signature), nullString(author.AvatarPath), author.IsPrivate, author.IsFollowing,
		now, author.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update author %s: %w", author.ID, err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("author %s: %w", author.ID, ErrNotFound)
	}

	author.UpdatedAt = now
	return nil
}

// CountAuthors returns the number of persisted authors.
func (db *DB) CountAuthors(ctx context.Context) (int64, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var n int64
	if err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM authors`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count authors: %w", err)
	}
	return n, nil
}

func scanAuthor(row rowScanner) (*models.Author, error) {
	var (
		a                         models.Author
		uniqueIDs, nicknames      string
		followers, hearts, videos sql.NullInt64
		signature, avatarPath     sql.NullString
	)
	err := row.Scan(&a.ID, &a.UniqueID, &uniqueIDs, &a.Nickname, &nicknames,
		&followers, &hearts, &videos, &signature, &avatarPath,
		&a.IsPrivate, &a.IsFollowing, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if a.UniqueIDs, err = decodeList(uniqueIDs); err != nil {
		return nil, err
	}
	if a.Nicknames, err = decodeList(nicknames); err != nil {
		return nil, err
	}
	a.FollowerCount = int64Ptr(followers)
	a.HeartCount = int64Ptr(hearts)
	a.VideoCount = int64Ptr(videos)
	a.Signature = stringPtr(signature)
	a.AvatarPath = stringPtr(avatarPath)
	return &a, nil
}

// ignoreNotFound keeps expected misses out of the query error counter.
func ignoreNotFound(err error) error {
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	return err
}
