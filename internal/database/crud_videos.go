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

const videoColumns = `id, author_id, description, create_time, digg_count, play_count,
	audio_id, size, video_path, cover_path, is_liked, is_favorite, is_following,
	is_hidden, created_at, updated_at`

// GetVideo retrieves a video by id. Returns ErrNotFound if absent.
func (db *DB) GetVideo(ctx context.Context, id string) (video *models.Video, err error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("get", "videos", time.Since(start), ignoreNotFound(err)) }()

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	row := db.conn.QueryRowContext(ctx, `SELECT `+videoColumns+` FROM videos WHERE id = ?`, id)
	video, err = scanVideo(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("video %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get video %s: %w", id, err)
	}
	return video, nil
}

// CreateVideo inserts a new video and sets its timestamps.
func (db *DB) CreateVideo(ctx context.Context, video *models.Video) (err error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("create", "videos", time.Since(start), err) }()

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	now := db.now()
	_, err = db.conn.ExecContext(ctx, `INSERT INTO videos (`+videoColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		video.ID, video.AuthorID, nullString(video.Description), video.CreateTime.UTC(),
		nullInt64(video.DiggCount), nullInt64(video.PlayCount),
		nullString(video.AudioID), nullString(video.Size),
		video.VideoPath, nullString(video.CoverPath),
		video.IsLiked, video.IsFavorite, video.IsFollowing, video.IsHidden,
		now, now,
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return fmt.Errorf("video %s: %w", video.ID, ErrAlreadyExists)
		}
		return fmt.Errorf("failed to create video %s: %w", video.ID, err)
	}

	video.CreatedAt = now
	video.UpdatedAt = now
	return nil
}

// UpdateVideo overwrites the ingested columns of an existing video.
// is_hidden belongs to the viewer and create_time is fixed at creation;
// both are left untouched.
func (db *DB) UpdateVideo(ctx context.Context, video *models.Video) (err error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("update", "videos", time.Since(start), ignoreNotFound(err)) }()

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	now := db.now()
	result, err := db.conn.ExecContext(ctx, `UPDATE videos SET
		author_id = ?, description = ?, digg_count = ?, play_count = ?,
		audio_id = ?, size = ?, video_path = ?, cover_path = ?,
		is_liked = ?, is_favorite = ?, is_following = ?, updated_at = ?
		WHERE id = ?`,
		video.AuthorID, nullString(video.Description),
		nullInt64(video.DiggCount), nullInt64(video.PlayCount),
		nullString(video.AudioID), nullString(video.Size),
		video.VideoPath, nullString(video.CoverPath),
		video.IsLiked, video.IsFavorite, video.IsFollowing, now,
		video.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update video %s: %w", video.ID, err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("video %s: %w", video.ID, ErrNotFound)
	}

	video.UpdatedAt = now
	return nil
}

// CountVideos returns video totals by classification. The Authors field
// of the result is left zero.
func (db *DB) CountVideos(ctx context.Context) (*models.LibraryCounts, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var c models.LibraryCounts
	err := db.conn.QueryRowContext(ctx, `SELECT
		COUNT(*),
		COUNT(*) FILTER (WHERE is_liked),
		COUNT(*) FILTER (WHERE is_favorite),
		COUNT(*) FILTER (WHERE is_following)
		FROM videos`).Scan(&c.Videos, &c.Liked, &c.Favorite, &c.Following)
	if err != nil {
		return nil, fmt.Errorf("failed to count videos: %w", err)
	}
	return &c, nil
}

// LibraryCounts returns video and author totals.
func (db *DB) LibraryCounts(ctx context.Context) (*models.LibraryCounts, error) {
	counts, err := db.CountVideos(ctx)
	if err != nil {
		return nil, err
	}
	if counts.Authors, err = db.CountAuthors(ctx); err != nil {
		return nil, err
	}
	return counts, nil
}

func scanVideo(row rowScanner) (*models.Video, error) {
	var (
		v                          models.Video
		description, audioID, size sql.NullString
		coverPath                  sql.NullString
		diggs, plays               sql.NullInt64
	)
	err := row.Scan(&v.ID, &v.AuthorID, &description, &v.CreateTime, &diggs, &plays,
		&audioID, &size, &v.VideoPath, &coverPath,
		&v.IsLiked, &v.IsFavorite, &v.IsFollowing, &v.IsHidden,
		&v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		return nil, err
	}

	v.Description = stringPtr(description)
	v.DiggCount = int64Ptr(diggs)
	v.PlayCount = int64Ptr(plays)
	v.AudioID = stringPtr(audioID)
	v.Size = stringPtr(size)
	v.CoverPath = stringPtr(coverPath)
	return &v, nil
}
