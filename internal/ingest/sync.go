// Favefeed - Self-hosted Short Video Archive and Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/favefeed

package ingest

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/tomtom215/favefeed/internal/database"
	"github.com/tomtom215/favefeed/internal/export"
	"github.com/tomtom215/favefeed/internal/logging"
	"github.com/tomtom215/favefeed/internal/models"
)

var (
	// ErrMetadataMissing means the video file landed before its entry in
	// db_videos.js. The watch loop retries it on a later discovery.
	ErrMetadataMissing = errors.New("video metadata not found in export")

	// ErrVideoFileMissing means the discovered file is gone and no other
	// copy could be resolved.
	ErrVideoFileMissing = errors.New("video file not found")
)

// StoreError marks a failure of the persistent store during SyncOne, as
// opposed to a miss in the export.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// IsStoreError reports whether err came from the persistent store.
func IsStoreError(err error) bool {
	var se *StoreError
	return errors.As(err, &se)
}

// SyncResult is the outcome of a successful SyncOne.
type SyncResult struct {
	VideoID string
	// Created is false when an existing row was updated.
	Created bool
}

// SyncOne ingests a single discovered video file. Classification flags
// come from the directory the file sits in and are OR-merged with the
// stored row. It never panics; every failure is returned as an error.
func (r *Reconciler) SyncOne(ctx context.Context, videoID, filePath string) (result *SyncResult, err error) {
	defer func() {
		if p := recover(); p != nil {
			result = nil
			err = fmt.Errorf("sync video %s: panic: %v", videoID, p)
		}
	}()

	logger := logging.Ctx(ctx).With().Str("video_id", videoID).Logger()

	snap, err := r.reader.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("parse export: %w", err)
	}

	rec, ok := snap.Videos[videoID]
	if !ok {
		return nil, fmt.Errorf("video %s: %w", videoID, ErrMetadataMissing)
	}

	flags := export.ClassifyPath(r.resolver.Root(), filePath)

	videoPath, ok := r.discoveredPath(videoID, filePath, flags, rec.AuthorID)
	if !ok {
		return nil, fmt.Errorf("video %s: %w", videoID, ErrVideoFileMissing)
	}
	coverPath := r.coverPath(videoID, flags, rec.AuthorID)

	if err := r.ensureAuthorFromSnapshot(ctx, snap, rec.AuthorID, flags.Following); err != nil {
		return nil, err
	}

	existing, err := r.store.GetVideo(ctx, videoID)
	switch {
	case errors.Is(err, database.ErrNotFound):
		video := newVideo(snap, videoID, &rec)
		video.VideoPath = videoPath
		video.CoverPath = coverPath
		video.SetClassification(flags)
		if err := r.store.CreateVideo(ctx, video); err != nil {
			return nil, &StoreError{Op: "create video " + videoID, Err: err}
		}
		logger.Info().Msg("Added video")
		return &SyncResult{VideoID: videoID, Created: true}, nil
	case err != nil:
		return nil, &StoreError{Op: "get video " + videoID, Err: err}
	}

	existing.SetClassification(existing.Classification().Merge(flags))
	existing.VideoPath = videoPath
	existing.CoverPath = coverPath
	if err := r.store.UpdateVideo(ctx, existing); err != nil {
		return nil, &StoreError{Op: "update video " + videoID, Err: err}
	}
	logger.Info().Msg("Updated video")
	return &SyncResult{VideoID: videoID}, nil
}

// discoveredPath returns the servable path of the discovered file, falling
// back to a resolver search when the file has moved since discovery.
func (r *Reconciler) discoveredPath(videoID, filePath string, flags models.Classification, authorID string) (string, bool) {
	if info, err := os.Stat(filePath); err == nil && info.Mode().IsRegular() {
		return r.resolver.Servable(filePath), true
	}
	resolved, ok := r.resolver.VideoPath(videoID, flags.Liked, flags.Favorite, authorID)
	if !ok {
		return "", false
	}
	return r.resolver.Servable(resolved), true
}

// ensureAuthorFromSnapshot creates the author of a watched video when the
// export has metadata for it. Without metadata the video is still accepted
// and no author row is written.
func (r *Reconciler) ensureAuthorFromSnapshot(ctx context.Context, snap *export.Snapshot, authorID string, inFollowingDir bool) error {
	_, err := r.store.GetAuthor(ctx, authorID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, database.ErrNotFound) {
		return &StoreError{Op: "get author " + authorID, Err: err}
	}

	rec, ok := snap.Authors[authorID]
	if !ok {
		logging.Ctx(ctx).Debug().Str("author_id", authorID).Msg("No author metadata yet, skipping author creation")
		return nil
	}

	following := snap.Following.Has(authorID) || inFollowingDir
	author := newAuthor(authorID, &rec, following, r.avatarPath(authorID))
	if err := r.store.CreateAuthor(ctx, author); err != nil {
		return &StoreError{Op: "create author " + authorID, Err: err}
	}
	logging.Ctx(ctx).Info().Str("author_id", authorID).Str("unique_id", author.UniqueID).Msg("Created author")
	return nil
}
