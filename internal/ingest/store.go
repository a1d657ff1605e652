// Favefeed - Self-hosted Short Video Archive and Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/favefeed

package ingest

import (
	"context"

	"github.com/tomtom215/favefeed/internal/export"
	"github.com/tomtom215/favefeed/internal/models"
)

// Store is the persistence the reconciler writes to. Lookups of missing
// rows must return an error wrapping database.ErrNotFound.
// *database.DB implements it.
type Store interface {
	GetAuthor(ctx context.Context, id string) (*models.Author, error)
	CreateAuthor(ctx context.Context, author *models.Author) error
	UpdateAuthor(ctx context.Context, author *models.Author) error

	GetVideo(ctx context.Context, id string) (*models.Video, error)
	CreateVideo(ctx context.Context, video *models.Video) error
	UpdateVideo(ctx context.Context, video *models.Video) error

	CreateSyncLog(ctx context.Context, syncType models.SyncType) (*models.SyncLog, error)
	FinishSyncLog(ctx context.Context, log *models.SyncLog) error
}

// SnapshotReader reads the current state of an export bundle.
// *export.Reader implements it.
type SnapshotReader interface {
	Read(ctx context.Context) (*export.Snapshot, error)
}
