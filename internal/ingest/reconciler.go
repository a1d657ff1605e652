// Favefeed - Self-hosted Short Video Archive and Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/favefeed

package ingest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/tomtom215/favefeed/internal/config"
	"github.com/tomtom215/favefeed/internal/database"
	"github.com/tomtom215/favefeed/internal/export"
	"github.com/tomtom215/favefeed/internal/logging"
	"github.com/tomtom215/favefeed/internal/metrics"
	"github.com/tomtom215/favefeed/internal/models"
)

// ErrImportInProgress is returned when BulkImport is called while another
// run on the same Reconciler has not finished.
var ErrImportInProgress = errors.New("import already in progress")

// finishTimeout bounds the SyncLog completion write, which runs even when
// the run's context has been canceled.
const finishTimeout = 30 * time.Second

// Reconciler merges export snapshots into the store.
type Reconciler struct {
	store            Store
	reader           SnapshotReader
	resolver         *export.Resolver
	progressInterval int

	mu      sync.Mutex
	running bool
}

// NewReconciler creates a reconciler. cfg may be nil.
func NewReconciler(store Store, reader SnapshotReader, resolver *export.Resolver, cfg *config.ImportConfig) *Reconciler {
	r := &Reconciler{
		store:    store,
		reader:   reader,
		resolver: resolver,
	}
	if cfg != nil {
		r.progressInterval = cfg.ProgressInterval
	}
	return r
}

// BulkImport runs a full reconciliation of the current export snapshot.
//
// The returned stats are valid even when an error is returned; they hold
// the counts reached before the failure.
func (r *Reconciler) BulkImport(ctx context.Context) (*ImportStats, error) {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return nil, ErrImportInProgress
	}
	r.running = true
	r.mu.Unlock()

	defer func() {
		r.mu.Lock()
		r.running = false
		r.mu.Unlock()
	}()

	ctx = logging.ContextWithNewCorrelationID(ctx)
	logger := logging.Ctx(ctx)
	stats := &ImportStats{StartTime: time.Now()}

	syncLog, err := r.store.CreateSyncLog(ctx, models.SyncTypeManual)
	if err != nil {
		stats.EndTime = time.Now()
		metrics.RecordIngestRun(string(models.SyncTypeManual), string(models.SyncStatusFailed), stats.Duration())
		return stats, fmt.Errorf("create sync log: %w", err)
	}
	stats.SyncLogID = syncLog.ID

	logger.Info().Str("export_path", r.resolver.Root()).Int64("sync_log_id", syncLog.ID).Msg("Starting import")

	runErr := r.runImport(ctx, stats)
	stats.EndTime = time.Now()

	syncLog.AuthorsAdded = stats.AuthorsAdded
	syncLog.AuthorsUpdated = stats.AuthorsUpdated
	syncLog.VideosAdded = stats.VideosAdded
	syncLog.VideosUpdated = stats.VideosUpdated
	syncLog.VideosSkipped = stats.VideosSkipped
	syncLog.Status = models.SyncStatusCompleted
	if runErr != nil {
		msg := runErr.Error()
		syncLog.Status = models.SyncStatusFailed
		syncLog.Errors = &msg
	}

	if err := r.finishSyncLog(ctx, syncLog); err != nil {
		if runErr == nil {
			runErr = fmt.Errorf("finish sync log: %w", err)
		} else {
			logger.Warn().Err(err).Msg("Failed to record import failure")
		}
	}

	metrics.RecordIngestRun(string(models.SyncTypeManual), string(syncLog.Status), stats.Duration())
	metrics.RecordVideos("added", stats.VideosAdded)
	metrics.RecordVideos("updated", stats.VideosUpdated)
	metrics.RecordVideos("skipped", stats.VideosSkipped)
	metrics.RecordAuthors("added", stats.AuthorsAdded)
	metrics.RecordAuthors("updated", stats.AuthorsUpdated)

	if runErr != nil {
		logger.Error().Err(runErr).Dur("duration", stats.Duration()).Msg("Import failed")
		return stats, runErr
	}

	logger.Info().
		Int("authors_added", stats.AuthorsAdded).
		Int("authors_updated", stats.AuthorsUpdated).
		Int("videos_added", stats.VideosAdded).
		Int("videos_updated", stats.VideosUpdated).
		Int("videos_skipped", stats.VideosSkipped).
		Dur("duration", stats.Duration()).
		Msg("Import completed")
	return stats, nil
}

func (r *Reconciler) runImport(ctx context.Context, stats *ImportStats) error {
	logger := logging.Ctx(ctx)

	snap, err := r.reader.Read(ctx)
	if err != nil {
		return fmt.Errorf("parse export: %w", err)
	}
	stats.TotalVideos = len(snap.Videos)

	logger.Info().
		Int("videos", len(snap.Videos)).
		Int("authors", len(snap.Authors)).
		Int("liked", len(snap.Liked)).
		Int("favorites", len(snap.Favorites)).
		Int("following", len(snap.Following)).
		Msg("Export parsed")

	// Authors known to exist in the store during this run.
	known := make(map[string]bool, len(snap.Authors))

	for _, id := range snap.AuthorIDs() {
		if err := ctx.Err(); err != nil {
			return err
		}
		rec := snap.Authors[id]
		created, err := r.upsertAuthor(ctx, id, &rec, snap.Following.Has(id))
		if err != nil {
			return err
		}
		if created {
			stats.AuthorsAdded++
		} else {
			stats.AuthorsUpdated++
		}
		known[id] = true
	}

	logger.Info().
		Int("authors", len(snap.Authors)).
		Int("added", stats.AuthorsAdded).
		Msg("Authors processed")

	for i, id := range snap.VideoIDs() {
		if err := ctx.Err(); err != nil {
			return err
		}
		rec := snap.Videos[id]
		if err := r.importVideo(ctx, snap, id, &rec, known, stats); err != nil {
			return err
		}

		if r.progressInterval > 0 && (i+1)%r.progressInterval == 0 {
			logger.Info().
				Int("processed", i+1).
				Int("total", stats.TotalVideos).
				Int("added", stats.VideosAdded).
				Int("updated", stats.VideosUpdated).
				Int("skipped", stats.VideosSkipped).
				Msg("Import progress")
		}
	}

	return nil
}

// upsertAuthor creates or updates an author from its export record. The
// following flag is recomputed on every pass.
func (r *Reconciler) upsertAuthor(ctx context.Context, id string, rec *export.AuthorRecord, following bool) (created bool, err error) {
	avatar := r.avatarPath(id)

	existing, err := r.store.GetAuthor(ctx, id)
	switch {
	case errors.Is(err, database.ErrNotFound):
		author := newAuthor(id, rec, following, avatar)
		if err := r.store.CreateAuthor(ctx, author); err != nil {
			return false, fmt.Errorf("create author %s: %w", id, err)
		}
		return true, nil
	case err != nil:
		return false, fmt.Errorf("get author %s: %w", id, err)
	}

	mergeAuthor(existing, rec, following, avatar)
	if err := r.store.UpdateAuthor(ctx, existing); err != nil {
		return false, fmt.Errorf("update author %s: %w", id, err)
	}
	return false, nil
}

func (r *Reconciler) importVideo(ctx context.Context, snap *export.Snapshot, id string, rec *export.VideoRecord, known map[string]bool, stats *ImportStats) error {
	flags := snap.Classify(id, rec.AuthorID)

	videoPath, ok := r.resolver.VideoPath(id, flags.Liked, flags.Favorite, rec.AuthorID)
	if !ok {
		stats.VideosSkipped++
		logging.Ctx(ctx).Debug().Str("video_id", id).Msg("Video file not downloaded, skipping")
		return nil
	}

	if !known[rec.AuthorID] {
		created, err := r.ensurePlaceholderAuthor(ctx, rec.AuthorID, snap.Following.Has(rec.AuthorID))
		if err != nil {
			return err
		}
		if created {
			stats.AuthorsAdded++
		}
		known[rec.AuthorID] = true
	}

	video := newVideo(snap, id, rec)
	video.VideoPath = r.resolver.Servable(videoPath)
	video.CoverPath = r.coverPath(id, flags, rec.AuthorID)
	video.SetClassification(flags)

	_, err := r.store.GetVideo(ctx, id)
	switch {
	case errors.Is(err, database.ErrNotFound):
		if err := r.store.CreateVideo(ctx, video); err != nil {
			return fmt.Errorf("create video %s: %w", id, err)
		}
		stats.VideosAdded++
		return nil
	case err != nil:
		return fmt.Errorf("get video %s: %w", id, err)
	}

	if err := r.store.UpdateVideo(ctx, video); err != nil {
		return fmt.Errorf("update video %s: %w", id, err)
	}
	stats.VideosUpdated++
	return nil
}

// ensurePlaceholderAuthor creates a placeholder for an author that only
// appears as a video reference.
func (r *Reconciler) ensurePlaceholderAuthor(ctx context.Context, id string, following bool) (bool, error) {
	_, err := r.store.GetAuthor(ctx, id)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, database.ErrNotFound) {
		return false, fmt.Errorf("get author %s: %w", id, err)
	}

	if err := r.store.CreateAuthor(ctx, models.NewPlaceholderAuthor(id, following)); err != nil {
		return false, fmt.Errorf("create placeholder author %s: %w", id, err)
	}
	logging.Ctx(ctx).Debug().Str("author_id", id).Msg("Created placeholder author")
	return true, nil
}

func (r *Reconciler) finishSyncLog(ctx context.Context, log *models.SyncLog) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), finishTimeout)
	defer cancel()
	return r.store.FinishSyncLog(ctx, log)
}

func (r *Reconciler) avatarPath(authorID string) *string {
	path, ok := r.resolver.AvatarPath(authorID)
	if !ok {
		return nil
	}
	servable := r.resolver.Servable(path)
	return &servable
}

func (r *Reconciler) coverPath(videoID string, flags models.Classification, authorID string) *string {
	path, ok := r.resolver.CoverPath(videoID, flags.Liked, flags.Favorite, authorID)
	if !ok {
		return nil
	}
	servable := r.resolver.Servable(path)
	return &servable
}

// newAuthor builds an author row from export metadata, filling placeholders
// for missing identity fields.
func newAuthor(id string, rec *export.AuthorRecord, following bool, avatar *string) *models.Author {
	author := models.NewPlaceholderAuthor(id, following)
	if uid := rec.CurrentUniqueID(); uid != "" {
		author.UniqueID = uid
	}
	if nick := rec.CurrentNickname(); nick != "" {
		author.Nickname = nick
	}
	author.UniqueIDs = copyList(rec.UniqueIDs)
	author.Nicknames = copyList(rec.Nicknames)
	author.FollowerCount = rec.FollowerCount.Int64()
	author.HeartCount = rec.HeartCount.Int64()
	author.VideoCount = rec.VideoCount.Int64()
	author.Signature = rec.Signature
	author.AvatarPath = avatar
	if rec.PrivateAccount != nil {
		author.IsPrivate = *rec.PrivateAccount
	}
	return author
}

// mergeAuthor applies export metadata to a stored author. Fields absent
// from the export keep their stored value; IsFollowing is always replaced.
func mergeAuthor(author *models.Author, rec *export.AuthorRecord, following bool, avatar *string) {
	if uid := rec.CurrentUniqueID(); uid != "" {
		author.UniqueID = uid
	}
	if nick := rec.CurrentNickname(); nick != "" {
		author.Nickname = nick
	}
	if len(rec.UniqueIDs) > 0 {
		author.UniqueIDs = copyList(rec.UniqueIDs)
	}
	if len(rec.Nicknames) > 0 {
		author.Nicknames = copyList(rec.Nicknames)
	}
	if v := rec.FollowerCount.Int64(); v != nil {
		author.FollowerCount = v
	}
	if v := rec.HeartCount.Int64(); v != nil {
		author.HeartCount = v
	}
	if v := rec.VideoCount.Int64(); v != nil {
		author.VideoCount = v
	}
	if rec.Signature != nil {
		author.Signature = rec.Signature
	}
	if rec.PrivateAccount != nil {
		author.IsPrivate = *rec.PrivateAccount
	}
	if avatar != nil {
		author.AvatarPath = avatar
	}
	author.IsFollowing = following
}

// newVideo builds a video row from export metadata. Paths and flags are
// filled by the caller.
func newVideo(snap *export.Snapshot, id string, rec *export.VideoRecord) *models.Video {
	return &models.Video{
		ID:          id,
		AuthorID:    rec.AuthorID,
		Description: snap.Description(id),
		CreateTime:  time.Unix(int64(rec.CreateTime), 0).UTC(),
		DiggCount:   rec.DiggCount.Int64(),
		PlayCount:   rec.PlayCount.Int64(),
		AudioID:     rec.AudioID.Ptr(),
		Size:        rec.Size.Ptr(),
	}
}

func copyList(list []string) []string {
	out := make([]string, len(list))
	copy(out, list)
	return out
}
