// Favefeed - Self-hosted Short Video Archive and Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/favefeed

package watch

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/favefeed/internal/config"
	"github.com/tomtom215/favefeed/internal/export"
	"github.com/tomtom215/favefeed/internal/ingest"
	"github.com/tomtom215/favefeed/internal/logging"
	"github.com/tomtom215/favefeed/internal/metrics"
	"github.com/tomtom215/favefeed/internal/models"
)

const breakerName = "watch-store"

// Syncer ingests one discovered video. *ingest.Reconciler implements it.
type Syncer interface {
	SyncOne(ctx context.Context, videoID, path string) (*ingest.SyncResult, error)
}

// SyncLogStore records one audit row per flush. *database.DB implements it.
type SyncLogStore interface {
	CreateSyncLog(ctx context.Context, syncType models.SyncType) (*models.SyncLog, error)
	FinishSyncLog(ctx context.Context, log *models.SyncLog) error
}

// FlushResult summarizes one flush.
type FlushResult struct {
	// SyncLogID is zero when the sync log could not be created.
	SyncLogID int64
	Added     int
	Updated   int
	Failed    int
	// Retained lists ids left in the pending store for a later replay.
	Retained []string
}

// Flusher syncs drained batches. Flushes never overlap, and a video id is
// never synced by two goroutines at once.
type Flusher struct {
	syncer  Syncer
	logs    SyncLogStore
	pending PendingStore
	breaker *gobreaker.CircuitBreaker[*ingest.SyncResult]
	locks   *keyedMutex

	flushMu sync.Mutex
}

// NewFlusher creates a flusher. Consecutive store failures beyond
// cfg.BreakerFailures open the breaker for cfg.BreakerTimeout.
func NewFlusher(cfg *config.WatchConfig, syncer Syncer, logs SyncLogStore, pending PendingStore) *Flusher {
	metrics.CircuitBreakerState.WithLabelValues(breakerName).Set(0)

	threshold := cfg.BreakerFailures
	breaker := gobreaker.NewCircuitBreaker[*ingest.SyncResult](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 1,
		Timeout:     cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		// Export misses are expected while downloads catch up; only the
		// store counts against the breaker.
		IsSuccessful: func(err error) bool {
			return err == nil || !ingest.IsStoreError(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("Circuit breaker state transition")
			metrics.RecordBreakerState(name, from.String(), to.String(), int(to))
		},
	})

	return &Flusher{
		syncer:  syncer,
		logs:    logs,
		pending: pending,
		breaker: breaker,
		locks:   newKeyedMutex(),
	}
}

// Flush syncs every video in batch and records the outcome in one watch
// SyncLog. Individual failures are counted and never stop the batch.
func (f *Flusher) Flush(ctx context.Context, batch Batch) (*FlushResult, error) {
	f.flushMu.Lock()
	defer f.flushMu.Unlock()

	ctx = logging.ContextWithNewCorrelationID(ctx)
	logger := logging.Ctx(ctx)
	start := time.Now()

	logger.Info().Int("videos", len(batch)).Msg("Syncing new videos")

	// A batch is synced even when its audit row cannot be created.
	result := &FlushResult{}
	syncLog, err := f.logs.CreateSyncLog(ctx, models.SyncTypeWatch)
	if err != nil {
		logger.Error().Err(err).Int("videos", len(batch)).Msg("Failed to create sync log, syncing without one")
		syncLog = nil
	} else {
		result.SyncLogID = syncLog.ID
	}
	done := Batch{}

	ids := make([]string, 0, len(batch))
	for id := range batch {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		res, err := f.syncOne(ctx, id, batch[id])
		if err == nil {
			if res.Created {
				result.Added++
			} else {
				result.Updated++
			}
			done[id] = batch[id]
			continue
		}

		result.Failed++
		reason := failureReason(err)
		metrics.RecordSyncFailure(reason)
		logger.Warn().Err(err).Str("video_id", id).Str("reason", reason).Msg("Video sync failed")

		if retainOnFailure(reason) {
			result.Retained = append(result.Retained, id)
		} else {
			done[id] = batch[id]
		}
	}

	if err := f.pending.Delete(done); err != nil {
		logger.Warn().Err(err).Msg("Failed to clear pending videos")
	}

	if syncLog != nil {
		syncLog.Status = models.SyncStatusCompleted
		syncLog.VideosAdded = result.Added
		syncLog.VideosUpdated = result.Updated
		if result.Failed > 0 {
			msg := fmt.Sprintf("%d videos failed to sync", result.Failed)
			syncLog.Errors = &msg
		}

		finishCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
		defer cancel()
		if err := f.logs.FinishSyncLog(finishCtx, syncLog); err != nil {
			return result, fmt.Errorf("finish sync log: %w", err)
		}
	}

	metrics.RecordFlush(len(batch))
	metrics.RecordIngestRun(string(models.SyncTypeWatch), string(models.SyncStatusCompleted), time.Since(start))
	metrics.RecordVideos("added", result.Added)
	metrics.RecordVideos("updated", result.Updated)

	logger.Info().
		Int("added", result.Added).
		Int("updated", result.Updated).
		Int("failed", result.Failed).
		Int("retained", len(result.Retained)).
		Dur("duration", time.Since(start)).
		Msg("Sync complete")
	return result, nil
}

func (f *Flusher) syncOne(ctx context.Context, videoID, path string) (*ingest.SyncResult, error) {
	unlock := f.locks.Lock(videoID)
	defer unlock()

	return f.breaker.Execute(func() (*ingest.SyncResult, error) {
		return f.syncer.SyncOne(ctx, videoID, path)
	})
}

// BreakerState returns the current breaker state.
func (f *Flusher) BreakerState() gobreaker.State {
	return f.breaker.State()
}

func failureReason(err error) string {
	var parseErr *export.ParseError
	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return "breaker_open"
	case ingest.IsStoreError(err):
		return "store"
	case errors.Is(err, ingest.ErrMetadataMissing):
		return "metadata_missing"
	case errors.Is(err, ingest.ErrVideoFileMissing):
		return "file_missing"
	case errors.As(err, &parseErr):
		return "parse"
	default:
		return "other"
	}
}

// retainOnFailure reports whether a failed video stays pending. Store
// trouble is transient; export misses are dropped like any other
// finished discovery.
func retainOnFailure(reason string) bool {
	return reason == "breaker_open" || reason == "store"
}
