// Favefeed - Self-hosted Short Video Archive and Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/favefeed

package watch

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/favefeed/internal/config"
	"github.com/tomtom215/favefeed/internal/export"
	"github.com/tomtom215/favefeed/internal/logging"
	"github.com/tomtom215/favefeed/internal/metrics"
)

// flushTimeout bounds one flush. Flushes run on their own context so a
// shutdown signal does not cut a batch short.
const flushTimeout = 10 * time.Minute

// Service runs the watch loop. It implements suture.Service.
type Service struct {
	cfg     *config.WatchConfig
	root    string
	flusher *Flusher
	pending PendingStore
	clock   Clock
}

// NewService creates the watch loop for the bundle at root.
func NewService(cfg *config.WatchConfig, root string, flusher *Flusher, pending PendingStore) *Service {
	return &Service{
		cfg:     cfg,
		root:    root,
		flusher: flusher,
		pending: pending,
		clock:   RealClock(),
	}
}

// Serve watches until ctx is canceled, then flushes what is buffered and
// waits up to the shutdown grace period for in-flight flushes.
func (s *Service) Serve(ctx context.Context) error {
	logger := logging.WithComponent("watch")

	debouncer := NewDebouncer(s.clock, s.cfg.Debounce, s.flush)
	stabilizer := NewStabilizer(s.cfg.StabilityThreshold, s.cfg.PollInterval, func(path string) {
		s.discovered(debouncer, path)
	})

	discoverer, err := NewDiscoverer(s.root, func(path string) {
		stabilizer.Track(path, s.clock.Now())
	})
	if err != nil {
		return fmt.Errorf("start watcher: %w", err)
	}

	replayed, err := s.replay(debouncer)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to replay pending videos")
	}

	logger.Info().
		Str("export_path", s.root).
		Int("directories", len(discoverer.WatchList())).
		Int("replayed", replayed).
		Dur("debounce", s.cfg.Debounce).
		Msg("Watch mode active")

	stabCtx, stopStabilizer := context.WithCancel(ctx)
	go stabilizer.Run(stabCtx)

	runErr := discoverer.Run(ctx)

	stopStabilizer()
	if err := discoverer.Close(); err != nil {
		logger.Warn().Err(err).Msg("Failed to close watcher")
	}

	logger.Info().Int("pending", debouncer.Pending()).Msg("Shutting down watch loop")
	graceCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownGrace)
	defer cancel()
	if err := debouncer.Close(graceCtx); err != nil {
		logger.Warn().Err(err).Dur("grace", s.cfg.ShutdownGrace).Msg("Abandoning in-flight flush")
	}

	if runErr != nil {
		return runErr
	}
	return ctx.Err()
}

// String implements fmt.Stringer for suture logging.
func (s *Service) String() string {
	return "watch-service"
}

// discovered persists a settled video file and buffers it for the next flush.
func (s *Service) discovered(debouncer *Debouncer, path string) {
	id, ok := export.VideoIDFromPath(path)
	if !ok {
		return
	}
	metrics.RecordWatchEvent("discovered")
	logging.Info().Str("video_id", id).Str("path", path).Msg("New video detected")

	if err := s.pending.Put(id, path); err != nil {
		logging.Warn().Err(err).Str("video_id", id).Msg("Failed to persist pending video")
	}
	debouncer.Add(id, path)
}

// replay feeds discoveries left over from a previous run into the debouncer.
func (s *Service) replay(debouncer *Debouncer) (int, error) {
	batch, err := s.pending.Load()
	if err != nil {
		return 0, err
	}
	for id, path := range batch {
		metrics.RecordWatchEvent("replayed")
		debouncer.Add(id, path)
	}
	return len(batch), nil
}

func (s *Service) flush(batch Batch) {
	ctx, cancel := context.WithTimeout(context.Background(), flushTimeout)
	defer cancel()

	if _, err := s.flusher.Flush(ctx, batch); err != nil {
		logging.Error().Err(err).Int("videos", len(batch)).Msg("Flush failed")
	}
}
