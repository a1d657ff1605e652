// Favefeed - Self-hosted Short Video Archive and Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/favefeed

package ingest

import "time"

// ImportStats holds the counters of one bulk import.
type ImportStats struct {
	// SyncLogID is the audit row of this run.
	SyncLogID int64

	AuthorsAdded   int
	AuthorsUpdated int

	VideosAdded   int
	VideosUpdated int
	// VideosSkipped counts videos whose media file is not downloaded yet.
	VideosSkipped int

	// TotalVideos is the number of videos in the snapshot.
	TotalVideos int

	StartTime time.Time
	EndTime   time.Time
}

// Processed returns the number of videos handled so far, skipped included.
func (s *ImportStats) Processed() int {
	return s.VideosAdded + s.VideosUpdated + s.VideosSkipped
}

// Duration returns the duration of the import.
func (s *ImportStats) Duration() time.Duration {
	if s.EndTime.IsZero() {
		return time.Since(s.StartTime)
	}
	return s.EndTime.Sub(s.StartTime)
}

// RecordsPerSecond returns the video processing rate.
func (s *ImportStats) RecordsPerSecond() float64 {
	duration := s.Duration().Seconds()
	if duration == 0 {
		return 0
	}
	return float64(s.Processed()) / duration
}

// ImportSummary is the operator-facing view of ImportStats.
type ImportSummary struct {
	Status         string    `json:"status"`
	SyncLogID      int64     `json:"sync_log_id"`
	AuthorsAdded   int       `json:"authors_added"`
	AuthorsUpdated int       `json:"authors_updated"`
	VideosAdded    int       `json:"videos_added"`
	VideosUpdated  int       `json:"videos_updated"`
	VideosSkipped  int       `json:"videos_skipped"`
	TotalVideos    int       `json:"total_videos"`
	RecordsPerSec  float64   `json:"records_per_second"`
	ElapsedSeconds float64   `json:"elapsed_seconds"`
	StartTime      time.Time `json:"start_time"`
	Error          string    `json:"error,omitempty"`
}

// ToSummary converts the stats to a summary. A non-nil runErr marks the
// run as failed.
func (s *ImportStats) ToSummary(runErr error) *ImportSummary {
	summary := &ImportSummary{
		Status:         "completed",
		SyncLogID:      s.SyncLogID,
		AuthorsAdded:   s.AuthorsAdded,
		AuthorsUpdated: s.AuthorsUpdated,
		VideosAdded:    s.VideosAdded,
		VideosUpdated:  s.VideosUpdated,
		VideosSkipped:  s.VideosSkipped,
		TotalVideos:    s.TotalVideos,
		RecordsPerSec:  s.RecordsPerSecond(),
		ElapsedSeconds: s.Duration().Seconds(),
		StartTime:      s.StartTime,
	}
	if runErr != nil {
		summary.Status = "failed"
		summary.Error = runErr.Error()
	}
	return summary
}
