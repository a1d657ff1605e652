// Favefeed - Self-hosted Short Video Archive and Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/favefeed

package models

import "time"

// SyncType identifies what started an ingestion run.
type SyncType string

const (
	SyncTypeManual SyncType = "manual"
	SyncTypeWatch  SyncType = "watch"
)

// SyncStatus is the lifecycle state of a SyncLog.
type SyncStatus string

const (
	SyncStatusStarted   SyncStatus = "started"
	SyncStatusCompleted SyncStatus = "completed"
	SyncStatusFailed    SyncStatus = "failed"
)

// SyncLog is the audit record of one ingestion run: a bulk import or one
// watch flush. It is inserted when the run starts and finished exactly once.
type SyncLog struct {
	ID             int64      `json:"id"`
	Type           SyncType   `json:"type"`
	Status         SyncStatus `json:"status"`
	VideosAdded    int        `json:"videos_added"`
	VideosUpdated  int        `json:"videos_updated"`
	VideosSkipped  int        `json:"videos_skipped"`
	AuthorsAdded   int        `json:"authors_added"`
	AuthorsUpdated int        `json:"authors_updated"`
	Errors         *string    `json:"errors,omitempty"`
	StartedAt      time.Time  `json:"started_at"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
}

// Finished reports whether the run has reached a terminal status.
func (l *SyncLog) Finished() bool {
	return l.Status == SyncStatusCompleted || l.Status == SyncStatusFailed
}

// LibraryCounts summarizes the persisted library.
type LibraryCounts struct {
	Videos    int64 `json:"videos"`
	Authors   int64 `json:"authors"`
	Liked     int64 `json:"liked"`
	Favorite  int64 `json:"favorite"`
	Following int64 `json:"following"`
}

// SyncStatusReport is the payload of the sync status endpoint and command.
type SyncStatusReport struct {
	RecentSyncs []SyncLog     `json:"recent_syncs"`
	Counts      LibraryCounts `json:"counts"`
	MediaRoot   string        `json:"media_root,omitempty"`
}
