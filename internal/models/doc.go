// Favefeed - Self-hosted Short Video Archive and Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/favefeed

/*
Package models defines the data structures shared by the store, the
reconciler and the ops API.

Database Models:
  - Video: one archived video and its Liked/Favorite/Following flags
  - Author: one creator, either from export metadata or a placeholder
  - SyncLog: one import or watch flush, from "started" to a terminal status

Classification:
  - Classification: the collection flags derived from where a media file
    sits in the export tree. Merge ORs flags together so a video seen under
    Likes and under Following keeps both.

API Models:
  - APIResponse: standard response wrapper
  - APIError: error details
  - Metadata: response metadata (timestamp, query time)
  - HealthStatus: body of GET /health
  - SyncStatusReport: recent sync logs plus library counts

Usage Example:

	import "github.com/tomtom215/favefeed/internal/models"

	log, err := db.CreateSyncLog(ctx, models.SyncTypeWatch)
	if err != nil {
	    return err
	}
	log.VideosAdded = added
	log.Status = models.SyncStatusCompleted
	err = db.FinishSyncLog(ctx, log)

Thread Safety:

Model values carry no synchronization. Share them between goroutines only
after they are fully built.
*/
package models
