// Favefeed - Self-hosted Short Video Archive and Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/favefeed

/*
Package watch keeps the store in sync with video files as they are downloaded
into an export bundle.

Pipeline:

	fsnotify Create -> Stabilizer -> PendingStore.Put -> Debouncer -> Flusher
	                   (size/mtime                        (quiet       (one SyncLog
	                    settle)                            window)      per batch)

The Debouncer is a three-state machine (Idle, Accumulating, Flushing) with
a single resettable timer. Events for the same video id inside one window
collapse to the last path seen. A flush drains the whole buffer; events
that arrive while it runs start the next window instead of waiting.

The Flusher serializes flushes and takes a per-video lock around each sync.
Store failures feed a circuit breaker; once it opens, the rest of the batch
fails fast and stays in the PendingStore for replay on the next start.
*/
package watch
