// Favefeed - Self-hosted Short Video Archive and Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/favefeed

/*
Package ingest reconciles export bundles into the persistent store.

Two entry points share one Reconciler:

  - BulkImport walks the whole snapshot. Classification flags are recomputed
    from the current export on every run, so the store mirrors the bundle.
    Videos whose media file is not on disk yet are skipped and counted.
    Authors referenced by a video but missing from the metadata get a
    placeholder row.

  - SyncOne handles a single discovered video file for the watch loop. Flags
    are inferred from the directory the file landed in and OR-merged with the
    stored row, so a flag that was ever set stays set. Unknown authors are
    only created when their metadata is present.

Every entity write is its own atomic statement. A failed bulk run keeps the
rows written before the failure and records the error on its SyncLog.
*/
package ingest
