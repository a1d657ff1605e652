// Favefeed - Self-hosted Short Video Archive and Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/favefeed

// Package metrics defines the Prometheus collectors exported on /metrics.
//
// Collectors are registered with the default registry through promauto and
// updated through the Record* helpers so callers never touch label values
// directly:
//
//	start := time.Now()
//	err := db.CreateVideo(ctx, v)
//	metrics.RecordDBQuery("insert", "videos", time.Since(start), err)
package metrics
