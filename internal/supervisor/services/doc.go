// Favefeed - Self-hosted Short Video Archive and Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/favefeed

// Package services adapts components with their own lifecycle to
// suture.Service. The watch loop implements suture.Service itself; the ops
// HTTP server is wrapped by HTTPServerService.
package services
