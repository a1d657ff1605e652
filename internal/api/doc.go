// Favefeed - Self-hosted Short Video Archive and Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/favefeed

/*
Package api serves the ops HTTP surface of the watch command.

Endpoints:

	GET /health        store ping; 200 healthy, 503 degraded
	GET /metrics       Prometheus exposition
	GET /api/v1/sync   recent sync logs and library counts

/api/v1/sync accepts optional query parameters:

	limit    number of sync logs, 1..100 (default 10)
	type     manual | watch
	status   started | completed | failed (repeatable)

Every JSON response uses the models.APIResponse envelope.
*/
package api
