// Favefeed - Self-hosted Short Video Archive and Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/favefeed

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/tomtom215/favefeed/internal/database"
	"github.com/tomtom215/favefeed/internal/models"
)

// StatusStore is the read side of the store used by the ops surface.
// *database.DB implements it.
type StatusStore interface {
	Ping(ctx context.Context) error
	ListSyncLogs(ctx context.Context, filter database.SyncLogFilter) ([]models.SyncLog, error)
	LibraryCounts(ctx context.Context) (*models.LibraryCounts, error)
}

// Handler holds the ops endpoints.
type Handler struct {
	store     StatusStore
	mediaRoot string
	startTime time.Time
}

// NewHandler creates the handlers. mediaRoot is reported as-is by
// /api/v1/sync.
func NewHandler(store StatusStore, mediaRoot string) *Handler {
	return &Handler{
		store:     store,
		mediaRoot: mediaRoot,
		startTime: time.Now(),
	}
}

// Health reports whether the store answers a ping.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	connected := h.store != nil && h.store.Ping(r.Context()) == nil

	health := models.HealthStatus{
		Status:            "healthy",
		DatabaseConnected: connected,
		Uptime:            time.Since(h.startTime).Seconds(),
	}
	status := http.StatusOK
	if !connected {
		health.Status = "degraded"
		status = http.StatusServiceUnavailable
	}

	respondJSON(w, status, &models.APIResponse{
		Status:   "success",
		Data:     health,
		Metadata: models.Metadata{Timestamp: time.Now().UTC()},
	})
}
