// Favefeed - Self-hosted Short Video Archive and Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/favefeed

package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/tomtom215/favefeed/internal/database"
	"github.com/tomtom215/favefeed/internal/models"
	"github.com/tomtom215/favefeed/internal/validation"
)

// SyncStatusQuery holds the query parameters of /api/v1/sync.
type SyncStatusQuery struct {
	Limit    int      `json:"limit" validate:"min=1,max=100"`
	Type     string   `json:"type" validate:"omitempty,oneof=manual watch"`
	Statuses []string `json:"status" validate:"dive,oneof=started completed failed"`
}

// Filter converts the query to a store filter.
func (q SyncStatusQuery) Filter() database.SyncLogFilter {
	filter := database.SyncLogFilter{
		Limit: q.Limit,
		Type:  models.SyncType(q.Type),
	}
	for _, s := range q.Statuses {
		filter.Statuses = append(filter.Statuses, models.SyncStatus(s))
	}
	return filter
}

// SyncStatus returns the most recent sync logs with the library counts.
func (h *Handler) SyncStatus(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	query, err := parseSyncStatusQuery(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
		return
	}

	report, err := BuildSyncStatus(r.Context(), h.store, query.Filter(), h.mediaRoot)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to load sync status", err)
		return
	}
	respondSuccess(w, report, start)
}

func parseSyncStatusQuery(r *http.Request) (SyncStatusQuery, error) {
	values := r.URL.Query()
	query := SyncStatusQuery{
		Limit:    database.DefaultSyncLogLimit,
		Type:     values.Get("type"),
		Statuses: values["status"],
	}
	if raw := values.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			return query, fmt.Errorf("limit must be a number")
		}
		query.Limit = limit
	}

	if err := validation.ValidateStruct(&query); err != nil {
		var verrs validation.Errors
		if errors.As(err, &verrs) {
			return query, verrs
		}
		return query, err
	}
	return query, nil
}

// BuildSyncStatus assembles the sync status report. The status command
// prints the same report.
func BuildSyncStatus(ctx context.Context, store StatusStore, filter database.SyncLogFilter, mediaRoot string) (*models.SyncStatusReport, error) {
	logs, err := store.ListSyncLogs(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list sync logs: %w", err)
	}
	counts, err := store.LibraryCounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("count library: %w", err)
	}
	if logs == nil {
		logs = []models.SyncLog{}
	}
	return &models.SyncStatusReport{
		RecentSyncs: logs,
		Counts:      *counts,
		MediaRoot:   mediaRoot,
	}, nil
}
