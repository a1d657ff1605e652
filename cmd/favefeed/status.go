// Favefeed - Self-hosted Short Video Archive and Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/favefeed

package main

import (
	"context"
	"fmt"
	"io"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/tomtom215/favefeed/internal/api"
	"github.com/tomtom215/favefeed/internal/config"
	"github.com/tomtom215/favefeed/internal/database"
	"github.com/tomtom215/favefeed/internal/models"
)

func newStatusCmd(a *app) *cobra.Command {
	var limit int
	var syncType string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Print recent sync runs and library counts as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			filter := database.SyncLogFilter{Limit: limit, Type: models.SyncType(syncType)}
			return runStatus(cmd.Context(), a.cfg, filter, cmd.OutOrStdout())
		},
	}
	cmd.Flags().IntVar(&limit, "limit", database.DefaultSyncLogLimit, "Number of sync runs to show")
	cmd.Flags().StringVar(&syncType, "type", "", "Only show runs of this type (manual or watch)")
	return cmd
}

func runStatus(ctx context.Context, cfg *config.Config, filter database.SyncLogFilter, out io.Writer) error {
	switch filter.Type {
	case "", models.SyncTypeManual, models.SyncTypeWatch:
	default:
		return fmt.Errorf("unknown sync type %q", filter.Type)
	}

	db, err := database.New(&cfg.Database)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	report, err := api.BuildSyncStatus(ctx, db, filter, cfg.Export.MediaRoot)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("encode status: %w", err)
	}
	fmt.Fprintln(out, string(data))
	return nil
}
