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

	"github.com/tomtom215/favefeed/internal/config"
	"github.com/tomtom215/favefeed/internal/database"
	"github.com/tomtom215/favefeed/internal/export"
	"github.com/tomtom215/favefeed/internal/ingest"
	"github.com/tomtom215/favefeed/internal/logging"
)

func newImportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import",
		Short: "Reconcile the whole export bundle into the library",
		Long: `Reads every export file, upserts all authors, then upserts every video
whose media file can be found. Videos without a media file are skipped.
A summary is printed as JSON when the run ends; the exit status is 1 when
the run failed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runImport(cmd.Context(), a.cfg, cmd.OutOrStdout())
		},
	}
}

func runImport(ctx context.Context, cfg *config.Config, out io.Writer) error {
	db, err := database.New(&cfg.Database)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()

	reconciler := ingest.NewReconciler(
		db,
		export.NewReader(cfg.Export.Path),
		export.NewResolver(cfg.Export.Path),
		&cfg.Import,
	)

	stats, runErr := reconciler.BulkImport(ctx)
	if stats != nil {
		data, err := json.MarshalIndent(stats.ToSummary(runErr), "", "  ")
		if err != nil {
			return fmt.Errorf("encode summary: %w", err)
		}
		fmt.Fprintln(out, string(data))
	}
	if runErr != nil {
		return fmt.Errorf("import failed: %w", runErr)
	}
	return nil
}
