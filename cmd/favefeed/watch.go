// Favefeed - Self-hosted Short Video Archive and Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/favefeed

package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"github.com/thejerf/suture/v4"

	"github.com/tomtom215/favefeed/internal/api"
	"github.com/tomtom215/favefeed/internal/config"
	"github.com/tomtom215/favefeed/internal/database"
	"github.com/tomtom215/favefeed/internal/export"
	"github.com/tomtom215/favefeed/internal/ingest"
	"github.com/tomtom215/favefeed/internal/logging"
	"github.com/tomtom215/favefeed/internal/supervisor"
	"github.com/tomtom215/favefeed/internal/supervisor/services"
	"github.com/tomtom215/favefeed/internal/watch"
)

// shutdownMargin is added to the watch grace period for the supervisor's
// per-service stop timeout.
const shutdownMargin = 10 * time.Second

func newWatchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Ingest new video downloads as they appear",
		Long: `Watches the Likes, Favorites and Following video directories of the
export bundle. New files are synced in batches once no new file has
appeared for the debounce window. Existing files are left to "import".`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWatch(cmd.Context(), a.cfg)
		},
	}
}

func runWatch(ctx context.Context, cfg *config.Config) error {
	db, err := database.New(&cfg.Database)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()

	pending, err := openPendingStore(&cfg.Watch)
	if err != nil {
		return err
	}
	defer func() {
		if err := pending.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing pending store")
		}
	}()

	root := cfg.Export.Path
	reconciler := ingest.NewReconciler(db, export.NewCachedReader(root), export.NewResolver(root), &cfg.Import)
	flusher := watch.NewFlusher(&cfg.Watch, reconciler, db, pending)

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger("supervisor"), supervisor.TreeConfig{
		FailureThreshold: 5,
		FailureBackoff:   15 * time.Second,
		ShutdownTimeout:  cfg.Watch.ShutdownGrace + shutdownMargin,
	})
	if err != nil {
		return fmt.Errorf("create supervisor tree: %w", err)
	}

	tree.AddWatchService(watch.NewService(&cfg.Watch, root, flusher, pending))

	if cfg.Server.Enabled {
		addr := net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port))
		server := &http.Server{
			Handler:           api.NewRouter(api.NewHandler(db, cfg.Export.MediaRoot)),
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       cfg.Server.Timeout,
			WriteTimeout:      cfg.Server.Timeout,
		}
		tree.AddAPIService(services.NewHTTPServerService(addr, server, 0))
	}

	logging.Info().Str("export_path", root).Bool("http", cfg.Server.Enabled).Msg("Starting watch mode")

	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logging.Error().Err(err).Msg("Supervisor tree error")
	}

	logUnstopped(tree)

	logging.Info().Msg("Watch mode stopped")
	return nil
}

type unstoppedReporter interface {
	UnstoppedServiceReport() ([]suture.UnstoppedService, error)
}

// logUnstopped warns about services still running after the shutdown timeout.
func logUnstopped(r unstoppedReporter) {
	unstopped, err := r.UnstoppedServiceReport()
	if err != nil {
		logging.Warn().Err(err).Msg("Failed to report unstopped services")
		return
	}
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
	}
}

func openPendingStore(cfg *config.WatchConfig) (watch.PendingStore, error) {
	if cfg.PendingStorePath == "" {
		return watch.NewMemoryPendingStore(), nil
	}
	store, err := watch.OpenBadgerPendingStore(cfg.PendingStorePath)
	if err != nil {
		return nil, err
	}
	logging.Info().Str("path", cfg.PendingStorePath).Msg("Pending discoveries persisted")
	return store, nil
}
