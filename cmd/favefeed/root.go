// Favefeed - Self-hosted Short Video Archive and Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/favefeed

package main

import (
	"github.com/spf13/cobra"

	"github.com/tomtom215/favefeed/internal/config"
	"github.com/tomtom215/favefeed/internal/logging"
)

// app carries state shared by the subcommands.
type app struct {
	configPath string
	cfg        *config.Config
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "favefeed",
		Short:         "Ingest a favorites export bundle into the local video library",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadWithKoanf(a.configPath)
			if err != nil {
				return err
			}
			a.cfg = cfg

			logging.Init(logging.Config{
				Level:  cfg.Logging.Level,
				Format: cfg.Logging.Format,
				Caller: cfg.Logging.Caller,
				Output: cmd.ErrOrStderr(),
			})
			return nil
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "Path to a YAML config file (overrides CONFIG_PATH)")

	root.AddCommand(
		newImportCmd(a),
		newWatchCmd(a),
		newStatusCmd(a),
	)
	return root
}
