// Favefeed - Self-hosted Short Video Archive and Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/favefeed

package config

import (
	"fmt"
	"strings"

	"github.com/tomtom215/favefeed/internal/logging"
)

// Validate checks that required configuration is present and valid
func (c *Config) Validate() error {
	if err := c.validateExport(); err != nil {
		return err
	}
	if err := c.validateDatabase(); err != nil {
		return err
	}
	if err := c.validateImport(); err != nil {
		return err
	}
	if err := c.validateWatch(); err != nil {
		return err
	}
	if err := c.validateServer(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateExport() error {
	if strings.TrimSpace(c.Export.Path) == "" {
		return ErrExportPathRequired
	}
	return nil
}

func (c *Config) validateDatabase() error {
	if c.Database.Path == "" {
		return fmt.Errorf("DUCKDB_PATH must not be empty")
	}
	if c.Database.Threads < 0 {
		return fmt.Errorf("DUCKDB_THREADS must be >= 0, got %d", c.Database.Threads)
	}
	return nil
}

func (c *Config) validateImport() error {
	if c.Import.ProgressInterval < 1 {
		return fmt.Errorf("IMPORT_PROGRESS_INTERVAL must be at least 1, got %d", c.Import.ProgressInterval)
	}
	return nil
}

func (c *Config) validateWatch() error {
	w := c.Watch
	if w.Debounce <= 0 {
		return fmt.Errorf("WATCH_DEBOUNCE must be positive, got %v", w.Debounce)
	}
	if w.StabilityThreshold < 0 {
		return fmt.Errorf("WATCH_STABILITY_THRESHOLD must be >= 0, got %v", w.StabilityThreshold)
	}
	if w.PollInterval <= 0 {
		return fmt.Errorf("WATCH_POLL_INTERVAL must be positive, got %v", w.PollInterval)
	}
	if w.ShutdownGrace <= 0 {
		return fmt.Errorf("WATCH_SHUTDOWN_GRACE must be positive, got %v", w.ShutdownGrace)
	}
	if w.BreakerFailures == 0 {
		return fmt.Errorf("WATCH_BREAKER_FAILURES must be at least 1")
	}
	if w.BreakerTimeout <= 0 {
		return fmt.Errorf("WATCH_BREAKER_TIMEOUT must be positive, got %v", w.BreakerTimeout)
	}
	return nil
}

func (c *Config) validateServer() error {
	if !c.Server.Enabled {
		return nil
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	return nil
}

func (c *Config) validateLogging() error {
	if !logging.ValidLevel(c.Logging.Level) {
		return fmt.Errorf("LOG_LEVEL %q is not a valid level", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("LOG_FORMAT must be json or console, got %q", c.Logging.Format)
	}
	return nil
}
