// Favefeed - Self-hosted Short Video Archive and Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/favefeed

// Package config loads favefeed configuration from defaults, an optional YAML
// file and environment variables, in that order of precedence (env wins).
//
// The only required setting is the export bundle root, normally provided as
// MYFAVETT_EXPORT_PATH. A missing root is reported as ErrExportPathRequired.
package config

import (
	"errors"
	"time"
)

// ErrExportPathRequired is returned by Validate when no export bundle root
// was configured.
var ErrExportPathRequired = errors.New("MYFAVETT_EXPORT_PATH is required")

// Config holds all application configuration.
type Config struct {
	Export   ExportConfig   `koanf:"export"`
	Database DatabaseConfig `koanf:"database"`
	Import   ImportConfig   `koanf:"import"`
	Watch    WatchConfig    `koanf:"watch"`
	Server   ServerConfig   `koanf:"server"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// ExportConfig locates the export bundle.
type ExportConfig struct {
	// Path is the bundle root containing data/.appdata.
	Path string `koanf:"path"`

	// MediaRoot is where the media server joins persisted relative paths.
	// Informational only; reported by the sync status endpoint.
	MediaRoot string `koanf:"media_root"`
}

// DatabaseConfig holds DuckDB settings.
type DatabaseConfig struct {
	Path      string `koanf:"path"`
	MaxMemory string `koanf:"max_memory"`
	Threads   int    `koanf:"threads"` // 0 = runtime.NumCPU()
}

// ImportConfig holds bulk import settings.
type ImportConfig struct {
	// ProgressInterval is the number of processed videos between progress log lines.
	ProgressInterval int `koanf:"progress_interval"`
}

// WatchConfig holds watch loop settings.
type WatchConfig struct {
	// Debounce is the quiet window that must pass with no new discoveries
	// before a flush.
	Debounce time.Duration `koanf:"debounce"`

	// StabilityThreshold is how long a file's size and mtime must stay
	// unchanged before it counts as discovered.
	StabilityThreshold time.Duration `koanf:"stability_threshold"`

	// PollInterval is how often tracked files are re-checked for stability.
	PollInterval time.Duration `koanf:"poll_interval"`

	// ShutdownGrace bounds how long shutdown waits for an in-flight flush.
	ShutdownGrace time.Duration `koanf:"shutdown_grace"`

	// PendingStorePath enables a badger-backed pending store when set.
	// Empty keeps pending discoveries in memory only.
	PendingStorePath string `koanf:"pending_store_path"`

	// BreakerFailures is the number of consecutive store failures that opens
	// the circuit breaker.
	BreakerFailures uint32 `koanf:"breaker_failures"`

	// BreakerTimeout is how long the breaker stays open before probing again.
	BreakerTimeout time.Duration `koanf:"breaker_timeout"`
}

// ServerConfig holds ops HTTP server settings.
type ServerConfig struct {
	Enabled bool          `koanf:"enabled"`
	Host    string        `koanf:"host"`
	Port    int           `koanf:"port"`
	Timeout time.Duration `koanf:"timeout"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	Level string `koanf:"level"`

	// Format is the output format: json or console.
	Format string `koanf:"format"`

	// Caller includes caller file and line number in logs.
	Caller bool `koanf:"caller"`
}
