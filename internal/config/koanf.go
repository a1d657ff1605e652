// Favefeed - Self-hosted Short Video Archive and Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/favefeed

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/favefeed/config.yaml",
	"/etc/favefeed/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

func defaultConfig() *Config {
	return &Config{
		Export: ExportConfig{
			Path:      "",
			MediaRoot: "",
		},
		Database: DatabaseConfig{
			Path:      "/data/favefeed.duckdb",
			MaxMemory: "1GB",
			Threads:   0,
		},
		Import: ImportConfig{
			ProgressInterval: 500,
		},
		Watch: WatchConfig{
			Debounce:           5 * time.Second,
			StabilityThreshold: 2 * time.Second,
			PollInterval:       100 * time.Millisecond,
			ShutdownGrace:      30 * time.Second,
			PendingStorePath:   "",
			BreakerFailures:    5,
			BreakerTimeout:     30 * time.Second,
		},
		Server: ServerConfig{
			Enabled: true,
			Host:    "127.0.0.1",
			Port:    3857,
			Timeout: 30 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// LoadWithKoanf loads configuration with layered sources:
//  1. Built-in defaults
//  2. Optional YAML config file (explicit path, CONFIG_PATH, or DefaultConfigPaths)
//  3. Environment variables
//
// An explicit configPath that does not exist is an error; the searched
// defaults are optional.
func LoadWithKoanf(configPath string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath != "" {
		if _, err := os.Stat(configPath); err != nil {
			return nil, fmt.Errorf("config file %s: %w", configPath, err)
		}
	} else {
		configPath = findConfigFile()
	}
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile returns the first existing config file, or "".
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// envMappings maps lower-cased environment variable names to config paths.
// Variables not listed here are ignored.
var envMappings = map[string]string{
	"myfavett_export_path": "export.path",
	"video_base_path":      "export.media_root",

	"duckdb_path":       "database.path",
	"duckdb_max_memory": "database.max_memory",
	"duckdb_threads":    "database.threads",

	"import_progress_interval": "import.progress_interval",

	"watch_debounce":            "watch.debounce",
	"watch_stability_threshold": "watch.stability_threshold",
	"watch_poll_interval":       "watch.poll_interval",
	"watch_shutdown_grace":      "watch.shutdown_grace",
	"watch_pending_store_path":  "watch.pending_store_path",
	"watch_breaker_failures":    "watch.breaker_failures",
	"watch_breaker_timeout":     "watch.breaker_timeout",

	"http_enabled": "server.enabled",
	"http_host":    "server.host",
	"http_port":    "server.port",
	"http_timeout": "server.timeout",

	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// envTransformFunc transforms environment variable names to koanf config paths.
//
// Examples:
//   - MYFAVETT_EXPORT_PATH -> export.path
//   - WATCH_DEBOUNCE -> watch.debounce
//   - HTTP_PORT -> server.port
func envTransformFunc(key string) string {
	if mapped, ok := envMappings[strings.ToLower(key)]; ok {
		return mapped
	}
	return ""
}
