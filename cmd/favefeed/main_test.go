// Favefeed - Self-hosted Short Video Archive and Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/favefeed

package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/thejerf/suture/v4"

	"github.com/tomtom215/favefeed/internal/config"
	"github.com/tomtom215/favefeed/internal/database"
	"github.com/tomtom215/favefeed/internal/ingest"
	"github.com/tomtom215/favefeed/internal/logging"
	"github.com/tomtom215/favefeed/internal/models"
	"github.com/tomtom215/favefeed/internal/testinfra"
)

func testConfig(t *testing.T, root string) *config.Config {
	t.Helper()
	return &config.Config{
		Export:   config.ExportConfig{Path: root, MediaRoot: "/srv/videos"},
		Database: config.DatabaseConfig{Path: filepath.Join(t.TempDir(), "favefeed.duckdb"), MaxMemory: "256MB", Threads: 1},
		Import:   config.ImportConfig{ProgressInterval: 100},
	}
}

func smallBundle(t *testing.T) *testinfra.Bundle {
	t.Helper()
	b := testinfra.NewBundle(t)
	b.AddAuthor("a1", testinfra.AuthorFixture{UniqueIDs: []string{"alice"}, Nicknames: []string{"Alice"}})
	b.AddVideo("v1", testinfra.VideoFixture{AuthorID: "a1", CreateTime: 1700000000})
	b.AddVideo("v2", testinfra.VideoFixture{AuthorID: "a1", CreateTime: 1700000100})
	b.Like("v1", "v2")
	b.Write()
	b.Touch("Likes", "videos", "v1.mp4")
	return b
}

func TestRootCmd_RequiresExportPath(t *testing.T) {
	t.Setenv("MYFAVETT_EXPORT_PATH", "")
	t.Setenv("CONFIG_PATH", "")

	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs([]string{"status"})
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)

	err := cmd.Execute()
	if !errors.Is(err, config.ErrExportPathRequired) {
		t.Fatalf("Execute() error = %v, want %v", err, config.ErrExportPathRequired)
	}
	if stdout.Len() != 0 {
		t.Errorf("unexpected output: %s", stdout.String())
	}
}

func TestRootCmd_ConfigFlag(t *testing.T) {
	t.Setenv("MYFAVETT_EXPORT_PATH", "")

	path := filepath.Join(t.TempDir(), "missing.yaml")
	cmd := newRootCmd()
	cmd.SetArgs([]string{"--config", path, "status"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})

	if err := cmd.Execute(); err == nil || !strings.Contains(err.Error(), path) {
		t.Errorf("Execute() error = %v, want missing config file error", err)
	}
}

func TestImportThenStatus(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping DuckDB test in short mode")
	}

	b := smallBundle(t)
	cfg := testConfig(t, b.Root)
	ctx := context.Background()

	var out bytes.Buffer
	if err := runImport(ctx, cfg, &out); err != nil {
		t.Fatalf("runImport() error = %v", err)
	}

	var summary ingest.ImportSummary
	if err := json.Unmarshal(out.Bytes(), &summary); err != nil {
		t.Fatalf("decode summary %q: %v", out.String(), err)
	}
	if summary.Status != "completed" || summary.VideosAdded != 1 || summary.VideosSkipped != 1 || summary.AuthorsAdded != 1 {
		t.Errorf("summary = %+v", summary)
	}

	out.Reset()
	if err := runStatus(ctx, cfg, database.SyncLogFilter{Limit: 10}, &out); err != nil {
		t.Fatalf("runStatus() error = %v", err)
	}

	var report models.SyncStatusReport
	if err := json.Unmarshal(out.Bytes(), &report); err != nil {
		t.Fatalf("decode status %q: %v", out.String(), err)
	}
	if len(report.RecentSyncs) != 1 || report.RecentSyncs[0].Type != models.SyncTypeManual {
		t.Errorf("recent syncs = %+v", report.RecentSyncs)
	}
	want := models.LibraryCounts{Videos: 1, Authors: 1, Liked: 1}
	if report.Counts != want {
		t.Errorf("counts = %+v, want %+v", report.Counts, want)
	}
	if report.MediaRoot != "/srv/videos" {
		t.Errorf("media root = %q", report.MediaRoot)
	}
}

func TestImport_ParseErrorFails(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping DuckDB test in short mode")
	}

	b := smallBundle(t)
	b.WriteRaw("db_videos.js", []byte("not an export file"))
	cfg := testConfig(t, b.Root)

	var out bytes.Buffer
	err := runImport(context.Background(), cfg, &out)
	if err == nil {
		t.Fatal("expected the import to fail")
	}

	var summary ingest.ImportSummary
	if err := json.Unmarshal(out.Bytes(), &summary); err != nil {
		t.Fatalf("decode summary %q: %v", out.String(), err)
	}
	if summary.Status != "failed" || summary.Error == "" {
		t.Errorf("summary = %+v", summary)
	}
}

func TestRunStatus_RejectsUnknownType(t *testing.T) {
	cfg := testConfig(t, t.TempDir())
	err := runStatus(context.Background(), cfg, database.SyncLogFilter{Type: "cron"}, &bytes.Buffer{})
	if err == nil {
		t.Fatal("expected an error for an unknown sync type")
	}
	if _, statErr := os.Stat(cfg.Database.Path); !os.IsNotExist(statErr) {
		t.Error("database should not be created for an invalid request")
	}
}

func TestOpenPendingStore(t *testing.T) {
	mem, err := openPendingStore(&config.WatchConfig{})
	if err != nil {
		t.Fatal(err)
	}
	defer mem.Close()

	persisted, err := openPendingStore(&config.WatchConfig{PendingStorePath: t.TempDir()})
	if err != nil {
		t.Fatalf("openPendingStore() error = %v", err)
	}
	defer persisted.Close()

	if err := persisted.Put("v1", "/p/v1.mp4"); err != nil {
		t.Fatal(err)
	}
}

type fakeReporter struct {
	unstopped []suture.UnstoppedService
	err       error
}

func (f fakeReporter) UnstoppedServiceReport() ([]suture.UnstoppedService, error) {
	return f.unstopped, f.err
}

func TestLogUnstopped(t *testing.T) {
	tests := []struct {
		name     string
		reporter fakeReporter
		want     string
	}{
		{"report error", fakeReporter{err: errors.New("supervisor not stopped")}, "supervisor not stopped"},
		{"stuck service", fakeReporter{unstopped: []suture.UnstoppedService{{Name: "watch"}}}, `"service":"watch"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			prev := logging.Logger()
			logging.SetLogger(logging.NewTestLogger(&buf))
			defer logging.SetLogger(prev)

			logUnstopped(tt.reporter)

			if !strings.Contains(buf.String(), tt.want) || !strings.Contains(buf.String(), `"level":"warn"`) {
				t.Errorf("log = %s, want warning containing %s", buf.String(), tt.want)
			}
		})
	}
}
