// Favefeed - Self-hosted Short Video Archive and Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/favefeed

package ingest

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/tomtom215/favefeed/internal/config"
	"github.com/tomtom215/favefeed/internal/export"
	"github.com/tomtom215/favefeed/internal/models"
	"github.com/tomtom215/favefeed/internal/testinfra"
)

func newTestReconciler(store Store, root string) *Reconciler {
	return NewReconciler(store, export.NewReader(root), export.NewResolver(root), &config.ImportConfig{ProgressInterval: 1})
}

// libraryBundle has one liked video, one favorite from a followed author,
// one video that is not downloaded and one from an author without metadata.
func libraryBundle(t *testing.T) *testinfra.Bundle {
	t.Helper()

	b := testinfra.NewBundle(t)
	b.AddAuthor("a1", testinfra.AuthorFixture{
		UniqueIDs:  []string{"alice"},
		Nicknames:  []string{"Alice"},
		HeartCount: testinfra.Int64(9223372036854775000),
	})
	b.AddAuthor("a2", testinfra.AuthorFixture{})
	b.AddVideo("v1", testinfra.VideoFixture{AuthorID: "a1", CreateTime: 1700000000, PlayCount: testinfra.Int64(12)})
	b.AddVideo("v2", testinfra.VideoFixture{AuthorID: "a2", CreateTime: 1700000100})
	b.AddVideo("v3", testinfra.VideoFixture{AuthorID: "a1", CreateTime: 1700000200})
	b.AddVideo("v4", testinfra.VideoFixture{AuthorID: "ghost", CreateTime: 1700000300})
	b.SetText("v1", "hello")
	b.Like("v1", "v3")
	b.Bookmark("v2")
	b.Follow("a2")
	b.Write()

	b.Touch("Likes", "videos", "v1.mp4")
	b.Touch("Likes", "covers", "v1.png")
	b.Touch("Favorites", "videos", "v2.mp4")
	b.Touch("Following", "ghost", "videos", "v4.mp4")
	b.Touch("Following", "Avatars", "small_a1.jpg")
	b.Touch("Following", "Avatars", "large_a1.jpg")
	return b
}

func TestBulkImport(t *testing.T) {
	b := libraryBundle(t)
	store := newMemStore()
	r := newTestReconciler(store, b.Root)

	stats, err := r.BulkImport(context.Background())
	if err != nil {
		t.Fatalf("BulkImport() error = %v", err)
	}

	if stats.AuthorsAdded != 3 || stats.AuthorsUpdated != 0 {
		t.Errorf("authors added/updated = %d/%d, want 3/0", stats.AuthorsAdded, stats.AuthorsUpdated)
	}
	if stats.VideosAdded != 3 || stats.VideosUpdated != 0 || stats.VideosSkipped != 1 {
		t.Errorf("videos added/updated/skipped = %d/%d/%d, want 3/0/1",
			stats.VideosAdded, stats.VideosUpdated, stats.VideosSkipped)
	}

	v1, _ := store.video("v1")
	if v1.VideoPath != "data/Likes/videos/v1.mp4" {
		t.Errorf("v1 video path = %q", v1.VideoPath)
	}
	if v1.CoverPath == nil || *v1.CoverPath != "data/Likes/covers/v1.png" {
		t.Errorf("v1 cover path = %v", v1.CoverPath)
	}
	if v1.Description == nil || *v1.Description != "hello" {
		t.Errorf("v1 description = %v", v1.Description)
	}
	if !v1.CreateTime.Equal(time.Unix(1700000000, 0)) {
		t.Errorf("v1 create time = %v", v1.CreateTime)
	}
	if !v1.IsLiked || v1.IsFavorite || v1.IsFollowing {
		t.Errorf("v1 flags = %+v", v1.Classification())
	}

	v2, _ := store.video("v2")
	if !v2.IsFavorite || !v2.IsFollowing || v2.IsLiked {
		t.Errorf("v2 flags = %+v", v2.Classification())
	}

	if _, ok := store.video("v3"); ok {
		t.Error("v3 has no media file and should be skipped")
	}

	a1, _ := store.author("a1")
	if a1.UniqueID != "alice" || a1.Nickname != "Alice" {
		t.Errorf("a1 identity = %q/%q", a1.UniqueID, a1.Nickname)
	}
	if a1.AvatarPath == nil || *a1.AvatarPath != "data/Following/Avatars/large_a1.jpg" {
		t.Errorf("a1 avatar = %v", a1.AvatarPath)
	}
	if a1.HeartCount == nil || *a1.HeartCount != 9223372036854775000 {
		t.Errorf("a1 heart count = %v", a1.HeartCount)
	}

	a2, _ := store.author("a2")
	if a2.UniqueID != "user_a2" || a2.Nickname != "User a2" || !a2.IsFollowing {
		t.Errorf("a2 = %+v", a2)
	}

	ghost, ok := store.author("ghost")
	if !ok || ghost.UniqueID != "user_ghost" || len(ghost.UniqueIDs) != 0 {
		t.Errorf("ghost placeholder = %+v, exists=%v", ghost, ok)
	}

	log := store.lastLog()
	if log.Type != models.SyncTypeManual || log.Status != models.SyncStatusCompleted {
		t.Errorf("sync log = %s/%s", log.Type, log.Status)
	}
	if log.VideosAdded != 3 || log.AuthorsAdded != 3 || log.VideosSkipped != 1 || log.Errors != nil {
		t.Errorf("sync log counts = %+v", log)
	}
}

func TestBulkImport_Idempotent(t *testing.T) {
	b := libraryBundle(t)
	store := newMemStore()
	r := newTestReconciler(store, b.Root)

	if _, err := r.BulkImport(context.Background()); err != nil {
		t.Fatalf("first BulkImport() error = %v", err)
	}
	firstV1, _ := store.video("v1")
	firstA1, _ := store.author("a1")

	stats, err := r.BulkImport(context.Background())
	if err != nil {
		t.Fatalf("second BulkImport() error = %v", err)
	}

	if stats.VideosAdded != 0 || stats.AuthorsAdded != 0 {
		t.Errorf("second run added videos=%d authors=%d, want 0/0", stats.VideosAdded, stats.AuthorsAdded)
	}
	if stats.VideosUpdated != 3 || stats.AuthorsUpdated != 2 {
		t.Errorf("second run updated videos=%d authors=%d, want 3/2", stats.VideosUpdated, stats.AuthorsUpdated)
	}
	if len(store.videos) != 3 || len(store.authors) != 3 {
		t.Errorf("row counts = %d videos, %d authors", len(store.videos), len(store.authors))
	}

	secondV1, _ := store.video("v1")
	secondV1.UpdatedAt, firstV1.UpdatedAt = time.Time{}, time.Time{}
	if secondV1.VideoPath != firstV1.VideoPath || *secondV1.CoverPath != *firstV1.CoverPath ||
		secondV1.Classification() != firstV1.Classification() || *secondV1.PlayCount != *firstV1.PlayCount {
		t.Errorf("v1 changed between runs: %+v vs %+v", firstV1, secondV1)
	}
	secondA1, _ := store.author("a1")
	if secondA1.UniqueID != firstA1.UniqueID || *secondA1.HeartCount != *firstA1.HeartCount {
		t.Errorf("a1 changed between runs")
	}
}

func TestBulkImport_RecomputesFlags(t *testing.T) {
	b := libraryBundle(t)
	store := newMemStore()
	r := newTestReconciler(store, b.Root)

	if _, err := r.BulkImport(context.Background()); err != nil {
		t.Fatal(err)
	}
	if v2, _ := store.video("v2"); !v2.IsFollowing {
		t.Fatal("v2 should start out following")
	}

	// The owner unfollows a2; the favorite stays downloaded.
	next := testinfra.NewBundle(t, testinfra.WithRoot(b.Root))
	next.AddAuthor("a2", testinfra.AuthorFixture{})
	next.AddVideo("v2", testinfra.VideoFixture{AuthorID: "a2", CreateTime: 1700000100})
	next.Bookmark("v2")
	next.Write()

	if _, err := r.BulkImport(context.Background()); err != nil {
		t.Fatal(err)
	}

	v2, _ := store.video("v2")
	if v2.IsFollowing || !v2.IsFavorite {
		t.Errorf("bulk import should recompute flags from the current export, got %+v", v2.Classification())
	}
	if a2, _ := store.author("a2"); a2.IsFollowing {
		t.Error("a2 should no longer be followed")
	}
}

func TestMergeAuthor_KeepsKnownValues(t *testing.T) {
	t.Parallel()

	sig := "old bio"
	avatar := "data/Following/Avatars/a1.jpg"
	existing := &models.Author{
		ID:            "a1",
		UniqueID:      "alice",
		UniqueIDs:     []string{"alice"},
		Nickname:      "Alice",
		Nicknames:     []string{"Alice"},
		FollowerCount: testinfra.Int64(10),
		HeartCount:    testinfra.Int64(0),
		Signature:     &sig,
		AvatarPath:    &avatar,
		IsPrivate:     true,
		IsFollowing:   true,
	}

	mergeAuthor(existing, &export.AuthorRecord{}, false, nil)

	if existing.UniqueID != "alice" || existing.Nickname != "Alice" {
		t.Errorf("identity lost: %q/%q", existing.UniqueID, existing.Nickname)
	}
	if len(existing.UniqueIDs) != 1 || len(existing.Nicknames) != 1 {
		t.Errorf("history lost: %v/%v", existing.UniqueIDs, existing.Nicknames)
	}
	if existing.FollowerCount == nil || *existing.FollowerCount != 10 {
		t.Errorf("follower count lost: %v", existing.FollowerCount)
	}
	if existing.HeartCount == nil || *existing.HeartCount != 0 {
		t.Errorf("zero heart count should be kept, got %v", existing.HeartCount)
	}
	if existing.Signature == nil || existing.AvatarPath == nil || !existing.IsPrivate {
		t.Errorf("optional fields lost: %+v", existing)
	}
	if existing.IsFollowing {
		t.Error("IsFollowing must be recomputed")
	}

	hearts := export.Count(5)
	mergeAuthor(existing, &export.AuthorRecord{UniqueIDs: []string{"alice2", "alice"}, HeartCount: &hearts}, true, nil)
	if existing.UniqueID != "alice2" || *existing.HeartCount != 5 || !existing.IsFollowing {
		t.Errorf("newer values not applied: %+v", existing)
	}
}

func TestBulkImport_ParseErrorFailsSyncLog(t *testing.T) {
	b := testinfra.NewBundle(t)
	b.Write()
	b.WriteRaw("db_videos.js", []byte("window.db_videos = {broken"))

	store := newMemStore()
	stats, err := newTestReconciler(store, b.Root).BulkImport(context.Background())

	var perr *export.ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("expected ParseError, got %v", err)
	}
	if stats == nil || stats.SyncLogID != 1 {
		t.Fatalf("expected stats with sync log id, got %+v", stats)
	}

	log := store.lastLog()
	if log.Status != models.SyncStatusFailed || log.Errors == nil || !strings.Contains(*log.Errors, "db_videos.js") {
		t.Errorf("sync log = %+v", log)
	}
	if store.finished != 1 {
		t.Errorf("sync log finished %d times, want 1", store.finished)
	}
}

func TestBulkImport_StoreErrorAborts(t *testing.T) {
	b := libraryBundle(t)
	store := newMemStore()
	store.failVideoWrites = errors.New("disk full")

	stats, err := newTestReconciler(store, b.Root).BulkImport(context.Background())
	if err == nil || !strings.Contains(err.Error(), "disk full") {
		t.Fatalf("expected store error, got %v", err)
	}
	// Authors written before the failure stay.
	if stats.AuthorsAdded != 2 || len(store.authors) != 2 {
		t.Errorf("authors added = %d, stored = %d", stats.AuthorsAdded, len(store.authors))
	}
	if log := store.lastLog(); log.Status != models.SyncStatusFailed {
		t.Errorf("status = %s, want failed", log.Status)
	}
}

type blockingReader struct {
	started chan struct{}
	release chan struct{}
}

func (r *blockingReader) Read(ctx context.Context) (*export.Snapshot, error) {
	close(r.started)
	<-r.release
	return nil, errors.New("stopped")
}

func TestBulkImport_RefusesConcurrentRun(t *testing.T) {
	reader := &blockingReader{started: make(chan struct{}), release: make(chan struct{})}
	r := NewReconciler(newMemStore(), reader, export.NewResolver(t.TempDir()), nil)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = r.BulkImport(context.Background())
	}()

	<-reader.started
	if _, err := r.BulkImport(context.Background()); !errors.Is(err, ErrImportInProgress) {
		t.Errorf("expected ErrImportInProgress, got %v", err)
	}
	close(reader.release)
	<-done
}

func TestImportStats_ToSummary(t *testing.T) {
	t.Parallel()

	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	stats := &ImportStats{
		VideosAdded:   6,
		VideosUpdated: 2,
		VideosSkipped: 2,
		StartTime:     start,
		EndTime:       start.Add(2 * time.Second),
	}

	summary := stats.ToSummary(nil)
	if summary.Status != "completed" || summary.RecordsPerSec != 5 || summary.ElapsedSeconds != 2 {
		t.Errorf("summary = %+v", summary)
	}

	failed := stats.ToSummary(errors.New("boom"))
	if failed.Status != "failed" || failed.Error != "boom" {
		t.Errorf("failed summary = %+v", failed)
	}
}
