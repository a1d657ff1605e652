// Favefeed - Self-hosted Short Video Archive and Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/favefeed

package ingest

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/tomtom215/favefeed/internal/database"
	"github.com/tomtom215/favefeed/internal/models"
	"github.com/tomtom215/favefeed/internal/testinfra"
)

func TestSyncOne_CreatesVideoAndAuthor(t *testing.T) {
	b := testinfra.NewBundle(t)
	b.AddAuthor("a1", testinfra.AuthorFixture{UniqueIDs: []string{"alice"}, PrivateAccount: testinfra.Bool(true)})
	b.AddVideo("v1", testinfra.VideoFixture{AuthorID: "a1", CreateTime: 1700000000, AudioID: "777"})
	b.Write()
	path := b.Touch("Following", "a1", "videos", "v1.mp4")
	b.Touch("Following", "a1", "covers", "v1.webp")

	store := newMemStore()
	res, err := newTestReconciler(store, b.Root).SyncOne(context.Background(), "v1", path)
	if err != nil {
		t.Fatalf("SyncOne() error = %v", err)
	}
	if !res.Created || res.VideoID != "v1" {
		t.Errorf("result = %+v", res)
	}

	v1, _ := store.video("v1")
	if v1.VideoPath != "data/Following/a1/videos/v1.mp4" {
		t.Errorf("video path = %q", v1.VideoPath)
	}
	if v1.CoverPath == nil || *v1.CoverPath != "data/Following/a1/covers/v1.webp" {
		t.Errorf("cover path = %v", v1.CoverPath)
	}
	if v1.IsLiked || v1.IsFavorite || !v1.IsFollowing {
		t.Errorf("flags = %+v", v1.Classification())
	}
	if v1.AudioID == nil || *v1.AudioID != "777" {
		t.Errorf("audio id = %v", v1.AudioID)
	}

	a1, ok := store.author("a1")
	if !ok || a1.UniqueID != "alice" || !a1.IsPrivate || !a1.IsFollowing {
		t.Errorf("author = %+v, exists=%v", a1, ok)
	}
}

func TestSyncOne_NeverUnsetsFlags(t *testing.T) {
	b := testinfra.NewBundle(t)
	b.AddVideo("v1", testinfra.VideoFixture{AuthorID: "a1", CreateTime: 1700000000})
	b.Write()
	likedPath := b.Touch("Likes", "videos", "v1.mp4")
	favPath := b.Touch("Favorites", "videos", "v1.mp4")

	store := newMemStore()
	r := newTestReconciler(store, b.Root)
	ctx := context.Background()

	if _, err := r.SyncOne(ctx, "v1", likedPath); err != nil {
		t.Fatal(err)
	}
	res, err := r.SyncOne(ctx, "v1", favPath)
	if err != nil {
		t.Fatal(err)
	}
	if res.Created {
		t.Error("second sync should update")
	}

	v1, _ := store.video("v1")
	if !v1.IsLiked || !v1.IsFavorite {
		t.Errorf("expected liked and favorite, got %+v", v1.Classification())
	}
	if v1.VideoPath != "data/Favorites/videos/v1.mp4" {
		t.Errorf("path should follow the latest discovery, got %q", v1.VideoPath)
	}

	// Without author metadata the video is accepted and no author is written.
	if _, ok := store.author("a1"); ok {
		t.Error("author without metadata should not be created")
	}
}

func TestSyncOne_Failures(t *testing.T) {
	b := testinfra.NewBundle(t)
	b.AddVideo("v1", testinfra.VideoFixture{AuthorID: "a1", CreateTime: 1700000000})
	b.Write()
	present := b.Touch("Likes", "videos", "v1.mp4")
	unknown := b.Touch("Likes", "videos", "v9.mp4")

	gone := b.Touch("Favorites", "videos", "v1.mp4")
	if err := os.Remove(gone); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name      string
		videoID   string
		path      string
		storeErr  error
		wantIs    error
		wantStore bool
	}{
		{name: "metadata missing", videoID: "v9", path: unknown, wantIs: ErrMetadataMissing},
		{name: "file gone", videoID: "v1", path: gone, wantIs: ErrVideoFileMissing},
		{name: "store failure", videoID: "v1", path: present, storeErr: errors.New("io"), wantStore: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMemStore()
			store.failVideoWrites = tt.storeErr
			_, err := newTestReconciler(store, b.Root).SyncOne(context.Background(), tt.videoID, tt.path)
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.wantIs != nil && !errors.Is(err, tt.wantIs) {
				t.Errorf("expected %v, got %v", tt.wantIs, err)
			}
			if IsStoreError(err) != tt.wantStore {
				t.Errorf("IsStoreError = %v, want %v (%v)", !tt.wantStore, tt.wantStore, err)
			}
		})
	}
}

type panickingStore struct{ *memStore }

func (panickingStore) GetAuthor(context.Context, string) (*models.Author, error) {
	panic("boom")
}

func TestSyncOne_RecoversPanic(t *testing.T) {
	b := testinfra.NewBundle(t)
	b.AddVideo("v1", testinfra.VideoFixture{AuthorID: "a1", CreateTime: 1}).Write()
	path := b.Touch("Likes", "videos", "v1.mp4")

	r := newTestReconciler(panickingStore{newMemStore()}, b.Root)
	if _, err := r.SyncOne(context.Background(), "v1", path); err == nil {
		t.Fatal("expected panic to be returned as error")
	}
}

func TestIsStoreError(t *testing.T) {
	t.Parallel()

	err := &StoreError{Op: "get video v1", Err: database.ErrNotFound}
	if !IsStoreError(err) || !errors.Is(err, database.ErrNotFound) {
		t.Error("StoreError should unwrap")
	}
	if IsStoreError(ErrMetadataMissing) {
		t.Error("metadata miss is not a store error")
	}
}
