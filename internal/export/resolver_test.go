// Favefeed - Self-hosted Short Video Archive and Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/favefeed

package export

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/tomtom215/favefeed/internal/testinfra"
)

func TestResolver_VideoPathPriority(t *testing.T) {
	t.Parallel()

	b := testinfra.NewBundle(t)
	liked := b.Touch("Likes", "videos", "v1.mp4")
	fav := b.Touch("Favorites", "videos", "v1.mp4")
	following := b.Touch("Following", "a1", "videos", "v1.mp4")
	r := NewResolver(b.Root)

	tests := []struct {
		name     string
		liked    bool
		favorite bool
		author   string
		want     string
	}{
		{"liked wins over following", true, false, "a1", liked},
		{"liked wins over favorite", true, true, "a1", liked},
		{"favorite when not liked", false, true, "a1", fav},
		{"author directory", false, false, "a1", following},
		{"scan fallback without author", false, false, "", following},
		{"scan fallback with stale author", false, false, "gone", following},
	}

	for _, tt := range tests {
		got, ok := r.VideoPath("v1", tt.liked, tt.favorite, tt.author)
		if !ok || got != tt.want {
			t.Errorf("%s: VideoPath() = %q, %v; want %q", tt.name, got, ok, tt.want)
		}
	}
}

func TestResolver_VideoPathMiss(t *testing.T) {
	t.Parallel()

	b := testinfra.NewBundle(t)
	b.Touch("Following", "Avatars", "videos", "v9.mp4")
	if err := os.MkdirAll(filepath.Join(b.Root, "data", "Following", "a1", "videos", "v9.mp4"), 0o755); err != nil {
		t.Fatal(err)
	}
	r := NewResolver(b.Root)

	if got, ok := r.VideoPath("v9", true, true, "a1"); ok {
		t.Errorf("expected miss, got %q", got)
	}
	if _, ok := r.VideoPath("../v9", false, false, ""); ok {
		t.Error("expected unsafe id to miss")
	}
}

func TestResolver_CoverPath(t *testing.T) {
	t.Parallel()

	b := testinfra.NewBundle(t)
	likedPNG := b.Touch("Likes", "covers", "v1.png")
	b.Touch("Following", "a1", "covers", "v1.jpg")
	scanned := b.Touch("Following", "a2", "covers", "v2.webp")
	jpeg := b.Touch("Favorites", "covers", "v3.jpeg")
	b.Touch("Favorites", "covers", "v3.webp")
	r := NewResolver(b.Root)

	if got, _ := r.CoverPath("v1", true, false, "a1"); got != likedPNG {
		t.Errorf("CoverPath(v1) = %q, want %q", got, likedPNG)
	}
	if got, _ := r.CoverPath("v2", false, false, "a1"); got != scanned {
		t.Errorf("CoverPath(v2) = %q, want %q", got, scanned)
	}
	if got, _ := r.CoverPath("v3", false, true, ""); got != jpeg {
		t.Errorf("CoverPath(v3) = %q, want %q", got, jpeg)
	}
	if _, ok := r.CoverPath("v4", true, true, "a1"); ok {
		t.Error("expected miss for v4")
	}
}

func TestResolver_AvatarPrecedence(t *testing.T) {
	t.Parallel()

	b := testinfra.NewBundle(t)
	bare := b.Touch("Following", "Avatars", "a1.jpg")
	r := NewResolver(b.Root)

	if got, _ := r.AvatarPath("a1"); got != bare {
		t.Errorf("AvatarPath() = %q, want bare %q", got, bare)
	}

	small := b.Touch("Following", "Avatars", "small_a1.webp")
	if got, _ := r.AvatarPath("a1"); got != small {
		t.Errorf("AvatarPath() = %q, want small %q", got, small)
	}

	large := b.Touch("Following", "Avatars", "large_a1.png")
	if got, _ := r.AvatarPath("a1"); got != large {
		t.Errorf("AvatarPath() = %q, want large %q", got, large)
	}

	if _, ok := r.AvatarPath("a2"); ok {
		t.Error("expected miss for a2")
	}
}

func TestResolver_Servable(t *testing.T) {
	t.Parallel()

	b := testinfra.NewBundle(t)
	path := b.Touch("Likes", "videos", "v1.mp4")
	r := NewResolver(b.Root + string(filepath.Separator))

	if got := r.Servable(path); got != "data/Likes/videos/v1.mp4" {
		t.Errorf("Servable() = %q, want data/Likes/videos/v1.mp4", got)
	}
}
