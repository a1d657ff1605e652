// Favefeed - Self-hosted Short Video Archive and Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/favefeed

package export

import (
	"path/filepath"
	"strings"

	"github.com/tomtom215/favefeed/internal/models"
)

// Bundle layout, fixed by the export tool.
const (
	DataDir    = "data"
	AppDataDir = ".appdata"

	VideosFile     = "db_videos.js"
	AuthorsFile    = "db_authors.js"
	TextsFile      = "db_texts.js"
	LikesFile      = "db_likes.js"
	BookmarkedFile = "db_bookmarked.js"
	FollowingFile  = "db_following.js"
	FactsFile      = "facts.json"

	LikesDir     = "Likes"
	FavoritesDir = "Favorites"
	FollowingDir = "Following"
	AvatarsDir   = "Avatars"

	VideosDir = "videos"
	CoversDir = "covers"

	VideoExt = ".mp4"
)

// ImageExts lists cover and avatar extensions in lookup order.
var ImageExts = []string{".jpg", ".jpeg", ".png", ".webp"}

// AvatarPrefixes lists avatar size prefixes in lookup order.
var AvatarPrefixes = []string{"large_", "small_", ""}

// AppDataPath returns the directory holding the metadata files.
func AppDataPath(root string) string {
	return filepath.Join(root, DataDir, AppDataDir)
}

// CategoryPath returns data/<category> under root.
func CategoryPath(root, category string) string {
	return filepath.Join(root, DataDir, category)
}

// VideoIDFromPath returns the video id for a media file path, or false when
// the file is not a video or is hidden.
func VideoIDFromPath(path string) (string, bool) {
	name := filepath.Base(path)
	if strings.HasPrefix(name, ".") || !strings.HasSuffix(name, VideoExt) {
		return "", false
	}
	id := strings.TrimSuffix(name, VideoExt)
	return id, id != ""
}

// ClassifyPath infers classification flags from the category directory a
// media file sits under. Following is only set when the file is under
// neither Likes nor Favorites.
func ClassifyPath(root, path string) models.Classification {
	var c models.Classification

	rel := ServablePath(root, path)
	segments := strings.Split(rel, "/")
	for i := 0; i+1 < len(segments); i++ {
		if segments[i] != DataDir {
			continue
		}
		switch segments[i+1] {
		case LikesDir:
			c.Liked = true
		case FavoritesDir:
			c.Favorite = true
		case FollowingDir:
			c.Following = true
		}
		break
	}

	if c.Liked || c.Favorite {
		c.Following = false
	}
	return c
}

// ServablePath converts an absolute media path to the relative form that is
// persisted: the export root prefix and any leading separators are removed
// and separators are normalized to '/'.
func ServablePath(root, path string) string {
	root = filepath.Clean(root)
	rel := path
	if root != "." && strings.HasPrefix(path, root) {
		rel = path[len(root):]
	}
	rel = strings.TrimLeft(rel, `/\`)
	return filepath.ToSlash(rel)
}

// safeName reports whether s can be used as a single path element.
func safeName(s string) bool {
	return s != "" && s != "." && s != ".." && !strings.ContainsAny(s, `/\`)
}
