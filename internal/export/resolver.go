// Favefeed - Self-hosted Short Video Archive and Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/favefeed

package export

import (
	"os"
	"path/filepath"
)

// Resolver locates media files inside a bundle. Every call checks the live
// filesystem; nothing is cached because files keep arriving while the watch
// loop runs.
type Resolver struct {
	root string
}

// NewResolver creates a resolver for the bundle at root.
func NewResolver(root string) *Resolver {
	return &Resolver{root: filepath.Clean(root)}
}

// Root returns the bundle root.
func (r *Resolver) Root() string {
	return r.root
}

// VideoPath finds <id>.mp4, searching Likes (if liked), Favorites (if
// favorite), Following/<authorID>, then every other Following directory.
func (r *Resolver) VideoPath(videoID string, liked, favorite bool, authorID string) (string, bool) {
	if !safeName(videoID) {
		return "", false
	}
	return r.search(liked, favorite, authorID, func(base string) []string {
		return []string{filepath.Join(base, VideosDir, videoID+VideoExt)}
	})
}

// CoverPath finds a cover image using the same directory order as VideoPath.
// All extensions are tried in one directory before moving to the next.
func (r *Resolver) CoverPath(videoID string, liked, favorite bool, authorID string) (string, bool) {
	if !safeName(videoID) {
		return "", false
	}
	return r.search(liked, favorite, authorID, func(base string) []string {
		candidates := make([]string, len(ImageExts))
		for i, ext := range ImageExts {
			candidates[i] = filepath.Join(base, CoversDir, videoID+ext)
		}
		return candidates
	})
}

// AvatarPath finds an author's avatar in Following/Avatars. Larger variants
// win: large_ before small_ before the bare id.
func (r *Resolver) AvatarPath(authorID string) (string, bool) {
	if !safeName(authorID) {
		return "", false
	}
	dir := filepath.Join(CategoryPath(r.root, FollowingDir), AvatarsDir)
	for _, prefix := range AvatarPrefixes {
		for _, ext := range ImageExts {
			candidate := filepath.Join(dir, prefix+authorID+ext)
			if isRegularFile(candidate) {
				return candidate, true
			}
		}
	}
	return "", false
}

// Servable converts a resolved path to its persisted relative form.
func (r *Resolver) Servable(path string) string {
	return ServablePath(r.root, path)
}

func (r *Resolver) search(liked, favorite bool, authorID string, candidates func(base string) []string) (string, bool) {
	followingRoot := CategoryPath(r.root, FollowingDir)

	bases := make([]string, 0, 3)
	if liked {
		bases = append(bases, CategoryPath(r.root, LikesDir))
	}
	if favorite {
		bases = append(bases, CategoryPath(r.root, FavoritesDir))
	}
	if safeName(authorID) && authorID != AvatarsDir {
		bases = append(bases, filepath.Join(followingRoot, authorID))
	}

	for _, base := range bases {
		if path, ok := firstRegularFile(candidates(base)); ok {
			return path, true
		}
	}

	// Fallback for stale author ids: every Following/<dir>.
	entries, err := os.ReadDir(followingRoot)
	if err != nil {
		return "", false
	}
	for _, entry := range entries {
		name := entry.Name()
		if !entry.IsDir() || name == AvatarsDir || name == authorID {
			continue
		}
		if path, ok := firstRegularFile(candidates(filepath.Join(followingRoot, name))); ok {
			return path, true
		}
	}
	return "", false
}

func firstRegularFile(paths []string) (string, bool) {
	for _, p := range paths {
		if isRegularFile(p) {
			return p, true
		}
	}
	return "", false
}

func isRegularFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
