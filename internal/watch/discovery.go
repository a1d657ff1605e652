// Favefeed - Self-hosted Short Video Archive and Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/favefeed

package watch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/tomtom215/favefeed/internal/export"
	"github.com/tomtom215/favefeed/internal/logging"
	"github.com/tomtom215/favefeed/internal/metrics"
)

// Discoverer watches the video directories of a bundle and reports newly
// created video files. Files present before it starts are not reported.
type Discoverer struct {
	data      string
	following string
	watcher   *fsnotify.Watcher
	found     func(path string)
}

// NewDiscoverer registers watches on data/, each category directory, their
// videos/ directories and every Following/<author>/videos. Directories that
// do not exist yet are picked up when they are created. found is called
// with the absolute path of each created video file.
func NewDiscoverer(root string, found func(path string)) (*Discoverer, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	d := &Discoverer{
		data:      export.CategoryPath(root, ""),
		following: export.CategoryPath(root, export.FollowingDir),
		watcher:   watcher,
		found:     found,
	}

	if !d.addIfDir(d.data) {
		_ = watcher.Close()
		return nil, fmt.Errorf("no data directory to watch at %s", d.data)
	}
	for _, category := range []string{export.LikesDir, export.FavoritesDir} {
		d.addCategoryDir(export.CategoryPath(root, category), false)
	}
	if err := d.addFollowingDir(false); err != nil {
		_ = watcher.Close()
		return nil, err
	}
	return d, nil
}

// WatchList returns the watched directories.
func (d *Discoverer) WatchList() []string {
	return d.watcher.WatchList()
}

// Run dispatches filesystem events until ctx is done or the watcher fails.
func (d *Discoverer) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-d.watcher.Events:
			if !ok {
				return errors.New("watcher event channel closed")
			}
			d.handle(event)
		case err, ok := <-d.watcher.Errors:
			if !ok {
				return errors.New("watcher error channel closed")
			}
			logging.Error().Err(err).Msg("Watcher error")
		}
	}
}

// Close releases the filesystem watches.
func (d *Discoverer) Close() error {
	return d.watcher.Close()
}

func (d *Discoverer) handle(event fsnotify.Event) {
	if !event.Has(fsnotify.Create) {
		return
	}
	path := event.Name
	name := filepath.Base(path)
	if strings.HasPrefix(name, ".") {
		metrics.RecordWatchEvent("ignored")
		return
	}

	info, err := os.Stat(path)
	if err != nil {
		return
	}

	if info.IsDir() {
		d.handleDir(path)
		return
	}

	if _, ok := export.VideoIDFromPath(path); !ok || filepath.Base(filepath.Dir(path)) != export.VideosDir {
		metrics.RecordWatchEvent("ignored")
		logging.Debug().Str("path", path).Msg("Ignoring non-video file")
		return
	}
	d.found(path)
}

// handleDir picks up category, videos and author directories created after
// startup and reports files that landed in them before the watch existed.
func (d *Discoverer) handleDir(path string) {
	parent := filepath.Dir(path)
	name := filepath.Base(path)
	switch {
	case parent == d.data && (name == export.LikesDir || name == export.FavoritesDir):
		d.addCategoryDir(path, true)
	case parent == d.data && name == export.FollowingDir:
		if err := d.addFollowingDir(true); err != nil {
			logging.Warn().Err(err).Msg("Failed to watch following directory")
		}
	case parent == d.following:
		d.addAuthorDir(path, true)
	case name == export.VideosDir && filepath.Dir(parent) == d.data:
		if filepath.Base(parent) != export.FollowingDir && d.addIfDir(path) {
			d.scanExisting(path)
		}
	case name == export.VideosDir && filepath.Dir(parent) == d.following:
		if filepath.Base(parent) != export.AvatarsDir && d.addIfDir(path) {
			d.scanExisting(path)
		}
	}
}

// addCategoryDir watches data/<category> for a later videos/ directory and
// data/<category>/videos itself.
func (d *Discoverer) addCategoryDir(dir string, scan bool) {
	if !d.addIfDir(dir) {
		return
	}
	videos := filepath.Join(dir, export.VideosDir)
	if d.addIfDir(videos) && scan {
		d.scanExisting(videos)
	}
}

// addFollowingDir watches data/Following and every author directory in it.
func (d *Discoverer) addFollowingDir(scan bool) error {
	if !d.addIfDir(d.following) {
		return nil
	}
	entries, err := os.ReadDir(d.following)
	if err != nil {
		return fmt.Errorf("list following directory: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			d.addAuthorDir(filepath.Join(d.following, entry.Name()), scan)
		}
	}
	return nil
}

// addAuthorDir watches Following/<author> for a later videos/ directory
// and Following/<author>/videos itself. With scan set, files already in
// videos/ are reported.
func (d *Discoverer) addAuthorDir(dir string, scan bool) {
	name := filepath.Base(dir)
	if name == export.AvatarsDir || strings.HasPrefix(name, ".") {
		return
	}
	d.addIfDir(dir)
	videos := filepath.Join(dir, export.VideosDir)
	if d.addIfDir(videos) && scan {
		d.scanExisting(videos)
	}
}

// scanExisting reports files that landed in a new directory before its
// watch was registered.
func (d *Discoverer) scanExisting(dir string) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}
	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())
		if entry.Type().IsRegular() {
			if _, ok := export.VideoIDFromPath(path); ok {
				d.found(path)
			}
		}
	}
}

func (d *Discoverer) addIfDir(dir string) bool {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return false
	}
	if err := d.watcher.Add(dir); err != nil {
		logging.Warn().Err(err).Str("dir", dir).Msg("Failed to watch directory")
		return false
	}
	logging.Debug().Str("dir", dir).Msg("Watching directory")
	return true
}
