// Favefeed - Self-hosted Short Video Archive and Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/favefeed

package export

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/tomtom215/favefeed/internal/metrics"
)

// metadataFiles are the files whose size and mtime make up a fingerprint.
var metadataFiles = []string{
	VideosFile,
	AuthorsFile,
	TextsFile,
	LikesFile,
	BookmarkedFile,
	FollowingFile,
	FactsFile,
}

// CachedReader serves the last decoded Snapshot until a metadata file
// changes size or modification time. The watch loop syncs videos one at a
// time, and the export app rewrites its metadata far less often than it
// downloads videos.
type CachedReader struct {
	reader *Reader

	mu          sync.Mutex
	snap        *Snapshot
	fingerprint string
}

// NewCachedReader creates a caching reader for the bundle at root.
func NewCachedReader(root string) *CachedReader {
	return &CachedReader{reader: NewReader(root)}
}

// Read returns the cached snapshot when the metadata files are unchanged
// and decodes them otherwise. Errors are never cached.
func (c *CachedReader) Read(ctx context.Context) (*Snapshot, error) {
	fp, fpErr := c.currentFingerprint()

	c.mu.Lock()
	defer c.mu.Unlock()

	if fpErr == nil && c.snap != nil && fp == c.fingerprint {
		metrics.RecordSnapshotRead(true)
		return c.snap, nil
	}
	metrics.RecordSnapshotRead(false)

	snap, err := c.reader.Read(ctx)
	if err != nil {
		c.snap, c.fingerprint = nil, ""
		return nil, err
	}
	// A change during the read leaves an older fingerprint behind, so the
	// next call reads again.
	if fpErr == nil {
		c.snap, c.fingerprint = snap, fp
	}
	return snap, nil
}

// Invalidate drops the cached snapshot.
func (c *CachedReader) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snap, c.fingerprint = nil, ""
}

func (c *CachedReader) currentFingerprint() (string, error) {
	dir := AppDataPath(c.reader.Root())
	var b strings.Builder
	for _, name := range metadataFiles {
		info, err := os.Stat(filepath.Join(dir, name))
		if err != nil {
			return "", err
		}
		b.WriteString(name)
		b.WriteByte(':')
		b.WriteString(strconv.FormatInt(info.Size(), 10))
		b.WriteByte(':')
		b.WriteString(strconv.FormatInt(info.ModTime().UnixNano(), 10))
		b.WriteByte(';')
	}
	return b.String(), nil
}
