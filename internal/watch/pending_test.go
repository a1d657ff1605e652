// Favefeed - Self-hosted Short Video Archive and Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/favefeed

package watch

import (
	"path/filepath"
	"testing"
)

func TestPendingStores(t *testing.T) {
	stores := map[string]func(t *testing.T) PendingStore{
		"memory": func(t *testing.T) PendingStore {
			return NewMemoryPendingStore()
		},
		"badger": func(t *testing.T) PendingStore {
			s, err := OpenBadgerPendingStore(t.TempDir())
			if err != nil {
				t.Fatalf("OpenBadgerPendingStore() error = %v", err)
			}
			return s
		},
	}

	for name, open := range stores {
		t.Run(name, func(t *testing.T) {
			s := open(t)
			defer s.Close()

			mustPut(t, s, "v1", "/a/v1.mp4")
			mustPut(t, s, "v2", "/a/v2.mp4")
			mustPut(t, s, "v1", "/b/v1.mp4")

			batch, err := s.Load()
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if len(batch) != 2 || batch["v1"] != "/b/v1.mp4" {
				t.Fatalf("Load() = %v", batch)
			}

			// v2 was flushed from an older discovery and must stay.
			flushed := Batch{"v1": "/b/v1.mp4", "v2": "/old/v2.mp4", "missing": "/m.mp4"}
			if err := s.Delete(flushed); err != nil {
				t.Fatalf("Delete() error = %v", err)
			}
			if err := s.Delete(Batch{}); err != nil {
				t.Fatalf("Delete() with no entries error = %v", err)
			}

			batch, _ = s.Load()
			if len(batch) != 1 || batch["v2"] != "/a/v2.mp4" {
				t.Errorf("after delete Load() = %v", batch)
			}
		})
	}
}

func TestBadgerPendingStore_SurvivesReopen(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "pending")

	s, err := OpenBadgerPendingStore(dir)
	if err != nil {
		t.Fatalf("OpenBadgerPendingStore() error = %v", err)
	}
	mustPut(t, s, "v7", "/x/Likes/videos/v7.mp4")
	if err := s.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	s, err = OpenBadgerPendingStore(dir)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer s.Close()

	batch, err := s.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if batch["v7"] != "/x/Likes/videos/v7.mp4" {
		t.Errorf("Load() after reopen = %v", batch)
	}
}

func mustPut(t *testing.T, s PendingStore, id, path string) {
	t.Helper()
	if err := s.Put(id, path); err != nil {
		t.Fatalf("Put(%s) error = %v", id, err)
	}
}
