// Favefeed - Self-hosted Short Video Archive and Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/favefeed

package watch

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
)

// PendingStore remembers discovered videos until a flush has handled them,
// so discoveries survive a restart.
type PendingStore interface {
	Put(videoID, path string) error
	// Delete forgets each flushed id whose stored path still equals the
	// flushed path. A path recorded by a rediscovery during the flush stays.
	Delete(flushed Batch) error
	Load() (Batch, error)
	Close() error
}

// MemoryPendingStore is a PendingStore that lives only as long as the
// process.
type MemoryPendingStore struct {
	mu      sync.Mutex
	entries Batch
}

// NewMemoryPendingStore creates an empty in-memory store.
func NewMemoryPendingStore() *MemoryPendingStore {
	return &MemoryPendingStore{entries: Batch{}}
}

// Put records a discovery.
func (s *MemoryPendingStore) Put(videoID, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[videoID] = path
	return nil
}

// Delete forgets flushed entries that were not rediscovered meanwhile.
func (s *MemoryPendingStore) Delete(flushed Batch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, path := range flushed {
		if current, ok := s.entries[id]; ok && current == path {
			delete(s.entries, id)
		}
	}
	return nil
}

// Load returns a copy of every entry.
func (s *MemoryPendingStore) Load() (Batch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(Batch, len(s.entries))
	for id, path := range s.entries {
		out[id] = path
	}
	return out, nil
}

// Close is a no-op.
func (s *MemoryPendingStore) Close() error {
	return nil
}

const pendingKeyPrefix = "pending:"

type pendingEntry struct {
	Path         string    `json:"path"`
	DiscoveredAt time.Time `json:"discovered_at"`
}

// BadgerPendingStore is a PendingStore persisted in a BadgerDB directory.
type BadgerPendingStore struct {
	db *badger.DB
}

// OpenBadgerPendingStore opens (or creates) the store in dir.
func OpenBadgerPendingStore(dir string) (*BadgerPendingStore, error) {
	opts := badger.DefaultOptions(dir).
		WithLogger(nil).
		WithNumVersionsToKeep(1)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open pending store %s: %w", dir, err)
	}
	return &BadgerPendingStore{db: db}, nil
}

// Put records a discovery, replacing any earlier path for the id.
func (s *BadgerPendingStore) Put(videoID, path string) error {
	data, err := json.Marshal(pendingEntry{Path: path, DiscoveredAt: time.Now().UTC()})
	if err != nil {
		return fmt.Errorf("marshal pending entry: %w", err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(pendingKeyPrefix+videoID), data)
	})
}

// deleteAttempts bounds retries when a concurrent Put conflicts with Delete.
const deleteAttempts = 3

// Delete forgets flushed entries that were not rediscovered meanwhile.
// Missing ids are ignored.
func (s *BadgerPendingStore) Delete(flushed Batch) error {
	if len(flushed) == 0 {
		return nil
	}
	var err error
	for range deleteAttempts {
		err = s.db.Update(func(txn *badger.Txn) error {
			return deleteFlushed(txn, flushed)
		})
		if !errors.Is(err, badger.ErrConflict) {
			return err
		}
	}
	return err
}

func deleteFlushed(txn *badger.Txn, flushed Batch) error {
	for id, path := range flushed {
		key := []byte(pendingKeyPrefix + id)
		item, err := txn.Get(key)
		if errors.Is(err, badger.ErrKeyNotFound) {
			continue
		}
		if err != nil {
			return fmt.Errorf("read pending %s: %w", id, err)
		}
		var entry pendingEntry
		if err := item.Value(func(val []byte) error {
			return json.Unmarshal(val, &entry)
		}); err != nil {
			return fmt.Errorf("decode pending %s: %w", id, err)
		}
		if entry.Path != path {
			continue
		}
		if err := txn.Delete(key); err != nil {
			return fmt.Errorf("delete pending %s: %w", id, err)
		}
	}
	return nil
}

// Load returns every persisted entry.
func (s *BadgerPendingStore) Load() (Batch, error) {
	out := Batch{}
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(pendingKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			id := string(item.Key()[len(prefix):])
			err := item.Value(func(val []byte) error {
				var entry pendingEntry
				if err := json.Unmarshal(val, &entry); err != nil {
					return fmt.Errorf("decode pending %s: %w", id, err)
				}
				out[id] = entry.Path
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("load pending store: %w", err)
	}
	return out, nil
}

// Close closes the underlying database.
func (s *BadgerPendingStore) Close() error {
	return s.db.Close()
}
