// Favefeed - Self-hosted Short Video Archive and Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/favefeed

package ingest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/tomtom215/favefeed/internal/database"
	"github.com/tomtom215/favefeed/internal/models"
)

// memStore is an in-memory Store for unit tests.
type memStore struct {
	mu       sync.Mutex
	authors  map[string]models.Author
	videos   map[string]models.Video
	logs     []*models.SyncLog
	finished int

	// failVideoWrites, when set, is returned by CreateVideo and UpdateVideo.
	failVideoWrites error
}

func newMemStore() *memStore {
	return &memStore{
		authors: map[string]models.Author{},
		videos:  map[string]models.Video{},
	}
}

func (s *memStore) GetAuthor(_ context.Context, id string) (*models.Author, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.authors[id]
	if !ok {
		return nil, fmt.Errorf("author %s: %w", id, database.ErrNotFound)
	}
	return &a, nil
}

func (s *memStore) CreateAuthor(_ context.Context, author *models.Author) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.authors[author.ID]; ok {
		return fmt.Errorf("author %s: %w", author.ID, database.ErrAlreadyExists)
	}
	author.CreatedAt = time.Now()
	s.authors[author.ID] = *author
	return nil
}

func (s *memStore) UpdateAuthor(_ context.Context, author *models.Author) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.authors[author.ID]; !ok {
		return fmt.Errorf("author %s: %w", author.ID, database.ErrNotFound)
	}
	s.authors[author.ID] = *author
	return nil
}

func (s *memStore) GetVideo(_ context.Context, id string) (*models.Video, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.videos[id]
	if !ok {
		return nil, fmt.Errorf("video %s: %w", id, database.ErrNotFound)
	}
	return &v, nil
}

func (s *memStore) CreateVideo(_ context.Context, video *models.Video) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failVideoWrites != nil {
		return s.failVideoWrites
	}
	if _, ok := s.videos[video.ID]; ok {
		return fmt.Errorf("video %s: %w", video.ID, database.ErrAlreadyExists)
	}
	s.videos[video.ID] = *video
	return nil
}

func (s *memStore) UpdateVideo(_ context.Context, video *models.Video) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failVideoWrites != nil {
		return s.failVideoWrites
	}
	existing, ok := s.videos[video.ID]
	if !ok {
		return fmt.Errorf("video %s: %w", video.ID, database.ErrNotFound)
	}
	updated := *video
	updated.IsHidden = existing.IsHidden
	s.videos[video.ID] = updated
	return nil
}

func (s *memStore) CreateSyncLog(_ context.Context, syncType models.SyncType) (*models.SyncLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	log := &models.SyncLog{
		ID:        int64(len(s.logs) + 1),
		Type:      syncType,
		Status:    models.SyncStatusStarted,
		StartedAt: time.Now(),
	}
	stored := *log
	s.logs = append(s.logs, &stored)
	return log, nil
}

func (s *memStore) FinishSyncLog(_ context.Context, log *models.SyncLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if log.ID < 1 || int(log.ID) > len(s.logs) {
		return fmt.Errorf("sync log %d: %w", log.ID, database.ErrNotFound)
	}
	stored := s.logs[log.ID-1]
	if stored.Finished() {
		return fmt.Errorf("sync log %d: %w", log.ID, database.ErrSyncLogFinished)
	}
	now := time.Now()
	*stored = *log
	stored.CompletedAt = &now
	s.finished++
	return nil
}

func (s *memStore) lastLog() models.SyncLog {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.logs[len(s.logs)-1]
}

func (s *memStore) video(id string) (models.Video, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.videos[id]
	return v, ok
}

func (s *memStore) author(id string) (models.Author, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.authors[id]
	return a, ok
}
