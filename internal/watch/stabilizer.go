// Favefeed - Self-hosted Short Video Archive and Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/favefeed

package watch

import (
	"context"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/tomtom215/favefeed/internal/logging"
)

// Stabilizer holds newly created files until their size and modification
// time stop changing for a threshold, then emits them. Downloads are
// written in place, so a Create event alone does not mean the file is
// complete.
type Stabilizer struct {
	threshold time.Duration
	interval  time.Duration
	emit      func(path string)

	mu         sync.Mutex
	candidates map[string]*candidate
}

type candidate struct {
	size        int64
	modTime     time.Time
	stableSince time.Time
}

// NewStabilizer creates a stabilizer polling every interval.
func NewStabilizer(threshold, interval time.Duration, emit func(path string)) *Stabilizer {
	return &Stabilizer{
		threshold:  threshold,
		interval:   interval,
		emit:       emit,
		candidates: map[string]*candidate{},
	}
}

// Track starts watching path. Tracking an already tracked path restarts
// its quiet period.
func (s *Stabilizer) Track(path string, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.candidates[path] = &candidate{size: -1, stableSince: now}
}

// Tracked returns the number of files waiting to settle.
func (s *Stabilizer) Tracked() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.candidates)
}

// Run polls until ctx is done.
func (s *Stabilizer) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			s.poll(now)
		}
	}
}

// poll checks every candidate once. Files that vanished are dropped;
// files unchanged for the threshold are emitted in path order.
func (s *Stabilizer) poll(now time.Time) {
	var ready []string

	s.mu.Lock()
	for path, c := range s.candidates {
		info, err := os.Stat(path)
		if err != nil || !info.Mode().IsRegular() {
			logging.Debug().Str("path", path).Msg("Tracked file disappeared before settling")
			delete(s.candidates, path)
			continue
		}

		if info.Size() != c.size || !info.ModTime().Equal(c.modTime) {
			c.size = info.Size()
			c.modTime = info.ModTime()
			c.stableSince = now
			continue
		}

		if now.Sub(c.stableSince) >= s.threshold {
			ready = append(ready, path)
			delete(s.candidates, path)
		}
	}
	s.mu.Unlock()

	sort.Strings(ready)
	for _, path := range ready {
		s.emit(path)
	}
}
