// Favefeed - Self-hosted Short Video Archive and Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/favefeed

package watch

import (
	"context"
	"sync"
	"time"

	"github.com/tomtom215/favefeed/internal/metrics"
)

// State is the debouncer's position in its cycle.
type State int

const (
	// StateIdle has no pending videos and no timer armed.
	StateIdle State = iota
	// StateAccumulating has a timer armed and buffers discoveries.
	StateAccumulating
	// StateFlushing is syncing a drained batch with nothing buffered yet.
	StateFlushing
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAccumulating:
		return "accumulating"
	case StateFlushing:
		return "flushing"
	default:
		return "unknown"
	}
}

// Batch maps video id to the last discovered file path.
type Batch map[string]string

// FlushFunc syncs one drained batch.
type FlushFunc func(batch Batch)

// Debouncer buffers discoveries until no new one has arrived for a full
// delay window, then hands the whole buffer to a FlushFunc.
type Debouncer struct {
	clock Clock
	delay time.Duration
	flush FlushFunc

	mu       sync.Mutex
	pending  Batch
	timer    Timer
	gen      uint64
	flushing int
	closed   bool
	inflight sync.WaitGroup
}

// NewDebouncer creates an idle debouncer.
func NewDebouncer(clock Clock, delay time.Duration, flush FlushFunc) *Debouncer {
	if clock == nil {
		clock = RealClock()
	}
	return &Debouncer{
		clock:   clock,
		delay:   delay,
		flush:   flush,
		pending: Batch{},
	}
}

// Add records a discovery and re-arms the timer for a full window.
// A later path for the same id replaces the earlier one. Returns false
// once the debouncer is closed.
func (d *Debouncer) Add(videoID, path string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return false
	}

	d.pending[videoID] = path
	metrics.SetPending(len(d.pending))

	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++
	gen := d.gen
	d.timer = d.clock.AfterFunc(d.delay, func() { d.fire(gen) })
	return true
}

// fire drains the buffer unless the timer that scheduled it was replaced.
func (d *Debouncer) fire(gen uint64) {
	d.mu.Lock()
	if d.closed || gen != d.gen {
		d.mu.Unlock()
		return
	}
	batch := d.drainLocked()
	d.mu.Unlock()

	d.run(batch)
}

// drainLocked swaps out the buffer and clears the timer. Callers hold mu.
func (d *Debouncer) drainLocked() Batch {
	batch := d.pending
	d.pending = Batch{}
	d.timer = nil
	metrics.SetPending(0)
	if len(batch) > 0 {
		d.flushing++
		d.inflight.Add(1)
	}
	return batch
}

func (d *Debouncer) run(batch Batch) {
	if len(batch) == 0 {
		return
	}
	defer func() {
		d.mu.Lock()
		d.flushing--
		d.mu.Unlock()
		d.inflight.Done()
	}()
	d.flush(batch)
}

// State reports the current state. When a flush is running and new
// discoveries have already armed the next window, Accumulating wins.
func (d *Debouncer) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()

	switch {
	case d.timer != nil:
		return StateAccumulating
	case d.flushing > 0:
		return StateFlushing
	default:
		return StateIdle
	}
}

// Pending returns the number of buffered videos.
func (d *Debouncer) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pending)
}

// Close stops accepting discoveries, flushes whatever is buffered and
// waits for in-flight flushes until ctx is done. A context error means
// a flush was still running when the wait gave up.
func (d *Debouncer) Close(ctx context.Context) error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	if d.timer != nil {
		d.timer.Stop()
	}
	batch := d.drainLocked()
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.run(batch)
		d.inflight.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
