package storage

import (
	"log/slog"
	"sync"
	"time"
)

// Saver coalesces bursts of edits into one persistence flush: every Mark
// cancels the pending flush and schedules a fresh one after the quiet
// period. Last writer wins; a crash inside the window loses the latest
// unflushed edits. That durability/latency trade-off is accepted: the flush
// itself is a single all-or-nothing snapshot save, so the persisted state is
// always some recent consistent state, never a torn one.
type Saver struct {
	quiet time.Duration
	flush func()
	log   *slog.Logger

	mu    sync.Mutex
	timer *time.Timer
	dirty bool
}

// NewSaver creates a Saver that runs flush after each quiet period with no
// further edits.
func NewSaver(quiet time.Duration, flush func(), log *slog.Logger) *Saver {
	return &Saver{quiet: quiet, flush: flush, log: log}
}

// Mark records that in-memory state changed and (re)schedules the flush.
func (s *Saver) Mark() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dirty = true
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.quiet, s.fire)
}

func (s *Saver) fire() {
	s.mu.Lock()
	if !s.dirty {
		s.mu.Unlock()
		return
	}
	s.dirty = false
	s.mu.Unlock()

	s.flush()
}

// Close cancels any pending timer and flushes synchronously if edits are
// outstanding. Called on shutdown so a clean exit never loses edits.
func (s *Saver) Close() {
	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	pending := s.dirty
	s.dirty = false
	s.mu.Unlock()

	if pending {
		s.log.Info("flushing pending edits on shutdown")
		s.flush()
	}
}
