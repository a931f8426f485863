package schedule

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/facebookgo/clock"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// The heartbeat entry fires every minute; a beat older than two
// intervals means the scheduler stopped making progress.
const (
	heartbeatSchedule = "* * * * *"
	heartbeatStale    = 2 * time.Minute
)

// substrate wraps the cron scheduler that drives job firings. It
// carries its own heartbeat entry so a wedged scheduler is detectable
// from the outside and can be swapped for a fresh one without
// restarting the process.
type substrate struct {
	logger zerolog.Logger
	clk    clock.Clock

	mu       sync.Mutex
	cron     *cron.Cron
	register func(*cron.Cron) error
	lastBeat time.Time
	started  bool
}

func newSubstrate(logger zerolog.Logger, clk clock.Clock) *substrate {
	return &substrate{
		logger: logger.With().Str("component", "substrate").Logger(),
		clk:    clk,
	}
}

// Start builds a scheduler, registers the heartbeat plus the caller's
// entries, and begins scheduling. register is retained so Restart can
// rebuild the same entry set.
func (s *substrate) Start(register func(*cron.Cron) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.register = register
	return s.startLocked()
}

func (s *substrate) startLocked() error {
	c := cron.New()
	if _, err := c.AddFunc(heartbeatSchedule, s.beat); err != nil {
		return fmt.Errorf("register heartbeat: %w", err)
	}
	if err := s.register(c); err != nil {
		return err
	}
	c.Start()

	s.cron = c
	s.lastBeat = s.clk.Now() // fresh scheduler, full grace period
	s.started = true

	s.logger.Debug().Int("entries", len(c.Entries())).Msg("scheduler started")
	return nil
}

func (s *substrate) beat() {
	s.mu.Lock()
	s.lastBeat = s.clk.Now()
	s.mu.Unlock()
}

// Alive reports whether the scheduler produced a heartbeat recently
// enough to be trusted with future firings.
func (s *substrate) Alive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return false
	}
	return s.clk.Now().Sub(s.lastBeat) < heartbeatStale
}

// Restart replaces a stalled scheduler with a fresh one carrying the
// same entries. The old scheduler is stopped without waiting; whatever
// it still runs finishes on its own.
func (s *substrate) Restart() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cron != nil {
		s.cron.Stop()
	}
	return s.startLocked()
}

// Stop ends scheduling. The returned context completes once every
// entry callback still running inside the scheduler has returned.
func (s *substrate) Stop() context.Context {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.started = false
	if s.cron == nil {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		return ctx
	}
	return s.cron.Stop()
}

// next returns the next scheduled firing for an entry, zero when the
// scheduler is gone.
func (s *substrate) next(id cron.EntryID) time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cron == nil {
		return time.Time{}
	}
	return s.cron.Entry(id).Next
}
