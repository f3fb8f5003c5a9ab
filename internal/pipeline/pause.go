package pipeline

import (
	"log"
	"sync"
	"time"
)

// PauseStats is a snapshot of the session's time accounting.
type PauseStats struct {
	Active     time.Duration
	Paused     time.Duration
	PauseCount int
}

// PauseController is the shared ACTIVE/PAUSED state machine. A session
// starts PAUSED and must be explicitly resumed before any audio is fed to
// the recognizer. Safe for concurrent use: the capture side reads the state
// every loop iteration while UI handlers drive transitions.
type PauseController struct {
	mu              sync.Mutex
	paused          bool
	stopped         bool
	pauseStartedAt  time.Time
	activeStartedAt time.Time
	totalActive     time.Duration
	totalPaused     time.Duration
	pauseCount      int
	listeners       []func(paused bool)

	now func() time.Time
}

func NewPauseController() *PauseController {
	c := &PauseController{paused: true, now: time.Now}
	c.pauseStartedAt = c.now()
	return c
}

// OnTransition registers a callback invoked after every state change
// (display indicator, session log markers). Not invoked for no-op calls.
func (c *PauseController) OnTransition(fn func(paused bool)) {
	c.mu.Lock()
	c.listeners = append(c.listeners, fn)
	c.mu.Unlock()
}

// IsPaused returns the current state. Stopped sessions report paused.
func (c *PauseController) IsPaused() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.paused || c.stopped
}

// Pause transitions ACTIVE -> PAUSED. A no-op when already paused or
// stopped; repeated calls never inflate the pause count.
func (c *PauseController) Pause() bool {
	c.mu.Lock()
	if c.paused || c.stopped {
		c.mu.Unlock()
		return false
	}
	now := c.now()
	c.totalActive += now.Sub(c.activeStartedAt)
	c.activeStartedAt = time.Time{}
	c.pauseStartedAt = now
	c.paused = true
	c.pauseCount++
	listeners := append([]func(bool){}, c.listeners...)
	c.mu.Unlock()

	log.Printf("Session paused")
	for _, fn := range listeners {
		fn(true)
	}
	return true
}

// Resume transitions PAUSED -> ACTIVE. A no-op when already active or
// stopped.
func (c *PauseController) Resume() bool {
	c.mu.Lock()
	if !c.paused || c.stopped {
		c.mu.Unlock()
		return false
	}
	now := c.now()
	c.totalPaused += now.Sub(c.pauseStartedAt)
	c.pauseStartedAt = time.Time{}
	c.activeStartedAt = now
	c.paused = false
	listeners := append([]func(bool){}, c.listeners...)
	c.mu.Unlock()

	log.Printf("Session resumed")
	for _, fn := range listeners {
		fn(false)
	}
	return true
}

// Stop folds the open interval into its accumulator and freezes the state.
// Returns the final accounting. Idempotent.
func (c *PauseController) Stop() PauseStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.stopped {
		now := c.now()
		if c.paused {
			c.totalPaused += now.Sub(c.pauseStartedAt)
			c.pauseStartedAt = time.Time{}
		} else {
			c.totalActive += now.Sub(c.activeStartedAt)
			c.activeStartedAt = time.Time{}
		}
		c.stopped = true
	}
	return PauseStats{Active: c.totalActive, Paused: c.totalPaused, PauseCount: c.pauseCount}
}

// Stats returns a live snapshot including the currently open interval.
func (c *PauseController) Stats() PauseStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	stats := PauseStats{Active: c.totalActive, Paused: c.totalPaused, PauseCount: c.pauseCount}
	if !c.stopped {
		now := c.now()
		if c.paused {
			stats.Paused += now.Sub(c.pauseStartedAt)
		} else {
			stats.Active += now.Sub(c.activeStartedAt)
		}
	}
	return stats
}
