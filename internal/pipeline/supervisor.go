package pipeline

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/openpulpit/sermoncast/internal/audio"
	"github.com/openpulpit/sermoncast/internal/recognizer"
)

// SupervisorConfig wires one recognition supervisor.
type SupervisorConfig struct {
	Queue      *audio.FrameQueue
	Pause      *PauseController
	Recognizer recognizer.Recognizer
	Router     *TranscriptRouter
	Metrics    Metrics

	// FeedTimeout is how long a session tolerates silence on the queue
	// before closing cleanly.
	FeedTimeout time.Duration

	// PausedPoll is the idle sleep while the session is paused and no
	// streams are open.
	PausedPoll time.Duration

	// RestartBackoff is the delay before reopening after the provider
	// expires a stream.
	RestartBackoff time.Duration
}

// Supervisor owns the recognition stream lifecycle: it opens sessions
// against the provider, pumps audio through them, and reopens fresh
// sessions whenever one ends. Cloud streams have a hard duration ceiling,
// so ordinary operation is a chain of sessions, not one long stream.
type Supervisor struct {
	cfg SupervisorConfig
}

func NewSupervisor(cfg SupervisorConfig) *Supervisor {
	if cfg.FeedTimeout <= 0 {
		cfg.FeedTimeout = 60 * time.Second
	}
	if cfg.PausedPoll <= 0 {
		cfg.PausedPoll = 250 * time.Millisecond
	}
	if cfg.RestartBackoff <= 0 {
		cfg.RestartBackoff = time.Second
	}
	return &Supervisor{cfg: cfg}
}

// Run drives the session chain until ctx is cancelled or a fatal provider
// error occurs. While paused no stream is open at all; audio that arrives
// during a pause is discarded before the next session starts.
func (s *Supervisor) Run(ctx context.Context) error {
	wasPaused := true
	for {
		if ctx.Err() != nil {
			return nil
		}
		if s.cfg.Pause.IsPaused() {
			wasPaused = true
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(s.cfg.PausedPoll):
			}
			continue
		}
		if wasPaused {
			if n := s.cfg.Queue.Drain(); n > 0 {
				log.Printf("Discarded %d stale frames accumulated during pause", n)
			}
			wasPaused = false
		}

		err := s.runSession(ctx)
		if ctx.Err() != nil {
			// Shutdown mid-session is not a failure.
			return nil
		}
		switch {
		case err == nil:
			// Clean close from pause, timeout or shutdown. Loop
			// re-evaluates state.
		case recognizer.IsExpired(err):
			log.Printf("Recognition stream expired, reopening: %v", err)
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(s.cfg.RestartBackoff):
			}
		case recognizer.IsAuthError(err):
			return fmt.Errorf("recognizer authentication failed: %w", err)
		default:
			return fmt.Errorf("recognition stream failed: %w", err)
		}
	}
}

// runSession opens one stream and runs it to completion. A nil return means
// the session ended for a local reason and the chain may continue. The pump
// is fully stopped before returning so a stale feed can never steal frames
// from the next session.
func (s *Supervisor) runSession(ctx context.Context) error {
	stream, err := s.cfg.Recognizer.OpenStream(ctx)
	if err != nil {
		return err
	}

	sessionCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	pumpDone := make(chan struct{})
	go func() {
		defer close(pumpDone)
		s.pump(sessionCtx, stream)
	}()

	for res := range stream.Results() {
		s.cfg.Router.Handle(ctx, res)
	}
	cancel()
	<-pumpDone
	return stream.Err()
}

// pump feeds audio frames into the stream until the feed terminates, then
// half-closes so the provider flushes its remaining results.
func (s *Supervisor) pump(ctx context.Context, stream recognizer.Stream) {
	feed := NewRequestFeed(ctx, s.cfg.Queue, s.cfg.Pause, s.cfg.FeedTimeout)
	for {
		frame, ok := feed.Next()
		if !ok {
			break
		}
		if err := stream.Send(frame); err != nil {
			break
		}
		if s.cfg.Metrics != nil {
			s.cfg.Metrics.AddAudioBytes(len(frame))
		}
	}
	if err := stream.CloseSend(); err != nil {
		log.Printf("Failed to close send side of recognition stream: %v", err)
	}
}
