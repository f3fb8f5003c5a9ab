package audio

import (
	"sync/atomic"
	"time"
)

// FrameQueue is the hand-off buffer between the capture callback and the
// recognition request feed. Single producer, single consumer. Push never
// blocks: when the queue is full the oldest frame is dropped, so a stalled
// consumer (or a paused session) costs audio, never capture timing.
type FrameQueue struct {
	frames  chan []byte
	dropped atomic.Uint64
}

// NewFrameQueue creates a queue holding at most capacity frames.
func NewFrameQueue(capacity int) *FrameQueue {
	if capacity <= 0 {
		capacity = 256
	}
	return &FrameQueue{
		frames: make(chan []byte, capacity),
	}
}

// Push hands one frame to the consumer. Ownership of the slice moves to the
// queue; callers must not reuse it.
func (q *FrameQueue) Push(frame []byte) {
	for {
		select {
		case q.frames <- frame:
			return
		default:
		}
		// Full: drop the oldest frame and retry.
		select {
		case <-q.frames:
			q.dropped.Add(1)
		default:
		}
	}
}

// Pop returns the next frame, or ok=false if none arrived within timeout.
// The timeout is a polling signal, not an error: callers use it to re-check
// cancellation and pause flags.
func (q *FrameQueue) Pop(timeout time.Duration) ([]byte, bool) {
	select {
	case frame := <-q.frames:
		return frame, true
	default:
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case frame := <-q.frames:
		return frame, true
	case <-timer.C:
		return nil, false
	}
}

// Drain discards all buffered frames and returns how many were thrown away.
// Called when a session resumes after a pause: audio captured while paused is
// dropped, not replayed.
func (q *FrameQueue) Drain() int {
	n := 0
	for {
		select {
		case <-q.frames:
			n++
		default:
			return n
		}
	}
}

// Len returns the number of buffered frames.
func (q *FrameQueue) Len() int {
	return len(q.frames)
}

// Dropped returns the total number of frames discarded because the queue was
// full.
func (q *FrameQueue) Dropped() uint64 {
	return q.dropped.Load()
}
