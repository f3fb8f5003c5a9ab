package pipeline

import (
	"context"
	"time"

	"github.com/openpulpit/sermoncast/internal/audio"
)

// feedPollInterval bounds how long Next waits on the queue before
// re-checking cancellation and pause flags.
const feedPollInterval = 100 * time.Millisecond

// RequestFeed adapts the frame queue into the lazy request sequence one
// recognition session consumes. A feed is single-use: once Next returns
// ok=false the sequence has terminated and the supervisor decides whether to
// open a fresh session with a fresh feed.
type RequestFeed struct {
	ctx     context.Context
	queue   *audio.FrameQueue
	pause   *PauseController
	timeout time.Duration
	done    bool
}

func NewRequestFeed(ctx context.Context, queue *audio.FrameQueue, pause *PauseController, timeout time.Duration) *RequestFeed {
	return &RequestFeed{ctx: ctx, queue: queue, pause: pause, timeout: timeout}
}

// Next returns the next audio frame. ok=false terminates the sequence, never
// raising: shutdown requested, pause engaged, or no frame arrived within the
// feed timeout. While paused no frame is consumed from the queue at all.
func (f *RequestFeed) Next() (frame []byte, ok bool) {
	if f.done {
		return nil, false
	}

	deadline := time.Now().Add(f.timeout)
	for {
		if f.ctx.Err() != nil || f.pause.IsPaused() {
			f.done = true
			return nil, false
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			f.done = true
			return nil, false
		}

		wait := feedPollInterval
		if wait > remaining {
			wait = remaining
		}
		if frame, ok := f.queue.Pop(wait); ok {
			return frame, true
		}
	}
}
