package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/openpulpit/sermoncast/internal/audio"
)

func activeController() *PauseController {
	c := NewPauseController()
	c.Resume()
	return c
}

func TestRequestFeedDeliversQueuedFrames(t *testing.T) {
	queue := audio.NewFrameQueue(8)
	queue.Push([]byte{1})
	queue.Push([]byte{2})

	feed := NewRequestFeed(context.Background(), queue, activeController(), time.Second)
	for _, want := range []byte{1, 2} {
		frame, ok := feed.Next()
		if !ok {
			t.Fatal("feed terminated with frames still queued")
		}
		if frame[0] != want {
			t.Errorf("frame = %d, want %d", frame[0], want)
		}
	}
}

func TestRequestFeedTerminatesOnTimeout(t *testing.T) {
	queue := audio.NewFrameQueue(8)
	feed := NewRequestFeed(context.Background(), queue, activeController(), 50*time.Millisecond)

	start := time.Now()
	if _, ok := feed.Next(); ok {
		t.Fatal("feed should terminate when no frame arrives in time")
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("timeout took %v, far past the 50ms deadline", elapsed)
	}

	// Terminated feeds stay terminated even if audio arrives later.
	queue.Push([]byte{1})
	if _, ok := feed.Next(); ok {
		t.Error("terminated feed delivered a frame")
	}
}

func TestRequestFeedTerminatesOnCancel(t *testing.T) {
	queue := audio.NewFrameQueue(8)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	feed := NewRequestFeed(ctx, queue, activeController(), time.Minute)
	if _, ok := feed.Next(); ok {
		t.Fatal("feed should terminate immediately on a cancelled context")
	}
}

func TestRequestFeedTerminatesOnPause(t *testing.T) {
	queue := audio.NewFrameQueue(8)
	pause := activeController()
	queue.Push([]byte{1})

	feed := NewRequestFeed(context.Background(), queue, pause, time.Minute)
	if _, ok := feed.Next(); !ok {
		t.Fatal("active feed should deliver the queued frame")
	}

	pause.Pause()
	queue.Push([]byte{2})
	if _, ok := feed.Next(); ok {
		t.Error("paused feed should terminate instead of consuming audio")
	}
	if queue.Len() != 1 {
		t.Errorf("paused feed consumed from the queue, len = %d", queue.Len())
	}
}
