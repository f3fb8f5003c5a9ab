package audio

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

// startTestMic wires a MicSource to a fake hardware read without touching
// any real device.
func startTestMic(read func() error, queue *FrameQueue) *MicSource {
	m := NewMicSource(Format{SampleRate: 16000, FrameSamples: 4, Channels: 1}, "", queue)
	m.read = read
	m.running = true
	m.done = make(chan struct{})
	m.loop.Add(1)
	go m.captureLoop(m.done)
	return m
}

func TestMicSourceStopWaitsForCaptureLoop(t *testing.T) {
	queue := NewFrameQueue(64)
	var reads atomic.Int64
	m := startTestMic(func() error {
		reads.Add(1)
		time.Sleep(time.Millisecond) // device pacing
		return nil
	}, queue)

	// Let the loop run a few buffers, then stop.
	for reads.Load() < 3 {
		time.Sleep(time.Millisecond)
	}
	if err := m.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}

	// Once Stop has returned the loop is gone: the read count and queue
	// length must not move again.
	readsAtStop := reads.Load()
	lenAtStop := queue.Len()
	time.Sleep(20 * time.Millisecond)
	if got := reads.Load(); got != readsAtStop {
		t.Errorf("capture loop still reading after Stop: %d -> %d", readsAtStop, got)
	}
	if got := queue.Len(); got != lenAtStop {
		t.Errorf("capture loop still pushing after Stop: %d -> %d frames", lenAtStop, got)
	}
}

func TestMicSourceStopDuringReadErrors(t *testing.T) {
	queue := NewFrameQueue(64)
	m := startTestMic(func() error {
		time.Sleep(time.Millisecond)
		return errors.New("input overflowed")
	}, queue)

	done := make(chan struct{})
	go func() {
		m.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop hung while the capture loop was erroring")
	}
}

func TestMicSourceStopIsIdempotent(t *testing.T) {
	queue := NewFrameQueue(64)
	m := startTestMic(func() error {
		time.Sleep(time.Millisecond)
		return nil
	}, queue)

	if err := m.Stop(); err != nil {
		t.Fatalf("first Stop: %v", err)
	}
	if err := m.Stop(); err != nil {
		t.Errorf("second Stop should be a no-op, got %v", err)
	}
	if err := NewMicSource(Format{}, "", queue).Stop(); err != nil {
		t.Errorf("Stop before Start should be a no-op, got %v", err)
	}
}
