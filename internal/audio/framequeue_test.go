package audio

import (
	"fmt"
	"testing"
	"time"
)

func TestFrameQueueFIFO(t *testing.T) {
	q := NewFrameQueue(16)

	for i := 0; i < 10; i++ {
		q.Push([]byte{byte(i)})
	}

	for i := 0; i < 10; i++ {
		frame, ok := q.Pop(time.Second)
		if !ok {
			t.Fatalf("Pop %d returned no frame", i)
		}
		if frame[0] != byte(i) {
			t.Errorf("Expected frame %d, got %d", i, frame[0])
		}
	}
}

func TestFrameQueuePopTimeout(t *testing.T) {
	q := NewFrameQueue(4)

	start := time.Now()
	frame, ok := q.Pop(20 * time.Millisecond)
	if ok {
		t.Fatalf("Expected timeout, got frame %v", frame)
	}
	if elapsed := time.Since(start); elapsed < 20*time.Millisecond {
		t.Errorf("Pop returned before timeout: %v", elapsed)
	}
}

func TestFrameQueueDropOldest(t *testing.T) {
	q := NewFrameQueue(4)

	for i := 0; i < 8; i++ {
		q.Push([]byte{byte(i)})
	}

	if q.Dropped() != 4 {
		t.Errorf("Expected 4 dropped frames, got %d", q.Dropped())
	}

	// The survivors must be the newest four, still in order.
	for i := 4; i < 8; i++ {
		frame, ok := q.Pop(time.Second)
		if !ok {
			t.Fatal("Queue should still hold frames")
		}
		if frame[0] != byte(i) {
			t.Errorf("Expected frame %d, got %d", i, frame[0])
		}
	}
}

func TestFrameQueueDrain(t *testing.T) {
	q := NewFrameQueue(16)

	for i := 0; i < 5; i++ {
		q.Push([]byte{byte(i)})
	}

	if n := q.Drain(); n != 5 {
		t.Errorf("Expected 5 drained frames, got %d", n)
	}
	if q.Len() != 0 {
		t.Errorf("Expected empty queue after drain, got %d", q.Len())
	}
	if _, ok := q.Pop(10 * time.Millisecond); ok {
		t.Error("Expected no frame after drain")
	}
}

func TestFrameQueueDeliversExactlyOnce(t *testing.T) {
	q := NewFrameQueue(128)

	go func() {
		for i := 0; i < 100; i++ {
			q.Push([]byte(fmt.Sprintf("%03d", i)))
		}
	}()

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		frame, ok := q.Pop(time.Second)
		if !ok {
			t.Fatalf("Missing frame after %d deliveries", i)
		}
		key := string(frame)
		if seen[key] {
			t.Fatalf("Frame %s delivered twice", key)
		}
		seen[key] = true
	}
}
