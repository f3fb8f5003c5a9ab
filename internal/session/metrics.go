package session

import (
	"fmt"
	"sync"
	"time"
)

// Metrics accumulates per-session counters for the end-of-session summary.
type Metrics struct {
	mu               sync.Mutex
	provider         string
	sessionID        string
	sampleRate       int
	startTime        time.Time
	audioBytes       int
	transcriptLength int
	partialCount     int
	finalCount       int
	segmentCount     int
	firstResultTime  *time.Time
}

func NewMetrics(provider, sessionID string, sampleRate int) *Metrics {
	return &Metrics{
		provider:   provider,
		sessionID:  sessionID,
		sampleRate: sampleRate,
		startTime:  time.Now(),
	}
}

func (m *Metrics) AddAudioBytes(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.audioBytes += n
}

func (m *Metrics) AddTranscriptResult(text string, isFinal bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.firstResultTime == nil {
		now := time.Now()
		m.firstResultTime = &now
	}

	m.transcriptLength += len(text)
	if isFinal {
		m.finalCount++
	} else {
		m.partialCount++
	}
}

func (m *Metrics) AddSegment() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.segmentCount++
}

func (m *Metrics) SegmentCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.segmentCount
}

// Summary renders the counters for the console and the session log footer.
func (m *Metrics) Summary() string {
	m.mu.Lock()
	defer m.mu.Unlock()

	var latency time.Duration
	if m.firstResultTime != nil {
		latency = m.firstResultTime.Sub(m.startTime)
	}

	// 16-bit mono samples.
	audioSeconds := float64(m.audioBytes) / float64(m.sampleRate*2)

	return fmt.Sprintf(
		"Provider: %s\n"+
			"Session: %s\n"+
			"Audio Streamed: %.1f seconds (%d bytes)\n"+
			"Transcript Length: %d chars\n"+
			"First Result Latency: %v\n"+
			"Partial Results: %d\n"+
			"Final Results: %d\n"+
			"Segments: %d",
		m.provider,
		m.sessionID,
		audioSeconds, m.audioBytes,
		m.transcriptLength,
		latency.Round(time.Millisecond),
		m.partialCount,
		m.finalCount,
		m.segmentCount,
	)
}
