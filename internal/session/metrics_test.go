package session

import (
	"strings"
	"testing"
)

func TestMetricsCounters(t *testing.T) {
	m := NewMetrics("google", "test-session", 16000)

	m.AddAudioBytes(16000 * 2) // one second of 16-bit mono
	m.AddTranscriptResult("let us", false)
	m.AddTranscriptResult("let us turn to Romans three", true)
	m.AddSegment()

	if got := m.SegmentCount(); got != 1 {
		t.Errorf("SegmentCount = %d, want 1", got)
	}

	summary := m.Summary()
	for _, want := range []string{
		"Provider: google",
		"Session: test-session",
		"Audio Streamed: 1.0 seconds",
		"Partial Results: 1",
		"Final Results: 1",
		"Segments: 1",
	} {
		if !strings.Contains(summary, want) {
			t.Errorf("summary missing %q:\n%s", want, summary)
		}
	}
}

func TestMetricsSummaryBeforeAnyResult(t *testing.T) {
	m := NewMetrics("vosk", "empty-session", 16000)
	summary := m.Summary()
	if !strings.Contains(summary, "First Result Latency: 0s") {
		t.Errorf("no-result session should report zero latency:\n%s", summary)
	}
}
