package pipeline

import (
	"context"
	"time"
)

// Segment is one finalized transcript with its full translation set: the
// atomic unit written to the log and shown on the display. Immutable once
// built.
type Segment struct {
	Seq          int               `json:"seq"`
	SourceCode   string            `json:"source"`
	Text         string            `json:"text"`
	Confidence   float64           `json:"confidence,omitempty"`
	Timestamp    time.Time         `json:"ts"`
	Translations map[string]string `json:"translations"`
}

// Display receives rendered text for the live audience window.
type Display interface {
	// ShowSegment replaces the visible lines: the source transcript plus
	// the two display-language translations.
	ShowSegment(source, primary, secondary string)

	// ShowInterim updates the ephemeral live-typing indicator. Not
	// persisted anywhere.
	ShowInterim(text string)

	// SetPaused toggles the paused status affordance.
	SetPaused(paused bool)
}

// SegmentWriter persists finalized segments durably.
type SegmentWriter interface {
	WriteSegment(seg Segment) error
}

// Publisher fans finalized segments out to remote subscribers.
type Publisher interface {
	PublishSegment(ctx context.Context, seg Segment) error
}

// Metrics counts pipeline activity for the end-of-session summary.
type Metrics interface {
	AddAudioBytes(n int)
	AddTranscriptResult(text string, isFinal bool)
	AddSegment()
}
