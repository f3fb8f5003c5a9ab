package session

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/openpulpit/sermoncast/internal/config"
	"github.com/openpulpit/sermoncast/internal/pipeline"
)

const logRule = "----------------------------------------"

// Log is the durable plain-text record of one session. Append-only, one
// file per session, flushed after every record so a crash loses at most the
// in-flight segment. Never reopened after Close.
type Log struct {
	mu      sync.Mutex
	file    *os.File
	path    string
	targets []config.Language
	closed  bool
}

// NewLog creates the session file under outputDir, named by the session
// start timestamp plus a short session id, and writes the header.
func NewLog(outputDir string, source config.Language, targets []config.Language, started time.Time) (*Log, error) {
	if outputDir == "" {
		outputDir = "."
	}
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create session directory: %w", err)
	}

	shortID := uuid.New().String()[:8]
	path := filepath.Join(outputDir, fmt.Sprintf("%s_sermon_%s.log", started.Format("20060102_150405"), shortID))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to create session log: %w", err)
	}

	l := &Log{file: f, path: path, targets: targets}

	names := make([]string, len(targets))
	for i, t := range targets {
		names[i] = fmt.Sprintf("%s (%s)", t.Name, t.Code)
	}
	header := fmt.Sprintf("Sermon Translation Session\nDate: %s\nSource: %s (%s)\nTargets: %s\n%s\n",
		started.Format("2006-01-02 15:04:05"),
		source.Name, source.Code,
		strings.Join(names, ", "),
		logRule)
	if err := l.write(header); err != nil {
		f.Close()
		return nil, err
	}
	return l, nil
}

// Path returns the session file location.
func (l *Log) Path() string {
	return l.path
}

// WriteSegment appends one segment block: timestamp, sequence number,
// source text and one line per target language, in configuration order.
func (l *Log) WriteSegment(seg pipeline.Segment) error {
	var b strings.Builder
	if seg.Confidence > 0 {
		fmt.Fprintf(&b, "\n[%s] Segment %d (confidence %.2f)\n", seg.Timestamp.Format("15:04:05"), seg.Seq, seg.Confidence)
	} else {
		fmt.Fprintf(&b, "\n[%s] Segment %d\n", seg.Timestamp.Format("15:04:05"), seg.Seq)
	}
	fmt.Fprintf(&b, "  %s: %s\n", seg.SourceCode, seg.Text)
	for _, t := range l.targets {
		fmt.Fprintf(&b, "  %s: %s\n", t.Name, seg.Translations[t.Name])
	}
	b.WriteString(logRule + "\n")
	return l.write(b.String())
}

// WriteTransition appends a pause or resume marker with the duration of the
// interval that just ended.
func (l *Log) WriteTransition(paused bool, at time.Time, elapsed time.Duration) error {
	label := "RESUMED"
	interval := "paused"
	if paused {
		label = "PAUSED"
		interval = "active"
	}
	return l.write(fmt.Sprintf("\n[%s] --- %s (%s for %s) ---\n",
		at.Format("15:04:05"), label, interval, elapsed.Round(time.Second)))
}

// Close writes the footer and terminates the file. Safe to call more than
// once; only the first call writes.
func (l *Log) Close(ended time.Time, stats pipeline.PauseStats, segments int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return nil
	}
	l.closed = true

	footer := fmt.Sprintf("\nSession ended: %s\nSegments: %d\nActive time: %s\nPause time: %s\nPauses: %d\n",
		ended.Format("2006-01-02 15:04:05"),
		segments,
		stats.Active.Round(time.Second),
		stats.Paused.Round(time.Second),
		stats.PauseCount)
	if _, err := l.file.WriteString(footer); err != nil {
		l.file.Close()
		return err
	}
	l.file.Sync()
	return l.file.Close()
}

func (l *Log) write(s string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return fmt.Errorf("session log already closed")
	}
	if _, err := l.file.WriteString(s); err != nil {
		return fmt.Errorf("failed to append to session log: %w", err)
	}
	return l.file.Sync()
}
