package display

import (
	"bytes"
	"strings"
	"testing"
)

func TestConsoleShowSegment(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf)

	c.ShowSegment("Let us pray", "Oremos", "Prions")

	out := buf.String()
	for _, want := range []string{"> Let us pray", "  Oremos", "  Prions"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%q", want, out)
		}
	}
}

func TestConsoleInterimOverwritesPreviousLine(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf)

	c.ShowInterim("a much longer interim transcript line")
	c.ShowInterim("short")

	out := buf.String()
	if strings.Count(out, "\r") < 2 {
		t.Errorf("interim updates should rewrite in place:\n%q", out)
	}
	// The second, shorter update must pad over the first one's tail.
	last := out[strings.LastIndex(out, "\r")+1:]
	if len(last) < len("... a much longer interim transcript line") {
		t.Errorf("shorter interim did not erase the previous line:\n%q", out)
	}
}

func TestConsoleSegmentClearsInterim(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf)

	c.ShowInterim("typing")
	buf.Reset()
	c.ShowSegment("final text", "texto final", "")

	out := buf.String()
	if !strings.HasPrefix(out, "\r") {
		t.Errorf("segment should first erase the interim line:\n%q", out)
	}
}

func TestConsolePausedBanner(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf)

	c.SetPaused(true)
	c.SetPaused(false)

	out := buf.String()
	if !strings.Contains(out, "[ PAUSED ]") || !strings.Contains(out, "[ LIVE ]") {
		t.Errorf("missing pause banners:\n%q", out)
	}
}
