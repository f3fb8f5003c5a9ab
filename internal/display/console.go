package display

import (
	"fmt"
	"io"
	"strings"
	"sync"
)

// Console renders the live view in the terminal: interim results overwrite
// a single live-typing line, finalized segments print as a block.
type Console struct {
	mu         sync.Mutex
	out        io.Writer
	interimLen int
}

func NewConsole(out io.Writer) *Console {
	return &Console{out: out}
}

func (c *Console) ShowInterim(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	line := "... " + text
	// Pad with spaces so a shorter update fully erases the previous one.
	pad := ""
	if n := c.interimLen - len(line); n > 0 {
		pad = strings.Repeat(" ", n)
	}
	fmt.Fprintf(c.out, "\r%s%s", line, pad)
	c.interimLen = len(line)
}

func (c *Console) ShowSegment(source, primary, secondary string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.clearInterim()
	fmt.Fprintf(c.out, "> %s\n", source)
	if primary != "" {
		fmt.Fprintf(c.out, "  %s\n", primary)
	}
	if secondary != "" {
		fmt.Fprintf(c.out, "  %s\n", secondary)
	}
}

func (c *Console) SetPaused(paused bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.clearInterim()
	if paused {
		fmt.Fprintln(c.out, "[ PAUSED ]")
	} else {
		fmt.Fprintln(c.out, "[ LIVE ]")
	}
}

func (c *Console) clearInterim() {
	if c.interimLen > 0 {
		fmt.Fprintf(c.out, "\r%s\r", strings.Repeat(" ", c.interimLen))
		c.interimLen = 0
	}
}
