// Package progress renders a progress bar for a fixed number of query
// executions.
package progress

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"golang.org/x/term"
)

// defaultBarWidth is used when the writer is not a terminal or its
// width cannot be determined.
const defaultBarWidth = 40

// Bar is an incremental progress bar over a known total. Rendering
// happens only when Step or Finish is called, never from a background
// goroutine, so it cannot overlap a timed measurement.
type Bar struct {
	mu       sync.Mutex
	writer   io.Writer
	total    int
	done     int
	width    int
	tty      bool
	finished bool
}

// NewBar creates a progress bar for total steps writing to w. When w is
// a terminal the bar redraws in place; otherwise only a final summary
// line is printed on Finish.
func NewBar(w io.Writer, total int) *Bar {
	b := &Bar{
		writer: w,
		total:  total,
		width:  defaultBarWidth,
	}

	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		b.tty = true
		if cols, _, err := term.GetSize(int(f.Fd())); err == nil {
			// Leave room for the "] done/total" suffix
			if avail := cols - len(fmt.Sprintf("[] %d/%d", total, total)); avail > 0 && avail < b.width {
				b.width = avail
			}
		}
	}

	return b
}

// Step records one completed execution and redraws the bar on
// terminals. Non-terminal writers stay silent until Finish.
func (b *Bar) Step(done, total int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.done = done
	if b.tty {
		fmt.Fprintf(b.writer, "\r%s", b.render())
	}
}

// Finish completes the bar line. It is safe to call after a partial
// run; the bar then shows how far the run got.
func (b *Bar) Finish() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.finished {
		return
	}
	b.finished = true

	if b.tty {
		fmt.Fprintf(b.writer, "\r%s\n", b.render())
		return
	}
	fmt.Fprintf(b.writer, "%s\n", b.render())
}

// render produces the bar line, e.g. "[=====>    ] 12/50".
func (b *Bar) render() string {
	filled := 0
	if b.total > 0 {
		filled = b.width * b.done / b.total
	}
	if filled > b.width {
		filled = b.width
	}

	var bar strings.Builder
	bar.WriteByte('[')
	switch {
	case filled == b.width:
		bar.WriteString(strings.Repeat("=", filled))
	case filled > 0:
		bar.WriteString(strings.Repeat("=", filled-1))
		bar.WriteByte('>')
	}
	bar.WriteString(strings.Repeat(" ", b.width-filled))
	bar.WriteByte(']')

	return fmt.Sprintf("%s %d/%d", bar.String(), b.done, b.total)
}
