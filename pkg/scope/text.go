package scope

import (
	"io"
	"strconv"
	"strings"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/itohio/stripscope/pkg/waveform"
)

const (
	// DotOn and DotOff are the characters a Text display prints per pixel.
	DotOn  = '#'
	DotOff = '.'

	clearScreen = "\x1B[2J\x1B[H"
)

// Text is a waveform display drawing the bitmap as characters on an ANSI
// terminal, one character per pixel.
type Text struct {
	mu  sync.Mutex
	w   io.Writer
	top int
	log *log.Entry

	failed bool
}

var _ waveform.Display = (*Text)(nil)

// NewText creates a text display writing to w. Page 0 is drawn top lines
// below the first terminal line.
func NewText(w io.Writer, top int) *Text {
	return &Text{
		w:   w,
		top: top,
		log: log.WithField("Module", "scope"),
	}
}

// Clear clears the terminal.
func (t *Text) Clear() {
	t.write(clearScreen)
}

// Draw positions the cursor at every pixel row of the blit region and prints
// the row.
func (t *Text) Draw(image []byte, x, y, width, rows int) {
	t.write(FormatText(image, t.top, x, y, width, rows))
}

// FormatText renders a blit as cursor positioning sequences and dot rows.
// Page y starts at terminal line top+y*PageHeight+1 and column x at terminal
// column x+1.
func FormatText(image []byte, top, x, y, width, rows int) string {
	lines := make([][]byte, rows*PageHeight)
	for i := range lines {
		lines[i] = []byte(strings.Repeat(string(DotOff), width))
	}
	for _, p := range Pixels(image, width, rows) {
		lines[p.Y][p.X] = DotOn
	}

	var sb strings.Builder
	for i, line := range lines {
		sb.WriteString("\x1B[")
		sb.WriteString(strconv.Itoa(top + y*PageHeight + i + 1))
		sb.WriteByte(';')
		sb.WriteString(strconv.Itoa(x + 1))
		sb.WriteByte('H')
		sb.Write(line)
	}
	return sb.String()
}

func (t *Text) write(s string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, err := io.WriteString(t.w, s); err != nil {
		// Log once, the display keeps trying.
		if !t.failed {
			t.log.WithFields(log.Fields{
				"Method": "write",
				"Action": "Draw",
			}).WithError(err).Warn("Text display write failed")
		}
		t.failed = true
		return
	}
	t.failed = false
}
