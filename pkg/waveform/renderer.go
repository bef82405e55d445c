package waveform

import (
	"github.com/itohio/stripscope/pkg/config"
	"github.com/itohio/stripscope/pkg/rtos"
)

// Display is the collaborator that physically shows the bitmap.
type Display interface {
	// Clear blanks the screen.
	Clear()
	// Draw blits a page-layout bitmap of width columns and rows 8 pixel pages
	// at column x, page y. The image must not be retained after Draw returns.
	Draw(image []byte, x, y, width, rows int)
}

// Renderer is the waveform task. The buffer is owned by the task goroutine.
type Renderer struct {
	buf     *Buffer
	in      *rtos.Queue[int]
	display Display
	x, y    int
}

// New creates a renderer reading filtered values from in.
func New(cfg config.DisplayConfig, in *rtos.Queue[int], display Display) *Renderer {
	return &Renderer{
		buf:     NewBuffer(cfg.Width),
		in:      in,
		display: display,
		x:       cfg.X,
		y:       cfg.Y,
	}
}

// Render scrolls value into the buffer and blits it.
func (r *Renderer) Render(value int) {
	r.buf.Push(value)
	r.display.Draw(r.buf.Image(), r.x, r.y, r.buf.Width(), Rows)
}

// Buffer returns the renderer's bitmap.
func (r *Renderer) Buffer() *Buffer { return r.buf }

// Run is the task entry point. The screen starts cleared with a zero sample.
func (r *Renderer) Run(t *rtos.Task) {
	r.display.Clear()
	r.Render(0)

	for {
		r.Render(r.in.Receive(t))
	}
}

// Discard is a Display that shows nothing.
var Discard Display = discard{}

type discard struct{}

func (discard) Clear() {}
func (discard) Draw([]byte, int, int, int, int) {}
