package scope

import (
	"image/color"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"

	"github.com/itohio/stripscope/pkg/waveform"
)

// StripChart is a Fyne widget emulating the page-addressed OLED the waveform
// is blitted to.
type StripChart struct {
	widget.BaseWidget

	// Screen contents (protected by mu)
	mu     sync.RWMutex
	screen []byte
	width  int
	rows   int
}

var _ waveform.Display = (*StripChart)(nil)

// NewStripChart creates a blank chart of width columns and rows pages.
func NewStripChart(width, rows int) *StripChart {
	s := &StripChart{
		screen: make([]byte, width*rows),
		width:  width,
		rows:   rows,
	}
	s.ExtendBaseWidget(s)
	return s
}

// Clear blanks the screen. Safe to call from any goroutine.
func (s *StripChart) Clear() {
	s.mu.Lock()
	clear(s.screen)
	s.mu.Unlock()

	fyne.Do(s.Refresh)
}

// Draw copies a page-layout bitmap to column x, page y of the screen. Parts
// outside the screen are clipped. Safe to call from any goroutine.
func (s *StripChart) Draw(image []byte, x, y, width, rows int) {
	s.mu.Lock()
	blit(s.screen, s.width, s.rows, image, x, y, width, rows)
	s.mu.Unlock()

	// Refresh must run on the main thread
	fyne.Do(s.Refresh)
}

// Screen returns a copy of the screen bitmap together with its size.
func (s *StripChart) Screen() ([]byte, int, int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]byte(nil), s.screen...), s.width, s.rows
}

// CreateRenderer creates the widget renderer.
func (s *StripChart) CreateRenderer() fyne.WidgetRenderer {
	background := canvas.NewRectangle(color.RGBA{R: 10, G: 10, B: 20, A: 255})
	return &stripRenderer{
		chart:      s,
		background: background,
		objects:    []fyne.CanvasObject{background},
	}
}

// blit copies src (srcWidth x srcRows pages) into dst at column x, page y.
func blit(dst []byte, dstWidth, dstRows int, src []byte, x, y, srcWidth, srcRows int) {
	for page := 0; page < srcRows; page++ {
		dy := y + page
		if dy < 0 || dy >= dstRows {
			continue
		}
		for col := 0; col < srcWidth; col++ {
			dx := x + col
			si := page*srcWidth + col
			if dx < 0 || dx >= dstWidth || si >= len(src) {
				continue
			}
			dst[dy*dstWidth+dx] = src[si]
		}
	}
}
