package scope

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"github.com/chewxy/math32"
)

const (
	minDotSize = 4
	dotGap     = 0.15 // Fraction of a dot left dark between dots
)

var (
	dotColor   = color.RGBA{R: 255, G: 165, B: 0, A: 255}
	traceColor = color.RGBA{R: 255, G: 165, B: 0, A: 96}
	gridColor  = color.RGBA{R: 40, G: 40, B: 40, A: 255}
)

// stripRenderer renders the strip chart widget.
type stripRenderer struct {
	chart *StripChart

	background *canvas.Rectangle

	// Objects list for Fyne
	objects []fyne.CanvasObject

	// Track last size to detect changes
	lastSize fyne.Size
}

// MinSize returns the minimum size of the widget.
func (r *stripRenderer) MinSize() fyne.Size {
	_, width, rows := r.chart.Screen()
	return fyne.NewSize(float32(width*minDotSize), float32(rows*PageHeight*minDotSize))
}

// Layout arranges the widget components.
func (r *stripRenderer) Layout(size fyne.Size) {
	r.background.Resize(size)

	if r.lastSize != size {
		r.lastSize = size
		r.Refresh()
	}
}

// Refresh rebuilds the dots from the current screen.
func (r *stripRenderer) Refresh() {
	screen, width, rows := r.chart.Screen()

	size := r.chart.Size()
	r.objects = []fyne.CanvasObject{r.background}
	if size.Width == 0 || size.Height == 0 || width == 0 || rows == 0 {
		return
	}

	g := newGeometry(size.Width, size.Height, width, rows*PageHeight)
	r.drawGrid(g, width, rows)
	r.drawTrace(g, Trace(screen, width, rows))

	for _, p := range Pixels(screen, width, rows) {
		dot := canvas.NewRectangle(dotColor)
		x, y := g.dot(p.X, p.Y)
		dot.Move(fyne.NewPos(x, y))
		dot.Resize(fyne.NewSize(g.size*(1-dotGap), g.size*(1-dotGap)))
		r.objects = append(r.objects, dot)
	}
}

// drawGrid outlines the display pages.
func (r *stripRenderer) drawGrid(g geometry, width, rows int) {
	right := g.offsetX + g.size*float32(width)
	for page := 0; page <= rows; page++ {
		y := g.offsetY + g.size*float32(page*PageHeight)
		line := canvas.NewLine(gridColor)
		line.Position1 = fyne.NewPos(g.offsetX, y)
		line.Position2 = fyne.NewPos(right, y)
		line.StrokeWidth = 1
		r.objects = append(r.objects, line)
	}
}

// drawTrace connects the dots of neighbouring columns.
func (r *stripRenderer) drawTrace(g geometry, trace []int) {
	half := g.size * (1 - dotGap) / 2
	for x := 0; x+1 < len(trace); x++ {
		if trace[x] < 0 || trace[x+1] < 0 {
			continue
		}
		x1, y1 := g.dot(x, trace[x])
		x2, y2 := g.dot(x+1, trace[x+1])

		line := canvas.NewLine(traceColor)
		line.Position1 = fyne.NewPos(x1+half, y1+half)
		line.Position2 = fyne.NewPos(x2+half, y2+half)
		line.StrokeWidth = math32.Max(1, g.size/4)
		r.objects = append(r.objects, line)
	}
}

// Objects returns all canvas objects for rendering.
func (r *stripRenderer) Objects() []fyne.CanvasObject {
	return r.objects
}

// Destroy cleans up resources.
func (r *stripRenderer) Destroy() {}

// geometry maps display pixels to widget coordinates. Dots are square and
// the display is centred.
type geometry struct {
	size             float32
	offsetX, offsetY float32
}

func newGeometry(w, h float32, cols, pixelRows int) geometry {
	size := math32.Min(w/float32(cols), h/float32(pixelRows))
	if size >= 1 {
		size = math32.Floor(size)
	}
	return geometry{
		size:    size,
		offsetX: math32.Floor((w - size*float32(cols)) / 2),
		offsetY: math32.Floor((h - size*float32(pixelRows)) / 2),
	}
}

func (g geometry) dot(x, y int) (float32, float32) {
	return g.offsetX + g.size*float32(x), g.offsetY + g.size*float32(y)
}
