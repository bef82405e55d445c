package scope

// PageHeight is the number of pixel rows in one display page.
const PageHeight = 8

// Pixel is one lit dot of a page-layout bitmap. Y grows downwards.
type Pixel struct {
	X, Y int
}

// Pixels returns every lit dot of a page-layout bitmap: byte (page*width + x)
// holds column x of page, bit b is pixel row page*PageHeight + b.
func Pixels(image []byte, width, rows int) []Pixel {
	var result []Pixel
	for page := 0; page < rows; page++ {
		for x := 0; x < width; x++ {
			i := page*width + x
			if i >= len(image) || image[i] == 0 {
				continue
			}
			for bit := 0; bit < PageHeight; bit++ {
				if image[i]&(1<<bit) != 0 {
					result = append(result, Pixel{X: x, Y: page*PageHeight + bit})
				}
			}
		}
	}
	return result
}

// Trace returns the topmost lit pixel row of every column, or -1 for an
// empty column.
func Trace(image []byte, width, rows int) []int {
	trace := make([]int, width)
	for x := range trace {
		trace[x] = -1
	}
	for _, p := range Pixels(image, width, rows) {
		if trace[p.X] < 0 || p.Y < trace[p.X] {
			trace[p.X] = p.Y
		}
	}
	return trace
}
