package waveform

import "math/bits"

const (
	// Rows is the number of 8 pixel pages per column.
	Rows = 2
	// HalfRange is the number of values encoded by one row.
	HalfRange = 8
	// FullRange is the number of values a column can encode.
	FullRange = Rows * HalfRange
)

// Buffer is a scrolling strip-chart bitmap in page layout: image[0:width] is
// the high row (values HalfRange..FullRange-1, top of the screen) and
// image[width:2*width] is the low row. Column 0 is the most recent value and
// every column has exactly one bit set once it has been written.
type Buffer struct {
	width int
	image []byte
}

// NewBuffer creates an empty buffer of width columns.
func NewBuffer(width int) *Buffer {
	if width < 1 {
		width = 1
	}
	return &Buffer{
		width: width,
		image: make([]byte, Rows*width),
	}
}

// Width returns the number of columns.
func (b *Buffer) Width() int { return b.width }

// Image returns the backing bitmap. It is overwritten by the next Push.
func (b *Buffer) Image() []byte { return b.image }

// Push scrolls every column one position toward the oldest end, discarding
// the oldest, and encodes value into column 0. Values outside the range are
// clamped.
func (b *Buffer) Push(value int) {
	w := b.width
	for i := w - 1; i > 0; i-- {
		b.image[i] = b.image[i-1]
		b.image[i+w] = b.image[i-1+w]
	}
	high, low := Encode(value)
	b.image[0] = high
	b.image[w] = low
}

// Column returns the high and low row bytes of column i.
func (b *Buffer) Column(i int) (high, low byte) {
	return b.image[i], b.image[i+b.width]
}

// Value decodes column i. Returns false for a column that was never written.
func (b *Buffer) Value(i int) (int, bool) {
	return Decode(b.Column(i))
}

// Encode returns the one-hot column bytes for value. Values below HalfRange
// set bit HalfRange-1-value of the low byte, the rest set bit
// FullRange-1-value of the high byte.
func Encode(value int) (high, low byte) {
	switch {
	case value < 0:
		value = 0
	case value >= FullRange:
		value = FullRange - 1
	}

	if value < HalfRange {
		return 0, 1 << (HalfRange - 1 - value)
	}
	return 1 << (FullRange - 1 - value), 0
}

// Decode is the inverse of Encode. Returns false for an empty column.
func Decode(high, low byte) (int, bool) {
	switch {
	case high != 0:
		return FullRange - 1 - bits.TrailingZeros8(high), true
	case low != 0:
		return HalfRange - 1 - bits.TrailingZeros8(low), true
	default:
		return 0, false
	}
}
