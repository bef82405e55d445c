//go:build tinygo

package main

import "machine"

const (
	oledCommand = 0x00
	oledData    = 0x40
)

// oled drives an SSD1306 compatible display in horizontal addressing mode,
// which takes page-layout bitmaps as is.
type oled struct {
	bus     *machine.I2C
	address uint16
	buf     [1 + OLED_WIDTH*OLED_HEIGHT/PAGE_HEIGHT]byte
}

func newOLED(bus *machine.I2C, address uint16) *oled {
	o := &oled{bus: bus, address: address}
	o.command(
		0xAE,                // display off
		0xD5, 0x80,          // clock divide
		0xA8, OLED_HEIGHT-1, // multiplex
		0xD3, 0x00,          // display offset
		0x40,                // start line 0
		0x8D, 0x14,          // charge pump on
		0x20, 0x00,          // horizontal addressing
		0xA1,                // segment remap
		0xC8,                // COM scan descending
		0xDA, 0x02,          // COM pins
		0x81, 0xAF,          // contrast
		0xD9, 0xF1,          // precharge
		0xDB, 0x40,          // VCOMH
		0xA4,                // resume from RAM
		0xA6,                // normal, not inverted
		0xAF,                // display on
	)
	return o
}

// Clear blanks the whole display.
func (o *oled) Clear() {
	o.window(0, 0, OLED_WIDTH, OLED_HEIGHT/PAGE_HEIGHT)
	o.buf[0] = oledData
	clear(o.buf[1:])
	o.bus.Tx(o.address, o.buf[:], nil)
}

// Draw blits a page-layout bitmap at column x, page y.
func (o *oled) Draw(image []byte, x, y, width, rows int) {
	n := min(width*rows, len(image), len(o.buf)-1)
	o.window(x, y, width, rows)
	o.buf[0] = oledData
	copy(o.buf[1:], image[:n])
	o.bus.Tx(o.address, o.buf[:1+n], nil)
}

func (o *oled) window(x, y, width, rows int) {
	o.command(
		0x21, byte(x), byte(x+width-1), // column range
		0x22, byte(y), byte(y+rows-1),  // page range
	)
}

func (o *oled) command(cmds ...byte) {
	for _, c := range cmds {
		o.bus.Tx(o.address, []byte{oledCommand, c}, nil)
	}
}
