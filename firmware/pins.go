//go:build tinygo

package main

import "machine"

const (
	// Serial configuration, 8N1
	UART_BAUD_RATE = 19200

	// UART receive polling interval in milliseconds
	UART_POLL_MS = 1

	// OLED configuration (SSD1306 compatible, 96x16, page addressed)
	OLED_ADDRESS = 0x3C
	OLED_WIDTH   = 96
	OLED_HEIGHT  = 16
	PAGE_HEIGHT  = 8
)

var (
	uart    = machine.UART0
	oledBus = machine.I2C0
)
