//go:build tinygo

//go:generate tinygo flash -target=xiao

package main

import (
	"context"
	"machine"
	"time"

	"github.com/itohio/stripscope/pkg/config"
	"github.com/itohio/stripscope/pkg/pipeline"
	"github.com/itohio/stripscope/pkg/rtos"
)

func main() {
	cfg := config.Default()
	cfg.Serial.BaudRate = UART_BAUD_RATE
	cfg.Display.Width = OLED_WIDTH

	uart.Configure(machine.UARTConfig{
		BaudRate: UART_BAUD_RATE,
	})
	oledBus.Configure(machine.I2CConfig{
		Frequency: machine.TWI_FREQ_400KHZ,
	})

	// Control bytes reach the filter through a ring, filled by the poller
	commands := rtos.NewByteRing(cfg.Queues.CommandCapacity)
	go pollUART(commands)

	p, err := pipeline.New(cfg, pipeline.Peripherals{
		Commands: commands,
		Output:   uart,
		Display:  newOLED(oledBus, OLED_ADDRESS),
	})
	if err != nil {
		halt(err)
	}

	halt(p.Run(context.Background()))
}

// pollUART moves received bytes into the ring. It never blocks on the ring,
// a full ring drops bytes.
func pollUART(commands *rtos.ByteRing) {
	for {
		for uart.Buffered() > 0 {
			data, err := uart.ReadByte()
			if err != nil {
				break
			}
			commands.Push(data)
		}
		time.Sleep(UART_POLL_MS * time.Millisecond)
	}
}

// halt reports err and parks the core.
func halt(err error) {
	if err != nil {
		print("HALT: ", err.Error(), "\r\n")
	}
	for {
		time.Sleep(time.Hour)
	}
}
