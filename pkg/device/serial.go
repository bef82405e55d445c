package device

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"go.bug.st/serial"
	"go.bug.st/serial/enumerator"

	"github.com/itohio/stripscope/pkg/config"
)

const (
	// DefaultBaudRate matches the UART setup of the board, 8N1.
	DefaultBaudRate = 19200

	readTimeout = 100 * time.Millisecond
	readSize    = 64
)

// Port represents a serial port.
type Port struct {
	Name        string
	Description string
}

// Ports returns a list of available serial ports.
func Ports() ([]Port, error) {
	details, err := enumerator.GetDetailedPortsList()
	if err != nil {
		names, err := serial.GetPortsList()
		if err != nil {
			return nil, errors.Wrap(err, "failed to list serial ports")
		}
		result := make([]Port, 0, len(names))
		for _, name := range names {
			result = append(result, Port{Name: name, Description: name})
		}
		return result, nil
	}

	result := make([]Port, 0, len(details))
	for _, d := range details {
		desc := d.Name
		if d.IsUSB {
			desc = d.Product
			if desc == "" {
				desc = "USB " + d.VID + ":" + d.PID
			}
		}
		result = append(result, Port{
			Name:        d.Name,
			Description: desc,
		})
	}
	return result, nil
}

// Serial connects the pipeline to a UART. Received bytes are pushed into the
// sink from a reader goroutine, which plays the part of the receive interrupt.
type Serial struct {
	port     string
	baudRate int
	sink     Sink
	log      *log.Entry

	mu        sync.RWMutex
	conn      serial.Port
	cancel    context.CancelFunc
	done      chan struct{}
	connected bool
}

// NewSerial creates a serial device delivering inbound bytes to sink.
func NewSerial(cfg config.SerialConfig, sink Sink) *Serial {
	if cfg.BaudRate == 0 {
		cfg.BaudRate = DefaultBaudRate
	}
	return &Serial{
		port:     cfg.Port,
		baudRate: cfg.BaudRate,
		sink:     sink,
		log:      log.WithFields(log.Fields{"Module": "device", "Port": cfg.Port}),
	}
}

// Connect opens the port and starts delivering bytes.
func (d *Serial) Connect() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.connected {
		return ErrAlreadyConnected
	}

	port, err := serial.Open(d.port, &serial.Mode{
		BaudRate: d.baudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
	if err != nil {
		return errors.Wrapf(err, "failed to open serial port %s", d.port)
	}
	if err := port.SetReadTimeout(readTimeout); err != nil {
		port.Close()
		return errors.Wrapf(err, "failed to configure serial port %s", d.port)
	}

	ctx, cancel := context.WithCancel(context.Background())
	d.conn = port
	d.cancel = cancel
	d.done = make(chan struct{})
	d.connected = true

	go d.readBytes(ctx, port, d.done)

	d.log.WithFields(log.Fields{
		"Method":   "Connect",
		"Action":   "Open",
		"BaudRate": d.baudRate,
	}).Info("Serial port opened")
	return nil
}

// Close stops the reader and closes the port.
func (d *Serial) Close() error {
	d.mu.Lock()
	if !d.connected {
		d.mu.Unlock()
		return nil
	}
	d.cancel()
	conn, done := d.conn, d.done
	d.conn = nil
	d.connected = false
	d.mu.Unlock()

	err := conn.Close()
	<-done

	d.log.WithFields(log.Fields{
		"Method": "Close",
		"Action": "Close",
	}).Info("Serial port closed")

	if err != nil {
		return errors.Wrap(err, "failed to close serial port")
	}
	return nil
}

// Write sends p to the port.
func (d *Serial) Write(p []byte) (int, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if !d.connected {
		return 0, ErrNotConnected
	}
	n, err := d.conn.Write(p)
	if err != nil {
		return n, errors.Wrap(err, "serial write failed")
	}
	return n, nil
}

// IsConnected returns whether the port is open.
func (d *Serial) IsConnected() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.connected
}

func (d *Serial) readBytes(ctx context.Context, port serial.Port, done chan struct{}) {
	defer close(done)

	var buf [readSize]byte
	for {
		n, err := port.Read(buf[:])
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			d.log.WithFields(log.Fields{
				"Method": "readBytes",
				"Action": "Read",
			}).WithError(err).Error("Serial read failed")
			return
		}
		deliver(d.sink, buf[:n], d.log)
	}
}

func deliver(sink Sink, p []byte, logger *log.Entry) {
	for _, b := range p {
		if !sink.Push(b) {
			logger.WithFields(log.Fields{
				"Method": "deliver",
				"Action": "Drop",
			}).Debug("Command ring full, byte dropped")
		}
	}
}
