package device

import (
	"io"
	"sync"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Console stands in for the UART when no port is configured: bytes read from
// in are delivered to the sink and writes go to out.
type Console struct {
	in   io.Reader
	out  io.Writer
	sink Sink
	log  *log.Entry

	mu        sync.RWMutex
	connected bool
	done      chan struct{}
}

// NewConsole creates a console device.
func NewConsole(in io.Reader, out io.Writer, sink Sink) *Console {
	return &Console{
		in:   in,
		out:  out,
		sink: sink,
		log:  log.WithField("Module", "console"),
	}
}

// Connect starts delivering bytes read from the input.
func (c *Console) Connect() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.connected {
		return ErrAlreadyConnected
	}
	c.connected = true
	c.done = make(chan struct{})

	if c.in != nil {
		go c.readBytes(c.done)
	}
	return nil
}

// Close stops delivery. A reader blocked in Read finishes its current call
// and drops whatever it returns.
func (c *Console) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.connected {
		return nil
	}
	c.connected = false
	if closer, ok := c.in.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			return errors.Wrap(err, "failed to close console input")
		}
	}
	return nil
}

// Done is closed when the input reaches EOF or fails.
func (c *Console) Done() <-chan struct{} {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.done
}

// Write sends p to the output.
func (c *Console) Write(p []byte) (int, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.connected {
		return 0, ErrNotConnected
	}
	return c.out.Write(p)
}

// IsConnected returns whether the console is delivering bytes.
func (c *Console) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connected
}

func (c *Console) readBytes(done chan struct{}) {
	defer close(done)

	var buf [readSize]byte
	for {
		n, err := c.in.Read(buf[:])
		if !c.IsConnected() {
			return
		}
		deliver(c.sink, buf[:n], c.log)
		if err != nil {
			if err != io.EOF {
				c.log.WithFields(log.Fields{
					"Method": "readBytes",
					"Action": "Read",
				}).WithError(err).Error("Console read failed")
			}
			return
		}
	}
}
