package device

import (
	"io"

	"github.com/pkg/errors"
)

var (
	// ErrNotConnected is returned when writing to a closed device.
	ErrNotConnected = errors.New("not connected")
	// ErrAlreadyConnected is returned by a second Connect.
	ErrAlreadyConnected = errors.New("already connected")
)

// Device is the character I/O collaborator of the pipeline. Inbound bytes
// are delivered to a command ring while connected, outbound bytes are written
// with Write.
type Device interface {
	io.Writer
	Connect() error
	Close() error
	IsConnected() bool
}

var (
	_ Device = (*Serial)(nil)
	_ Device = (*Console)(nil)
)

// Sink receives inbound bytes without blocking.
type Sink interface {
	Push(b byte) bool
}
