package proto

import (
	"fmt"
	"io"

	"github.com/pkg/errors"
)

var (
	// ErrAckTimeout means the payload was written but no acknowledgment
	// arrived in time. Delivery is uncertain, callers should carry on.
	ErrAckTimeout = errors.New("ack timeout")
	// ErrDisconnected means the link itself is gone.
	ErrDisconnected = errors.New("link disconnected")
)

// Link pushes packed frames to a display.
type Link interface {
	// Send writes one payload and waits for the device acknowledgment.
	Send(payload []byte) error
	Close() error
}

// Port is the byte stream beneath a Link.
type Port interface {
	io.ReadWriter
	Close() error
}

// ConnectError reports a link that could not be opened.
type ConnectError struct {
	Port string
	Err  error
}

func (e *ConnectError) Error() string {
	return fmt.Sprintf("connect %s: %s", e.Port, e.Err)
}

func (e *ConnectError) Unwrap() error {
	return e.Err
}
