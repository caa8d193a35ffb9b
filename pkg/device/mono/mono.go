package mono

import (
	"sync"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"monostream/pkg/proto"
)

// Mono is a monochrome display fed raw packed frames over a serial port.
//
// The device answers every frame with a single byte. Its value carries no
// meaning, it only paces the sender.
type Mono struct {
	port   proto.Port
	logger *zap.Logger
	size   int

	ack  []byte
	once sync.Once
}

// Open connects to the serial port. The device resets on open, so callers
// must let it settle before the first Send.
func Open(serial *proto.Serial, baud int, ackTimeout time.Duration, frameSize int, logger *zap.Logger) (*Mono, error) {
	err := serial.Open(&proto.Options{
		DTR:         true,
		RTS:         true,
		BaudRate:    baud,
		ReadTimeout: ackTimeout,
	})
	if err != nil {
		return nil, err
	}

	logger.With(zap.String("port", serial.Name()), zap.Int("baud", baud)).Info("serial opened")
	return New(serial, frameSize, logger), nil
}

// New wraps an already opened port.
func New(port proto.Port, frameSize int, logger *zap.Logger) *Mono {
	return &Mono{
		port:   port,
		logger: logger,
		size:   frameSize,
		ack:    make([]byte, 1),
	}
}

func (m *Mono) Send(payload []byte) error {
	if len(payload) != m.size {
		return errors.Errorf("payload is %d bytes, want %d", len(payload), m.size)
	}

	if err := m.write(payload); err != nil {
		return err
	}

	return m.waitAck()
}

func (m *Mono) Close() error {
	err := errors.New("already closed")
	m.once.Do(func() {
		err = m.port.Close()
		m.logger.Info("serial closed")
	})
	return err
}
