package mono

import (
	"fmt"
	"time"

	"github.com/inhies/go-bytesize"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"monostream/pkg/proto"
)

func (m *Mono) write(payload []byte) error {
	var sent int
	var cost time.Duration

	start := time.Now()
	for sent < len(payload) {
		n, err := m.port.Write(payload[sent:])
		sent += n
		if err != nil {
			if proto.IsClosed(err) {
				return errors.Wrap(proto.ErrDisconnected, err.Error())
			}
			return errors.Wrapf(err, "write after %d bytes", sent)
		}
		if n == 0 {
			return errors.Errorf("short write after %d bytes", sent)
		}
	}
	cost = time.Since(start)

	m.logger.With(
		zap.String("sent", bytesize.New(float64(sent)).String()),
		zap.String("cost", cost.String()),
	).Debug("transfer")

	return nil
}

func (m *Mono) waitAck() error {
	start := time.Now()
	n, err := m.port.Read(m.ack)
	cost := time.Since(start)

	if err != nil {
		if proto.IsClosed(err) {
			return errors.Wrap(proto.ErrDisconnected, err.Error())
		}
		return errors.Wrap(proto.ErrAckTimeout, err.Error())
	}
	if n == 0 {
		return errors.Wrapf(proto.ErrAckTimeout, "no reply in %s", cost)
	}

	m.logger.With(
		zap.String("cost", cost.String()),
		zap.String("ack", fmt.Sprintf("%02x", m.ack[0])),
	).Debug("ack")

	return nil
}
