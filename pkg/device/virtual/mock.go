package virtual

import (
	"go.uber.org/atomic"
	"go.uber.org/zap"

	"monostream/pkg/proto"
)

// Mock is a link without hardware behind it.
func Mock(logger *zap.Logger) *Mocker {
	return &Mocker{l: logger}
}

var _ proto.Link = (*Mocker)(nil)

type Mocker struct {
	l     *zap.Logger
	sent  atomic.Int64
	bytes atomic.Int64
}

func (m *Mocker) Send(payload []byte) error {
	n := m.sent.Inc()
	m.bytes.Add(int64(len(payload)))
	m.l.With(zap.Int64("seq", n), zap.Int("bytes", len(payload))).Debug("send")
	return nil
}

func (m *Mocker) Close() error {
	m.l.With(zap.Int64("frames", m.sent.Load()), zap.Int64("bytes", m.bytes.Load())).Info("close")
	return nil
}

// Sent is the number of payloads accepted so far.
func (m *Mocker) Sent() int64 {
	return m.sent.Load()
}
