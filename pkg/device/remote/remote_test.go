package remote

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx/fxtest"
	"go.uber.org/zap"

	"monostream/pkg/proto"
)

type fakeLink struct {
	sync.Mutex
	sent   [][]byte
	err    error
	block  chan struct{}
	closed int
}

func (l *fakeLink) Send(payload []byte) error {
	if l.block != nil {
		<-l.block
	}

	l.Lock()
	defer l.Unlock()
	l.sent = append(l.sent, append([]byte(nil), payload...))
	return l.err
}

func (l *fakeLink) Close() error {
	l.Lock()
	defer l.Unlock()
	l.closed++
	return nil
}

func serve(t *testing.T, link proto.Link, timeout time.Duration) *Client {
	handler, err := Handler(NewService(link, zap.NewNop()))
	require.NoError(t, err)

	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	c, err := New(strings.TrimPrefix(ts.URL, "http://"), timeout)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestRelaySend(t *testing.T) {
	link := &fakeLink{}
	c := serve(t, link, time.Second)

	require.NoError(t, c.Send([]byte{1, 2, 3}))
	require.NoError(t, c.Send([]byte{4}))
	assert.Equal(t, [][]byte{{1, 2, 3}, {4}}, link.sent)
}

func TestRelayKeepsAckTimeout(t *testing.T) {
	link := &fakeLink{err: errors.Wrap(proto.ErrAckTimeout, "no reply in 500ms")}
	c := serve(t, link, time.Second)

	err := c.Send([]byte{1})
	assert.True(t, errors.Is(err, proto.ErrAckTimeout), "got %v", err)
}

func TestRelayKeepsDisconnected(t *testing.T) {
	link := &fakeLink{err: errors.Wrap(proto.ErrDisconnected, "port closed")}
	c := serve(t, link, time.Second)

	err := c.Send([]byte{1})
	assert.True(t, errors.Is(err, proto.ErrDisconnected), "got %v", err)
}

func TestRelayStallIsAckTimeout(t *testing.T) {
	link := &fakeLink{block: make(chan struct{})}
	c := serve(t, link, 50*time.Millisecond)
	t.Cleanup(func() { close(link.block) })

	start := time.Now()
	err := c.Send([]byte{1})
	assert.True(t, errors.Is(err, proto.ErrAckTimeout), "got %v", err)
	assert.Less(t, int64(time.Since(start)), int64(time.Second))
}

func TestRelayOtherErrorsPassThrough(t *testing.T) {
	link := &fakeLink{err: errors.New("payload too large")}
	c := serve(t, link, time.Second)

	err := c.Send([]byte{1})
	require.Error(t, err)
	assert.False(t, errors.Is(err, proto.ErrAckTimeout))
	assert.Contains(t, err.Error(), "payload too large")
}

func TestDialFailure(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	_, err = New(addr, time.Second)
	var ce *proto.ConnectError
	assert.True(t, errors.As(err, &ce))
}

func TestProxyLifecycle(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	link := &fakeLink{}
	lc := fxtest.NewLifecycle(t)
	require.NoError(t, Proxy(link, &http.Server{Addr: addr}, lc, zap.NewNop()))

	require.NoError(t, lc.Start(context.Background()))

	c, err := New(addr, 0)
	require.NoError(t, err)
	require.NoError(t, c.Send([]byte{9}))
	require.NoError(t, c.Close())

	require.NoError(t, lc.Stop(context.Background()))
	assert.Equal(t, 1, link.closed)
	assert.Equal(t, [][]byte{{9}}, link.sent)
}
