package remote

import (
	"net/rpc"
	"strings"
	"time"

	"github.com/pkg/errors"

	"monostream/pkg/proto"
)

// New dials a relay started by Proxy. A Send without a reply within timeout
// is reported as an ack timeout; zero waits forever.
func New(addr string, timeout time.Duration) (*Client, error) {
	client, err := rpc.DialHTTP("tcp", addr)
	if err != nil {
		return nil, &proto.ConnectError{Port: addr, Err: err}
	}

	return &Client{rpc: client, timeout: timeout}, nil
}

var _ proto.Link = (*Client)(nil)

type Client struct {
	rpc     *rpc.Client
	timeout time.Duration
}

func (c *Client) Send(payload []byte) error {
	call := c.rpc.Go("Service.Send", &SendRequest{Payload: payload}, &EmptyResponse{}, make(chan *rpc.Call, 1))
	if c.timeout <= 0 {
		<-call.Done
		return remoteErr(call.Error)
	}

	timer := time.NewTimer(c.timeout)
	defer timer.Stop()

	select {
	case <-call.Done:
		return remoteErr(call.Error)
	case <-timer.C:
		return errors.Wrapf(proto.ErrAckTimeout, "relay no reply in %s", c.timeout)
	}
}

// Close drops the connection. The relay keeps its serial port open.
func (c *Client) Close() error {
	return c.rpc.Close()
}

// rpc flattens errors to strings, restore the sentinels callers branch on.
func remoteErr(err error) error {
	if err == nil {
		return nil
	}

	if err == rpc.ErrShutdown {
		return errors.Wrap(proto.ErrDisconnected, err.Error())
	}

	var se rpc.ServerError
	if errors.As(err, &se) {
		msg := string(se)
		switch {
		case strings.HasSuffix(msg, proto.ErrAckTimeout.Error()):
			return errors.Wrap(proto.ErrAckTimeout, strings.TrimSuffix(msg, ": "+proto.ErrAckTimeout.Error()))
		case strings.HasSuffix(msg, proto.ErrDisconnected.Error()):
			return errors.Wrap(proto.ErrDisconnected, strings.TrimSuffix(msg, ": "+proto.ErrDisconnected.Error()))
		}
	}

	return err
}
