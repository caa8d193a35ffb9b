package remote

import (
	"context"
	"net"
	"net/http"
	"net/rpc"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"monostream/pkg/proto"
)

// Proxy serves link over net/rpc on srv for the lifetime of the app. The
// link is closed once the server has stopped.
func Proxy(link proto.Link, srv *http.Server, lifecycle fx.Lifecycle, logger *zap.Logger) error {
	handler, err := Handler(NewService(link, logger))
	if err != nil {
		return err
	}
	srv.Handler = handler

	lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			ln, err := net.Listen("tcp", srv.Addr)
			if err != nil {
				return err
			}
			logger.With(zap.String("addr", ln.Addr().String())).Info("relay listening")
			go func() {
				if err := srv.Serve(ln); err != http.ErrServerClosed {
					logger.With(zap.Error(err)).Error("relay stopped")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			err := srv.Shutdown(ctx)
			if cerr := link.Close(); cerr != nil {
				logger.With(zap.Error(cerr)).Info("close link failed")
			}
			return err
		},
	})

	return nil
}

// Handler exposes svc on the default rpc path.
func Handler(svc *Service) (http.Handler, error) {
	server := rpc.NewServer()
	if err := server.Register(svc); err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	mux.Handle(rpc.DefaultRPCPath, server)
	return mux, nil
}

func NewService(link proto.Link, logger *zap.Logger) *Service {
	return &Service{link: link, logger: logger}
}

type Service struct {
	link   proto.Link
	logger *zap.Logger
}

func (s *Service) Send(req *SendRequest, _ *EmptyResponse) error {
	err := s.link.Send(req.Payload)
	if err != nil {
		s.logger.With(zap.Error(err)).Debug("relay send")
	}
	return err
}
