package main

import (
	"log"
	"net/http"

	flag "github.com/spf13/pflag"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"monostream/pkg/device/mono"
	"monostream/pkg/device/remote"
	"monostream/pkg/player"
	"monostream/pkg/proto"
)

var listen = flag.String("listen", ":9123", "listen addr")

func main() {
	cfg := player.DefaultConfig()
	flag.StringVar(&cfg.Port, "serial", cfg.Port, "serial name")
	flag.IntVar(&cfg.Baud, "baud", cfg.Baud, "serial baud rate")
	flag.IntVar(&cfg.Width, "width", cfg.Width, "frame width in pixels")
	flag.IntVar(&cfg.Height, "height", cfg.Height, "frame height in pixels")
	flag.DurationVar(&cfg.AckTimeout, "ack-timeout", cfg.AckTimeout, "max wait for a frame ack")
	flag.Parse()

	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}

	fx.New(
		fx.Provide(
			zap.NewDevelopment,
			func() (*proto.Serial, *http.Server) {
				return proto.NewSerial(cfg.Port),
					&http.Server{Addr: *listen}
			},
			func(serial *proto.Serial, logger *zap.Logger) (proto.Link, error) {
				m, err := mono.Open(serial, cfg.Baud, cfg.AckTimeout, cfg.BytesPerFrame(), logger)
				if err != nil {
					return nil, err
				}
				return m, nil
			},
		),
		fx.Invoke(
			remote.Proxy,
		),
	).Run()
}
