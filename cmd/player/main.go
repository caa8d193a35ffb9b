package main

import (
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/afero"
	flag "github.com/spf13/pflag"
	"go.uber.org/zap"

	"monostream/pkg/control"
	"monostream/pkg/device/mono"
	"monostream/pkg/device/remote"
	"monostream/pkg/device/virtual"
	"monostream/pkg/frames"
	"monostream/pkg/player"
	"monostream/pkg/proto"
)

var virtualDev = flag.Bool("virtual", false, "play without hardware")
var autoplay = flag.Bool("autoplay", false, "start playing immediately")
var speed = flag.Float64("speed", 1, "initial speed multiplier")
var debug = flag.Bool("debug", false, "set debug")
var logJSON = flag.Bool("log-json", false, "log in json")
var tgToken = flag.String("tg-token", "", "telegram bot token")

func main() {
	cfg := player.DefaultConfig()
	cfg.Bind(flag.CommandLine)
	flag.Parse()

	logger := newLogger()
	defer func() {
		_ = logger.Sync()
	}()

	if err := cfg.Validate(); err != nil {
		logger.Fatal("config", zap.Error(err))
	}

	store, err := frames.LoadDir(&frames.Source{
		Fs:       afero.NewOsFs(),
		Dir:      cfg.FramesDir,
		Pattern:  cfg.FramesGlob,
		Progress: os.Stderr,
	}, cfg.Width, cfg.Height, logger)
	if err != nil {
		logger.Fatal("load frames", zap.Error(err))
	}

	link, err := openLink(&cfg, logger)
	if err != nil {
		logger.Fatal("open link", zap.Error(err))
	}

	p, err := player.New(cfg, store, link, logger)
	if err != nil {
		_ = link.Close()
		logger.Fatal("create player", zap.Error(err))
	}

	p.SetSpeed(*speed)
	if *autoplay {
		p.Play()
	}
	p.Start()

	var bot *control.Bot
	if *tgToken != "" {
		bot, err = control.NewBot(*tgToken, p, logger)
		if err != nil {
			logger.Fatal("create bot", zap.Error(err))
		}
		bot.Start()
	}

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM)

	<-signals
	logger.Info("shutting down")

	if bot != nil {
		bot.Stop()
	}
	if err := p.Stop(); err != nil {
		logger.Fatal("shutdown failed", zap.Error(err))
	}
	logger.Info("exited")
}

func openLink(cfg *player.Config, logger *zap.Logger) (proto.Link, error) {
	if *virtualDev {
		return virtual.Mock(logger.With(zap.String("device", "virtual"))), nil
	}

	if strings.Contains(cfg.Port, ":") {
		// the relay waits AckTimeout on the device, leave room for the network
		c, err := remote.New(cfg.Port, 2*cfg.AckTimeout)
		if err != nil {
			return nil, err
		}
		logger.With(zap.String("addr", cfg.Port)).Info("relay connected")
		return c, nil
	}

	m, err := mono.Open(proto.NewSerial(cfg.Port), cfg.Baud, cfg.AckTimeout, cfg.BytesPerFrame(), logger)
	if err != nil {
		return nil, err
	}
	return m, nil
}

func newLogger() *zap.Logger {
	var logger *zap.Logger
	var err error
	if *logJSON {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		log.Fatal(err)
	}

	if !*debug {
		logger = logger.WithOptions(zap.IncreaseLevel(zap.InfoLevel))
	}
	return logger
}
