package player

import (
	"time"

	"github.com/pkg/errors"
	flag "github.com/spf13/pflag"
)

var ErrInvalidConfig = errors.New("invalid config")

type Config struct {
	// Port is a serial port name (exact or substring) or a relay host:port.
	Port string
	Baud int

	Width  int
	Height int

	// BaseFPS is the nominal rate of the source frames.
	BaseFPS float64
	// LoopFPS is how often the worker ticks, independent of BaseFPS.
	LoopFPS float64

	// Settle is the device reset time after the port opens.
	Settle       time.Duration
	AckTimeout   time.Duration
	ShutdownWait time.Duration

	FramesDir  string
	FramesGlob string
}

func DefaultConfig() Config {
	return Config{
		Port:         "ttyUSB0",
		Baud:         921600,
		Width:        128,
		Height:       96,
		BaseFPS:      15,
		LoopFPS:      120,
		Settle:       time.Second,
		AckTimeout:   500 * time.Millisecond,
		ShutdownWait: 2 * time.Second,
		FramesDir:    "frames",
		FramesGlob:   "*.png",
	}
}

// Bind registers every option on fs, using the current values as defaults.
func (c *Config) Bind(fs *flag.FlagSet) {
	fs.StringVar(&c.Port, "serial", c.Port, "serial name or remote addr")
	fs.IntVar(&c.Baud, "baud", c.Baud, "serial baud rate")
	fs.IntVar(&c.Width, "width", c.Width, "frame width in pixels")
	fs.IntVar(&c.Height, "height", c.Height, "frame height in pixels")
	fs.Float64Var(&c.BaseFPS, "fps", c.BaseFPS, "nominal video frame rate")
	fs.Float64Var(&c.LoopFPS, "loop-fps", c.LoopFPS, "playback loop tick rate")
	fs.DurationVar(&c.Settle, "settle", c.Settle, "device reset delay after open")
	fs.DurationVar(&c.AckTimeout, "ack-timeout", c.AckTimeout, "max wait for a frame ack")
	fs.DurationVar(&c.ShutdownWait, "shutdown-wait", c.ShutdownWait, "max wait for the loop to exit")
	fs.StringVar(&c.FramesDir, "frames", c.FramesDir, "frame image directory")
	fs.StringVar(&c.FramesGlob, "frames-glob", c.FramesGlob, "frame file pattern, sorted by name")
}

func (c *Config) Validate() error {
	switch {
	case c.Width <= 0 || c.Height <= 0:
		return errors.Wrapf(ErrInvalidConfig, "frame size %dx%d", c.Width, c.Height)
	case c.Width*c.Height%8 != 0:
		return errors.Wrapf(ErrInvalidConfig, "frame size %dx%d is not a multiple of 8 pixels", c.Width, c.Height)
	case !(c.BaseFPS > 0):
		return errors.Wrapf(ErrInvalidConfig, "fps %v", c.BaseFPS)
	case !(c.LoopFPS > 0):
		return errors.Wrapf(ErrInvalidConfig, "loop fps %v", c.LoopFPS)
	case c.Baud <= 0:
		return errors.Wrapf(ErrInvalidConfig, "baud %d", c.Baud)
	case c.ShutdownWait <= 0:
		return errors.Wrapf(ErrInvalidConfig, "shutdown wait %s", c.ShutdownWait)
	}
	return nil
}

func (c *Config) BytesPerFrame() int {
	return c.Width * c.Height / 8
}

func (c *Config) TickInterval() time.Duration {
	return time.Duration(float64(time.Second) / c.LoopFPS)
}
