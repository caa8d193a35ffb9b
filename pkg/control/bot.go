package control

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"strconv"
	"time"

	"github.com/inhies/go-bytesize"
	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// NewBot serves ctl over Telegram commands.
func NewBot(token string, ctl Controller, logger *zap.Logger) (*Bot, error) {
	pref := tele.Settings{
		Token: token,
		Poller: &tele.LongPoller{
			Timeout: 30 * time.Second,
		},
	}

	b, err := tele.NewBot(pref)
	if err != nil {
		return nil, err
	}

	return &Bot{
		b:      b,
		ctl:    ctl,
		logger: logger.With(zap.String("via", "bot")),
	}, nil
}

type Bot struct {
	b      *tele.Bot
	ctl    Controller
	logger *zap.Logger
}

func (b *Bot) handleBase() {
	b.b.Handle("/play", func(context tele.Context) error {
		b.ctl.Play()
		return context.Reply("OK")
	})

	b.b.Handle("/pause", func(context tele.Context) error {
		b.ctl.Pause()
		return context.Reply("OK")
	})

	b.b.Handle("/toggle", func(context tele.Context) error {
		if b.ctl.TogglePlay() {
			return context.Reply("Playing")
		}
		return context.Reply("Paused")
	})

	b.b.Handle("/rewind", func(context tele.Context) error {
		b.ctl.Rewind()
		return context.Reply("OK")
	})
}

func (b *Bot) handleTimeline() {
	b.b.Handle("/seek", func(context tele.Context) error {
		in := context.Message().Payload
		if in == "" {
			return context.Reply(strconv.Itoa(b.ctl.CurrentFrame()))
		}

		frame, seconds, relative, err := ParseSeek(in)
		if err != nil {
			return context.Reply(fmt.Sprintf("seek failed: %s", err))
		}

		if relative {
			b.ctl.SeekRelative(seconds)
		} else {
			b.ctl.Seek(frame)
		}
		return context.Reply(FormatStatus(b.ctl.Status()))
	})

	b.b.Handle("/speed", func(context tele.Context) error {
		in := context.Message().Payload
		if in == "" {
			return context.Reply(strconv.FormatFloat(b.ctl.Status().Speed, 'f', -1, 64) + "x")
		}

		v, err := ParseSpeed(in)
		if err != nil {
			return context.Reply(fmt.Sprintf("change failed: %s", err))
		}

		b.ctl.SetSpeed(v)
		return context.Reply("OK")
	})

	b.b.Handle("/faster", func(context tele.Context) error {
		return context.Reply(fmt.Sprintf("%gx", b.ctl.StepSpeed(1)))
	})

	b.b.Handle("/slower", func(context tele.Context) error {
		return context.Reply(fmt.Sprintf("%gx", b.ctl.StepSpeed(-1)))
	})
}

func (b *Bot) handleInfo() {
	b.b.Handle("/status", func(context tele.Context) error {
		return context.Reply(FormatStatus(b.ctl.Status()))
	})

	b.b.Handle("/preview", func(context tele.Context) error {
		frame := b.frameArg(context)
		return b.sendImage(context, b.ctl.PreviewFrame(frame), fmt.Sprintf("Frame %d", frame))
	})

	b.b.Handle("/screen", func(context tele.Context) error {
		frame := b.frameArg(context)
		return b.sendImage(context, b.ctl.ScreenFrame(frame), fmt.Sprintf("Frame %d on device", frame))
	})
}

func (b *Bot) frameArg(context tele.Context) int {
	if in := context.Message().Payload; in != "" {
		if n, err := strconv.Atoi(in); err == nil {
			return n
		}
	}
	return b.ctl.CurrentFrame()
}

func (b *Bot) sendImage(context tele.Context, img image.Image, caption string) error {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return context.Reply(fmt.Sprintf("preview error: %s", err))
	}

	b.logger.With(
		zap.String("caption", caption),
		zap.String("size", bytesize.New(float64(buf.Len())).String()),
	).Debug("image")

	return context.Reply(&tele.Photo{
		File:    tele.FromReader(&buf),
		Caption: caption,
	})
}

func (b *Bot) Start() {
	b.handleBase()
	b.handleTimeline()
	b.handleInfo()
	go b.b.Start()
}

func (b *Bot) Stop() {
	// telebot stop blocks until the pending long poll returns
	go b.b.Stop()
}
