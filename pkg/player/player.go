package player

import (
	"image"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/xid"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"monostream/pkg/bitmap"
	"monostream/pkg/frames"
	"monostream/pkg/proto"
	"monostream/pkg/timeline"
)

// SpeedPresets is the ladder StepSpeed walks along.
var SpeedPresets = []float64{0.25, 0.5, 0.75, 1, 1.25, 1.5, 1.75, 2}

// Status is a snapshot for display.
type Status struct {
	Frame    int
	Total    int
	Position time.Duration
	Duration time.Duration
	Playing  bool
	Speed    float64
}

// Player is the control surface over the scheduler and the playback loop.
type Player struct {
	cfg    Config
	store  *frames.Store
	sched  *timeline.Scheduler
	loop   *Loop
	logger *zap.Logger
}

func New(cfg Config, store *frames.Store, link proto.Link, logger *zap.Logger) (*Player, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if store.Width() != cfg.Width || store.Height() != cfg.Height {
		return nil, errors.Wrapf(ErrInvalidConfig, "frames are %dx%d, config says %dx%d",
			store.Width(), store.Height(), cfg.Width, cfg.Height)
	}

	logger = logger.With(zap.String("session", xid.New().String()))
	sched := timeline.New(store.Total(), cfg.BaseFPS)

	return &Player{
		cfg:    cfg,
		store:  store,
		sched:  sched,
		loop:   NewLoop(sched, store, link, cfg.TickInterval(), cfg.Settle, logger),
		logger: logger,
	}, nil
}

// Start launches the playback loop. Playback begins paused on frame 0.
func (p *Player) Start() {
	p.logger.With(
		zap.Int("frames", p.store.Total()),
		zap.Float64("fps", p.cfg.BaseFPS),
		zap.Float64("loop_fps", p.cfg.LoopFPS),
	).Info("player started")
	p.loop.Start()
}

// Stop ends the loop and closes the link. A loop that does not exit within
// ShutdownWait is reported as ErrShutdownTimeout.
func (p *Player) Stop() error {
	err := p.loop.Stop(p.cfg.ShutdownWait)
	stats := p.loop.Stats()
	p.logger.With(
		zap.Int64("sent", stats.Sent),
		zap.Int64("ack_timeouts", stats.AckTimeouts),
		zap.Int64("failures", stats.Failures),
	).Info("player stopped")
	return err
}

func (p *Player) TotalFrames() int {
	return p.store.Total()
}

func (p *Player) FrameWidth() int {
	return p.store.Width()
}

func (p *Player) FrameHeight() int {
	return p.store.Height()
}

func (p *Player) BaseFPS() float64 {
	return p.cfg.BaseFPS
}

func (p *Player) Play() {
	p.sched.Play()
}

func (p *Player) Pause() {
	p.sched.Pause()
}

func (p *Player) TogglePlay() bool {
	return p.sched.Toggle()
}

func (p *Player) Rewind() {
	p.sched.Seek(0)
}

func (p *Player) Seek(frame int) {
	p.sched.Seek(frame)
}

// SeekRelative moves by whole frames, truncating seconds*fps toward zero.
// The result is clamped, not wrapped.
func (p *Player) SeekRelative(seconds float64) {
	delta := int(seconds * p.cfg.BaseFPS)
	p.sched.Seek(p.sched.CurrentFrame() + delta)
}

func (p *Player) SetSpeed(multiplier float64) {
	p.sched.SetSpeed(multiplier)
}

func (p *Player) Speed() float64 {
	return p.sched.Speed()
}

// StepSpeed moves delta steps along SpeedPresets and returns the new speed.
// A speed off the ladder restarts from 1x.
func (p *Player) StepSpeed(delta int) float64 {
	i := lo.IndexOf(SpeedPresets, p.sched.Speed())
	if i < 0 {
		i = lo.IndexOf(SpeedPresets, 1)
	}

	i += delta
	if i < 0 {
		i = 0
	} else if i >= len(SpeedPresets) {
		i = len(SpeedPresets) - 1
	}

	p.sched.SetSpeed(SpeedPresets[i])
	return SpeedPresets[i]
}

func (p *Player) CurrentFrame() int {
	return p.sched.CurrentFrame()
}

// PreviewFrame returns the decoded image at frame, clamped into range.
func (p *Player) PreviewFrame(frame int) *image.Gray {
	img, _ := p.store.Get(frame)
	return img
}

// ScreenFrame renders the packed payload of frame, i.e. what the device shows.
func (p *Player) ScreenFrame(frame int) image.Image {
	_, packed := p.store.Get(frame)
	return bitmap.View(image.Rect(0, 0, p.store.Width(), p.store.Height()), packed)
}

func (p *Player) IsPlaying() bool {
	return p.sched.Playing()
}

func (p *Player) Status() Status {
	return Status{
		Frame:    p.sched.CurrentFrame(),
		Total:    p.store.Total(),
		Position: p.sched.Position(),
		Duration: p.sched.Duration(),
		Playing:  p.sched.Playing(),
		Speed:    p.sched.Speed(),
	}
}

func (p *Player) Stats() Stats {
	return p.loop.Stats()
}
