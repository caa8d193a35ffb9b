package player

import (
	"sync"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/atomic"
	"go.uber.org/zap"

	"monostream/pkg/frames"
	"monostream/pkg/proto"
	"monostream/pkg/timeline"
)

var ErrShutdownTimeout = errors.New("playback loop did not exit")

type Stats struct {
	Sent        int64
	AckTimeouts int64
	Failures    int64
	// LastIndex is the last frame handed to the link, -1 before the first.
	LastIndex int
}

// Loop ticks the scheduler at a fixed rate and sends a frame to the link
// each time the current index changes. It is the only user of the link.
type Loop struct {
	sched  *timeline.Scheduler
	store  *frames.Store
	link   proto.Link
	logger *zap.Logger

	interval time.Duration
	settle   time.Duration

	started  atomic.Bool
	stop     chan struct{}
	stopOnce sync.Once
	exited   chan struct{}

	sent        atomic.Int64
	ackTimeouts atomic.Int64
	failures    atomic.Int64
	lastIndex   atomic.Int64
}

func NewLoop(sched *timeline.Scheduler, store *frames.Store, link proto.Link, interval, settle time.Duration, logger *zap.Logger) *Loop {
	l := &Loop{
		sched:    sched,
		store:    store,
		link:     link,
		logger:   logger,
		interval: interval,
		settle:   settle,
		stop:     make(chan struct{}),
		exited:   make(chan struct{}),
	}
	l.lastIndex.Store(-1)
	return l
}

func (l *Loop) Start() {
	if l.started.CAS(false, true) {
		go l.run()
	}
}

// Stop asks the worker to exit and waits up to wait for it. The link is
// closed by the worker on its way out, or here if it never started.
func (l *Loop) Stop(wait time.Duration) error {
	l.stopOnce.Do(func() {
		close(l.stop)
	})

	if l.started.CAS(false, true) {
		l.closeLink()
		close(l.exited)
		return nil
	}

	select {
	case <-l.exited:
		return nil
	case <-time.After(wait):
		return errors.Wrapf(ErrShutdownTimeout, "after %s", wait)
	}
}

func (l *Loop) Stats() Stats {
	return Stats{
		Sent:        l.sent.Load(),
		AckTimeouts: l.ackTimeouts.Load(),
		Failures:    l.failures.Load(),
		LastIndex:   int(l.lastIndex.Load()),
	}
}

func (l *Loop) run() {
	defer close(l.exited)
	defer l.closeLink()

	if !l.sleep(l.settle) {
		return
	}
	l.logger.With(zap.Duration("interval", l.interval)).Info("playback loop started")

	last := time.Now()
	lastSent := -1

	for {
		now := time.Now()
		dt := now.Sub(last)
		last = now

		select {
		case <-l.stop:
			return
		default:
		}

		l.sched.Tick(dt)

		if idx := l.sched.CurrentFrame(); idx != lastSent {
			l.transmit(idx)
			lastSent = idx
		}

		if !l.sleep(l.interval - time.Since(now)) {
			return
		}
	}
}

func (l *Loop) transmit(idx int) {
	_, payload := l.store.Get(idx)
	err := l.link.Send(payload)
	l.lastIndex.Store(int64(idx))

	switch {
	case err == nil:
		l.sent.Inc()
	case errors.Is(err, proto.ErrAckTimeout):
		l.ackTimeouts.Inc()
		l.logger.With(zap.Int("frame", idx), zap.Error(err)).Info("delivery uncertain")
	default:
		l.failures.Inc()
		l.logger.With(zap.Int("frame", idx), zap.Error(err)).Warn("send failed")
	}
}

// sleep waits d, returning false if a stop arrived first.
func (l *Loop) sleep(d time.Duration) bool {
	if d <= 0 {
		return true
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-l.stop:
		return false
	case <-timer.C:
		return true
	}
}

func (l *Loop) closeLink() {
	if err := l.link.Close(); err != nil {
		l.logger.With(zap.Error(err)).Info("close link failed")
		return
	}
	l.logger.Info("playback loop stopped")
}
