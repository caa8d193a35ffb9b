package timeline

import (
	"math"
	"sync"
	"time"
)

const (
	// MinSpeed floors every speed multiplier.
	MinSpeed = 0.1
	// MaxSpeed caps it, +Inf included.
	MaxSpeed = 64.0
	// MaxStep bounds a single tick so a stalled caller cannot jump far ahead.
	MaxStep = 250 * time.Millisecond
)

// keeps floor(n/fps*fps) == n under float rounding
const indexEpsilon = 1e-9

// Scheduler owns the logical playback clock.
//
// All methods are safe for concurrent use and never block on anything but
// the internal mutex, which only guards field access.
type Scheduler struct {
	mu sync.Mutex

	playing   bool
	speed     float64
	videoTime float64 // seconds, in [0, duration)

	total    int
	fps      float64
	duration float64
}

func New(totalFrames int, baseFPS float64) *Scheduler {
	return &Scheduler{
		speed:    1,
		total:    totalFrames,
		fps:      baseFPS,
		duration: float64(totalFrames) / baseFPS,
	}
}

func (s *Scheduler) TotalFrames() int {
	return s.total
}

func (s *Scheduler) BaseFPS() float64 {
	return s.fps
}

// Duration is the length of one full pass over every frame.
func (s *Scheduler) Duration() time.Duration {
	return seconds(s.duration)
}

func (s *Scheduler) Play() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.playing = true
}

func (s *Scheduler) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.playing = false
}

// Toggle flips the play flag and returns the new value.
func (s *Scheduler) Toggle() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.playing = !s.playing
	return s.playing
}

func (s *Scheduler) Playing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.playing
}

// Seek jumps to the start of frame index, clamped into range. Any sub-frame
// phase is discarded.
func (s *Scheduler) Seek(index int) {
	index = s.clamp(index)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.videoTime = float64(index) / s.fps
}

// SetSpeed stores multiplier, silently clamped into [MinSpeed, MaxSpeed].
// NaN counts as too low.
func (s *Scheduler) SetSpeed(multiplier float64) {
	if !(multiplier >= MinSpeed) {
		multiplier = MinSpeed
	} else if multiplier > MaxSpeed {
		multiplier = MaxSpeed
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.speed = multiplier
}

func (s *Scheduler) Speed() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.speed
}

// Position is the logical video time.
func (s *Scheduler) Position() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return seconds(s.videoTime)
}

// CurrentFrame derives the frame index from the logical video time.
func (s *Scheduler) CurrentFrame() int {
	s.mu.Lock()
	t := s.videoTime
	s.mu.Unlock()

	return s.clamp(int(math.Floor(t*s.fps + indexEpsilon)))
}

// Tick advances the clock by dt scaled by the speed multiplier, wrapping
// around both ends. It is a no-op while paused.
func (s *Scheduler) Tick(dt time.Duration) {
	if dt > MaxStep {
		dt = MaxStep
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.playing || s.duration <= 0 {
		return
	}

	t := math.Mod(s.videoTime+dt.Seconds()*s.speed, s.duration)
	if t < 0 {
		t += s.duration
	}
	// a tiny negative remainder rounds up to duration itself
	if t >= s.duration {
		t = 0
	}
	s.videoTime = t
}

func (s *Scheduler) clamp(index int) int {
	if index >= s.total {
		index = s.total - 1
	}
	if index < 0 {
		index = 0
	}
	return index
}

func seconds(f float64) time.Duration {
	return time.Duration(f * float64(time.Second))
}
