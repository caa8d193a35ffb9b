package timeline

import (
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefaults(t *testing.T) {
	s := New(30, 15)

	assert.False(t, s.Playing())
	assert.Equal(t, 1.0, s.Speed())
	assert.Equal(t, 0, s.CurrentFrame())
	assert.Equal(t, 2*time.Second, s.Duration())
	assert.Equal(t, 30, s.TotalFrames())
	assert.Equal(t, 15.0, s.BaseFPS())
}

func TestPlayPauseToggle(t *testing.T) {
	s := New(10, 10)

	s.Play()
	assert.True(t, s.Playing())
	s.Pause()
	assert.False(t, s.Playing())
	assert.True(t, s.Toggle())
	assert.False(t, s.Toggle())
}

func TestSeekReadsBack(t *testing.T) {
	for _, fps := range []float64{10, 15, 23.976, 29.97, 30, 60} {
		s := New(500, fps)
		for n := -3; n < 505; n++ {
			s.Seek(n)

			want := n
			if want < 0 {
				want = 0
			} else if want > 499 {
				want = 499
			}
			assert.Equal(t, want, s.CurrentFrame(), "fps=%v n=%d", fps, n)
		}
	}
}

func TestSeekDiscardsPhase(t *testing.T) {
	s := New(10, 10)
	s.Play()
	s.Tick(150 * time.Millisecond)
	assert.Equal(t, 1, s.CurrentFrame())

	s.Seek(4)
	assert.Equal(t, 400*time.Millisecond, s.Position())
}

func TestSpeedFloor(t *testing.T) {
	s := New(10, 10)

	for _, m := range []float64{0, -1, -1000, 0.05, math.NaN(), math.Inf(-1)} {
		s.SetSpeed(m)
		assert.Equal(t, MinSpeed, s.Speed(), "multiplier %v", m)
	}

	s.SetSpeed(2.5)
	assert.Equal(t, 2.5, s.Speed())

	for _, m := range []float64{math.Inf(1), 1e18, MaxSpeed + 1} {
		s.SetSpeed(m)
		assert.Equal(t, MaxSpeed, s.Speed(), "multiplier %v", m)
	}
}

func TestTickPausedIsNoop(t *testing.T) {
	s := New(10, 10)
	s.Seek(3)
	s.Tick(200 * time.Millisecond)
	assert.Equal(t, 3, s.CurrentFrame())
}

func TestTickScalesBySpeed(t *testing.T) {
	s := New(100, 10)
	s.Play()
	s.SetSpeed(2)
	s.Tick(100 * time.Millisecond)
	assert.Equal(t, 2, s.CurrentFrame())
}

func TestTickWraparound(t *testing.T) {
	s := New(10, 10)
	s.videoTime = 0.98
	s.Play()

	s.Tick(5 * time.Second)

	assert.InDelta(t, 0.23, s.videoTime, 1e-9)
	assert.Equal(t, 2, s.CurrentFrame())
}

func TestTickMultiWrap(t *testing.T) {
	s := New(2, 10)
	s.Play()
	s.SetSpeed(9)

	s.Tick(MaxStep)

	assert.InDelta(t, 0.05, s.videoTime, 1e-9)
	assert.GreaterOrEqual(t, s.videoTime, 0.0)
	assert.Less(t, s.videoTime, 0.2)

	s.SetSpeed(1e18)
	s.Tick(MaxStep)
	assert.GreaterOrEqual(t, s.videoTime, 0.0)
	assert.Less(t, s.videoTime, 0.2)
}

func TestTickHugeSpeedReturns(t *testing.T) {
	for _, m := range []float64{math.Inf(1), 1e18} {
		s := New(10, 10)
		s.Play()
		s.SetSpeed(m)

		done := make(chan struct{})
		go func() {
			s.Tick(10 * time.Millisecond)
			close(done)
		}()

		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatalf("speed %v: tick did not return", m)
		}

		// 0.01s * 64 = 0.64s into a 1s clip
		assert.Equal(t, 6, s.CurrentFrame(), "speed %v", m)
	}
}

func TestTickBackwardWraps(t *testing.T) {
	s := New(10, 10)
	s.Play()

	s.Tick(-150 * time.Millisecond)

	assert.InDelta(t, 0.85, s.videoTime, 1e-9)
	assert.Equal(t, 8, s.CurrentFrame())
}

func TestConcurrentControl(t *testing.T) {
	s := New(100, 15)
	s.Play()

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				s.Seek(i * j)
				s.SetSpeed(float64(j % 3))
				s.Tick(time.Millisecond)
				idx := s.CurrentFrame()
				assert.True(t, idx >= 0 && idx < 100)
			}
		}(i)
	}
	wg.Wait()
}
