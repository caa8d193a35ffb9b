package player

import (
	"image"
	"image/color"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"monostream/pkg/frames"
)

// indexedStore builds 8x1 frames whose packed byte equals their index.
func indexedStore(t *testing.T, n int) *frames.Store {
	images := make([]*image.Gray, n)
	for i := range images {
		img := image.NewGray(image.Rect(0, 0, 8, 1))
		for x := 0; x < 8; x++ {
			if i&(1<<(7-x)) != 0 {
				img.SetGray(x, 0, color.Gray{Y: 255})
			}
		}
		images[i] = img
	}

	s, err := frames.Load(images, 8, 1)
	require.NoError(t, err)
	return s
}

type recordLink struct {
	sync.Mutex
	sent    []int
	notify  chan int
	failFor func(seq int) error
	block   chan struct{}
	closed  int
}

func newRecordLink() *recordLink {
	return &recordLink{notify: make(chan int, 4096)}
}

func (l *recordLink) Send(payload []byte) error {
	if l.block != nil {
		<-l.block
	}

	l.Lock()
	seq := len(l.sent)
	l.sent = append(l.sent, int(payload[0]))
	fail := l.failFor
	l.Unlock()

	l.notify <- int(payload[0])
	if fail != nil {
		return fail(seq)
	}
	return nil
}

func (l *recordLink) Close() error {
	l.Lock()
	defer l.Unlock()
	l.closed++
	return nil
}

func (l *recordLink) snapshot() ([]int, int) {
	l.Lock()
	defer l.Unlock()
	return append([]int(nil), l.sent...), l.closed
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Width = 8
	cfg.Height = 1
	cfg.Settle = 0
	return cfg
}
