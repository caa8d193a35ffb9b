package control

import (
	"fmt"
	"image"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"monostream/pkg/player"
)

// Controller is the playback surface a presentation layer drives.
type Controller interface {
	TotalFrames() int
	BaseFPS() float64

	Play()
	Pause()
	TogglePlay() bool
	Rewind()
	Seek(frame int)
	SeekRelative(seconds float64)
	SetSpeed(multiplier float64)
	StepSpeed(delta int) float64

	CurrentFrame() int
	PreviewFrame(frame int) *image.Gray
	ScreenFrame(frame int) image.Image
	Status() player.Status
}

var _ Controller = (*player.Player)(nil)

// ParseSpeed accepts "1.5", "1.5x", "2X" or "normal".
func ParseSpeed(in string) (float64, error) {
	in = strings.ToLower(strings.TrimSpace(in))
	if in == "normal" {
		return 1, nil
	}

	v, err := strconv.ParseFloat(strings.TrimSuffix(in, "x"), 64)
	if err != nil {
		return 0, errors.Errorf("bad speed %q", in)
	}
	return v, nil
}

// ParseSeek reads a frame index, or a relative offset in seconds when
// prefixed by + or - ("+5", "-10", "-2.5s").
func ParseSeek(in string) (frame int, seconds float64, relative bool, err error) {
	in = strings.TrimSpace(in)
	if in == "" {
		return 0, 0, false, errors.New("empty seek")
	}

	if in[0] == '+' || in[0] == '-' {
		seconds, err = strconv.ParseFloat(strings.TrimSuffix(in, "s"), 64)
		if err != nil {
			return 0, 0, false, errors.Errorf("bad offset %q", in)
		}
		return 0, seconds, true, nil
	}

	frame, err = strconv.Atoi(in)
	if err != nil {
		return 0, 0, false, errors.Errorf("bad frame %q", in)
	}
	return frame, 0, false, nil
}

// FormatStatus renders one status line: "Frame 12/299 | 00:00 / 00:20 | Paused | 1x".
func FormatStatus(s player.Status) string {
	state := "Paused"
	if s.Playing {
		state = "Playing"
	}

	return fmt.Sprintf("Frame %d/%d | %s / %s | %s | %sx",
		s.Frame, s.Total-1,
		clock(s.Position), clock(s.Duration),
		state,
		strconv.FormatFloat(s.Speed, 'f', -1, 64),
	)
}

func clock(d time.Duration) string {
	secs := int(d / time.Second)
	return fmt.Sprintf("%02d:%02d", secs/60, secs%60)
}
