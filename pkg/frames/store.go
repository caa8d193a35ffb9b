package frames

import (
	"image"

	"github.com/pkg/errors"

	"monostream/pkg/bitmap"
)

var (
	ErrEmpty = errors.New("no frames to load")
	ErrSize  = errors.New("frame size mismatch")
)

// Frame is one decoded source image and its packed payload. Never mutated after Load.
type Frame struct {
	Index  int
	Image  *image.Gray
	Packed []byte
}

// Store is a read-only, ordered collection of frames.
type Store struct {
	frames []*Frame
	width  int
	height int
}

// Load binarizes and packs every image. All images must already be width x height.
func Load(images []*image.Gray, width, height int) (*Store, error) {
	if len(images) == 0 {
		return nil, ErrEmpty
	}
	if width <= 0 || height <= 0 || width*height%8 != 0 {
		return nil, errors.Wrapf(ErrSize, "unpackable size %dx%d", width, height)
	}

	s := &Store{
		frames: make([]*Frame, 0, len(images)),
		width:  width,
		height: height,
	}

	for i, img := range images {
		if sz := img.Bounds().Size(); sz.X != width || sz.Y != height {
			return nil, errors.Wrapf(ErrSize, "frame %d is %dx%d", i, sz.X, sz.Y)
		}
		s.frames = append(s.frames, &Frame{
			Index:  i,
			Image:  img,
			Packed: bitmap.Encode(img),
		})
	}

	return s, nil
}

func (s *Store) Total() int {
	return len(s.frames)
}

func (s *Store) Width() int {
	return s.width
}

func (s *Store) Height() int {
	return s.height
}

// BytesPerFrame is the wire payload length.
func (s *Store) BytesPerFrame() int {
	return s.width * s.height / 8
}

// Clamp bounds index into [0, Total()-1].
func (s *Store) Clamp(index int) int {
	if index < 0 {
		return 0
	}
	if last := len(s.frames) - 1; index > last {
		return last
	}
	return index
}

// Frame returns the frame at index, clamped into range.
func (s *Store) Frame(index int) *Frame {
	return s.frames[s.Clamp(index)]
}

// Get returns the preview image and packed payload at index, clamped into range.
func (s *Store) Get(index int) (*image.Gray, []byte) {
	f := s.Frame(index)
	return f.Image, f.Packed
}
