package bitmap

import (
	"image"
	"image/color"
)

// Threshold is the luminance cutoff, a pixel is "on" iff its gray value is above it.
const Threshold = 128

func NewMono(r image.Rectangle) *Mono {
	return View(r, make([]byte, r.Dx()*r.Dy()/8))
}

// View reads a packed payload back as an image. pix is shared, not copied.
func View(r image.Rectangle, pix []byte) *Mono {
	return &Mono{
		pixels: pix,
		stride: r.Dx() / 8,
		bounds: r,
	}
}

// Mono is a packed 1-bit image, laid out exactly as it goes on the wire.
//
// Pixel (x,y) lives in byte y*(width/8)+(x/8), bit 7-(x%8), so the most
// significant bit is the leftmost pixel of each 8 pixel group.
type Mono struct {
	pixels []byte
	stride int
	bounds image.Rectangle
}

// Bounds implements the image.Image interface.
func (m *Mono) Bounds() image.Rectangle {
	return m.bounds
}

// ColorModel implements the image.Image interface.
func (m *Mono) ColorModel() color.Model {
	return color.GrayModel
}

// At implements the image.Image interface.
func (m *Mono) At(x, y int) color.Color {
	if !(image.Point{X: x, Y: y}.In(m.bounds)) {
		return color.Gray{}
	}
	i, bit := m.offset(x, y)
	if i < len(m.pixels) && m.pixels[i]&bit != 0 {
		return color.Gray{Y: 0xFF}
	}
	return color.Gray{}
}

// Bytes returns the packed payload, width*height/8 bytes.
func (m *Mono) Bytes() []byte {
	return m.pixels
}

func (m *Mono) offset(x, y int) (int, byte) {
	x -= m.bounds.Min.X
	y -= m.bounds.Min.Y
	return y*m.stride + x>>3, 1 << (7 - uint(x&7))
}

// On reports whether c binarizes to a lit pixel.
func On(c color.Color) bool {
	return color.GrayModel.Convert(c).(color.Gray).Y > Threshold
}
