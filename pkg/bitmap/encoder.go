package bitmap

import (
	"image"
)

// Encode thresholds src and packs it one bit per pixel, row-major.
func Encode(src image.Image) []byte {
	b := src.Bounds()
	d := NewMono(b)

	if g, ok := src.(*image.Gray); ok {
		for y := b.Min.Y; y < b.Max.Y; y++ {
			row := g.Pix[(y-b.Min.Y)*g.Stride:]
			for x := b.Min.X; x < b.Max.X; x++ {
				if row[x-b.Min.X] > Threshold {
					i, bit := d.offset(x, y)
					d.pixels[i] |= bit
				}
			}
		}
		return d.pixels
	}

	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if On(src.At(x, y)) {
				i, bit := d.offset(x, y)
				d.pixels[i] |= bit
			}
		}
	}

	return d.pixels
}
