// Conversions between core images and the standard image types
package io

import (
	"image"
	"image/color"
	"math"

	"github.com/lucasb-eyer/go-colorful"

	"seam-carving/internal/algorithms"
	"seam-carving/internal/core"
)

// FromImage converts any decoded image to RGB planes. Alpha is removed by
// un-premultiplying; fully transparent pixels become black.
func FromImage(src image.Image) *core.Image {
	b := src.Bounds()
	img := core.NewImage(b.Dx(), b.Dy())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c, ok := colorful.MakeColor(src.At(x, y))
			if !ok {
				continue
			}
			r, g, bl := c.RGB255()
			img.SetRGB(x-b.Min.X, y-b.Min.Y, r, g, bl)
		}
	}
	return img
}

// ToNRGBA converts img to an opaque *image.NRGBA.
func ToNRGBA(img *core.Image) *image.NRGBA {
	w, h := img.Width(), img.Height()
	out := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		rs, gs, bs := img.R.Row(y), img.G.Row(y), img.B.Row(y)
		pix := out.Pix[y*out.Stride : y*out.Stride+4*w]
		for x := 0; x < w; x++ {
			pix[4*x] = rs[x]
			pix[4*x+1] = gs[x]
			pix[4*x+2] = bs[x]
			pix[4*x+3] = 0xff
		}
	}
	return out
}

// EnergyImage renders an energy map as greyscale, 1.0 mapping to white.
func EnergyImage(energy *core.Grid[float64]) *image.Gray {
	w, h := energy.Width(), energy.Height()
	out := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x, v := range energy.Row(y) {
			v = math.Max(0, math.Min(1, v))
			out.SetGray(x, y, color.Gray{Y: uint8(math.Round(v * 255))})
		}
	}
	return out
}

// SeamOverlay draws seams over a copy of original. Seams are coloured along
// a hue ramp in removal order.
func SeamOverlay(original *core.Image, seams []algorithms.Seam) *image.NRGBA {
	out := ToNRGBA(original)
	for i, seam := range seams {
		hue := 300 * float64(i) / float64(max(len(seams)-1, 1))
		r, g, b := colorful.Hsv(hue, 1, 1).Clamped().RGB255()
		for y, x := range seam {
			out.SetNRGBA(x, y, color.NRGBA{R: r, G: g, B: b, A: 0xff})
		}
	}
	return out
}
