package raster

import (
	"image"
	"image/color"
	"math"

	"github.com/MeKo-Tech/noisy/internal/field"
)

// ToGray16 renders g as a 16-bit heightmap.
func ToGray16(g *field.Grid, mode Mode) *image.Gray16 {
	img := image.NewGray16(image.Rect(0, 0, g.Width, g.Height))
	for i, v := range Normalize(g, mode) {
		x, y := i%g.Width, i/g.Width
		img.SetGray16(x, y, color.Gray16{Y: uint16(math.Round(float64(v) * 0xffff))})
	}
	return img
}

// ToGray renders g as an 8-bit image.
func ToGray(g *field.Grid, mode Mode) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, g.Width, g.Height))
	for i, v := range Normalize(g, mode) {
		img.Pix[(i/g.Width)*img.Stride+i%g.Width] = uint8(math.Round(float64(v) * 0xff))
	}
	return img
}

// ToRamp renders g through a colour ramp.
func ToRamp(g *field.Grid, mode Mode, r Ramp) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, g.Width, g.Height))
	for i, v := range Normalize(g, mode) {
		img.SetNRGBA(i%g.Width, i/g.Width, r.At(float64(v)))
	}
	return img
}

// Render picks the image type for a ramp name: "" gives a 16-bit heightmap,
// "gray" an 8-bit one and anything else a colour image.
func Render(g *field.Grid, mode Mode, ramp string) (image.Image, error) {
	switch ramp {
	case "":
		return ToGray16(g, mode), nil
	case "gray":
		return ToGray(g, mode), nil
	}
	r, err := ParseRamp(ramp)
	if err != nil {
		return nil, err
	}
	return ToRamp(g, mode, r), nil
}
